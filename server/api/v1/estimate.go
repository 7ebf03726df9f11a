// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package v1

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/coinlab"
	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/server/httperr"
	"github.com/zintix-labs/coinlab/server/svrcfg"
	"github.com/zintix-labs/coinlab/spec"
)

type EstimateHandler struct {
	lab *coinlab.Lab
	log *slog.Logger
}

func NewEstimateHandler(sCfg *svrcfg.SvrCfg) (*EstimateHandler, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("coinlab is required")
	}
	return &EstimateHandler{lab: sCfg.Lab, log: sCfg.Log}, nil
}

// Settings GET /v1/settings
func (h *EstimateHandler) Settings(w http.ResponseWriter, _ *http.Request) {
	sum, err := h.lab.Summary()
	if err != nil {
		httperr.Log(h.log, "settings summary failed", err)
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, sum)
}

// ByName GET /v1/estimate?name=coins
func (h *EstimateHandler) ByName(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		httperr.Errs(w, errs.NewWarn("name is required"))
		return
	}
	format, trace, err := outputOpts(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	if _, ok := h.lab.EntryByName(name); !ok {
		httperr.Errs(w, errs.NewWarn(fmt.Sprintf("setting %q not found", name)))
		return
	}
	res, err := h.lab.Estimate(r.Context(), name)
	if err != nil {
		// 尊重 coinlab 的錯誤分級
		err = errs.Wrap(err, fmt.Sprintf("estimate %q failed", name))
		httperr.Log(h.log, "estimate failed", err)
		httperr.Errs(w, err)
		return
	}
	writeResult(w, res, format, trace)
}

// BySetting POST /v1/estimate，body 為 JSON 的 EstimateSetting
func (h *EstimateHandler) BySetting(w http.ResponseWriter, r *http.Request) {
	format, trace, err := outputOpts(r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	raw, err := readBody(w, r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	es, err := spec.GetSettingByJSON(raw)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	res, err := h.lab.EstimateSetting(r.Context(), es)
	if err != nil {
		err = errs.Wrap(err, "estimate failed")
		httperr.Log(h.log, "estimate failed", err)
		httperr.Errs(w, err)
		return
	}
	writeResult(w, res, format, trace)
}
