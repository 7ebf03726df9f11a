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
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/zintix-labs/coinlab"
	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/server/httperr"
	"github.com/zintix-labs/coinlab/server/svrcfg"
	"github.com/zintix-labs/coinlab/spec"
)

type SweepHandler struct {
	lab        *coinlab.Lab
	log        *slog.Logger
	maxStarts  int
	maxWorkers int
}

func NewSweepHandler(sCfg *svrcfg.SvrCfg) (*SweepHandler, error) {
	if sCfg == nil || sCfg.Lab == nil {
		return nil, errs.NewFatal("coinlab is required")
	}
	return &SweepHandler{
		lab:        sCfg.Lab,
		log:        sCfg.Log,
		maxStarts:  max(1, sCfg.MaxStarts),
		maxWorkers: max(1, sCfg.MaxWorkers),
	}, nil
}

// Sweep POST /v1/sweep
//
// name 與 setting 擇一；兩者都給時以 setting 為準。seed 省略時隨機產生並回傳。
func (sh *SweepHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type sweepRequestBody struct {
		Name    string          `json:"name"`
		Setting json.RawMessage `json:"setting"`
		Starts  int             `json:"starts"`
		Workers int             `json:"workers"`
		Seed    *int64          `json:"seed,omitempty"`
	}
	type sweepResponse struct {
		Sweep    *coinlab.SweepResult `json:"sweep"`
		UsedTime int64                `json:"used_ms"`
	}
	// ---
	raw, err := readBody(w, r)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	req := new(sweepRequestBody)
	if err := json.Unmarshal(raw, req); err != nil {
		httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
		return
	}
	if req.Starts < 1 || req.Starts > sh.maxStarts {
		httperr.Errs(w, errs.NewWarn(fmt.Sprintf("starts must be between 1 and %d", sh.maxStarts)))
		return
	}
	if req.Workers == 0 {
		req.Workers = sh.maxWorkers
	}
	if req.Workers < 1 {
		httperr.Errs(w, errs.NewWarn("workers must be > 0"))
		return
	}
	req.Workers = min(req.Workers, sh.maxWorkers)

	var es *spec.EstimateSetting
	switch {
	case len(req.Setting) > 0 && string(req.Setting) != "null":
		es, err = spec.GetSettingByJSON(req.Setting)
	case req.Name != "":
		if _, ok := sh.lab.EntryByName(req.Name); !ok {
			httperr.Errs(w, errs.NewWarn(fmt.Sprintf("setting %q not found", req.Name)))
			return
		}
		es, err = sh.lab.Setting(req.Name)
	default:
		err = errs.NewWarn("name or setting is required")
	}
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	var sw *coinlab.Sweeper
	if req.Seed != nil {
		sw, err = sh.lab.NewSweeperWithSeed(es, *req.Seed)
	} else {
		sw, err = sh.lab.NewSweeper(es)
	}
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	res, err := sw.Run(r.Context(), req.Starts, req.Workers, false)
	if err != nil {
		err = errs.Wrap(err, "sweep failed")
		httperr.Log(sh.log, "sweep failed", err)
		httperr.Errs(w, err)
		return
	}
	writeJSON(w, sweepResponse{Sweep: res, UsedTime: res.Used.Milliseconds()})
}
