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

// Package index 提供服務首頁：列出已註冊設定與可用路由。
package index

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/coinlab"
	"github.com/zintix-labs/coinlab/errs"
)

type route struct {
	Method string `json:"method"`
	Path   string `json:"path"`
	Desc   string `json:"desc"`
}

var routes = []route{
	{http.MethodGet, "/v1/settings", "registered settings summary"},
	{http.MethodGet, "/v1/estimate?name=coins&format=json|yaml|text&trace=true", "run a registered setting"},
	{http.MethodPost, "/v1/estimate", "run an estimate setting in the request body"},
	{http.MethodPost, "/v1/sweep", "multi-start sweep: {name|setting, starts, workers, seed}"},
}

type Handler struct {
	lab *coinlab.Lab
}

func NewHandler(lab *coinlab.Lab) (*Handler, error) {
	if lab == nil {
		return nil, errs.NewFatal("coinlab is required")
	}
	return &Handler{lab: lab}, nil
}

func (h *Handler) Index(w http.ResponseWriter, _ *http.Request) {
	type indexResponse struct {
		Service  string   `json:"service"`
		Settings []string `json:"settings"`
		Routes   []route  `json:"routes"`
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(indexResponse{
		Service:  "coinlab",
		Settings: h.lab.Names(),
		Routes:   routes,
	})
}
