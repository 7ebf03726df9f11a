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

package api

import (
	"log/slog"

	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/server/api/index"
	v1 "github.com/zintix-labs/coinlab/server/api/v1"
	"github.com/zintix-labs/coinlab/server/netsvr"
	"github.com/zintix-labs/coinlab/server/netsvr/middleware"
	"github.com/zintix-labs/coinlab/server/svrcfg"
)

// RegisterRoutes 註冊 middleware、主頁與 v1 api。sCfg 需先通過 Vaild()。
func RegisterRoutes(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	if svr == nil || sCfg == nil || sCfg.Lab == nil {
		return errs.NewFatal("server and coinlab are required")
	}
	registerMiddleware(svr, sCfg.Log) // 1. middleware
	if err := registerIndex(svr, sCfg); err != nil {
		return err // 2. 主頁
	}
	return registerV1API(svr, sCfg) // 3. v1 api
}

// 註冊 middleware
func registerMiddleware(svr netsvr.NetSvr, log *slog.Logger) {
	svr.Use(middleware.RequestID)
	svr.Use(middleware.AccessLog(log))
	svr.Use(middleware.Recover(log))
	svr.Use(middleware.Compression)
}

// 註冊主頁
func registerIndex(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	h, err := index.NewHandler(sCfg.Lab)
	if err != nil {
		return err
	}
	svr.Get("/", h.Index)
	return nil
}

// 註冊 v1 api
func registerV1API(svr netsvr.NetSvr, sCfg *svrcfg.SvrCfg) error {
	e, err := v1.NewEstimateHandler(sCfg)
	if err != nil {
		return err
	}
	s, err := v1.NewSweepHandler(sCfg)
	if err != nil {
		return err
	}
	svr.Group("/v1", func(vOne netsvr.NetRouter) {
		vOne.Get("/settings", e.Settings)
		vOne.Get("/estimate", e.ByName)
		vOne.Post("/estimate", e.BySetting)
		vOne.Post("/sweep", s.Sweep)
	})
	return nil
}
