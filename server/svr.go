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

package server

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/server/api"
	"github.com/zintix-labs/coinlab/server/app"
	"github.com/zintix-labs/coinlab/server/netsvr"
	"github.com/zintix-labs/coinlab/server/svrcfg"
)

// Run 是 server 套件的啟動入口。
//
// 它負責：
//  1. 驗證 SvrCfg（logger 與 Lab）。
//  2. 建立預設 HTTP server（netsvr.ChiAdapter）。
//  3. 註冊路由與 middleware（api.RegisterRoutes）。
//  4. 啟動 app.Run() 直到收到停止訊號。
//
// Run 不綁定任何檔案路徑或環境變數策略；所有依賴都由 SvrCfg 注入。
func Run(sCfg *svrcfg.SvrCfg) {
	RunWithSvr(sCfg, netsvr.NewChiServerDefault())
}

// RunWithSvr 與 Run() 相同，但允許呼叫端注入自訂的 NetSvr（位址、timeout 等）。
// svr 必須非 nil；若是 ChiAdapter 會要求 Ready() 為 true。
func RunWithSvr(sCfg *svrcfg.SvrCfg, svr netsvr.NetSvr) {
	if err := sCfg.Vaild(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return
	}
	if svr == nil {
		sCfg.Log.Error(errs.NewFatal("svr is required").Error())
		return
	}
	if s, ok := svr.(*netsvr.ChiAdapter); ok && !s.Ready() {
		sCfg.Log.Error(errs.NewFatal("default server is not ready").Error())
		return
	}

	if err := api.RegisterRoutes(svr, sCfg); err != nil {
		sCfg.Log.Error("register routes failed", slog.Any("err", err))
		return
	}

	app := app.NewWith(svr)
	sCfg.Log.Info("[coinlab] listening on http://localhost" + svr.Address())
	if err := app.Run(); err != nil {
		sCfg.Log.Error("app stopped:", slog.Any("err", err))
	}
}
