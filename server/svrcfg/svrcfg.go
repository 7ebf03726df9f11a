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

package svrcfg

import (
	"log/slog"
	"runtime"

	"github.com/zintix-labs/coinlab"
	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/server/logger"
)

const (
	defaultMaxStarts = 256
	maxMaxStarts     = 10000
)

type SvrCfg struct {
	Log        *slog.Logger
	Lab        *coinlab.Lab
	MaxStarts  int // 單次 sweep 請求允許的起點數上限
	MaxWorkers int // 單次 sweep 請求允許的 worker 上限
}

func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	// 資源管理：1 <= MaxStarts <= 10000，1 <= MaxWorkers <= NumCPU
	if sc.MaxStarts <= 0 {
		sc.MaxStarts = defaultMaxStarts
	}
	sc.MaxStarts = min(maxMaxStarts, sc.MaxStarts)
	if sc.MaxWorkers <= 0 {
		sc.MaxWorkers = runtime.NumCPU()
	}
	sc.MaxWorkers = max(1, min(runtime.NumCPU(), sc.MaxWorkers))

	if sc.Lab == nil {
		return errs.NewFatal("coinlab is required")
	}
	return nil
}
