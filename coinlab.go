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

// Package coinlab 提供兩枚硬幣 EM 估計的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Lab 把設定檔目錄（Catalog）與估計器組裝在一起：
//  1. Catalog：以名稱索引一或多個 fs.FS 內的估計設定（.yaml/.yml/.json）。
//  2. Estimator：stats 內的 EM 迭代，對單一設定跑到收斂。
//  3. Sweeper：多起點掃描，平行跑多組隨機初始值並挑出對數似然最高者。
//
// Lab 本身不綁定任何檔案路徑：設定檔來源一律以 fs.FS 的形式注入（go:embed 或 os.DirFS）。
//
// 使用流程分成兩階段：
//   - 註冊階段：New 建立 catalog，RegisterAll 掃描並檢查全部設定檔。
//   - 執行階段：Freeze 之後才能 Estimate / Sweep。
//
//	lab, _ := coinlab.NewAuto(coinlab.Configs(cfgFS))
//	res, _ := lab.Estimate(ctx, "coins")
//	fmt.Println(res.Final)
package coinlab

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/zintix-labs/coinlab/catalog"
	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/sdk/core"
	"github.com/zintix-labs/coinlab/spec"
	"github.com/zintix-labs/coinlab/stats"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Lab 持有一份 Catalog 與日誌器；Freeze 之後可被多個 goroutine 共用。
type Lab struct {
	cat *catalog.Catalog
	log *slog.Logger

	sumOnce sync.Once
	sum     []catalog.Summary
	sumErr  error
}

// New 建立一個尚未註冊任何設定的 Lab。cfgs 至少一個。
func New(cfgs []fs.FS) (*Lab, error) {
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	return &Lab{
		cat: cata,
		log: slog.New(slog.DiscardHandler),
	}, nil
}

// NewAuto 建立並註冊全部設定檔後凍結，直接進入執行階段。
func NewAuto(cfgs []fs.FS) (*Lab, error) {
	lab, err := New(cfgs)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

// WithLogger 設定估計過程使用的日誌器；nil 表示不輸出。
func (l *Lab) WithLogger(log *slog.Logger) *Lab {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	l.log = log
	return l
}

func (l *Lab) Register(ents ...catalog.Entry) error {
	return l.cat.Register(ents...)
}

// RegisterAll
//
// 掃描 catalog 持有的設定檔來源，把所有可辨識的設定檔解析成 *spec.EstimateSetting，
// 並以設定內宣告的 name 批次註冊。
//
// 行為特性：
//  1. Fail-fast：任何一個檔案讀取/解析/檢查失敗都立刻回傳 error。
//  2. 原子性：全部檔案都通過才呼叫一次 Register。
//  3. 穩定性：依檔名排序處理。
func (l *Lab) RegisterAll() error {
	files := l.cat.Cfg().Files()
	if len(files) == 0 {
		return errs.NewFatal("no config files found to register")
	}

	entries := make([]catalog.Entry, 0, len(files))
	seenName := map[string]string{}

	for _, base := range files {
		src, ok := l.cat.Cfg().GetFS(base)
		if !ok {
			return errs.NewFatal(fmt.Sprintf("config source missing: %s", base))
		}
		raw, err := fs.ReadFile(src, base)
		if err != nil {
			return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
		}
		es, err := catalog.ParseByExt(base, raw)
		if err != nil {
			return errs.WrapWithExtra(err, "parse setting failed", base)
		}

		name := es.Name
		if name == "" {
			name = strings.ToLower(strings.TrimSuffix(base, filepath.Ext(base)))
		}
		if prev, ok := seenName[name]; ok {
			return errs.NewFatal(fmt.Sprintf("duplicate setting name: %s (config=%s and %s)", name, prev, base))
		}
		if _, ok := l.cat.GetByName(name); ok {
			return errs.NewFatal(fmt.Sprintf("setting name already registered: %s (config=%s)", name, base))
		}
		seenName[name] = base

		entries = append(entries, catalog.Entry{Name: name, ConfigName: base})
	}
	return l.cat.Register(entries...)
}

func (l *Lab) Freeze() {
	l.cat.Freeze()
}

func (l *Lab) EntryByName(name string) (catalog.Entry, bool) {
	return l.cat.GetByName(name)
}

func (l *Lab) Names() []string {
	return l.cat.Names()
}

func (l *Lab) All() []catalog.Entry {
	return l.cat.All()
}

// Summary 回傳每份設定的摘要，凍結後只建一次，之後各 goroutine 共讀同一份。
func (l *Lab) Summary() ([]catalog.Summary, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	l.sumOnce.Do(func() {
		l.sum, l.sumErr = l.buildSummary()
	})
	return l.sum, l.sumErr
}

func (l *Lab) buildSummary() ([]catalog.Summary, error) {
	ents := l.cat.All()
	cs := make([]catalog.Summary, 0, len(ents))
	for _, e := range ents {
		es, err := l.cat.SettingByName(e.Name)
		if err != nil {
			return nil, errs.Wrap(err, "parse setting failed")
		}
		cs = append(cs, catalog.Summary{
			Name:         e.Name,
			Config:       e.ConfigName,
			Observations: len(es.Dataset),
			Initial:      es.Initial(),
			Prior:        es.Prior,
		})
	}
	return cs, nil
}

// Setting 取得已註冊設定的新副本，呼叫端可自由修改。
func (l *Lab) Setting(name string) (*spec.EstimateSetting, error) {
	if !l.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	return l.cat.SettingByName(name)
}

// Estimate 以名稱找到設定並跑到收斂。
func (l *Lab) Estimate(ctx context.Context, name string) (*stats.Result, error) {
	es, err := l.Setting(name)
	if err != nil {
		return nil, err
	}
	return l.EstimateSetting(ctx, es)
}

// EstimateSetting 對呼叫端提供的設定跑 EM；es 不會被修改。
func (l *Lab) EstimateSetting(ctx context.Context, es *spec.EstimateSetting) (*stats.Result, error) {
	e, err := stats.NewEstimator(es, l.log)
	if err != nil {
		return nil, err
	}
	return e.Run(ctx)
}

func (l *Lab) EstimateByJSON(ctx context.Context, raw []byte) (*stats.Result, error) {
	es, err := spec.GetSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	return l.EstimateSetting(ctx, es)
}

func (l *Lab) EstimateByYAML(ctx context.Context, raw []byte) (*stats.Result, error) {
	es, err := spec.GetSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	return l.EstimateSetting(ctx, es)
}

// NewSweeper 以 crypto 隨機種子建立多起點掃描器。
func (l *Lab) NewSweeper(es *spec.EstimateSetting) (*Sweeper, error) {
	return newSweeper(es, l.log, core.RandomSeed())
}

// NewSweeperWithSeed 與 NewSweeper 相同，但由呼叫端指定初始 seed；同 seed 結果可重現。
func (l *Lab) NewSweeperWithSeed(es *spec.EstimateSetting, seed int64) (*Sweeper, error) {
	return newSweeper(es, l.log, seed)
}
