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

// Package demo 提供內建設定與合成資料，方便 CLI / server / 測試直接取用。
package demo

import (
	"math"

	"github.com/zintix-labs/coinlab"
	"github.com/zintix-labs/coinlab/catalog"
	"github.com/zintix-labs/coinlab/demo/demo_configs"
	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/sdk/core"
	"github.com/zintix-labs/coinlab/server/logger"
	"github.com/zintix-labs/coinlab/server/svrcfg"
	"github.com/zintix-labs/coinlab/spec"
	"gonum.org/v1/gonum/stat/distuv"
)

func New() (*catalog.Catalog, error) {
	return catalog.New(demo_configs.FS)
}

func NewLab() (*coinlab.Lab, error) {
	return coinlab.NewAuto(coinlab.Configs(demo_configs.FS))
}

func NewServerConfig() (*svrcfg.SvrCfg, error) {
	lab, err := NewLab()
	if err != nil {
		return nil, errs.NewFatal("new coinlab failed:" + err.Error())
	}
	scfg := &svrcfg.SvrCfg{
		Log: logger.NewDefaultAsyncLogger(logger.ModeDev),
		Lab: lab,
	}
	return scfg, nil
}

// Sample 是一份帶有真實來源標籤的合成資料。
type Sample struct {
	Dataset spec.Dataset
	Labels  []string // 每組實際使用的硬幣："A" / "B"
	Truth   spec.Params
}

// Generate 以 seed 產生 groups 組、每組 flips 次的擲幣資料。
// 每組以 1/2 機率選擇硬幣 A 或 B，再由 Binomial(flips, p) 抽出正面數。
func Generate(seed int64, groups, flips int, pA, pB float64) (*Sample, error) {
	if groups < 1 {
		return nil, errs.InvalidSetting("groups must be > 0, got %d", groups)
	}
	if flips < 1 {
		return nil, errs.InvalidSetting("flips must be > 0, got %d", flips)
	}
	truth := spec.Params{A: pA, B: pB}
	if err := truth.Valid(); err != nil {
		return nil, err
	}

	rng := core.NewPCG64WithSeed(seed)
	coinA := distuv.Binomial{N: float64(flips), P: pA, Src: rng}
	coinB := distuv.Binomial{N: float64(flips), P: pB, Src: rng}

	s := &Sample{
		Dataset: make(spec.Dataset, groups),
		Labels:  make([]string, groups),
		Truth:   truth,
	}
	for i := 0; i < groups; i++ {
		d, label := coinA, "A"
		if rng.Float64() >= 0.5 {
			d, label = coinB, "B"
		}
		heads := int(math.Round(d.Rand()))
		s.Dataset[i] = spec.Observation{Heads: heads, Tails: flips - heads}
		s.Labels[i] = label
	}
	return s, nil
}

// Setting 把合成資料包成可直接估計的設定。
func (s *Sample) Setting(name string, initial spec.Params) (*spec.EstimateSetting, error) {
	es := &spec.EstimateSetting{
		Name:      name,
		InitialPA: initial.A,
		InitialPB: initial.B,
		Prior:     spec.DefaultPrior,
		Dataset:   s.Dataset.Clone(),
	}
	if err := es.Init(); err != nil {
		return nil, err
	}
	return es, nil
}
