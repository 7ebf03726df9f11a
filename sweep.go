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

package coinlab

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/sdk/core"
	"github.com/zintix-labs/coinlab/spec"
	"github.com/zintix-labs/coinlab/stats"
	"golang.org/x/sync/errgroup"
)

// SweepStatus 為單一起點的結束狀態。
type SweepStatus string

const (
	StatusConverged    SweepStatus = "converged"
	StatusDegenerate   SweepStatus = "degenerate"
	StatusNotConverged SweepStatus = "not_converged"
)

// SweepRun 記錄一個起點的結果；未收斂時 Final / LogLik 為零值。
type SweepRun struct {
	Start      spec.Params `yaml:"start"      json:"start"`
	Final      spec.Params `yaml:"final"      json:"final"`
	Iterations int         `yaml:"iterations" json:"iterations"`
	LogLik     float64     `yaml:"log_lik"    json:"log_lik"`
	Status     SweepStatus `yaml:"status"     json:"status"`
}

// SweepResult 為多起點掃描的彙總。Best 為對數似然最高的收斂結果（同分取較早的起點）。
type SweepResult struct {
	Name         string        `yaml:"name"          json:"name"`
	Seed         int64         `yaml:"seed"          json:"seed"`
	Starts       int           `yaml:"starts"        json:"starts"`
	Converged    int           `yaml:"converged"     json:"converged"`
	Degenerate   int           `yaml:"degenerate"    json:"degenerate"`
	NotConverged int           `yaml:"not_converged" json:"not_converged"`
	BestIndex    int           `yaml:"best_index"    json:"best_index"`
	Best         *stats.Result `yaml:"best"          json:"best"`
	Runs         []SweepRun    `yaml:"runs"          json:"runs"`
	Used         time.Duration `yaml:"-"             json:"-"`
}

// Sweeper 從同一份設定出發，以 seed 派生的隨機初始值平行跑多次 EM。
type Sweeper struct {
	setting   *spec.EstimateSetting
	log       *slog.Logger
	initSeed  int64
	seedmaker *core.SeedMaker
}

func newSweeper(es *spec.EstimateSetting, log *slog.Logger, seed int64) (*Sweeper, error) {
	if es == nil {
		return nil, errs.InvalidSetting("setting is required")
	}
	cp := es.Clone()
	if err := cp.Init(); err != nil {
		return nil, err
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Sweeper{
		setting:   cp,
		log:       log,
		initSeed:  seed,
		seedmaker: core.NewSeedMaker(seed),
	}, nil
}

// Seed 回傳建立時使用的 seed。
func (s *Sweeper) Seed() int64 {
	return s.initSeed
}

// Run 產生 starts 組起點，交給 workers 個 goroutine 平行估計，回傳彙總與用時。
//
// 起點在派工前就依序產生，結果與 workers 數量、排程順序無關。
// 全部起點都失敗時回傳最後一個失敗原因（保留其錯誤 Code）。
func (s *Sweeper) Run(ctx context.Context, starts int, workers int, showpb bool) (*SweepResult, error) {
	if starts < 1 {
		return nil, errs.InvalidSetting("starts must be > 0, got %d", starts)
	}
	if workers < 1 {
		return nil, errs.InvalidSetting("workers must be > 0, got %d", workers)
	}
	workers = min(workers, starts)

	// 起點：每個起點一顆獨立 PCG64，seed 由 seedmaker 依序派生
	res := &SweepResult{
		Name:      s.setting.Name,
		Seed:      s.initSeed,
		Starts:    starts,
		BestIndex: -1,
		Runs:      make([]SweepRun, starts),
	}
	for i := range res.Runs {
		rng := core.NewPCG64WithSeed(s.seedmaker.Next())
		res.Runs[i].Start = spec.Params{A: rng.Uniform(0, 1), B: rng.Uniform(0, 1)}
	}

	results := make([]*stats.Result, starts)
	failures := make([]error, starts)

	jobs := make(chan int, starts)
	for i := 0; i < starts; i++ {
		jobs <- i
	}
	close(jobs)

	bar := pb.StartNew(starts)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	// 任一 worker 因 ctx 結束而返回時，其餘 worker 也隨 gctx 停止
	grp, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		grp.Go(func() error {
			for i := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				results[i], failures[i] = s.runOne(gctx, res.Runs[i].Start)
				bar.Increment()
			}
			return nil
		})
	}
	werr := grp.Wait()
	res.Used = time.Since(bar.StartTime())
	bar.Finish()
	if werr != nil {
		return nil, werr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var last error
	for i := range res.Runs {
		run := &res.Runs[i]
		if err := failures[i]; err != nil {
			last = err
			switch {
			case errors.Is(err, errs.ErrDegenerate):
				run.Status = StatusDegenerate
				res.Degenerate++
			case errors.Is(err, errs.ErrNotConverged):
				run.Status = StatusNotConverged
				res.NotConverged++
			default:
				return nil, err
			}
			continue
		}
		r := results[i]
		run.Final = r.Final
		run.Iterations = r.Iterations
		run.LogLik = r.LogLik
		run.Status = StatusConverged
		res.Converged++
		if res.Best == nil || r.LogLik > res.Best.LogLik {
			res.Best = r
			res.BestIndex = i
		}
	}

	s.log.Info("sweep.done",
		slog.String("setting", res.Name),
		slog.Int("starts", starts),
		slog.Int("converged", res.Converged),
		slog.Int("degenerate", res.Degenerate),
		slog.Int("not_converged", res.NotConverged),
		slog.Duration("used", res.Used),
	)
	if res.Best == nil {
		return nil, errs.WrapWithExtra(last, "no start converged",
			fmt.Sprintf("starts=%d degenerate=%d not_converged=%d", starts, res.Degenerate, res.NotConverged))
	}
	return res, nil
}

func (s *Sweeper) runOne(ctx context.Context, start spec.Params) (*stats.Result, error) {
	es := s.setting.Clone()
	es.InitialPA, es.InitialPB = start.A, start.B
	e, err := stats.NewEstimator(es, s.log)
	if err != nil {
		return nil, err
	}
	return e.WithoutTrace().Run(ctx)
}
