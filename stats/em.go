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

package stats

import (
	"context"
	"log/slog"
	"math"

	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/sdk/binom"
	"github.com/zintix-labs/coinlab/spec"
)

// ============================================================
// ** 結構宣告 **
// ============================================================

// Responsibility 為單筆觀測屬於硬幣 A / B 的後驗機率（soft assignment）。
// 每輪依當前參數重新計算，不跨輪保存。
type Responsibility struct {
	A float64 `yaml:"a" json:"a"`
	B float64 `yaml:"b" json:"b"`
}

// EStep 是一次 E-step 的完整產出：逐筆 responsibility 與兩類別的期望計數。
type EStep struct {
	Resp   []Responsibility
	HeadsA float64 // Σ r_A·heads
	TotalA float64 // Σ r_A·(heads+tails)
	HeadsB float64
	TotalB float64
	LogLik float64 // Σ log(evidence)，在輸入參數下計算
}

// TracePoint 記錄第 Iter 輪開始時的參數與該參數下的對數似然。
type TracePoint struct {
	Iter   int         `yaml:"iter"    json:"iter"`
	Params spec.Params `yaml:"params"  json:"params"`
	LogLik float64     `yaml:"log_lik" json:"log_lik"`
}

// Assignment 為收斂後每組擲幣最可能來自哪一枚硬幣。
type Assignment struct {
	Index       int              `yaml:"index"       json:"index"`
	Observation spec.Observation `yaml:"observation" json:"observation"`
	Resp        Responsibility   `yaml:"resp"        json:"resp"`
	Coin        string           `yaml:"coin"        json:"coin"`
}

// Result 為一次完整 EM 估計的輸出。
type Result struct {
	Name        string       `yaml:"name"             json:"name"`
	Initial     spec.Params  `yaml:"initial"          json:"initial"`
	Final       spec.Params  `yaml:"final"            json:"final"`
	Iterations  int          `yaml:"iterations"       json:"iterations"`
	LogLik      float64      `yaml:"log_lik"          json:"log_lik"`
	Intervals   Intervals    `yaml:"intervals"        json:"intervals"`
	Assignments []Assignment `yaml:"assignments"      json:"assignments"`
	Trace       []TracePoint `yaml:"trace,omitempty"  json:"trace,omitempty"`
}

// ============================================================
// ** 對外 : 單步運算 **
// ============================================================

// Responsibilities 只做 E-step，回傳每筆觀測對 A / B 的後驗機率。
func Responsibilities(p spec.Params, data spec.Dataset, prior float64) ([]Responsibility, error) {
	st, err := expect(p, data, prior, 0)
	if err != nil {
		return nil, err
	}
	return st.Resp, nil
}

// Step 執行一次完整 EM 迭代（E-step + M-step），回傳新的參數組。
// 輸入的 p / data 不會被修改。
func Step(p spec.Params, data spec.Dataset, prior float64) (spec.Params, *EStep, error) {
	return step(p, data, prior, 0)
}

// Estimate 以預設 epsilon / max_iter 跑到收斂，只回傳最終參數。
func Estimate(p spec.Params, data spec.Dataset, prior float64) (spec.Params, error) {
	es := &spec.EstimateSetting{
		InitialPA: p.A,
		InitialPB: p.B,
		Prior:     prior,
		Dataset:   data,
	}
	e, err := NewEstimator(es, nil)
	if err != nil {
		return spec.Params{}, err
	}
	r, err := e.Run(context.Background())
	if err != nil {
		return spec.Params{}, err
	}
	return r.Final, nil
}

// ============================================================
// ** 對外 : 估計器 **
// ============================================================

// Estimator 持有一份已檢查過的設定副本；可重複 Run，彼此互不影響。
type Estimator struct {
	setting *spec.EstimateSetting
	log     *slog.Logger
	trace   bool
}

// NewEstimator 複製並檢查設定。log 為 nil 時不輸出任何日誌。
func NewEstimator(es *spec.EstimateSetting, log *slog.Logger) (*Estimator, error) {
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
	return &Estimator{setting: cp, log: log, trace: true}, nil
}

// WithoutTrace 關閉逐輪紀錄（多起點掃描時用，省記憶體）。
func (e *Estimator) WithoutTrace() *Estimator {
	e.trace = false
	return e
}

// Setting 回傳估計器使用的設定副本。
func (e *Estimator) Setting() *spec.EstimateSetting {
	return e.setting.Clone()
}

// Run 從初始參數開始迭代，直到兩個參數的變化量都小於 epsilon。
//
// 停止條件以容忍範圍取代精確浮點相等：精確相等在某些資料上會在相鄰的可表示值間來回震盪而永不停止。
// 超過 max_iter 仍未收斂回傳 errs.ErrNotConverged；ctx 取消時回傳 ctx.Err()。
func (e *Estimator) Run(ctx context.Context) (*Result, error) {
	es := e.setting
	p := es.Initial()
	res := &Result{Name: es.Name, Initial: p}
	if e.trace {
		res.Trace = make([]TracePoint, 0, 64)
	}

	var dA, dB float64
	for iter := 1; iter <= es.MaxIter; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, st, err := step(p, es.Dataset, es.Prior, iter)
		if err != nil {
			e.log.Warn("em.degenerate", slog.String("setting", es.Name), slog.Int("iter", iter), slog.Any("err", err))
			return nil, err
		}
		if e.trace {
			res.Trace = append(res.Trace, TracePoint{Iter: iter, Params: p, LogLik: st.LogLik})
		}
		dA, dB = math.Abs(next.A-p.A), math.Abs(next.B-p.B)
		e.log.Debug("em.step",
			slog.Int("iter", iter),
			slog.Float64("p_a", next.A),
			slog.Float64("p_b", next.B),
			slog.Float64("log_lik", st.LogLik),
		)
		if dA < es.Epsilon && dB < es.Epsilon {
			res.Final = next
			res.Iterations = iter
			if err := e.finish(res); err != nil {
				return nil, err
			}
			e.log.Info("em.converged",
				slog.String("setting", es.Name),
				slog.Int("iterations", iter),
				slog.String("final", next.String()),
			)
			return res, nil
		}
		p = next
	}
	return nil, errs.NotConverged(es.MaxIter, dA, dB)
}

// finish 以收斂參數再做一次 E-step，補上分派結果、對數似然與區間估計。
func (e *Estimator) finish(res *Result) error {
	es := e.setting
	st, err := expect(res.Final, es.Dataset, es.Prior, res.Iterations+1)
	if err != nil {
		return err
	}
	res.LogLik = st.LogLik
	res.Assignments = make([]Assignment, len(es.Dataset))
	for i, o := range es.Dataset {
		coin := "A"
		if st.Resp[i].B > st.Resp[i].A {
			coin = "B"
		}
		res.Assignments[i] = Assignment{Index: i, Observation: o, Resp: st.Resp[i], Coin: coin}
	}
	res.Intervals = Intervals{
		Confidence: defaultConfidence,
		A:          jeffreysCI(st.HeadsA, st.TotalA-st.HeadsA, defaultConfidence),
		B:          jeffreysCI(st.HeadsB, st.TotalB-st.HeadsB, defaultConfidence),
	}
	return nil
}

// ============================================================
// ** 內部運算 **
// ============================================================

func step(p spec.Params, data spec.Dataset, prior float64, iter int) (spec.Params, *EStep, error) {
	st, err := expect(p, data, prior, iter)
	if err != nil {
		return spec.Params{}, nil, err
	}
	next, err := maximize(st, iter)
	if err != nil {
		return spec.Params{}, nil, err
	}
	return next, st, nil
}

// expect 為 E-step。
//
// evidence = L_A·prior + L_B·prior：兩項共用同一個 prior。
// 只有在 A、B 的 prior 相等時這才是標準的混合模型 evidence；
// 若要支援不同 prior，需改成 L_A·prior_A + L_B·prior_B。
func expect(p spec.Params, data spec.Dataset, prior float64, iter int) (*EStep, error) {
	st := &EStep{Resp: make([]Responsibility, len(data))}
	for i, o := range data {
		total := o.Total()
		la := binom.Likelihood(total, o.Heads, p.A)
		lb := binom.Likelihood(total, o.Heads, p.B)

		evidence := la*prior + lb*prior
		if evidence == 0 {
			return nil, errs.DegenerateAt(i, iter)
		}
		ra := la * prior / evidence
		rb := lb * prior / evidence
		st.Resp[i] = Responsibility{A: ra, B: rb}

		st.HeadsA += ra * float64(o.Heads)
		st.TotalA += ra*float64(o.Heads) + ra*float64(o.Tails)
		st.HeadsB += rb * float64(o.Heads)
		st.TotalB += rb*float64(o.Heads) + rb*float64(o.Tails)
		st.LogLik += math.Log(evidence)
	}
	return st, nil
}

// maximize 為 M-step：以期望計數重估正面機率。
func maximize(st *EStep, iter int) (spec.Params, error) {
	if st.TotalA == 0 {
		return spec.Params{}, errs.DegenerateClass("A", iter)
	}
	if st.TotalB == 0 {
		return spec.Params{}, errs.DegenerateClass("B", iter)
	}
	return spec.Params{A: st.HeadsA / st.TotalA, B: st.HeadsB / st.TotalB}, nil
}
