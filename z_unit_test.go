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

package coinlab_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/zintix-labs/coinlab"
	"github.com/zintix-labs/coinlab/demo/demo_configs"
	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/spec"
)

func newLab(t *testing.T) *coinlab.Lab {
	t.Helper()
	lab, err := coinlab.NewAuto(coinlab.Configs(demo_configs.FS))
	if err != nil {
		t.Fatalf("new lab: %v", err)
	}
	return lab
}

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// 不分標籤比較兩組參數
func samePair(got spec.Params, a, b, tol float64) bool {
	return (near(got.A, a, tol) && near(got.B, b, tol)) || (near(got.A, b, tol) && near(got.B, a, tol))
}

func TestNewAutoRegistersEmbeddedConfigs(t *testing.T) {
	lab := newLab(t)
	names := lab.Names()
	if len(names) != 2 || names[0] != "coins" || names[1] != "separated" {
		t.Fatalf("names %v", names)
	}
	sum, err := lab.Summary()
	if err != nil {
		t.Fatal(err)
	}
	if len(sum) != 2 || sum[0].Observations != 8 || sum[0].Initial != (spec.Params{A: 0.6, B: 0.4}) {
		t.Fatalf("summary %+v", sum)
	}
	if sum[1].Config != "separated.yaml" {
		t.Fatalf("summary config %q", sum[1].Config)
	}
}

func TestLabEstimateByName(t *testing.T) {
	lab := newLab(t)
	res, err := lab.Estimate(context.Background(), "Coins")
	if err != nil {
		t.Fatal(err)
	}
	if !near(res.Final.A, 0.6884110229, 1e-8) || !near(res.Final.B, 0.4409525672, 1e-8) {
		t.Fatalf("final %v", res.Final)
	}

	res, err = lab.Estimate(context.Background(), "separated")
	if err != nil {
		t.Fatal(err)
	}
	if !near(res.Final.A, 0.9, 1e-5) || !near(res.Final.B, 0.1, 1e-5) {
		t.Fatalf("separated final %v", res.Final)
	}

	if _, err := lab.Estimate(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown setting")
	}
}

func TestLabEstimateByJSONAndYAML(t *testing.T) {
	lab := newLab(t)
	ctx := context.Background()

	res, err := lab.EstimateByJSON(ctx, []byte(`{"initial_p_a":0.6,"initial_p_b":0.4,"prior":0.5,"dataset":[[9,1],[6,4],[3,7],[7,3],[3,7],[5,5],[7,3],[5,5]]}`))
	if err != nil {
		t.Fatal(err)
	}
	if !near(res.Final.A, 0.6884110229, 1e-8) {
		t.Fatalf("json final %v", res.Final)
	}

	_, err = lab.EstimateByYAML(ctx, []byte("initial_p_a: 1.5\ninitial_p_b: 0.4\nprior: 0.5\ndataset: [[1, 1]]\n"))
	if !errors.Is(err, errs.ErrInvalidSetting) {
		t.Fatalf("want invalid setting, got %v", err)
	}

	_, err = lab.EstimateByYAML(ctx, []byte("initial_p_a: 0.6\ninitial_p_b: 0.4\nprior: 0.5\ndataset: [[0, 10], [0, 5]]\n"))
	if err != nil {
		t.Fatalf("all tails should not fail: %v", err)
	}
}

func TestRegisterAllRejectsDuplicateNames(t *testing.T) {
	cfg := fstest.MapFS{
		"a.yaml": {Data: []byte("name: dup\ninitial_p_a: 0.6\ninitial_p_b: 0.4\nprior: 0.5\ndataset: [[1, 1]]\n")},
		"b.yaml": {Data: []byte("name: DUP\ninitial_p_a: 0.6\ninitial_p_b: 0.4\nprior: 0.5\ndataset: [[1, 1]]\n")},
	}
	if _, err := coinlab.NewAuto(coinlab.Configs(cfg)); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestRegisterAllRejectsInvalidConfig(t *testing.T) {
	cfg := fstest.MapFS{
		"bad.yaml": {Data: []byte("initial_p_a: 0.6\ninitial_p_b: 0.4\nprior: 0.5\ndataset: [[1, -1]]\n")},
	}
	_, err := coinlab.NewAuto(coinlab.Configs(cfg))
	if !errors.Is(err, errs.ErrInvalidObservation) {
		t.Fatalf("want invalid observation, got %v", err)
	}
}

func TestRegisterAllNamesFromFilename(t *testing.T) {
	cfg := fstest.MapFS{
		"Unnamed.yml": {Data: []byte("initial_p_a: 0.6\ninitial_p_b: 0.4\nprior: 0.5\ndataset: [[1, 1]]\n")},
	}
	lab, err := coinlab.NewAuto(coinlab.Configs(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := lab.EntryByName("unnamed"); !ok {
		t.Fatalf("names %v", lab.Names())
	}
}

func TestSummaryRequiresFreeze(t *testing.T) {
	lab, err := coinlab.New(coinlab.Configs(demo_configs.FS))
	if err != nil {
		t.Fatal(err)
	}
	if err := lab.RegisterAll(); err != nil {
		t.Fatal(err)
	}
	if _, err := lab.Summary(); err == nil {
		t.Fatal("expected error before freeze")
	}
	if _, err := lab.Estimate(context.Background(), "coins"); err == nil {
		t.Fatal("expected error before freeze")
	}
}

func TestSweepFindsSeparatedOptimum(t *testing.T) {
	lab := newLab(t)
	es, err := lab.Setting("separated")
	if err != nil {
		t.Fatal(err)
	}
	sw, err := lab.NewSweeperWithSeed(es, 42)
	if err != nil {
		t.Fatal(err)
	}
	res, err := sw.Run(context.Background(), 16, 4, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Converged+res.Degenerate+res.NotConverged != res.Starts || res.Starts != 16 {
		t.Fatalf("counts %+v", res)
	}
	if !samePair(res.Best.Final, 0.9, 0.1, 1e-4) {
		t.Fatalf("best %v", res.Best.Final)
	}
	if res.Runs[res.BestIndex].LogLik != res.Best.LogLik {
		t.Fatalf("best index %d does not match best result", res.BestIndex)
	}
	for i, r := range res.Runs {
		if r.Status == coinlab.StatusConverged && r.LogLik > res.Best.LogLik {
			t.Fatalf("run %d has higher log-likelihood than best", i)
		}
	}
}

func TestSweepIsReproducible(t *testing.T) {
	lab := newLab(t)
	es, err := lab.Setting("coins")
	if err != nil {
		t.Fatal(err)
	}
	run := func(workers int) *coinlab.SweepResult {
		sw, err := lab.NewSweeperWithSeed(es, 7)
		if err != nil {
			t.Fatal(err)
		}
		res, err := sw.Run(context.Background(), 12, workers, false)
		if err != nil {
			t.Fatal(err)
		}
		return res
	}
	a, b := run(1), run(6)
	if a.BestIndex != b.BestIndex || a.Best.Final != b.Best.Final {
		t.Fatalf("best differs: %v vs %v", a.Best.Final, b.Best.Final)
	}
	for i := range a.Runs {
		if a.Runs[i] != b.Runs[i] {
			t.Fatalf("run %d differs: %+v vs %+v", i, a.Runs[i], b.Runs[i])
		}
	}
}

func TestSweepRejectsBadArgs(t *testing.T) {
	lab := newLab(t)
	sw, err := lab.NewSweeper(spec.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := sw.Run(context.Background(), 0, 1, false); !errors.Is(err, errs.ErrInvalidSetting) {
		t.Fatalf("starts=0: %v", err)
	}
	if _, err := sw.Run(context.Background(), 1, 0, false); !errors.Is(err, errs.ErrInvalidSetting) {
		t.Fatalf("workers=0: %v", err)
	}
}

func TestSweepAllStartsFail(t *testing.T) {
	lab := newLab(t)
	es := spec.Default()
	es.MaxIter = 1
	sw, err := lab.NewSweeperWithSeed(es, 3)
	if err != nil {
		t.Fatal(err)
	}
	_, err = sw.Run(context.Background(), 4, 2, false)
	if !errors.Is(err, errs.ErrNotConverged) {
		t.Fatalf("want not converged, got %v", err)
	}
}

func TestSweepCanceled(t *testing.T) {
	lab := newLab(t)
	sw, err := lab.NewSweeperWithSeed(spec.Default(), 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := sw.Run(ctx, 4, 2, false); !errors.Is(err, context.Canceled) {
		t.Fatalf("want canceled, got %v", err)
	}
}

func TestSummaryConcurrentReaders(t *testing.T) {
	lab := newLab(t)
	const n = 8
	got := make([]int, n)
	errc := make(chan error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sum, err := lab.Summary()
			if err != nil {
				errc <- err
				return
			}
			got[i] = len(sum)
		}()
	}
	wg.Wait()
	close(errc)
	for err := range errc {
		t.Fatalf("summary: %v", err)
	}
	for i, c := range got {
		if c != 2 {
			t.Fatalf("reader %d saw %d entries", i, c)
		}
	}
}
