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

package core_test

import (
	"sync"
	"testing"

	"github.com/zintix-labs/coinlab/sdk/core"
)

func TestPCG64Determinism(t *testing.T) {
	r1 := core.NewPCG64WithSeed(7)
	r2 := core.NewPCG64WithSeed(7)
	for i := 0; i < 5; i++ {
		if r1.Uint64() != r2.Uint64() {
			t.Fatalf("Uint64 mismatch at %d", i)
		}
	}
	if r1.Float64() != r2.Float64() {
		t.Fatalf("Float64 mismatch")
	}
}

func TestUniformRange(t *testing.T) {
	r := core.NewPCG64WithSeed(11)
	for i := 0; i < 10000; i++ {
		v := r.Uniform(0.05, 0.95)
		if v < 0.05 || v >= 0.95 {
			t.Fatalf("uniform out of range: %v", v)
		}
	}
}

func TestSnapshotRestore(t *testing.T) {
	r := core.NewPCG64WithSeed(3)
	r.Uint64()
	snap, err := r.Snapshot()
	if err != nil {
		t.Fatal(err)
	}
	want := r.Uint64()
	other := core.NewPCG64WithSeed(99)
	if err := other.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if got := other.Uint64(); got != want {
		t.Fatalf("restore mismatch: %d != %d", got, want)
	}
}

func TestSeedMakerUniqueConcurrent(t *testing.T) {
	sm := core.NewSeedMaker(42)
	const workers, per = 8, 500
	out := make(chan int64, workers*per)
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < per; i++ {
				out <- sm.Next()
			}
		}()
	}
	wg.Wait()
	close(out)
	seen := make(map[int64]struct{}, workers*per)
	for s := range out {
		if s < 0 {
			t.Fatalf("negative seed %d", s)
		}
		if _, ok := seen[s]; ok {
			t.Fatalf("duplicate seed %d", s)
		}
		seen[s] = struct{}{}
	}

	a, b := core.NewSeedMaker(5), core.NewSeedMaker(5)
	for i := 0; i < 10; i++ {
		if a.Next() != b.Next() {
			t.Fatalf("seed maker not deterministic")
		}
	}
}
