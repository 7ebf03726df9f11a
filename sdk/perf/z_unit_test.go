package perf_test

import (
	"errors"
	"os"
	"testing"

	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/sdk/perf"
)

func TestRunPProfWritesProfiles(t *testing.T) {
	dir := t.TempDir()
	for _, mode := range []string{"cpu", "heap", "allocs"} {
		called := false
		err := perf.RunPProf(func() error { called = true; return nil }, mode, dir)
		if err != nil {
			t.Fatalf("%s: %v", mode, err)
		}
		if !called {
			t.Fatalf("%s: exe not called", mode)
		}
		st, err := os.Stat(perf.Path(dir, mode))
		if err != nil || st.Size() == 0 {
			t.Fatalf("%s: profile missing (%v)", mode, err)
		}
	}
}

func TestRunPProfPassThrough(t *testing.T) {
	boom := errors.New("boom")
	if err := perf.RunPProf(func() error { return boom }, "", t.TempDir()); !errors.Is(err, boom) {
		t.Fatalf("want boom, got %v", err)
	}
	if err := perf.RunPProf(func() error { return boom }, "heap", t.TempDir()); !errors.Is(err, boom) {
		t.Fatalf("heap: want boom, got %v", err)
	}
}

func TestRunPProfUnknownMode(t *testing.T) {
	err := perf.RunPProf(func() error { return nil }, "trace", t.TempDir())
	if !errors.Is(err, errs.ErrInvalidSetting) {
		t.Fatalf("want invalid setting, got %v", err)
	}
}
