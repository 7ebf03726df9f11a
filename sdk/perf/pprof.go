// Package perf 以 runtime/pprof 包裝一段執行，輸出 cpu / heap / allocs profile。
package perf

import (
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"

	"github.com/zintix-labs/coinlab/errs"
)

const DefaultDir = "build/profiling" // pprof檔案寫入路徑

// Modes 為可用的 profile 模式；空字串代表不做 profiling。
var Modes = []string{"", "cpu", "heap", "allocs"}

// RunPProf 依 mode 包裝 exe 的執行並把 profile 寫進 dir，回傳 exe 的錯誤或 profiling 本身的錯誤。
//
// Usage like:
//
//	go run ./cmd/run -p cpu -sweep 2000
//	go tool pprof build/profiling/cpu.pprof
func RunPProf(exe func() error, mode string, dir string) error {
	if dir == "" {
		dir = DefaultDir
	}
	switch mode {
	case "":
		return exe()
	case "cpu":
		return cpu(exe, dir)
	case "heap":
		return snapshot(exe, dir, "heap")
	case "allocs":
		return snapshot(exe, dir, "allocs")
	default:
		return errs.InvalidSetting("unknown pprof mode %q (cpu|heap|allocs)", mode)
	}
}

// Path 回傳 mode 對應的輸出檔路徑。
func Path(dir, mode string) string {
	if dir == "" {
		dir = DefaultDir
	}
	return filepath.Join(dir, mode+".pprof")
}

func create(dir, mode string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "create pprof dir failed")
	}
	f, err := os.Create(Path(dir, mode))
	if err != nil {
		return nil, errs.Wrap(err, "create "+mode+".pprof failed")
	}
	return f, nil
}

// cpu 在 exe 期間開啟 CPU profiling；也可作為 PGO 的 default.pgo 來源。
func cpu(exe func() error, dir string) error {
	f, err := create(dir, "cpu")
	if err != nil {
		return err
	}
	defer f.Close()
	if err := pprof.StartCPUProfile(f); err != nil {
		return errs.Wrap(err, "start cpu profile failed")
	}
	defer pprof.StopCPUProfile()
	return exe()
}

// snapshot 在 exe 之後寫出一次 heap（in-use）或 allocs（累積配置）profile。
// heap 之前先 GC，讓 live objects 貼近最新狀態。
func snapshot(exe func() error, dir, mode string) error {
	if err := exe(); err != nil {
		return err
	}
	if mode == "heap" {
		runtime.GC()
	}
	f, err := create(dir, mode)
	if err != nil {
		return err
	}
	defer f.Close()
	prof := pprof.Lookup(mode)
	if prof == nil {
		return errs.NewFatal("pprof profile not found: " + mode)
	}
	if err := prof.WriteTo(f, 0); err != nil {
		return errs.Wrap(err, "write "+mode+" profile failed")
	}
	return nil
}
