package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/zintix-labs/coinlab"
	"github.com/zintix-labs/coinlab/catalog"
	"github.com/zintix-labs/coinlab/demo"
	"github.com/zintix-labs/coinlab/demo/demo_configs"
	"github.com/zintix-labs/coinlab/errs"
	"github.com/zintix-labs/coinlab/sdk/core"
	"github.com/zintix-labs/coinlab/sdk/perf"
	"github.com/zintix-labs/coinlab/server/logger"
	"github.com/zintix-labs/coinlab/spec"
	"github.com/zintix-labs/coinlab/stats"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

type config struct {
	configPath string
	name       string
	format     string
	trace      bool
	sweep      int
	worker     int
	seed       int64
	showpb     bool
	logMode    string
	pprofmode  string

	// 合成資料（groups > 0 時取代設定內的 dataset）
	genGroups int
	genFlips  int
	genPA     float64
	genPB     float64
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	cfg := new(config)
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	// 綁定 Flag 到本地變數的指標 (&)
	fs.StringVar(&cfg.configPath, "config", "", "setting file (.yaml/.yml/.json); empty uses the embedded settings")
	fs.StringVar(&cfg.name, "name", "coins", "embedded setting name")
	fs.StringVar(&cfg.format, "format", "", "output: '' (two lines), text, json, yaml")
	fs.BoolVar(&cfg.trace, "trace", false, "include the per-iteration trace (text/json/yaml)")
	fs.IntVar(&cfg.sweep, "sweep", 0, "multi-start sweep with N random starts (0 = off)")
	fs.IntVar(&cfg.worker, "worker", 1, "number of sweep workers")
	fs.Int64Var(&cfg.seed, "seed", -1, "int64 seed for sweep starts and synthetic data")
	fs.BoolVar(&cfg.showpb, "pb", false, "show the sweep progress bar on stderr")
	fs.StringVar(&cfg.logMode, "log-mode", "ModeSilence", "log mode: ModeDev|ModeProd|ModeSilence (logs go to stderr)")
	fs.StringVar(&cfg.pprofmode, "p", "", "pprof: "+strings.Join(perf.Modes[1:], ", "))
	fs.IntVar(&cfg.genGroups, "gen-groups", 0, "generate N synthetic groups instead of the setting's dataset")
	fs.IntVar(&cfg.genFlips, "gen-flips", 10, "flips per synthetic group")
	fs.Float64Var(&cfg.genPA, "gen-pa", 0.8, "true bias of coin A for synthetic data")
	fs.Float64Var(&cfg.genPB, "gen-pb", 0.3, "true bias of coin B for synthetic data")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, errs.InvalidSetting("unexpected arguments: %v", fs.Args())
	}
	if err := cfg.valid(); err != nil {
		return nil, err
	}
	// given seed illegal -> random seed
	if cfg.seed < 0 {
		cfg.seed = core.RandomSeed()
	}
	return cfg, nil
}

func (cfg *config) valid() error {
	if cfg.sweep < 0 {
		return errs.InvalidSetting("sweep must be >= 0")
	}
	if cfg.worker < 1 {
		return errs.InvalidSetting("worker must be > 0")
	}
	if cfg.format != "" && stats.RenderByName(cfg.format, cfg.trace) == nil {
		return errs.InvalidSetting("unknown format %q (text|json|yaml)", cfg.format)
	}
	if cfg.genGroups < 0 {
		return errs.InvalidSetting("gen-groups must be >= 0")
	}
	return nil
}

// run 是整個 CLI 的進入點；回傳 process exit code。
func run(args []string, stdout, stderr io.Writer) int {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintln(stderr, "error:", err)
		return 2
	}
	exe := func() error { return execute(cfg, stdout, stderr) }
	if err := perf.RunPProf(exe, cfg.pprofmode, perf.DefaultDir); err != nil {
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

func execute(cfg *config, stdout, stderr io.Writer) error {
	mode, err := logger.ParseMode(cfg.logMode)
	if err != nil {
		return err
	}
	log := logger.NewLoggerTo(stderr, mode)

	lab, err := coinlab.NewAuto(coinlab.Configs(demo_configs.FS))
	if err != nil {
		return err
	}
	lab.WithLogger(log)

	es, err := loadSetting(cfg, lab)
	if err != nil {
		return err
	}

	ctx := context.Background()
	if cfg.sweep > 0 {
		return executeSweep(ctx, cfg, lab, es, stdout, stderr)
	}
	res, err := lab.EstimateSetting(ctx, es)
	if err != nil {
		return err
	}
	return printResult(cfg, res, stdout)
}

func loadSetting(cfg *config, lab *coinlab.Lab) (*spec.EstimateSetting, error) {
	var (
		es  *spec.EstimateSetting
		err error
	)
	if cfg.configPath != "" {
		raw, rerr := os.ReadFile(cfg.configPath)
		if rerr != nil {
			return nil, errs.Wrap(rerr, "read config failed")
		}
		es, err = catalog.ParseByExt(cfg.configPath, raw)
	} else {
		es, err = lab.Setting(cfg.name)
	}
	if err != nil {
		return nil, err
	}
	if cfg.genGroups > 0 {
		s, err := demo.Generate(cfg.seed, cfg.genGroups, cfg.genFlips, cfg.genPA, cfg.genPB)
		if err != nil {
			return nil, err
		}
		return s.Setting(es.Name+"-synthetic", es.Initial())
	}
	return es, nil
}

// printResult 預設只輸出兩行：初始參數與最終參數。
func printResult(cfg *config, res *stats.Result, stdout io.Writer) error {
	if cfg.format == "" {
		_, err := fmt.Fprintf(stdout,
			"initial parameters of coin A and B respectively: %s\nFinal Parameters of coin A and B respectively: %s\n",
			res.Initial, res.Final)
		return err
	}
	if !cfg.trace {
		res.Trace = nil
	}
	return res.WriteWith(stdout, stats.RenderByName(cfg.format, cfg.trace))
}

func executeSweep(ctx context.Context, cfg *config, lab *coinlab.Lab, es *spec.EstimateSetting, stdout, stderr io.Writer) error {
	sw, err := lab.NewSweeperWithSeed(es, cfg.seed)
	if err != nil {
		return err
	}
	if cfg.showpb {
		p := message.NewPrinter(language.English)
		p.Fprintf(stderr, "[SETTING:%s] [STARTS:%d] [WORKERS:%d] [SEED:%d]\n", es.Name, cfg.sweep, cfg.worker, cfg.seed)
	}
	res, err := sw.Run(ctx, cfg.sweep, cfg.worker, cfg.showpb)
	if err != nil {
		return err
	}
	if cfg.format == "" {
		p := message.NewPrinter(language.English)
		p.Fprintf(stdout, "sweep: %d starts, %d converged, %d degenerate, %d not converged, best start #%d %s\n",
			res.Starts, res.Converged, res.Degenerate, res.NotConverged, res.BestIndex, res.Runs[res.BestIndex].Start)
	}
	return printResult(cfg, res.Best, stdout)
}
