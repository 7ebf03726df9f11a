package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/zintix-labs/coinlab"
	"github.com/zintix-labs/coinlab/demo/demo_configs"
	"github.com/zintix-labs/coinlab/server"
	"github.com/zintix-labs/coinlab/server/logger"
	"github.com/zintix-labs/coinlab/server/netsvr"
	"github.com/zintix-labs/coinlab/server/svrcfg"
)

// HTTP 入口：以內建設定（或 -configs 目錄）提供 estimate / sweep API。
func main() {
	cfg, addr, err := loadConfigFromFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	server.RunWithSvr(cfg, netsvr.NewChiServer(addr))
}

type config struct {
	Addr       string
	LogMode    string
	ConfigDir  string
	MaxStarts  int
	MaxWorkers int
}

func loadConfigFromFlags() (*svrcfg.SvrCfg, string, error) {
	cfg := new(config)
	flag.StringVar(&cfg.Addr, "addr", ":5808", "listen address")
	flag.StringVar(&cfg.LogMode, "log-mode", "ModeDev", "log mode: ModeDev|ModeProd|ModeSilence")
	flag.StringVar(&cfg.ConfigDir, "configs", "", "extra flat directory of settings (.yaml/.yml/.json)")
	flag.IntVar(&cfg.MaxStarts, "max-starts", 256, "max starts per sweep request")
	flag.IntVar(&cfg.MaxWorkers, "max-workers", 0, "max workers per sweep request (0 = NumCPU)")

	flag.Parse()

	mode, err := logger.ParseMode(cfg.LogMode)
	if err != nil {
		return nil, "", err
	}
	log, _ := logger.NewAsync(4096, mode)

	cfgs := coinlab.Configs(demo_configs.FS)
	if cfg.ConfigDir != "" {
		cfgs = append(cfgs, os.DirFS(cfg.ConfigDir))
	}
	lab, err := coinlab.NewAuto(cfgs)
	if err != nil {
		return nil, "", err
	}
	lab.WithLogger(log)

	sCfg := &svrcfg.SvrCfg{
		Log:        log,
		Lab:        lab,
		MaxStarts:  cfg.MaxStarts,
		MaxWorkers: cfg.MaxWorkers,
	}
	return sCfg, cfg.Addr, nil
}
