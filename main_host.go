//go:build !tinygo

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"ember/app"
	"ember/hal"
)

func main() {
	var cfg hal.HeadlessConfig
	var dumpEvery uint64
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window.")
	flag.IntVar(&cfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.Uint64Var(&dumpEvery, "dump-every", 0, "Log a process listing every N ticks (0 = off).")
	flag.Parse()

	appCfg := app.Config{DumpEvery: dumpEvery}

	if cfg.Enabled {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, func(h hal.HAL) func() error {
			return app.NewWithConfig(h, appCfg)
		}, cfg); err != nil {
			if err == context.Canceled {
				return
			}
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := hal.RunWindow(func(h hal.HAL) func() error {
		return app.NewWithConfig(h, appCfg)
	}); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
