package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"prosperitybt/internal/config"
	"prosperitybt/internal/engine"
	"prosperitybt/internal/repository"
	"prosperitybt/internal/rounddata"
	"prosperitybt/internal/visualizer"
	"prosperitybt/strategies"
)

func main() {
	app := &cli.App{
		Name:  "prosperitybt",
		Usage: "backtest trading strategies against recorded round data",
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "run a strategy against a round",
				ArgsUsage: "<strategy> <round>",
				Description: "Replays the given round's data against a strategy and writes a\n" +
					"log file the web visualizer can load.\n\n" +
					"Strategies: " + strings.Join(strategies.Names(), ", "),
				Flags: []cli.Flag{
					&cli.IntSliceFlag{
						Name:  "days",
						Usage: "days of the round to replay (default: all)",
					},
					&cli.StringFlag{
						Name:  "data",
						Usage: "round data pack directory",
					},
					&cli.StringFlag{
						Name:  "source",
						Value: "csv",
						Usage: "round data source: csv or db",
					},
					&cli.StringFlag{
						Name:  "dsn",
						Usage: "Postgres connection string for --source db",
					},
					&cli.StringFlag{
						Name:  "out",
						Usage: "log file path (default: backtests/<timestamp>.log)",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "YAML config overriding the built-in rounds",
					},
					&cli.BoolFlag{
						Name:  "no-progress",
						Usage: "disable the progress bar",
					},
					&cli.BoolFlag{
						Name:  "vis",
						Usage: "serve the log for the web visualizer after the run",
					},
					&cli.StringFlag{
						Name:  "addr",
						Value: "localhost:0",
						Usage: "listen address for --vis",
					},
				},
				Action: runBacktest,
			},
			{
				Name:      "serve",
				Usage:     "serve an existing log file for the web visualizer",
				ArgsUsage: "<logfile>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Value: "localhost:0",
						Usage: "listen address",
					},
					&cli.BoolFlag{
						Name:  "open",
						Usage: "try to open the visualizer in a browser",
					},
				},
				Action: serveLog,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func runBacktest(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: prosperitybt run <strategy> <round>", 1)
	}
	round, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return fmt.Errorf("round %q is not a number", c.Args().Get(1))
	}

	cfg := config.Default()
	if path := c.String("config"); path != "" {
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}
	roundCfg, err := cfg.Round(round)
	if err != nil {
		return err
	}

	trader, err := strategies.New(c.Args().Get(0))
	if err != nil {
		return err
	}

	var source rounddata.Source
	switch c.String("source") {
	case "csv":
		dataDir := c.String("data")
		if dataDir == "" {
			dataDir = cfg.DataDir
		}
		source = rounddata.NewPackSource(dataDir)
	case "db":
		db, err := repository.NewDatabase(c.Context, c.String("dsn"))
		if err != nil {
			return err
		}
		defer db.Close()
		source = &db
	default:
		return fmt.Errorf("unknown source %q", c.String("source"))
	}

	logPath := c.String("out")
	if logPath == "" {
		logPath = filepath.Join("backtests", fmt.Sprintf("%d.log", time.Now().Unix()))
	}

	runCfg := engine.NewConfig(round, roundCfg.Limits())
	runCfg.Days = firstNonEmpty(c.IntSlice("days"), roundCfg.Days)
	runCfg.ConversionProducts = roundCfg.ConversionProducts()
	runCfg.LogPath = logPath
	runCfg.ShowProgress = !c.Bool("no-progress")

	report, err := engine.New(runCfg, trader, source).Run(c.Context)
	if err != nil {
		return err
	}
	report.Print()

	if c.Bool("vis") {
		return visualizer.Serve(c.Context, logPath, c.String("addr"), true)
	}
	return nil
}

func serveLog(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: prosperitybt serve <logfile>", 1)
	}
	return visualizer.Serve(c.Context, c.Args().Get(0), c.String("addr"), c.Bool("open"))
}

func firstNonEmpty(a, b []int) []int {
	if len(a) > 0 {
		return a
	}
	return b
}
