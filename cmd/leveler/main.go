package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sitework/leveler/internal/engine"
	"github.com/sitework/leveler/internal/events"
	"github.com/sitework/leveler/internal/model"
	"github.com/sitework/leveler/internal/store"
	yamlutil "github.com/sitework/leveler/internal/yaml"
)

const version = "1.0.0"

const levelerDir = ".leveler"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "init":
		runInit(os.Args[2:])
	case "store":
		runStore(os.Args[2:])
	case "analyze":
		runAnalyze(os.Args[2:])
	case "apply":
		runApply(os.Args[2:])
	case "version":
		fmt.Printf("leveler %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`leveler - resource conflict detection and schedule leveling

Usage:
  leveler init [-sample]            Create .leveler/ with config and entity files
  leveler store                     Run the entity store daemon
  leveler analyze [options]         Detect conflicts and build recommendations
  leveler apply [options]           Apply one recommendation from a fresh analysis
  leveler version                   Print version

Analyze options:
  -strategy <name>    balanced | minimize_delay | maximize_efficiency
  -resource <id>      Restrict detection to one resource
  -o <format>         text | yaml (default text)

Apply options:
  -strategy <name>    Strategy for the underlying analysis
  -pick <n>           1-based index of the recommendation to apply`)
}

func runInit(args []string) {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	dir := fs.String("dir", levelerDir, "leveler directory")
	sample := fs.Bool("sample", false, "seed a small example schedule instead of empty entity files")
	_ = fs.Parse(args)

	if err := os.MkdirAll(*dir, 0755); err != nil {
		fatal("create %s: %v", *dir, err)
	}

	cfgPath := filepath.Join(*dir, "config.yaml")
	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		cfg := model.DefaultConfig()
		cfg.Store.DataDir = filepath.Join(*dir, "data")
		cfg.Store.Socket = filepath.Join(*dir, store.DefaultSocketName)
		if err := yamlutil.AtomicWrite(cfgPath, cfg); err != nil {
			fatal("write config: %v", err)
		}
		fmt.Printf("wrote %s\n", cfgPath)
	} else {
		fmt.Printf("%s already exists, leaving it alone\n", cfgPath)
	}

	cfg := loadConfig(*dir)
	if *sample {
		if err := store.WriteSampleData(cfg.Store.DataDir); err != nil {
			fatal("seed sample data: %v", err)
		}
		fmt.Printf("seeded sample schedule in %s\n", cfg.Store.DataDir)
		return
	}
	if err := store.WriteSeedFiles(cfg.Store.DataDir); err != nil {
		fatal("seed entity files: %v", err)
	}
	fmt.Printf("seeded entity files in %s\n", cfg.Store.DataDir)
}

func runStore(args []string) {
	fs := flag.NewFlagSet("store", flag.ExitOnError)
	dir := fs.String("dir", levelerDir, "leveler directory")
	_ = fs.Parse(args)

	cfg := loadConfig(*dir)
	logger := log.New(os.Stderr, "", 0)

	srv, err := store.NewServer(cfg.Store.DataDir, cfg.Store.Socket, logger)
	if err != nil {
		fatal("start store: %v", err)
	}
	if err := srv.Start(); err != nil {
		fatal("start store: %v", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	if err := srv.Stop(); err != nil {
		fatal("stop store: %v", err)
	}
}

func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	dir := fs.String("dir", levelerDir, "leveler directory")
	strategyFlag := fs.String("strategy", "", "leveling strategy")
	resource := fs.String("resource", "", "restrict detection to one resource")
	output := fs.String("o", "text", "output format: text | yaml")
	_ = fs.Parse(args)

	cfg := loadConfig(*dir)
	analyzer := newAnalyzer(cfg)

	report, err := analyzer.Analyze(context.Background(), engine.AnalyzeOptions{
		Strategy:   parseStrategy(cfg, *strategyFlag),
		ResourceID: *resource,
	})
	if err != nil {
		fatal("analyze: %v", err)
	}

	switch *output {
	case "yaml":
		if err := report.WriteYAML(os.Stdout); err != nil {
			fatal("write report: %v", err)
		}
	default:
		_ = report.WriteText(os.Stdout)
	}
}

func runApply(args []string) {
	fs := flag.NewFlagSet("apply", flag.ExitOnError)
	dir := fs.String("dir", levelerDir, "leveler directory")
	strategyFlag := fs.String("strategy", "", "leveling strategy")
	pick := fs.Int("pick", 0, "1-based index of the recommendation to apply")
	_ = fs.Parse(args)

	if *pick < 1 {
		fatal("apply requires -pick <n> (run `leveler analyze` to list recommendations)")
	}

	cfg := loadConfig(*dir)
	analyzer := newAnalyzerWithAudit(cfg, *dir)

	ctx := context.Background()
	report, err := analyzer.Analyze(ctx, engine.AnalyzeOptions{
		Strategy: parseStrategy(cfg, *strategyFlag),
	})
	if err != nil {
		fatal("analyze: %v", err)
	}

	if *pick > len(report.Recommendations) {
		fatal("pick %d out of range: analysis produced %d recommendation(s)", *pick, len(report.Recommendations))
	}
	rec := report.Recommendations[*pick-1]

	updated, err := analyzer.ApplyResolution(ctx, rec)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrVersionConflict):
			fatal("apply rejected, the task changed since this analysis: %v\nRe-run `leveler analyze` and pick again.", err)
		case errors.Is(err, store.ErrValidation):
			fatal("apply rejected by the store: %v", err)
		default:
			fatal("apply: %v", err)
		}
	}

	fmt.Printf("applied %s to task %s (now version %d)\n", rec.Kind(), updated.ID, updated.Version)
	fmt.Printf("  %s\n", rec.Rationale())
	fmt.Println("recommendations from this analysis are now stale; re-run `leveler analyze`")
}

func newAnalyzer(cfg model.Config) *engine.Analyzer {
	logger := log.New(os.Stderr, "", 0)
	client := store.NewClient(cfg.Store.Socket)
	client.SetTimeout(time.Duration(cfg.Store.RequestTimeoutSec) * time.Second)

	return engine.New(client, cfg.Policy,
		engine.WithLogger(logger, engine.ParseLogLevel(cfg.Logging.Level)),
		engine.WithWorkers(cfg.Engine.Workers),
		engine.WithAnalysisTimeout(time.Duration(cfg.Engine.AnalysisTimeoutSec)*time.Second),
	)
}

func newAnalyzerWithAudit(cfg model.Config, dir string) *engine.Analyzer {
	logger := log.New(os.Stderr, "", 0)
	client := store.NewClient(cfg.Store.Socket)
	client.SetTimeout(time.Duration(cfg.Store.RequestTimeoutSec) * time.Second)

	audit, err := events.NewAuditLogger(filepath.Join(dir, "audit.jsonl"), 0)
	if err != nil {
		fatal("open audit log: %v", err)
	}

	return engine.New(client, cfg.Policy,
		engine.WithLogger(logger, engine.ParseLogLevel(cfg.Logging.Level)),
		engine.WithWorkers(cfg.Engine.Workers),
		engine.WithAnalysisTimeout(time.Duration(cfg.Engine.AnalysisTimeoutSec)*time.Second),
		engine.WithAuditLogger(audit),
	)
}

func loadConfig(dir string) model.Config {
	cfg := model.DefaultConfig()
	cfgPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(cfgPath); err == nil {
		if err := yamlutil.Load(cfgPath, &cfg); err != nil {
			fatal("load config: %v", err)
		}
	}
	cfg.ApplyDefaults()
	if cfg.Store.DataDir == ".leveler/data" {
		cfg.Store.DataDir = filepath.Join(dir, "data")
	}
	if cfg.Store.Socket == ".leveler/store.sock" {
		cfg.Store.Socket = filepath.Join(dir, store.DefaultSocketName)
	}
	return cfg
}

func parseStrategy(cfg model.Config, flagValue string) model.Strategy {
	raw := flagValue
	if raw == "" {
		raw = cfg.Engine.DefaultStrategy
	}
	strategy, err := model.ParseStrategy(raw)
	if err != nil {
		fatal("%v", err)
	}
	return strategy
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
