package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"gdra/internal/config"
	"gdra/internal/infrastructure"
	"gdra/internal/operations"
	"gdra/pkg/contracts"
	"gdra/pkg/contracts/domain"
)

func main() {
	dataDir := flag.String("data", "", "input data directory (defaults to configured paths.data_dir)")
	outDir := flag.String("out", "", "output directory for run artifacts (defaults to configured paths.output_dir)")
	yearStart := flag.Int("year-start", 0, "first year of the fusion horizon (overrides configuration)")
	yearEnd := flag.Int("year-end", 0, "last year of the fusion horizon (overrides configuration)")
	disable := flag.String("disable", "", "comma-separated source keys to skip for this run")
	runTimeout := flag.Duration("timeout", 0, "overall run timeout (overrides pipeline.run_timeout)")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	// Flags win over file and environment settings
	if *dataDir != "" {
		cfg.Paths.DataDir = *dataDir
	}
	if *outDir != "" {
		cfg.Paths.OutputDir = *outDir
	}
	if *yearStart > 0 {
		cfg.Pipeline.YearStart = *yearStart
	}
	if *yearEnd > 0 {
		cfg.Pipeline.YearEnd = *yearEnd
	}
	if *runTimeout > 0 {
		cfg.Pipeline.RunTimeout = *runTimeout
	}
	if *disable != "" {
		for _, src := range strings.Split(*disable, ",") {
			if src = strings.TrimSpace(src); src != "" {
				cfg.Sources.Disabled = append(cfg.Sources.Disabled, src)
			}
		}
	}
	if cfg.Pipeline.YearEnd < cfg.Pipeline.YearStart {
		slog.Error("Invalid year range",
			"year_start", cfg.Pipeline.YearStart,
			"year_end", cfg.Pipeline.YearEnd)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	paths, err := config.ResolvePaths(cfg)
	if err != nil {
		logger.Error("Failed to resolve paths", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := paths.EnsureDirectories(); err != nil {
		logger.Error("Failed to create required directories", slog.String("error", err.Error()))
		os.Exit(1)
	}
	paths.LogPathResolution()

	// Telemetry is best effort for batch runs: a failed exporter must not
	// block the fusion itself.
	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		logger.Warn("Failed to initialize OpenTelemetry", slog.String("error", err.Error()))
	} else {
		if err := operations.InitGlobalOperationTracer(otelProviders); err != nil {
			logger.Warn("Failed to initialize operation tracer", slog.String("error", err.Error()))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := otelProviders.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Failed to shut down OpenTelemetry", slog.String("error", err.Error()))
			}
		}()
	}

	logger.Info("Starting resilience fusion run",
		slog.String("data_dir", paths.DataDir),
		slog.String("output_dir", paths.OutputDir),
		slog.Int("year_start", cfg.Pipeline.YearStart),
		slog.Int("year_end", cfg.Pipeline.YearEnd),
		slog.Int("workers", cfg.Pipeline.Workers),
		slog.Any("disabled_sources", cfg.Sources.Disabled))

	registry := operations.NewRegistry()
	stages := []operations.Step{
		operations.NewExtractStage(cfg, paths, logger),
		operations.NewFuseStage(cfg, logger),
		operations.NewImputeStage(logger),
		operations.NewIndicesStage(logger),
		operations.NewValidateStage(cfg, logger),
		operations.NewExportStage(paths, logger),
	}
	for _, stage := range stages {
		if err := registry.Register(stage); err != nil {
			logger.Error("Failed to register stage",
				slog.String("stage", stage.ID()),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	manager := operations.NewManager(paths, registry, operations.NewConfig())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Pipeline.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Pipeline.RunTimeout)
		defer cancel()
	}

	enabled := 0
	for _, key := range domain.SourceKeys() {
		if cfg.SourceEnabled(key) {
			enabled++
		}
	}
	fmt.Printf("Fusing %d sources for %d-%d into %s\n",
		enabled, cfg.Pipeline.YearStart, cfg.Pipeline.YearEnd, paths.OutputDir)

	started := time.Now()
	resp, err := manager.Execute(ctx, operations.OperationRequest{
		YearStart: cfg.Pipeline.YearStart,
		YearEnd:   cfg.Pipeline.YearEnd,
	})
	if resp != nil {
		printStageSummary(stages, resp)
	}
	if err != nil {
		logger.Error("Fusion run failed",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(started)))
		if errors.Is(ctx.Err(), context.Canceled) {
			fmt.Println("Run interrupted")
		}
		fmt.Printf("Run failed after %s: %v\n", time.Since(started).Round(time.Millisecond), err)
		os.Exit(1)
	}

	logger.Info("Fusion run completed",
		slog.String("operation_id", resp.ID),
		slog.String("status", string(resp.Status)),
		slog.Duration("duration", resp.Duration))

	fmt.Printf("Run %s completed in %s\n", resp.ID, resp.Duration.Round(time.Millisecond))
	fmt.Printf("Artifacts written to %s\n", paths.OutputDir)
}

// printStageSummary reports per-stage outcomes in pipeline order.
func printStageSummary(stages []operations.Step, resp *operations.OperationResponse) {
	fmt.Println()
	for _, stage := range stages {
		state, ok := resp.Steps[stage.ID()]
		if !ok {
			continue
		}
		line := fmt.Sprintf("  %-22s %-9s %s", state.Name, state.Status, state.Duration().Round(time.Millisecond))
		if state.Status == operations.StepStatusFailed && state.Error != nil {
			line += fmt.Sprintf("  (%v)", state.Error)
		}
		if state.Status == operations.StepStatusSkipped && state.Message != "" {
			line += fmt.Sprintf("  (%s)", state.Message)
		}
		fmt.Println(line)
	}
	fmt.Println()
}
