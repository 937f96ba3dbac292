package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/annotate"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/api"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/audit"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/config"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/dataset"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/enrich"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/logging"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/merge"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/notify"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/orchestrator"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/report"
	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/signals"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

const methodology = "Statistical outlier, relational-network, and temporal-pattern detection " +
	"over Medicaid provider spending aggregates; 14 independent signals merged per-NPI with " +
	"severity escalation, identity enrichment, and False Claims Act annotation."

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "medicaid-fraud-detector:", err)
		os.Exit(1)
	}

	log := logging.New(cfg)
	log.Info().Str("output", cfg.OutputPath).Str("signals", cfg.Signals).Bool("noGPU", cfg.NoGPU).Msg("starting run")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loader := dataset.CSVLoader{
		SpendingPath:   filepath.Join(cfg.DataDir, "spending.csv"),
		ExclusionsPath: filepath.Join(cfg.DataDir, "exclusions.csv"),
		RegistryPath:   optionalPath(cfg.DataDir, "registry.csv"),
		CensusPath:     optionalPath(cfg.DataDir, "census.csv"),
	}
	tables, err := loader.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load input tables")
	}

	agg := dataset.Build(tables)
	log.Info().Int64("distinctBillingNPIs", agg.DistinctBillingNPIs).Bool("hasRegistry", agg.HasRegistry).Bool("hasCensus", agg.HasCensus).Msg("aggregates built")

	catalog := signals.Catalog()
	selected, err := cfg.SelectedDetectorIDs()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid --signals")
	}
	if selected != nil {
		filtered := catalog[:0]
		for _, d := range catalog {
			if selected[d.ID] {
				filtered = append(filtered, d)
			}
		}
		catalog = filtered
	}

	windowStart, err := cfg.SignalWindowStartDate()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid --signal-window-start")
	}
	memLimit, err := cfg.MemoryLimitBytes()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid --memory-limit")
	}

	runner := &orchestrator.Runner{
		Env:              &signals.Env{Agg: agg, Log: log, WindowStart: windowStart},
		Catalog:          catalog,
		Log:              log,
		MemoryLimitBytes: memLimit,
	}
	if cfg.Parallel {
		runner.Parallel = cfg.ParallelMax
	}

	var progressServer *api.Server
	if cfg.ProgressAddr != "" {
		hub := api.NewHub(log)
		go hub.Run()
		go func() {
			ticker := time.NewTicker(time.Second)
			defer ticker.Stop()
			for range ticker.C {
				if data, err := json.Marshal(runner.Progress()); err == nil {
					hub.Broadcast(data)
				}
			}
		}()
		progressServer = &api.Server{Runner: runner, Hub: hub, Log: log}
		go func() {
			router := api.SetupRouter(progressServer)
			log.Info().Str("addr", cfg.ProgressAddr).Msg("progress API listening")
			if err := router.Run(cfg.ProgressAddr); err != nil {
				log.Warn().Err(err).Msg("progress API stopped")
			}
		}()
	}

	results := runner.Run(ctx)
	signalLists, detectorsRun, detectorsSkipped := orchestrator.Split(results)
	if len(detectorsSkipped) > 0 {
		log.Warn().Strs("skipped", detectorsSkipped).Msg("some detectors did not contribute signals")
	}

	records := merge.Merge(signalLists)

	enricher := &enrich.Client{
		Agg: agg,
		Log: log,
	}
	if cfg.EnrichBaseURL != "" {
		enricher.HTTPClient = &http.Client{Timeout: 3 * time.Second}
		enricher.BaseURL = cfg.EnrichBaseURL
	}
	for _, rec := range records {
		enricher.Enrich(ctx, rec)
		annotate.Annotate(rec)
	}

	rpt := report.Build(records, dataSourcesUsed(agg), methodology, agg.DistinctBillingNPIs, detectorsRun, detectorsSkipped, time.Now())

	if progressServer != nil {
		progressServer.SetReport(rpt)
	}

	if cfg.AuditDSN != "" {
		store, err := audit.Connect(ctx, cfg.AuditDSN, log)
		if err != nil {
			log.Warn().Err(err).Msg("audit persistence unavailable, continuing without it")
		} else {
			defer store.Close()
			if err := store.InitSchema(ctx); err != nil {
				log.Warn().Err(err).Msg("audit schema init failed")
			} else if err := store.SaveReport(ctx, runID(rpt), rpt); err != nil {
				log.Warn().Err(err).Msg("audit persistence failed")
			}
		}
	}

	notifier := notify.NewManager(log)
	notifier.NotifyReport(rpt)

	if err := writeReport(cfg.OutputPath, rpt); err != nil {
		log.Fatal().Err(err).Msg("failed to write report")
	}
	log.Info().Int("flagged", rpt.TotalProvidersFlagged).Float64("totalOverpayment", rpt.TotalEstimatedOverpaymentUSD).Str("path", cfg.OutputPath).Msg("run complete")
}

func optionalPath(dir, name string) string {
	p := filepath.Join(dir, name)
	if _, err := os.Stat(p); err != nil {
		return ""
	}
	return p
}

func dataSourcesUsed(agg *dataset.Aggregates) []string {
	sources := []string{"spending", "exclusions"}
	if agg.HasRegistry {
		sources = append(sources, "registry")
	}
	if agg.HasCensus {
		sources = append(sources, "census")
	}
	return sources
}

func runID(rpt models.Report) string {
	return rpt.GeneratedAt.Format("20060102T150405Z0700")
}

func writeReport(path string, rpt models.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(rpt)
}
