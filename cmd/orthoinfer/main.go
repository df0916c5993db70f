// Command orthoinfer projects curated source-species reactions and pathways
// onto a target species using precomputed homology mappings.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"orthoinfer/internal/blob"
	"orthoinfer/internal/core"
	"orthoinfer/internal/homology"
	"orthoinfer/internal/infra/persistence/memory"
	"orthoinfer/internal/platform/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "orthoinfer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		speciesCode = flag.String("species", "", "target species code, e.g. mmus (required)")
		configPath  = flag.String("config", "species.yml", "species configuration file")
		orthopairs  = flag.String("orthopairs", "orthopairs", "directory holding the orthopair mapping files")
		release     = flag.String("release", "", "release number tagged onto the report (required)")
		dumpPath    = flag.String("dump", "", "optional JSON snapshot to load into the instance store before the run")
		mode        = flag.String("mode", "dev", "logger mode: dev|prod")
		logLevel    = flag.String("log-level", "info", "log level: debug|info|warn|error")
	)
	flag.Parse()
	if *speciesCode == "" || *release == "" {
		flag.Usage()
		return fmt.Errorf("-species and -release are required")
	}

	log, err := logger.New(*mode, *logLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := homology.LoadSpeciesConfig(*configPath)
	if err != nil {
		return err
	}
	target, err := cfg.Target(*speciesCode)
	if err != nil {
		return err
	}
	maps, err := homology.Load(*orthopairs, cfg.Source, *speciesCode)
	if err != nil {
		return err
	}
	if maps.Skipped > 0 {
		log.Warn("skipped malformed mapping lines", "count", maps.Skipped)
	}

	store, err := core.OpenPersistentStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	if *dumpPath != "" {
		if err := loadDump(store, *dumpPath); err != nil {
			return err
		}
	}

	sink, err := blob.Open(ctx)
	if err != nil {
		return err
	}

	metrics := core.NewMetrics()
	if addr := os.Getenv("ORTHOINFER_METRICS_ADDR"); addr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(addr, mux); err != nil {
				log.Warn("metrics listener stopped", "error", err)
			}
		}()
	}

	run, err := core.NewRun(store, maps, core.Config{
		SourceCode: cfg.Source,
		SourceName: cfg.SourceName,
		Target:     target,
		Release:    *release,
	}, log, metrics)
	if err != nil {
		return err
	}
	summary, err := run.Execute(ctx)
	if err != nil {
		return err
	}
	if err := run.WriteOutputs(ctx, sink); err != nil {
		return err
	}
	if err := store.Flush(); err != nil {
		return fmt.Errorf("flush store: %w", err)
	}
	log.Info("run complete", "eligible", summary.Eligible, "inferred", summary.Inferred, "percent", summary.Percent())
	return nil
}

// loadDump restores a JSON snapshot (per-class record buckets) into the
// store's working set.
func loadDump(store core.PersistentStore, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read dump: %w", err)
	}
	var buckets map[string][]memory.Record
	if err := json.Unmarshal(raw, &buckets); err != nil {
		return fmt.Errorf("parse dump: %w", err)
	}
	if err := store.Restore(buckets); err != nil {
		return fmt.Errorf("restore dump: %w", err)
	}
	return nil
}
