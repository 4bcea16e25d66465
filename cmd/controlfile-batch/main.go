package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/rental-ledger/internal/app"
	"github.com/joseph-ayodele/rental-ledger/internal/async"
	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/export"
	"github.com/joseph-ayodele/rental-ledger/internal/importer"
	"github.com/joseph-ayodele/rental-ledger/internal/ingest"
	"github.com/joseph-ayodele/rental-ledger/internal/logger"
	"github.com/joseph-ayodele/rental-ledger/internal/repository"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

type catalogFile struct {
	Properties []entity.Property `yaml:"properties"`
}

func main() {
	var (
		configPath = flag.String("config", "config.yaml", "path to YAML config (optional)")
		inmem      = flag.Bool("inmem", false, "use in-memory SQLite database")
		dir        = flag.String("dir", "", "directory of control-file PDFs (required)")
		catalog    = flag.String("catalog", "", "YAML file of properties to seed before importing")
		out        = flag.String("out", "", "output XLSX report (optional, defaults to parent directory)")
		force      = flag.Bool("force", false, "re-import files whose content was already imported")
		workers    = flag.Int("workers", 2, "concurrent imports")
	)
	flag.Parse()

	if *dir == "" {
		printError("Error: --dir is required\n")
		os.Exit(1)
	}
	if *out == "" {
		*out = filepath.Join(filepath.Dir(filepath.Clean(*dir)), "control-files.xlsx")
	}

	cfg, err := common.Load(*configPath)
	if err != nil {
		printError("Error: loading config: %v\n", err)
		os.Exit(1)
	}
	if *inmem {
		cfg.Database.Driver = repository.DriverSQLite
		cfg.Database.DSN = repository.MemoryDSN("controlfile-batch")
		cfg.Database.AutoMigrate = true
	}
	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx := context.Background()

	db, err := app.OpenDatabase(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close(log)

	a, err := app.New(ctx, cfg, db, nil, log)
	if err != nil {
		log.Error("failed to wire pipeline", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	if *catalog != "" {
		if err := seedCatalog(ctx, a.Store.Properties, *catalog, log); err != nil {
			log.Error("failed to seed catalog", "path", *catalog, "error", err)
			os.Exit(1)
		}
	}

	var (
		mu       sync.Mutex
		reports  []*importer.Report
		failures int
	)
	queue := async.NewProcessorQueue(a.Processor, log,
		async.WithWorkers(*workers),
		async.WithQueueSize(64),
		async.WithProcessTimeout(cfg.Watch.ProcessTimeout),
		async.WithOnDone(func(job async.Job, rep *importer.Report, err error) {
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				reports = append(reports, &importer.Report{FileName: job.FileName, Error: common.MessageOf(err)})
				return
			}
			reports = append(reports, rep)
		}),
	)

	ingestor := ingest.NewFSIngestor(a.Store.ImportRuns, queue, log)
	if *force {
		ingestor.Runs = nil
	}

	log.Info("starting ingestion", "dir", *dir)
	_, stats, err := ingestor.IngestDirectory(ctx, *dir, true)
	queue.Shutdown(ctx)
	if err != nil {
		log.Error("failed to ingest directory", "error", err)
		os.Exit(1)
	}
	log.Info("ingestion complete",
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"queued", stats.Queued,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed)

	xlsx, err := export.ReportsXLSX(reports)
	if err != nil {
		log.Error("failed to build report", "error", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, xlsx, 0644); err != nil {
		log.Error("failed to write output file", "error", err)
		os.Exit(1)
	}

	created := 0
	for _, r := range reports {
		created += r.Created
	}
	log.Info("batch processing complete",
		"files_processed", len(reports),
		"reservations_created", created,
		"failures", failures,
		"output_file", *out)

	fmt.Printf("Batch processing complete!\n")
	fmt.Printf("- Files scanned: %d\n", stats.Scanned)
	fmt.Printf("- Files processed: %d\n", len(reports))
	fmt.Printf("- Already imported: %d\n", stats.Deduplicated)
	fmt.Printf("- Reservations created: %d\n", created)
	fmt.Printf("- Failures: %d\n", failures)
	fmt.Printf("- Output: %s\n", *out)
}

// seedCatalog creates the properties listed in path that are not stored yet.
func seedCatalog(ctx context.Context, props repository.PropertyRepository, path string, log *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}
	for i := range f.Properties {
		p := f.Properties[i]
		_, err := props.GetByName(ctx, p.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, common.ErrNotFound) {
			return err
		}
		created, err := props.Create(ctx, &p)
		if err != nil {
			return fmt.Errorf("create %q: %w", p.Name, err)
		}
		log.Info("property seeded", "id", created.ID, "name", created.Name)
	}
	return nil
}
