package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joseph-ayodele/rental-ledger/internal/app"
	"github.com/joseph-ayodele/rental-ledger/internal/async"
	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/export"
	"github.com/joseph-ayodele/rental-ledger/internal/importer"
	"github.com/joseph-ayodele/rental-ledger/internal/ingest"
	"github.com/joseph-ayodele/rental-ledger/internal/logger"
	"github.com/joseph-ayodele/rental-ledger/internal/server"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config (optional)")
	flag.Parse()

	cfg, err := common.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err := cfg.Validate(); err != nil {
		log.Error("invalid config", "error", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := app.OpenDatabase(ctx, cfg, log)
	if err != nil {
		log.Error("failed to open database", "driver", cfg.Database.Driver, "error", err)
		os.Exit(1)
	}
	defer db.Close(log)

	a, err := app.New(ctx, cfg, db, nil, log)
	if err != nil {
		log.Error("failed to wire pipeline", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	probe := func(ctx context.Context) error {
		return db.HealthCheck(ctx, 3*time.Second, log)
	}

	srv := server.New(server.Deps{
		Importer:       a.Processor,
		Properties:     a.Store.Properties,
		Reservations:   a.Store.Reservations,
		Runs:           a.Store.ImportRuns,
		Exporter:       export.NewService(a.Store.Reservations, a.Store.Properties, log),
		Catalog:        a.Catalog,
		Health:         probe,
		UploadDir:      cfg.Server.UploadDir,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		RateLimitRPS:   cfg.Server.RateLimitRPS,
		RateLimitBurst: cfg.Server.RateLimitBurst,
		Logger:         log,
	})
	httpServer := srv.HTTPServer(cfg.Server.HTTPAddr)

	go func() {
		log.Info("rental-ledger listening", "addr", cfg.Server.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http serve error", "error", err)
			stop()
		}
	}()

	var health *server.HealthServer
	if cfg.Server.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
		if err != nil {
			log.Error("failed to listen on address", "addr", cfg.Server.GRPCAddr, "error", err)
			os.Exit(1)
		}
		health = server.NewHealthServer(probe, log)
		go func() {
			if err := health.Serve(ctx, lis, 15*time.Second); err != nil {
				log.Error("grpc serve error", "error", err)
			}
		}()
	}

	var queue *async.ProcessorQueue
	if cfg.Watch.Enabled && len(cfg.Watch.Dirs) > 0 {
		queue = async.NewProcessorQueue(a.Processor, log,
			async.WithWorkers(cfg.Watch.Workers),
			async.WithQueueSize(cfg.Watch.QueueSize),
			async.WithProcessTimeout(cfg.Watch.ProcessTimeout),
			async.WithOnDone(func(job async.Job, rep *importer.Report, err error) {
				if err != nil {
					log.Warn("watch.import.failed", "file", job.FileName, "trace_id", job.TraceID, "error", err)
					return
				}
				log.Info("watch.import.done", "file", job.FileName, "run_id", rep.RunID, "created", rep.Created)
			}),
		)
		ingestor := ingest.NewFSIngestor(a.Store.ImportRuns, queue, log)
		go func() {
			err := ingestor.Watch(ctx, ingest.WatchConfig{
				Roots:       cfg.Watch.Dirs,
				InitialScan: true,
				Debounce:    cfg.Watch.Debounce,
			})
			if err != nil {
				log.Error("watcher stopped", "error", err)
			}
		}()
		log.Info("watching drop folders", "dirs", cfg.Watch.Dirs)
	}

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	if health != nil {
		health.Stop()
	}
	if queue != nil {
		queue.Shutdown(shutdownCtx)
	}
	log.Info("stopped")
}
