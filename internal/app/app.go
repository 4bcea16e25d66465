// Package app wires the import pipeline from a loaded configuration. It is
// shared by the daemon and the batch CLI.
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/rental-ledger/internal/archive"
	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/controlfile"
	"github.com/joseph-ayodele/rental-ledger/internal/importer"
	"github.com/joseph-ayodele/rental-ledger/internal/llm"
	"github.com/joseph-ayodele/rental-ledger/internal/llm/gemini"
	"github.com/joseph-ayodele/rental-ledger/internal/llm/openai"
	"github.com/joseph-ayodele/rental-ledger/internal/normalize"
	"github.com/joseph-ayodele/rental-ledger/internal/notify"
	"github.com/joseph-ayodele/rental-ledger/internal/property"
	"github.com/joseph-ayodele/rental-ledger/internal/repository"
	"github.com/joseph-ayodele/rental-ledger/internal/textextract"
	"github.com/joseph-ayodele/rental-ledger/internal/validation"
)

// App holds the long-lived components built from a Config.
type App struct {
	Config    *common.Config
	Logger    *slog.Logger
	DB        *repository.DB
	Store     *repository.Store
	Catalog   *property.CachedCatalog
	Processor *importer.Processor

	closers []io.Closer
}

// OpenDatabase connects to the configured store and applies the schema when
// auto-migration is on.
func OpenDatabase(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*repository.DB, error) {
	db, err := repository.Open(ctx, repository.Config{
		Driver:           cfg.Database.Driver,
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}
	if err := db.HealthCheck(ctx, 5*time.Second, logger); err != nil {
		db.Close(logger)
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db, logger); err != nil {
			db.Close(logger)
			return nil, err
		}
	}
	return db, nil
}

// NewExtractor builds the configured extraction backend wrapped in the
// payload sanitizer.
func NewExtractor(ctx context.Context, cfg common.LLMConfig, logger *slog.Logger) (llm.ReservationExtractor, io.Closer, error) {
	switch cfg.Provider {
	case "gemini":
		c, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		}, logger)
		if err != nil {
			return nil, nil, common.NewAppError(common.CodeConfig, "gemini client", err)
		}
		logger.Info("llm backend ready", "provider", "gemini", "model", cfg.Model)
		return llm.WithSanitizer(c, logger), c, nil
	case "openai", "":
		c := openai.NewClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			Timeout:     cfg.Timeout,
		}, logger)
		logger.Info("llm backend ready", "provider", "openai", "model", cfg.Model)
		return llm.WithSanitizer(c, logger), nil, nil
	default:
		return nil, nil, common.NewAppError(common.CodeConfig, fmt.Sprintf("unknown llm provider %q", cfg.Provider), common.ErrInvalidInput)
	}
}

// New builds the processor and its collaborators on top of an open DB.
// extractor may be nil, in which case the configured backend is used.
func New(ctx context.Context, cfg *common.Config, db *repository.DB, extractor llm.ReservationExtractor, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{Config: cfg, Logger: logger, DB: db}

	if extractor == nil {
		ex, closer, err := NewExtractor(ctx, cfg.LLM, logger)
		if err != nil {
			return nil, err
		}
		extractor = ex
		if closer != nil {
			a.closers = append(a.closers, closer)
		}
	}

	a.Store = repository.NewStore(db, logger)
	a.Catalog = property.NewCachedCatalog(a.Store.Properties, cfg.Import.CatalogCacheTTL)

	series := property.Series{Families: cfg.Import.SeriesFamilies, DefaultSuffix: cfg.Import.DefaultSeriesSuffix}
	if len(series.Families) == 0 {
		series = property.DefaultSeries
	}

	opts := []importer.Option{
		importer.WithLogger(logger),
		importer.WithTextExtractor(textextract.NewExtractor(textextract.Config{
			Pdftotext:      cfg.Text.Pdftotext,
			Timeout:        cfg.Text.Timeout,
			NativeFallback: cfg.Text.NativeFallback,
		}, logger)),
		importer.WithDetector(controlfile.NewDetector(series)),
		importer.WithResolver(property.NewResolver(a.Catalog,
			property.WithMinScore(cfg.Import.MinMatchScore),
			property.WithSeries(series),
			property.WithLogger(logger),
		)),
		importer.WithNormalizer(normalize.New(cfg.Import.ReviewThreshold)),
		importer.WithValidator(validation.New(a.Store,
			validation.WithMaxStayDays(cfg.Import.MaxStayDays),
			validation.WithMaxGuests(cfg.Import.MaxGuests),
			validation.WithWorkers(cfg.Import.ValidationWorkers),
			validation.WithLogger(logger),
		)),
		importer.WithRunRecorder(a.Store.ImportRuns),
		importer.WithIntraBatchDuplicates(cfg.Import.IntraBatchDuplicates),
		importer.WithExtractTimeout(cfg.LLM.Timeout),
	}

	if cfg.Archive.Enabled {
		arch, err := archive.NewMinioArchiver(cfg.Archive, logger)
		if err != nil {
			return nil, err
		}
		if err := arch.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		opts = append(opts, importer.WithArchiver(arch))
	}
	if cfg.Notify.Enabled {
		n, err := notify.NewMailgunNotifier(cfg.Notify, logger)
		if err != nil {
			return nil, err
		}
		opts = append(opts, importer.WithNotifier(n))
	}

	a.Processor = importer.NewProcessor(a.Store, extractor, opts...)
	return a, nil
}

// Close releases backend clients. The DB is owned by the caller.
func (a *App) Close() {
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.Logger.Warn("close failed", "error", err)
		}
	}
}
