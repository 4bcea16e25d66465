package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/controlfile"
	"github.com/joseph-ayodele/rental-ledger/internal/logger"
	"github.com/joseph-ayodele/rental-ledger/internal/property"
	"github.com/joseph-ayodele/rental-ledger/internal/textextract"
)

func main() {
	cfg, err := common.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if len(os.Args) < 2 {
		log.Error("usage", "cmd", "pdftext <file.pdf> [--print]")
		os.Exit(2)
	}
	path := os.Args[1]
	printText := len(os.Args) > 2 && os.Args[2] == "--print"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ex := textextract.NewExtractor(textextract.Config{
		Pdftotext:      cfg.Text.Pdftotext,
		Timeout:        cfg.Text.Timeout,
		NativeFallback: cfg.Text.NativeFallback,
	}, log)

	start := time.Now()
	res, err := ex.Extract(ctx, path)
	if err != nil {
		log.Error("text extraction failed", "path", path, "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	series := property.Series{Families: cfg.Import.SeriesFamilies, DefaultSuffix: cfg.Import.DefaultSeriesSuffix}
	det := controlfile.NewDetector(series).Detect(res.Text)

	log.Info("text extraction OK",
		"method", res.Method,
		"pages", res.Pages,
		"bytes", len(res.Text),
		"warnings", res.Warnings,
		"is_control_file", det.IsControlFile,
		"declared_property", det.PropertyName,
		"duration_ms", res.Duration.Milliseconds(),
	)
	if printText {
		fmt.Println(res.Text)
	}
}
