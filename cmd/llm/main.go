package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joseph-ayodele/rental-ledger/internal/app"
	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/controlfile"
	"github.com/joseph-ayodele/rental-ledger/internal/extraction"
	"github.com/joseph-ayodele/rental-ledger/internal/llm"
	"github.com/joseph-ayodele/rental-ledger/internal/logger"
	"github.com/joseph-ayodele/rental-ledger/internal/property"
	"github.com/joseph-ayodele/rental-ledger/internal/textextract"
)

// Runs the extraction backend repeatedly on one PDF or .txt file without
// touching the database and prints the decoded rows of each call.
func main() {
	cfg, err := common.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		os.Stderr.WriteString("loading config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if len(os.Args) < 2 {
		log.Error("usage: llm <file.pdf|file.txt> [times]")
		os.Exit(2)
	}
	path := os.Args[1]
	times := 3
	if len(os.Args) >= 3 {
		if n, err := strconv.Atoi(os.Args[2]); err == nil && n > 0 {
			times = n
		}
	}
	if cfg.LLM.APIKey == "" {
		log.Error("llm api key is required", "provider", cfg.LLM.Provider)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	text, err := readText(ctx, cfg.Text, path)
	if err != nil {
		log.Error("text extraction failed", "path", path, "error", err)
		os.Exit(1)
	}

	series := property.Series{Families: cfg.Import.SeriesFamilies, DefaultSuffix: cfg.Import.DefaultSeriesSuffix}
	det := controlfile.NewDetector(series).Detect(text)
	if !det.IsControlFile {
		log.Warn("document does not look like a control file", "path", path)
	}

	extractor, closer, err := app.NewExtractor(ctx, cfg.LLM, log)
	if err != nil {
		log.Error("llm backend", "error", err)
		os.Exit(1)
	}
	if closer != nil {
		defer closer.Close()
	}

	contract := llm.NewContract(det.PropertyName, filepath.Base(path))
	if cfg.LLM.MaxTextChars > 0 {
		contract.MaxTextChars = cfg.LLM.MaxTextChars
	}

	for i := 1; i <= times; i++ {
		runCtx, cancelRun := context.WithTimeout(ctx, cfg.LLM.Timeout)
		start := time.Now()
		log.Info("llm.run.start", "iter", i, "file", filepath.Base(path), "property_hint", det.PropertyName)

		resp, err := extractor.Extract(runCtx, text, contract)
		cancelRun()
		if err != nil {
			log.Error("llm.run.error", "iter", i, "err", err)
			continue
		}
		rows, err := extraction.Decode(resp, log)
		if err != nil {
			log.Error("llm.run.decode_error", "iter", i, "err", err)
			continue
		}
		log.Info("llm.run.ok", "iter", i, "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
		out, _ := json.MarshalIndent(rows, "", "  ")
		fmt.Println(string(out))

		time.Sleep(750 * time.Millisecond)
	}

	log.Info("done", "file", path, "times", times)
}

func readText(ctx context.Context, cfg common.TextConfig, path string) (string, error) {
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return textextract.Normalize(string(b)), nil
	}
	res, err := textextract.NewExtractor(textextract.Config{
		Pdftotext:      cfg.Pdftotext,
		Timeout:        cfg.Timeout,
		NativeFallback: cfg.NativeFallback,
	}, nil).Extract(ctx, path)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
