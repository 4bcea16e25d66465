package textextract

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
)

const (
	MethodPdftotext = "pdftotext"
	MethodNative    = "native"
)

type Config struct {
	Pdftotext      string        // binary name or absolute path; if empty -> "pdftotext"
	Timeout        time.Duration // per-command timeout; 0 = none
	NativeFallback bool          // fall back to the pure-Go reader
	MaxPages       int           // 0 = no limit
}

// Result is the plain text of one document.
type Result struct {
	Text     string
	Pages    int
	Method   string
	Duration time.Duration
	Warnings []string
}

// NativeReader extracts text without external tools.
type NativeReader func(path string, maxPages int) (string, int, error)

type Extractor struct {
	cfg    Config
	runner Runner
	native NativeReader
	logger *slog.Logger
}

type Option func(*Extractor)

// WithRunner swaps the command runner (tests).
func WithRunner(r Runner) Option {
	return func(e *Extractor) { e.runner = r }
}

// WithNativeReader swaps the pure-Go reader (tests).
func WithNativeReader(n NativeReader) Option {
	return func(e *Extractor) { e.native = n }
}

func NewExtractor(cfg Config, logger *slog.Logger, opts ...Option) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	e := &Extractor{cfg: cfg, runner: execRunner{logger: logger}, native: readNative, logger: logger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract returns the normalized text of the PDF at path. A document with no
// extractable text is an UNREADABLE_PDF input error.
func (e *Extractor) Extract(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	if _, err := os.Stat(path); err != nil {
		return Result{}, common.NewAppError(common.CodeUnreadablePDF, "file cannot be read", err)
	}

	res := Result{Method: MethodPdftotext}
	text, pages, warns, err := e.pdfToText(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return Result{}, ctx.Err()
		}
		res.Warnings = append(res.Warnings, "pdftotext: "+err.Error())
	}

	if strings.TrimSpace(text) == "" && e.cfg.NativeFallback {
		e.logger.Info("textextract.fallback", "path", path, "reason", fallbackReason(err))
		text, pages, err = e.native(path, e.cfg.MaxPages)
		res.Method = MethodNative
		if err != nil {
			res.Warnings = append(res.Warnings, "native: "+err.Error())
		}
	}

	res.Text = Normalize(text)
	res.Pages = pages
	res.Duration = time.Since(start)

	if res.Text == "" {
		e.logger.Warn("textextract.empty", "path", path, "warnings", res.Warnings)
		return res, common.NewAppError(common.CodeUnreadablePDF, "no text could be extracted from the PDF", err)
	}

	e.logger.Info("textextract.ok",
		"path", path,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) pdfToText(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	if e.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}
	args := []string{"-layout", "-enc", "UTF-8", "-eol", "unix"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	// pdftotext -layout -enc UTF-8 -eol unix <path> -
	out, errb, err := e.runner.Run(ctx, e.cfg.Pdftotext, append(args, path, "-")...)
	if err != nil {
		if s := strings.TrimSpace(string(errb)); s != "" {
			warnings = []string{s}
		}
		return "", 0, warnings, err
	}
	text = string(out)
	// form feed separates pages
	pages = 1 + strings.Count(strings.TrimRight(text, "\f"), "\f")
	return text, pages, nil, nil
}

func fallbackReason(err error) string {
	if err != nil {
		return err.Error()
	}
	return "empty output"
}
