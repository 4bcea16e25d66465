package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/rental-ledger/constants"
	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/controlfile"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/extraction"
	"github.com/joseph-ayodele/rental-ledger/internal/llm"
	"github.com/joseph-ayodele/rental-ledger/internal/logger"
	"github.com/joseph-ayodele/rental-ledger/internal/normalize"
	"github.com/joseph-ayodele/rental-ledger/internal/property"
	"github.com/joseph-ayodele/rental-ledger/internal/reservation"
	"github.com/joseph-ayodele/rental-ledger/internal/textextract"
	"github.com/joseph-ayodele/rental-ledger/internal/validation"
)

const DefaultExtractTimeout = 45 * time.Second

// Processor coordinates detection, resolution, extraction, validation and
// persistence for one control file at a time.
type Processor struct {
	logger         *slog.Logger
	store          Store
	extractor      llm.ReservationExtractor
	text           TextExtractor
	detector       *controlfile.Detector
	resolver       *property.Resolver
	normalizer     *normalize.Normalizer
	validator      *validation.Validator
	runs           RunRecorder
	archiver       Archiver
	notifier       Notifier
	extractTimeout time.Duration
	intraBatch     bool
}

type Option func(*Processor)

func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) { p.logger = l }
}

func WithTextExtractor(t TextExtractor) Option {
	return func(p *Processor) { p.text = t }
}

func WithDetector(d *controlfile.Detector) Option {
	return func(p *Processor) { p.detector = d }
}

func WithResolver(r *property.Resolver) Option {
	return func(p *Processor) { p.resolver = r }
}

func WithNormalizer(n *normalize.Normalizer) Option {
	return func(p *Processor) { p.normalizer = n }
}

func WithValidator(v *validation.Validator) Option {
	return func(p *Processor) { p.validator = v }
}

func WithRunRecorder(r RunRecorder) Option {
	return func(p *Processor) { p.runs = r }
}

func WithArchiver(a Archiver) Option {
	return func(p *Processor) { p.archiver = a }
}

func WithNotifier(n Notifier) Option {
	return func(p *Processor) { p.notifier = n }
}

func WithIntraBatchDuplicates(enabled bool) Option {
	return func(p *Processor) { p.intraBatch = enabled }
}

// WithExtractTimeout bounds the extraction backend call.
func WithExtractTimeout(d time.Duration) Option {
	return func(p *Processor) {
		if d > 0 {
			p.extractTimeout = d
		}
	}
}

func NewProcessor(store Store, extractor llm.ReservationExtractor, opts ...Option) *Processor {
	p := &Processor{
		store:          store,
		extractor:      extractor,
		extractTimeout: DefaultExtractTimeout,
		intraBatch:     true,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	if p.text == nil {
		p.text = textextract.NewExtractor(textextract.Config{NativeFallback: true}, p.logger)
	}
	if p.detector == nil {
		p.detector = controlfile.NewDetector(property.DefaultSeries)
	}
	if p.resolver == nil {
		p.resolver = property.NewResolver(store, property.WithLogger(p.logger))
	}
	if p.normalizer == nil {
		p.normalizer = normalize.New(normalize.DefaultReviewThreshold)
	}
	if p.validator == nil {
		p.validator = validation.New(store, validation.WithLogger(p.logger))
	}
	return p
}

// ProcessFile extracts the text of the PDF at path and runs the pipeline on
// it. fileName is the name reported back (uploads live under temp names).
func (p *Processor) ProcessFile(ctx context.Context, path, fileName string) (*Report, error) {
	if fileName == "" {
		fileName = filepath.Base(path)
	}
	hash, err := HashFile(path)
	if err != nil {
		return nil, common.NewAppError(common.CodeUnreadablePDF, "file cannot be read", err)
	}
	run := p.startRun(ctx, fileName, hash)
	ctx = common.WithRunID(ctx, run.ID)
	log := logger.WithContext(ctx, p.logger)

	if p.archiver != nil {
		if key, err := p.archiver.Archive(ctx, run.ID, path); err != nil {
			log.Warn("import.archive.failed", "file", fileName, "error", err)
		} else {
			log.Debug("import.archive.ok", "key", key)
		}
	}

	res, err := p.text.Extract(ctx, path)
	if err != nil {
		p.failRun(ctx, run, err)
		return nil, err
	}
	log.Debug("import.text.ok", "method", res.Method, "pages", res.Pages, "chars", len(res.Text))

	return p.process(ctx, run, res.Text)
}

// ProcessText runs the pipeline on already extracted text.
func (p *Processor) ProcessText(ctx context.Context, text, fileName string) (*Report, error) {
	sum := sha256.Sum256([]byte(text))
	run := p.startRun(ctx, fileName, hex.EncodeToString(sum[:]))
	ctx = common.WithRunID(ctx, run.ID)
	return p.process(ctx, run, text)
}

func (p *Processor) process(ctx context.Context, run *entity.ImportRun, text string) (*Report, error) {
	start := time.Now()
	log := logger.WithContext(ctx, p.logger)
	report := &Report{RunID: run.ID, FileName: run.FileName, Success: true}

	det := p.detector.Detect(text)
	if !det.IsControlFile {
		log.Info("import.detect.negative", "file", run.FileName)
		run.Status = string(constants.RunStatusNotControlFile)
		p.finishRun(ctx, run, report)
		return report, nil
	}
	report.IsControlFile = true
	report.PropertyName = det.PropertyName
	run.IsControlFile = true
	run.PropertyName = det.PropertyName
	log.Info("import.detect.ok", "file", run.FileName, "property_name", det.PropertyName)

	cand, resp, err := p.resolveAndExtract(ctx, det.PropertyName, run.FileName, text)
	if err != nil {
		p.failRun(ctx, run, err)
		return nil, err
	}
	propertyID := 0
	if cand != nil {
		propertyID = cand.PropertyID
		report.PropertyID = cand.PropertyID
		report.MatchedProperty = cand.Name
		report.MatchScore = cand.Score
		run.PropertyID = &cand.PropertyID
	} else {
		log.Warn("import.resolve.miss", "property_name", det.PropertyName)
	}

	raws, err := extraction.Decode(resp, log)
	if err != nil {
		p.failRun(ctx, run, err)
		return nil, err
	}
	report.TotalFound = len(raws)

	records := p.normalizer.Reservations(raws, propertyID)
	outcomes, err := p.validator.ValidateBatch(ctx, records)
	if err != nil {
		p.failRun(ctx, run, err)
		return nil, err
	}
	if p.intraBatch {
		outcomes = validation.MarkIntraBatchDuplicates(outcomes)
	}
	report.Summary = validation.Summarize(outcomes)
	report.Valid, report.Duplicates, report.Invalid = validation.Split(outcomes)

	res, err := p.persist(ctx, run.ID, propertyID, report.Valid)
	if err != nil {
		p.failRun(ctx, run, err)
		return nil, err
	}
	report.CreatedIDs = res.created
	report.Created = len(res.created)
	report.Failed = res.failed
	if res.lastErr != nil {
		report.Error = res.lastErr.Error()
	}

	run.Status = string(constants.RunStatusCompleted)
	p.finishRun(ctx, run, report)

	log.Info("import.run.ok",
		"file", run.FileName,
		"property_id", propertyID,
		"total", report.Summary.Total,
		"valid", report.Summary.Valid,
		"duplicates", report.Summary.Duplicates,
		"invalid", report.Summary.Invalid,
		"created", report.Created,
		"failed", len(report.Failed),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return report, nil
}

// resolveAndExtract runs property resolution and the extraction call side by
// side. Only the extraction call is bounded by the extract timeout.
func (p *Processor) resolveAndExtract(ctx context.Context, propertyName, fileName, text string) (*property.Candidate, any, error) {
	log := logger.WithContext(ctx, p.logger)
	var (
		cand *property.Candidate
		resp any
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		c, err := p.resolver.Resolve(gctx, propertyName)
		if err != nil {
			return common.NewAppError(common.CodeStore, "property resolution failed", err)
		}
		cand = c
		return nil
	})
	g.Go(func() error {
		ectx, cancel := context.WithTimeout(gctx, p.extractTimeout)
		defer cancel()

		start := time.Now()
		log.Info("llm.extract.start", "property_name", propertyName, "chars", len(text))
		out, err := p.extractor.Extract(ectx, text, llm.NewContract(propertyName, fileName))
		if err != nil {
			err = classifyExtractError(ectx, err)
			log.Error("llm.extract.failed", "error", err, "elapsed_ms", time.Since(start).Milliseconds())
			return err
		}
		log.Info("llm.extract.ok", "elapsed_ms", time.Since(start).Milliseconds())
		resp = out
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return cand, resp, nil
}

func classifyExtractError(ctx context.Context, err error) error {
	var appErr *common.AppError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return common.NewAppError(common.CodeExtractionTimeout, "extraction timed out", fmt.Errorf("%w: %v", common.ErrTimeout, err))
	case errors.As(err, &appErr):
		return err
	default:
		return common.NewAppError(common.CodeExtractionFailed, "extraction failed", fmt.Errorf("%w: %v", common.ErrExtraction, err))
	}
}

// persist creates accepted rows one at a time. A rejected row is recorded and
// skipped; cancellation stops further submissions.
func (p *Processor) persist(ctx context.Context, runID string, propertyID int, valid []entity.ValidationOutcome) (persisted, error) {
	var res persisted
	if len(valid) == 0 {
		return res, nil
	}
	log := logger.WithContext(ctx, p.logger)

	prop, err := p.store.GetProperty(ctx, propertyID)
	if err != nil {
		return res, common.NewAppError(common.CodeStore, "property lookup failed", err)
	}

	for _, o := range valid {
		if err := ctx.Err(); err != nil {
			log.Warn("import.persist.cancelled", "row", o.Row, "created", len(res.created), "error", err)
			res.lastErr = err
			break
		}
		r, err := reservation.Build(o.Record, prop, runID)
		if err == nil {
			r, err = p.store.CreateReservation(ctx, r)
		}
		if err != nil {
			log.Warn("import.persist.failed", "row", o.Row, "guest", o.Record.GuestName, "error", err)
			res.failed = append(res.failed, RecordFailure{Row: o.Row, Error: err.Error()})
			res.lastErr = err
			continue
		}
		res.created = append(res.created, r.ID)
	}
	return res, nil
}

func (p *Processor) startRun(ctx context.Context, fileName, hash string) *entity.ImportRun {
	run := &entity.ImportRun{
		ID:          uuid.NewString(),
		FileName:    fileName,
		ContentHash: hash,
		Status:      string(constants.RunStatusRunning),
		StartedAt:   time.Now().UTC(),
	}
	if p.runs != nil {
		if err := p.runs.Start(ctx, run); err != nil {
			p.logger.Warn("import.audit.start_failed", "run_id", run.ID, "error", err)
		}
	}
	return run
}

func (p *Processor) failRun(ctx context.Context, run *entity.ImportRun, cause error) {
	run.Status = string(constants.RunStatusFailed)
	run.Error = cause.Error()
	logger.WithContext(ctx, p.logger).Error("import.run.failed", "file", run.FileName, "code", common.CodeOf(cause), "error", cause)
	p.finishRun(ctx, run, nil)
}

func (p *Processor) finishRun(ctx context.Context, run *entity.ImportRun, report *Report) {
	now := time.Now().UTC()
	run.FinishedAt = &now
	if report != nil {
		run.Summary = report.Summary
		run.Created = report.Created
		run.Failed = len(report.Failed)
		run.Error = report.Error
	}
	// the audit write must not be lost to a cancelled request
	actx := context.WithoutCancel(ctx)
	if p.runs != nil {
		if err := p.runs.Finish(actx, run); err != nil {
			p.logger.Warn("import.audit.finish_failed", "run_id", run.ID, "error", err)
		}
	}
	if p.notifier != nil {
		if err := p.notifier.NotifyRun(actx, run, report); err != nil {
			p.logger.Warn("import.notify.failed", "run_id", run.ID, "error", err)
		}
	}
}

// HashFile returns the hex SHA-256 of the file at path.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
