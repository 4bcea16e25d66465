package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/importer"
	"github.com/joseph-ayodele/rental-ledger/internal/normalize"
)

const sendTimeout = 20 * time.Second

// MailgunNotifier e-mails a plain-text summary of each finished run.
type MailgunNotifier struct {
	mg         mailgun.Mailgun
	sender     string
	recipients []string
	logger     *slog.Logger
}

func NewMailgunNotifier(cfg common.NotifyConfig, logger *slog.Logger) (*MailgunNotifier, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Domain == "" || cfg.APIKey == "" || cfg.Sender == "" || len(cfg.Recipients) == 0 {
		return nil, common.NewAppError(common.CodeConfig, "mailgun configuration incomplete", nil)
	}
	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	logger.Info("Mailgun client initialized", "domain", cfg.Domain)
	return &MailgunNotifier{mg: mg, sender: cfg.Sender, recipients: cfg.Recipients, logger: logger}, nil
}

// NotifyRun sends the summary. report is nil for runs that failed outright.
func (n *MailgunNotifier) NotifyRun(ctx context.Context, run *entity.ImportRun, report *importer.Report) error {
	subject, body := Render(run, report)

	msg := n.mg.NewMessage(n.sender, subject, body, n.recipients...)
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, id, err := n.mg.Send(ctx, msg)
	if err != nil {
		n.logger.Error("notify.send.failed", "run_id", run.ID, "error", err, "mailgun_resp", resp)
		return fmt.Errorf("mailgun send failed: %w", err)
	}
	n.logger.Info("notify.send.ok", "run_id", run.ID, "mailgun_id", id)
	return nil
}

// Render builds the subject and plain-text body for a run.
func Render(run *entity.ImportRun, report *importer.Report) (subject, body string) {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\nRun: %s\nStatus: %s\n", run.FileName, run.ID, run.Status)
	if run.PropertyName != "" {
		fmt.Fprintf(&b, "Property: %s\n", run.PropertyName)
	}

	switch {
	case report == nil:
		subject = fmt.Sprintf("Import failed: %s", run.FileName)
		fmt.Fprintf(&b, "\nError: %s\n", run.Error)
		return subject, b.String()
	case !report.IsControlFile:
		subject = fmt.Sprintf("Not a control file: %s", run.FileName)
		return subject, b.String()
	}

	s := report.Summary
	subject = fmt.Sprintf("Import %s: %d created, %d duplicates, %d invalid", run.FileName, report.Created, s.Duplicates, s.Invalid)
	fmt.Fprintf(&b, "\nFound: %d\nValid: %d\nDuplicates: %d\nInvalid: %d\nCreated: %d\n",
		report.TotalFound, s.Valid, s.Duplicates, s.Invalid, report.Created)

	if len(report.Duplicates) > 0 {
		b.WriteString("\nDuplicates:\n")
		for _, o := range report.Duplicates {
			fmt.Fprintf(&b, "  row %d: %s %s-%s\n", o.Row, o.Record.GuestName,
				normalize.DisplayDate(o.Record.CheckIn), normalize.DisplayDate(o.Record.CheckOut))
		}
	}
	if len(report.Invalid) > 0 {
		b.WriteString("\nInvalid:\n")
		for _, o := range report.Invalid {
			fmt.Fprintf(&b, "  row %d: %s\n", o.Row, strings.Join(o.Errors, "; "))
		}
	}
	if len(report.Failed) > 0 {
		b.WriteString("\nNot saved:\n")
		for _, f := range report.Failed {
			fmt.Fprintf(&b, "  row %d: %s\n", f.Row, f.Error)
		}
	}
	return subject, b.String()
}
