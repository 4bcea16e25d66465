package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/importer"
)

func sampleRun() *entity.ImportRun {
	return &entity.ImportRun{ID: "run-1", FileName: "aroeira.pdf", Status: "COMPLETED", PropertyName: "Aroeira I"}
}

func TestRender(t *testing.T) {
	report := &importer.Report{
		IsControlFile: true,
		TotalFound:    3,
		Summary:       entity.Summary{Valid: 1, Duplicates: 1, Invalid: 1, Total: 3},
		Created:       1,
		Duplicates: []entity.ValidationOutcome{
			{Row: 2, Record: entity.NormalizedReservation{GuestName: "Rui", CheckIn: "2024-04-08", CheckOut: "2024-04-10"}},
		},
		Invalid: []entity.ValidationOutcome{{Row: 3, Errors: []string{"guests is required"}}},
	}

	subject, body := Render(sampleRun(), report)
	assert.Equal(t, "Import aroeira.pdf: 1 created, 1 duplicates, 1 invalid", subject)
	assert.Contains(t, body, "Property: Aroeira I")
	assert.Contains(t, body, "row 2: Rui 08/04/2024-10/04/2024")
	assert.Contains(t, body, "row 3: guests is required")
}

func TestRender_FailedRun(t *testing.T) {
	run := sampleRun()
	run.Status = "FAILED"
	run.Error = "EXTRACTION_TIMEOUT: extraction timed out"

	subject, body := Render(run, nil)
	assert.Equal(t, "Import failed: aroeira.pdf", subject)
	assert.Contains(t, body, "Error: EXTRACTION_TIMEOUT")
}

func TestNewMailgunNotifier_RequiresConfig(t *testing.T) {
	_, err := NewMailgunNotifier(common.NotifyConfig{Domain: "mg.example.com"}, nil)
	assert.Equal(t, common.CodeConfig, common.CodeOf(err))
}

func TestNotifyRun_Sends(t *testing.T) {
	var gotPath, gotSubject, gotTo string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotSubject = r.FormValue("subject")
		gotTo = r.FormValue("to")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"<1@mg.example.com>","message":"Queued. Thank you."}`))
	}))
	defer srv.Close()

	n, err := NewMailgunNotifier(common.NotifyConfig{
		Domain: "mg.example.com", APIKey: "key", Sender: "ledger@example.com", Recipients: []string{"ops@example.com"},
	}, nil)
	require.NoError(t, err)
	n.mg.SetAPIBase(srv.URL + "/v3")

	err = n.NotifyRun(context.Background(), sampleRun(), &importer.Report{IsControlFile: true})
	require.NoError(t, err)
	assert.Equal(t, "/v3/mg.example.com/messages", gotPath)
	assert.Contains(t, gotSubject, "Import aroeira.pdf")
	assert.Equal(t, "ops@example.com", gotTo)
}
