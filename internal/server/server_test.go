package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/importer"
	"github.com/joseph-ayodele/rental-ledger/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const pdfBytes = "%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"

type fakeImporter struct {
	report  *importer.Report
	err     error
	path    string
	name    string
	existed bool
}

func (f *fakeImporter) ProcessFile(_ context.Context, path, fileName string) (*importer.Report, error) {
	f.path, f.name = path, fileName
	_, err := os.Stat(path)
	f.existed = err == nil
	return f.report, f.err
}

func multipartBody(t *testing.T, field, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := mw.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func upload(t *testing.T, s *Server, field, filename, contentType string, content []byte) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	body, ct := multipartBody(t, field, filename, contentType, content)
	req := httptest.NewRequest(http.MethodPost, "/upload-control-file", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return w, out
}

func sampleReport() *importer.Report {
	return &importer.Report{
		RunID:         "run-1",
		Success:       true,
		IsControlFile: true,
		PropertyName:  "Aroeira I",
		TotalFound:    3,
		Summary:       entity.Summary{Valid: 1, Duplicates: 1, Invalid: 1, Total: 3},
		Valid: []entity.ValidationOutcome{{
			Row: 1, IsValid: true,
			Record: entity.NormalizedReservation{GuestName: "Maria Santos", CheckIn: "2024-04-01", CheckOut: "2024-04-03", Guests: "2", TotalAmount: "250.00", Platform: "Airbnb"},
		}},
		Duplicates: []entity.ValidationOutcome{{
			Row: 2, IsValid: true, IsDuplicate: true,
			Record:   entity.NormalizedReservation{GuestName: "João Pereira", CheckIn: "2024-04-08", CheckOut: "2024-04-10", Guests: "3", TotalAmount: "400.00", Platform: "Booking.com"},
			Conflict: &entity.Reservation{ID: 77, GuestName: "Old Guest", CheckIn: "2024-04-05", CheckOut: "2024-04-08"},
		}},
		Invalid: []entity.ValidationOutcome{{
			Row: 3, Record: entity.NormalizedReservation{GuestName: "X"},
			Errors: []string{"guest name must be at least 3 characters"},
		}},
		Created:    1,
		CreatedIDs: []int{100},
	}
}

func TestUpload_Success(t *testing.T) {
	imp := &fakeImporter{report: sampleReport()}
	dir := t.TempDir()
	s := New(Deps{Importer: imp, UploadDir: dir})

	w, out := upload(t, s, "pdf", "aroeira.pdf", "application/pdf", []byte(pdfBytes))
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Aroeira I", out["propertyName"])
	assert.EqualValues(t, 3, out["totalFound"])
	assert.EqualValues(t, 1, out["created"])
	assert.Equal(t, map[string]any{"valid": 1.0, "duplicates": 1.0, "invalid": 1.0, "total": 3.0}, out["summary"])

	results := out["results"].(map[string]any)
	valid := results["valid"].([]any)[0].(map[string]any)
	assert.Equal(t, "01/04/2024", valid["checkInDate"])
	assert.Equal(t, "03/04/2024", valid["checkOutDate"])

	dup := results["duplicates"].([]any)[0].(map[string]any)
	assert.Equal(t, "08/04/2024", dup["checkInDate"])
	assert.EqualValues(t, 77, dup["conflict"].(map[string]any)["id"])

	invalid := results["invalid"].([]any)[0].(map[string]any)
	assert.Equal(t, []any{"guest name must be at least 3 characters"}, invalid["errors"])
	assert.NotContains(t, invalid, "guestName")

	// the importer saw the temp copy, which is gone now
	assert.Equal(t, "aroeira.pdf", imp.name)
	assert.True(t, imp.existed)
	_, err := os.Stat(imp.path)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name        string
		field       string
		contentType string
		content     []byte
		maxBytes    int64
		wantErr     string
	}{
		{"wrong field", "file", "application/pdf", []byte(pdfBytes), 0, `no file uploaded in field "pdf"`},
		{"declared non-pdf", "pdf", "image/png", []byte(pdfBytes), 0, "only PDF files are accepted"},
		{"sniffed non-pdf", "pdf", "application/octet-stream", []byte("hello world, plain text"), 0, "only PDF files are accepted"},
		{"oversize", "pdf", "application/pdf", bytes.Repeat([]byte("a"), 2048), 1024, "file exceeds the 0MB limit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imp := &fakeImporter{report: sampleReport()}
			s := New(Deps{Importer: imp, UploadDir: t.TempDir(), MaxUploadBytes: tt.maxBytes})

			w, out := upload(t, s, tt.field, "doc.pdf", tt.contentType, tt.content)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, false, out["success"])
			assert.Equal(t, tt.wantErr, out["error"])
			assert.Empty(t, imp.path)
		})
	}
}

func TestUpload_SniffsUndeclaredPDF(t *testing.T) {
	imp := &fakeImporter{report: sampleReport()}
	s := New(Deps{Importer: imp, UploadDir: t.TempDir()})

	w, _ := upload(t, s, "pdf", "aroeira.pdf", "", []byte(pdfBytes))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpload_NotAControlFile(t *testing.T) {
	imp := &fakeImporter{report: &importer.Report{Success: true, IsControlFile: false}}
	dir := t.TempDir()
	s := New(Deps{Importer: imp, UploadDir: dir})

	w, out := upload(t, s, "pdf", "invoice.pdf", "application/pdf", []byte(pdfBytes))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "not a control file", out["error"])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUpload_PipelineErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unreadable", common.NewAppError(common.CodeUnreadablePDF, "no text could be extracted from the PDF", nil), http.StatusBadRequest, common.CodeUnreadablePDF},
		{"extraction failed", common.NewAppError(common.CodeExtractionFailed, "extraction failed", errors.New("500")), http.StatusBadGateway, common.CodeExtractionFailed},
		{"timeout", common.NewAppError(common.CodeExtractionTimeout, "extraction timed out", nil), http.StatusGatewayTimeout, common.CodeExtractionTimeout},
		{"unclassified", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			s := New(Deps{Importer: &fakeImporter{err: tt.err}, UploadDir: dir})

			w, out := upload(t, s, "pdf", "a.pdf", "application/pdf", []byte(pdfBytes))
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, false, out["success"])
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, out["code"])
			}
			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

type fakeProperties struct {
	props   []*entity.Property
	created *entity.Property
}

func (f *fakeProperties) ListProperties(context.Context) ([]*entity.Property, error) {
	return f.props, nil
}

func (f *fakeProperties) Create(_ context.Context, p *entity.Property) (*entity.Property, error) {
	out := *p
	out.ID = len(f.props) + 1
	f.created = &out
	f.props = append(f.props, &out)
	return &out, nil
}

type countingCache struct{ n int }

func (c *countingCache) Invalidate() { c.n++ }

func TestProperties(t *testing.T) {
	props := &fakeProperties{props: []*entity.Property{{ID: 1, Name: "Aroeira I"}}}
	cache := &countingCache{}
	s := New(Deps{Importer: &fakeImporter{}, Properties: props, Catalog: cache})
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/properties", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Aroeira I"`)

	body := bytes.NewBufferString(`{"name":"Aroeira II","cleaningFee":40,"commissionPercent":20}`)
	req := httptest.NewRequest(http.MethodPost, "/properties", body)
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, props.created)
	assert.Equal(t, "Aroeira II", props.created.Name)
	assert.Equal(t, 1, cache.n)

	req = httptest.NewRequest(http.MethodPost, "/properties", bytes.NewBufferString(`{"commissionPercent":120}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeReservations struct{ got repository.ReservationFilter }

func (f *fakeReservations) List(_ context.Context, filter repository.ReservationFilter) ([]*entity.Reservation, error) {
	f.got = filter
	return []*entity.Reservation{{ID: 1, PropertyID: filter.PropertyID, GuestName: "Ana"}}, nil
}

func TestListReservations(t *testing.T) {
	res := &fakeReservations{}
	s := New(Deps{Importer: &fakeImporter{}, Reservations: res})
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reservations?propertyId=2&from=01/03/2024&to=2024-03-31", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, repository.ReservationFilter{PropertyID: 2, From: "2024-03-01", To: "2024-03-31"}, res.got)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/reservations?from=yesterday", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeRuns map[string]*entity.ImportRun

func (f fakeRuns) GetByID(_ context.Context, id string) (*entity.ImportRun, error) {
	if r, ok := f[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("import run %q: %w", id, common.ErrNotFound)
}

func TestGetImportRun(t *testing.T) {
	s := New(Deps{Importer: &fakeImporter{}, Runs: fakeRuns{"run-1": {ID: "run-1", Status: "COMPLETED", Created: 2}}})
	router := s.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/imports/run-1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"created":2`)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/imports/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	s := New(Deps{Importer: &fakeImporter{}, Health: func(context.Context) error { return errors.New("db down") }})
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
