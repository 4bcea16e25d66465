package archive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
)

func TestObjectKey(t *testing.T) {
	ts := time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		ext  string
		want string
	}{
		{"pdf", ".pdf", "control-files/2024/03/run-1.pdf"},
		{"upper case", ".PDF", "control-files/2024/03/run-1.pdf"},
		{"no extension", "", "control-files/2024/03/run-1.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ObjectKey(ts, "run-1", tt.ext))
		})
	}
}

func TestArchive_PutsObject(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		_, _ = io.Copy(io.Discard, r.Body)
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	a, err := NewMinioArchiver(common.ArchiveConfig{Endpoint: u.Host, AccessKey: "k", SecretKey: "s", Bucket: "control-files"}, nil)
	require.NoError(t, err)
	a.now = func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }

	src := filepath.Join(t.TempDir(), "upload.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF-1.4"), 0o600))

	key, err := a.Archive(context.Background(), "run-9", src)
	require.NoError(t, err)
	assert.Equal(t, "control-files/2024/05/run-9.pdf", key)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/control-files/control-files/2024/05/run-9.pdf", gotPath)
}
