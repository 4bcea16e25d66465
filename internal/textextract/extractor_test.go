package textextract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
)

type stubRunner struct {
	out  string
	errb string
	err  error
	args []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.args = append([]string{name}, args...)
	return []byte(s.out), []byte(s.errb), s.err
}

func tempPDF(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "control.pdf")
	require.NoError(t, os.WriteFile(p, []byte("%PDF-1.4\n"), 0o600))
	return p
}

func TestExtract_Pdftotext(t *testing.T) {
	path := tempPDF(t)
	r := &stubRunner{out: "Controlo_Aroeira_II\r\nNome\t\tEntrada      Saída\n\fpage two\n\f"}
	e := NewExtractor(Config{}, nil, WithRunner(r))

	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, MethodPdftotext, res.Method)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "Controlo_Aroeira_II\nNome   Entrada   Saída\n\npage two", res.Text)
	assert.Equal(t, []string{"pdftotext", "-layout", "-enc", "UTF-8", "-eol", "unix", path, "-"}, r.args)
}

func TestExtract_FallsBackToNative(t *testing.T) {
	path := tempPDF(t)
	r := &stubRunner{err: errors.New("exit status 127"), errb: "not found"}
	called := false
	native := func(p string, _ int) (string, int, error) {
		called = true
		assert.Equal(t, path, p)
		return "Mapa de Reservas\nAna   01/03/2024", 1, nil
	}
	e := NewExtractor(Config{NativeFallback: true}, nil, WithRunner(r), WithNativeReader(native))

	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, called)
	assert.Equal(t, MethodNative, res.Method)
	assert.Equal(t, 1, res.Pages)
	assert.Contains(t, res.Warnings, "not found")
	assert.Equal(t, "Mapa de Reservas\nAna   01/03/2024", res.Text)
}

func TestExtract_EmptyTextIsUnreadable(t *testing.T) {
	path := tempPDF(t)
	e := NewExtractor(Config{NativeFallback: true}, nil,
		WithRunner(&stubRunner{out: " \n\f \n"}),
		WithNativeReader(func(string, int) (string, int, error) { return "", 0, nil }),
	)

	_, err := e.Extract(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, common.CodeUnreadablePDF, common.CodeOf(err))
}

func TestExtract_MissingFile(t *testing.T) {
	e := NewExtractor(Config{}, nil, WithRunner(&stubRunner{out: "text"}))
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))
	assert.Equal(t, common.CodeUnreadablePDF, common.CodeOf(err))
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"keeps short gaps", "a  b", "a  b"},
		{"collapses long gaps", "a        b", "a   b"},
		{"drops rule lines", "head\n-----\nbody", "head\n\nbody"},
		{"collapses blank runs", "a\n\n\n\n\nb", "a\n\nb"},
		{"keeps digits", "O 10/03/2024", "O 10/03/2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}
