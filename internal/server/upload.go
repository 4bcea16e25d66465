package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/rental-ledger/constants"
	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/logger"
)

const uploadField = "pdf"

// multipart framing on top of the file itself
const formOverhead = 1 << 20

// uploadControlFile answers only after the temporary copy is gone.
func (s *Server) uploadControlFile(c *gin.Context) {
	status, body := s.handleUpload(c)
	c.JSON(status, body)
}

func (s *Server) handleUpload(c *gin.Context) (int, any) {
	log := logger.WithContext(c.Request.Context(), s.logger)
	max := s.deps.MaxUploadBytes

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max+formOverhead)
	header, err := c.FormFile(uploadField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return rejected(log, "oversize", tooLarge(max))
		}
		return rejected(log, "missing_file", fmt.Sprintf("no file uploaded in field %q", uploadField))
	}
	if header.Size > max {
		return rejected(log, "oversize", tooLarge(max))
	}

	src, err := header.Open()
	if err != nil {
		return rejected(log, "open_failed", "uploaded file cannot be read")
	}
	defer src.Close()

	if !isPDF(header, src) {
		return rejected(log, "not_pdf", "only PDF files are accepted")
	}

	tmp, err := os.CreateTemp(s.deps.UploadDir, "control-*.pdf")
	if err != nil {
		log.Error("http.upload.tempfile_failed", "error", err)
		return http.StatusInternalServerError, gin.H{"success": false, "error": "upload could not be stored"}
	}
	path := tmp.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("http.upload.cleanup_failed", "path", path, "error", err)
		}
	}()

	_, err = io.Copy(tmp, src)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		log.Error("http.upload.write_failed", "error", err)
		return http.StatusInternalServerError, gin.H{"success": false, "error": "upload could not be stored"}
	}

	log.Info("http.upload.accepted", "file", header.Filename, "bytes", header.Size)
	report, err := s.deps.Importer.ProcessFile(c.Request.Context(), path, header.Filename)
	if err != nil {
		return common.HTTPStatus(err), errorBody(err)
	}
	if !report.IsControlFile {
		return http.StatusBadRequest, gin.H{"success": false, "error": common.ErrNotControlFile.Error()}
	}
	return http.StatusOK, uploadView(report)
}

// isPDF trusts a declared PDF type and sniffs the content otherwise.
func isPDF(header *multipart.FileHeader, f multipart.File) bool {
	declared := strings.ToLower(header.Header.Get("Content-Type"))
	if strings.Contains(declared, "pdf") {
		return true
	}
	if declared != "" && declared != "application/octet-stream" {
		return false
	}
	buf := make([]byte, 512)
	n, err := f.Read(buf)
	if _, serr := f.Seek(0, io.SeekStart); serr != nil {
		return false
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	return http.DetectContentType(buf[:n]) == constants.PDFMimeType
}

func tooLarge(max int64) string {
	return fmt.Sprintf("file exceeds the %dMB limit", max>>20)
}

func rejected(log *slog.Logger, reason, msg string) (int, any) {
	log.Warn("http.upload.rejected", "reason", reason)
	return http.StatusBadRequest, gin.H{"success": false, "error": msg}
}
