package constants

import "strings"

// MaxUploadBytes caps control-file uploads.
const MaxUploadBytes int64 = 10 << 20

// PDFMimeType is the only accepted upload type.
const PDFMimeType = "application/pdf"

// AllowedExtensions holds the file extensions picked up by the drop-folder watcher.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without the dot) can be imported.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
