package textextract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// readNative extracts row text with the pure-Go PDF reader. Words of one row
// are joined by a column gap so downstream patterns see table cells apart.
func readNative(path string, maxPages int) (text string, pages int, err error) {
	// the reader panics on some malformed files
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	f, r, err := pdf.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	n := r.NumPage()
	if maxPages > 0 && n > maxPages {
		n = maxPages
	}

	var b strings.Builder
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		if i > 1 {
			b.WriteString("\f")
		}
		for _, row := range rows {
			words := make([]string, 0, len(row.Content))
			for _, word := range row.Content {
				if s := strings.TrimSpace(word.S); s != "" {
					words = append(words, s)
				}
			}
			b.WriteString(strings.Join(words, "   "))
			b.WriteString("\n")
		}
	}
	return b.String(), n, nil
}
