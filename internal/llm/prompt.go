package llm

import (
	"strings"

	"github.com/joseph-ayodele/rental-ledger/constants"
)

// BuildSystemPrompt describes the output shape and the field conventions.
func BuildSystemPrompt(c Contract) string {
	parts := []string{
		"You read reservation control sheets for vacation rental properties and return ONLY JSON.",
		`Return an object of the form {"reservations": [ ... ]} with one entry per reservation row in the document.`,
		"Each entry has the keys guestName, checkInDate, checkOutDate, guests, totalAmount, platform, contact, notes.",
		"Copy dates exactly as written in the document (for example DD/MM/YYYY); do not reformat or guess missing years.",
		"guests is the number of guests; totalAmount is the total paid for the stay, copied with its original separators.",
		"platform is the booking channel as written; known channels are "+strings.Join(constants.AsStringSlice(), ", ")+". Leave it empty if not shown.",
		"Skip header rows, totals and blank lines. Never invent reservations.",
		"If a field is not present, use an empty string. If there are no reservations, return {\"reservations\": []}.",
	}
	if name := strings.TrimSpace(c.PropertyName); name != "" {
		parts = append(parts, "The document belongs to the property: "+name+".")
	}
	return strings.Join(parts, " ")
}

// BuildUserPrompt packages the file name and the (truncated) document text.
func BuildUserPrompt(c Contract, text string) string {
	var b strings.Builder
	if fn := strings.TrimSpace(c.FileName); fn != "" {
		b.WriteString("Filename: ")
		b.WriteString(fn)
		b.WriteString("\n")
	}
	b.WriteString("\nDocument text:\n")
	b.WriteString(truncateRunes(strings.TrimSpace(text), c.MaxTextChars))
	return b.String()
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		limit = DefaultMaxTextChars
	}
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "\n…(truncated)"
}
