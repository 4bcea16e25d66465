package controlfile

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/joseph-ayodele/rental-ledger/internal/property"
)

// UnknownProperty is returned when no property name can be found.
const UnknownProperty = "Unknown Property"

const maxFallbackLineRunes = 50

// signals mark a control sheet on their own.
var signals = []string{
	"controlo_",
	"mapa de reservas",
	"exciting lisbon",
}

// headerPairs mark a control sheet when both labels appear anywhere.
var headerPairs = [][2]string{
	{"check-in", "check-out"},
	{"checkin", "checkout"},
	{"check in", "check out"},
	{"entrada", "saída"},
	{"entrada", "saida"},
}

var (
	excitingLisbonPattern = regexp.MustCompile(`(?i)exciting\s+lisbon\s+([^\n]+)`)
	controloPattern       = regexp.MustCompile(`(?i)controlo_([\p{L}0-9_ ]+)`)
	keywordPattern        = regexp.MustCompile(`(?i)(?:propriedade|property|alojamento|apartamento)\s*[:\-]\s*([^\n]+)`)
)

// Detection is the classification of one document.
type Detection struct {
	IsControlFile bool   `json:"isControlFile"`
	PropertyName  string `json:"declaredPropertyName"`
}

// Detector classifies plain text as a reservation control sheet.
type Detector struct {
	series    property.Series
	qualified *regexp.Regexp
}

func NewDetector(series property.Series) *Detector {
	return &Detector{series: series, qualified: series.QualifiedPattern()}
}

// Detect never fails. A negative result still carries no property name.
func (d *Detector) Detect(text string) Detection {
	if !d.IsControlFile(text) {
		return Detection{}
	}
	return Detection{IsControlFile: true, PropertyName: d.PropertyName(text)}
}

// IsControlFile favours recall: any signal phrase, or both labels of any
// header pair, is enough.
func (d *Detector) IsControlFile(text string) bool {
	lower := strings.ToLower(text)
	for _, s := range signals {
		if strings.Contains(lower, s) {
			return true
		}
	}
	for _, pair := range headerPairs {
		if strings.Contains(lower, pair[0]) && strings.Contains(lower, pair[1]) {
			return true
		}
	}
	return false
}

// PropertyName tries the name patterns from most to least specific and
// returns the first hit.
func (d *Detector) PropertyName(text string) string {
	name := d.matchPatterns(text)
	if name == "" {
		name = firstShortLine(text)
	}
	if name == "" {
		return UnknownProperty
	}
	return d.qualify(name, text)
}

func (d *Detector) matchPatterns(text string) string {
	if m := excitingLisbonPattern.FindStringSubmatch(text); m != nil {
		if name := cleanName(m[1]); name != "" {
			return name
		}
	}
	if m := controloPattern.FindStringSubmatch(text); m != nil {
		if name := cleanName(strings.ReplaceAll(m[1], "_", " ")); name != "" {
			return name
		}
	}
	if d.qualified != nil {
		if m := d.qualified.FindStringSubmatch(text); m != nil {
			return property.FormatName(m[1], m[2])
		}
	}
	if m := keywordPattern.FindStringSubmatch(text); m != nil {
		if name := cleanName(m[1]); name != "" {
			return name
		}
	}
	return ""
}

// qualify swaps a bare family name for a numbered mention found elsewhere.
func (d *Detector) qualify(name, text string) string {
	if d.qualified == nil || !d.series.IsFamily(property.NormalizeName(name)) {
		return name
	}
	if m := d.qualified.FindStringSubmatch(text); m != nil {
		return property.FormatName(m[1], m[2])
	}
	return name
}

func firstShortLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if utf8.RuneCountInString(line) < maxFallbackLineRunes {
			return line
		}
		return ""
	}
	return ""
}

// cleanName trims separators and table padding captured with a name.
func cleanName(s string) string {
	s = strings.TrimSpace(s)
	// pdftotext -layout pads columns with runs of spaces
	if i := strings.Index(s, "   "); i > 0 {
		s = s[:i]
	}
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " -:|")
}
