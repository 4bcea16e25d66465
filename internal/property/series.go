package property

import (
	"regexp"
	"strconv"
	"strings"
)

var romanNumerals = []string{"", "I", "II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}

// Series describes numbered property families such as "Aroeira I/II/III".
// A name in a family without a suffix is read as DefaultSuffix.
type Series struct {
	Families      []string
	DefaultSuffix string
}

// DefaultSeries is the single family seen in the catalog today.
var DefaultSeries = Series{Families: []string{"aroeira"}, DefaultSuffix: "I"}

// SeriesName is a name decomposed into family and suffix. Explicit reports
// whether the suffix was written or came from the default.
type SeriesName struct {
	Family   string
	Suffix   string
	Explicit bool
}

// Parse looks for a family token in a normalized name and the suffix that
// follows it.
func (s Series) Parse(normalized string) (SeriesName, bool) {
	toks := tokens(normalized)
	for i, tok := range toks {
		for _, fam := range s.Families {
			if tok != NormalizeName(fam) {
				continue
			}
			out := SeriesName{Family: tok, Suffix: strings.ToUpper(s.DefaultSuffix)}
			if i+1 < len(toks) {
				if suf, ok := canonicalSuffix(toks[i+1]); ok {
					out.Suffix = suf
					out.Explicit = true
				}
			}
			return out, true
		}
	}
	return SeriesName{}, false
}

// IsFamily reports whether normalized is exactly a bare family name.
func (s Series) IsFamily(normalized string) bool {
	for _, fam := range s.Families {
		if normalized == NormalizeName(fam) {
			return true
		}
	}
	return false
}

// QualifiedPattern matches "<family> <suffix>" mentions in free text.
func (s Series) QualifiedPattern() *regexp.Regexp {
	if len(s.Families) == 0 {
		return nil
	}
	quoted := make([]string, 0, len(s.Families))
	for _, fam := range s.Families {
		quoted = append(quoted, regexp.QuoteMeta(fam))
	}
	return regexp.MustCompile(`(?i)(?:^|[^a-z0-9])(` + strings.Join(quoted, "|") +
		`)[\s_\-]*(viii|vii|vi|iv|ix|iii|ii|i|v|x|\d{1,2})(?:[^a-z0-9]|$)`)
}

// FormatName renders a family and suffix the way the catalog writes them.
func FormatName(family, suffix string) string {
	family = strings.ToLower(strings.TrimSpace(family))
	if family == "" {
		return ""
	}
	canon, ok := canonicalSuffix(strings.ToLower(suffix))
	if !ok {
		canon = strings.ToUpper(suffix)
	}
	return strings.ToUpper(family[:1]) + family[1:] + " " + canon
}

// canonicalSuffix maps roman or arabic numerals 1..10 onto upper-case roman.
func canonicalSuffix(tok string) (string, bool) {
	if n, err := strconv.Atoi(tok); err == nil {
		if n >= 1 && n < len(romanNumerals) {
			return romanNumerals[n], true
		}
		return "", false
	}
	up := strings.ToUpper(tok)
	for _, r := range romanNumerals[1:] {
		if up == r {
			return r, true
		}
	}
	return "", false
}
