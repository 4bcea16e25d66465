package normalize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ymdPattern   = regexp.MustCompile(`(?:^|\D)(\d{4})[/.\-](\d{1,2})[/.\-](\d{1,2})(?:\D|$)`)
	dmyPattern   = regexp.MustCompile(`(?:^|\D)(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})(?:\D|$)`)
	isoDateExact = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
)

const (
	minYear = 2000
	maxYear = 2100
)

// Date converts DD/MM/YYYY, DD-MM-YYYY, DD.MM.YYYY (two-digit years allowed)
// or YYYY-MM-DD style input to YYYY-MM-DD. It returns "" when nothing matches
// or a component is out of range. Only ranges are checked, so 30/02 passes.
func Date(input string) string {
	s := strings.TrimSpace(input)
	if s == "" {
		return ""
	}

	var day, month, year int
	if m := ymdPattern.FindStringSubmatch(s); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	} else if m := dmyPattern.FindStringSubmatch(s); m != nil {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
	} else {
		return ""
	}

	if day < 1 || day > 31 || month < 1 || month > 12 || year < minYear || year > maxYear {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}

// DisplayDate renders a YYYY-MM-DD date as DD/MM/YYYY. Anything else is
// returned unchanged.
func DisplayDate(ymd string) string {
	m := isoDateExact.FindStringSubmatch(ymd)
	if m == nil {
		return ymd
	}
	return m[3] + "/" + m[2] + "/" + m[1]
}
