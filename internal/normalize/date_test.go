package normalize

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"slash dmy", "05/03/2025", "2025-03-05"},
		{"dash dmy", "5-3-2025", "2025-03-05"},
		{"dot dmy", "05.03.2025", "2025-03-05"},
		{"iso", "2025-03-05", "2025-03-05"},
		{"ymd slash", "2025/3/5", "2025-03-05"},
		{"iso timestamp", "2025-03-05T14:00:00Z", "2025-03-05"},
		{"two digit year", "05/03/25", "2025-03-05"},
		{"two digit year 00", "01/01/00", "2000-01-01"},
		{"two digit year 99", "31/12/99", "2099-12-31"},
		{"surrounding text", "Entrada: 10/08/2024 (tarde)", "2024-08-10"},
		{"feb 30 not calendar checked", "30/02/2025", "2025-02-30"},
		{"whitespace", "  12/07/2025  ", "2025-07-12"},
		{"day out of range", "32/01/2025", ""},
		{"day zero", "00/01/2025", ""},
		{"month out of range", "10/13/2025", ""},
		{"year too early", "10/10/1999", ""},
		{"year too late", "10/10/2101", ""},
		{"empty", "", ""},
		{"garbage", "next tuesday", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Date(tt.input))
		})
	}
}

func TestDateSeparatorStylesAgree(t *testing.T) {
	for _, y := range []int{2000, 2024, 2099, 2100} {
		for m := 1; m <= 12; m++ {
			for _, d := range []int{1, 9, 15, 28, 31} {
				want := fmt.Sprintf("%04d-%02d-%02d", y, m, d)
				for _, sep := range []string{"/", "-", "."} {
					in := fmt.Sprintf("%02d%s%02d%s%04d", d, sep, m, sep, y)
					assert.Equal(t, want, Date(in), in)
				}
				assert.Equal(t, want, Date(want))
			}
		}
	}
}

func TestDateTwoDigitYears(t *testing.T) {
	for yy := 0; yy <= 99; yy++ {
		in := fmt.Sprintf("15/06/%02d", yy)
		assert.Equal(t, fmt.Sprintf("%04d-06-15", 2000+yy), Date(in), in)
	}
}

func TestDisplayDate(t *testing.T) {
	assert.Equal(t, "05/03/2025", DisplayDate("2025-03-05"))
	assert.Equal(t, "", DisplayDate(""))
	assert.Equal(t, "not a date", DisplayDate("not a date"))
}
