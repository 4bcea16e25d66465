package entity

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Loose is a JSON scalar that may arrive as a string, a number, a bool or null.
// It always holds the trimmed textual form.
type Loose string

func (l *Loose) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*l = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*l = Loose(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		// plain decimal form; downstream parsers do not read exponents
		if f, ferr := n.Float64(); ferr == nil {
			*l = Loose(strconv.FormatFloat(f, 'f', -1, 64))
		} else {
			*l = Loose(n.String())
		}
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err == nil {
		*l = Loose(strconv.FormatBool(v))
		return nil
	}
	// objects and arrays keep their raw text
	*l = Loose(b)
	return nil
}

func (l Loose) String() string { return string(l) }

// RawReservation is one row as returned by the extraction backend. Untrusted.
type RawReservation struct {
	GuestName   Loose `json:"guestName"`
	CheckIn     Loose `json:"checkInDate"`
	CheckOut    Loose `json:"checkOutDate"`
	Guests      Loose `json:"guests"`
	TotalAmount Loose `json:"totalAmount"`
	Platform    Loose `json:"platform"`
	Contact     Loose `json:"contact"`
	Notes       Loose `json:"notes"`
}

// NormalizedReservation is a RawReservation with canonical dates
// (YYYY-MM-DD, empty when unparseable), a two-decimal amount and a
// closed-set platform.
type NormalizedReservation struct {
	Row         int    `json:"row"`
	PropertyID  int    `json:"propertyId"`
	GuestName   string `json:"guestName"`
	CheckIn     string `json:"checkInDate"`
	CheckOut    string `json:"checkOutDate"`
	RawCheckIn  string `json:"rawCheckInDate,omitempty"`
	RawCheckOut string `json:"rawCheckOutDate,omitempty"`
	Guests      string `json:"guests"`
	TotalAmount string `json:"totalAmount"`
	Platform    string `json:"platform"`
	Contact     string `json:"contact,omitempty"`
	Notes       string `json:"notes,omitempty"`
	NeedsReview bool   `json:"needsReview"`
}

// ValidationOutcome is the verdict for one extracted row. Once produced it is
// not modified; later stages build new values from it.
type ValidationOutcome struct {
	Row         int                   `json:"row"`
	Record      NormalizedReservation `json:"record"`
	IsValid     bool                  `json:"isValid"`
	IsDuplicate bool                  `json:"isDuplicate"`
	Conflict    *Reservation          `json:"conflict,omitempty"`
	Errors      []string              `json:"errors"`
}

// Accepted reports whether the row should be persisted.
func (o ValidationOutcome) Accepted() bool {
	return o.IsValid && !o.IsDuplicate
}

// Summary tallies a batch of outcomes.
type Summary struct {
	Valid      int `json:"valid"`
	Duplicates int `json:"duplicates"`
	Invalid    int `json:"invalid"`
	Total      int `json:"total"`
}
