package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

var fencePattern = regexp.MustCompile("(?s)^\\s*```[a-zA-Z0-9_-]*\\s*\\n?(.*?)\\s*```\\s*$")

// StripCodeFence removes a leading ```lang / trailing ``` wrapper. Text
// without a complete fence is returned trimmed.
func StripCodeFence(s string) string {
	if m := fencePattern.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	s = strings.TrimSpace(s)
	// unterminated fence
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexAny(s, "[{"); i >= 0 {
			s = s[i:]
		}
	}
	return strings.TrimSpace(s)
}

// rowKeySynonyms maps folded keys (lower case, letters and digits only) to the
// contract keys.
var rowKeySynonyms = map[string]string{
	"guestname": KeyGuestName, "guest": KeyGuestName, "name": KeyGuestName,
	"nome": KeyGuestName, "hospede": KeyGuestName, "hóspede": KeyGuestName, "cliente": KeyGuestName,

	"checkindate": KeyCheckInDate, "checkin": KeyCheckInDate, "arrival": KeyCheckInDate,
	"arrivaldate": KeyCheckInDate, "entrada": KeyCheckInDate, "datadeentrada": KeyCheckInDate,

	"checkoutdate": KeyCheckOutDate, "checkout": KeyCheckOutDate, "departure": KeyCheckOutDate,
	"departuredate": KeyCheckOutDate, "saida": KeyCheckOutDate, "saída": KeyCheckOutDate,
	"datadesaida": KeyCheckOutDate, "datadesaída": KeyCheckOutDate,

	"guests": KeyGuests, "numberofguests": KeyGuests, "guestcount": KeyGuests, "pax": KeyGuests,
	"hospedes": KeyGuests, "hóspedes": KeyGuests, "pessoas": KeyGuests, "adults": KeyGuests,

	"totalamount": KeyTotalAmount, "total": KeyTotalAmount, "amount": KeyTotalAmount,
	"valor": KeyTotalAmount, "valortotal": KeyTotalAmount, "price": KeyTotalAmount, "preco": KeyTotalAmount,

	"platform": KeyPlatform, "source": KeyPlatform, "channel": KeyPlatform,
	"plataforma": KeyPlatform, "canal": KeyPlatform, "origem": KeyPlatform,

	"contact": KeyContact, "phone": KeyContact, "email": KeyContact,
	"telefone": KeyContact, "contacto": KeyContact, "telemovel": KeyContact,

	"notes": KeyNotes, "note": KeyNotes, "comments": KeyNotes, "obs": KeyNotes,
	"observacoes": KeyNotes, "observações": KeyNotes,
}

// listKeys are the wrapper keys accepted around the row list, in priority order.
var listKeys = []string{KeyReservations, "reservas", "rows", "data", "items", "results", "bookings"}

func foldKey(k string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(k) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeReservationPayload rewrites a backend answer into the canonical
// {"reservations": [row...]} form:
// - a bare array is wrapped
// - a known wrapper key (or a single array-valued key) is unwrapped
// - row keys are renamed from known synonyms; unknown keys are dropped
// - a row that is not an object becomes an empty row
// It returns the list of changes for logging.
func NormalizeReservationPayload(raw []byte) ([]byte, []string, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	var changes []string
	rows, err := rowList(doc, &changes)
	if err != nil {
		return nil, changes, err
	}

	out := make([]map[string]any, 0, len(rows))
	for i, r := range rows {
		row := make(map[string]any, len(RowKeys))
		obj, ok := r.(map[string]any)
		if !ok {
			// keeps its slot so it is reported as an invalid row
			changes = append(changes, fmt.Sprintf("row %d(%T->empty)", i+1, r))
			out = append(out, row)
			continue
		}
		for k, v := range obj {
			canon, known := rowKeySynonyms[foldKey(k)]
			if !known {
				changes = append(changes, k+"(unknown)")
				continue
			}
			if canon != k {
				changes = append(changes, k+"->"+canon)
			}
			// first writer wins when two synonyms collide
			if _, exists := row[canon]; !exists {
				row[canon] = v
			}
		}
		out = append(out, row)
	}

	b, err := json.Marshal(map[string]any{KeyReservations: out})
	if err != nil {
		return nil, changes, fmt.Errorf("sanitize: encode: %w", err)
	}
	slices.Sort(changes)
	return b, slices.Compact(changes), nil
}

func rowList(doc any, changes *[]string) ([]any, error) {
	switch t := doc.(type) {
	case []any:
		return t, nil
	case map[string]any:
		for _, k := range listKeys {
			if v, ok := t[k]; ok {
				if v == nil {
					return []any{}, nil
				}
				list, ok := v.([]any)
				if !ok {
					return nil, fmt.Errorf("sanitize: %q is %T, want array", k, v)
				}
				if k != KeyReservations {
					*changes = append(*changes, k+"->"+KeyReservations)
				}
				return list, nil
			}
		}
		var (
			found []any
			count int
		)
		for k, v := range t {
			if list, ok := v.([]any); ok {
				found = list
				count++
				*changes = append(*changes, k+"->"+KeyReservations)
			}
		}
		if count == 1 {
			return found, nil
		}
		return nil, fmt.Errorf("sanitize: object has no reservations array")
	default:
		return nil, fmt.Errorf("sanitize: unexpected top-level %T", doc)
	}
}

// sanitizingExtractor strips code fences from string answers before they
// reach the caller.
type sanitizingExtractor struct {
	next   ReservationExtractor
	logger *slog.Logger
}

// WithSanitizer wraps next so that string and byte answers come back with any
// markdown fence removed.
func WithSanitizer(next ReservationExtractor, logger *slog.Logger) ReservationExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &sanitizingExtractor{next: next, logger: logger}
}

func (s *sanitizingExtractor) Extract(ctx context.Context, text string, c Contract) (any, error) {
	resp, err := s.next.Extract(ctx, text, c)
	if err != nil {
		return nil, err
	}
	var in string
	switch t := resp.(type) {
	case string:
		in = t
	case []byte:
		in = string(t)
	default:
		return resp, nil
	}
	out := StripCodeFence(in)
	if len(out) != len(strings.TrimSpace(in)) {
		s.logger.Warn("llm.extract.fence_stripped", "before", len(in), "after", len(out))
	}
	return out, nil
}
