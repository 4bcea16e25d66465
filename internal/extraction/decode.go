// Package extraction recovers reservation rows from whatever an extraction
// backend returned.
package extraction

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/rental-ledger/internal/common"
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
	"github.com/joseph-ayodele/rental-ledger/internal/llm"
)

// Decode accepts a decoded value (map or slice), a JSON string or bytes, with
// or without a markdown fence, holding either a row array or an object with a
// reservations array. An empty list is a valid result. Anything that still
// cannot be read is an EXTRACTION_PARSE error.
func Decode(resp any, logger *slog.Logger) ([]entity.RawReservation, error) {
	if logger == nil {
		logger = slog.Default()
	}

	raw, err := payloadBytes(resp)
	if err != nil {
		return nil, parseError(err)
	}

	canonical, changes, err := llm.NormalizeReservationPayload(raw)
	if err != nil {
		return nil, parseError(err)
	}
	if len(changes) > 0 {
		logger.Warn("extraction.decode.sanitized", "changes", changes)
	}

	if err := llm.ValidateJSONAgainstSchema(llm.BuildReservationsJSONSchema(), canonical); err != nil {
		return nil, parseError(err)
	}

	var doc struct {
		Reservations []entity.RawReservation `json:"reservations"`
	}
	if err := json.Unmarshal(canonical, &doc); err != nil {
		return nil, parseError(err)
	}
	if doc.Reservations == nil {
		doc.Reservations = []entity.RawReservation{}
	}
	return doc.Reservations, nil
}

func payloadBytes(resp any) ([]byte, error) {
	switch t := resp.(type) {
	case nil:
		return nil, fmt.Errorf("empty response")
	case string:
		return []byte(llm.StripCodeFence(t)), nil
	case []byte:
		return []byte(llm.StripCodeFence(string(t))), nil
	case json.RawMessage:
		return []byte(llm.StripCodeFence(string(t))), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("re-encode %T: %w", resp, err)
		}
		return b, nil
	}
}

func parseError(cause error) error {
	return common.NewAppError(common.CodeExtractionParse, "could not read reservations from extraction response", cause)
}
