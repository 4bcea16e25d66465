package llm

// Keys of one reservation row as agreed with the backends.
const (
	KeyGuestName    = "guestName"
	KeyCheckInDate  = "checkInDate"
	KeyCheckOutDate = "checkOutDate"
	KeyGuests       = "guests"
	KeyTotalAmount  = "totalAmount"
	KeyPlatform     = "platform"
	KeyContact      = "contact"
	KeyNotes        = "notes"

	KeyReservations = "reservations"
)

// RowKeys lists the row keys in prompt order.
var RowKeys = []string{
	KeyGuestName, KeyCheckInDate, KeyCheckOutDate, KeyGuests,
	KeyTotalAmount, KeyPlatform, KeyContact, KeyNotes,
}

// BuildReservationsJSONSchema returns the schema of the canonical payload
// {"reservations": [row...]}. Row fields accept any JSON value so that one odd
// row cannot reject the batch; normalization and validation happen
// downstream, row by row.
func BuildReservationsJSONSchema() map[string]any {
	props := make(map[string]any, len(RowKeys))
	for _, k := range RowKeys {
		props[k] = looseProp()
	}
	row := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
	return map[string]any{
		"type":     "object",
		"required": []string{KeyReservations},
		"properties": map[string]any{
			KeyReservations: map[string]any{
				"type":  "array",
				"items": row,
			},
		},
	}
}

// looseProp asks for a scalar but tolerates nested values, which decode as
// their raw text.
func looseProp() map[string]any {
	return map[string]any{
		"description": "string or number preferred",
		"type":        []string{"string", "number", "integer", "boolean", "null", "object", "array"},
	}
}
