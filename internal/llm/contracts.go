package llm

import "context"

// DefaultMaxTextChars bounds the document text sent to a backend.
const DefaultMaxTextChars = 60000

// Contract is the instruction set handed to an extraction backend together
// with the document text.
type Contract struct {
	// PropertyName is the name declared in the document, used only as a hint.
	PropertyName string
	FileName     string
	// Schema constrains each row; it is sent to backends that accept one and
	// used locally to validate the answer.
	Schema       map[string]any
	MaxTextChars int
}

// NewContract returns the reservation contract for one document.
func NewContract(propertyName, fileName string) Contract {
	return Contract{
		PropertyName: propertyName,
		FileName:     fileName,
		Schema:       BuildReservationsJSONSchema(),
		MaxTextChars: DefaultMaxTextChars,
	}
}

// ReservationExtractor turns document text into candidate reservation rows.
// Implementations may return a string (possibly fenced), raw bytes or an
// already decoded value; callers must not assume a shape.
type ReservationExtractor interface {
	Extract(ctx context.Context, text string, contract Contract) (any, error)
}

// ExtractorFunc adapts a function to ReservationExtractor.
type ExtractorFunc func(ctx context.Context, text string, contract Contract) (any, error)

func (f ExtractorFunc) Extract(ctx context.Context, text string, contract Contract) (any, error) {
	return f(ctx, text, contract)
}
