package importer

import (
	"github.com/joseph-ayodele/rental-ledger/internal/entity"
)

// RecordFailure is a valid row the store refused.
type RecordFailure struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Report is the outcome of one control-file run. A negative classification is
// a successful run with IsControlFile false and nothing else filled in.
type Report struct {
	RunID           string                     `json:"runId"`
	FileName        string                     `json:"fileName,omitempty"`
	Success         bool                       `json:"success"`
	IsControlFile   bool                       `json:"isControlFile"`
	PropertyName    string                     `json:"propertyName,omitempty"`
	PropertyID      int                        `json:"propertyId,omitempty"`
	MatchedProperty string                     `json:"matchedProperty,omitempty"`
	MatchScore      float64                    `json:"matchScore,omitempty"`
	TotalFound      int                        `json:"totalFound"`
	Summary         entity.Summary             `json:"summary"`
	Valid           []entity.ValidationOutcome `json:"valid"`
	Duplicates      []entity.ValidationOutcome `json:"duplicates"`
	Invalid         []entity.ValidationOutcome `json:"invalid"`
	Created         int                        `json:"created"`
	CreatedIDs      []int                      `json:"createdIds"`
	Failed          []RecordFailure            `json:"failed,omitempty"`
	Error           string                     `json:"error,omitempty"`
}

// persisted is the fold over accepted rows.
type persisted struct {
	created []int
	failed  []RecordFailure
	lastErr error
}
