package entity

import "time"

// ImportRun is the audit row written for every processed control file.
type ImportRun struct {
	ID            string     `json:"id"`
	FileName      string     `json:"fileName"`
	ContentHash   string     `json:"contentHash"`
	Status        string     `json:"status"`
	IsControlFile bool       `json:"isControlFile"`
	PropertyName  string     `json:"propertyName,omitempty"`
	PropertyID    *int       `json:"propertyId,omitempty"`
	Summary       Summary    `json:"summary"`
	Created       int        `json:"created"`
	Failed        int        `json:"failed"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"startedAt"`
	FinishedAt    *time.Time `json:"finishedAt,omitempty"`
}
