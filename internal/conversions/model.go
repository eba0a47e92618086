package conversions

import (
	"encoding/json"
	"time"
)

// Conversion is the bookkeeping record of one conversion attempt.
type Conversion struct {
	ID             string
	CandidateName  string
	Status         State
	ErrorCode      string
	ErrorMessage   string
	SourceKey      string
	SourceFileName string
	SourceMimeType string
	OutputKey      string
	OutputFileName string
	Profile        json.RawMessage
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
