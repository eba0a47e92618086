package conversions

import (
	"encoding/json"
	"time"
)

// ConversionResponse is the API shape of a conversion record.
type ConversionResponse struct {
	ID             string          `json:"id"`
	CandidateName  string          `json:"candidateName"`
	Status         string          `json:"status"`
	ErrorCode      string          `json:"errorCode,omitempty"`
	ErrorMessage   string          `json:"errorMessage,omitempty"`
	SourceFileName string          `json:"sourceFileName,omitempty"`
	OutputFileName string          `json:"outputFileName,omitempty"`
	Profile        json.RawMessage `json:"profile,omitempty"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

func toResponse(c Conversion) ConversionResponse {
	return ConversionResponse{
		ID:             c.ID,
		CandidateName:  c.CandidateName,
		Status:         string(c.Status),
		ErrorCode:      c.ErrorCode,
		ErrorMessage:   c.ErrorMessage,
		SourceFileName: c.SourceFileName,
		OutputFileName: c.OutputFileName,
		Profile:        c.Profile,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func toResponses(items []Conversion) []ConversionResponse {
	out := make([]ConversionResponse, 0, len(items))
	for _, c := range items {
		out = append(out, toResponse(c))
	}
	return out
}

// ListResponse wraps the conversions collection.
type ListResponse struct {
	Conversions []ConversionResponse `json:"conversions"`
}
