package llm

import (
	"context"
	"errors"
)

// StructureInput captures the inputs for structuring free resume text into a
// profile. Info fields are passed through to the prompt verbatim.
type StructureInput struct {
	ResumeText     string
	CandidateName  string
	Nationality    string
	Gender         string
	ExpectedSalary string
	NoticePeriod   string
}

// Client abstracts the AI extraction service.
type Client interface {
	// StructureResume returns the raw model output for a structuring request.
	// The output is expected to be a JSON object but is returned unparsed;
	// cleanup and repair are the caller's concern.
	StructureResume(ctx context.Context, input StructureInput) (string, error)
	// TranscribeDocument submits document bytes to the vision model and
	// returns the transcribed plain text.
	TranscribeDocument(ctx context.Context, data []byte, mimeType string) (string, error)
}

var (
	// ErrMissingCredentials is a configuration failure, distinct from
	// transport failures against the upstream service.
	ErrMissingCredentials = errors.New("llm credentials missing")
	// ErrService covers upstream non-success responses and transport errors.
	ErrService = errors.New("llm service error")
)
