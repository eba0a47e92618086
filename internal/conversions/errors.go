package conversions

import (
	"errors"

	"resume-converter/internal/extract"
	"resume-converter/internal/llm"
	"resume-converter/internal/structurer"
	"resume-converter/resume/compose"
)

var (
	// ErrValidation means a required input field is missing or empty. It is
	// raised before any stage starts.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound means the requested conversion record does not exist.
	ErrNotFound = errors.New("not found")
)

const (
	CodeValidation        = "VALIDATION_ERROR"
	CodeUnsupportedFormat = "UNSUPPORTED_FORMAT"
	CodeFetch             = "FETCH_FAILED"
	CodeInsufficientText  = "INSUFFICIENT_TEXT"
	CodeAIService         = "AI_SERVICE_ERROR"
	CodeJSONParse         = "AI_RESPONSE_PARSE_ERROR"
	CodeTemplateLoad      = "TEMPLATE_LOAD_ERROR"
	CodeTemplateStructure = "TEMPLATE_STRUCTURE_ERROR"
	CodeInternal          = "INTERNAL_ERROR"
)

// ErrorCode classifies a stage failure into the error taxonomy.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, extract.ErrUnsupportedFormat):
		return CodeUnsupportedFormat
	case errors.Is(err, extract.ErrFetch):
		return CodeFetch
	case errors.Is(err, extract.ErrInsufficientText):
		return CodeInsufficientText
	case errors.Is(err, llm.ErrMissingCredentials), errors.Is(err, llm.ErrService):
		return CodeAIService
	case errors.Is(err, structurer.ErrParse):
		return CodeJSONParse
	case errors.Is(err, compose.ErrTemplateStructure):
		return CodeTemplateStructure
	case errors.Is(err, compose.ErrTemplateLoad):
		return CodeTemplateLoad
	default:
		return CodeInternal
	}
}

// UserMessage maps a stage failure to the human-readable message surfaced to
// the caller and stamped onto the conversion record.
func UserMessage(err error) string {
	switch ErrorCode(err) {
	case CodeValidation:
		return "Please fill in all candidate fields and attach a resume."
	case CodeUnsupportedFormat:
		return "Only PDF and Word resumes are supported."
	case CodeFetch:
		return "The stored resume could not be retrieved."
	case CodeInsufficientText:
		return "No readable text could be extracted from the resume."
	case CodeAIService:
		return "The resume analysis service is unavailable. Please try again later."
	case CodeJSONParse:
		return "The resume could not be structured. Please try again."
	case CodeTemplateLoad:
		return "The output template could not be loaded."
	case CodeTemplateStructure:
		return "The output template does not match the expected layout."
	default:
		return "Unexpected error during conversion."
	}
}
