package structurer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"resume-converter/internal/llm"
	"resume-converter/resume/model"
)

const (
	// maxResumeTextLen bounds the text sent upstream to respect token limits.
	maxResumeTextLen = 15000
	truncationMarker = "\n[truncated]"
	maxErrorExcerpt  = 300
)

// ErrParse means the model output was not valid JSON even after the repair
// pass. The error message carries a bounded excerpt of the raw response.
var ErrParse = errors.New("resume structuring produced unparsable JSON")

// Structurer turns plain resume text plus known candidate metadata into a
// validated ParsedResume.
type Structurer struct {
	LLM llm.Client
}

// Structure submits the text for structuring and returns a profile that is
// guaranteed to be well-formed: personal fields are backfilled from info and
// the collection fields are normalized.
func (s *Structurer) Structure(ctx context.Context, text string, info model.CandidateInfo) (model.ParsedResume, error) {
	if err := ctx.Err(); err != nil {
		return model.ParsedResume{}, err
	}

	raw, err := s.LLM.StructureResume(ctx, llm.StructureInput{
		ResumeText:     truncate(text),
		CandidateName:  info.CandidateName,
		Nationality:    info.Nationality,
		Gender:         info.Gender,
		ExpectedSalary: info.ExpectedSalary,
		NoticePeriod:   info.NoticePeriod,
	})
	if err != nil {
		return model.ParsedResume{}, err
	}

	cleaned := stripCodeFence(raw)

	var profile model.ParsedResume
	if err := json.Unmarshal([]byte(cleaned), &profile); err != nil {
		repaired := repairJSONStrings(cleaned)
		if err := json.Unmarshal([]byte(repaired), &profile); err != nil {
			return model.ParsedResume{}, fmt.Errorf("%w: %s", ErrParse, excerpt(raw))
		}
	}

	profile.Backfill(info)
	return profile, nil
}

func truncate(text string) string {
	if len(text) <= maxResumeTextLen {
		return text
	}
	cut := maxResumeTextLen
	// Back up to a rune boundary so the cut never emits invalid UTF-8.
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + truncationMarker
}

// stripCodeFence removes a leading/trailing markdown fence wrapper if the
// model ignored the JSON-only instruction.
func stripCodeFence(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

// repairJSONStrings escapes raw newline, carriage-return and tab characters
// that models sometimes emit inside string values.
func repairJSONStrings(raw string) string {
	var out strings.Builder
	out.Grow(len(raw))

	inString := false
	escaped := false
	for _, r := range raw {
		if escaped {
			out.WriteRune(r)
			escaped = false
			continue
		}
		switch r {
		case '\\':
			if inString {
				escaped = true
			}
			out.WriteRune(r)
		case '"':
			inString = !inString
			out.WriteRune(r)
		case '\n':
			if inString {
				out.WriteString(`\n`)
			} else {
				out.WriteRune(r)
			}
		case '\r':
			if inString {
				out.WriteString(`\r`)
			} else {
				out.WriteRune(r)
			}
		case '\t':
			if inString {
				out.WriteString(`\t`)
			} else {
				out.WriteRune(r)
			}
		default:
			out.WriteRune(r)
		}
	}
	return out.String()
}

func excerpt(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) <= maxErrorExcerpt {
		return trimmed
	}
	cut := maxErrorExcerpt
	for cut > 0 && !utf8.RuneStart(trimmed[cut]) {
		cut--
	}
	return trimmed[:cut] + "..."
}
