package model

import (
	"fmt"
	"strings"
)

// CandidateInfo is the caller-supplied, authoritative candidate metadata.
// It is created once per conversion attempt and never mutated.
type CandidateInfo struct {
	CandidateName  string `json:"candidateName"`
	Nationality    string `json:"nationality"`
	Gender         string `json:"gender"`
	ExpectedSalary string `json:"expectedSalary"`
	NoticePeriod   string `json:"noticePeriod"`
	PreparedBy     string `json:"preparedBy,omitempty"`
}

// Validate enforces that every required field is present and non-empty.
// PreparedBy is optional.
func (i CandidateInfo) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"candidateName", i.CandidateName},
		{"nationality", i.Nationality},
		{"gender", i.Gender},
		{"expectedSalary", i.ExpectedSalary},
		{"noticePeriod", i.NoticePeriod},
	}
	for _, field := range required {
		if strings.TrimSpace(field.value) == "" {
			return fmt.Errorf("%s is required", field.name)
		}
	}
	return nil
}

// EducationEntry is one education record of a parsed resume.
type EducationEntry struct {
	Year          string `json:"year"`
	Qualification string `json:"qualification"`
	Institution   string `json:"institution"`
}

// WorkExperienceEntry is one job record of a parsed resume, most recent first.
type WorkExperienceEntry struct {
	Title            string   `json:"title"`
	Period           string   `json:"period"`
	Company          string   `json:"company"`
	Responsibilities []string `json:"responsibilities"`
}

// ParsedResume is the structured candidate profile produced from free resume
// text. It is created once per attempt and read-only afterwards.
type ParsedResume struct {
	CandidateName  string                `json:"candidateName"`
	Nationality    string                `json:"nationality"`
	Gender         string                `json:"gender"`
	ExpectedSalary string                `json:"expectedSalary"`
	NoticePeriod   string                `json:"noticePeriod"`
	Education      []EducationEntry      `json:"education"`
	WorkExperience []WorkExperienceEntry `json:"workExperience"`
	Languages      []string              `json:"languages"`
}

// Backfill repopulates missing personal fields from the authoritative
// CandidateInfo and normalizes the collection fields so the profile is always
// well-formed even when the extraction under-delivers.
func (p *ParsedResume) Backfill(info CandidateInfo) {
	if strings.TrimSpace(p.CandidateName) == "" {
		p.CandidateName = info.CandidateName
	}
	if strings.TrimSpace(p.Nationality) == "" {
		p.Nationality = info.Nationality
	}
	if strings.TrimSpace(p.Gender) == "" {
		p.Gender = info.Gender
	}
	if strings.TrimSpace(p.ExpectedSalary) == "" {
		p.ExpectedSalary = info.ExpectedSalary
	}
	if strings.TrimSpace(p.NoticePeriod) == "" {
		p.NoticePeriod = info.NoticePeriod
	}
	if p.Education == nil {
		p.Education = []EducationEntry{}
	}
	if p.WorkExperience == nil {
		p.WorkExperience = []WorkExperienceEntry{}
	}
	if len(p.Languages) == 0 {
		p.Languages = []string{"English"}
	}
}
