package compose

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"resume-converter/resume/model"
)

// DocxMIMEType is the content type of the produced package.
const DocxMIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

var (
	// ErrTemplateLoad means the template package is unreadable or missing its
	// XML payload.
	ErrTemplateLoad = errors.New("template load failed")
	// ErrTemplateStructure means an expected marker is absent from the
	// payload, i.e. the template asset drifted from the spec.
	ErrTemplateStructure = errors.New("template structure mismatch")
)

// Composer rewrites the fixed slots of a packaged DOCX template in place.
type Composer struct {
	Spec TemplateSpec

	qualifier *regexp.Regexp
}

// NewComposer builds a Composer for the given slot spec.
func NewComposer(spec TemplateSpec) (*Composer, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	c := &Composer{Spec: spec}
	if spec.Education.QualifierPattern != "" {
		pattern, err := regexp.Compile(spec.Education.QualifierPattern)
		if err != nil {
			return nil, fmt.Errorf("template spec: education.qualifierPattern: %w", err)
		}
		c.qualifier = pattern
	}
	return c, nil
}

// Compose loads the template package, substitutes every slot from the profile
// and returns the resulting DOCX bytes. Styling and numbering parts are
// copied through untouched. Work-experience entries beyond the template's
// slot count are dropped; the caller decides how loudly to report that.
func (c *Composer) Compose(profile model.ParsedResume, preparedBy string, templateBytes []byte) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(templateBytes), int64(len(templateBytes)))
	if err != nil {
		return nil, fmt.Errorf("%w: open package: %v", ErrTemplateLoad, err)
	}

	var docFile *zip.File
	for _, file := range reader.File {
		if normalizeZipName(file.Name) == "word/document.xml" {
			docFile = file
			break
		}
	}
	if docFile == nil {
		return nil, fmt.Errorf("%w: word/document.xml not found", ErrTemplateLoad)
	}

	content, err := readZipFile(docFile)
	if err != nil {
		return nil, fmt.Errorf("%w: read document.xml: %v", ErrTemplateLoad, err)
	}

	updated, err := c.composeDocumentXML(string(content), profile, preparedBy)
	if err != nil {
		return nil, err
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	for _, file := range reader.File {
		if normalizeZipName(file.Name) == "word/document.xml" {
			if err := writeZipFile(writer, file, []byte(updated)); err != nil {
				return nil, fmt.Errorf("%w: write document.xml: %v", ErrTemplateLoad, err)
			}
			continue
		}
		part, err := readZipFile(file)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrTemplateLoad, file.Name, err)
		}
		if err := writeZipFile(writer, file, part); err != nil {
			return nil, fmt.Errorf("%w: write %s: %v", ErrTemplateLoad, file.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("%w: close package: %v", ErrTemplateLoad, err)
	}

	return output.Bytes(), nil
}

func (c *Composer) composeDocumentXML(xmlText string, profile model.ParsedResume, preparedBy string) (string, error) {
	rootStart, rootEnd, err := extractRootTags(xmlText)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}
	root, header, err := parseXMLDocument(xmlText)
	if err != nil {
		return "", fmt.Errorf("%w: parse document.xml: %v", ErrTemplateLoad, err)
	}

	paragraphs := collectParagraphs(root)
	if err := c.verifyMarkers(paragraphs); err != nil {
		return "", err
	}

	c.applyPersonal(paragraphs, profile, preparedBy)
	c.applyEducation(paragraphs, profile.Education)
	c.applyWorkExperience(paragraphs, profile.WorkExperience)
	replaceLiteral(paragraphs, c.Spec.LanguageMark, strings.Join(profile.Languages, ", "))

	return encodeXMLDocument(header, root, rootStart, rootEnd)
}

// verifyMarkers checks every marker the template spec declares before mutating
// anything, so template drift is reported by marker name instead of failing
// half-substituted.
func (c *Composer) verifyMarkers(paragraphs []*xmlNode) error {
	required := map[string]string{
		"personal.name":           c.Spec.Personal.Name,
		"personal.nationality":    c.Spec.Personal.Nationality,
		"personal.gender":         c.Spec.Personal.Gender,
		"personal.salary":         c.Spec.Personal.Salary,
		"personal.notice":         c.Spec.Personal.Notice,
		"personal.preparedBy":     c.Spec.Personal.PreparedBy,
		"education.year":          c.Spec.Education.Year,
		"education.qualification": c.Spec.Education.Qualification,
		"education.institution":   c.Spec.Education.Institution,
		"language":                c.Spec.LanguageMark,
	}
	for i, slot := range c.Spec.WorkSlots {
		required[fmt.Sprintf("workSlots[%d].title", i)] = slot.Title
		required[fmt.Sprintf("workSlots[%d].period", i)] = slot.Period
		required[fmt.Sprintf("workSlots[%d].company", i)] = slot.Company
		for j, resp := range slot.Responsibilities {
			required[fmt.Sprintf("workSlots[%d].responsibilities[%d]", i, j)] = resp
		}
	}

	var missing []string
	for name, literal := range required {
		if literal == "" {
			continue
		}
		if !literalPresent(paragraphs, literal) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing markers: %s", ErrTemplateStructure, strings.Join(missing, ", "))
	}
	return nil
}

func (c *Composer) applyPersonal(paragraphs []*xmlNode, profile model.ParsedResume, preparedBy string) {
	replaceLiteral(paragraphs, c.Spec.Personal.Name, profile.CandidateName)
	replaceLiteral(paragraphs, c.Spec.Personal.Nationality, profile.Nationality)
	replaceLiteral(paragraphs, c.Spec.Personal.Gender, profile.Gender)
	replaceLiteral(paragraphs, c.Spec.Personal.Salary, profile.ExpectedSalary)
	replaceLiteral(paragraphs, c.Spec.Personal.Notice, profile.NoticePeriod)
	replaceLiteral(paragraphs, c.Spec.Personal.PreparedBy, preparedBy)
}

// applyEducation fills the single education slot from the first entry. The
// qualifier bundled with the sample qualification is stripped regardless of
// whether a real value came through.
func (c *Composer) applyEducation(paragraphs []*xmlNode, entries []model.EducationEntry) {
	var entry model.EducationEntry
	if len(entries) > 0 {
		entry = entries[0]
	}

	if c.qualifier != nil {
		for _, p := range paragraphs {
			replacePatternInParagraph(p, c.qualifier, "")
		}
	}

	replaceLiteral(paragraphs, c.Spec.Education.Year, entry.Year)
	replaceLiteral(paragraphs, c.Spec.Education.Qualification, entry.Qualification)
	replaceLiteral(paragraphs, c.Spec.Education.Institution, entry.Institution)
}

// applyWorkExperience maps real jobs onto the template's fixed slots by
// position. Slots without a real job are blanked entirely; jobs beyond the
// slot count are dropped.
func (c *Composer) applyWorkExperience(paragraphs []*xmlNode, jobs []model.WorkExperienceEntry) {
	for i, slot := range c.Spec.WorkSlots {
		if i < len(jobs) {
			job := jobs[i]
			replaceLiteral(paragraphs, slot.Title, job.Title)
			replaceLiteral(paragraphs, slot.Period, job.Period)
			replaceLiteral(paragraphs, slot.Company, job.Company)
			for j, sample := range slot.Responsibilities {
				value := ""
				if j < len(job.Responsibilities) {
					value = job.Responsibilities[j]
				}
				replaceLiteral(paragraphs, sample, value)
			}
			continue
		}
		replaceLiteral(paragraphs, slot.Title, "")
		replaceLiteral(paragraphs, slot.Period, "")
		replaceLiteral(paragraphs, slot.Company, "")
		for _, sample := range slot.Responsibilities {
			replaceLiteral(paragraphs, sample, "")
		}
	}
}

// replaceLiteral substitutes every occurrence of literal across the document.
func replaceLiteral(paragraphs []*xmlNode, literal, value string) {
	if literal == "" || literal == value {
		return
	}
	for _, p := range paragraphs {
		replaceInParagraph(p, literal, value)
	}
}

func literalPresent(paragraphs []*xmlNode, literal string) bool {
	for _, p := range paragraphs {
		if strings.Contains(paragraphText(p), literal) {
			return true
		}
	}
	return false
}

func readZipFile(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func writeZipFile(writer *zip.Writer, source *zip.File, content []byte) error {
	header := source.FileHeader
	header.Name = normalizeZipName(source.Name)

	dst, err := writer.CreateHeader(&header)
	if err != nil {
		return err
	}
	_, err = dst.Write(content)
	return err
}

func normalizeZipName(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}
