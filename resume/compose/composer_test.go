package compose

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"resume-converter/resume/model"
)

// buildTemplateDocx assembles a minimal but valid DOCX package whose
// document.xml carries every marker in spec, laid out the way the
// production template does: one paragraph per marker, with the gender sample
// deliberately split across two runs mid-word.
func buildTemplateDocx(t *testing.T, spec TemplateSpec) []byte {
	t.Helper()

	var body strings.Builder
	para := func(text string) {
		body.WriteString(`<w:p><w:r><w:t>`)
		body.WriteString(text)
		body.WriteString(`</w:t></w:r></w:p>`)
	}

	para("Name: " + spec.Personal.Name)
	para("Nationality: " + spec.Personal.Nationality)
	// Split run quirk: the gender sample breaks mid-word across two runs.
	half := len(spec.Personal.Gender) / 2
	body.WriteString(`<w:p><w:r><w:t>Gender: ` + spec.Personal.Gender[:half] +
		`</w:t></w:r><w:r><w:t>` + spec.Personal.Gender[half:] + `</w:t></w:r></w:p>`)
	para("Expected Salary: " + spec.Personal.Salary)
	para("Availability: " + spec.Personal.Notice)
	para("Prepared by: " + spec.Personal.PreparedBy)

	para("EDUCATION")
	para(spec.Education.Year + " " + spec.Education.Qualification + " (Honours) " + spec.Education.Institution)

	para("WORK EXPERIENCE")
	for _, slot := range spec.WorkSlots {
		para(slot.Title)
		para(slot.Period + " | " + slot.Company)
		for _, resp := range slot.Responsibilities {
			para(resp)
		}
	}

	para("LANGUAGES")
	para(spec.LanguageMark)

	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:body>` + body.String() + `</w:body></w:document>`

	parts := map[string]string{
		"[Content_Types].xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
			`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
			`<Default Extension="xml" ContentType="application/xml"/>` +
			`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
			`</Types>`,
		"_rels/.rels": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
			`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
			`</Relationships>`,
		"word/document.xml": documentXML,
		"word/styles.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"></w:styles>`,
		"word/numbering.xml": `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
			`<w:numbering xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"></w:numbering>`,
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func readDocumentXML(t *testing.T, docxBytes []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docxBytes), int64(len(docxBytes)))
	if err != nil {
		t.Fatalf("open output package: %v", err)
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("open document.xml: %v", err)
			}
			defer rc.Close()
			raw, err := io.ReadAll(rc)
			if err != nil {
				t.Fatalf("read document.xml: %v", err)
			}
			return string(raw)
		}
	}
	t.Fatal("document.xml missing from output package")
	return ""
}

func sampleProfile(jobs int) model.ParsedResume {
	profile := model.ParsedResume{
		CandidateName:  "Nurul Aisyah",
		Nationality:    "Indonesian",
		Gender:         "Female",
		ExpectedSalary: "4,200",
		NoticePeriod:   "2 weeks",
		Education: []model.EducationEntry{
			{Year: "2016", Qualification: "Diploma in Accounting", Institution: "Jakarta Polytechnic"},
		},
		Languages: []string{"English", "Bahasa Indonesia"},
	}
	for i := 0; i < jobs; i++ {
		profile.WorkExperience = append(profile.WorkExperience, model.WorkExperienceEntry{
			Title:   fmt.Sprintf("Real Title %d", i+1),
			Period:  fmt.Sprintf("2020 - 202%d", i+1),
			Company: fmt.Sprintf("Real Company %d", i+1),
			Responsibilities: []string{
				fmt.Sprintf("Real duty %d-1.", i+1),
				fmt.Sprintf("Real duty %d-2.", i+1),
			},
		})
	}
	return profile
}

func assertContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected document.xml to contain %q", needle)
	}
}

func assertNotContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		t.Fatalf("expected document.xml to not contain %q", needle)
	}
}

func TestComposeFillsPersonalFields(t *testing.T) {
	spec := DefaultTemplateSpec()
	composer, err := NewComposer(spec)
	if err != nil {
		t.Fatalf("new composer: %v", err)
	}
	template := buildTemplateDocx(t, spec)

	out, err := composer.Compose(sampleProfile(2), "J. Lim", template)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	documentXML := readDocumentXML(t, out)
	assertContains(t, documentXML, "Nurul Aisyah")
	assertContains(t, documentXML, "Indonesian")
	assertContains(t, documentXML, "4,200")
	assertContains(t, documentXML, "2 weeks")
	assertContains(t, documentXML, "J. Lim")
	assertNotContains(t, documentXML, spec.Personal.Name)
	assertNotContains(t, documentXML, spec.Personal.Salary)
	assertNotContains(t, documentXML, spec.Personal.PreparedBy)
}

func TestComposeRepairsSplitRunGender(t *testing.T) {
	spec := DefaultTemplateSpec()
	composer, _ := NewComposer(spec)
	template := buildTemplateDocx(t, spec)

	out, err := composer.Compose(sampleProfile(1), "", template)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	documentXML := readDocumentXML(t, out)
	assertContains(t, documentXML, "Female")
	// The sample was split across two runs; neither fragment may survive as a
	// standalone text element.
	assertNotContains(t, documentXML, ">Gender: Ma<")
}

func TestComposeBlanksUnusedSlots(t *testing.T) {
	spec := DefaultTemplateSpec()
	if spec.SlotCount() != 7 {
		t.Fatalf("expected 7 slots in default spec, got %d", spec.SlotCount())
	}
	composer, _ := NewComposer(spec)
	template := buildTemplateDocx(t, spec)

	out, err := composer.Compose(sampleProfile(3), "", template)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	documentXML := readDocumentXML(t, out)
	for i := 1; i <= 3; i++ {
		assertContains(t, documentXML, fmt.Sprintf("Real Title %d", i))
		assertContains(t, documentXML, fmt.Sprintf("Real Company %d", i))
	}
	for _, slot := range spec.WorkSlots[3:] {
		assertNotContains(t, documentXML, slot.Title)
		assertNotContains(t, documentXML, slot.Company)
		for _, resp := range slot.Responsibilities {
			assertNotContains(t, documentXML, resp)
		}
	}
}

func TestComposeDropsJobsBeyondSlotCount(t *testing.T) {
	spec := DefaultTemplateSpec()
	composer, _ := NewComposer(spec)
	template := buildTemplateDocx(t, spec)

	out, err := composer.Compose(sampleProfile(9), "", template)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	documentXML := readDocumentXML(t, out)
	assertContains(t, documentXML, "Real Title 7")
	assertNotContains(t, documentXML, "Real Title 8")
	assertNotContains(t, documentXML, "Real Title 9")
}

func TestComposeBlanksExcessSampleResponsibilities(t *testing.T) {
	spec := DefaultTemplateSpec()
	composer, _ := NewComposer(spec)
	template := buildTemplateDocx(t, spec)

	// Profile jobs carry two responsibilities each; every slot samples three.
	out, err := composer.Compose(sampleProfile(1), "", template)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	documentXML := readDocumentXML(t, out)
	assertContains(t, documentXML, "Real duty 1-1.")
	assertContains(t, documentXML, "Real duty 1-2.")
	assertNotContains(t, documentXML, spec.WorkSlots[0].Responsibilities[2])
}

func TestComposeJoinsLanguagesIntoOneLine(t *testing.T) {
	spec := DefaultTemplateSpec()
	composer, _ := NewComposer(spec)
	template := buildTemplateDocx(t, spec)

	profile := sampleProfile(1)
	profile.Languages = []string{"English", "Mandarin"}
	out, err := composer.Compose(profile, "", template)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	documentXML := readDocumentXML(t, out)
	assertContains(t, documentXML, "English, Mandarin")
}

func TestComposeStripsEducationQualifier(t *testing.T) {
	spec := DefaultTemplateSpec()
	composer, _ := NewComposer(spec)
	template := buildTemplateDocx(t, spec)

	out, err := composer.Compose(sampleProfile(1), "", template)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	documentXML := readDocumentXML(t, out)
	assertContains(t, documentXML, "Diploma in Accounting")
	assertContains(t, documentXML, "Jakarta Polytechnic")
	assertNotContains(t, documentXML, "(Honours)")
}

func TestComposeEscapesXMLSpecials(t *testing.T) {
	spec := DefaultTemplateSpec()
	composer, _ := NewComposer(spec)
	template := buildTemplateDocx(t, spec)

	profile := sampleProfile(1)
	profile.WorkExperience[0].Company = "Tan & Sons <Holdings>"
	out, err := composer.Compose(profile, "", template)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	documentXML := readDocumentXML(t, out)
	assertContains(t, documentXML, "Tan &amp; Sons &lt;Holdings&gt;")
}

func TestComposeMissingMarkerIsStructureError(t *testing.T) {
	spec := DefaultTemplateSpec()
	composer, _ := NewComposer(spec)

	drifted := spec
	drifted.Personal.Salary = "$9,999"
	template := buildTemplateDocx(t, drifted)

	_, err := composer.Compose(sampleProfile(1), "", template)
	if !errors.Is(err, ErrTemplateStructure) {
		t.Fatalf("expected ErrTemplateStructure, got %v", err)
	}
	if !strings.Contains(err.Error(), "personal.salary") {
		t.Fatalf("expected missing marker name in error, got %v", err)
	}
}

func TestComposeUnreadablePackageIsLoadError(t *testing.T) {
	composer, _ := NewComposer(DefaultTemplateSpec())

	_, err := composer.Compose(sampleProfile(1), "", []byte("not a zip"))
	if !errors.Is(err, ErrTemplateLoad) {
		t.Fatalf("expected ErrTemplateLoad, got %v", err)
	}
}

func TestComposeMissingDocumentXMLIsLoadError(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/styles.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte("<w:styles/>")); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	composer, _ := NewComposer(DefaultTemplateSpec())
	_, err = composer.Compose(sampleProfile(1), "", buf.Bytes())
	if !errors.Is(err, ErrTemplateLoad) {
		t.Fatalf("expected ErrTemplateLoad, got %v", err)
	}
}

func TestComposePreservesAuxiliaryParts(t *testing.T) {
	spec := DefaultTemplateSpec()
	composer, _ := NewComposer(spec)
	template := buildTemplateDocx(t, spec)

	out, err := composer.Compose(sampleProfile(1), "", template)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatalf("open output package: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	for _, want := range []string{"[Content_Types].xml", "_rels/.rels", "word/styles.xml", "word/numbering.xml", "word/document.xml"} {
		if !names[want] {
			t.Fatalf("output package missing part %s", want)
		}
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	spec := DefaultTemplateSpec()
	composer, _ := NewComposer(spec)
	template := buildTemplateDocx(t, spec)
	profile := sampleProfile(3)

	first, err := composer.Compose(profile, "Jasmine Lim", template)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	second, err := composer.Compose(profile, "Jasmine Lim", template)
	if err != nil {
		t.Fatalf("compose failed: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Fatal("composing the same profile twice produced different packages")
	}
}
