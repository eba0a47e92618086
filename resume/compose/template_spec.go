package compose

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
)

// TemplateSpec describes the fixed slots of the packaged template as data.
// Every marker is the literal sample text that both occupies a slot and is
// used to locate it, so a reworded template only needs a new spec file, not a
// code change.
type TemplateSpec struct {
	Personal     PersonalMarkers `json:"personal"`
	Education    EducationSlot   `json:"education"`
	WorkSlots    []WorkSlot      `json:"workSlots"`
	LanguageMark string          `json:"languageMarker"`
}

// PersonalMarkers holds the sample values of the personal-info region.
type PersonalMarkers struct {
	Name        string `json:"name"`
	Nationality string `json:"nationality"`
	Gender      string `json:"gender"`
	Salary      string `json:"salary"`
	Notice      string `json:"notice"`
	PreparedBy  string `json:"preparedBy"`
}

// EducationSlot holds the sample values of the single education slot. The
// qualifier pattern matches extra text bundled with the sample qualification
// (it is stripped whether or not a real value is supplied).
type EducationSlot struct {
	Year             string `json:"year"`
	Qualification    string `json:"qualification"`
	Institution      string `json:"institution"`
	QualifierPattern string `json:"qualifierPattern,omitempty"`
}

// WorkSlot holds the sample values of one work-experience slot.
type WorkSlot struct {
	Title            string   `json:"title"`
	Period           string   `json:"period"`
	Company          string   `json:"company"`
	Responsibilities []string `json:"responsibilities"`
}

// SlotCount returns S, the number of work-experience slots the template ships.
func (s TemplateSpec) SlotCount() int {
	return len(s.WorkSlots)
}

// Validate rejects specs that cannot locate anything.
func (s TemplateSpec) Validate() error {
	if s.Personal.Name == "" {
		return fmt.Errorf("template spec: personal.name marker is required")
	}
	if len(s.WorkSlots) == 0 {
		return fmt.Errorf("template spec: at least one work slot is required")
	}
	for i, slot := range s.WorkSlots {
		if slot.Title == "" || slot.Company == "" {
			return fmt.Errorf("template spec: workSlots[%d] missing title or company marker", i)
		}
	}
	if s.LanguageMark == "" {
		return fmt.Errorf("template spec: languageMarker is required")
	}
	if s.Education.QualifierPattern != "" {
		if _, err := regexp.Compile(s.Education.QualifierPattern); err != nil {
			return fmt.Errorf("template spec: education.qualifierPattern: %w", err)
		}
	}
	return nil
}

// LoadTemplateSpec reads a TemplateSpec from a JSON file.
func LoadTemplateSpec(path string) (TemplateSpec, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return TemplateSpec{}, fmt.Errorf("read template spec: %w", err)
	}
	var spec TemplateSpec
	if err := json.Unmarshal(raw, &spec); err != nil {
		return TemplateSpec{}, fmt.Errorf("parse template spec: %w", err)
	}
	if err := spec.Validate(); err != nil {
		return TemplateSpec{}, err
	}
	return spec, nil
}

// DefaultTemplateSpec matches the bundled brand template (seven work slots).
func DefaultTemplateSpec() TemplateSpec {
	return TemplateSpec{
		Personal: PersonalMarkers{
			Name:        "Tan Wei Ming",
			Nationality: "Singaporean",
			Gender:      "Male",
			Salary:      "$3,500",
			Notice:      "1 month notice",
			PreparedBy:  "[Prepared By]",
		},
		Education: EducationSlot{
			Year:             "2018",
			Qualification:    "Bachelor of Business Administration",
			Institution:      "National University of Singapore",
			QualifierPattern: `\s*\(Honours\)`,
		},
		WorkSlots: []WorkSlot{
			{
				Title:   "Senior Sales Executive",
				Period:  "Jan 2021 - Present",
				Company: "Meridian Trading Pte Ltd",
				Responsibilities: []string{
					"Managed a portfolio of 40 key accounts across Southeast Asia.",
					"Exceeded quarterly sales targets by an average of 18 percent.",
					"Trained and mentored a team of five junior sales staff.",
				},
			},
			{
				Title:   "Sales Executive",
				Period:  "Mar 2019 - Dec 2020",
				Company: "Harbourfront Logistics Pte Ltd",
				Responsibilities: []string{
					"Handled inbound enquiries and prepared freight quotations.",
					"Coordinated shipment schedules with overseas agents.",
					"Maintained customer records in the company CRM system.",
				},
			},
			{
				Title:   "Marketing Coordinator",
				Period:  "Jun 2017 - Feb 2019",
				Company: "Orchid Media Group",
				Responsibilities: []string{
					"Planned and executed social media campaigns for retail clients.",
					"Prepared monthly performance reports for management review.",
					"Liaised with external vendors on event logistics.",
				},
			},
			{
				Title:   "Customer Service Officer",
				Period:  "Jan 2016 - May 2017",
				Company: "Sentosa Leisure Services",
				Responsibilities: []string{
					"Resolved customer feedback cases within service-level targets.",
					"Processed ticketing and membership applications.",
					"Supported front-desk operations during peak periods.",
				},
			},
			{
				Title:   "Administrative Assistant",
				Period:  "Feb 2015 - Dec 2015",
				Company: "Raffles Corporate Services",
				Responsibilities: []string{
					"Maintained filing systems and office supply inventory.",
					"Scheduled meetings and prepared minutes for directors.",
					"Assisted with invoice processing and data entry.",
				},
			},
			{
				Title:   "Retail Associate",
				Period:  "Jun 2014 - Jan 2015",
				Company: "Marina Square Retail Pte Ltd",
				Responsibilities: []string{
					"Assisted customers with product selection and checkout.",
					"Managed stock replenishment on the sales floor.",
					"Handled cash register reconciliation at closing.",
				},
			},
			{
				Title:   "Service Crew",
				Period:  "Dec 2013 - May 2014",
				Company: "Gardens Cafe Holdings",
				Responsibilities: []string{
					"Served food and beverages in a fast-paced outlet.",
					"Kept service areas clean and compliant with hygiene standards.",
					"Took customer orders and processed payments.",
				},
			},
		},
		LanguageMark: "English, Mandarin",
	}
}
