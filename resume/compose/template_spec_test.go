package compose

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultTemplateSpecIsValid(t *testing.T) {
	spec := DefaultTemplateSpec()
	if err := spec.Validate(); err != nil {
		t.Fatalf("default spec invalid: %v", err)
	}
	if spec.SlotCount() != 7 {
		t.Fatalf("slot count = %d, want 7", spec.SlotCount())
	}
}

func TestLoadTemplateSpecRoundsTrip(t *testing.T) {
	spec := DefaultTemplateSpec()
	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("marshal spec: %v", err)
	}
	path := filepath.Join(t.TempDir(), "spec.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	loaded, err := LoadTemplateSpec(path)
	if err != nil {
		t.Fatalf("LoadTemplateSpec: %v", err)
	}
	if loaded.Personal.Name != spec.Personal.Name {
		t.Fatalf("personal.name = %q, want %q", loaded.Personal.Name, spec.Personal.Name)
	}
	if loaded.SlotCount() != spec.SlotCount() {
		t.Fatalf("slot count = %d, want %d", loaded.SlotCount(), spec.SlotCount())
	}
}

func TestValidateRejectsIncompleteSpecs(t *testing.T) {
	spec := DefaultTemplateSpec()
	spec.Personal.Name = ""
	if err := spec.Validate(); err == nil {
		t.Fatal("spec without a name marker should be rejected")
	}

	spec = DefaultTemplateSpec()
	spec.WorkSlots = nil
	if err := spec.Validate(); err == nil {
		t.Fatal("spec without work slots should be rejected")
	}

	spec = DefaultTemplateSpec()
	spec.LanguageMark = ""
	if err := spec.Validate(); err == nil {
		t.Fatal("spec without a language marker should be rejected")
	}
}

func TestValidateRejectsBadQualifierPattern(t *testing.T) {
	spec := DefaultTemplateSpec()
	spec.Education.QualifierPattern = "("

	err := spec.Validate()
	if err == nil {
		t.Fatal("spec with an unparsable qualifier pattern should be rejected")
	}
	if !strings.Contains(err.Error(), "education.qualifierPattern") {
		t.Fatalf("error should name the field, got %v", err)
	}

	if _, err := NewComposer(spec); err == nil {
		t.Fatal("NewComposer should reject an unparsable qualifier pattern")
	}

	data, err := json.Marshal(spec)
	if err != nil {
		t.Fatalf("marshal spec: %v", err)
	}
	path := filepath.Join(t.TempDir(), "spec.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	if _, err := LoadTemplateSpec(path); err == nil {
		t.Fatal("LoadTemplateSpec should reject an unparsable qualifier pattern")
	}
}
