package util

import "testing"

func TestOutputFileName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain name", "Tan Wei Ming", "Tan_Wei_Ming.docx"},
		{"punctuation dropped", "O'Brien, Jr.", "OBrien_Jr.docx"},
		{"collapses runs of spaces", "Nurul   Aisyah", "Nurul_Aisyah.docx"},
		{"keeps digits", "Agent 47", "Agent_47.docx"},
		{"empty falls back", "!!!", "resume.docx"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := OutputFileName(tc.in); got != tc.want {
				t.Fatalf("OutputFileName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
