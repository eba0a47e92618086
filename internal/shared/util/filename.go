package util

import "strings"

// OutputFileName derives a safe .docx file name from a candidate name.
// Anything outside letters, digits, and spaces is dropped, and runs of
// spaces become a single underscore.
func OutputFileName(candidateName string) string {
	var b strings.Builder
	for _, r := range candidateName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}
	name := strings.Join(strings.Fields(b.String()), "_")
	if name == "" {
		name = "resume"
	}
	return name + ".docx"
}
