package utils

import "strings"

// FormatLearnerName extracts the display name from the LMS composite
// "username|student_name" form. A missing student name falls back to the
// username.
func FormatLearnerName(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, "|")
	if len(parts) == 2 {
		switch {
		case parts[0] != "" && parts[1] != "":
			return parts[1]
		case parts[1] == "":
			return parts[0]
		default:
			return ""
		}
	}
	return parts[0]
}
