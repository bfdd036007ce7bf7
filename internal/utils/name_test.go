package utils

import "testing"

func TestFormatLearnerName(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"username_and_name", "jdoe|Jane Doe", "Jane Doe"},
		{"username_only", "jdoe|", "jdoe"},
		{"name_only", "|Jane Doe", ""},
		{"no_separator", "jdoe", "jdoe"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatLearnerName(tc.in); got != tc.want {
				t.Fatalf("FormatLearnerName(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
