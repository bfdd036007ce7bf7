package types

// TestParams carries the optional testing overrides accepted on scheduling
// requests. TodayDate must be a strict "YYYY-MM-DD" or
// "YYYY-MM-DDTHH:MM:SS" string; anything else fails the run.
type TestParams struct {
	TodayDate string `json:"test_today_date,omitempty"`
	Lang      string `json:"test_lang,omitempty"`
	Manifest  string `json:"test_manifest,omitempty"`
}
