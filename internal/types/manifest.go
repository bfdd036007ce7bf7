package types

import "encoding/json"

// Manifest is the declarative curriculum definition fetched from the content
// service. It is input only: scheduling runs never mutate it and instead
// build a ComputedManifest.
type Manifest struct {
	ID                   string             `json:"id"`
	Title                string             `json:"title"`
	Type                 string             `json:"type,omitempty"`
	CanSkip              bool               `json:"canskip,omitempty"`
	RepeatCycle          int                `json:"repeat_cycle"`
	StartAlignment       string             `json:"start_alignment,omitempty"`
	StartDate            string             `json:"start_date"`
	Notifications        NotificationConfig `json:"notifications"`
	CertType             string             `json:"certType,omitempty"`
	IncludeInCertificate []string           `json:"include_in_certificate,omitempty"`
	Compliant            json.RawMessage    `json:"compliant,omitempty"`
	Courses              []CourseTemplate   `json:"courses"`
}

// NotificationConfig lists day offsets (relative to a course start/due date)
// on which reminder mail may fire, plus an optional template URL.
type NotificationConfig struct {
	RelativeToDueDate   []int  `json:"relative_to_due_date,omitempty"`
	RelativeToStartDate []int  `json:"relative_to_start_date,omitempty"`
	Template            string `json:"template,omitempty"`
}

// CompliancePolicy is the parsed form of Manifest.Compliant. Parsing is
// deliberately lenient: a policy block the engine cannot make sense of fails
// open to "compliant" instead of blocking learners on bad configuration.
type CompliancePolicy struct {
	From    string             `json:"from"`
	Date    json.Number        `json:"date,omitempty"`
	Courses []CourseDependency `json:"courses,omitempty"`
}

// CourseDependency pins a compliance dependency to a course id and,
// optionally, a specific instance number (default 0, the first occurrence).
type CourseDependency struct {
	ID       string `json:"id"`
	Instance int    `json:"instance,omitempty"`
}

// CourseTemplate is one course definition inside a manifest: month offsets
// from the curriculum anchor, a due period and prerequisite course ids.
// Launch metadata is passed through untouched except for URL normalization.
type CourseTemplate struct {
	ID         string         `json:"id"`
	Title      string         `json:"title"`
	Launch     LaunchInfo     `json:"launch"`
	StartDates []int          `json:"start_dates"`
	DuePeriod  int            `json:"due_period"`
	DependsOn  []string       `json:"depends_on,omitempty"`
	LTIExtra   map[string]any `json:"lti_launch_info_extra,omitempty"`
}

// LaunchInfo carries the opaque LTI launch fields. In JSON output mode the
// resource/context identifiers are overwritten with values derived from the
// attempt and the instance dates.
type LaunchInfo struct {
	LTILink                           string `json:"lti_link"`
	OauthConsumerKey                  string `json:"oauth_consumer_key,omitempty"`
	OauthConsumerSecret               string `json:"oauth_consumer_secret,omitempty"`
	ResourceLinkID                    string `json:"resource_link_id,omitempty"`
	ContextID                         string `json:"context_id,omitempty"`
	ToolConsumerInfoProductFamilyCode string `json:"tool_consumer_info_product_family_code,omitempty"`
	ToolConsumerInstanceGUID          string `json:"tool_consumer_instance_guid,omitempty"`
	LaunchPresentationReturnURL       string `json:"launch_presentation_return_url,omitempty"`
	LisOutcomeServiceURL              string `json:"lis_outcome_service_url,omitempty"`
	LisResultSourcedID                string `json:"lis_result_sourcedid,omitempty"`
	Roles                             string `json:"roles,omitempty"`
	CustomStartDate                   string `json:"custom_start_date,omitempty"`
	CustomDueDate                     string `json:"custom_due_date,omitempty"`
}
