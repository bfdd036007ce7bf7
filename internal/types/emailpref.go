package types

// Notification preference bitmask. Three channel bits; zero means no mail,
// seven means all channels.
const (
	EmailPrefNone      = 0x0
	EmailPrefOnStart   = 0x1
	EmailPrefBeforeDue = 0x2
	EmailPrefPastDue   = 0x4
	EmailPrefAll       = 0x7
)

// EmailPreferences is the unpacked form of the bitmask.
type EmailPreferences struct {
	OnStart   bool `json:"onStart"`
	BeforeDue bool `json:"beforeDue"`
	PastDue   bool `json:"pastDue"`
}

// UnpackEmailPref expands the stored bitmask into named capabilities.
func UnpackEmailPref(mask int) EmailPreferences {
	return EmailPreferences{
		OnStart:   mask&EmailPrefOnStart != 0,
		BeforeDue: mask&EmailPrefBeforeDue != 0,
		PastDue:   mask&EmailPrefPastDue != 0,
	}
}
