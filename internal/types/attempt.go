package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Attempt is one learner enrollment in a curriculum manifest. It carries the
// org/institution context, the learner anchor dates and the stored
// compliant-until watermark the scheduler reads as input. Computed schedules
// are never written back here.
type Attempt struct {
	ID                                uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID                            uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User                              *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ManifestID                        string         `gorm:"column:manifest_id;not null;index" json:"manifest_id"`
	OrgID                             string         `gorm:"column:org_id;index" json:"org_id"`
	OrgName                           string         `gorm:"column:org_name" json:"org_name"`
	OrgTimeZone                       string         `gorm:"column:org_time_zone" json:"org_time_zone"`
	InstitutionID                     string         `gorm:"column:institution_id" json:"institution_id"`
	InstitutionName                   string         `gorm:"column:institution_name" json:"institution_name"`
	DepartmentID                      string         `gorm:"column:department_id" json:"department_id"`
	StartDate                         time.Time      `gorm:"column:start_date" json:"start_date"`
	OrgStartDate                      time.Time      `gorm:"column:org_start_date" json:"org_start_date"`
	CompliantUntil                    *time.Time     `gorm:"column:compliant_until" json:"compliant_until,omitempty"`
	Active                            bool           `gorm:"column:active;not null;default:true" json:"active"`
	Roles                             string         `gorm:"column:roles" json:"roles"`
	ResourceLinkID                    string         `gorm:"column:resource_link_id" json:"resource_link_id"`
	InstanceID                        string         `gorm:"column:instance_id" json:"instance_id"`
	ContextID                         string         `gorm:"column:context_id" json:"context_id"`
	LisResultSourcedID                string         `gorm:"column:lis_result_sourcedid" json:"lis_result_sourcedid"`
	LisOutcomeServiceURL              string         `gorm:"column:lis_outcome_service_url" json:"lis_outcome_service_url"`
	OauthKey                          string         `gorm:"column:oauth_key" json:"-"`
	OauthSecret                       string         `gorm:"column:oauth_secret" json:"-"`
	LicenseKey                        string         `gorm:"column:license_key" json:"-"`
	ToolConsumerInstanceGUID          string         `gorm:"column:tool_consumer_instance_guid" json:"tool_consumer_instance_guid"`
	ToolConsumerInfoProductFamilyCode string         `gorm:"column:tool_consumer_info_product_family_code" json:"tool_consumer_info_product_family_code"`
	LaunchParams                      datatypes.JSON `gorm:"type:jsonb;column:launch_params" json:"launch_params,omitempty"`
	CreatedAt                         time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt                         time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt                         gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Attempt) TableName() string { return "attempt" }
