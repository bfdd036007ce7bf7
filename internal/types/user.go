package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the LMS learner record. LMSUserName keeps the provider's composite
// "username|student_name" form; display names are derived from it.
type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	LMSUserID      string         `gorm:"column:lms_user_id;index" json:"lms_user_id"`
	LMSUserName    string         `gorm:"column:lms_user_name" json:"lms_user_name"`
	Email          string         `gorm:"column:lms_user_email;index" json:"email"`
	ValidationCode *string        `gorm:"column:validation_code" json:"validation_code,omitempty"`
	Notifications  int            `gorm:"column:notifications;not null;default:0" json:"notifications"`
	Active         bool           `gorm:"column:active;not null;default:true" json:"active"`
	CreatedAt      time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (User) TableName() string { return "user" }
