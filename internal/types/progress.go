package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Progress is one recorded course launch for an attempt. Immutable input to
// the scheduler; matched to exactly one course instance by
// (attempt, course, start date).
type Progress struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AttemptID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"attempt_id"`
	Attempt     *Attempt       `gorm:"constraint:OnDelete:CASCADE;foreignKey:AttemptID;references:ID" json:"attempt,omitempty"`
	CourseID    string         `gorm:"column:course_id;not null;index" json:"course_id"`
	StartDate   time.Time      `gorm:"column:start_date;not null" json:"start_date"`
	DueDate     *time.Time     `gorm:"column:due_date" json:"due_date,omitempty"`
	CompletedAt *time.Time     `gorm:"column:completed" json:"completed,omitempty"`
	Metadata    datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Progress) TableName() string { return "course_progress" }
