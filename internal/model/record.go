package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category separates the two record shapes that share this table: the
// morning attendance declaration and the evening task report.
type Category string

const (
	CategoryAttendance Category = "attendance"
	CategoryTask       Category = "task"
)

type RecordStatus string

const (
	RecordStatusPending  RecordStatus = "pending"
	RecordStatusReported RecordStatus = "reported"
	RecordStatusFailed   RecordStatus = "failed"
)

// DailyRecord is one member's status (or one task line) for one calendar day.
type DailyRecord struct {
	ID       string   `bson:"_id" json:"id" gorm:"primaryKey;type:varchar(36)"`
	Category Category `bson:"category" json:"category" gorm:"size:20;not null"`
	Day      string   `bson:"day" json:"day" gorm:"size:10;not null;index"` // YYYY-MM-DD

	Kind        Kind        `bson:"kind,omitempty" json:"kind,omitempty" gorm:"size:20"`
	Workspace   Workspace   `bson:"workspace,omitempty" json:"workspace,omitempty" gorm:"size:20"`
	Project     string      `bson:"project" json:"project" gorm:"size:100"`
	LeavePeriod LeavePeriod `bson:"leave_period,omitempty" json:"leave_period,omitempty" gorm:"size:20"`
	LeaveReason string      `bson:"leave_reason,omitempty" json:"leave_reason,omitempty" gorm:"size:255"`
	LateMinutes int         `bson:"late_minutes" json:"late_minutes"`

	// Task fields; zero for attendance records.
	TaskTitle       string          `bson:"task_title,omitempty" json:"task_title,omitempty" gorm:"size:255"`
	TaskDescription string          `bson:"task_description,omitempty" json:"task_description,omitempty" gorm:"type:text"`
	Progress        int             `bson:"progress" json:"progress"`
	ManHours        decimal.Decimal `bson:"man_hours" json:"man_hours" gorm:"type:numeric(5,2);not null;default:0"`
	WorkingTime     decimal.Decimal `bson:"working_time" json:"working_time" gorm:"type:numeric(5,2);not null;default:0"`

	// Companion marks the placeholder task row created for a full-day leave.
	Companion bool `bson:"companion" json:"companion" gorm:"not null;default:false"`

	OwnerID   string       `bson:"owner_id" json:"owner_id" gorm:"type:varchar(36);not null;index"`
	CreatorID string       `bson:"creator_id" json:"creator_id" gorm:"type:varchar(36)"`
	Status    RecordStatus `bson:"status" json:"status" gorm:"size:20;not null"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`

	// Owner is attached from the roster when rendering; never persisted.
	Owner *Member `bson:"-" json:"owner,omitempty" gorm:"-"`
}

func (DailyRecord) TableName() string { return "daily_records" }

// NewID returns a fresh identifier usable by every store backend.
func NewID() string {
	return uuid.NewString()
}

// OwnerName returns the attached owner's name, or "" when unknown.
func (r DailyRecord) OwnerName() string {
	if r.Owner == nil {
		return ""
	}
	return r.Owner.Name
}

// OwnerProject returns the attached owner's project name, or "" when unknown.
func (r DailyRecord) OwnerProject() string {
	if r.Owner == nil {
		return ""
	}
	return r.Owner.ProjectName
}

// RecordFilter narrows record listings. Zero fields do not filter.
type RecordFilter struct {
	Category Category
	Status   RecordStatus
	OwnerIDs []string
}
