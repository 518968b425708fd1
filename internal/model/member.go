package model

import "time"

type Role string

const (
	RoleRootAdmin Role = "rootadmin"
	RoleManager   Role = "manager"
	RoleBSE       Role = "bse" // business sponsor / executive
	RoleLeader    Role = "leader"
	RoleSubLeader Role = "subleader"
	RoleMember    Role = "member"
)

func (r Role) Valid() bool {
	switch r {
	case RoleRootAdmin, RoleManager, RoleBSE, RoleLeader, RoleSubLeader, RoleMember:
		return true
	}
	return false
}

// Member is a user of the reporting system.
type Member struct {
	ID    string `bson:"_id" json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name  string `bson:"name" json:"name" gorm:"size:100;not null"`
	Email string `bson:"email" json:"email" gorm:"size:100;uniqueIndex;not null"`
	Role  Role   `bson:"role" json:"role" gorm:"size:20;not null"`

	IsActive  bool `bson:"is_active" json:"is_active" gorm:"not null"`
	CanReport bool `bson:"can_report" json:"can_report" gorm:"not null"`

	// ChannelURL is the workflow webhook the member's group summary is posted to.
	ChannelURL   string `bson:"channel_url,omitempty" json:"channel_url,omitempty" gorm:"size:1024"`
	SupervisorID string `bson:"supervisor_id,omitempty" json:"supervisor_id,omitempty" gorm:"type:varchar(36);index"`

	// Project name is denormalized so cards can be rendered from the roster alone.
	ProjectID   string `bson:"project_id" json:"project_id" gorm:"type:varchar(36)"`
	ProjectName string `bson:"project_name" json:"project_name" gorm:"size:100"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

func (Member) TableName() string { return "members" }

// InRoster reports whether the member is expected to submit a daily record.
func (m Member) InRoster() bool {
	return m.IsActive && m.CanReport && m.Role != RoleRootAdmin
}
