package model

import "time"

type CardType string

const (
	CardTypeAttendance CardType = "attendance"
	CardTypeReport     CardType = "report"
)

// CardMessage is the audit copy of a rendered card.
type CardMessage struct {
	ID          string    `bson:"_id" json:"id" gorm:"primaryKey;type:varchar(36)"`
	Type        CardType  `bson:"type" json:"type" gorm:"size:20;index"`
	CardMessage string    `bson:"card_message" json:"card_message" gorm:"type:text;not null"`
	OwnerID     string    `bson:"owner_id" json:"owner_id" gorm:"type:varchar(36);index"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
}

func (CardMessage) TableName() string { return "card_messages" }
