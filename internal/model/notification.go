package model

import "time"

// RecipientType addresses a notification to one referee or to the admin
// broadcast feed.
type RecipientType string

const (
	RecipientReferee RecipientType = "referee"
	RecipientAdmin   RecipientType = "admin"
)

// Notification is a write-once message. RefereeID is set only for
// referee-addressed notifications.
type Notification struct {
	ID        uint64        `gorm:"column:id;primaryKey;autoIncrement"`
	Message   string        `gorm:"column:message;type:text;not null"`
	Recipient RecipientType `gorm:"column:recipient;type:varchar(16);not null;index"`
	RefereeID *uint64       `gorm:"column:referee_id;type:bigint;index"`
	CreatedAt time.Time     `gorm:"column:created_at;type:timestamp;default:now()"`
}

func (Notification) TableName() string { return "notifications" }
