package model

import (
	"fmt"
	"time"
)

// MatchStatus is the lifecycle status of a match. Stored as varchar;
// only the values below are legal.
type MatchStatus string

const (
	StatusPendingConfirmation MatchStatus = "PENDING_CONFIRMATION"
	StatusScheduled           MatchStatus = "SCHEDULED"
	StatusInProgress          MatchStatus = "IN_PROGRESS"
	StatusFinished            MatchStatus = "FINISHED"
	StatusRefereeUnavailable  MatchStatus = "REFEREE_UNAVAILABLE"
)

// Valid reports whether s is one of the legal status values.
func (s MatchStatus) Valid() bool {
	switch s {
	case StatusPendingConfirmation, StatusScheduled, StatusInProgress,
		StatusFinished, StatusRefereeUnavailable:
		return true
	}
	return false
}

// transitions encodes every legal status change. Creation states
// (PENDING_CONFIRMATION with a referee, SCHEDULED without) are handled
// at insert time and are not part of this table.
var transitions = map[MatchStatus][]MatchStatus{
	StatusPendingConfirmation: {StatusScheduled, StatusRefereeUnavailable},
	StatusRefereeUnavailable:  {StatusPendingConfirmation},
	StatusScheduled:           {StatusInProgress},
	StatusInProgress:          {StatusFinished},
}

// CanTransition reports whether from -> to is a legal status change.
func CanTransition(from, to MatchStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// InvalidTransitionError names the offending from/to pair of a rejected
// status change.
type InvalidTransitionError struct {
	From MatchStatus
	To   MatchStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid match status transition %s -> %s", e.From, e.To)
}

// Match is a scheduled fixture. RefereeID is nil until a referee is
// assigned; SettlementID is written exactly once, when the match is
// collected into a settlement, and never cleared.
type Match struct {
	ID           uint64       `gorm:"column:id;primaryKey;autoIncrement"`
	MatchUUID    string       `gorm:"column:match_uuid;type:varchar(64);uniqueIndex;not null"`
	Date         time.Time    `gorm:"column:date;type:date;not null"`
	Kickoff      string       `gorm:"column:kickoff;type:varchar(8);not null"`
	HomeTeam     string       `gorm:"column:home_team;type:varchar(128);not null"`
	AwayTeam     string       `gorm:"column:away_team;type:varchar(128);not null"`
	Tournament   *string      `gorm:"column:tournament;type:varchar(128)"`
	RefereeID    *uint64      `gorm:"column:referee_id;type:bigint;index"`
	SettlementID *uint64      `gorm:"column:settlement_id;type:bigint;index"`
	Status       MatchStatus  `gorm:"column:status;type:varchar(32);not null;index"`
	CreatedAt    time.Time    `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt    time.Time    `gorm:"column:updated_at;type:timestamp;default:now()"`
}

func (Match) TableName() string { return "matches" }

// Fixture is the "Home vs Away" display name.
func (m *Match) Fixture() string {
	return m.HomeTeam + " vs " + m.AwayTeam
}

// AssignedTo reports whether the match is currently assigned to refereeID.
func (m *Match) AssignedTo(refereeID uint64) bool {
	return m.RefereeID != nil && *m.RefereeID == refereeID
}

// Settled reports whether the match has been collected into a settlement.
func (m *Match) Settled() bool {
	return m.SettlementID != nil
}
