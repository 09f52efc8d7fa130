package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchStatusValid(t *testing.T) {
	for _, s := range []MatchStatus{
		StatusPendingConfirmation, StatusScheduled, StatusInProgress,
		StatusFinished, StatusRefereeUnavailable,
	} {
		assert.True(t, s.Valid(), "expected %s to be valid", s)
	}
	assert.False(t, MatchStatus("CANCELLED").Valid())
	assert.False(t, MatchStatus("").Valid())
}

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to MatchStatus
	}{
		{StatusPendingConfirmation, StatusScheduled},
		{StatusPendingConfirmation, StatusRefereeUnavailable},
		{StatusRefereeUnavailable, StatusPendingConfirmation},
		{StatusScheduled, StatusInProgress},
		{StatusInProgress, StatusFinished},
	}
	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s should be legal", tc.from, tc.to)
	}

	denied := []struct {
		from, to MatchStatus
	}{
		{StatusScheduled, StatusPendingConfirmation},
		{StatusScheduled, StatusFinished},
		{StatusFinished, StatusInProgress},
		{StatusFinished, StatusScheduled},
		{StatusRefereeUnavailable, StatusScheduled},
		{StatusInProgress, StatusPendingConfirmation},
		{StatusPendingConfirmation, StatusFinished},
	}
	for _, tc := range denied {
		assert.False(t, CanTransition(tc.from, tc.to), "%s -> %s should be rejected", tc.from, tc.to)
	}
}

func TestInvalidTransitionErrorNamesPair(t *testing.T) {
	err := &InvalidTransitionError{From: StatusScheduled, To: StatusPendingConfirmation}
	assert.Contains(t, err.Error(), "SCHEDULED")
	assert.Contains(t, err.Error(), "PENDING_CONFIRMATION")
}

func TestMatchHelpers(t *testing.T) {
	refereeID := uint64(7)
	settlementID := uint64(3)
	m := &Match{HomeTeam: "Tigres", AwayTeam: "Leones", RefereeID: &refereeID}

	assert.Equal(t, "Tigres vs Leones", m.Fixture())
	assert.True(t, m.AssignedTo(7))
	assert.False(t, m.AssignedTo(8))
	assert.False(t, m.Settled())

	m.SettlementID = &settlementID
	assert.True(t, m.Settled())

	m.RefereeID = nil
	assert.False(t, m.AssignedTo(7))
}
