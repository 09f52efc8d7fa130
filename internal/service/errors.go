package service

import "errors"

// Caller-facing domain errors. The API layer maps these onto transport
// status codes; anything else that escapes a service is treated as an
// infrastructure failure and passed through opaque.
var (
	ErrMatchNotFound      = errors.New("match not found")
	ErrRefereeNotFound    = errors.New("referee not found")
	ErrSettlementNotFound = errors.New("settlement not found")

	// ErrNotAssignedReferee rejects workflow calls by anyone other than
	// the match's currently assigned referee.
	ErrNotAssignedReferee = errors.New("acting referee is not assigned to this match")

	ErrMatchAlreadySettled   = errors.New("match already attached to a settlement")
	ErrSettlementAlreadyPaid = errors.New("settlement already marked paid")
	ErrTierNotConfigured     = errors.New("referee has no rank tier configured")
	ErrRefereeHasHistory     = errors.New("referee has matches or settlements and cannot be removed")
	ErrRefereeRetired        = errors.New("referee is retired")
	ErrMatchDateInPast       = errors.New("match date is in the past")
	ErrRefereeBusy           = errors.New("referee already has a match at that date and time")
)
