package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"RefDesk/internal/model"
	"RefDesk/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AssignmentService is the state machine governing a match's referee
// confirmation lifecycle. Every operation takes the acting referee as an
// explicit argument; there is no ambient "current user". Status writes
// go through the registry's compare-and-swap so concurrent calls on the
// same match cannot both succeed.
type AssignmentService struct {
	matches  repository.MatchRepository
	referees repository.RefereeRepository
	notifier *Notifier
	logger   *logrus.Logger
}

// NewAssignmentService creates an AssignmentService.
func NewAssignmentService(matches repository.MatchRepository, referees repository.RefereeRepository, notifier *Notifier, logger *logrus.Logger) *AssignmentService {
	return &AssignmentService{
		matches:  matches,
		referees: referees,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateMatchInput carries the admin-side match creation form.
type CreateMatchInput struct {
	Date       time.Time
	Kickoff    string
	HomeTeam   string
	AwayTeam   string
	Tournament *string
	RefereeID  *uint64
}

// CreateMatch registers a fixture. With a referee the match starts in
// PENDING_CONFIRMATION and the referee is notified; without one it
// starts SCHEDULED and waits for assignment.
func (s *AssignmentService) CreateMatch(ctx context.Context, in CreateMatchInput) (*model.Match, error) {
	if in.Date.Before(time.Now().Truncate(24 * time.Hour)) {
		return nil, ErrMatchDateInPast
	}

	status := model.StatusScheduled
	if in.RefereeID != nil {
		referee, err := s.getActiveReferee(ctx, *in.RefereeID)
		if err != nil {
			return nil, err
		}
		busy, err := s.matches.ExistsAtSlot(ctx, referee.ID, in.Date, in.Kickoff)
		if err != nil {
			return nil, fmt.Errorf("check referee availability: %w", err)
		}
		if busy {
			return nil, ErrRefereeBusy
		}
		status = model.StatusPendingConfirmation
	}

	match := &model.Match{
		Date:       in.Date,
		Kickoff:    in.Kickoff,
		HomeTeam:   in.HomeTeam,
		AwayTeam:   in.AwayTeam,
		Tournament: in.Tournament,
		RefereeID:  in.RefereeID,
		Status:     status,
	}
	if err := s.matches.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("create match: %w", err)
	}

	if in.RefereeID != nil {
		s.notifier.NotifyReferee(ctx, fmt.Sprintf(
			"New assignment: %s on %s at %s. Please confirm your availability.",
			match.Fixture(), match.Date.Format("2006-01-02"), match.Kickoff), *in.RefereeID)
	}

	s.logger.WithFields(logrus.Fields{
		"match_uuid": match.MatchUUID,
		"status":     match.Status,
	}).Info("match created")
	return match, nil
}

// ConfirmAvailability transitions PENDING_CONFIRMATION -> SCHEDULED and
// notifies the referee and the admins. Re-confirming an already
// SCHEDULED match is a no-op success. Only the assigned referee may
// confirm.
func (s *AssignmentService) ConfirmAvailability(ctx context.Context, matchUUID string, actingRefereeID uint64) (*model.Match, error) {
	match, referee, err := s.authorize(ctx, matchUUID, actingRefereeID)
	if err != nil {
		return nil, err
	}

	if match.Status == model.StatusScheduled {
		// Re-confirmation is harmless.
		return match, nil
	}

	if err := s.casStatus(ctx, match, model.StatusPendingConfirmation, model.StatusScheduled); err != nil {
		return nil, err
	}
	match.Status = model.StatusScheduled

	msg := fmt.Sprintf("Availability confirmed: referee %s officiates %s on %s at %s.",
		referee.Name, match.Fixture(), match.Date.Format("2006-01-02"), match.Kickoff)
	s.notifier.NotifyReferee(ctx, msg, referee.ID)
	s.notifier.NotifyAdmins(ctx, msg)
	return match, nil
}

// MarkUnavailable transitions PENDING_CONFIRMATION ->
// REFEREE_UNAVAILABLE and tells the admins a reassignment is needed. No
// replacement is picked automatically.
func (s *AssignmentService) MarkUnavailable(ctx context.Context, matchUUID string, actingRefereeID uint64) (*model.Match, error) {
	match, referee, err := s.authorize(ctx, matchUUID, actingRefereeID)
	if err != nil {
		return nil, err
	}

	if err := s.casStatus(ctx, match, model.StatusPendingConfirmation, model.StatusRefereeUnavailable); err != nil {
		return nil, err
	}
	match.Status = model.StatusRefereeUnavailable

	s.notifier.NotifyAdmins(ctx, fmt.Sprintf(
		"Referee %s is unavailable for %s on %s. A new referee must be assigned.",
		referee.Name, match.Fixture(), match.Date.Format("2006-01-02")))
	return match, nil
}

// Reassign hands the match from the declining referee to newRefereeID.
// Only the currently assigned referee may trigger their own replacement.
// The match re-enters PENDING_CONFIRMATION explicitly, in the same
// guarded write as the referee swap, so it can never sit in
// REFEREE_UNAVAILABLE with a fresh referee attached.
func (s *AssignmentService) Reassign(ctx context.Context, matchUUID string, newRefereeID, actingRefereeID uint64) (*model.Match, error) {
	match, _, err := s.authorize(ctx, matchUUID, actingRefereeID)
	if err != nil {
		return nil, err
	}

	newReferee, err := s.getActiveReferee(ctx, newRefereeID)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(match.Status, model.StatusPendingConfirmation) {
		return nil, &model.InvalidTransitionError{From: match.Status, To: model.StatusPendingConfirmation}
	}

	err = s.matches.ReassignReferee(ctx, match.ID, actingRefereeID, newRefereeID, model.StatusPendingConfirmation)
	if err != nil {
		if errors.Is(err, repository.ErrNoRowsUpdated) {
			// Lost a race with another reassign.
			return nil, ErrNotAssignedReferee
		}
		return nil, fmt.Errorf("reassign match %s: %w", matchUUID, err)
	}
	match.RefereeID = &newRefereeID
	match.Status = model.StatusPendingConfirmation

	s.notifier.NotifyReferee(ctx, fmt.Sprintf(
		"New assignment: %s on %s at %s. Please confirm your availability.",
		match.Fixture(), match.Date.Format("2006-01-02"), match.Kickoff), newRefereeID)
	s.notifier.NotifyAdmins(ctx, fmt.Sprintf(
		"Match %s reassigned to referee %s, pending their confirmation.",
		match.Fixture(), newReferee.Name))
	return match, nil
}

// StartMatch records kickoff: SCHEDULED -> IN_PROGRESS.
func (s *AssignmentService) StartMatch(ctx context.Context, matchUUID string) (*model.Match, error) {
	return s.externalTransition(ctx, matchUUID, model.StatusScheduled, model.StatusInProgress)
}

// FinishMatch records the final whistle: IN_PROGRESS -> FINISHED.
func (s *AssignmentService) FinishMatch(ctx context.Context, matchUUID string) (*model.Match, error) {
	return s.externalTransition(ctx, matchUUID, model.StatusInProgress, model.StatusFinished)
}

// GetMatch resolves a match by its public id.
func (s *AssignmentService) GetMatch(ctx context.Context, matchUUID string) (*model.Match, error) {
	match, err := s.matches.GetByUUID(ctx, matchUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

// MatchesForReferee lists a referee's matches, optionally by status.
func (s *AssignmentService) MatchesForReferee(ctx context.Context, refereeID uint64, status model.MatchStatus) ([]*model.Match, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("unknown match status %q", status)
	}
	return s.matches.ListByReferee(ctx, refereeID, repository.MatchFilter{Status: status})
}

// UnassignedMatches lists matches with no referee.
func (s *AssignmentService) UnassignedMatches(ctx context.Context) ([]*model.Match, error) {
	return s.matches.ListUnassigned(ctx)
}

// StatusSummary counts matches per lifecycle status for the admin
// dashboard.
func (s *AssignmentService) StatusSummary(ctx context.Context) (map[model.MatchStatus]int64, error) {
	statuses := []model.MatchStatus{
		model.StatusPendingConfirmation,
		model.StatusScheduled,
		model.StatusInProgress,
		model.StatusFinished,
		model.StatusRefereeUnavailable,
	}
	summary := make(map[model.MatchStatus]int64, len(statuses))
	for _, status := range statuses {
		n, err := s.matches.CountByStatus(ctx, status)
		if err != nil {
			return nil, fmt.Errorf("count %s matches: %w", status, err)
		}
		summary[status] = n
	}
	return summary, nil
}

func (s *AssignmentService) externalTransition(ctx context.Context, matchUUID string, from, to model.MatchStatus) (*model.Match, error) {
	match, err := s.GetMatch(ctx, matchUUID)
	if err != nil {
		return nil, err
	}
	if err := s.casStatus(ctx, match, from, to); err != nil {
		return nil, err
	}
	match.Status = to
	return match, nil
}

// authorize loads the match and verifies the acting referee is its
// current assignee.
func (s *AssignmentService) authorize(ctx context.Context, matchUUID string, actingRefereeID uint64) (*model.Match, *model.Referee, error) {
	referee, err := s.referees.GetByID(ctx, actingRefereeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRefereeNotFound
		}
		return nil, nil, err
	}

	match, err := s.GetMatch(ctx, matchUUID)
	if err != nil {
		return nil, nil, err
	}

	if !match.AssignedTo(actingRefereeID) {
		return nil, nil, ErrNotAssignedReferee
	}
	return match, referee, nil
}

// getActiveReferee resolves a referee that must exist and still be
// active to receive new assignments.
func (s *AssignmentService) getActiveReferee(ctx context.Context, id uint64) (*model.Referee, error) {
	referee, err := s.referees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefereeNotFound
		}
		return nil, fmt.Errorf("load referee %d: %w", id, err)
	}
	if referee.Status != model.RefereeActive {
		return nil, ErrRefereeRetired
	}
	return referee, nil
}

// casStatus performs the registry's compare-and-swap write and maps a
// lost swap onto InvalidTransitionError carrying the status the match
// actually holds now.
func (s *AssignmentService) casStatus(ctx context.Context, match *model.Match, from, to model.MatchStatus) error {
	if !model.CanTransition(from, to) {
		return &model.InvalidTransitionError{From: from, To: to}
	}
	if match.Status != from {
		return &model.InvalidTransitionError{From: match.Status, To: to}
	}
	err := s.matches.UpdateStatusCAS(ctx, match.ID, from, to)
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNoRowsUpdated) {
		current, readErr := s.matches.GetByID(ctx, match.ID)
		if readErr == nil {
			return &model.InvalidTransitionError{From: current.Status, To: to}
		}
		return &model.InvalidTransitionError{From: from, To: to}
	}
	return fmt.Errorf("update match %d status: %w", match.ID, err)
}
