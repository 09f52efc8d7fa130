package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"RefDesk/internal/model"
	"RefDesk/internal/repository"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// RefereeService owns referee registration and lifecycle. A referee is
// created exactly once, together with its login identity; one with match
// or settlement history can only be retired, never removed.
type RefereeService struct {
	referees    repository.RefereeRepository
	matches     repository.MatchRepository
	settlements repository.SettlementRepository
	logger      *logrus.Logger
}

// NewRefereeService creates a RefereeService.
func NewRefereeService(referees repository.RefereeRepository, matches repository.MatchRepository, settlements repository.SettlementRepository, logger *logrus.Logger) *RefereeService {
	return &RefereeService{
		referees:    referees,
		matches:     matches,
		settlements: settlements,
		logger:      logger,
	}
}

// RegisterInput carries the referee registration form.
type RegisterInput struct {
	Name           string
	DocumentNumber string
	Phone          string
	Speciality     string
	TierName       string
	Unavailability []string
	Username       string
	Password       string
}

// Register creates the login user and the referee in one transaction.
// The password is stored as a bcrypt hash; the core never reads it back.
func (s *RefereeService) Register(ctx context.Context, in RegisterInput) (*model.Referee, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var tierID *uint64
	if in.TierName != "" {
		tier, err := s.referees.GetTierByName(ctx, in.TierName)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("unknown rank tier %q", in.TierName)
			}
			return nil, err
		}
		tierID = &tier.ID
	}

	var unavailability []byte
	if len(in.Unavailability) > 0 {
		unavailability, err = json.Marshal(in.Unavailability)
		if err != nil {
			return nil, fmt.Errorf("encode unavailability dates: %w", err)
		}
	}

	user := &model.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         model.RoleReferee,
		Active:       true,
	}
	referee := &model.Referee{
		Name:           in.Name,
		DocumentNumber: in.DocumentNumber,
		Phone:          in.Phone,
		Speciality:     in.Speciality,
		Unavailability: unavailability,
		TierID:         tierID,
		Status:         model.RefereeActive,
	}
	if err := s.referees.CreateWithUser(ctx, referee, user); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"referee_id": referee.ID,
		"username":   user.Username,
	}).Info("referee registered")
	return referee, nil
}

// GetReferee resolves a referee by id.
func (s *RefereeService) GetReferee(ctx context.Context, id uint64) (*model.Referee, error) {
	referee, err := s.referees.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefereeNotFound
		}
		return nil, err
	}
	return referee, nil
}

// ListReferees returns all active referees.
func (s *RefereeService) ListReferees(ctx context.Context) ([]*model.Referee, error) {
	return s.referees.ListActive(ctx)
}

// FindByUsername resolves a referee by their login username.
func (s *RefereeService) FindByUsername(ctx context.Context, username string) (*model.Referee, error) {
	referee, err := s.referees.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRefereeNotFound
		}
		return nil, err
	}
	return referee, nil
}

// Tiers lists the configured rank tiers.
func (s *RefereeService) Tiers(ctx context.Context) ([]*model.RankTier, error) {
	return s.referees.ListTiers(ctx)
}

// Retire removes a referee from service. Blocked while the referee has
// any match or settlement history so past payroll stays auditable.
func (s *RefereeService) Retire(ctx context.Context, id uint64) error {
	referee, err := s.GetReferee(ctx, id)
	if err != nil {
		return err
	}
	if referee.Status == model.RefereeRetired {
		return ErrRefereeRetired
	}

	matchCount, err := s.matches.CountByReferee(ctx, id)
	if err != nil {
		return fmt.Errorf("count matches: %w", err)
	}
	settlements, err := s.settlements.ListByReferee(ctx, id)
	if err != nil {
		return fmt.Errorf("list settlements: %w", err)
	}
	if matchCount > 0 || len(settlements) > 0 {
		return ErrRefereeHasHistory
	}

	if err := s.referees.Retire(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNoRowsUpdated) {
			return ErrRefereeRetired
		}
		return err
	}
	s.logger.WithField("referee_id", id).Info("referee retired")
	return nil
}

// RefereeStats is the dashboard summary for one referee.
type RefereeStats struct {
	RefereeID     uint64 `json:"referee_id"`
	TotalMatches  int64  `json:"total_matches"`
	Upcoming      int    `json:"upcoming"`
	Past          int    `json:"past"`
	PendingAction int    `json:"pending_action"`
}

// Stats counts a referee's total, upcoming, past and
// awaiting-confirmation matches.
func (s *RefereeService) Stats(ctx context.Context, refereeID uint64) (*RefereeStats, error) {
	if _, err := s.GetReferee(ctx, refereeID); err != nil {
		return nil, err
	}

	matches, err := s.matches.ListByReferee(ctx, refereeID, repository.MatchFilter{})
	if err != nil {
		return nil, err
	}

	stats := &RefereeStats{RefereeID: refereeID, TotalMatches: int64(len(matches))}
	today := time.Now().Truncate(24 * time.Hour)
	for _, m := range matches {
		if m.Date.Before(today) {
			stats.Past++
		} else {
			stats.Upcoming++
		}
		if m.Status == model.StatusPendingConfirmation {
			stats.PendingAction++
		}
	}
	return stats, nil
}

// CalendarDay groups one day's matches for the calendar view.
type CalendarDay struct {
	Date    string         `json:"date"`
	Matches []*model.Match `json:"matches"`
}

// Calendar returns the referee's matches for a period grouped by date,
// in calendar order.
func (s *RefereeService) Calendar(ctx context.Context, refereeID uint64, period model.Period) ([]CalendarDay, error) {
	if _, err := s.GetReferee(ctx, refereeID); err != nil {
		return nil, err
	}

	matches, err := s.matches.ListByReferee(ctx, refereeID, repository.MatchFilter{})
	if err != nil {
		return nil, err
	}

	byDate := make(map[string][]*model.Match)
	var order []string
	for _, m := range matches {
		if !period.Contains(m.Date) {
			continue
		}
		key := m.Date.Format("2006-01-02")
		if _, seen := byDate[key]; !seen {
			order = append(order, key)
		}
		byDate[key] = append(byDate[key], m)
	}

	days := make([]CalendarDay, 0, len(order))
	for _, key := range order {
		days = append(days, CalendarDay{Date: key, Matches: byDate[key]})
	}
	return days, nil
}
