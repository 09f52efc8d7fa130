package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"RefDesk/internal/model"
	"RefDesk/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SettlementService runs the periodic payroll batch and owns the
// pending -> paid transition. Each referee is settled in its own
// transaction: a failure partway through a run leaves earlier referees
// committed, and a re-run skips them via the (referee, period) existence
// check.
type SettlementService struct {
	settlements repository.SettlementRepository
	matches     repository.MatchRepository
	referees    repository.RefereeRepository
	rates       *RankTierDirectory
	notifier    *Notifier
	logger      *logrus.Logger
}

// NewSettlementService creates a SettlementService.
func NewSettlementService(settlements repository.SettlementRepository, matches repository.MatchRepository, referees repository.RefereeRepository, rates *RankTierDirectory, notifier *Notifier, logger *logrus.Logger) *SettlementService {
	return &SettlementService{
		settlements: settlements,
		matches:     matches,
		referees:    referees,
		rates:       rates,
		notifier:    notifier,
		logger:      logger,
	}
}

// GenerationReport summarizes one GenerateForPeriod run.
type GenerationReport struct {
	Period  model.Period `json:"period"`
	Created int          `json:"created"`
	Skipped int          `json:"skipped"`
	Failed  int          `json:"failed"`
}

// GenerateForPeriod partitions every active referee's unsettled matches
// in the period into one pending settlement per referee. Referees with
// an existing settlement for the period or with no unsettled matches are
// skipped, so a re-run for an already settled period is silently
// idempotent. The total locks in each referee's tier rate at generation
// time; later tier changes never recompute it.
func (s *SettlementService) GenerateForPeriod(ctx context.Context, period model.Period) (*GenerationReport, error) {
	first, last := period.Bounds()

	referees, err := s.referees.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list referees: %w", err)
	}

	report := &GenerationReport{Period: period}
	var firstErr error

	for _, referee := range referees {
		created, err := s.settleReferee(ctx, referee, period, first, last)
		switch {
		case err != nil:
			report.Failed++
			if firstErr == nil {
				firstErr = err
			}
			s.logger.WithError(err).WithFields(logrus.Fields{
				"referee_id": referee.ID,
				"period":     period.String(),
			}).Error("settlement generation failed for referee")
		case created:
			report.Created++
		default:
			report.Skipped++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"period":  period.String(),
		"created": report.Created,
		"skipped": report.Skipped,
		"failed":  report.Failed,
	}).Info("settlement run finished")

	// Earlier referees stay committed; the caller re-runs for the rest.
	return report, firstErr
}

// settleReferee settles one referee for the period. Returns true when a
// settlement was created.
func (s *SettlementService) settleReferee(ctx context.Context, referee *model.Referee, period model.Period, first, last time.Time) (bool, error) {
	exists, err := s.settlements.Exists(ctx, referee.ID, period)
	if err != nil {
		return false, fmt.Errorf("check existing settlement: %w", err)
	}
	if exists {
		return false, nil
	}

	matches, err := s.matches.ListUnsettledInRange(ctx, referee.ID, first, last)
	if err != nil {
		return false, fmt.Errorf("collect unsettled matches: %w", err)
	}
	if len(matches) == 0 {
		return false, nil
	}

	rate, err := s.rates.RateFor(ctx, referee)
	if err != nil {
		return false, fmt.Errorf("rate for referee %d: %w", referee.ID, err)
	}

	total := decimal.Zero
	matchIDs := make([]uint64, 0, len(matches))
	for _, m := range matches {
		total = total.Add(rate)
		matchIDs = append(matchIDs, m.ID)
	}

	settlement := &model.Settlement{
		Period:      period,
		RefereeID:   referee.ID,
		GeneratedAt: time.Now(),
		Status:      model.SettlementPending,
		Total:       total,
		MatchCount:  len(matches),
	}
	if err := s.settlements.CreateWithMatches(ctx, settlement, matchIDs); err != nil {
		// A concurrent run may have won the (referee, period) insert;
		// that referee is then already settled, not failed.
		if isDuplicateKey(err) {
			return false, nil
		}
		if errors.Is(err, repository.ErrNoRowsUpdated) {
			// One of the collected matches got attached elsewhere after
			// the listing. The whole transaction rolled back.
			return false, fmt.Errorf("referee %d, period %s: %w", referee.ID, period.String(), ErrMatchAlreadySettled)
		}
		return false, err
	}

	s.notifier.NotifyReferee(ctx, fmt.Sprintf(
		"Settlement generated for period %s: %d matches, total $%s.",
		period.String(), len(matches), total.StringFixed(2)), referee.ID)
	return true, nil
}

// MarkPaid transitions pending -> paid. The transition is one-way; a
// second call fails with ErrSettlementAlreadyPaid and leaves the total
// untouched.
func (s *SettlementService) MarkPaid(ctx context.Context, settlementUUID string) (*model.Settlement, error) {
	settlement, err := s.GetSettlement(ctx, settlementUUID)
	if err != nil {
		return nil, err
	}

	if err := s.settlements.MarkPaidCAS(ctx, settlement.ID); err != nil {
		if errors.Is(err, repository.ErrNoRowsUpdated) {
			return nil, ErrSettlementAlreadyPaid
		}
		return nil, fmt.Errorf("mark settlement %s paid: %w", settlementUUID, err)
	}
	settlement.Status = model.SettlementPaid

	s.notifier.NotifyReferee(ctx, fmt.Sprintf(
		"Settlement %s for period %s has been paid. Total: $%s.",
		settlement.SettlementUUID, settlement.Period.String(), settlement.Total.StringFixed(2)),
		settlement.RefereeID)
	return settlement, nil
}

// GetSettlement resolves a settlement by its public id.
func (s *SettlementService) GetSettlement(ctx context.Context, settlementUUID string) (*model.Settlement, error) {
	settlement, err := s.settlements.GetByUUID(ctx, settlementUUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSettlementNotFound
		}
		return nil, err
	}
	return settlement, nil
}

// SettlementMatches lists the matches a settlement covers.
func (s *SettlementService) SettlementMatches(ctx context.Context, settlementUUID string) ([]*model.Match, error) {
	settlement, err := s.GetSettlement(ctx, settlementUUID)
	if err != nil {
		return nil, err
	}
	return s.matches.ListBySettlement(ctx, settlement.ID)
}

// SettlementFilter narrows ListSettlements.
type SettlementFilter struct {
	Period      model.Period
	RefereeID   uint64
	PendingOnly bool
}

// ListSettlements is the reporting query surface: by period, by referee,
// by both, or the pending backlog.
func (s *SettlementService) ListSettlements(ctx context.Context, filter SettlementFilter) ([]*model.Settlement, error) {
	switch {
	case filter.RefereeID != 0 && !filter.Period.IsZero():
		return s.settlements.ListByRefereeAndPeriod(ctx, filter.RefereeID, filter.Period)
	case filter.RefereeID != 0:
		return s.settlements.ListByReferee(ctx, filter.RefereeID)
	case !filter.Period.IsZero():
		return s.settlements.ListByPeriod(ctx, filter.Period)
	case filter.PendingOnly:
		return s.settlements.ListPending(ctx)
	default:
		return s.settlements.ListPending(ctx)
	}
}

// isDuplicateKey detects a unique-constraint violation across the
// driver's error spellings.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "uq_referee_period") ||
		strings.Contains(msg, "duplicate key")
}
