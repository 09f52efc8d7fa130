package service

import (
	"context"

	"RefDesk/internal/model"
	"RefDesk/internal/repository"

	"github.com/shopspring/decimal"
)

// RankTierDirectory resolves a referee's fixed per-match fee from their
// rank tier.
type RankTierDirectory struct {
	referees repository.RefereeRepository
}

// NewRankTierDirectory creates a RankTierDirectory.
func NewRankTierDirectory(referees repository.RefereeRepository) *RankTierDirectory {
	return &RankTierDirectory{referees: referees}
}

// RateFor returns the referee's current per-match base fee. A referee
// without a tier is a data-integrity error (ErrTierNotConfigured), never
// a silent zero rate.
func (d *RankTierDirectory) RateFor(ctx context.Context, referee *model.Referee) (decimal.Decimal, error) {
	if referee.TierID == nil {
		return decimal.Zero, ErrTierNotConfigured
	}
	tier, err := d.referees.GetTier(ctx, *referee.TierID)
	if err != nil {
		return decimal.Zero, err
	}
	return tier.BaseFee, nil
}
