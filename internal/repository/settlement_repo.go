package repository

import (
	"context"
	"fmt"
	"time"

	"RefDesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SettlementRepository is the persistence collaborator for settlements.
// The (referee_id, period) unique index backs Exists: a concurrent
// duplicate insert fails on the constraint instead of creating a second
// settlement for the pair.
type SettlementRepository interface {
	Exists(ctx context.Context, refereeID uint64, period model.Period) (bool, error)
	// CreateWithMatches inserts the settlement and attaches every match
	// in one transaction. Attachment is guarded on settlement_id IS
	// NULL; a match already settled fails the whole transaction with
	// ErrNoRowsUpdated so no match is ever billed twice.
	CreateWithMatches(ctx context.Context, settlement *model.Settlement, matchIDs []uint64) error
	GetByUUID(ctx context.Context, settlementUUID string) (*model.Settlement, error)
	ListByPeriod(ctx context.Context, period model.Period) ([]*model.Settlement, error)
	ListByReferee(ctx context.Context, refereeID uint64) ([]*model.Settlement, error)
	ListByRefereeAndPeriod(ctx context.Context, refereeID uint64, period model.Period) ([]*model.Settlement, error)
	ListPending(ctx context.Context) ([]*model.Settlement, error)
	// MarkPaidCAS moves pending -> paid; ErrNoRowsUpdated when the
	// settlement is already paid.
	MarkPaidCAS(ctx context.Context, id uint64) error
}

type settlementRepository struct {
	db *gorm.DB
}

// NewSettlementRepository creates the gorm-backed SettlementRepository.
func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepository{db: db}
}

func (r *settlementRepository) Exists(ctx context.Context, refereeID uint64, period model.Period) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Settlement{}).
		Where("referee_id = ? AND period = ?", refereeID, period).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *settlementRepository) CreateWithMatches(ctx context.Context, settlement *model.Settlement, matchIDs []uint64) error {
	if settlement.SettlementUUID == "" {
		settlement.SettlementUUID = uuid.NewString()
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(settlement).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("create settlement for referee %d period %s: %w",
			settlement.RefereeID, settlement.Period, err)
	}

	for _, matchID := range matchIDs {
		res := tx.Model(&model.Match{}).
			Where("id = ? AND settlement_id IS NULL", matchID).
			Updates(map[string]interface{}{
				"settlement_id": settlement.ID,
				"updated_at":    time.Now(),
			})
		if res.Error != nil {
			tx.Rollback()
			return fmt.Errorf("attach match %d: %w", matchID, res.Error)
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			return fmt.Errorf("attach match %d: %w", matchID, ErrNoRowsUpdated)
		}
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *settlementRepository) GetByUUID(ctx context.Context, settlementUUID string) (*model.Settlement, error) {
	var s model.Settlement
	if err := r.db.WithContext(ctx).Where("settlement_uuid = ?", settlementUUID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *settlementRepository) ListByPeriod(ctx context.Context, period model.Period) ([]*model.Settlement, error) {
	var list []*model.Settlement
	if err := r.db.WithContext(ctx).
		Where("period = ?", period).
		Order("referee_id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *settlementRepository) ListByReferee(ctx context.Context, refereeID uint64) ([]*model.Settlement, error) {
	var list []*model.Settlement
	if err := r.db.WithContext(ctx).
		Where("referee_id = ?", refereeID).
		Order("period DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *settlementRepository) ListByRefereeAndPeriod(ctx context.Context, refereeID uint64, period model.Period) ([]*model.Settlement, error) {
	var list []*model.Settlement
	if err := r.db.WithContext(ctx).
		Where("referee_id = ? AND period = ?", refereeID, period).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *settlementRepository) ListPending(ctx context.Context) ([]*model.Settlement, error) {
	var list []*model.Settlement
	if err := r.db.WithContext(ctx).
		Where("status = ?", model.SettlementPending).
		Order("period ASC, referee_id ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *settlementRepository) MarkPaidCAS(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Model(&model.Settlement{}).
		Where("id = ? AND status = ?", id, model.SettlementPending).
		Updates(map[string]interface{}{
			"status":     model.SettlementPaid,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNoRowsUpdated
	}
	return nil
}
