package repository

import (
	"context"
	"fmt"
	"time"

	"RefDesk/internal/model"

	"gorm.io/gorm"
)

// RefereeRepository is the persistence collaborator for referees, their
// login identities and rank tiers. Default listings exclude retired
// referees; retirement is a lifecycle status write, never a delete.
type RefereeRepository interface {
	// CreateWithUser inserts the login user and the referee in one
	// transaction so a referee never exists without its identity.
	CreateWithUser(ctx context.Context, referee *model.Referee, user *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.Referee, error)
	GetByUsername(ctx context.Context, username string) (*model.Referee, error)
	ListActive(ctx context.Context) ([]*model.Referee, error)
	Retire(ctx context.Context, id uint64) error
	GetTier(ctx context.Context, tierID uint64) (*model.RankTier, error)
	GetTierByName(ctx context.Context, name string) (*model.RankTier, error)
	ListTiers(ctx context.Context) ([]*model.RankTier, error)
}

type refereeRepository struct {
	db *gorm.DB
}

// NewRefereeRepository creates the gorm-backed RefereeRepository.
func NewRefereeRepository(db *gorm.DB) RefereeRepository {
	return &refereeRepository{db: db}
}

func (r *refereeRepository) CreateWithUser(ctx context.Context, referee *model.Referee, user *model.User) error {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return fmt.Errorf("begin transaction: %w", tx.Error)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(user).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("create user %s: %w", user.Username, err)
	}
	referee.UserID = user.ID
	if err := tx.Create(referee).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("create referee %s: %w", referee.Name, err)
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *refereeRepository) GetByID(ctx context.Context, id uint64) (*model.Referee, error) {
	var ref model.Referee
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ref).Error; err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *refereeRepository) GetByUsername(ctx context.Context, username string) (*model.Referee, error) {
	var ref model.Referee
	err := r.db.WithContext(ctx).
		Joins("JOIN users ON users.id = referees.user_id").
		Where("users.username = ?", username).
		First(&ref).Error
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (r *refereeRepository) ListActive(ctx context.Context) ([]*model.Referee, error) {
	var list []*model.Referee
	if err := r.db.WithContext(ctx).
		Where("status = ?", model.RefereeActive).
		Order("name ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *refereeRepository) Retire(ctx context.Context, id uint64) error {
	res := r.db.WithContext(ctx).Model(&model.Referee{}).
		Where("id = ? AND status = ?", id, model.RefereeActive).
		Updates(map[string]interface{}{
			"status":     model.RefereeRetired,
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

func (r *refereeRepository) GetTier(ctx context.Context, tierID uint64) (*model.RankTier, error) {
	var tier model.RankTier
	if err := r.db.WithContext(ctx).Where("id = ?", tierID).First(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *refereeRepository) GetTierByName(ctx context.Context, name string) (*model.RankTier, error) {
	var tier model.RankTier
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&tier).Error; err != nil {
		return nil, err
	}
	return &tier, nil
}

func (r *refereeRepository) ListTiers(ctx context.Context) ([]*model.RankTier, error) {
	var list []*model.RankTier
	if err := r.db.WithContext(ctx).Order("base_fee DESC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
