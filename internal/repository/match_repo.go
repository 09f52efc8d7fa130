package repository

import (
	"context"
	"errors"
	"time"

	"RefDesk/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrNoRowsUpdated is returned by the compare-and-swap writes when the
// guarded row was not in the expected state. Callers translate it into
// the precise domain error.
var ErrNoRowsUpdated = errors.New("no rows updated")

// MatchFilter narrows ListByReferee.
type MatchFilter struct {
	Status model.MatchStatus // empty = any
}

// MatchRepository is the persistence collaborator for matches. All
// status writes are compare-and-swap on the current status so that two
// concurrent confirm/decline calls on the same match cannot both
// succeed.
type MatchRepository interface {
	Create(ctx context.Context, match *model.Match) error
	GetByID(ctx context.Context, id uint64) (*model.Match, error)
	GetByUUID(ctx context.Context, matchUUID string) (*model.Match, error)
	// UpdateStatusCAS moves id from -> to; ErrNoRowsUpdated when the
	// match is no longer in the from status.
	UpdateStatusCAS(ctx context.Context, id uint64, from, to model.MatchStatus) error
	// ReassignReferee swaps the assigned referee and writes toStatus in
	// one guarded update. The guard is the previous referee, so a
	// concurrent reassign loses cleanly.
	ReassignReferee(ctx context.Context, id uint64, prevRefereeID, newRefereeID uint64, toStatus model.MatchStatus) error
	ListByReferee(ctx context.Context, refereeID uint64, filter MatchFilter) ([]*model.Match, error)
	ListUnassigned(ctx context.Context) ([]*model.Match, error)
	// ListUnsettledInRange returns a referee's matches dated within
	// [from, to] that have no settlement attached.
	ListUnsettledInRange(ctx context.Context, refereeID uint64, from, to time.Time) ([]*model.Match, error)
	ListBySettlement(ctx context.Context, settlementID uint64) ([]*model.Match, error)
	// ExistsAtSlot reports whether the referee already has a match at
	// the given date and kickoff time.
	ExistsAtSlot(ctx context.Context, refereeID uint64, date time.Time, kickoff string) (bool, error)
	CountByReferee(ctx context.Context, refereeID uint64) (int64, error)
	CountByStatus(ctx context.Context, status model.MatchStatus) (int64, error)
}

type matchRepository struct {
	db *gorm.DB
}

// NewMatchRepository creates the gorm-backed MatchRepository.
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) Create(ctx context.Context, match *model.Match) error {
	if match.MatchUUID == "" {
		match.MatchUUID = uuid.NewString()
	}
	return r.db.WithContext(ctx).Create(match).Error
}

func (r *matchRepository) GetByID(ctx context.Context, id uint64) (*model.Match, error) {
	var m model.Match
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *matchRepository) GetByUUID(ctx context.Context, matchUUID string) (*model.Match, error) {
	var m model.Match
	if err := r.db.WithContext(ctx).Where("match_uuid = ?", matchUUID).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *matchRepository) UpdateStatusCAS(ctx context.Context, id uint64, from, to model.MatchStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Match{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]interface{}{
			"status":     to,
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

func (r *matchRepository) ReassignReferee(ctx context.Context, id uint64, prevRefereeID, newRefereeID uint64, toStatus model.MatchStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Match{}).
		Where("id = ? AND referee_id = ?", id, prevRefereeID).
		Updates(map[string]interface{}{
			"referee_id": newRefereeID,
			"status":     toStatus,
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

func (r *matchRepository) ListByReferee(ctx context.Context, refereeID uint64, filter MatchFilter) ([]*model.Match, error) {
	db := r.db.WithContext(ctx).Where("referee_id = ?", refereeID)
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	var list []*model.Match
	if err := db.Order("date ASC, kickoff ASC").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *matchRepository) ListUnassigned(ctx context.Context) ([]*model.Match, error) {
	var list []*model.Match
	if err := r.db.WithContext(ctx).
		Where("referee_id IS NULL").
		Order("date ASC, kickoff ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *matchRepository) ListUnsettledInRange(ctx context.Context, refereeID uint64, from, to time.Time) ([]*model.Match, error) {
	var list []*model.Match
	if err := r.db.WithContext(ctx).
		Where("referee_id = ? AND settlement_id IS NULL AND date BETWEEN ? AND ?", refereeID, from, to).
		Order("date ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *matchRepository) ListBySettlement(ctx context.Context, settlementID uint64) ([]*model.Match, error) {
	var list []*model.Match
	if err := r.db.WithContext(ctx).
		Where("settlement_id = ?", settlementID).
		Order("date ASC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *matchRepository) ExistsAtSlot(ctx context.Context, refereeID uint64, date time.Time, kickoff string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Match{}).
		Where("referee_id = ? AND date = ? AND kickoff = ?", refereeID, date, kickoff).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *matchRepository) CountByReferee(ctx context.Context, refereeID uint64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Match{}).
		Where("referee_id = ?", refereeID).Count(&n).Error
	return n, err
}

func (r *matchRepository) CountByStatus(ctx context.Context, status model.MatchStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Match{}).
		Where("status = ?", status).Count(&n).Error
	return n, err
}
