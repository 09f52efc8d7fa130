package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"RefDesk/internal/model"
	"RefDesk/internal/repository"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// In-memory repository fakes for service tests. They mirror the
// database-level guards the gorm implementations rely on: CAS writes,
// the settlement_id IS NULL attach guard and the (referee, period)
// unique index.

func testLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

type fakeMatchRepo struct {
	mu     sync.Mutex
	nextID uint64
	items  map[uint64]model.Match
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{items: make(map[uint64]model.Match)}
}

func (r *fakeMatchRepo) Create(_ context.Context, match *model.Match) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	match.ID = r.nextID
	if match.MatchUUID == "" {
		match.MatchUUID = fmt.Sprintf("match-%d", match.ID)
	}
	r.items[match.ID] = *match
	return nil
}

func (r *fakeMatchRepo) GetByID(_ context.Context, id uint64) (*model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *fakeMatchRepo) GetByUUID(_ context.Context, matchUUID string) (*model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.items {
		if m.MatchUUID == matchUUID {
			m := m
			return &m, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeMatchRepo) UpdateStatusCAS(_ context.Context, id uint64, from, to model.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok || m.Status != from {
		return repository.ErrNoRowsUpdated
	}
	m.Status = to
	r.items[id] = m
	return nil
}

func (r *fakeMatchRepo) ReassignReferee(_ context.Context, id uint64, prevRefereeID, newRefereeID uint64, toStatus model.MatchStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.items[id]
	if !ok || m.RefereeID == nil || *m.RefereeID != prevRefereeID {
		return repository.ErrNoRowsUpdated
	}
	m.RefereeID = &newRefereeID
	m.Status = toStatus
	r.items[id] = m
	return nil
}

func (r *fakeMatchRepo) ListByReferee(_ context.Context, refereeID uint64, filter repository.MatchFilter) ([]*model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.Match
	for id := uint64(1); id <= r.nextID; id++ {
		m, ok := r.items[id]
		if !ok || m.RefereeID == nil || *m.RefereeID != refereeID {
			continue
		}
		if filter.Status != "" && m.Status != filter.Status {
			continue
		}
		list = append(list, &m)
	}
	return list, nil
}

func (r *fakeMatchRepo) ListUnassigned(_ context.Context) ([]*model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.Match
	for id := uint64(1); id <= r.nextID; id++ {
		if m, ok := r.items[id]; ok && m.RefereeID == nil {
			m := m
			list = append(list, &m)
		}
	}
	return list, nil
}

func (r *fakeMatchRepo) ListUnsettledInRange(_ context.Context, refereeID uint64, from, to time.Time) ([]*model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.Match
	for id := uint64(1); id <= r.nextID; id++ {
		m, ok := r.items[id]
		if !ok || m.RefereeID == nil || *m.RefereeID != refereeID || m.SettlementID != nil {
			continue
		}
		if m.Date.Before(from) || m.Date.After(to) {
			continue
		}
		list = append(list, &m)
	}
	return list, nil
}

func (r *fakeMatchRepo) ListBySettlement(_ context.Context, settlementID uint64) ([]*model.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.Match
	for id := uint64(1); id <= r.nextID; id++ {
		if m, ok := r.items[id]; ok && m.SettlementID != nil && *m.SettlementID == settlementID {
			m := m
			list = append(list, &m)
		}
	}
	return list, nil
}

func (r *fakeMatchRepo) ExistsAtSlot(_ context.Context, refereeID uint64, date time.Time, kickoff string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.items {
		if m.RefereeID != nil && *m.RefereeID == refereeID && m.Date.Equal(date) && m.Kickoff == kickoff {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeMatchRepo) CountByReferee(_ context.Context, refereeID uint64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.items {
		if m.RefereeID != nil && *m.RefereeID == refereeID {
			n++
		}
	}
	return n, nil
}

func (r *fakeMatchRepo) CountByStatus(_ context.Context, status model.MatchStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.items {
		if m.Status == status {
			n++
		}
	}
	return n, nil
}

// attachLocked links a match to a settlement, enforcing the
// settlement_id IS NULL guard.
func (r *fakeMatchRepo) attachLocked(matchID, settlementID uint64) error {
	m, ok := r.items[matchID]
	if !ok || m.SettlementID != nil {
		return repository.ErrNoRowsUpdated
	}
	m.SettlementID = &settlementID
	r.items[matchID] = m
	return nil
}

type fakeRefereeRepo struct {
	mu       sync.Mutex
	nextID   uint64
	referees map[uint64]model.Referee
	users    map[uint64]model.User
	tiers    map[uint64]model.RankTier
}

func newFakeRefereeRepo() *fakeRefereeRepo {
	return &fakeRefereeRepo{
		referees: make(map[uint64]model.Referee),
		users:    make(map[uint64]model.User),
		tiers:    make(map[uint64]model.RankTier),
	}
}

func (r *fakeRefereeRepo) addTier(tier model.RankTier) model.RankTier {
	r.mu.Lock()
	defer r.mu.Unlock()
	tier.ID = uint64(len(r.tiers) + 1)
	r.tiers[tier.ID] = tier
	return tier
}

func (r *fakeRefereeRepo) addReferee(ref model.Referee) model.Referee {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ref.ID = r.nextID
	if ref.Status == "" {
		ref.Status = model.RefereeActive
	}
	r.referees[ref.ID] = ref
	return ref
}

func (r *fakeRefereeRepo) CreateWithUser(_ context.Context, referee *model.Referee, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return errors.New("duplicate key value violates unique constraint \"users_username_key\"")
		}
	}
	user.ID = uint64(len(r.users) + 1)
	r.users[user.ID] = *user
	r.nextID++
	referee.ID = r.nextID
	referee.UserID = user.ID
	r.referees[referee.ID] = *referee
	return nil
}

func (r *fakeRefereeRepo) GetByID(_ context.Context, id uint64) (*model.Referee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.referees[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &ref, nil
}

func (r *fakeRefereeRepo) GetByUsername(_ context.Context, username string) (*model.Referee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			for _, ref := range r.referees {
				if ref.UserID == u.ID {
					ref := ref
					return &ref, nil
				}
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefereeRepo) ListActive(_ context.Context) ([]*model.Referee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.Referee
	for id := uint64(1); id <= r.nextID; id++ {
		if ref, ok := r.referees[id]; ok && ref.Status == model.RefereeActive {
			ref := ref
			list = append(list, &ref)
		}
	}
	return list, nil
}

func (r *fakeRefereeRepo) Retire(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ref, ok := r.referees[id]
	if !ok || ref.Status != model.RefereeActive {
		return repository.ErrNoRowsUpdated
	}
	ref.Status = model.RefereeRetired
	r.referees[id] = ref
	return nil
}

func (r *fakeRefereeRepo) GetTier(_ context.Context, tierID uint64) (*model.RankTier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tier, ok := r.tiers[tierID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &tier, nil
}

func (r *fakeRefereeRepo) GetTierByName(_ context.Context, name string) (*model.RankTier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, tier := range r.tiers {
		if tier.Name == name {
			tier := tier
			return &tier, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRefereeRepo) ListTiers(_ context.Context) ([]*model.RankTier, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.RankTier
	for _, tier := range r.tiers {
		tier := tier
		list = append(list, &tier)
	}
	return list, nil
}

type fakeSettlementRepo struct {
	mu      sync.Mutex
	nextID  uint64
	items   map[uint64]model.Settlement
	matches *fakeMatchRepo
}

func newFakeSettlementRepo(matches *fakeMatchRepo) *fakeSettlementRepo {
	return &fakeSettlementRepo{items: make(map[uint64]model.Settlement), matches: matches}
}

func (r *fakeSettlementRepo) Exists(_ context.Context, refereeID uint64, period model.Period) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.RefereeID == refereeID && s.Period == period {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeSettlementRepo) CreateWithMatches(_ context.Context, settlement *model.Settlement, matchIDs []uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.RefereeID == settlement.RefereeID && s.Period == settlement.Period {
			return errors.New("duplicate key value violates unique constraint \"uq_referee_period\"")
		}
	}
	r.nextID++
	settlement.ID = r.nextID
	if settlement.SettlementUUID == "" {
		settlement.SettlementUUID = fmt.Sprintf("settlement-%d", settlement.ID)
	}

	r.matches.mu.Lock()
	defer r.matches.mu.Unlock()
	attached := make([]uint64, 0, len(matchIDs))
	for _, matchID := range matchIDs {
		if err := r.matches.attachLocked(matchID, settlement.ID); err != nil {
			// Roll back the whole settlement, as the transaction would.
			for _, done := range attached {
				m := r.matches.items[done]
				m.SettlementID = nil
				r.matches.items[done] = m
			}
			return fmt.Errorf("attach match %d: %w", matchID, err)
		}
		attached = append(attached, matchID)
	}

	r.items[settlement.ID] = *settlement
	return nil
}

func (r *fakeSettlementRepo) GetByUUID(_ context.Context, settlementUUID string) (*model.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.SettlementUUID == settlementUUID {
			s := s
			return &s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSettlementRepo) ListByPeriod(_ context.Context, period model.Period) ([]*model.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.Settlement
	for id := uint64(1); id <= r.nextID; id++ {
		if s, ok := r.items[id]; ok && s.Period == period {
			s := s
			list = append(list, &s)
		}
	}
	return list, nil
}

func (r *fakeSettlementRepo) ListByReferee(_ context.Context, refereeID uint64) ([]*model.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.Settlement
	for id := uint64(1); id <= r.nextID; id++ {
		if s, ok := r.items[id]; ok && s.RefereeID == refereeID {
			s := s
			list = append(list, &s)
		}
	}
	return list, nil
}

func (r *fakeSettlementRepo) ListByRefereeAndPeriod(_ context.Context, refereeID uint64, period model.Period) ([]*model.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.Settlement
	for id := uint64(1); id <= r.nextID; id++ {
		if s, ok := r.items[id]; ok && s.RefereeID == refereeID && s.Period == period {
			s := s
			list = append(list, &s)
		}
	}
	return list, nil
}

func (r *fakeSettlementRepo) ListPending(_ context.Context) ([]*model.Settlement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.Settlement
	for id := uint64(1); id <= r.nextID; id++ {
		if s, ok := r.items[id]; ok && s.Status == model.SettlementPending {
			s := s
			list = append(list, &s)
		}
	}
	return list, nil
}

func (r *fakeSettlementRepo) MarkPaidCAS(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok || s.Status != model.SettlementPending {
		return repository.ErrNoRowsUpdated
	}
	s.Status = model.SettlementPaid
	r.items[id] = s
	return nil
}

type fakeNotificationRepo struct {
	mu    sync.Mutex
	items []model.Notification
	// failing makes every Create return an error, for testing the
	// best-effort delivery contract.
	failing bool
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("notification store unavailable")
	}
	n.ID = uint64(len(r.items) + 1)
	r.items = append(r.items, *n)
	return nil
}

func (r *fakeNotificationRepo) ListForAdmins(_ context.Context) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.Notification
	for i := range r.items {
		if r.items[i].Recipient == model.RecipientAdmin {
			n := r.items[i]
			list = append(list, &n)
		}
	}
	return list, nil
}

func (r *fakeNotificationRepo) ListForReferee(_ context.Context, refereeID uint64) ([]*model.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []*model.Notification
	for i := range r.items {
		n := r.items[i]
		if n.Recipient == model.RecipientReferee && n.RefereeID != nil && *n.RefereeID == refereeID {
			list = append(list, &n)
		}
	}
	return list, nil
}

func (r *fakeNotificationRepo) countFor(refereeID uint64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.items {
		if item.Recipient == model.RecipientReferee && item.RefereeID != nil && *item.RefereeID == refereeID {
			n++
		}
	}
	return n
}

func (r *fakeNotificationRepo) countAdmin() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, item := range r.items {
		if item.Recipient == model.RecipientAdmin {
			n++
		}
	}
	return n
}
