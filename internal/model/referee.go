package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// RefereeStatus is the referee lifecycle. Retired referees keep their
// match and settlement history but are excluded from default queries.
type RefereeStatus string

const (
	RefereeActive  RefereeStatus = "active"
	RefereeRetired RefereeStatus = "retired"
)

// Role of a login identity.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleReferee Role = "referee"
)

// User is the login identity created together with a referee. The core
// never authenticates; it only owns the record.
type User struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Username     string    `gorm:"column:username;type:varchar(64);uniqueIndex;not null"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(128);not null"`
	Role         Role      `gorm:"column:role;type:varchar(16);not null;default:referee"`
	Active       bool      `gorm:"column:active;type:boolean;default:true"`
	CreatedAt    time.Time `gorm:"column:created_at;type:timestamp;default:now()"`
}

func (User) TableName() string { return "users" }

// RankTier fixes a referee's per-match base fee. Read-mostly; changing a
// fee affects future settlements only.
type RankTier struct {
	ID        uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string          `gorm:"column:name;type:varchar(32);uniqueIndex;not null"`
	BaseFee   decimal.Decimal `gorm:"column:base_fee;type:numeric(18,2);not null"`
	CreatedAt time.Time       `gorm:"column:created_at;type:timestamp;default:now()"`
}

func (RankTier) TableName() string { return "rank_tiers" }

// Default tier names seeded at startup.
const (
	TierInternational = "international"
	TierNational      = "national"
	TierLocal         = "local"
)

// Referee is a match official. TierID may be nil for an incompletely
// configured referee; settlement generation treats that as a data error.
// A referee's matches are a query against matches.referee_id, never a
// collection held on this row.
type Referee struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	Name           string         `gorm:"column:name;type:varchar(128);not null"`
	DocumentNumber string         `gorm:"column:document_number;type:varchar(32);uniqueIndex;not null"`
	Phone          string         `gorm:"column:phone;type:varchar(32);uniqueIndex;not null"`
	Speciality     string         `gorm:"column:speciality;type:varchar(64)"`
	Unavailability datatypes.JSON `gorm:"column:unavailability;type:jsonb"`
	TierID         *uint64        `gorm:"column:tier_id;type:bigint;index"`
	UserID         uint64         `gorm:"column:user_id;type:bigint;uniqueIndex;not null"`
	Status         RefereeStatus  `gorm:"column:status;type:varchar(16);not null;default:active;index"`
	CreatedAt      time.Time      `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;type:timestamp;default:now()"`
}

func (Referee) TableName() string { return "referees" }
