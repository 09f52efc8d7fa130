package model

import (
	"database/sql/driver"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Period is a calendar year-month, stored as a single "2006-01" varchar
// column. It is the settlement partitioning key.
type Period struct {
	Year  int
	Month time.Month
}

// ParsePeriod parses "2006-01" into a Period.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q (want YYYY-MM): %w", s, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// PeriodOf returns the period containing t.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Bounds returns the first and last calendar day of the period (UTC).
func (p Period) Bounds() (time.Time, time.Time) {
	first := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first, last
}

// Contains reports whether d falls inside the period.
func (p Period) Contains(d time.Time) bool {
	return d.Year() == p.Year && d.Month() == p.Month
}

// Previous returns the period one month earlier.
func (p Period) Previous() Period {
	first := time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
	return PeriodOf(first.AddDate(0, -1, 0))
}

func (p Period) IsZero() bool { return p.Year == 0 }

// Value implements driver.Valuer.
func (p Period) Value() (driver.Value, error) {
	return p.String(), nil
}

// Scan implements sql.Scanner.
func (p *Period) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParsePeriod(v)
		if err != nil {
			return err
		}
		*p = parsed
		return nil
	case []byte:
		return p.Scan(string(v))
	case time.Time:
		*p = PeriodOf(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Period", src)
	}
}

// GormDataType tells gorm the column type for Period fields.
func (Period) GormDataType() string { return "varchar(7)" }

// SettlementStatus is the payment state of a settlement. The only legal
// transition is pending -> paid.
type SettlementStatus string

const (
	SettlementPending SettlementStatus = "pending"
	SettlementPaid    SettlementStatus = "paid"
)

// Settlement is a locked per-referee, per-period payroll batch. The
// unique index on (referee_id, period) enforces at most one settlement
// per pair, including under concurrent generation runs.
type Settlement struct {
	ID             uint64           `gorm:"column:id;primaryKey;autoIncrement"`
	SettlementUUID string           `gorm:"column:settlement_uuid;type:varchar(64);uniqueIndex;not null"`
	Period         Period           `gorm:"column:period;type:varchar(7);not null;uniqueIndex:uq_referee_period"`
	RefereeID      uint64           `gorm:"column:referee_id;type:bigint;not null;uniqueIndex:uq_referee_period"`
	GeneratedAt    time.Time        `gorm:"column:generated_at;type:timestamp;not null"`
	Status         SettlementStatus `gorm:"column:status;type:varchar(16);not null;default:pending;index"`
	Total          decimal.Decimal  `gorm:"column:total;type:numeric(18,2);not null"`
	MatchCount     int              `gorm:"column:match_count;type:int;not null"`
	CreatedAt      time.Time        `gorm:"column:created_at;type:timestamp;default:now()"`
	UpdatedAt      time.Time        `gorm:"column:updated_at;type:timestamp;default:now()"`
}

func (Settlement) TableName() string { return "settlements" }
