package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriod(t *testing.T) {
	p, err := ParsePeriod("2025-09")
	require.NoError(t, err)
	assert.Equal(t, 2025, p.Year)
	assert.Equal(t, time.September, p.Month)
	assert.Equal(t, "2025-09", p.String())

	for _, bad := range []string{"", "2025", "2025-13", "09-2025", "2025-9-1"} {
		_, err := ParsePeriod(bad)
		assert.Error(t, err, "expected %q to be rejected", bad)
	}
}

func TestPeriodBounds(t *testing.T) {
	p := Period{Year: 2025, Month: time.September}
	first, last := p.Bounds()
	assert.Equal(t, time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC), first)
	assert.Equal(t, time.Date(2025, time.September, 30, 0, 0, 0, 0, time.UTC), last)

	// Leap February.
	p = Period{Year: 2024, Month: time.February}
	_, last = p.Bounds()
	assert.Equal(t, 29, last.Day())
}

func TestPeriodContains(t *testing.T) {
	p := Period{Year: 2025, Month: time.September}
	assert.True(t, p.Contains(time.Date(2025, time.September, 10, 15, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, p.Contains(time.Date(2024, time.September, 10, 0, 0, 0, 0, time.UTC)))
}

func TestPeriodPrevious(t *testing.T) {
	p := Period{Year: 2025, Month: time.January}
	prev := p.Previous()
	assert.Equal(t, 2024, prev.Year)
	assert.Equal(t, time.December, prev.Month)

	p = Period{Year: 2025, Month: time.September}
	assert.Equal(t, time.August, p.Previous().Month)
}

func TestPeriodScanValue(t *testing.T) {
	p := Period{Year: 2025, Month: time.September}
	v, err := p.Value()
	require.NoError(t, err)
	assert.Equal(t, "2025-09", v)

	var scanned Period
	require.NoError(t, scanned.Scan("2025-09"))
	assert.Equal(t, p, scanned)

	require.NoError(t, scanned.Scan([]byte("2024-02")))
	assert.Equal(t, Period{Year: 2024, Month: time.February}, scanned)

	require.NoError(t, scanned.Scan(time.Date(2023, time.July, 14, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Period{Year: 2023, Month: time.July}, scanned)

	assert.Error(t, scanned.Scan(42))
	assert.Error(t, scanned.Scan("not-a-period"))
}
