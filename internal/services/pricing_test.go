package services

import (
	"math"
	"testing"
	"time"

	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name  string
		rate  float64
		start time.Time
		end   time.Time
		want  float64
	}{
		{"same day bills one day", 50, date("2024-03-10"), date("2024-03-10"), 50},
		{"three full days", 45, date("2024-01-01"), date("2024-01-04"), 135},
		{"partial day rounds up", 40, date("2024-01-01"), date("2024-01-02").Add(2 * time.Hour), 80},
		{"one hour bills one day", 30, date("2024-01-01"), date("2024-01-01").Add(time.Hour), 30},
		{"fractional rate", 19.5, date("2024-05-01"), date("2024-05-03"), 39},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeTotal(tt.rate, tt.start, tt.end)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestComputeTotal_IsDeterministic(t *testing.T) {
	start, end := date("2024-02-27"), date("2024-03-02")
	first, err := ComputeTotal(61.25, start, end)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := ComputeTotal(61.25, start, end)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestComputeTotal_Rejects(t *testing.T) {
	_, err := ComputeTotal(45, date("2024-01-04"), date("2024-01-01"))
	assert.ErrorIs(t, err, models.ErrValidation)

	for _, rate := range []float64{0, -10, math.NaN(), math.Inf(1)} {
		_, err := ComputeTotal(rate, date("2024-01-01"), date("2024-01-02"))
		assert.ErrorIs(t, err, models.ErrValidation, "rate %v", rate)
	}
}

func TestBilledDays(t *testing.T) {
	days, err := BilledDays(date("2024-01-01"), date("2024-01-31"))
	require.NoError(t, err)
	assert.Equal(t, int64(30), days)

	days, err = BilledDays(date("2024-01-01"), date("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), days)
}

func TestBilledDays_LongRanges(t *testing.T) {
	days, err := BilledDays(date("2000-01-01"), date("2400-01-01"))
	require.NoError(t, err)
	assert.Equal(t, int64(146097), days)

	total, err := ComputeTotal(45, date("2000-01-01"), date("2400-01-01"))
	require.NoError(t, err)
	assert.InDelta(t, 6574365.0, total, 1e-6)
}

func TestBilledDays_SubSecondRemainders(t *testing.T) {
	start := date("2024-01-01").Add(500 * time.Millisecond)

	days, err := BilledDays(start, start.Add(24*time.Hour-300*time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, int64(1), days)

	days, err = BilledDays(start, start.Add(24*time.Hour+time.Nanosecond))
	require.NoError(t, err)
	assert.Equal(t, int64(2), days)
}
