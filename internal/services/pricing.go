package services

import (
	"fmt"
	"math"
	"time"

	"github.com/joshua-takyi/carhire/internal/models"
)

const secondsPerDay = 24 * 60 * 60

// BilledDays rounds the rental up to whole days. A same-day rental bills one day.
func BilledDays(start, end time.Time) (int64, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("%w: end date must not be before start date", models.ErrValidation)
	}
	// end.Sub saturates past ~292 years, so count in whole seconds instead.
	secs := end.Unix() - start.Unix()
	nanos := end.Nanosecond() - start.Nanosecond()
	if nanos < 0 {
		secs--
		nanos += int(time.Second)
	}
	days := secs / secondsPerDay
	if secs%secondsPerDay != 0 || nanos > 0 {
		days++
	}
	if days < 1 {
		days = 1
	}
	return days, nil
}

// ComputeTotal prices a rental at dailyRate per billed day.
func ComputeTotal(dailyRate float64, start, end time.Time) (float64, error) {
	if dailyRate <= 0 || math.IsNaN(dailyRate) || math.IsInf(dailyRate, 0) {
		return 0, fmt.Errorf("%w: daily rate must be positive", models.ErrValidation)
	}
	days, err := BilledDays(start, end)
	if err != nil {
		return 0, err
	}
	return float64(days) * dailyRate, nil
}
