package services

import (
	"fmt"
	"strings"

	"github.com/joshua-takyi/carhire/internal/models"
)

// CarStatusPolicy decides whether booking events move a car's status.
type CarStatusPolicy string

const (
	// CarStatusManual leaves car status entirely to the agency.
	CarStatusManual CarStatusPolicy = "manual"
	// CarStatusRentOnCreate marks the car RENTED as soon as a booking is accepted.
	CarStatusRentOnCreate CarStatusPolicy = "rent_on_create"
	// CarStatusRentOnActive marks the car RENTED when a booking becomes ACTIVE.
	CarStatusRentOnActive CarStatusPolicy = "rent_on_active"
)

func ParseCarStatusPolicy(s string) (CarStatusPolicy, error) {
	switch p := CarStatusPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case CarStatusManual, CarStatusRentOnCreate, CarStatusRentOnActive:
		return p, nil
	case "":
		return CarStatusManual, nil
	default:
		return "", fmt.Errorf("%w: unknown car status policy %q", models.ErrValidation, s)
	}
}

const DefaultBookingAttempts = 3

type BookingPolicy struct {
	CarStatus CarStatusPolicy
	// MaxAttempts bounds how often a create is retried after losing the
	// per-car fence to a concurrent writer.
	MaxAttempts int
}

func (p BookingPolicy) normalized() BookingPolicy {
	if p.CarStatus == "" {
		p.CarStatus = CarStatusManual
	}
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultBookingAttempts
	}
	return p
}

// carStatusChange returns the car status move implied by a booking going
// from -> to, or ok=false when the car is left alone.
func (p BookingPolicy) carStatusChange(from, to models.BookingStatus) (models.CarStatus, models.CarStatus, bool) {
	switch p.CarStatus {
	case CarStatusRentOnCreate:
		if from == "" && to == models.BookingPending {
			return models.CarAvailable, models.CarRented, true
		}
		if to == models.BookingCompleted || to == models.BookingCancelled {
			return models.CarRented, models.CarAvailable, true
		}
	case CarStatusRentOnActive:
		if to == models.BookingActive {
			return models.CarAvailable, models.CarRented, true
		}
		// Only the booking that took the car out may hand it back.
		if from == models.BookingActive && to == models.BookingCompleted {
			return models.CarRented, models.CarAvailable, true
		}
	}
	return "", "", false
}

// holdingStatuses lists the booking statuses that keep a car RENTED under
// the policy. A car is only handed back once no booking is left in them.
func (p BookingPolicy) holdingStatuses() []models.BookingStatus {
	switch p.CarStatus {
	case CarStatusRentOnCreate:
		return models.BlockingStatuses
	case CarStatusRentOnActive:
		return []models.BookingStatus{models.BookingActive}
	}
	return nil
}
