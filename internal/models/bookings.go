package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingActive    BookingStatus = "ACTIVE"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
)

// BlockingStatuses hold a car's dates; bookings in any other status do not.
var BlockingStatuses = []BookingStatus{BookingPending, BookingConfirmed, BookingActive}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingActive, BookingCancelled},
	BookingActive:    {BookingCompleted},
	BookingCompleted: {},
	BookingCancelled: {},
}

// ParseBookingStatus accepts any casing and surrounding whitespace.
func ParseBookingStatus(s string) (BookingStatus, error) {
	status := BookingStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown booking status %q", ErrValidation, s)
	}
	return status, nil
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) IsTerminal() bool {
	return s.IsValid() && len(bookingTransitions[s]) == 0
}

func (s BookingStatus) IsCancelable() bool {
	return s == BookingPending || s == BookingConfirmed
}

func (s BookingStatus) Blocks() bool {
	for _, b := range BlockingStatuses {
		if s == b {
			return true
		}
	}
	return false
}

// CanTransition reports whether the table allows from -> to.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range bookingTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a *TransitionError when from -> to is not allowed.
func CheckTransition(from, to BookingStatus) error {
	if !CanTransition(from, to) {
		return &TransitionError{From: from, To: to}
	}
	return nil
}

// BoundaryMode selects how touching date ranges are treated.
type BoundaryMode string

const (
	// BoundaryInclusive treats a return and a pickup at the same instant as a clash.
	BoundaryInclusive BoundaryMode = "inclusive"
	// BoundaryExclusive lets a booking start exactly when another ends.
	BoundaryExclusive BoundaryMode = "exclusive"
)

func ParseBoundaryMode(s string) (BoundaryMode, error) {
	switch m := BoundaryMode(strings.ToLower(strings.TrimSpace(s))); m {
	case BoundaryInclusive, BoundaryExclusive:
		return m, nil
	case "":
		return BoundaryInclusive, nil
	default:
		return "", fmt.Errorf("%w: unknown booking boundary %q", ErrValidation, s)
	}
}

type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrValidation)
	}
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: end date must not be before start date", ErrValidation)
	}
	return nil
}

// Overlaps is the in-memory twin of OverlapFilter.
func Overlaps(a, b DateRange, mode BoundaryMode) bool {
	if mode == BoundaryExclusive {
		return (a.Start.Before(b.End) && a.End.After(b.Start)) || a.Start.Equal(b.Start)
	}
	return !a.Start.After(b.End) && !a.End.Before(b.Start)
}

// OverlapFilter matches blocking bookings of carID that clash with r.
func OverlapFilter(carID primitive.ObjectID, r DateRange, mode BoundaryMode) bson.M {
	filter := bson.M{
		"car_id": carID,
		"status": bson.M{"$in": BlockingStatuses},
	}
	if mode == BoundaryExclusive {
		filter["$or"] = bson.A{
			bson.M{
				"start_date": bson.M{"$lt": r.End},
				"end_date":   bson.M{"$gt": r.Start},
			},
			bson.M{"start_date": r.Start},
		}
		return filter
	}
	filter["start_date"] = bson.M{"$lte": r.End}
	filter["end_date"] = bson.M{"$gte": r.Start}
	return filter
}

type Booking struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"user_id" json:"userId"`
	CarID           primitive.ObjectID `bson:"car_id" json:"carId"`
	StartDate       time.Time          `bson:"start_date" json:"startDate"`
	EndDate         time.Time          `bson:"end_date" json:"endDate"`
	TotalPrice      float64            `bson:"total_price" json:"totalPrice"`
	Status          BookingStatus      `bson:"status" json:"status"`
	PickupLocation  string             `bson:"pickup_location,omitempty" json:"pickupLocation,omitempty"`
	DropoffLocation string             `bson:"dropoff_location,omitempty" json:"dropoffLocation,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (b *Booking) BeforeCreate() error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	return nil
}

// BookingUpdate lists the mutable fields; nil means leave unchanged.
type BookingUpdate struct {
	Status          *BookingStatus
	PickupLocation  *string
	DropoffLocation *string
}

func (u BookingUpdate) IsEmpty() bool {
	return u.Status == nil && u.PickupLocation == nil && u.DropoffLocation == nil
}

func (u BookingUpdate) SetDoc(now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.PickupLocation != nil {
		set["pickup_location"] = *u.PickupLocation
	}
	if u.DropoffLocation != nil {
		set["dropoff_location"] = *u.DropoffLocation
	}
	return bson.M{"$set": set}
}

type BookingQuery struct {
	UserID *primitive.ObjectID
	CarID  *primitive.ObjectID
	Status *BookingStatus
	// Statuses matches any of the listed statuses; ignored when Status is set.
	Statuses []BookingStatus
	Pagination
}

func (q BookingQuery) Filter() bson.M {
	filter := bson.M{}
	if q.UserID != nil {
		filter["user_id"] = *q.UserID
	}
	if q.CarID != nil {
		filter["car_id"] = *q.CarID
	}
	if q.Status != nil {
		filter["status"] = *q.Status
	} else if len(q.Statuses) > 0 {
		filter["status"] = bson.M{"$in": q.Statuses}
	}
	return filter
}

type AgencySummary struct {
	ID      primitive.ObjectID `json:"id"`
	Name    string             `json:"name"`
	City    string             `json:"city"`
	Country string             `json:"country"`
}

type CarSummary struct {
	ID           primitive.ObjectID `json:"id"`
	Make         string             `json:"make"`
	Model        string             `json:"model"`
	Year         int                `json:"year"`
	LicensePlate string             `json:"licensePlate"`
	DailyRate    float64            `json:"dailyRate"`
	ImageURL     string             `json:"imageUrl,omitempty"`
	Agency       *AgencySummary     `json:"agency,omitempty"`
}

// BookingView is a booking with its car and agency resolved for display. Car
// is nil when the referenced car has since been deleted. User is only set in
// back-office listings.
type BookingView struct {
	*Booking
	Car  *CarSummary  `json:"car,omitempty"`
	User *UserSummary `json:"user,omitempty"`
}

func NewBookingView(b *Booking, car *Car, agency *Agency) *BookingView {
	view := &BookingView{Booking: b}
	if car == nil {
		return view
	}
	view.Car = &CarSummary{
		ID:           car.ID,
		Make:         car.Make,
		Model:        car.Model,
		Year:         car.Year,
		LicensePlate: car.LicensePlate,
		DailyRate:    car.DailyRate,
		ImageURL:     car.ImageURL,
	}
	if agency != nil {
		view.Car.Agency = agency.Summary()
	}
	return view
}
