package models

import (
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CarStatus string

const (
	CarAvailable   CarStatus = "AVAILABLE"
	CarRented      CarStatus = "RENTED"
	CarMaintenance CarStatus = "MAINTENANCE"
	CarUnavailable CarStatus = "UNAVAILABLE"
)

func ParseCarStatus(s string) (CarStatus, error) {
	switch st := CarStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case CarAvailable, CarRented, CarMaintenance, CarUnavailable:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown car status %q", ErrValidation, s)
	}
}

type Car struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	AgencyID     primitive.ObjectID `bson:"agency_id" json:"agencyId" validate:"required"`
	Make         string             `bson:"make" json:"make" validate:"required"`
	Model        string             `bson:"model" json:"model" validate:"required"`
	Year         int                `bson:"year" json:"year" validate:"required,gte=1900,lte=2100"`
	LicensePlate string             `bson:"license_plate" json:"licensePlate" validate:"required"`
	Color        string             `bson:"color,omitempty" json:"color,omitempty"`
	Mileage      int                `bson:"mileage" json:"mileage" validate:"gte=0"`
	Transmission string             `bson:"transmission" json:"transmission" validate:"required,oneof=MANUAL AUTOMATIC SEMI_AUTOMATIC"`
	FuelType     string             `bson:"fuel_type" json:"fuelType" validate:"required,oneof=GASOLINE DIESEL HYBRID ELECTRIC"`
	Seats        int                `bson:"seats" json:"seats" validate:"required,gt=0"`
	DailyRate    float64            `bson:"daily_rate" json:"dailyRate" validate:"required,gt=0"`
	Status       CarStatus          `bson:"status" json:"status"`
	Description  string             `bson:"description,omitempty" json:"description,omitempty"`
	ImageURL     string             `bson:"image_url,omitempty" json:"imageUrl,omitempty"`
	// BookingVersion is bumped after every accepted booking; see
	// CarRepo.AdvanceBookingVersion.
	BookingVersion int64     `bson:"booking_version" json:"-"`
	CreatedAt      time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updatedAt"`
}

func (c *Car) BeforeCreate() error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.Status == "" {
		c.Status = CarAvailable
	}
	return nil
}

// Sanitize trims free text and normalizes enum casing.
func (c *Car) Sanitize() {
	c.Make = strings.TrimSpace(c.Make)
	c.Model = strings.TrimSpace(c.Model)
	c.LicensePlate = strings.ToUpper(strings.TrimSpace(c.LicensePlate))
	c.Color = strings.TrimSpace(c.Color)
	c.Description = strings.TrimSpace(c.Description)
	c.Transmission = strings.ToUpper(strings.TrimSpace(c.Transmission))
	c.FuelType = strings.ToUpper(strings.TrimSpace(c.FuelType))
	c.Status = CarStatus(strings.ToUpper(strings.TrimSpace(string(c.Status))))
}

// CarUpdate lists the fields admins may change; nil means leave unchanged.
type CarUpdate struct {
	Make         *string
	Model        *string
	LicensePlate *string
	Year         *int
	Color        *string
	Mileage      *int
	Transmission *string
	FuelType     *string
	Seats        *int
	DailyRate    *float64
	Status       *CarStatus
	Description  *string
	ImageURL     *string
	AgencyID     *primitive.ObjectID
}

func (u CarUpdate) SetDoc(now time.Time) bson.M {
	set := bson.M{"updated_at": now}
	if u.Make != nil {
		set["make"] = *u.Make
	}
	if u.Model != nil {
		set["model"] = *u.Model
	}
	if u.LicensePlate != nil {
		set["license_plate"] = *u.LicensePlate
	}
	if u.Year != nil {
		set["year"] = *u.Year
	}
	if u.Color != nil {
		set["color"] = *u.Color
	}
	if u.Mileage != nil {
		set["mileage"] = *u.Mileage
	}
	if u.Transmission != nil {
		set["transmission"] = *u.Transmission
	}
	if u.FuelType != nil {
		set["fuel_type"] = *u.FuelType
	}
	if u.Seats != nil {
		set["seats"] = *u.Seats
	}
	if u.DailyRate != nil {
		set["daily_rate"] = *u.DailyRate
	}
	if u.Status != nil {
		set["status"] = *u.Status
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.ImageURL != nil {
		set["image_url"] = *u.ImageURL
	}
	if u.AgencyID != nil {
		set["agency_id"] = *u.AgencyID
	}
	return bson.M{"$set": set}
}

type CarQuery struct {
	Status   *CarStatus
	AgencyID *primitive.ObjectID
	Pagination
}

func (q CarQuery) Filter() bson.M {
	filter := bson.M{}
	if q.Status != nil {
		filter["status"] = *q.Status
	}
	if q.AgencyID != nil {
		filter["agency_id"] = *q.AgencyID
	}
	return filter
}

// CarCount is only filled for back-office listings.
type CarCount struct {
	Bookings int64 `json:"bookings"`
	Reviews  int64 `json:"reviews"`
}

// CarView is a car with its agency resolved for display.
type CarView struct {
	*Car
	Agency *AgencySummary `json:"agency,omitempty"`
	Count  *CarCount      `json:"_count,omitempty"`
}

func NewCarView(car *Car, agency *Agency) *CarView {
	view := &CarView{Car: car}
	if agency != nil {
		view.Agency = agency.Summary()
	}
	return view
}
