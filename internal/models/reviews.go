package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const MaxReviewComment = 2000

// Review is a customer's rating of a car. UserName is copied from the account
// when the review is written so listings need no user lookup.
type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"user_id" json:"userId"`
	UserName  string             `bson:"user_name" json:"userName"`
	CarID     primitive.ObjectID `bson:"car_id" json:"carId"`
	Rating    int                `bson:"rating" json:"rating" validate:"required,min=1,max=5"`
	Comment   string             `bson:"comment,omitempty" json:"comment,omitempty" validate:"max=2000"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (r *Review) BeforeCreate() error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	return nil
}

func (r *Review) Sanitize() {
	r.Comment = strings.TrimSpace(r.Comment)
}

// RatingSummary aggregates the reviews of one car.
type RatingSummary struct {
	Average float64 `bson:"average" json:"average"`
	Count   int64   `bson:"count" json:"count"`
}
