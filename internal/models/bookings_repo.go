package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BookingRepo interface {
	CreateBooking(ctx context.Context, booking *Booking) (*Booking, error)
	GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error)
	GetUserBooking(ctx context.Context, id, userID primitive.ObjectID) (*Booking, error)
	ListBookings(ctx context.Context, q BookingQuery) ([]*Booking, int64, error)
	FindOverlappingBooking(ctx context.Context, carID primitive.ObjectID, r DateRange, mode BoundaryMode) (*Booking, error)
	// UpdateBooking applies upd only while the booking is still in expected
	// status; otherwise it returns ErrNotFound.
	UpdateBooking(ctx context.Context, id primitive.ObjectID, expected BookingStatus, upd BookingUpdate) (*Booking, error)
	DeleteBooking(ctx context.Context, id primitive.ObjectID) error
	CountBookingsByUser(ctx context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
	CountBookingsByCar(ctx context.Context, carIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
}

func (mdb *MongodbRepo) CreateBooking(ctx context.Context, booking *Booking) (*Booking, error) {
	if err := booking.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare booking for creation: %w", err)
	}
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, err
	}
	if _, err := col.InsertOne(ctx, booking); err != nil {
		return nil, storeError("insert booking", err)
	}
	return booking, nil
}

func (mdb *MongodbRepo) findOneBooking(ctx context.Context, filter bson.M) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, err
	}
	var booking Booking
	err = col.FindOne(ctx, filter).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: booking not found", ErrNotFound)
	}
	if err != nil {
		return nil, storeError("find booking", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*Booking, error) {
	return mdb.findOneBooking(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) GetUserBooking(ctx context.Context, id, userID primitive.ObjectID) (*Booking, error) {
	return mdb.findOneBooking(ctx, bson.M{"_id": id, "user_id": userID})
}

func (mdb *MongodbRepo) ListBookings(ctx context.Context, q BookingQuery) ([]*Booking, int64, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, 0, err
	}
	filter := q.Filter()

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeError("count bookings", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, storeError("find bookings", err)
	}
	defer cursor.Close(ctx)

	bookings := make([]*Booking, 0, q.Limit)
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, 0, storeError("decode bookings", err)
	}
	return bookings, total, nil
}

// FindOverlappingBooking returns the first clashing booking or nil when the
// range is free.
func (mdb *MongodbRepo) FindOverlappingBooking(ctx context.Context, carID primitive.ObjectID, r DateRange, mode BoundaryMode) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, err
	}
	var booking Booking
	err = col.FindOne(ctx, OverlapFilter(carID, r, mode)).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, storeError("find overlapping booking", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) UpdateBooking(ctx context.Context, id primitive.ObjectID, expected BookingStatus, upd BookingUpdate) (*Booking, error) {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": id, "status": expected}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var booking Booking
	err = col.FindOneAndUpdate(ctx, filter, upd.SetDoc(time.Now().UTC()), opts).Decode(&booking)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: booking not found in status %s", ErrNotFound, expected)
	}
	if err != nil {
		return nil, storeError("update booking", err)
	}
	return &booking, nil
}

func (mdb *MongodbRepo) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, BookingsColName)
	if err != nil {
		return err
	}
	if _, err := col.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return storeError("delete booking", err)
	}
	return nil
}

func (mdb *MongodbRepo) CountBookingsByUser(ctx context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	return mdb.countBy(ctx, BookingsColName, "user_id", userIDs)
}

func (mdb *MongodbRepo) CountBookingsByCar(ctx context.Context, carIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	return mdb.countBy(ctx, BookingsColName, "car_id", carIDs)
}
