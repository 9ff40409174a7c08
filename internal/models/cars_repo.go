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

type CarRepo interface {
	CreateCar(ctx context.Context, car *Car) (*Car, error)
	GetCarByID(ctx context.Context, id primitive.ObjectID) (*Car, error)
	GetCarsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Car, error)
	ListCars(ctx context.Context, q CarQuery) ([]*Car, int64, error)
	UpdateCar(ctx context.Context, id primitive.ObjectID, upd CarUpdate) (*Car, error)
	DeleteCar(ctx context.Context, id primitive.ObjectID) error
	// AdvanceBookingVersion bumps the car's booking version only if it still
	// equals version. It reports false when another writer got there first.
	AdvanceBookingVersion(ctx context.Context, id primitive.ObjectID, version int64) (bool, error)
	// SwapCarStatus moves the car from one status to another and reports
	// false when the car was not in from.
	SwapCarStatus(ctx context.Context, id primitive.ObjectID, from, to CarStatus) (bool, error)
	CountCarsByAgency(ctx context.Context, agencyIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
}

func (mdb *MongodbRepo) CreateCar(ctx context.Context, car *Car) (*Car, error) {
	if err := car.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare car for creation: %w", err)
	}
	col, err := mdb.GetCollection(ctx, CarsColName)
	if err != nil {
		return nil, err
	}
	if _, err := col.InsertOne(ctx, car); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: car with license plate %s", ErrDuplicate, car.LicensePlate)
		}
		return nil, storeError("insert car", err)
	}
	return car, nil
}

func (mdb *MongodbRepo) GetCarByID(ctx context.Context, id primitive.ObjectID) (*Car, error) {
	col, err := mdb.GetCollection(ctx, CarsColName)
	if err != nil {
		return nil, err
	}
	var car Car
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&car)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: car not found", ErrNotFound)
	}
	if err != nil {
		return nil, storeError("find car", err)
	}
	return &car, nil
}

func (mdb *MongodbRepo) GetCarsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Car, error) {
	out := make(map[primitive.ObjectID]*Car, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	col, err := mdb.GetCollection(ctx, CarsColName)
	if err != nil {
		return nil, err
	}
	cursor, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeError("find cars", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var car Car
		if err := cursor.Decode(&car); err != nil {
			return nil, storeError("decode car", err)
		}
		out[car.ID] = &car
	}
	if err := cursor.Err(); err != nil {
		return nil, storeError("cars cursor", err)
	}
	return out, nil
}

func (mdb *MongodbRepo) ListCars(ctx context.Context, q CarQuery) ([]*Car, int64, error) {
	col, err := mdb.GetCollection(ctx, CarsColName)
	if err != nil {
		return nil, 0, err
	}
	filter := q.Filter()

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeError("count cars", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, storeError("find cars", err)
	}
	defer cursor.Close(ctx)

	cars := make([]*Car, 0, q.Limit)
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, 0, storeError("decode cars", err)
	}
	return cars, total, nil
}

func (mdb *MongodbRepo) UpdateCar(ctx context.Context, id primitive.ObjectID, upd CarUpdate) (*Car, error) {
	col, err := mdb.GetCollection(ctx, CarsColName)
	if err != nil {
		return nil, err
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var car Car
	err = col.FindOneAndUpdate(ctx, bson.M{"_id": id}, upd.SetDoc(time.Now().UTC()), opts).Decode(&car)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: car not found", ErrNotFound)
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, fmt.Errorf("%w: another car already has this license plate", ErrDuplicate)
	}
	if err != nil {
		return nil, storeError("update car", err)
	}
	return &car, nil
}

func (mdb *MongodbRepo) DeleteCar(ctx context.Context, id primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, CarsColName)
	if err != nil {
		return err
	}
	res, err := col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return storeError("delete car", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: car not found", ErrNotFound)
	}
	return nil
}

func (mdb *MongodbRepo) AdvanceBookingVersion(ctx context.Context, id primitive.ObjectID, version int64) (bool, error) {
	col, err := mdb.GetCollection(ctx, CarsColName)
	if err != nil {
		return false, err
	}
	filter := bson.M{"_id": id}
	// Cars written before the fence existed carry no field at all.
	if version == 0 {
		filter["$or"] = bson.A{
			bson.M{"booking_version": 0},
			bson.M{"booking_version": bson.M{"$exists": false}},
		}
	} else {
		filter["booking_version"] = version
	}
	res, err := col.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"booking_version": 1}})
	if err != nil {
		return false, storeError("advance booking version", err)
	}
	return res.ModifiedCount == 1, nil
}

func (mdb *MongodbRepo) SwapCarStatus(ctx context.Context, id primitive.ObjectID, from, to CarStatus) (bool, error) {
	col, err := mdb.GetCollection(ctx, CarsColName)
	if err != nil {
		return false, err
	}
	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now().UTC()}}
	res, err := col.UpdateOne(ctx, bson.M{"_id": id, "status": from}, update)
	if err != nil {
		return false, storeError("swap car status", err)
	}
	return res.ModifiedCount == 1, nil
}

func (mdb *MongodbRepo) CountCarsByAgency(ctx context.Context, agencyIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	return mdb.countBy(ctx, CarsColName, "agency_id", agencyIDs)
}
