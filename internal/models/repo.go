package models

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var Validate = validator.New()

const (
	UsersColName      = "users"
	AgenciesColName   = "agencies"
	CarsColName       = "cars"
	BookingsColName   = "bookings"
	ReviewsColName    = "reviews"
	FavouritesColName = "favourites"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
	// MaxPage keeps (Page-1)*Limit far from overflowing the skip value.
	MaxPage = 1_000_000
)

// Pagination is a 1-based page window shared by every list query.
type Pagination struct {
	Page  int
	Limit int
}

// Normalize clamps the window to sane bounds, using def when no limit was given.
func (p Pagination) Normalize(def int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit <= 0 {
		p.Limit = def
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

func (p Pagination) Skip() int64 {
	if p.Page < 1 {
		return 0
	}
	return int64(p.Page-1) * int64(p.Limit)
}

// Pages returns the number of pages needed to hold total items.
func (p Pagination) Pages(total int64) int {
	if p.Limit <= 0 {
		return 0
	}
	return int((total + int64(p.Limit) - 1) / int64(p.Limit))
}

// MongodbRepo is the document store behind every repository interface in this
// package. The client is owned by the caller.
type MongodbRepo struct {
	mongodbClient *mongo.Client
	dbName        string
}

func MongodbNewRepo(mongodbClient *mongo.Client, dbName string) *MongodbRepo {
	return &MongodbRepo{
		mongodbClient: mongodbClient,
		dbName:        dbName,
	}
}

func (mdb *MongodbRepo) GetCollection(ctx context.Context, colName string) (*mongo.Collection, error) {
	if mdb.mongodbClient == nil {
		return nil, fmt.Errorf("%w: mongodb client is not initialized", ErrInternal)
	}
	return mdb.mongodbClient.Database(mdb.dbName).Collection(colName), nil
}

// countBy counts the documents of colName per value of field, for the given ids.
// Ids without documents are absent from the result.
func (mdb *MongodbRepo) countBy(ctx context.Context, colName, field string, ids []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	out := make(map[primitive.ObjectID]int64, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	col, err := mdb.GetCollection(ctx, colName)
	if err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{field: bson.M{"$in": ids}}}},
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, storeError("count "+colName, err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID    primitive.ObjectID `bson:"_id"`
		Count int64              `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, storeError("decode "+colName+" counts", err)
	}
	for _, r := range rows {
		out[r.ID] = r.Count
	}
	return out, nil
}

// EnsureIndexes creates the indexes the repositories rely on. It is safe to run
// on every start.
func (mdb *MongodbRepo) EnsureIndexes(ctx context.Context) error {
	specs := map[string][]mongo.IndexModel{
		UsersColName: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("email_unique"),
			},
		},
		CarsColName: {
			{
				Keys:    bson.D{{Key: "license_plate", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("license_plate_unique"),
			},
			{
				Keys:    bson.D{{Key: "agency_id", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("agency_status"),
			},
		},
		BookingsColName: {
			// Serves the overlap lookup.
			{
				Keys: bson.D{
					{Key: "car_id", Value: 1},
					{Key: "status", Value: 1},
					{Key: "start_date", Value: 1},
					{Key: "end_date", Value: 1},
				},
				Options: options.Index().SetName("car_status_range"),
			},
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("user_created"),
			},
		},
		ReviewsColName: {
			{
				Keys:    bson.D{{Key: "car_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("car_created"),
			},
			// One review per customer and car.
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "car_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("user_car_unique"),
			},
		},
		FavouritesColName: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("user_unique"),
			},
		},
	}

	for colName, idx := range specs {
		col, err := mdb.GetCollection(ctx, colName)
		if err != nil {
			return err
		}
		if _, err := col.Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("error creating indexes on %s: %v", colName, err)
		}
	}
	return nil
}
