package models

import (
	"context"
	"fmt"
	"math"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewRepo interface {
	CreateReview(ctx context.Context, review *Review) (*Review, error)
	ListCarReviews(ctx context.Context, carID primitive.ObjectID, p Pagination) ([]*Review, int64, error)
	CarRatingSummary(ctx context.Context, carID primitive.ObjectID) (RatingSummary, error)
	// DeleteReview removes the review; a non-nil userID limits it to that author.
	DeleteReview(ctx context.Context, id primitive.ObjectID, userID *primitive.ObjectID) error
	CountReviewsByCar(ctx context.Context, carIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error)
}

func (mdb *MongodbRepo) CreateReview(ctx context.Context, review *Review) (*Review, error) {
	if err := review.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare review for creation: %w", err)
	}
	col, err := mdb.GetCollection(ctx, ReviewsColName)
	if err != nil {
		return nil, err
	}
	if _, err := col.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: you have already reviewed this car", ErrDuplicate)
		}
		return nil, storeError("insert review", err)
	}
	return review, nil
}

func (mdb *MongodbRepo) ListCarReviews(ctx context.Context, carID primitive.ObjectID, p Pagination) ([]*Review, int64, error) {
	col, err := mdb.GetCollection(ctx, ReviewsColName)
	if err != nil {
		return nil, 0, err
	}
	filter := bson.M{"car_id": carID}

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeError("count reviews", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, storeError("find reviews", err)
	}
	defer cursor.Close(ctx)

	reviews := make([]*Review, 0, p.Limit)
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, 0, storeError("decode reviews", err)
	}
	return reviews, total, nil
}

func (mdb *MongodbRepo) CarRatingSummary(ctx context.Context, carID primitive.ObjectID) (RatingSummary, error) {
	col, err := mdb.GetCollection(ctx, ReviewsColName)
	if err != nil {
		return RatingSummary{}, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"car_id": carID}}},
		{{Key: "$group", Value: bson.M{
			"_id":     nil,
			"average": bson.M{"$avg": "$rating"},
			"count":   bson.M{"$sum": 1},
		}}},
	}
	cursor, err := col.Aggregate(ctx, pipeline)
	if err != nil {
		return RatingSummary{}, storeError("aggregate ratings", err)
	}
	defer cursor.Close(ctx)

	var rows []RatingSummary
	if err := cursor.All(ctx, &rows); err != nil {
		return RatingSummary{}, storeError("decode ratings", err)
	}
	if len(rows) == 0 {
		return RatingSummary{}, nil
	}
	summary := rows[0]
	summary.Average = math.Round(summary.Average*10) / 10
	return summary, nil
}

func (mdb *MongodbRepo) DeleteReview(ctx context.Context, id primitive.ObjectID, userID *primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, ReviewsColName)
	if err != nil {
		return err
	}
	filter := bson.M{"_id": id}
	if userID != nil {
		filter["user_id"] = *userID
	}
	res, err := col.DeleteOne(ctx, filter)
	if err != nil {
		return storeError("delete review", err)
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("%w: review not found", ErrNotFound)
	}
	return nil
}

func (mdb *MongodbRepo) CountReviewsByCar(ctx context.Context, carIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	return mdb.countBy(ctx, ReviewsColName, "car_id", carIDs)
}
