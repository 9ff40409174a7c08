package models

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type FavouriteItem struct {
	CarID   primitive.ObjectID `bson:"car_id" json:"carId"`
	AddedAt time.Time          `bson:"added_at" json:"addedAt"`
}

// Favourite is the single saved-cars document of a user, keyed by car id hex.
type Favourite struct {
	ID        primitive.ObjectID       `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID       `bson:"user_id" json:"userId" validate:"required"`
	Items     map[string]FavouriteItem `bson:"items" json:"items"`
	CreatedAt time.Time                `bson:"created_at,omitempty" json:"createdAt,omitempty"`
	UpdatedAt time.Time                `bson:"updated_at,omitempty" json:"updatedAt,omitempty"`
}

// CarIDs returns the saved cars, most recently added first.
func (f *Favourite) CarIDs() []primitive.ObjectID {
	items := make([]FavouriteItem, 0, len(f.Items))
	for _, item := range f.Items {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].AddedAt.After(items[j].AddedAt)
	})
	ids := make([]primitive.ObjectID, len(items))
	for i, item := range items {
		ids[i] = item.CarID
	}
	return ids
}

type FavouriteRepo interface {
	AddToFavourites(ctx context.Context, userID, carID primitive.ObjectID) (*Favourite, error)
	RemoveFromFavourites(ctx context.Context, userID, carID primitive.ObjectID) error
	// GetFavourites returns an empty document when the user saved nothing yet.
	GetFavourites(ctx context.Context, userID primitive.ObjectID) (*Favourite, error)
}

func (mdb *MongodbRepo) AddToFavourites(ctx context.Context, userID, carID primitive.ObjectID) (*Favourite, error) {
	col, err := mdb.GetCollection(ctx, FavouritesColName)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	filter := bson.M{"user_id": userID}

	update := bson.M{
		"$set": bson.M{
			"updated_at":                         now,
			fmt.Sprintf("items.%s", carID.Hex()): FavouriteItem{CarID: carID, AddedAt: now},
		},
		"$setOnInsert": bson.M{
			"user_id":    userID,
			"created_at": now,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var result Favourite
	if err := col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&result); err != nil {
		return nil, storeError("upsert favourite", err)
	}
	return &result, nil
}

func (mdb *MongodbRepo) RemoveFromFavourites(ctx context.Context, userID, carID primitive.ObjectID) error {
	col, err := mdb.GetCollection(ctx, FavouritesColName)
	if err != nil {
		return err
	}

	filter := bson.M{"user_id": userID}
	update := bson.M{
		"$unset": bson.M{
			fmt.Sprintf("items.%s", carID.Hex()): "",
		},
		"$set": bson.M{
			"updated_at": time.Now().UTC(),
		},
	}

	if _, err := col.UpdateOne(ctx, filter, update); err != nil {
		return storeError("remove favourite", err)
	}
	return nil
}

func (mdb *MongodbRepo) GetFavourites(ctx context.Context, userID primitive.ObjectID) (*Favourite, error) {
	col, err := mdb.GetCollection(ctx, FavouritesColName)
	if err != nil {
		return nil, err
	}
	var fav Favourite
	err = col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&fav)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &Favourite{UserID: userID, Items: map[string]FavouriteItem{}}, nil
	}
	if err != nil {
		return nil, storeError("find favourites", err)
	}
	return &fav, nil
}
