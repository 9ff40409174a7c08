package models

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UserRepo interface {
	CreateUser(ctx context.Context, user *User) (*User, error)
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*User, error)
	ListUsers(ctx context.Context, q UserQuery) ([]*User, int64, error)
}

func (mdb *MongodbRepo) CreateUser(ctx context.Context, user *User) (*User, error) {
	if err := user.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare user for creation: %w", err)
	}
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, err
	}
	if _, err := col.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: user with this email", ErrDuplicate)
		}
		return nil, storeError("insert user", err)
	}
	return user, nil
}

func (mdb *MongodbRepo) findOneUser(ctx context.Context, filter bson.M) (*User, error) {
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, err
	}
	var user User
	err = col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: user not found", ErrNotFound)
	}
	if err != nil {
		return nil, storeError("find user", err)
	}
	return &user, nil
}

func (mdb *MongodbRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*User, error) {
	return mdb.findOneUser(ctx, bson.M{"_id": id})
}

func (mdb *MongodbRepo) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return mdb.findOneUser(ctx, bson.M{"email": email})
}

func (mdb *MongodbRepo) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*User, error) {
	out := make(map[primitive.ObjectID]*User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetProjection(bson.M{"password": 0})
	cursor, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, storeError("find users", err)
	}
	defer cursor.Close(ctx)

	var users []*User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, storeError("decode users", err)
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}

func (mdb *MongodbRepo) ListUsers(ctx context.Context, q UserQuery) ([]*User, int64, error) {
	col, err := mdb.GetCollection(ctx, UsersColName)
	if err != nil {
		return nil, 0, err
	}
	filter := q.Filter()

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeError("count users", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit)).
		SetProjection(bson.M{"password": 0})

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, storeError("find users", err)
	}
	defer cursor.Close(ctx)

	users := make([]*User, 0, q.Limit)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, storeError("decode users", err)
	}
	return users, total, nil
}
