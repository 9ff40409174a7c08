package models

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Agency struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name      string             `bson:"name" json:"name" validate:"required"`
	Address   string             `bson:"address" json:"address" validate:"required"`
	City      string             `bson:"city" json:"city" validate:"required"`
	Country   string             `bson:"country" json:"country" validate:"required"`
	Phone     string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email     string             `bson:"email,omitempty" json:"email,omitempty" validate:"omitempty,email"`
	Latitude  *float64           `bson:"latitude,omitempty" json:"latitude,omitempty" validate:"omitempty,latitude"`
	Longitude *float64           `bson:"longitude,omitempty" json:"longitude,omitempty" validate:"omitempty,longitude"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}

func (a *Agency) BeforeCreate() error {
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	return nil
}

func (a *Agency) Sanitize() {
	a.Name = strings.TrimSpace(a.Name)
	a.Address = strings.TrimSpace(a.Address)
	a.City = strings.TrimSpace(a.City)
	a.Country = strings.TrimSpace(a.Country)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Email = strings.ToLower(strings.TrimSpace(a.Email))
}

func (a *Agency) Summary() *AgencySummary {
	return &AgencySummary{
		ID:      a.ID,
		Name:    a.Name,
		City:    a.City,
		Country: a.Country,
	}
}

type AgencyCount struct {
	Cars int64 `json:"cars"`
}

type AgencyView struct {
	*Agency
	Count AgencyCount `json:"_count"`
}

type AgencyQuery struct {
	City    *string
	Country *string
	Pagination
}

func (q AgencyQuery) Filter() bson.M {
	filter := bson.M{}
	if q.City != nil {
		filter["city"] = *q.City
	}
	if q.Country != nil {
		filter["country"] = *q.Country
	}
	return filter
}

type AgencyRepo interface {
	CreateAgency(ctx context.Context, agency *Agency) (*Agency, error)
	GetAgencyByID(ctx context.Context, id primitive.ObjectID) (*Agency, error)
	GetAgenciesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Agency, error)
	ListAgencies(ctx context.Context, q AgencyQuery) ([]*Agency, int64, error)
}

func (mdb *MongodbRepo) CreateAgency(ctx context.Context, agency *Agency) (*Agency, error) {
	if err := agency.BeforeCreate(); err != nil {
		return nil, fmt.Errorf("failed to prepare agency for creation: %w", err)
	}
	col, err := mdb.GetCollection(ctx, AgenciesColName)
	if err != nil {
		return nil, err
	}
	if _, err := col.InsertOne(ctx, agency); err != nil {
		return nil, storeError("insert agency", err)
	}
	return agency, nil
}

func (mdb *MongodbRepo) GetAgencyByID(ctx context.Context, id primitive.ObjectID) (*Agency, error) {
	col, err := mdb.GetCollection(ctx, AgenciesColName)
	if err != nil {
		return nil, err
	}
	var agency Agency
	err = col.FindOne(ctx, bson.M{"_id": id}).Decode(&agency)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: agency not found", ErrNotFound)
	}
	if err != nil {
		return nil, storeError("find agency", err)
	}
	return &agency, nil
}

func (mdb *MongodbRepo) GetAgenciesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*Agency, error) {
	out := make(map[primitive.ObjectID]*Agency, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	col, err := mdb.GetCollection(ctx, AgenciesColName)
	if err != nil {
		return nil, err
	}
	cursor, err := col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, storeError("find agencies", err)
	}
	defer cursor.Close(ctx)

	var agencies []*Agency
	if err := cursor.All(ctx, &agencies); err != nil {
		return nil, storeError("decode agencies", err)
	}
	for _, a := range agencies {
		out[a.ID] = a
	}
	return out, nil
}

func (mdb *MongodbRepo) ListAgencies(ctx context.Context, q AgencyQuery) ([]*Agency, int64, error) {
	col, err := mdb.GetCollection(ctx, AgenciesColName)
	if err != nil {
		return nil, 0, err
	}
	filter := q.Filter()

	total, err := col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, storeError("count agencies", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(q.Skip()).
		SetLimit(int64(q.Limit))

	cursor, err := col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, storeError("find agencies", err)
	}
	defer cursor.Close(ctx)

	agencies := make([]*Agency, 0, q.Limit)
	if err := cursor.All(ctx, &agencies); err != nil {
		return nil, 0, storeError("decode agencies", err)
	}
	return agencies, total, nil
}
