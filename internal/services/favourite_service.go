package services

import (
	"context"
	"fmt"

	"github.com/joshua-takyi/carhire/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type FavouriteService struct {
	favouritesRepo models.FavouriteRepo
	carsRepo       models.CarRepo
}

func NewFavouriteService(favouritesRepo models.FavouriteRepo, carsRepo models.CarRepo) *FavouriteService {
	return &FavouriteService{
		favouritesRepo: favouritesRepo,
		carsRepo:       carsRepo,
	}
}

// AddFavouriteCar saves a car for the user. Saving it twice only refreshes
// the time it was added.
func (fs *FavouriteService) AddFavouriteCar(ctx context.Context, userID, carID primitive.ObjectID) error {
	if userID.IsZero() {
		return fmt.Errorf("%w: invalid user ID", models.ErrValidation)
	}
	if _, err := fs.carsRepo.GetCarByID(ctx, carID); err != nil {
		return err
	}
	_, err := fs.favouritesRepo.AddToFavourites(ctx, userID, carID)
	return err
}

func (fs *FavouriteService) RemoveFavouriteCar(ctx context.Context, userID, carID primitive.ObjectID) error {
	if userID.IsZero() {
		return fmt.Errorf("%w: invalid user ID", models.ErrValidation)
	}
	return fs.favouritesRepo.RemoveFromFavourites(ctx, userID, carID)
}

// ListFavouriteCars returns the saved cars that still exist, newest first.
func (fs *FavouriteService) ListFavouriteCars(ctx context.Context, userID primitive.ObjectID) ([]*models.Car, error) {
	fav, err := fs.favouritesRepo.GetFavourites(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := fav.CarIDs()
	if len(ids) == 0 {
		return []*models.Car{}, nil
	}
	cars, err := fs.carsRepo.GetCarsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*models.Car, 0, len(ids))
	for _, id := range ids {
		if car, ok := cars[id]; ok {
			out = append(out, car)
		}
	}
	return out, nil
}
