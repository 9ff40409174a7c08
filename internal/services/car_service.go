package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshua-takyi/carhire/internal/helpers"
	"github.com/joshua-takyi/carhire/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImageStore hosts car images. Delete is best effort.
type ImageStore interface {
	Upload(ctx context.Context, src, folder string) (helpers.UploadedImage, error)
	Delete(ctx context.Context, publicIDs ...string)
}

type CarService struct {
	carsRepo     models.CarRepo
	agenciesRepo models.AgencyRepo
	bookingsRepo models.BookingRepo
	reviewsRepo  models.ReviewRepo
	images       ImageStore
	logger       *slog.Logger
}

// NewCarService builds the catalog service. images may be nil, in which case
// image URLs are stored as given.
func NewCarService(
	carsRepo models.CarRepo,
	agenciesRepo models.AgencyRepo,
	bookingsRepo models.BookingRepo,
	reviewsRepo models.ReviewRepo,
	images ImageStore,
	logger *slog.Logger,
) *CarService {
	return &CarService{
		carsRepo:     carsRepo,
		agenciesRepo: agenciesRepo,
		bookingsRepo: bookingsRepo,
		reviewsRepo:  reviewsRepo,
		images:       images,
		logger:       logger,
	}
}

func (cs *CarService) CreateCar(ctx context.Context, car *models.Car) (*models.CarView, error) {
	car.Sanitize()
	if car.Status == "" {
		car.Status = models.CarAvailable
	}
	if _, err := models.ParseCarStatus(string(car.Status)); err != nil {
		return nil, err
	}
	if err := models.Validate.Struct(car); err != nil {
		return nil, fmt.Errorf("%w: invalid car data provided: %v", models.ErrValidation, err)
	}

	agency, err := cs.agenciesRepo.GetAgencyByID(ctx, car.AgencyID)
	if err != nil {
		return nil, err
	}

	var uploaded string
	if car.ImageURL != "" {
		img, err := cs.uploadImage(ctx, car.ImageURL)
		if err != nil {
			return nil, err
		}
		car.ImageURL = img.URL
		uploaded = img.PublicID
	}

	now := time.Now().UTC()
	car.ID = primitive.NilObjectID
	car.BookingVersion = 0
	car.CreatedAt = now
	car.UpdatedAt = now

	created, err := cs.carsRepo.CreateCar(ctx, car)
	if err != nil {
		cs.discardImage(ctx, uploaded)
		return nil, err
	}
	cs.logger.Info("car created", "car_id", created.ID.Hex(), "agency_id", agency.ID.Hex())
	return models.NewCarView(created, agency), nil
}

// uploadImage mirrors the image to the image store when one is configured.
func (cs *CarService) uploadImage(ctx context.Context, src string) (helpers.UploadedImage, error) {
	if cs.images == nil {
		return helpers.UploadedImage{URL: src}, nil
	}
	img, err := cs.images.Upload(ctx, src, helpers.CarsFolder)
	if err != nil {
		return helpers.UploadedImage{}, fmt.Errorf("%w: %v", models.ErrInternal, err)
	}
	return img, nil
}

// discardImage removes an image uploaded for a write that then failed.
func (cs *CarService) discardImage(ctx context.Context, publicID string) {
	if publicID == "" || cs.images == nil {
		return
	}
	cs.logger.Info("removing image of failed car write", "public_id", publicID)
	cs.images.Delete(context.WithoutCancel(ctx), publicID)
}

func (cs *CarService) GetCar(ctx context.Context, id primitive.ObjectID) (*models.CarView, error) {
	car, err := cs.carsRepo.GetCarByID(ctx, id)
	if err != nil {
		return nil, err
	}
	agencies, err := cs.agenciesRepo.GetAgenciesByIDs(ctx, []primitive.ObjectID{car.AgencyID})
	if err != nil {
		return nil, err
	}
	return models.NewCarView(car, agencies[car.AgencyID]), nil
}

func (cs *CarService) ListCars(ctx context.Context, q models.CarQuery) ([]*models.CarView, int64, error) {
	q.Pagination = q.Normalize(12)
	cars, total, err := cs.carsRepo.ListCars(ctx, q)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]primitive.ObjectID, 0, len(cars))
	for _, c := range cars {
		ids = append(ids, c.AgencyID)
	}
	agencies, err := cs.agenciesRepo.GetAgenciesByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	views := make([]*models.CarView, 0, len(cars))
	for _, c := range cars {
		views = append(views, models.NewCarView(c, agencies[c.AgencyID]))
	}
	return views, total, nil
}

// AdminListCars is ListCars with booking and review counts per car.
func (cs *CarService) AdminListCars(ctx context.Context, q models.CarQuery) ([]*models.CarView, int64, error) {
	views, total, err := cs.ListCars(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	ids := make([]primitive.ObjectID, 0, len(views))
	for _, v := range views {
		ids = append(ids, v.ID)
	}
	bookings, err := cs.bookingsRepo.CountBookingsByCar(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	reviews, err := cs.reviewsRepo.CountReviewsByCar(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, v := range views {
		v.Count = &models.CarCount{Bookings: bookings[v.ID], Reviews: reviews[v.ID]}
	}
	return views, total, nil
}

func (cs *CarService) UpdateCar(ctx context.Context, id primitive.ObjectID, upd models.CarUpdate) (*models.CarView, error) {
	if upd.LicensePlate != nil {
		v := strings.ToUpper(strings.TrimSpace(*upd.LicensePlate))
		if v == "" {
			return nil, fmt.Errorf("%w: license plate must not be empty", models.ErrValidation)
		}
		upd.LicensePlate = &v
	}
	if upd.DailyRate != nil && *upd.DailyRate <= 0 {
		return nil, fmt.Errorf("%w: daily rate must be positive", models.ErrValidation)
	}
	if upd.Seats != nil && *upd.Seats <= 0 {
		return nil, fmt.Errorf("%w: seats must be positive", models.ErrValidation)
	}
	if upd.Mileage != nil && *upd.Mileage < 0 {
		return nil, fmt.Errorf("%w: mileage must not be negative", models.ErrValidation)
	}
	if upd.Status != nil {
		status, err := models.ParseCarStatus(string(*upd.Status))
		if err != nil {
			return nil, err
		}
		upd.Status = &status
	}
	if upd.Transmission != nil {
		v := strings.ToUpper(strings.TrimSpace(*upd.Transmission))
		if err := models.Validate.Var(v, "oneof=MANUAL AUTOMATIC SEMI_AUTOMATIC"); err != nil {
			return nil, fmt.Errorf("%w: invalid transmission %q", models.ErrValidation, *upd.Transmission)
		}
		upd.Transmission = &v
	}
	if upd.FuelType != nil {
		v := strings.ToUpper(strings.TrimSpace(*upd.FuelType))
		if err := models.Validate.Var(v, "oneof=GASOLINE DIESEL HYBRID ELECTRIC"); err != nil {
			return nil, fmt.Errorf("%w: invalid fuel type %q", models.ErrValidation, *upd.FuelType)
		}
		upd.FuelType = &v
	}
	if upd.AgencyID != nil {
		if _, err := cs.agenciesRepo.GetAgencyByID(ctx, *upd.AgencyID); err != nil {
			return nil, err
		}
	}
	var uploaded string
	if upd.ImageURL != nil && *upd.ImageURL != "" {
		img, err := cs.uploadImage(ctx, *upd.ImageURL)
		if err != nil {
			return nil, err
		}
		upd.ImageURL = &img.URL
		uploaded = img.PublicID
	}

	car, err := cs.carsRepo.UpdateCar(ctx, id, upd)
	if err != nil {
		cs.discardImage(ctx, uploaded)
		return nil, err
	}
	cs.logger.Info("car updated", "car_id", car.ID.Hex(), "status", car.Status)
	return cs.GetCar(ctx, car.ID)
}

// DeleteCar removes the car only; its bookings stay for the audit trail.
func (cs *CarService) DeleteCar(ctx context.Context, id primitive.ObjectID) error {
	if err := cs.carsRepo.DeleteCar(ctx, id); err != nil {
		return err
	}
	cs.logger.Info("car deleted", "car_id", id.Hex())
	return nil
}
