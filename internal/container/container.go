package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joshua-takyi/carhire/internal/config"
	"github.com/joshua-takyi/carhire/internal/helpers"
	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/joshua-takyi/carhire/internal/services"
)

// Stores groups the repositories the services run on.
type Stores struct {
	Users      models.UserRepo
	Agencies   models.AgencyRepo
	Cars       models.CarRepo
	Bookings   models.BookingRepo
	Reviews    models.ReviewRepo
	Favourites models.FavouriteRepo
}

// MongoStores serves every repository from the same Mongo repo.
func MongoStores(repo *models.MongodbRepo) Stores {
	return Stores{
		Users:      repo,
		Agencies:   repo,
		Cars:       repo,
		Bookings:   repo,
		Reviews:    repo,
		Favourites: repo,
	}
}

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *slog.Logger
	Cloudinary *cloudinary.Cloudinary
	Tokens     *helpers.TokenValidator

	UserService      *services.UserService
	AgencyService    *services.AgencyService
	CarService       *services.CarService
	BookingService   *services.BookingService
	ReviewService    *services.ReviewService
	FavouriteService *services.FavouriteService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	cfg *config.Config,
	logger *slog.Logger,
	stores Stores,
	cld *cloudinary.Cloudinary,
	tokens *helpers.TokenValidator,
) *Container {
	availability := services.NewAvailabilityChecker(stores.Bookings, cfg.BookingBoundary)

	var images services.ImageStore
	if cld != nil {
		images = helpers.NewCloudinaryImages(cld)
	}

	return &Container{
		Config:        cfg,
		Logger:        logger,
		Cloudinary:    cld,
		Tokens:        tokens,
		UserService:   services.NewUserService(stores.Users, stores.Bookings, []byte(cfg.JWTSecret), cfg.JWTTTL, logger),
		AgencyService: services.NewAgencyService(stores.Agencies, stores.Cars),
		CarService:    services.NewCarService(stores.Cars, stores.Agencies, stores.Bookings, stores.Reviews, images, logger),
		BookingService: services.NewBookingService(
			stores.Bookings,
			stores.Cars,
			stores.Agencies,
			stores.Users,
			availability,
			cfg.BookingPolicy(),
			logger,
		),
		ReviewService:    services.NewReviewService(stores.Reviews, stores.Cars, stores.Bookings, stores.Users, logger),
		FavouriteService: services.NewFavouriteService(stores.Favourites, stores.Cars),
	}
}
