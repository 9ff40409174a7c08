package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/carhire/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewService struct {
	reviewsRepo  models.ReviewRepo
	carsRepo     models.CarRepo
	bookingsRepo models.BookingRepo
	usersRepo    models.UserRepo
	logger       *slog.Logger
}

func NewReviewService(
	reviewsRepo models.ReviewRepo,
	carsRepo models.CarRepo,
	bookingsRepo models.BookingRepo,
	usersRepo models.UserRepo,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		reviewsRepo:  reviewsRepo,
		carsRepo:     carsRepo,
		bookingsRepo: bookingsRepo,
		usersRepo:    usersRepo,
		logger:       logger,
	}
}

type ReviewInput struct {
	Rating  int
	Comment string
}

// CarReviews is one page of a car's reviews plus the rating over all of them.
type CarReviews struct {
	Reviews []*models.Review
	Total   int64
	Rating  models.RatingSummary
}

// CreateReview records a rating for a car the user has finished renting.
func (rs *ReviewService) CreateReview(ctx context.Context, userID, carID primitive.ObjectID, in ReviewInput) (*models.Review, error) {
	review := &models.Review{
		UserID:  userID,
		CarID:   carID,
		Rating:  in.Rating,
		Comment: in.Comment,
	}
	review.Sanitize()
	if err := models.Validate.Struct(review); err != nil {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5 and comment at most %d characters", models.ErrValidation, models.MaxReviewComment)
	}

	if _, err := rs.carsRepo.GetCarByID(ctx, carID); err != nil {
		return nil, err
	}

	completed := models.BookingCompleted
	_, rentals, err := rs.bookingsRepo.ListBookings(ctx, models.BookingQuery{
		UserID:     &userID,
		CarID:      &carID,
		Status:     &completed,
		Pagination: models.Pagination{Page: 1, Limit: 1},
	})
	if err != nil {
		return nil, err
	}
	if rentals == 0 {
		return nil, fmt.Errorf("%w: only customers who completed a rental of this car can review it", models.ErrInvalidState)
	}

	user, err := rs.usersRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	review.UserName = user.Name

	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now
	created, err := rs.reviewsRepo.CreateReview(ctx, review)
	if err != nil {
		return nil, err
	}
	rs.logger.Info("review created", "review_id", created.ID.Hex(), "car_id", carID.Hex(), "rating", created.Rating)
	return created, nil
}

func (rs *ReviewService) ListCarReviews(ctx context.Context, carID primitive.ObjectID, p models.Pagination) (*CarReviews, error) {
	if _, err := rs.carsRepo.GetCarByID(ctx, carID); err != nil {
		return nil, err
	}
	p = p.Normalize(models.DefaultPageLimit)
	reviews, total, err := rs.reviewsRepo.ListCarReviews(ctx, carID, p)
	if err != nil {
		return nil, err
	}
	rating, err := rs.reviewsRepo.CarRatingSummary(ctx, carID)
	if err != nil {
		return nil, err
	}
	return &CarReviews{Reviews: reviews, Total: total, Rating: rating}, nil
}

// DeleteReview lets authors remove their own review. Back-office callers may
// remove any review.
func (rs *ReviewService) DeleteReview(ctx context.Context, id primitive.ObjectID, callerID primitive.ObjectID, backOffice bool) error {
	var owner *primitive.ObjectID
	if !backOffice {
		owner = &callerID
	}
	if err := rs.reviewsRepo.DeleteReview(ctx, id, owner); err != nil {
		return err
	}
	rs.logger.Info("review deleted", "review_id", id.Hex(), "by", callerID.Hex())
	return nil
}
