// Package mocks holds testify mocks of the repository interfaces in models.
package mocks

import (
	"context"
	"testing"

	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MockBookingRepo struct {
	mock.Mock
}

var _ models.BookingRepo = (*MockBookingRepo)(nil)

// NewMockBookingRepo asserts the mock's expectations when t finishes.
func NewMockBookingRepo(t testing.TB) *MockBookingRepo {
	m := &MockBookingRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func booking(args mock.Arguments, i int) *models.Booking {
	if v := args.Get(i); v != nil {
		return v.(*models.Booking)
	}
	return nil
}

func (m *MockBookingRepo) CreateBooking(ctx context.Context, b *models.Booking) (*models.Booking, error) {
	args := m.Called(ctx, b)
	return booking(args, 0), args.Error(1)
}

func (m *MockBookingRepo) GetBookingByID(ctx context.Context, id primitive.ObjectID) (*models.Booking, error) {
	args := m.Called(ctx, id)
	return booking(args, 0), args.Error(1)
}

func (m *MockBookingRepo) GetUserBooking(ctx context.Context, id, userID primitive.ObjectID) (*models.Booking, error) {
	args := m.Called(ctx, id, userID)
	return booking(args, 0), args.Error(1)
}

func (m *MockBookingRepo) ListBookings(ctx context.Context, q models.BookingQuery) ([]*models.Booking, int64, error) {
	args := m.Called(ctx, q)
	var out []*models.Booking
	if v := args.Get(0); v != nil {
		out = v.([]*models.Booking)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *MockBookingRepo) FindOverlappingBooking(ctx context.Context, carID primitive.ObjectID, r models.DateRange, mode models.BoundaryMode) (*models.Booking, error) {
	args := m.Called(ctx, carID, r, mode)
	return booking(args, 0), args.Error(1)
}

func (m *MockBookingRepo) UpdateBooking(ctx context.Context, id primitive.ObjectID, expected models.BookingStatus, upd models.BookingUpdate) (*models.Booking, error) {
	args := m.Called(ctx, id, expected, upd)
	return booking(args, 0), args.Error(1)
}

func (m *MockBookingRepo) DeleteBooking(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func counts(args mock.Arguments, i int) map[primitive.ObjectID]int64 {
	if v := args.Get(i); v != nil {
		return v.(map[primitive.ObjectID]int64)
	}
	return nil
}

func (m *MockBookingRepo) CountBookingsByUser(ctx context.Context, userIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	args := m.Called(ctx, userIDs)
	return counts(args, 0), args.Error(1)
}

func (m *MockBookingRepo) CountBookingsByCar(ctx context.Context, carIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	args := m.Called(ctx, carIDs)
	return counts(args, 0), args.Error(1)
}

type MockCarRepo struct {
	mock.Mock
}

var _ models.CarRepo = (*MockCarRepo)(nil)

func NewMockCarRepo(t testing.TB) *MockCarRepo {
	m := &MockCarRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func car(args mock.Arguments, i int) *models.Car {
	if v := args.Get(i); v != nil {
		return v.(*models.Car)
	}
	return nil
}

func (m *MockCarRepo) CreateCar(ctx context.Context, c *models.Car) (*models.Car, error) {
	args := m.Called(ctx, c)
	return car(args, 0), args.Error(1)
}

func (m *MockCarRepo) GetCarByID(ctx context.Context, id primitive.ObjectID) (*models.Car, error) {
	args := m.Called(ctx, id)
	return car(args, 0), args.Error(1)
}

func (m *MockCarRepo) GetCarsByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Car, error) {
	args := m.Called(ctx, ids)
	var out map[primitive.ObjectID]*models.Car
	if v := args.Get(0); v != nil {
		out = v.(map[primitive.ObjectID]*models.Car)
	}
	return out, args.Error(1)
}

func (m *MockCarRepo) ListCars(ctx context.Context, q models.CarQuery) ([]*models.Car, int64, error) {
	args := m.Called(ctx, q)
	var out []*models.Car
	if v := args.Get(0); v != nil {
		out = v.([]*models.Car)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *MockCarRepo) UpdateCar(ctx context.Context, id primitive.ObjectID, upd models.CarUpdate) (*models.Car, error) {
	args := m.Called(ctx, id, upd)
	return car(args, 0), args.Error(1)
}

func (m *MockCarRepo) DeleteCar(ctx context.Context, id primitive.ObjectID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockCarRepo) AdvanceBookingVersion(ctx context.Context, id primitive.ObjectID, version int64) (bool, error) {
	args := m.Called(ctx, id, version)
	return args.Bool(0), args.Error(1)
}

func (m *MockCarRepo) SwapCarStatus(ctx context.Context, id primitive.ObjectID, from, to models.CarStatus) (bool, error) {
	args := m.Called(ctx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockCarRepo) CountCarsByAgency(ctx context.Context, agencyIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	args := m.Called(ctx, agencyIDs)
	return counts(args, 0), args.Error(1)
}

type MockAgencyRepo struct {
	mock.Mock
}

var _ models.AgencyRepo = (*MockAgencyRepo)(nil)

func NewMockAgencyRepo(t testing.TB) *MockAgencyRepo {
	m := &MockAgencyRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func agency(args mock.Arguments, i int) *models.Agency {
	if v := args.Get(i); v != nil {
		return v.(*models.Agency)
	}
	return nil
}

func (m *MockAgencyRepo) CreateAgency(ctx context.Context, a *models.Agency) (*models.Agency, error) {
	args := m.Called(ctx, a)
	return agency(args, 0), args.Error(1)
}

func (m *MockAgencyRepo) GetAgencyByID(ctx context.Context, id primitive.ObjectID) (*models.Agency, error) {
	args := m.Called(ctx, id)
	return agency(args, 0), args.Error(1)
}

func (m *MockAgencyRepo) GetAgenciesByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.Agency, error) {
	args := m.Called(ctx, ids)
	var out map[primitive.ObjectID]*models.Agency
	if v := args.Get(0); v != nil {
		out = v.(map[primitive.ObjectID]*models.Agency)
	}
	return out, args.Error(1)
}

func (m *MockAgencyRepo) ListAgencies(ctx context.Context, q models.AgencyQuery) ([]*models.Agency, int64, error) {
	args := m.Called(ctx, q)
	var out []*models.Agency
	if v := args.Get(0); v != nil {
		out = v.([]*models.Agency)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

type MockUserRepo struct {
	mock.Mock
}

var _ models.UserRepo = (*MockUserRepo)(nil)

func NewMockUserRepo(t testing.TB) *MockUserRepo {
	m := &MockUserRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func user(args mock.Arguments, i int) *models.User {
	if v := args.Get(i); v != nil {
		return v.(*models.User)
	}
	return nil
}

func (m *MockUserRepo) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	args := m.Called(ctx, u)
	return user(args, 0), args.Error(1)
}

func (m *MockUserRepo) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	return user(args, 0), args.Error(1)
}

func (m *MockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	return user(args, 0), args.Error(1)
}

func (m *MockUserRepo) ListUsers(ctx context.Context, q models.UserQuery) ([]*models.User, int64, error) {
	args := m.Called(ctx, q)
	var out []*models.User
	if v := args.Get(0); v != nil {
		out = v.([]*models.User)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *MockUserRepo) GetUsersByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*models.User, error) {
	args := m.Called(ctx, ids)
	var out map[primitive.ObjectID]*models.User
	if v := args.Get(0); v != nil {
		out = v.(map[primitive.ObjectID]*models.User)
	}
	return out, args.Error(1)
}

type MockReviewRepo struct {
	mock.Mock
}

var _ models.ReviewRepo = (*MockReviewRepo)(nil)

func NewMockReviewRepo(t testing.TB) *MockReviewRepo {
	m := &MockReviewRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockReviewRepo) CreateReview(ctx context.Context, r *models.Review) (*models.Review, error) {
	args := m.Called(ctx, r)
	var out *models.Review
	if v := args.Get(0); v != nil {
		out = v.(*models.Review)
	}
	return out, args.Error(1)
}

func (m *MockReviewRepo) ListCarReviews(ctx context.Context, carID primitive.ObjectID, p models.Pagination) ([]*models.Review, int64, error) {
	args := m.Called(ctx, carID, p)
	var out []*models.Review
	if v := args.Get(0); v != nil {
		out = v.([]*models.Review)
	}
	return out, args.Get(1).(int64), args.Error(2)
}

func (m *MockReviewRepo) CarRatingSummary(ctx context.Context, carID primitive.ObjectID) (models.RatingSummary, error) {
	args := m.Called(ctx, carID)
	return args.Get(0).(models.RatingSummary), args.Error(1)
}

func (m *MockReviewRepo) DeleteReview(ctx context.Context, id primitive.ObjectID, userID *primitive.ObjectID) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockReviewRepo) CountReviewsByCar(ctx context.Context, carIDs []primitive.ObjectID) (map[primitive.ObjectID]int64, error) {
	args := m.Called(ctx, carIDs)
	return counts(args, 0), args.Error(1)
}

type MockFavouriteRepo struct {
	mock.Mock
}

var _ models.FavouriteRepo = (*MockFavouriteRepo)(nil)

func NewMockFavouriteRepo(t testing.TB) *MockFavouriteRepo {
	m := &MockFavouriteRepo{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func favourite(args mock.Arguments, i int) *models.Favourite {
	if v := args.Get(i); v != nil {
		return v.(*models.Favourite)
	}
	return nil
}

func (m *MockFavouriteRepo) AddToFavourites(ctx context.Context, userID, carID primitive.ObjectID) (*models.Favourite, error) {
	args := m.Called(ctx, userID, carID)
	return favourite(args, 0), args.Error(1)
}

func (m *MockFavouriteRepo) RemoveFromFavourites(ctx context.Context, userID, carID primitive.ObjectID) error {
	return m.Called(ctx, userID, carID).Error(0)
}

func (m *MockFavouriteRepo) GetFavourites(ctx context.Context, userID primitive.ObjectID) (*models.Favourite, error) {
	args := m.Called(ctx, userID)
	return favourite(args, 0), args.Error(1)
}
