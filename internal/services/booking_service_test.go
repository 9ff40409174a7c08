package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/joshua-takyi/carhire/internal/models"
	"github.com/joshua-takyi/carhire/internal/models/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type bookingFixture struct {
	bookings *mocks.MockBookingRepo
	cars     *mocks.MockCarRepo
	agencies *mocks.MockAgencyRepo
	users    *mocks.MockUserRepo
	svc      *BookingService

	userID primitive.ObjectID
	agency *models.Agency
	car    *models.Car
}

func newBookingFixture(t *testing.T, policy BookingPolicy) *bookingFixture {
	t.Helper()
	f := &bookingFixture{
		bookings: mocks.NewMockBookingRepo(t),
		cars:     mocks.NewMockCarRepo(t),
		agencies: mocks.NewMockAgencyRepo(t),
		users:    mocks.NewMockUserRepo(t),
		userID:   primitive.NewObjectID(),
	}
	f.agency = &models.Agency{ID: primitive.NewObjectID(), Name: "Downtown", City: "Accra", Country: "GH"}
	f.car = &models.Car{
		ID:           primitive.NewObjectID(),
		AgencyID:     f.agency.ID,
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2022,
		LicensePlate: "GR-1234-22",
		DailyRate:    45,
		Status:       models.CarAvailable,
	}
	availability := NewAvailabilityChecker(f.bookings, models.BoundaryInclusive)
	f.svc = NewBookingService(f.bookings, f.cars, f.agencies, f.users, availability, policy, newTestLogger())
	return f
}

func (f *bookingFixture) input() CreateBookingInput {
	return CreateBookingInput{
		CarID:          f.car.ID,
		StartDate:      date("2024-01-01"),
		EndDate:        date("2024-01-04"),
		PickupLocation: "  Airport ",
	}
}

// expectInsert stores whatever the service inserts under id and returns it.
func (f *bookingFixture) expectInsert(id primitive.ObjectID) *models.Booking {
	stored := &models.Booking{}
	f.bookings.On("CreateBooking", mock.Anything, mock.AnythingOfType("*models.Booking")).
		Run(func(args mock.Arguments) {
			*stored = *args.Get(1).(*models.Booking)
			stored.ID = id
		}).
		Return(stored, nil).Once()
	return stored
}

func (f *bookingFixture) existing(status models.BookingStatus) *models.Booking {
	return &models.Booking{
		ID:         primitive.NewObjectID(),
		UserID:     f.userID,
		CarID:      f.car.ID,
		StartDate:  date("2024-01-01"),
		EndDate:    date("2024-01-04"),
		TotalPrice: 135,
		Status:     status,
	}
}

func (f *bookingFixture) expectViews() {
	f.cars.On("GetCarsByIDs", mock.Anything, []primitive.ObjectID{f.car.ID}).
		Return(map[primitive.ObjectID]*models.Car{f.car.ID: f.car}, nil)
	f.agencies.On("GetAgenciesByIDs", mock.Anything, []primitive.ObjectID{f.agency.ID}).
		Return(map[primitive.ObjectID]*models.Agency{f.agency.ID: f.agency}, nil)
}

// expectHolds answers the check made before a car is handed back.
func (f *bookingFixture) expectHolds(statuses []models.BookingStatus, held int64) {
	f.bookings.On("ListBookings", mock.Anything, models.BookingQuery{
		CarID:      &f.car.ID,
		Statuses:   statuses,
		Pagination: models.Pagination{Page: 1, Limit: 1},
	}).Return(nil, held, nil).Once()
}

func TestBookingService_CreateBooking_ThenSameDatesConflict(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	in := f.input()
	r := models.DateRange{Start: in.StartDate, End: in.EndDate}

	f.cars.On("GetCarByID", mock.Anything, f.car.ID).Return(f.car, nil)
	f.bookings.On("FindOverlappingBooking", mock.Anything, f.car.ID, r, models.BoundaryInclusive).Return(nil, nil).Once()
	stored := f.expectInsert(primitive.NewObjectID())
	f.cars.On("AdvanceBookingVersion", mock.Anything, f.car.ID, int64(0)).Return(true, nil).Once()
	f.agencies.On("GetAgencyByID", mock.Anything, f.agency.ID).Return(f.agency, nil)

	view, err := f.svc.CreateBooking(context.Background(), f.userID, in)

	require.NoError(t, err)
	assert.Equal(t, 135.0, view.TotalPrice)
	assert.Equal(t, models.BookingPending, view.Status)
	assert.Equal(t, f.userID, view.UserID)
	assert.Equal(t, "Airport", view.PickupLocation)
	require.NotNil(t, view.Car)
	assert.Equal(t, "Toyota", view.Car.Make)
	require.NotNil(t, view.Car.Agency)
	assert.Equal(t, "Downtown", view.Car.Agency.Name)

	f.bookings.On("FindOverlappingBooking", mock.Anything, f.car.ID, r, models.BoundaryInclusive).Return(stored, nil).Once()

	_, err = f.svc.CreateBooking(context.Background(), primitive.NewObjectID(), in)
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestBookingService_CreateBooking_CarNotAvailable(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	f.car.Status = models.CarRented
	f.cars.On("GetCarByID", mock.Anything, f.car.ID).Return(f.car, nil)

	_, err := f.svc.CreateBooking(context.Background(), f.userID, f.input())

	assert.ErrorIs(t, err, models.ErrInvalidState)
	f.bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestBookingService_CreateBooking_CarNotFound(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	f.cars.On("GetCarByID", mock.Anything, f.car.ID).Return(nil, models.ErrNotFound)

	_, err := f.svc.CreateBooking(context.Background(), f.userID, f.input())

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBookingService_CreateBooking_RejectsBadInput(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})

	in := f.input()
	in.StartDate, in.EndDate = in.EndDate, in.StartDate
	_, err := f.svc.CreateBooking(context.Background(), f.userID, in)
	assert.ErrorIs(t, err, models.ErrValidation)

	in = f.input()
	in.CarID = primitive.NilObjectID
	_, err = f.svc.CreateBooking(context.Background(), f.userID, in)
	assert.ErrorIs(t, err, models.ErrValidation)

	_, err = f.svc.CreateBooking(context.Background(), primitive.NilObjectID, f.input())
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestBookingService_CreateBooking_RetriesAfterLosingFence(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	first, second := primitive.NewObjectID(), primitive.NewObjectID()

	moved := *f.car
	moved.BookingVersion = 1
	f.cars.On("GetCarByID", mock.Anything, f.car.ID).Return(f.car, nil).Once()
	f.cars.On("GetCarByID", mock.Anything, f.car.ID).Return(&moved, nil).Once()
	f.bookings.On("FindOverlappingBooking", mock.Anything, f.car.ID, mock.Anything, models.BoundaryInclusive).Return(nil, nil).Twice()
	f.expectInsert(first)
	f.expectInsert(second)
	f.cars.On("AdvanceBookingVersion", mock.Anything, f.car.ID, int64(0)).Return(false, nil).Once()
	f.bookings.On("DeleteBooking", mock.Anything, first).Return(nil).Once()
	f.cars.On("AdvanceBookingVersion", mock.Anything, f.car.ID, int64(1)).Return(true, nil).Once()
	f.agencies.On("GetAgencyByID", mock.Anything, f.agency.ID).Return(f.agency, nil)

	view, err := f.svc.CreateBooking(context.Background(), f.userID, f.input())

	require.NoError(t, err)
	assert.Equal(t, second, view.ID)
}

func TestBookingService_CreateBooking_RollsBackWhenFenceLostEveryTime(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{MaxAttempts: 2})
	first, second := primitive.NewObjectID(), primitive.NewObjectID()

	f.cars.On("GetCarByID", mock.Anything, f.car.ID).Return(f.car, nil)
	f.bookings.On("FindOverlappingBooking", mock.Anything, f.car.ID, mock.Anything, models.BoundaryInclusive).Return(nil, nil)
	f.expectInsert(first)
	f.expectInsert(second)
	f.cars.On("AdvanceBookingVersion", mock.Anything, f.car.ID, int64(0)).Return(false, nil).Twice()
	f.bookings.On("DeleteBooking", mock.Anything, first).Return(nil).Once()
	f.bookings.On("DeleteBooking", mock.Anything, second).Return(nil).Once()

	_, err := f.svc.CreateBooking(context.Background(), f.userID, f.input())

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestBookingService_CreateBooking_FenceErrorRollsBack(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	id := primitive.NewObjectID()
	storeErr := fmtInternal("advance booking version")

	f.cars.On("GetCarByID", mock.Anything, f.car.ID).Return(f.car, nil)
	f.bookings.On("FindOverlappingBooking", mock.Anything, f.car.ID, mock.Anything, models.BoundaryInclusive).Return(nil, nil)
	f.expectInsert(id)
	f.cars.On("AdvanceBookingVersion", mock.Anything, f.car.ID, int64(0)).Return(false, storeErr)
	f.bookings.On("DeleteBooking", mock.Anything, id).Return(nil).Once()

	_, err := f.svc.CreateBooking(context.Background(), f.userID, f.input())

	assert.ErrorIs(t, err, models.ErrInternal)
}

func fmtInternal(op string) error {
	return errors.Join(models.ErrInternal, errors.New(op))
}

func TestBookingService_CreateBooking_RentOnCreateMarksCarRented(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{CarStatus: CarStatusRentOnCreate})

	f.cars.On("GetCarByID", mock.Anything, f.car.ID).Return(f.car, nil)
	f.bookings.On("FindOverlappingBooking", mock.Anything, f.car.ID, mock.Anything, models.BoundaryInclusive).Return(nil, nil)
	f.expectInsert(primitive.NewObjectID())
	f.cars.On("AdvanceBookingVersion", mock.Anything, f.car.ID, int64(0)).Return(true, nil)
	f.cars.On("SwapCarStatus", mock.Anything, f.car.ID, models.CarAvailable, models.CarRented).Return(true, nil).Once()
	f.agencies.On("GetAgencyByID", mock.Anything, f.agency.ID).Return(f.agency, nil)

	_, err := f.svc.CreateBooking(context.Background(), f.userID, f.input())

	require.NoError(t, err)
}

func TestBookingService_CreateBooking_MissingAgencyStillSucceeds(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})

	f.cars.On("GetCarByID", mock.Anything, f.car.ID).Return(f.car, nil)
	f.bookings.On("FindOverlappingBooking", mock.Anything, f.car.ID, mock.Anything, models.BoundaryInclusive).Return(nil, nil)
	f.expectInsert(primitive.NewObjectID())
	f.cars.On("AdvanceBookingVersion", mock.Anything, f.car.ID, int64(0)).Return(true, nil)
	f.agencies.On("GetAgencyByID", mock.Anything, f.agency.ID).Return(nil, models.ErrNotFound)

	view, err := f.svc.CreateBooking(context.Background(), f.userID, f.input())

	require.NoError(t, err)
	require.NotNil(t, view.Car)
	assert.Nil(t, view.Car.Agency)
}

func TestBookingService_UpdateBooking_AllowedTransition(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	b := f.existing(models.BookingPending)
	confirmed := models.BookingConfirmed
	after := *b
	after.Status = confirmed

	f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)
	f.bookings.On("UpdateBooking", mock.Anything, b.ID, models.BookingPending, models.BookingUpdate{Status: &confirmed}).Return(&after, nil)
	f.expectViews()

	view, err := f.svc.UpdateBooking(context.Background(), b.ID, f.userID, UpdateBookingInput{Status: &confirmed})

	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, view.Status)
	assert.Equal(t, 135.0, view.TotalPrice)
}

func TestBookingService_UpdateBooking_DisallowedTransitionLeavesBooking(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	b := f.existing(models.BookingConfirmed)
	pending := models.BookingPending

	f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)

	_, err := f.svc.UpdateBooking(context.Background(), b.ID, f.userID, UpdateBookingInput{Status: &pending})

	require.ErrorIs(t, err, models.ErrInvalidTransition)
	var te *models.TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, models.BookingConfirmed, te.From)
	assert.Equal(t, models.BookingPending, te.To)
	assert.Equal(t, models.BookingConfirmed, b.Status)
	f.bookings.AssertNotCalled(t, "UpdateBooking", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_UpdateBooking_UnknownStatus(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	b := f.existing(models.BookingPending)
	bogus := models.BookingStatus("LOST")

	f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)

	_, err := f.svc.UpdateBooking(context.Background(), b.ID, f.userID, UpdateBookingInput{Status: &bogus})

	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestBookingService_UpdateBooking_LocationsOnly(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	b := f.existing(models.BookingCompleted)
	dropoff := "Kotoka"
	blank := "   "
	after := *b
	after.DropoffLocation = dropoff

	f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)
	f.bookings.On("UpdateBooking", mock.Anything, b.ID, models.BookingCompleted, models.BookingUpdate{DropoffLocation: &dropoff}).Return(&after, nil)
	f.expectViews()

	view, err := f.svc.UpdateBooking(context.Background(), b.ID, f.userID, UpdateBookingInput{
		PickupLocation:  &blank,
		DropoffLocation: &dropoff,
	})

	require.NoError(t, err)
	assert.Equal(t, "Kotoka", view.DropoffLocation)
}

func TestBookingService_UpdateBooking_NothingToChange(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	b := f.existing(models.BookingPending)

	f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)
	f.expectViews()

	view, err := f.svc.UpdateBooking(context.Background(), b.ID, f.userID, UpdateBookingInput{})

	require.NoError(t, err)
	assert.Equal(t, b.ID, view.ID)
}

func TestBookingService_UpdateBooking_NotOwned(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	id := primitive.NewObjectID()
	active := models.BookingActive

	f.bookings.On("GetUserBooking", mock.Anything, id, f.userID).Return(nil, models.ErrNotFound)

	_, err := f.svc.UpdateBooking(context.Background(), id, f.userID, UpdateBookingInput{Status: &active})

	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestBookingService_UpdateBooking_LostRace(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	b := f.existing(models.BookingPending)
	confirmed := models.BookingConfirmed
	current := *b
	current.Status = models.BookingCancelled

	f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)
	f.bookings.On("UpdateBooking", mock.Anything, b.ID, models.BookingPending, mock.Anything).Return(nil, models.ErrNotFound)
	f.bookings.On("GetBookingByID", mock.Anything, b.ID).Return(&current, nil)

	_, err := f.svc.UpdateBooking(context.Background(), b.ID, f.userID, UpdateBookingInput{Status: &confirmed})

	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestBookingService_UpdateBooking_LostRaceToSameTarget(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	b := f.existing(models.BookingPending)
	dropoff := "Tema"
	current := *b
	current.Status = models.BookingConfirmed

	f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)
	f.bookings.On("UpdateBooking", mock.Anything, b.ID, models.BookingPending, mock.Anything).Return(nil, models.ErrNotFound)
	f.bookings.On("GetBookingByID", mock.Anything, b.ID).Return(&current, nil)

	_, err := f.svc.UpdateBooking(context.Background(), b.ID, f.userID, UpdateBookingInput{DropoffLocation: &dropoff})

	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestBookingService_CancelBooking(t *testing.T) {
	for _, status := range []models.BookingStatus{models.BookingPending, models.BookingConfirmed} {
		t.Run(string(status), func(t *testing.T) {
			f := newBookingFixture(t, BookingPolicy{})
			b := f.existing(status)
			cancelled := models.BookingCancelled
			after := *b
			after.Status = cancelled

			f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)
			f.bookings.On("UpdateBooking", mock.Anything, b.ID, status, models.BookingUpdate{Status: &cancelled}).Return(&after, nil)

			got, err := f.svc.CancelBooking(context.Background(), b.ID, f.userID)

			require.NoError(t, err)
			assert.Equal(t, models.BookingCancelled, got.Status)
			assert.Equal(t, b.ID, got.ID)
		})
	}
}

func TestBookingService_CancelBooking_NotCancelable(t *testing.T) {
	for _, status := range []models.BookingStatus{models.BookingActive, models.BookingCompleted, models.BookingCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f := newBookingFixture(t, BookingPolicy{})
			b := f.existing(status)

			f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)

			_, err := f.svc.CancelBooking(context.Background(), b.ID, f.userID)

			assert.ErrorIs(t, err, models.ErrInvalidState)
			assert.Equal(t, status, b.Status)
		})
	}
}

func TestBookingService_CancelBooking_ReleasesCar(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{CarStatus: CarStatusRentOnCreate})
	b := f.existing(models.BookingConfirmed)
	after := *b
	after.Status = models.BookingCancelled

	f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)
	f.bookings.On("UpdateBooking", mock.Anything, b.ID, models.BookingConfirmed, mock.Anything).Return(&after, nil)
	f.expectHolds(models.BlockingStatuses, 0)
	f.cars.On("SwapCarStatus", mock.Anything, f.car.ID, models.CarRented, models.CarAvailable).Return(true, nil).Once()

	_, err := f.svc.CancelBooking(context.Background(), b.ID, f.userID)

	require.NoError(t, err)
}

func TestBookingService_CancelBooking_KeepsCarHeldByOtherBooking(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{CarStatus: CarStatusRentOnCreate})
	b := f.existing(models.BookingPending)
	after := *b
	after.Status = models.BookingCancelled

	f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)
	f.bookings.On("UpdateBooking", mock.Anything, b.ID, models.BookingPending, mock.Anything).Return(&after, nil)
	f.expectHolds(models.BlockingStatuses, 1)

	got, err := f.svc.CancelBooking(context.Background(), b.ID, f.userID)

	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)
	f.cars.AssertNotCalled(t, "SwapCarStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_SetBookingStatus_CompleteKeepsCarHeldByActiveBooking(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{CarStatus: CarStatusRentOnActive})
	b := f.existing(models.BookingActive)
	completed := models.BookingCompleted
	after := *b
	after.Status = completed

	f.bookings.On("GetBookingByID", mock.Anything, b.ID).Return(b, nil)
	f.bookings.On("UpdateBooking", mock.Anything, b.ID, models.BookingActive, models.BookingUpdate{Status: &completed}).Return(&after, nil)
	f.expectHolds([]models.BookingStatus{models.BookingActive}, 1)
	f.expectViews()

	view, err := f.svc.SetBookingStatus(context.Background(), b.ID, completed)

	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, view.Status)
	f.cars.AssertNotCalled(t, "SwapCarStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_CancelBooking_CarSwapFailureIsNotFatal(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{CarStatus: CarStatusRentOnCreate})
	b := f.existing(models.BookingPending)
	after := *b
	after.Status = models.BookingCancelled

	f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)
	f.bookings.On("UpdateBooking", mock.Anything, b.ID, models.BookingPending, mock.Anything).Return(&after, nil)
	f.expectHolds(models.BlockingStatuses, 0)
	f.cars.On("SwapCarStatus", mock.Anything, f.car.ID, models.CarRented, models.CarAvailable).Return(false, fmtInternal("swap"))

	got, err := f.svc.CancelBooking(context.Background(), b.ID, f.userID)

	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)
}

func TestBookingService_SetBookingStatus_RentOnActive(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{CarStatus: CarStatusRentOnActive})
	b := f.existing(models.BookingConfirmed)
	active := models.BookingActive
	after := *b
	after.Status = active

	f.bookings.On("GetBookingByID", mock.Anything, b.ID).Return(b, nil)
	f.bookings.On("UpdateBooking", mock.Anything, b.ID, models.BookingConfirmed, models.BookingUpdate{Status: &active}).Return(&after, nil)
	f.cars.On("SwapCarStatus", mock.Anything, f.car.ID, models.CarAvailable, models.CarRented).Return(true, nil).Once()
	f.expectViews()

	view, err := f.svc.SetBookingStatus(context.Background(), b.ID, active)

	require.NoError(t, err)
	assert.Equal(t, models.BookingActive, view.Status)
}

func TestBookingService_ListUserBookings(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	b1, b2 := f.existing(models.BookingPending), f.existing(models.BookingCancelled)
	orphan := f.existing(models.BookingCompleted)
	orphan.CarID = primitive.NewObjectID()

	want := models.BookingQuery{UserID: &f.userID, Pagination: models.Pagination{Page: 2, Limit: models.DefaultPageLimit}}
	f.bookings.On("ListBookings", mock.Anything, want).Return([]*models.Booking{b1, b2, orphan}, int64(13), nil)
	f.cars.On("GetCarsByIDs", mock.Anything, []primitive.ObjectID{f.car.ID, orphan.CarID}).
		Return(map[primitive.ObjectID]*models.Car{f.car.ID: f.car}, nil)
	f.agencies.On("GetAgenciesByIDs", mock.Anything, []primitive.ObjectID{f.agency.ID}).
		Return(map[primitive.ObjectID]*models.Agency{f.agency.ID: f.agency}, nil)

	views, total, err := f.svc.ListUserBookings(context.Background(), f.userID, models.Pagination{Page: 2})

	require.NoError(t, err)
	assert.Equal(t, int64(13), total)
	require.Len(t, views, 3)
	assert.NotNil(t, views[0].Car)
	assert.Nil(t, views[2].Car)
}

func TestBookingService_ListBookings_AttachesCustomers(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	b1, b2 := f.existing(models.BookingPending), f.existing(models.BookingActive)
	gone := f.existing(models.BookingCompleted)
	gone.UserID = primitive.NewObjectID()
	customer := &models.User{ID: f.userID, Name: "Ama", Email: "ama@example.com", Phone: "+233201112222"}

	f.bookings.On("ListBookings", mock.Anything, mock.Anything).Return([]*models.Booking{b1, b2, gone}, int64(3), nil)
	f.expectViews()
	f.users.On("GetUsersByIDs", mock.Anything, []primitive.ObjectID{f.userID, gone.UserID}).
		Return(map[primitive.ObjectID]*models.User{f.userID: customer}, nil)

	views, total, err := f.svc.ListBookings(context.Background(), models.BookingQuery{})

	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, views, 3)
	require.NotNil(t, views[0].User)
	assert.Equal(t, "Ama", views[0].User.Name)
	assert.Equal(t, "ama@example.com", views[1].User.Email)
	assert.Nil(t, views[2].User)
}

func TestBookingService_GetBooking(t *testing.T) {
	f := newBookingFixture(t, BookingPolicy{})
	b := f.existing(models.BookingActive)

	f.bookings.On("GetUserBooking", mock.Anything, b.ID, f.userID).Return(b, nil)
	f.expectViews()

	view, err := f.svc.GetBooking(context.Background(), b.ID, f.userID)

	require.NoError(t, err)
	assert.Equal(t, b.ID, view.ID)
	assert.Equal(t, "GR-1234-22", view.Car.LicensePlate)
}

func TestBookingPolicy_CarStatusChange(t *testing.T) {
	tests := []struct {
		policy   CarStatusPolicy
		from, to models.BookingStatus
		ok       bool
		carTo    models.CarStatus
	}{
		{CarStatusManual, "", models.BookingPending, false, ""},
		{CarStatusManual, models.BookingActive, models.BookingCompleted, false, ""},
		{CarStatusRentOnCreate, "", models.BookingPending, true, models.CarRented},
		{CarStatusRentOnCreate, models.BookingPending, models.BookingConfirmed, false, ""},
		{CarStatusRentOnCreate, models.BookingActive, models.BookingCompleted, true, models.CarAvailable},
		{CarStatusRentOnCreate, models.BookingPending, models.BookingCancelled, true, models.CarAvailable},
		{CarStatusRentOnActive, "", models.BookingPending, false, ""},
		{CarStatusRentOnActive, models.BookingConfirmed, models.BookingActive, true, models.CarRented},
		{CarStatusRentOnActive, models.BookingActive, models.BookingCompleted, true, models.CarAvailable},
		{CarStatusRentOnActive, models.BookingConfirmed, models.BookingCancelled, false, ""},
	}
	for _, tt := range tests {
		_, carTo, ok := BookingPolicy{CarStatus: tt.policy}.carStatusChange(tt.from, tt.to)
		assert.Equal(t, tt.ok, ok, "%s %s->%s", tt.policy, tt.from, tt.to)
		assert.Equal(t, tt.carTo, carTo, "%s %s->%s", tt.policy, tt.from, tt.to)
	}
}

func TestParseCarStatusPolicy(t *testing.T) {
	p, err := ParseCarStatusPolicy("")
	require.NoError(t, err)
	assert.Equal(t, CarStatusManual, p)

	p, err = ParseCarStatusPolicy(" Rent_On_Active ")
	require.NoError(t, err)
	assert.Equal(t, CarStatusRentOnActive, p)

	_, err = ParseCarStatusPolicy("always")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestNormalizeDate(t *testing.T) {
	in := time.Date(2024, 1, 1, 10, 0, 0, 123456789, time.FixedZone("GMT+2", 2*3600))
	got := normalizeDate(in)
	assert.Equal(t, time.UTC, got.Location())
	assert.Equal(t, 123000000, got.Nanosecond())
	assert.Equal(t, 8, got.Hour())
}
