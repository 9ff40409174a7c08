package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joshua-takyi/carhire/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BookingService struct {
	bookingsRepo models.BookingRepo
	carsRepo     models.CarRepo
	agenciesRepo models.AgencyRepo
	usersRepo    models.UserRepo
	availability *AvailabilityChecker
	policy       BookingPolicy
	logger       *slog.Logger
	now          func() time.Time
}

func NewBookingService(
	bookingsRepo models.BookingRepo,
	carsRepo models.CarRepo,
	agenciesRepo models.AgencyRepo,
	usersRepo models.UserRepo,
	availability *AvailabilityChecker,
	policy BookingPolicy,
	logger *slog.Logger,
) *BookingService {
	return &BookingService{
		bookingsRepo: bookingsRepo,
		carsRepo:     carsRepo,
		agenciesRepo: agenciesRepo,
		usersRepo:    usersRepo,
		availability: availability,
		policy:       policy.normalized(),
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

type CreateBookingInput struct {
	CarID           primitive.ObjectID
	StartDate       time.Time
	EndDate         time.Time
	PickupLocation  string
	DropoffLocation string
}

type UpdateBookingInput struct {
	Status          *models.BookingStatus
	PickupLocation  *string
	DropoffLocation *string
}

// normalizeDate drops sub-millisecond precision, which the store cannot keep.
func normalizeDate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// CreateBooking books carID for the caller. Checks run in order: the car
// exists, the car is AVAILABLE, and the dates are free.
func (bs *BookingService) CreateBooking(ctx context.Context, userID primitive.ObjectID, in CreateBookingInput) (*models.BookingView, error) {
	if userID.IsZero() {
		return nil, fmt.Errorf("%w: invalid user id", models.ErrValidation)
	}
	if in.CarID.IsZero() {
		return nil, fmt.Errorf("%w: car id is required", models.ErrValidation)
	}
	in.StartDate = normalizeDate(in.StartDate)
	in.EndDate = normalizeDate(in.EndDate)
	if err := (models.DateRange{Start: in.StartDate, End: in.EndDate}).Validate(); err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= bs.policy.MaxAttempts; attempt++ {
		view, fenced, err := bs.tryCreate(ctx, userID, in)
		if err != nil {
			return nil, err
		}
		if fenced {
			return view, nil
		}
		bs.logger.Warn("booking lost car fence, retrying",
			"car_id", in.CarID.Hex(),
			"user_id", userID.Hex(),
			"attempt", attempt,
		)
	}
	return nil, fmt.Errorf("%w: dates unavailable", models.ErrConflict)
}

// tryCreate runs one check-insert-fence round. fenced is false when a
// concurrent booking for the same car committed first; the insert has then
// been rolled back and the caller should retry.
func (bs *BookingService) tryCreate(ctx context.Context, userID primitive.ObjectID, in CreateBookingInput) (*models.BookingView, bool, error) {
	car, err := bs.carsRepo.GetCarByID(ctx, in.CarID)
	if err != nil {
		return nil, false, err
	}
	if car.Status != models.CarAvailable {
		return nil, false, fmt.Errorf("%w: car not available", models.ErrInvalidState)
	}

	conflict, err := bs.availability.HasConflict(ctx, car.ID, in.StartDate, in.EndDate)
	if err != nil {
		return nil, false, err
	}
	if conflict {
		return nil, false, fmt.Errorf("%w: dates unavailable", models.ErrConflict)
	}

	total, err := ComputeTotal(car.DailyRate, in.StartDate, in.EndDate)
	if err != nil {
		return nil, false, err
	}

	now := bs.now()
	booking := &models.Booking{
		UserID:          userID,
		CarID:           car.ID,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		TotalPrice:      total,
		Status:          models.BookingPending,
		PickupLocation:  strings.TrimSpace(in.PickupLocation),
		DropoffLocation: strings.TrimSpace(in.DropoffLocation),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	created, err := bs.bookingsRepo.CreateBooking(ctx, booking)
	if err != nil {
		return nil, false, err
	}

	fenced, err := bs.carsRepo.AdvanceBookingVersion(ctx, car.ID, car.BookingVersion)
	if err != nil {
		if rbErr := bs.rollback(ctx, created.ID); rbErr != nil {
			return nil, false, errors.Join(err, rbErr)
		}
		return nil, false, err
	}
	if !fenced {
		if err := bs.rollback(ctx, created.ID); err != nil {
			return nil, false, err
		}
		return nil, false, nil
	}

	bs.logger.Info("booking created",
		"booking_id", created.ID.Hex(),
		"car_id", car.ID.Hex(),
		"user_id", userID.Hex(),
		"total_price", created.TotalPrice,
	)
	bs.applyCarPolicy(ctx, car.ID, "", models.BookingPending)

	return models.NewBookingView(created, car, bs.lookupAgency(ctx, car.AgencyID)), true, nil
}

func (bs *BookingService) rollback(ctx context.Context, id primitive.ObjectID) error {
	if err := bs.bookingsRepo.DeleteBooking(context.WithoutCancel(ctx), id); err != nil {
		bs.logger.Error("failed to roll back booking", "booking_id", id.Hex(), "error", err)
		return err
	}
	return nil
}

func (bs *BookingService) lookupAgency(ctx context.Context, id primitive.ObjectID) *models.Agency {
	if id.IsZero() {
		return nil
	}
	agency, err := bs.agenciesRepo.GetAgencyByID(ctx, id)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			bs.logger.Warn("failed to resolve agency", "agency_id", id.Hex(), "error", err)
		}
		return nil
	}
	return agency
}

func (bs *BookingService) GetBooking(ctx context.Context, bookingID, userID primitive.ObjectID) (*models.BookingView, error) {
	booking, err := bs.bookingsRepo.GetUserBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	views, err := bs.resolveViews(ctx, []*models.Booking{booking})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (bs *BookingService) ListUserBookings(ctx context.Context, userID primitive.ObjectID, p models.Pagination) ([]*models.BookingView, int64, error) {
	if userID.IsZero() {
		return nil, 0, fmt.Errorf("%w: invalid user id", models.ErrValidation)
	}
	return bs.listViews(ctx, models.BookingQuery{UserID: &userID, Pagination: p})
}

// ListBookings is the back-office listing; each view also carries a summary
// of the customer who made the booking.
func (bs *BookingService) ListBookings(ctx context.Context, q models.BookingQuery) ([]*models.BookingView, int64, error) {
	views, total, err := bs.listViews(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	userIDs := make([]primitive.ObjectID, 0, len(views))
	seen := make(map[primitive.ObjectID]bool, len(views))
	for _, v := range views {
		if !seen[v.UserID] {
			seen[v.UserID] = true
			userIDs = append(userIDs, v.UserID)
		}
	}
	users, err := bs.usersRepo.GetUsersByIDs(ctx, userIDs)
	if err != nil {
		return nil, 0, err
	}
	for _, v := range views {
		if u := users[v.UserID]; u != nil {
			v.User = u.Summary()
		}
	}
	return views, total, nil
}

func (bs *BookingService) listViews(ctx context.Context, q models.BookingQuery) ([]*models.BookingView, int64, error) {
	q.Pagination = q.Normalize(models.DefaultPageLimit)
	bookings, total, err := bs.bookingsRepo.ListBookings(ctx, q)
	if err != nil {
		return nil, 0, err
	}
	views, err := bs.resolveViews(ctx, bookings)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// resolveViews attaches car and agency summaries with one lookup per collection.
func (bs *BookingService) resolveViews(ctx context.Context, bookings []*models.Booking) ([]*models.BookingView, error) {
	carIDs := make([]primitive.ObjectID, 0, len(bookings))
	seenCars := make(map[primitive.ObjectID]bool, len(bookings))
	for _, b := range bookings {
		if !seenCars[b.CarID] {
			seenCars[b.CarID] = true
			carIDs = append(carIDs, b.CarID)
		}
	}
	cars, err := bs.carsRepo.GetCarsByIDs(ctx, carIDs)
	if err != nil {
		return nil, err
	}

	agencyIDs := make([]primitive.ObjectID, 0, len(cars))
	seenAgencies := make(map[primitive.ObjectID]bool, len(cars))
	for _, c := range cars {
		if !c.AgencyID.IsZero() && !seenAgencies[c.AgencyID] {
			seenAgencies[c.AgencyID] = true
			agencyIDs = append(agencyIDs, c.AgencyID)
		}
	}
	agencies, err := bs.agenciesRepo.GetAgenciesByIDs(ctx, agencyIDs)
	if err != nil {
		return nil, err
	}

	views := make([]*models.BookingView, 0, len(bookings))
	for _, b := range bookings {
		car := cars[b.CarID]
		var agency *models.Agency
		if car != nil {
			agency = agencies[car.AgencyID]
		}
		views = append(views, models.NewBookingView(b, car, agency))
	}
	return views, nil
}

// UpdateBooking changes status and/or locations of one of the caller's
// bookings. A status change must follow the transition table.
func (bs *BookingService) UpdateBooking(ctx context.Context, bookingID, userID primitive.ObjectID, in UpdateBookingInput) (*models.BookingView, error) {
	booking, err := bs.bookingsRepo.GetUserBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	return bs.applyUpdate(ctx, booking, in)
}

// SetBookingStatus is the back-office variant of UpdateBooking: it is not
// scoped to an owner and only touches status.
func (bs *BookingService) SetBookingStatus(ctx context.Context, bookingID primitive.ObjectID, status models.BookingStatus) (*models.BookingView, error) {
	booking, err := bs.bookingsRepo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return bs.applyUpdate(ctx, booking, UpdateBookingInput{Status: &status})
}

func (bs *BookingService) applyUpdate(ctx context.Context, booking *models.Booking, in UpdateBookingInput) (*models.BookingView, error) {
	var upd models.BookingUpdate
	if in.PickupLocation != nil {
		if v := strings.TrimSpace(*in.PickupLocation); v != "" {
			upd.PickupLocation = &v
		}
	}
	if in.DropoffLocation != nil {
		if v := strings.TrimSpace(*in.DropoffLocation); v != "" {
			upd.DropoffLocation = &v
		}
	}
	if in.Status != nil {
		if !in.Status.IsValid() {
			return nil, fmt.Errorf("%w: unknown booking status %q", models.ErrValidation, *in.Status)
		}
		if err := models.CheckTransition(booking.Status, *in.Status); err != nil {
			return nil, err
		}
		upd.Status = in.Status
	}
	if upd.IsEmpty() {
		views, err := bs.resolveViews(ctx, []*models.Booking{booking})
		if err != nil {
			return nil, err
		}
		return views[0], nil
	}

	updated, err := bs.bookingsRepo.UpdateBooking(ctx, booking.ID, booking.Status, upd)
	if errors.Is(err, models.ErrNotFound) {
		return nil, bs.staleUpdate(ctx, booking.ID, func(current *models.Booking) error {
			if upd.Status == nil {
				return nil
			}
			return models.CheckTransition(current.Status, *upd.Status)
		})
	}
	if err != nil {
		return nil, err
	}

	if upd.Status != nil {
		bs.logger.Info("booking status changed",
			"booking_id", updated.ID.Hex(),
			"from", booking.Status,
			"to", updated.Status,
		)
		bs.applyCarPolicy(ctx, updated.CarID, booking.Status, updated.Status)
	}

	views, err := bs.resolveViews(ctx, []*models.Booking{updated})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// CancelBooking moves one of the caller's PENDING or CONFIRMED bookings to
// CANCELLED. The record is kept.
func (bs *BookingService) CancelBooking(ctx context.Context, bookingID, userID primitive.ObjectID) (*models.Booking, error) {
	booking, err := bs.bookingsRepo.GetUserBooking(ctx, bookingID, userID)
	if err != nil {
		return nil, err
	}
	if err := checkCancelable(booking); err != nil {
		return nil, err
	}

	status := models.BookingCancelled
	updated, err := bs.bookingsRepo.UpdateBooking(ctx, booking.ID, booking.Status, models.BookingUpdate{Status: &status})
	if errors.Is(err, models.ErrNotFound) {
		return nil, bs.staleUpdate(ctx, booking.ID, checkCancelable)
	}
	if err != nil {
		return nil, err
	}

	bs.logger.Info("booking cancelled",
		"booking_id", updated.ID.Hex(),
		"user_id", userID.Hex(),
		"from", booking.Status,
	)
	bs.applyCarPolicy(ctx, updated.CarID, booking.Status, models.BookingCancelled)
	return updated, nil
}

func checkCancelable(b *models.Booking) error {
	if !b.Status.IsCancelable() {
		return fmt.Errorf("%w: cannot cancel booking in status %s", models.ErrInvalidState, b.Status)
	}
	return nil
}

// staleUpdate explains a conditional write that matched nothing because the
// booking moved on since it was read.
func (bs *BookingService) staleUpdate(ctx context.Context, id primitive.ObjectID, recheck func(*models.Booking) error) error {
	current, err := bs.bookingsRepo.GetBookingByID(ctx, id)
	if err != nil {
		return err
	}
	if err := recheck(current); err != nil {
		return err
	}
	return fmt.Errorf("%w: booking was modified concurrently", models.ErrConflict)
}

// applyCarPolicy is best effort: the booking write has already committed, so
// failures are logged rather than returned.
func (bs *BookingService) applyCarPolicy(ctx context.Context, carID primitive.ObjectID, from, to models.BookingStatus) {
	carFrom, carTo, ok := bs.policy.carStatusChange(from, to)
	if !ok {
		return
	}
	if carTo == models.CarAvailable {
		_, held, err := bs.bookingsRepo.ListBookings(ctx, models.BookingQuery{
			CarID:      &carID,
			Statuses:   bs.policy.holdingStatuses(),
			Pagination: models.Pagination{Page: 1, Limit: 1},
		})
		if err != nil {
			bs.logger.Error("failed to check car holds", "car_id", carID.Hex(), "error", err)
			return
		}
		if held > 0 {
			bs.logger.Info("car still held by another booking", "car_id", carID.Hex())
			return
		}
	}
	swapped, err := bs.carsRepo.SwapCarStatus(ctx, carID, carFrom, carTo)
	if err != nil {
		bs.logger.Error("failed to update car status",
			"car_id", carID.Hex(),
			"policy", bs.policy.CarStatus,
			"error", err,
		)
		return
	}
	if swapped {
		bs.logger.Info("car status changed", "car_id", carID.Hex(), "from", carFrom, "to", carTo)
	}
}
