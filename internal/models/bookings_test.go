package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestCanTransition(t *testing.T) {
	all := []BookingStatus{BookingPending, BookingConfirmed, BookingActive, BookingCompleted, BookingCancelled}
	allowed := map[[2]BookingStatus]bool{
		{BookingPending, BookingConfirmed}:   true,
		{BookingPending, BookingCancelled}:   true,
		{BookingConfirmed, BookingActive}:    true,
		{BookingConfirmed, BookingCancelled}: true,
		{BookingActive, BookingCompleted}:    true,
	}

	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]BookingStatus{from, to}]
			assert.Equal(t, want, CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestCheckTransition_ReportsPair(t *testing.T) {
	err := CheckTransition(BookingConfirmed, BookingPending)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	var te *TransitionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, BookingConfirmed, te.From)
	assert.Equal(t, BookingPending, te.To)
	assert.Equal(t, "cannot change booking status from CONFIRMED to PENDING", err.Error())

	assert.NoError(t, CheckTransition(BookingPending, BookingConfirmed))
}

func TestBookingStatusPredicates(t *testing.T) {
	assert.True(t, BookingCompleted.IsTerminal())
	assert.True(t, BookingCancelled.IsTerminal())
	assert.False(t, BookingActive.IsTerminal())

	assert.True(t, BookingPending.IsCancelable())
	assert.True(t, BookingConfirmed.IsCancelable())
	assert.False(t, BookingActive.IsCancelable())
	assert.False(t, BookingCompleted.IsCancelable())

	assert.True(t, BookingActive.Blocks())
	assert.False(t, BookingCancelled.Blocks())
	assert.False(t, BookingCompleted.Blocks())
}

func TestParseBookingStatus(t *testing.T) {
	s, err := ParseBookingStatus(" confirmed ")
	require.NoError(t, err)
	assert.Equal(t, BookingConfirmed, s)

	_, err = ParseBookingStatus("SHIPPED")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestOverlaps_Inclusive(t *testing.T) {
	existing := DateRange{Start: day("2024-06-01"), End: day("2024-06-04")}

	tests := []struct {
		name string
		r    DateRange
		want bool
	}{
		{"inside", DateRange{day("2024-06-02"), day("2024-06-03")}, true},
		{"straddles end", DateRange{day("2024-06-03"), day("2024-06-05")}, true},
		{"touches end", DateRange{day("2024-06-04"), day("2024-06-06")}, true},
		{"touches start", DateRange{day("2024-05-28"), day("2024-06-01")}, true},
		{"same day inside", DateRange{day("2024-06-02"), day("2024-06-02")}, true},
		{"before", DateRange{day("2024-05-20"), day("2024-05-31")}, false},
		{"after", DateRange{day("2024-06-05"), day("2024-06-07")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.r, existing, BoundaryInclusive))
			assert.Equal(t, tt.want, Overlaps(existing, tt.r, BoundaryInclusive))
		})
	}
}

func TestOverlaps_Exclusive(t *testing.T) {
	existing := DateRange{Start: day("2024-06-01"), End: day("2024-06-04")}

	assert.False(t, Overlaps(DateRange{day("2024-06-04"), day("2024-06-06")}, existing, BoundaryExclusive))
	assert.False(t, Overlaps(DateRange{day("2024-05-28"), day("2024-06-01")}, existing, BoundaryExclusive))
	assert.True(t, Overlaps(DateRange{day("2024-06-03"), day("2024-06-05")}, existing, BoundaryExclusive))
	assert.True(t, Overlaps(DateRange{day("2024-06-01"), day("2024-06-01")}, existing, BoundaryExclusive))

	same := DateRange{day("2024-07-01"), day("2024-07-01")}
	assert.True(t, Overlaps(same, same, BoundaryExclusive))
}

func TestOverlapFilter(t *testing.T) {
	carID := primitive.NewObjectID()
	r := DateRange{Start: day("2024-06-01"), End: day("2024-06-04")}

	inclusive := OverlapFilter(carID, r, BoundaryInclusive)
	assert.Equal(t, carID, inclusive["car_id"])
	assert.Equal(t, bson.M{"$in": BlockingStatuses}, inclusive["status"])
	assert.Equal(t, bson.M{"$lte": r.End}, inclusive["start_date"])
	assert.Equal(t, bson.M{"$gte": r.Start}, inclusive["end_date"])
	assert.NotContains(t, inclusive, "$or")

	exclusive := OverlapFilter(carID, r, BoundaryExclusive)
	assert.NotContains(t, exclusive, "start_date")
	or, ok := exclusive["$or"].(bson.A)
	require.True(t, ok)
	assert.Len(t, or, 2)
}

func TestParseBoundaryMode(t *testing.T) {
	m, err := ParseBoundaryMode("")
	require.NoError(t, err)
	assert.Equal(t, BoundaryInclusive, m)

	m, err = ParseBoundaryMode("EXCLUSIVE")
	require.NoError(t, err)
	assert.Equal(t, BoundaryExclusive, m)

	_, err = ParseBoundaryMode("loose")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestDateRangeValidate(t *testing.T) {
	assert.NoError(t, DateRange{day("2024-06-01"), day("2024-06-01")}.Validate())
	assert.ErrorIs(t, DateRange{day("2024-06-02"), day("2024-06-01")}.Validate(), ErrValidation)
	assert.ErrorIs(t, DateRange{End: day("2024-06-01")}.Validate(), ErrValidation)
}

func TestBookingUpdate_SetDoc(t *testing.T) {
	now := time.Now().UTC()
	status := BookingConfirmed
	pickup := "Airport"

	doc := BookingUpdate{Status: &status, PickupLocation: &pickup}.SetDoc(now)
	set, ok := doc["$set"].(bson.M)
	require.True(t, ok)
	assert.Equal(t, BookingConfirmed, set["status"])
	assert.Equal(t, "Airport", set["pickup_location"])
	assert.Equal(t, now, set["updated_at"])
	assert.NotContains(t, set, "dropoff_location")

	assert.True(t, BookingUpdate{}.IsEmpty())
}

func TestBookingQuery_Filter(t *testing.T) {
	assert.Empty(t, BookingQuery{}.Filter())

	userID := primitive.NewObjectID()
	status := BookingActive
	f := BookingQuery{UserID: &userID, Status: &status}.Filter()
	assert.Equal(t, bson.M{"user_id": userID, "status": BookingActive}, f)
}

func TestNewBookingView(t *testing.T) {
	b := &Booking{ID: primitive.NewObjectID(), Status: BookingPending}
	assert.Nil(t, NewBookingView(b, nil, nil).Car)

	agency := &Agency{ID: primitive.NewObjectID(), Name: "Downtown", City: "Lyon", Country: "FR"}
	car := &Car{ID: primitive.NewObjectID(), Make: "Fiat", Model: "Panda", DailyRate: 45}
	view := NewBookingView(b, car, agency)
	require.NotNil(t, view.Car)
	assert.Equal(t, car.ID, view.Car.ID)
	require.NotNil(t, view.Car.Agency)
	assert.Equal(t, "Downtown", view.Car.Agency.Name)
}
