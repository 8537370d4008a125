package booking

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/minibnb/minibnb/internal/apperr"
)

// fakePersistence is an in-memory Persistence for service tests.
type fakePersistence struct {
	listing    ListingSummary
	listingErr error

	periods    []Period
	periodsErr error

	inserted  *Booking
	insertErr error
	nextID    int64
}

func (f *fakePersistence) ListingSummary(context.Context, int64) (ListingSummary, error) {
	if f.listingErr != nil {
		return ListingSummary{}, f.listingErr
	}
	return f.listing, nil
}

func (f *fakePersistence) BookingPeriods(context.Context, int64) ([]Period, error) {
	if f.periodsErr != nil {
		return nil, f.periodsErr
	}
	return f.periods, nil
}

func (f *fakePersistence) InsertBooking(_ context.Context, guestID uuid.UUID, nb NewBooking, totalPrice float64) (*Booking, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.nextID++
	f.inserted = &Booking{
		ID:         f.nextID,
		ListingID:  nb.ListingID,
		GuestID:    guestID,
		CheckIn:    nb.CheckIn,
		CheckOut:   nb.CheckOut,
		GuestCount: nb.GuestCount,
		TotalPrice: totalPrice,
	}
	return f.inserted, nil
}

func (f *fakePersistence) BookingsByGuest(context.Context, uuid.UUID, int, int) ([]Booking, int64, error) {
	return nil, 0, nil
}

func (f *fakePersistence) BookingsByListing(context.Context, int64, int, int) ([]Booking, int64, error) {
	return nil, 0, nil
}

func activeListing() ListingSummary {
	return ListingSummary{ID: 42, Price: 100, MaxGuests: 4, IsActive: true}
}

func newRequest(t *testing.T, in, out string) NewBooking {
	t.Helper()
	return NewBooking{
		ListingID:  42,
		CheckIn:    date(t, in),
		CheckOut:   date(t, out),
		GuestCount: 2,
	}
}

func TestCreateBooking(t *testing.T) {
	db := &fakePersistence{listing: activeListing()}
	s := NewService(db)

	b, err := s.Create(context.Background(), uuid.New(), newRequest(t, "2024-06-01", "2024-06-05"))
	if err != nil {
		t.Fatal(err)
	}
	if b.TotalPrice != 400 {
		t.Errorf("total price = %v, want 4 nights x 100", b.TotalPrice)
	}
	if db.inserted == nil {
		t.Fatal("booking not persisted")
	}
}

func TestCreateBookingListingGone(t *testing.T) {
	for name, db := range map[string]*fakePersistence{
		"missing":  {listingErr: ErrNotFound},
		"inactive": {listing: ListingSummary{ID: 42, Price: 100, MaxGuests: 4, IsActive: false}},
	} {
		t.Run(name, func(t *testing.T) {
			s := NewService(db)
			_, err := s.Create(context.Background(), uuid.New(), newRequest(t, "2024-06-01", "2024-06-05"))
			if apperr.StatusOf(err) != http.StatusNotFound {
				t.Errorf("status = %d, want 404 (%v)", apperr.StatusOf(err), err)
			}
			if db.inserted != nil {
				t.Error("booking persisted despite rejection")
			}
		})
	}
}

func TestCreateBookingTooManyGuests(t *testing.T) {
	db := &fakePersistence{listing: activeListing()}
	s := NewService(db)

	req := newRequest(t, "2024-06-01", "2024-06-05")
	req.GuestCount = 5
	_, err := s.Create(context.Background(), uuid.New(), req)
	if apperr.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 (%v)", apperr.StatusOf(err), err)
	}
	if got := apperr.MessageOf(err); got != "maximum 4 guests allowed" {
		t.Errorf("message = %q", got)
	}
}

func TestCreateBookingConflict(t *testing.T) {
	db := &fakePersistence{
		listing: activeListing(),
		periods: []Period{{CheckIn: date(t, "2024-06-10"), CheckOut: date(t, "2024-06-15")}},
	}
	s := NewService(db)

	// Requested check-in on an existing checkout day: boundary collision is
	// still a conflict.
	_, err := s.Create(context.Background(), uuid.New(), newRequest(t, "2024-06-15", "2024-06-20"))
	if apperr.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (%v)", apperr.StatusOf(err), err)
	}
	if got := apperr.MessageOf(err); got != "listing is not available for these dates" {
		t.Errorf("message = %q", got)
	}
	if db.inserted != nil {
		t.Error("conflicting booking persisted")
	}

	// The day after the checkout is free.
	if _, err := s.Create(context.Background(), uuid.New(), newRequest(t, "2024-06-16", "2024-06-20")); err != nil {
		t.Errorf("non-overlapping booking rejected: %v", err)
	}
}

func TestCreateBookingConflictCheckFailure(t *testing.T) {
	db := &fakePersistence{listing: activeListing(), periodsErr: errors.New("db down")}
	s := NewService(db)

	// A failed conflict check must never fall through to "no conflict".
	_, err := s.Create(context.Background(), uuid.New(), newRequest(t, "2024-06-01", "2024-06-05"))
	if err == nil {
		t.Fatal("booking created without a conflict check")
	}
	if db.inserted != nil {
		t.Error("booking persisted after failed conflict check")
	}
}

func TestAvailabilityDefaults(t *testing.T) {
	db := &fakePersistence{listing: activeListing()}
	s := NewService(db)

	av, err := s.Availability(context.Background(), 42, Date{}, Date{})
	if err != nil {
		t.Fatal(err)
	}
	today := Today()
	if !av.QueryRange.StartDate.Equal(today.Time) {
		t.Errorf("default start = %s, want today", av.QueryRange.StartDate)
	}
	if !av.QueryRange.EndDate.Equal(today.AddMonths(3).Time) {
		t.Errorf("default end = %s, want start + 3 months", av.QueryRange.EndDate)
	}

	// End defaults relative to an explicit start, not to today.
	start := date(t, "2030-01-15")
	av, err = s.Availability(context.Background(), 42, start, Date{})
	if err != nil {
		t.Fatal(err)
	}
	if got := av.QueryRange.EndDate.String(); got != "2030-04-15" {
		t.Errorf("end for explicit start = %s, want 2030-04-15", got)
	}
}

func TestAvailabilityEmptyNeverNil(t *testing.T) {
	db := &fakePersistence{listing: activeListing()}
	s := NewService(db)

	av, err := s.Availability(context.Background(), 42, Date{}, Date{})
	if err != nil {
		t.Fatal(err)
	}
	if av.BookedPeriods == nil {
		t.Error("BookedPeriods is nil, want empty slice")
	}
	if len(av.BookedPeriods) != 0 {
		t.Errorf("BookedPeriods = %v", av.BookedPeriods)
	}
}

func TestAvailabilityFiltersToRange(t *testing.T) {
	db := &fakePersistence{
		listing: activeListing(),
		periods: []Period{
			{CheckIn: date(t, "2024-05-01"), CheckOut: date(t, "2024-05-05")}, // before
			{CheckIn: date(t, "2024-06-10"), CheckOut: date(t, "2024-06-15")}, // inside
			{CheckIn: date(t, "2024-06-28"), CheckOut: date(t, "2024-07-05")}, // straddles end
			{CheckIn: date(t, "2024-08-01"), CheckOut: date(t, "2024-08-05")}, // after
		},
	}
	s := NewService(db)

	av, err := s.Availability(context.Background(), 42, date(t, "2024-06-01"), date(t, "2024-06-30"))
	if err != nil {
		t.Fatal(err)
	}
	if len(av.BookedPeriods) != 2 {
		t.Fatalf("booked periods = %v, want the two overlapping ones", av.BookedPeriods)
	}
	if av.BookedPeriods[0].CheckIn.String() != "2024-06-10" {
		t.Errorf("first period = %v", av.BookedPeriods[0])
	}
	if av.BookedPeriods[1].CheckOut.String() != "2024-07-05" {
		t.Errorf("second period = %v", av.BookedPeriods[1])
	}
}

func TestAvailabilityListingLookupFailures(t *testing.T) {
	for name, lookupErr := range map[string]error{
		"missing listing": ErrNotFound,
		"lookup failure":  errors.New("db down"),
	} {
		t.Run(name, func(t *testing.T) {
			s := NewService(&fakePersistence{listingErr: lookupErr})
			_, err := s.Availability(context.Background(), 42, Date{}, Date{})
			if apperr.StatusOf(err) != http.StatusNotFound {
				t.Errorf("status = %d, want 404 (%v)", apperr.StatusOf(err), err)
			}
		})
	}
}

func TestAvailabilityPeriodsFailure(t *testing.T) {
	s := NewService(&fakePersistence{listing: activeListing(), periodsErr: errors.New("db down")})
	_, err := s.Availability(context.Background(), 42, Date{}, Date{})
	if err == nil {
		t.Fatal("want error when periods cannot be fetched")
	}
	if apperr.StatusOf(err) != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", apperr.StatusOf(err))
	}
}

// The availability report and the booking guard must agree: any range
// availability reports as free books successfully, any reported-booked range
// is rejected.
func TestAvailabilityAndGuardAgree(t *testing.T) {
	db := &fakePersistence{
		listing: activeListing(),
		periods: []Period{{CheckIn: date(t, "2024-06-10"), CheckOut: date(t, "2024-06-15")}},
	}
	s := NewService(db)

	ranges := []struct{ in, out string }{
		{"2024-06-01", "2024-06-05"},
		{"2024-06-05", "2024-06-10"},
		{"2024-06-12", "2024-06-13"},
		{"2024-06-15", "2024-06-20"},
		{"2024-06-16", "2024-06-20"},
	}
	for _, r := range ranges {
		start, end := date(t, r.in), date(t, r.out)
		av, err := s.Availability(context.Background(), 42, start, end)
		if err != nil {
			t.Fatal(err)
		}
		conflict, err := s.HasConflict(context.Background(), 42, start, end)
		if err != nil {
			t.Fatal(err)
		}
		if (len(av.BookedPeriods) > 0) != conflict {
			t.Errorf("[%s, %s]: availability reports %d booked periods but HasConflict = %v",
				r.in, r.out, len(av.BookedPeriods), conflict)
		}
	}
}
