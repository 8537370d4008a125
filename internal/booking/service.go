// Package booking implements reservations: the availability engine, the
// overlap guard applied at creation time, and booking queries.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/minibnb/minibnb/internal/apperr"
)

// ErrNotFound is returned by Persistence implementations when a row is
// absent.
var ErrNotFound = errors.New("not found")

// Booking is a confirmed reservation.
type Booking struct {
	ID         int64     `json:"id"`
	ListingID  int64     `json:"listing_id"`
	GuestID    uuid.UUID `json:"guest_id"`
	CheckIn    Date      `json:"check_in"`
	CheckOut   Date      `json:"check_out"`
	GuestCount int       `json:"guest_count"`
	TotalPrice float64   `json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}

// ListingSummary is the slice of a listing the booking domain needs.
type ListingSummary struct {
	ID        int64
	Price     float64
	MaxGuests int
	IsActive  bool
}

// NewBooking is the validated input for Create.
type NewBooking struct {
	ListingID  int64
	CheckIn    Date
	CheckOut   Date
	GuestCount int
}

// Persistence is the relational-store contract the booking domain consumes.
type Persistence interface {
	// ListingSummary returns ErrNotFound when the listing does not exist.
	ListingSummary(ctx context.Context, listingID int64) (ListingSummary, error)

	// BookingPeriods returns every reserved interval for a listing. A nil
	// slice means zero booked periods, never an error.
	BookingPeriods(ctx context.Context, listingID int64) ([]Period, error)

	InsertBooking(ctx context.Context, guestID uuid.UUID, nb NewBooking, totalPrice float64) (*Booking, error)
	BookingsByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]Booking, int64, error)
	BookingsByListing(ctx context.Context, listingID int64, limit, offset int) ([]Booking, int64, error)
}

// Service carries the booking operations.
type Service struct {
	db  Persistence
	log zerolog.Logger
}

// NewService creates a booking service over db.
func NewService(db Persistence) *Service {
	return &Service{
		db:  db,
		log: log.With().Str("component", "booking").Logger(),
	}
}

// Create validates and persists a reservation. The listing must exist and be
// active, the guest count must fit, and the requested dates must not overlap
// any existing booking. No partial booking is ever persisted.
func (s *Service) Create(ctx context.Context, guestID uuid.UUID, nb NewBooking) (*Booking, error) {
	listing, err := s.db.ListingSummary(ctx, nb.ListingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("listing not found or inactive")
		}
		return nil, fmt.Errorf("lookup listing %d: %w", nb.ListingID, err)
	}
	if !listing.IsActive {
		return nil, apperr.NotFound("listing not found or inactive")
	}

	if nb.GuestCount > listing.MaxGuests {
		return nil, apperr.BadRequest(fmt.Sprintf("maximum %d guests allowed", listing.MaxGuests))
	}

	conflict, err := s.HasConflict(ctx, nb.ListingID, nb.CheckIn, nb.CheckOut)
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, apperr.BadRequest("listing is not available for these dates")
	}

	total := float64(Nights(nb.CheckIn, nb.CheckOut)) * listing.Price

	b, err := s.db.InsertBooking(ctx, guestID, nb, total)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	s.log.Info().
		Int64("booking_id", b.ID).
		Int64("listing_id", b.ListingID).
		Str("check_in", b.CheckIn.String()).
		Str("check_out", b.CheckOut.String()).
		Msg("booking created")
	return b, nil
}

// HasConflict reports whether [checkIn, checkOut] overlaps an existing
// booking for the listing. It applies the exact predicate Availability uses;
// a range availability reports as free must never be rejected here.
func (s *Service) HasConflict(ctx context.Context, listingID int64, checkIn, checkOut Date) (bool, error) {
	periods, err := s.db.BookingPeriods(ctx, listingID)
	if err != nil {
		return false, fmt.Errorf("fetch bookings for listing %d: %w", listingID, err)
	}
	for _, p := range periods {
		if p.Overlaps(checkIn, checkOut) {
			return true, nil
		}
	}
	return false, nil
}

// ByGuest returns a guest's bookings, newest check-in first.
func (s *Service) ByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]Booking, int64, error) {
	return s.db.BookingsByGuest(ctx, guestID, limit, offset)
}

// ByListing returns a listing's bookings, newest check-in first. Permission
// checks are the caller's responsibility.
func (s *Service) ByListing(ctx context.Context, listingID int64, limit, offset int) ([]Booking, int64, error) {
	return s.db.BookingsByListing(ctx, listingID, limit, offset)
}
