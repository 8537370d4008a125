package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/minibnb/minibnb/internal/booking"
)

func (s *Store) ListingSummary(ctx context.Context, listingID int64) (booking.ListingSummary, error) {
	var ls booking.ListingSummary
	err := s.pool.QueryRow(ctx,
		`SELECT id, price, max_guests, is_active FROM listings WHERE id = $1`, listingID,
	).Scan(&ls.ID, &ls.Price, &ls.MaxGuests, &ls.IsActive)
	if err != nil {
		return booking.ListingSummary{}, mapNotFound(err, booking.ErrNotFound)
	}
	return ls, nil
}

func (s *Store) BookingPeriods(ctx context.Context, listingID int64) ([]booking.Period, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT check_in, check_out FROM bookings WHERE listing_id = $1`, listingID)
	if err != nil {
		return nil, fmt.Errorf("query booking periods: %w", err)
	}
	defer rows.Close()

	var periods []booking.Period
	for rows.Next() {
		var checkIn, checkOut time.Time
		if err := rows.Scan(&checkIn, &checkOut); err != nil {
			return nil, fmt.Errorf("scan booking period: %w", err)
		}
		periods = append(periods, booking.Period{
			CheckIn:  booking.Date{Time: checkIn},
			CheckOut: booking.Date{Time: checkOut},
		})
	}
	return periods, rows.Err()
}

func (s *Store) InsertBooking(ctx context.Context, guestID uuid.UUID, nb booking.NewBooking, totalPrice float64) (*booking.Booking, error) {
	b := booking.Booking{
		ListingID:  nb.ListingID,
		GuestID:    guestID,
		CheckIn:    nb.CheckIn,
		CheckOut:   nb.CheckOut,
		GuestCount: nb.GuestCount,
		TotalPrice: totalPrice,
	}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO bookings (listing_id, guest_id, check_in, check_out, guest_count, total_price)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`,
		nb.ListingID, guestID, nb.CheckIn.Time, nb.CheckOut.Time, nb.GuestCount, totalPrice,
	).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert booking: %w", err)
	}
	return &b, nil
}

func (s *Store) Booking(ctx context.Context, id int64) (*booking.Booking, error) {
	var (
		b                 booking.Booking
		checkIn, checkOut time.Time
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, listing_id, guest_id, check_in, check_out, guest_count, total_price, created_at
		FROM bookings WHERE id = $1`, id,
	).Scan(&b.ID, &b.ListingID, &b.GuestID, &checkIn, &checkOut, &b.GuestCount, &b.TotalPrice, &b.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err, booking.ErrNotFound)
	}
	b.CheckIn = booking.Date{Time: checkIn}
	b.CheckOut = booking.Date{Time: checkOut}
	return &b, nil
}

func (s *Store) BookingsByGuest(ctx context.Context, guestID uuid.UUID, limit, offset int) ([]booking.Booking, int64, error) {
	return s.bookings(ctx, `guest_id = $1`, guestID, limit, offset)
}

func (s *Store) BookingsByListing(ctx context.Context, listingID int64, limit, offset int) ([]booking.Booking, int64, error) {
	return s.bookings(ctx, `listing_id = $1`, listingID, limit, offset)
}

func (s *Store) bookings(ctx context.Context, cond string, arg any, limit, offset int) ([]booking.Booking, int64, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(`
		SELECT id, listing_id, guest_id, check_in, check_out, guest_count, total_price,
			created_at, count(*) OVER() AS total
		FROM bookings WHERE %s ORDER BY check_in DESC LIMIT $2 OFFSET $3`, cond),
		arg, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var (
		out   []booking.Booking
		total int64
	)
	for rows.Next() {
		var (
			b                 booking.Booking
			checkIn, checkOut time.Time
		)
		if err := rows.Scan(&b.ID, &b.ListingID, &b.GuestID, &checkIn, &checkOut,
			&b.GuestCount, &b.TotalPrice, &b.CreatedAt, &total); err != nil {
			return nil, 0, fmt.Errorf("scan booking: %w", err)
		}
		b.CheckIn = booking.Date{Time: checkIn}
		b.CheckOut = booking.Date{Time: checkOut}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings: %w", err)
	}
	if out == nil {
		out = []booking.Booking{}
	}
	return out, total, nil
}
