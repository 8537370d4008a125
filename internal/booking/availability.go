package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/minibnb/minibnb/internal/apperr"
)

// QueryRange is the normalized date window an availability answer covers.
type QueryRange struct {
	StartDate Date `json:"start_date"`
	EndDate   Date `json:"end_date"`
}

// Availability reports the already-booked sub-intervals of a listing that
// overlap a query range.
type Availability struct {
	ListingID     int64      `json:"listing_id"`
	IsActive      bool       `json:"is_active"`
	BookedPeriods []Period   `json:"booked_periods"`
	QueryRange    QueryRange `json:"query_range"`
}

// Availability computes the booked periods of a listing overlapping
// [start, end]. A zero start defaults to today (UTC); a zero end defaults to
// start plus three calendar months. A failed existence lookup is reported
// exactly like a missing listing: availability is never reported for a
// listing that could not be verified.
func (s *Service) Availability(ctx context.Context, listingID int64, start, end Date) (*Availability, error) {
	if start.IsZero() {
		start = Today()
	}
	if end.IsZero() {
		end = start.AddMonths(3)
	}

	listing, err := s.db.ListingSummary(ctx, listingID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.Warn().Err(err).Int64("listing_id", listingID).Msg("listing lookup failed, reporting not found")
		}
		return nil, apperr.NotFound("listing not found")
	}

	periods, err := s.db.BookingPeriods(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("fetch bookings for listing %d: %w", listingID, err)
	}

	booked := make([]Period, 0, len(periods))
	for _, p := range periods {
		if p.Overlaps(start, end) {
			booked = append(booked, p)
		}
	}

	return &Availability{
		ListingID:     listingID,
		IsActive:      listing.IsActive,
		BookedPeriods: booked,
		QueryRange:    QueryRange{StartDate: start, EndDate: end},
	}, nil
}
