package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"github.com/minibnb/minibnb/internal/apperr"
	"github.com/minibnb/minibnb/internal/booking"
	"github.com/minibnb/minibnb/internal/httpx"
	appmw "github.com/minibnb/minibnb/internal/http/middleware"
	"github.com/minibnb/minibnb/internal/jobs"
)

type createBookingRequest struct {
	ListingID  int64  `json:"listing_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	GuestCount int    `json:"guest_count"`
}

func (s *Server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	userID, _ := appmw.UserID(r.Context())

	var req createBookingRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	if req.ListingID <= 0 {
		httpx.Error(w, apperr.BadRequest("listing_id required"))
		return
	}
	checkIn, err := booking.ParseDate(req.CheckIn)
	if err != nil {
		httpx.Error(w, apperr.BadRequest("check_in must be a valid YYYY-MM-DD date"))
		return
	}
	checkOut, err := booking.ParseDate(req.CheckOut)
	if err != nil {
		httpx.Error(w, apperr.BadRequest("check_out must be a valid YYYY-MM-DD date"))
		return
	}
	if !checkOut.After(checkIn.Time) {
		httpx.Error(w, apperr.BadRequest("check_out must be after check_in"))
		return
	}
	if req.GuestCount == 0 {
		req.GuestCount = 1
	}
	if req.GuestCount < 0 {
		httpx.Error(w, apperr.BadRequest("guest_count must be positive"))
		return
	}

	b, err := s.Bookings.Create(r.Context(), userID, booking.NewBooking{
		ListingID:  req.ListingID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		GuestCount: req.GuestCount,
	})
	if err != nil {
		httpx.Error(w, err)
		return
	}

	// The cached availability view for this listing is now stale.
	if err := s.Cache.InvalidateBooking(r.Context(), b.ListingID); err != nil {
		httpx.Error(w, fmt.Errorf("invalidate availability cache: %w", err))
		return
	}

	s.enqueueBookingConfirmed(b)

	httpx.Created(w, b)
}

// enqueueBookingConfirmed queues the confirmation email. Best effort: a full
// queue never fails a booking that is already persisted.
func (s *Server) enqueueBookingConfirmed(b *booking.Booking) {
	if s.Jobs == nil {
		return
	}
	payload, _ := json.Marshal(jobs.BookingConfirmedPayload{
		BookingID: b.ID,
		GuestID:   b.GuestID.String(),
	})
	task := asynq.NewTask(jobs.TaskBookingConfirmed, payload)
	info, err := s.Jobs.Enqueue(task,
		asynq.Queue("notify"),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	)
	if err != nil {
		log.Error().Err(err).Int64("booking_id", b.ID).Msg("enqueue booking confirmation failed")
		return
	}
	log.Info().Str("task_id", info.ID).Int64("booking_id", b.ID).Msg("booking confirmation queued")
}

func (s *Server) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	userID, _ := appmw.UserID(r.Context())

	page := httpx.ParsePage(r)
	bookings, total, err := s.Bookings.ByGuest(r.Context(), userID, page.Limit, page.Offset())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, bookings, httpx.NewMeta(total, page.Page, page.Limit))
}

func (s *Server) handleAvailability(w http.ResponseWriter, r *http.Request) {
	id, err := listingID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	q := r.URL.Query()
	var start, end booking.Date
	if v := q.Get("start_date"); v != "" {
		if start, err = booking.ParseDate(v); err != nil {
			httpx.Error(w, apperr.BadRequest("start_date must be a valid YYYY-MM-DD date"))
			return
		}
	}
	if v := q.Get("end_date"); v != "" {
		if end, err = booking.ParseDate(v); err != nil {
			httpx.Error(w, apperr.BadRequest("end_date must be a valid YYYY-MM-DD date"))
			return
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start.Time) {
		httpx.Error(w, apperr.BadRequest("end_date must be >= start_date"))
		return
	}

	av, err := s.Bookings.Availability(r.Context(), id, start, end)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, av, nil)
}
