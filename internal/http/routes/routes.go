// Package routes wires the chi router: route table, handlers, and the
// write-path cache invalidation hooks.
package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/minibnb/minibnb/internal/auth"
	"github.com/minibnb/minibnb/internal/booking"
	"github.com/minibnb/minibnb/internal/cache"
	"github.com/minibnb/minibnb/internal/config"
	"github.com/minibnb/minibnb/internal/httpx"
	appmw "github.com/minibnb/minibnb/internal/http/middleware"
	"github.com/minibnb/minibnb/internal/listing"
	"github.com/minibnb/minibnb/internal/store"
)

// ProfileStore is the slice of the persistence layer the profile handlers
// use directly.
type ProfileStore interface {
	Profile(ctx context.Context, id uuid.UUID) (*store.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd store.ProfileUpdate) (*store.Profile, error)
}

// Enqueuer is the background-job contract; *asynq.Client satisfies it.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type Server struct {
	Router   *chi.Mux
	Listings *listing.Service
	Bookings *booking.Service
	Profiles ProfileStore
	Cache    *cache.Store
	Verifier auth.Verifier
	Jobs     Enqueuer // nil disables notifications
	TTL      config.CacheConfig
}

type ServerOptions struct {
	Listings *listing.Service
	Bookings *booking.Service
	Profiles ProfileStore
	Cache    *cache.Store
	Verifier auth.Verifier
	Jobs     Enqueuer
	TTL      config.CacheConfig
}

func New(opts ServerOptions) *Server {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	s := &Server{
		Router:   r,
		Listings: opts.Listings,
		Bookings: opts.Bookings,
		Profiles: opts.Profiles,
		Cache:    opts.Cache,
		Verifier: opts.Verifier,
		Jobs:     opts.Jobs,
		TTL:      opts.TTL,
	}
	if s.TTL.ListingsTTL == 0 {
		s.TTL.ListingsTTL = 5 * time.Minute
	}
	if s.TTL.ListingTTL == 0 {
		s.TTL.ListingTTL = time.Hour
	}
	if s.TTL.AvailabilityTTL == 0 {
		s.TTL.AvailabilityTTL = 5 * time.Minute
	}

	requireAuth := appmw.RequireAuth(s.Verifier)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]any{
			"message": "Welcome to MiniBnB API",
			"health":  "/healthz",
		})
	})

	r.Route("/listings", func(lr chi.Router) {
		lr.With(cache.Middleware(s.Cache, s.TTL.ListingsTTL)).
			Get("/", s.handleListListings)
		lr.With(cache.Middleware(s.Cache, s.TTL.ListingTTL)).
			Get("/{listingID}", s.handleGetListing)
		lr.With(cache.Middleware(s.Cache, s.TTL.AvailabilityTTL)).
			Get("/{listingID}/availability", s.handleAvailability)

		lr.Group(func(pr chi.Router) {
			pr.Use(requireAuth)
			pr.Post("/", s.handleCreateListing)
			pr.Patch("/{listingID}", s.handleUpdateListing)
			pr.Delete("/{listingID}", s.handleDeleteListing)
			pr.Get("/{listingID}/bookings", s.handleListingBookings)
			pr.Post("/{listingID}/cohosts", s.handleAddCoHost)
		})
	})

	r.Route("/bookings", func(br chi.Router) {
		br.Use(requireAuth)
		br.Get("/me", s.handleMyBookings)
		br.Post("/", s.handleCreateBooking)
	})

	r.Route("/profiles", func(pr chi.Router) {
		pr.Use(requireAuth)
		pr.Get("/me", s.handleGetProfile)
		pr.Patch("/me", s.handleUpdateProfile)
	})

	// Static reference data: cacheable by intermediaries, not worth
	// server-side caching.
	r.With(cache.CacheControl(24 * time.Hour)).Get("/amenities", s.handleAmenities)

	return s
}
