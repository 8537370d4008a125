package routes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/minibnb/minibnb/internal/auth"
	"github.com/minibnb/minibnb/internal/booking"
	"github.com/minibnb/minibnb/internal/cache"
	"github.com/minibnb/minibnb/internal/listing"
	"github.com/minibnb/minibnb/internal/store"
)

// memDB is an in-memory implementation of the persistence contracts, enough
// to drive the router end to end.
type memDB struct {
	mu       sync.Mutex
	hostID   uuid.UUID
	listings map[int64]*listing.Listing
	bookings []booking.Booking
	nextID   int64
}

func newMemDB(hostID uuid.UUID) *memDB {
	return &memDB{hostID: hostID, listings: make(map[int64]*listing.Listing)}
}

func (db *memDB) addListing(l listing.Listing) int64 {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextID++
	l.ID = db.nextID
	if l.HostID == uuid.Nil {
		l.HostID = db.hostID
	}
	db.listings[l.ID] = &l
	return l.ID
}

// listing.Persistence

func (db *memDB) Listing(_ context.Context, id int64) (*listing.Listing, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.listings[id]
	if !ok {
		return nil, listing.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (db *memDB) Listings(_ context.Context, f listing.Filter, limit, offset int) ([]listing.Listing, int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []listing.Listing
	for _, l := range db.listings {
		if f.City != "" && l.City != f.City {
			continue
		}
		out = append(out, *l)
	}
	return out, int64(len(out)), nil
}

func (db *memDB) InsertListing(_ context.Context, hostID uuid.UUID, nl listing.NewListing) (*listing.Listing, error) {
	id := db.addListing(listing.Listing{
		HostID:    hostID,
		Name:      nl.Name,
		City:      nl.City,
		Price:     nl.Price,
		MaxGuests: nl.MaxGuests,
		IsActive:  true,
	})
	return db.Listing(context.Background(), id)
}

func (db *memDB) UpdateListing(_ context.Context, id int64, upd listing.Update) (*listing.Listing, error) {
	db.mu.Lock()
	l, ok := db.listings[id]
	if ok {
		if upd.Name != nil {
			l.Name = *upd.Name
		}
		if upd.Price != nil {
			l.Price = *upd.Price
		}
	}
	db.mu.Unlock()
	if !ok {
		return nil, listing.ErrNotFound
	}
	return db.Listing(context.Background(), id)
}

func (db *memDB) DeleteListing(_ context.Context, id int64) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.listings, id)
	return nil
}

func (db *memDB) HostID(_ context.Context, listingID int64) (uuid.UUID, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.listings[listingID]
	if !ok {
		return uuid.Nil, listing.ErrNotFound
	}
	return l.HostID, nil
}

func (db *memDB) CoHost(context.Context, int64, uuid.UUID) (*listing.CoHost, error) {
	return nil, listing.ErrNotFound
}

func (db *memDB) InsertCoHost(_ context.Context, listingID int64, hostID uuid.UUID, grant listing.CoHostGrant) (*listing.CoHost, error) {
	return &listing.CoHost{ID: 1, ListingID: listingID, HostID: hostID, CoHostID: grant.CoHostID}, nil
}

func (db *memDB) IsHost(context.Context, uuid.UUID) (bool, error) {
	return true, nil
}

// booking.Persistence

func (db *memDB) ListingSummary(_ context.Context, listingID int64) (booking.ListingSummary, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	l, ok := db.listings[listingID]
	if !ok {
		return booking.ListingSummary{}, booking.ErrNotFound
	}
	return booking.ListingSummary{ID: l.ID, Price: l.Price, MaxGuests: l.MaxGuests, IsActive: l.IsActive}, nil
}

func (db *memDB) BookingPeriods(_ context.Context, listingID int64) ([]booking.Period, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []booking.Period
	for _, b := range db.bookings {
		if b.ListingID == listingID {
			out = append(out, booking.Period{CheckIn: b.CheckIn, CheckOut: b.CheckOut})
		}
	}
	return out, nil
}

func (db *memDB) InsertBooking(_ context.Context, guestID uuid.UUID, nb booking.NewBooking, totalPrice float64) (*booking.Booking, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextID++
	b := booking.Booking{
		ID:         db.nextID,
		ListingID:  nb.ListingID,
		GuestID:    guestID,
		CheckIn:    nb.CheckIn,
		CheckOut:   nb.CheckOut,
		GuestCount: nb.GuestCount,
		TotalPrice: totalPrice,
		CreatedAt:  time.Now(),
	}
	db.bookings = append(db.bookings, b)
	return &b, nil
}

func (db *memDB) BookingsByGuest(_ context.Context, guestID uuid.UUID, _, _ int) ([]booking.Booking, int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := []booking.Booking{}
	for _, b := range db.bookings {
		if b.GuestID == guestID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

func (db *memDB) BookingsByListing(_ context.Context, listingID int64, _, _ int) ([]booking.Booking, int64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	out := []booking.Booking{}
	for _, b := range db.bookings {
		if b.ListingID == listingID {
			out = append(out, b)
		}
	}
	return out, int64(len(out)), nil
}

// ProfileStore

func (db *memDB) Profile(_ context.Context, id uuid.UUID) (*store.Profile, error) {
	return &store.Profile{ID: id, Email: "guest@example.com", FirstName: "Alex", IsHost: true}, nil
}

func (db *memDB) UpdateProfile(_ context.Context, id uuid.UUID, _ store.ProfileUpdate) (*store.Profile, error) {
	return db.Profile(context.Background(), id)
}

var testBearer = auth.Bearer{Secret: []byte("test-secret")}

func newTestServer(db *memDB) *Server {
	return New(ServerOptions{
		Listings: listing.NewService(db),
		Bookings: booking.NewService(db),
		Profiles: db,
		Cache:    cache.NewStore(cache.NewMemoryKeyStore()),
		Verifier: testBearer,
	})
}

func doJSON(t *testing.T, h http.Handler, method, target, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestCachedListingLifecycle(t *testing.T) {
	host := uuid.New()
	db := newMemDB(host)
	id := db.addListing(listing.Listing{Name: "Canal loft", City: "Amsterdam", Price: 120, MaxGuests: 2, IsActive: true})
	s := newTestServer(db)
	token := testBearer.Issue(host, time.Hour)
	target := fmt.Sprintf("/listings/%d", id)

	// Miss, then hit: same payload, same validator.
	first := doJSON(t, s.Router, http.MethodGet, target, "", "")
	require.Equal(t, http.StatusOK, first.Code)
	etag := first.Header().Get("ETag")
	require.True(t, strings.HasPrefix(etag, `W/"`), "ETag = %q", etag)
	require.Contains(t, first.Header().Get("Cache-Control"), "private, max-age=")

	second := doJSON(t, s.Router, http.MethodGet, target, "", "")
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Equal(t, etag, second.Header().Get("ETag"))

	// Conditional request against the cached entry.
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("If-None-Match", etag)
	rr := httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusNotModified, rr.Code)
	require.Zero(t, rr.Body.Len())

	// A write invalidates; the next read returns the new state, never the
	// cached pre-write payload.
	patch := doJSON(t, s.Router, http.MethodPatch, target, token, `{"name":"Harbor loft"}`)
	require.Equal(t, http.StatusOK, patch.Code)

	after := doJSON(t, s.Router, http.MethodGet, target, "", "")
	require.Equal(t, http.StatusOK, after.Code)
	require.Contains(t, after.Body.String(), "Harbor loft")
	require.NotEqual(t, etag, after.Header().Get("ETag"))

	// The stale validator no longer matches.
	req = httptest.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("If-None-Match", etag)
	rr = httptest.NewRecorder()
	s.Router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestBookingInvalidatesAvailability(t *testing.T) {
	host := uuid.New()
	guest := uuid.New()
	db := newMemDB(host)
	id := db.addListing(listing.Listing{Name: "Cabin", City: "Oslo", Price: 80, MaxGuests: 4, IsActive: true})
	s := newTestServer(db)
	token := testBearer.Issue(guest, time.Hour)
	target := fmt.Sprintf("/listings/%d/availability?start_date=2030-06-01&end_date=2030-06-30", id)

	before := doJSON(t, s.Router, http.MethodGet, target, "", "")
	require.Equal(t, http.StatusOK, before.Code)
	require.Contains(t, before.Body.String(), `"booked_periods":[]`)

	body := fmt.Sprintf(`{"listing_id":%d,"check_in":"2030-06-10","check_out":"2030-06-15","guest_count":2}`, id)
	created := doJSON(t, s.Router, http.MethodPost, "/bookings/", token, body)
	require.Equal(t, http.StatusCreated, created.Code)
	require.Contains(t, created.Body.String(), `"total_price":400`)

	// The cached empty availability must be gone.
	after := doJSON(t, s.Router, http.MethodGet, target, "", "")
	require.Equal(t, http.StatusOK, after.Code)
	require.Contains(t, after.Body.String(), `"check_in":"2030-06-10"`)

	// A second, conflicting booking is rejected.
	conflict := doJSON(t, s.Router, http.MethodPost, "/bookings/", token, body)
	require.Equal(t, http.StatusBadRequest, conflict.Code)
	require.Contains(t, conflict.Body.String(), "not available")
}

func TestCreateListingInvalidatesCollections(t *testing.T) {
	host := uuid.New()
	db := newMemDB(host)
	db.addListing(listing.Listing{Name: "First", City: "Berlin", Price: 50, MaxGuests: 2, IsActive: true})
	s := newTestServer(db)
	token := testBearer.Issue(host, time.Hour)

	before := doJSON(t, s.Router, http.MethodGet, "/listings?page=1", "", "")
	require.Equal(t, http.StatusOK, before.Code)
	require.NotContains(t, before.Body.String(), "Second")

	created := doJSON(t, s.Router, http.MethodPost, "/listings/", token,
		`{"name":"Second","city":"Berlin","price":70,"max_guests":3}`)
	require.Equal(t, http.StatusCreated, created.Code)

	after := doJSON(t, s.Router, http.MethodGet, "/listings?page=1", "", "")
	require.Equal(t, http.StatusOK, after.Code)
	require.Contains(t, after.Body.String(), "Second")
}

func TestListingWriteLeavesOthersCached(t *testing.T) {
	host := uuid.New()
	db := newMemDB(host)
	idA := db.addListing(listing.Listing{Name: "Loft A", City: "Berlin", Price: 50, MaxGuests: 2, IsActive: true})
	idB := db.addListing(listing.Listing{Name: "Loft B", City: "Berlin", Price: 60, MaxGuests: 2, IsActive: true})
	s := newTestServer(db)
	token := testBearer.Issue(host, time.Hour)
	targetB := fmt.Sprintf("/listings/%d", idB)

	first := doJSON(t, s.Router, http.MethodGet, targetB, "", "")
	require.Equal(t, http.StatusOK, first.Code)

	patch := doJSON(t, s.Router, http.MethodPatch, fmt.Sprintf("/listings/%d", idA), token, `{"name":"Loft A2"}`)
	require.Equal(t, http.StatusOK, patch.Code)

	// Mutate B behind the cache. If B's entry survived A's invalidation, the
	// next read still serves the cached payload.
	db.mu.Lock()
	db.listings[idB].Name = "changed underneath"
	db.mu.Unlock()

	second := doJSON(t, s.Router, http.MethodGet, targetB, "", "")
	require.Equal(t, http.StatusOK, second.Code)
	require.Equal(t, first.Body.String(), second.Body.String())
	require.Contains(t, second.Body.String(), "Loft B")
}

func TestWriteRoutesRequireAuth(t *testing.T) {
	db := newMemDB(uuid.New())
	id := db.addListing(listing.Listing{Name: "Flat", City: "Paris", Price: 90, MaxGuests: 2, IsActive: true})
	s := newTestServer(db)

	for _, tc := range []struct{ method, target string }{
		{http.MethodPost, "/listings/"},
		{http.MethodPatch, fmt.Sprintf("/listings/%d", id)},
		{http.MethodDelete, fmt.Sprintf("/listings/%d", id)},
		{http.MethodPost, "/bookings/"},
		{http.MethodGet, "/bookings/me"},
		{http.MethodGet, "/profiles/me"},
	} {
		rr := doJSON(t, s.Router, tc.method, tc.target, "", "")
		require.Equal(t, http.StatusUnauthorized, rr.Code, "%s %s", tc.method, tc.target)
	}
}

func TestBookingValidation(t *testing.T) {
	db := newMemDB(uuid.New())
	id := db.addListing(listing.Listing{Name: "Flat", City: "Paris", Price: 90, MaxGuests: 2, IsActive: true})
	s := newTestServer(db)
	token := testBearer.Issue(uuid.New(), time.Hour)

	for name, body := range map[string]string{
		"missing listing_id":   `{"check_in":"2030-06-01","check_out":"2030-06-05"}`,
		"bad check_in":         fmt.Sprintf(`{"listing_id":%d,"check_in":"junk","check_out":"2030-06-05"}`, id),
		"checkout before":      fmt.Sprintf(`{"listing_id":%d,"check_in":"2030-06-05","check_out":"2030-06-01"}`, id),
		"checkout equals":      fmt.Sprintf(`{"listing_id":%d,"check_in":"2030-06-05","check_out":"2030-06-05"}`, id),
		"negative guest count": fmt.Sprintf(`{"listing_id":%d,"check_in":"2030-06-01","check_out":"2030-06-05","guest_count":-1}`, id),
		"too many guests":      fmt.Sprintf(`{"listing_id":%d,"check_in":"2030-06-01","check_out":"2030-06-05","guest_count":9}`, id),
	} {
		t.Run(name, func(t *testing.T) {
			rr := doJSON(t, s.Router, http.MethodPost, "/bookings/", token, body)
			require.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
		})
	}
}

func TestAvailabilityQueryValidation(t *testing.T) {
	db := newMemDB(uuid.New())
	id := db.addListing(listing.Listing{Name: "Flat", City: "Paris", Price: 90, MaxGuests: 2, IsActive: true})
	s := newTestServer(db)

	rr := doJSON(t, s.Router, http.MethodGet,
		fmt.Sprintf("/listings/%d/availability?start_date=2030-06-30&end_date=2030-06-01", id), "", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, s.Router, http.MethodGet,
		fmt.Sprintf("/listings/%d/availability?start_date=junk", id), "", "")
	require.Equal(t, http.StatusBadRequest, rr.Code)

	rr = doJSON(t, s.Router, http.MethodGet, "/listings/999999/availability", "", "")
	require.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAmenitiesCacheControl(t *testing.T) {
	s := newTestServer(newMemDB(uuid.New()))

	rr := doJSON(t, s.Router, http.MethodGet, "/amenities", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "public, max-age=86400", rr.Header().Get("Cache-Control"))
	require.Empty(t, rr.Header().Get("ETag"))

	var env struct {
		Data struct {
			Amenities []json.RawMessage `json:"amenities"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.NotEmpty(t, env.Data.Amenities)
}

func TestHealthz(t *testing.T) {
	s := newTestServer(newMemDB(uuid.New()))
	rr := doJSON(t, s.Router, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Contains(t, rr.Body.String(), `"status":"ok"`)
}
