package routes

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/minibnb/minibnb/internal/amenities"
	"github.com/minibnb/minibnb/internal/apperr"
	"github.com/minibnb/minibnb/internal/httpx"
	appmw "github.com/minibnb/minibnb/internal/http/middleware"
	"github.com/minibnb/minibnb/internal/listing"
)

func listingID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "listingID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("listing ID must be a number")
	}
	return id, nil
}

func (s *Server) handleListListings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var f listing.Filter
	f.City = q.Get("city")
	f.Query = q.Get("q")
	f.PropertyType = q.Get("property_type")
	if v, err := strconv.ParseFloat(q.Get("min_price"), 64); err == nil {
		f.MinPrice = v
	}
	if v, err := strconv.ParseFloat(q.Get("max_price"), 64); err == nil {
		f.MaxPrice = v
	}
	if v, err := strconv.Atoi(q.Get("guests")); err == nil {
		f.Guests = v
	}
	if v, err := strconv.Atoi(q.Get("min_bedrooms")); err == nil {
		f.MinBedrooms = v
	}
	if v, err := uuid.Parse(q.Get("host_id")); err == nil {
		f.HostID = v
	}

	page := httpx.ParsePage(r)
	listings, total, err := s.Listings.List(r.Context(), f, page.Limit, page.Offset())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, listings, httpx.NewMeta(total, page.Page, page.Limit))
}

func (s *Server) handleGetListing(w http.ResponseWriter, r *http.Request) {
	id, err := listingID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	l, err := s.Listings.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, l, nil)
}

func (s *Server) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	userID, _ := appmw.UserID(r.Context())

	var nl listing.NewListing
	if err := httpx.Decode(r, &nl); err != nil {
		httpx.Error(w, err)
		return
	}
	if err := validateNewListing(nl); err != nil {
		httpx.Error(w, err)
		return
	}

	l, err := s.Listings.Create(r.Context(), userID, nl)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	// A new listing makes every cached collection view stale. The class keeps
	// '?' literal; a bare '?' is a one-character wildcard in redis globs.
	if err := s.Cache.InvalidatePattern(r.Context(), "cache:/listings[?]*"); err != nil {
		httpx.Error(w, fmt.Errorf("invalidate listings cache: %w", err))
		return
	}

	httpx.Created(w, l)
}

func (s *Server) handleUpdateListing(w http.ResponseWriter, r *http.Request) {
	userID, _ := appmw.UserID(r.Context())
	id, err := listingID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var upd listing.Update
	if err := httpx.Decode(r, &upd); err != nil {
		httpx.Error(w, err)
		return
	}

	l, err := s.Listings.Update(r.Context(), id, userID, upd)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := s.Cache.InvalidateListing(r.Context(), id); err != nil {
		httpx.Error(w, fmt.Errorf("invalidate listing cache: %w", err))
		return
	}

	httpx.OK(w, l, nil)
}

func (s *Server) handleDeleteListing(w http.ResponseWriter, r *http.Request) {
	userID, _ := appmw.UserID(r.Context())
	id, err := listingID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	if err := s.Listings.Delete(r.Context(), id, userID); err != nil {
		httpx.Error(w, err)
		return
	}

	if err := s.Cache.InvalidateListing(r.Context(), id); err != nil {
		httpx.Error(w, fmt.Errorf("invalidate listing cache: %w", err))
		return
	}

	httpx.OK(w, map[string]string{"message": "listing deleted"}, nil)
}

func (s *Server) handleListingBookings(w http.ResponseWriter, r *http.Request) {
	userID, _ := appmw.UserID(r.Context())
	id, err := listingID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	ok, err := s.Listings.CanViewBookings(r.Context(), id, userID)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	if !ok {
		httpx.Error(w, apperr.Forbidden("you do not have permission to view bookings"))
		return
	}

	page := httpx.ParsePage(r)
	bookings, total, err := s.Bookings.ByListing(r.Context(), id, page.Limit, page.Offset())
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, bookings, httpx.NewMeta(total, page.Page, page.Limit))
}

func (s *Server) handleAddCoHost(w http.ResponseWriter, r *http.Request) {
	userID, _ := appmw.UserID(r.Context())
	id, err := listingID(r)
	if err != nil {
		httpx.Error(w, err)
		return
	}

	var grant listing.CoHostGrant
	if err := httpx.Decode(r, &grant); err != nil {
		httpx.Error(w, err)
		return
	}
	if grant.CoHostID == uuid.Nil {
		httpx.Error(w, apperr.BadRequest("co_host_id required"))
		return
	}

	ch, err := s.Listings.AddCoHost(r.Context(), id, userID, grant)
	if err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Created(w, ch)
}

func (s *Server) handleAmenities(w http.ResponseWriter, _ *http.Request) {
	httpx.OK(w, map[string]any{
		"categories": amenities.Categories,
		"amenities":  amenities.Catalogue,
	}, nil)
}

func validateNewListing(nl listing.NewListing) error {
	var missing []string
	if strings.TrimSpace(nl.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(nl.City) == "" {
		missing = append(missing, "city")
	}
	if nl.Price <= 0 {
		missing = append(missing, "price")
	}
	if nl.MaxGuests <= 0 {
		missing = append(missing, "max_guests")
	}
	if len(missing) > 0 {
		return apperr.BadRequest("missing or invalid fields: " + strings.Join(missing, ", "))
	}
	for _, slug := range nl.Amenities {
		if !amenities.Valid(slug) {
			return apperr.BadRequest("unknown amenity: " + slug)
		}
	}
	return nil
}
