package routes

import (
	"errors"
	"net/http"

	"github.com/minibnb/minibnb/internal/apperr"
	"github.com/minibnb/minibnb/internal/httpx"
	appmw "github.com/minibnb/minibnb/internal/http/middleware"
	"github.com/minibnb/minibnb/internal/listing"
	"github.com/minibnb/minibnb/internal/store"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := appmw.UserID(r.Context())

	p, err := s.Profiles.Profile(r.Context(), userID)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			httpx.Error(w, apperr.NotFound("profile not found"))
			return
		}
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, p, nil)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := appmw.UserID(r.Context())

	var upd store.ProfileUpdate
	if err := httpx.Decode(r, &upd); err != nil {
		httpx.Error(w, err)
		return
	}

	p, err := s.Profiles.UpdateProfile(r.Context(), userID, upd)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			httpx.Error(w, apperr.NotFound("profile not found"))
			return
		}
		httpx.Error(w, err)
		return
	}
	httpx.OK(w, p, nil)
}
