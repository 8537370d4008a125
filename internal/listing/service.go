package listing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/minibnb/minibnb/internal/apperr"
)

// ErrNotFound is returned by Persistence implementations when a row is
// absent.
var ErrNotFound = errors.New("not found")

// Persistence is the relational-store contract the listing domain consumes.
type Persistence interface {
	Listing(ctx context.Context, id int64) (*Listing, error)
	Listings(ctx context.Context, f Filter, limit, offset int) ([]Listing, int64, error)
	InsertListing(ctx context.Context, hostID uuid.UUID, nl NewListing) (*Listing, error)
	UpdateListing(ctx context.Context, id int64, upd Update) (*Listing, error)
	DeleteListing(ctx context.Context, id int64) error

	// HostID returns the owning host of a listing, or ErrNotFound.
	HostID(ctx context.Context, listingID int64) (uuid.UUID, error)

	// CoHost returns the co-host row for (listing, user), or ErrNotFound.
	CoHost(ctx context.Context, listingID int64, userID uuid.UUID) (*CoHost, error)
	InsertCoHost(ctx context.Context, listingID int64, hostID uuid.UUID, grant CoHostGrant) (*CoHost, error)

	// IsHost reports whether a profile is flagged as a host.
	IsHost(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Service carries the listing operations.
type Service struct {
	db  Persistence
	log zerolog.Logger
}

// NewService creates a listing service over db.
func NewService(db Persistence) *Service {
	return &Service{
		db:  db,
		log: log.With().Str("component", "listing").Logger(),
	}
}

// Create inserts a listing for hostID. Only profiles flagged as hosts may
// create listings.
func (s *Service) Create(ctx context.Context, hostID uuid.UUID, nl NewListing) (*Listing, error) {
	isHost, err := s.db.IsHost(ctx, hostID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup profile %s: %w", hostID, err)
	}
	if !isHost {
		return nil, apperr.Forbidden("only hosts can create listings")
	}

	l, err := s.db.InsertListing(ctx, hostID, nl)
	if err != nil {
		return nil, fmt.Errorf("insert listing: %w", err)
	}
	s.log.Info().Int64("listing_id", l.ID).Str("host_id", hostID.String()).Msg("listing created")
	return l, nil
}

// Get returns one listing by id.
func (s *Service) Get(ctx context.Context, id int64) (*Listing, error) {
	l, err := s.db.Listing(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("listing not found")
		}
		return nil, fmt.Errorf("lookup listing %d: %w", id, err)
	}
	return l, nil
}

// List returns active listings matching the filter plus the total match
// count.
func (s *Service) List(ctx context.Context, f Filter, limit, offset int) ([]Listing, int64, error) {
	return s.db.Listings(ctx, f, limit, offset)
}

// Update applies a partial update. The host, or a co-host granted
// can_edit_listing, may edit.
func (s *Service) Update(ctx context.Context, id int64, userID uuid.UUID, upd Update) (*Listing, error) {
	canEdit, err := s.canEdit(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, apperr.Forbidden("you do not have permission to edit this listing")
	}

	l, err := s.db.UpdateListing(ctx, id, upd)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("listing not found")
		}
		return nil, fmt.Errorf("update listing %d: %w", id, err)
	}
	return l, nil
}

// Delete removes a listing. Host only.
func (s *Service) Delete(ctx context.Context, id int64, userID uuid.UUID) error {
	hostID, err := s.db.HostID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("listing not found")
		}
		return fmt.Errorf("lookup listing %d: %w", id, err)
	}
	if hostID != userID {
		return apperr.Forbidden("only the host can delete the listing")
	}
	if err := s.db.DeleteListing(ctx, id); err != nil {
		return fmt.Errorf("delete listing %d: %w", id, err)
	}
	s.log.Info().Int64("listing_id", id).Msg("listing deleted")
	return nil
}

// AddCoHost grants co-host permissions on a listing. Host only; granting the
// same user twice is a conflict.
func (s *Service) AddCoHost(ctx context.Context, listingID int64, userID uuid.UUID, grant CoHostGrant) (*CoHost, error) {
	hostID, err := s.db.HostID(ctx, listingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("listing not found")
		}
		return nil, fmt.Errorf("lookup listing %d: %w", listingID, err)
	}
	if hostID != userID {
		return nil, apperr.Forbidden("only host can add co-hosts")
	}
	if _, err := s.db.CoHost(ctx, listingID, grant.CoHostID); err == nil {
		return nil, apperr.Conflict("user is already a co-host of this listing")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup co-host: %w", err)
	}
	ch, err := s.db.InsertCoHost(ctx, listingID, userID, grant)
	if err != nil {
		return nil, fmt.Errorf("insert co-host: %w", err)
	}
	return ch, nil
}

// CanViewBookings reports whether userID may read a listing's bookings:
// the host or any co-host.
func (s *Service) CanViewBookings(ctx context.Context, listingID int64, userID uuid.UUID) (bool, error) {
	hostID, err := s.db.HostID(ctx, listingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, apperr.NotFound("listing not found")
		}
		return false, fmt.Errorf("lookup listing %d: %w", listingID, err)
	}
	if hostID == userID {
		return true, nil
	}
	_, err = s.db.CoHost(ctx, listingID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup co-host: %w", err)
	}
	return true, nil
}

// canEdit reports whether userID is the host or a co-host with the
// can_edit_listing flag.
func (s *Service) canEdit(ctx context.Context, listingID int64, userID uuid.UUID) (bool, error) {
	hostID, err := s.db.HostID(ctx, listingID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, apperr.NotFound("listing not found")
		}
		return false, fmt.Errorf("lookup listing %d: %w", listingID, err)
	}
	if hostID == userID {
		return true, nil
	}
	ch, err := s.db.CoHost(ctx, listingID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("lookup co-host: %w", err)
	}
	return ch.CanEditListing, nil
}
