// Package listing implements property listings: CRUD, search filters, and
// host/co-host permission checks.
package listing

import (
	"time"

	"github.com/google/uuid"
)

// Listing is a bookable property.
type Listing struct {
	ID           int64     `json:"id"`
	HostID       uuid.UUID `json:"host_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	PictureURL   string    `json:"picture_url,omitempty"`
	Price        float64   `json:"price"`
	Address      string    `json:"address,omitempty"`
	City         string    `json:"city"`
	PostalCode   string    `json:"postal_code,omitempty"`
	Bedrooms     int       `json:"bedrooms"`
	Beds         int       `json:"beds"`
	Bathrooms    int       `json:"bathrooms"`
	MaxGuests    int       `json:"max_guests"`
	PropertyType string    `json:"property_type,omitempty"`
	Amenities    []string  `json:"amenities"`
	ReviewScore  *float64  `json:"review_scores_value,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CoHost grants a second profile scoped permissions on a listing.
type CoHost struct {
	ID                 int64     `json:"id"`
	ListingID          int64     `json:"listing_id"`
	HostID             uuid.UUID `json:"host_id"`
	CoHostID           uuid.UUID `json:"co_host_id"`
	CanEditListing     bool      `json:"can_edit_listing"`
	CanAccessMessages  bool      `json:"can_access_messages"`
	CanRespondMessages bool      `json:"can_respond_messages"`
	CreatedAt          time.Time `json:"created_at"`
}

// NewListing is the input for Create.
type NewListing struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	PictureURL   string   `json:"picture_url"`
	Price        float64  `json:"price"`
	Address      string   `json:"address"`
	City         string   `json:"city"`
	PostalCode   string   `json:"postal_code"`
	Bedrooms     int      `json:"bedrooms"`
	Beds         int      `json:"beds"`
	Bathrooms    int      `json:"bathrooms"`
	MaxGuests    int      `json:"max_guests"`
	PropertyType string   `json:"property_type"`
	Amenities    []string `json:"amenities"`
}

// Update is a partial update; nil fields are left untouched.
type Update struct {
	Name         *string  `json:"name"`
	Description  *string  `json:"description"`
	PictureURL   *string  `json:"picture_url"`
	Price        *float64 `json:"price"`
	Address      *string  `json:"address"`
	City         *string  `json:"city"`
	PostalCode   *string  `json:"postal_code"`
	Bedrooms     *int     `json:"bedrooms"`
	Beds         *int     `json:"beds"`
	Bathrooms    *int     `json:"bathrooms"`
	MaxGuests    *int     `json:"max_guests"`
	PropertyType *string  `json:"property_type"`
	Amenities    []string `json:"amenities"`
	IsActive     *bool    `json:"is_active"`
}

// Filter narrows listing searches. Zero values mean "no constraint".
type Filter struct {
	City         string
	MinPrice     float64
	MaxPrice     float64
	Guests       int
	HostID       uuid.UUID
	Query        string
	PropertyType string
	MinBedrooms  int
}

// CoHostGrant is the input for AddCoHost.
type CoHostGrant struct {
	CoHostID           uuid.UUID `json:"co_host_id"`
	CanEditListing     bool      `json:"can_edit_listing"`
	CanAccessMessages  bool      `json:"can_access_messages"`
	CanRespondMessages bool      `json:"can_respond_messages"`
}
