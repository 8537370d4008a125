package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/minibnb/minibnb/internal/listing"
)

const listingCols = `id, host_id, name, description, picture_url, price, address, city,
	postal_code, bedrooms, beds, bathrooms, max_guests, property_type, amenities,
	review_scores_value, is_active, created_at, updated_at`

func scanListing(row pgx.Row) (*listing.Listing, error) {
	var (
		l           listing.Listing
		description pgtype.Text
		pictureURL  pgtype.Text
		address     pgtype.Text
		postalCode  pgtype.Text
		propType    pgtype.Text
		score       pgtype.Float8
	)
	err := row.Scan(
		&l.ID, &l.HostID, &l.Name, &description, &pictureURL, &l.Price, &address,
		&l.City, &postalCode, &l.Bedrooms, &l.Beds, &l.Bathrooms, &l.MaxGuests,
		&propType, &l.Amenities, &score, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	l.Description = description.String
	l.PictureURL = pictureURL.String
	l.Address = address.String
	l.PostalCode = postalCode.String
	l.PropertyType = propType.String
	if score.Valid {
		v := score.Float64
		l.ReviewScore = &v
	}
	if l.Amenities == nil {
		l.Amenities = []string{}
	}
	return &l, nil
}

func (s *Store) Listing(ctx context.Context, id int64) (*listing.Listing, error) {
	row := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM listings WHERE id = $1`, listingCols), id)
	l, err := scanListing(row)
	if err != nil {
		return nil, mapNotFound(err, listing.ErrNotFound)
	}
	return l, nil
}

func (s *Store) Listings(ctx context.Context, f listing.Filter, limit, offset int) ([]listing.Listing, int64, error) {
	where := []string{"is_active = true"}
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}

	if f.City != "" {
		add("city ILIKE $%d", "%"+f.City+"%")
	}
	if f.MinPrice > 0 {
		add("price >= $%d", f.MinPrice)
	}
	if f.MaxPrice > 0 {
		add("price <= $%d", f.MaxPrice)
	}
	if f.Guests > 0 {
		add("max_guests >= $%d", f.Guests)
	}
	if f.HostID != uuid.Nil {
		add("host_id = $%d", f.HostID)
	}
	if f.Query != "" {
		args = append(args, "%"+f.Query+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if f.PropertyType != "" {
		add("property_type = $%d", f.PropertyType)
	}
	if f.MinBedrooms > 0 {
		add("bedrooms >= $%d", f.MinBedrooms)
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(
		`SELECT %s, count(*) OVER() AS total FROM listings WHERE %s ORDER BY id LIMIT $%d OFFSET $%d`,
		listingCols, strings.Join(where, " AND "), len(args)-1, len(args),
	)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	var (
		out   []listing.Listing
		total int64
	)
	for rows.Next() {
		var (
			l           listing.Listing
			description pgtype.Text
			pictureURL  pgtype.Text
			address     pgtype.Text
			postalCode  pgtype.Text
			propType    pgtype.Text
			score       pgtype.Float8
		)
		if err := rows.Scan(
			&l.ID, &l.HostID, &l.Name, &description, &pictureURL, &l.Price, &address,
			&l.City, &postalCode, &l.Bedrooms, &l.Beds, &l.Bathrooms, &l.MaxGuests,
			&propType, &l.Amenities, &score, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan listing: %w", err)
		}
		l.Description = description.String
		l.PictureURL = pictureURL.String
		l.Address = address.String
		l.PostalCode = postalCode.String
		l.PropertyType = propType.String
		if score.Valid {
			v := score.Float64
			l.ReviewScore = &v
		}
		if l.Amenities == nil {
			l.Amenities = []string{}
		}
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate listings: %w", err)
	}
	if out == nil {
		out = []listing.Listing{}
	}
	return out, total, nil
}

func (s *Store) InsertListing(ctx context.Context, hostID uuid.UUID, nl listing.NewListing) (*listing.Listing, error) {
	amenities := nl.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	row := s.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO listings (host_id, name, description, picture_url, price, address,
			city, postal_code, bedrooms, beds, bathrooms, max_guests, property_type,
			amenities, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, true)
		RETURNING %s`, listingCols),
		hostID, nl.Name, nullText(nl.Description), nullText(nl.PictureURL), nl.Price,
		nullText(nl.Address), nl.City, nullText(nl.PostalCode), nl.Bedrooms, nl.Beds,
		nl.Bathrooms, nl.MaxGuests, nullText(nl.PropertyType), amenities,
	)
	return scanListing(row)
}

func (s *Store) UpdateListing(ctx context.Context, id int64, upd listing.Update) (*listing.Listing, error) {
	set := []string{"updated_at = now()"}
	var args []any
	assign := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Name != nil {
		assign("name", *upd.Name)
	}
	if upd.Description != nil {
		assign("description", *upd.Description)
	}
	if upd.PictureURL != nil {
		assign("picture_url", *upd.PictureURL)
	}
	if upd.Price != nil {
		assign("price", *upd.Price)
	}
	if upd.Address != nil {
		assign("address", *upd.Address)
	}
	if upd.City != nil {
		assign("city", *upd.City)
	}
	if upd.PostalCode != nil {
		assign("postal_code", *upd.PostalCode)
	}
	if upd.Bedrooms != nil {
		assign("bedrooms", *upd.Bedrooms)
	}
	if upd.Beds != nil {
		assign("beds", *upd.Beds)
	}
	if upd.Bathrooms != nil {
		assign("bathrooms", *upd.Bathrooms)
	}
	if upd.MaxGuests != nil {
		assign("max_guests", *upd.MaxGuests)
	}
	if upd.PropertyType != nil {
		assign("property_type", *upd.PropertyType)
	}
	if upd.Amenities != nil {
		assign("amenities", upd.Amenities)
	}
	if upd.IsActive != nil {
		assign("is_active", *upd.IsActive)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE listings SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), listingCols)

	l, err := scanListing(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapNotFound(err, listing.ErrNotFound)
	}
	return l, nil
}

func (s *Store) DeleteListing(ctx context.Context, id int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	return nil
}

func (s *Store) HostID(ctx context.Context, listingID int64) (uuid.UUID, error) {
	var hostID uuid.UUID
	err := s.pool.QueryRow(ctx, `SELECT host_id FROM listings WHERE id = $1`, listingID).Scan(&hostID)
	if err != nil {
		return uuid.Nil, mapNotFound(err, listing.ErrNotFound)
	}
	return hostID, nil
}

func nullText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}
