package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/minibnb/minibnb/internal/listing"
)

func (s *Store) CoHost(ctx context.Context, listingID int64, userID uuid.UUID) (*listing.CoHost, error) {
	var ch listing.CoHost
	err := s.pool.QueryRow(ctx, `
		SELECT id, listing_id, host_id, co_host_id, can_edit_listing,
			can_access_messages, can_respond_messages, created_at
		FROM co_hosts WHERE listing_id = $1 AND co_host_id = $2`,
		listingID, userID,
	).Scan(&ch.ID, &ch.ListingID, &ch.HostID, &ch.CoHostID, &ch.CanEditListing,
		&ch.CanAccessMessages, &ch.CanRespondMessages, &ch.CreatedAt)
	if err != nil {
		return nil, mapNotFound(err, listing.ErrNotFound)
	}
	return &ch, nil
}

func (s *Store) InsertCoHost(ctx context.Context, listingID int64, hostID uuid.UUID, grant listing.CoHostGrant) (*listing.CoHost, error) {
	var ch listing.CoHost
	err := s.pool.QueryRow(ctx, `
		INSERT INTO co_hosts (listing_id, host_id, co_host_id, can_edit_listing,
			can_access_messages, can_respond_messages)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, listing_id, host_id, co_host_id, can_edit_listing,
			can_access_messages, can_respond_messages, created_at`,
		listingID, hostID, grant.CoHostID, grant.CanEditListing,
		grant.CanAccessMessages, grant.CanRespondMessages,
	).Scan(&ch.ID, &ch.ListingID, &ch.HostID, &ch.CoHostID, &ch.CanEditListing,
		&ch.CanAccessMessages, &ch.CanRespondMessages, &ch.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert co-host: %w", err)
	}
	return &ch, nil
}
