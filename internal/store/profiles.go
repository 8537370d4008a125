package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/minibnb/minibnb/internal/listing"
)

// Profile is a marketplace user account.
type Profile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Phone     string    `json:"phone,omitempty"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	IsHost    bool      `json:"is_host"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ProfileUpdate is a partial profile update; nil fields are left untouched.
type ProfileUpdate struct {
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
	IsHost    *bool   `json:"is_host"`
}

const profileCols = `id, email, first_name, last_name, phone, avatar_url, bio, is_host, created_at, updated_at`

func (s *Store) Profile(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var (
		p         Profile
		phone     pgtype.Text
		avatarURL pgtype.Text
		bio       pgtype.Text
	)
	err := s.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM profiles WHERE id = $1`, profileCols), id,
	).Scan(&p.ID, &p.Email, &p.FirstName, &p.LastName, &phone, &avatarURL, &bio,
		&p.IsHost, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err, listing.ErrNotFound)
	}
	p.Phone = phone.String
	p.AvatarURL = avatarURL.String
	p.Bio = bio.String
	return &p, nil
}

func (s *Store) UpdateProfile(ctx context.Context, id uuid.UUID, upd ProfileUpdate) (*Profile, error) {
	set := []string{"updated_at = now()"}
	var args []any
	assign := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.FirstName != nil {
		assign("first_name", *upd.FirstName)
	}
	if upd.LastName != nil {
		assign("last_name", *upd.LastName)
	}
	if upd.Phone != nil {
		assign("phone", *upd.Phone)
	}
	if upd.AvatarURL != nil {
		assign("avatar_url", *upd.AvatarURL)
	}
	if upd.Bio != nil {
		assign("bio", *upd.Bio)
	}
	if upd.IsHost != nil {
		assign("is_host", *upd.IsHost)
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE profiles SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(set, ", "), len(args), profileCols)

	var (
		p         Profile
		phone     pgtype.Text
		avatarURL pgtype.Text
		bio       pgtype.Text
	)
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&p.ID, &p.Email, &p.FirstName, &p.LastName, &phone, &avatarURL, &bio,
		&p.IsHost, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, mapNotFound(err, listing.ErrNotFound)
	}
	p.Phone = phone.String
	p.AvatarURL = avatarURL.String
	p.Bio = bio.String
	return &p, nil
}

// IsHost implements listing.Persistence.
func (s *Store) IsHost(ctx context.Context, userID uuid.UUID) (bool, error) {
	var isHost bool
	err := s.pool.QueryRow(ctx, `SELECT is_host FROM profiles WHERE id = $1`, userID).Scan(&isHost)
	if err != nil {
		return false, mapNotFound(err, listing.ErrNotFound)
	}
	return isHost, nil
}
