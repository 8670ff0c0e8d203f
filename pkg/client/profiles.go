package client

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kengakuru/kibanda/pkg/domain"
)

const profilesTable = "users"

// GetProfile fetches the profile row for a user id. A missing row fails with
// an APIError for which IsNotFound is true.
func (c *Client) GetProfile(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := c.selectRows(ctx, c.from(profilesTable).sel("*").eq("id", id).one(), &u); err != nil {
		return nil, fmt.Errorf("client.GetProfile: %w", err)
	}
	return &u, nil
}

// InsertProfile inserts a profile row directly and returns it.
func (c *Client) InsertProfile(ctx context.Context, p domain.NewProfile) (*domain.User, error) {
	var u domain.User
	if err := c.insertRows(ctx, c.from(profilesTable).sel("*").one(), p, &u); err != nil {
		return nil, fmt.Errorf("client.InsertProfile: %w", err)
	}
	return &u, nil
}

// CreateUserProfile creates the profile row through the privileged
// create_user_profile database function.
func (c *Client) CreateUserProfile(ctx context.Context, p domain.NewProfile) error {
	args := map[string]string{
		"user_id":    p.ID.String(),
		"user_email": p.Email,
		"user_name":  p.Name,
		"user_type":  string(p.Role),
	}
	if err := c.rpc(ctx, "create_user_profile", args, nil); err != nil {
		return fmt.Errorf("client.CreateUserProfile: %w", err)
	}
	return nil
}

// UpdateProfile applies a partial update and returns the stored row.
func (c *Client) UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (*domain.User, error) {
	var u domain.User
	if err := c.updateRows(ctx, c.from(profilesTable).sel("*").eq("id", id).one(), upd, &u); err != nil {
		return nil, fmt.Errorf("client.UpdateProfile: %w", err)
	}
	return &u, nil
}
