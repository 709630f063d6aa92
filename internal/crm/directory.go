package crm

import (
	"context"
	"strings"
)

// FindUserByEmail resolves a team member by email, case-insensitively.
// The directory is fetched live on every call; a miss returns (nil, nil).
func (c *Client) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// FindUserByID resolves a team member by id. A miss returns (nil, nil).
func (c *Client) FindUserByID(ctx context.Context, id string) (*User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, nil
}
