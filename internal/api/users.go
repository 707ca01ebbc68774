package api

import (
	"context"
	"fmt"
	"net/http"
)

// UsersService administers dashboard accounts.
type UsersService struct {
	client *Client
}

// List returns all users.
func (s *UsersService) List(ctx context.Context) ([]User, error) {
	env, err := s.client.do(ctx, http.MethodGet, "/api/users", nil)
	if err != nil {
		return nil, err
	}
	return decode[[]User](env)
}

// Get returns one user by ID.
func (s *UsersService) Get(ctx context.Context, id int64) (*User, error) {
	env, err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/api/users/%d", id), nil)
	if err != nil {
		return nil, err
	}
	user, err := decode[User](env)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create adds a user.
func (s *UsersService) Create(ctx context.Context, input UserInput) (*User, error) {
	env, err := s.client.do(ctx, http.MethodPost, "/api/users", input)
	if err != nil {
		return nil, err
	}
	user, err := decode[User](env)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Update modifies a user.
func (s *UsersService) Update(ctx context.Context, id int64, input UserInput) (*User, error) {
	env, err := s.client.do(ctx, http.MethodPut, fmt.Sprintf("/api/users/%d", id), input)
	if err != nil {
		return nil, err
	}
	user, err := decode[User](env)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes a user.
func (s *UsersService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/api/users/%d", id), nil)
	return err
}
