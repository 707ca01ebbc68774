package api

import (
	"context"
	"fmt"
	"net/http"
)

// PostsService manages social post drafts and scheduled publications.
type PostsService struct {
	client *Client
}

// List returns all posts.
func (s *PostsService) List(ctx context.Context) ([]Post, error) {
	env, err := s.client.do(ctx, http.MethodGet, "/api/posts", nil)
	if err != nil {
		return nil, err
	}
	return decode[[]Post](env)
}

// Get returns one post by ID.
func (s *PostsService) Get(ctx context.Context, id int64) (*Post, error) {
	env, err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/api/posts/%d", id), nil)
	if err != nil {
		return nil, err
	}
	post, err := decode[Post](env)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Create adds a post.
func (s *PostsService) Create(ctx context.Context, input PostInput) (*Post, error) {
	env, err := s.client.do(ctx, http.MethodPost, "/api/posts", input)
	if err != nil {
		return nil, err
	}
	post, err := decode[Post](env)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Update modifies a post.
func (s *PostsService) Update(ctx context.Context, id int64, input PostInput) (*Post, error) {
	env, err := s.client.do(ctx, http.MethodPut, fmt.Sprintf("/api/posts/%d", id), input)
	if err != nil {
		return nil, err
	}
	post, err := decode[Post](env)
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Delete removes a post.
func (s *PostsService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/api/posts/%d", id), nil)
	return err
}
