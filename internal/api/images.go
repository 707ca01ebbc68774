package api

import (
	"context"
	"fmt"
	"net/http"
)

// ImagesService manages generated image assets.
type ImagesService struct {
	client *Client
}

// List returns all images.
func (s *ImagesService) List(ctx context.Context) ([]Image, error) {
	env, err := s.client.do(ctx, http.MethodGet, "/api/images", nil)
	if err != nil {
		return nil, err
	}
	return decode[[]Image](env)
}

// Get returns one image by ID.
func (s *ImagesService) Get(ctx context.Context, id int64) (*Image, error) {
	env, err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/api/images/%d", id), nil)
	if err != nil {
		return nil, err
	}
	img, err := decode[Image](env)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// Generate requests a new image from a prompt.
func (s *ImagesService) Generate(ctx context.Context, input ImageInput) (*Image, error) {
	env, err := s.client.do(ctx, http.MethodPost, "/api/images", input)
	if err != nil {
		return nil, err
	}
	img, err := decode[Image](env)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

// Delete removes an image.
func (s *ImagesService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/api/images/%d", id), nil)
	return err
}
