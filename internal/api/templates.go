package api

import (
	"context"
	"fmt"
	"net/http"
)

// TemplatesService manages reusable content templates.
type TemplatesService struct {
	client *Client
}

// List returns all templates. An optional category filter narrows the result.
func (s *TemplatesService) List(ctx context.Context, opts ...RequestOption) ([]Template, error) {
	env, err := s.client.do(ctx, http.MethodGet, "/api/templates", nil, opts...)
	if err != nil {
		return nil, err
	}
	return decode[[]Template](env)
}

// Get returns one template by ID.
func (s *TemplatesService) Get(ctx context.Context, id int64) (*Template, error) {
	env, err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/api/templates/%d", id), nil)
	if err != nil {
		return nil, err
	}
	tmpl, err := decode[Template](env)
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// Create adds a template.
func (s *TemplatesService) Create(ctx context.Context, input TemplateInput) (*Template, error) {
	env, err := s.client.do(ctx, http.MethodPost, "/api/templates", input)
	if err != nil {
		return nil, err
	}
	tmpl, err := decode[Template](env)
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// Update modifies a template.
func (s *TemplatesService) Update(ctx context.Context, id int64, input TemplateInput) (*Template, error) {
	env, err := s.client.do(ctx, http.MethodPut, fmt.Sprintf("/api/templates/%d", id), input)
	if err != nil {
		return nil, err
	}
	tmpl, err := decode[Template](env)
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// Delete removes a template.
func (s *TemplatesService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/api/templates/%d", id), nil)
	return err
}
