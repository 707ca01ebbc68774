package api

import (
	"context"
	"fmt"
	"net/http"
)

// QuotesService manages generated and curated quotes.
type QuotesService struct {
	client *Client
}

// List returns all quotes.
func (s *QuotesService) List(ctx context.Context, opts ...RequestOption) ([]Quote, error) {
	env, err := s.client.do(ctx, http.MethodGet, "/api/quotes", nil, opts...)
	if err != nil {
		return nil, err
	}
	return decode[[]Quote](env)
}

// Get returns one quote by ID.
func (s *QuotesService) Get(ctx context.Context, id int64) (*Quote, error) {
	env, err := s.client.do(ctx, http.MethodGet, fmt.Sprintf("/api/quotes/%d", id), nil)
	if err != nil {
		return nil, err
	}
	quote, err := decode[Quote](env)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Create adds a quote.
func (s *QuotesService) Create(ctx context.Context, input QuoteInput) (*Quote, error) {
	env, err := s.client.do(ctx, http.MethodPost, "/api/quotes", input)
	if err != nil {
		return nil, err
	}
	quote, err := decode[Quote](env)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Update modifies a quote.
func (s *QuotesService) Update(ctx context.Context, id int64, input QuoteInput) (*Quote, error) {
	env, err := s.client.do(ctx, http.MethodPut, fmt.Sprintf("/api/quotes/%d", id), input)
	if err != nil {
		return nil, err
	}
	quote, err := decode[Quote](env)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Delete removes a quote.
func (s *QuotesService) Delete(ctx context.Context, id int64) error {
	_, err := s.client.do(ctx, http.MethodDelete, fmt.Sprintf("/api/quotes/%d", id), nil)
	return err
}
