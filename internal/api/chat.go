package api

import (
	"context"
	"net/http"
)

// ChatService talks to the content assistant.
type ChatService struct {
	client *Client
}

// Send submits a message to the assistant and returns its reply.
func (s *ChatService) Send(ctx context.Context, req ChatRequest) (*ChatMessage, error) {
	env, err := s.client.do(ctx, http.MethodPost, "/api/chat", req)
	if err != nil {
		return nil, err
	}
	msg, err := decode[ChatMessage](env)
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// History returns the session's conversation so far.
func (s *ChatService) History(ctx context.Context) ([]ChatMessage, error) {
	env, err := s.client.do(ctx, http.MethodGet, "/api/chat/history", nil)
	if err != nil {
		return nil, err
	}
	return decode[[]ChatMessage](env)
}
