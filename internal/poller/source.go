package poller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/berlincodez/Campus-Skill-link/internal/apperr"
	"github.com/berlincodez/Campus-Skill-link/internal/model"
)

// Source is the request/response surface the loop polls.
type Source interface {
	Conversations(ctx context.Context, userID string) ([]model.Conversation, error)
	Messages(ctx context.Context, connectionID, userID string) ([]model.Message, error)
	MarkRead(ctx context.Context, connectionID, userID string) (int64, error)
	Send(ctx context.Context, connectionID, senderID, text string) (*model.Message, error)
}

// APIError is a non-2xx answer of the messaging API. It unwraps to the matching
// apperr sentinel so callers classify it the same way as server-side errors.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusBadRequest:
		return apperr.ErrValidation
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusConflict:
		return apperr.ErrDuplicateConnection
	case http.StatusForbidden:
		return apperr.ErrForbidden
	case http.StatusServiceUnavailable:
		return apperr.ErrAggregation
	default:
		return nil
	}
}

// ClientConfig is served by the API so clients poll at the configured pace.
type ClientConfig struct {
	InboxIntervalMs  int64  `json:"inboxIntervalMs"`
	ThreadIntervalMs int64  `json:"threadIntervalMs"`
	SocketPort       int    `json:"socketPort"`
	SocketRoute      string `json:"socketRoute"`
}

// HTTPSource talks to the messaging API over plain HTTP.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (s *HTTPSource) Conversations(ctx context.Context, userID string) ([]model.Conversation, error) {
	var body struct {
		Conversations []model.Conversation `json:"conversations"`
	}
	q := url.Values{"userId": {userID}}
	if err := s.do(ctx, http.MethodGet, "/api/conversations?"+q.Encode(), nil, &body); err != nil {
		return nil, err
	}
	return body.Conversations, nil
}

func (s *HTTPSource) Messages(ctx context.Context, connectionID, userID string) ([]model.Message, error) {
	var body struct {
		Messages []model.Message `json:"messages"`
	}
	q := url.Values{"connectionId": {connectionID}, "userId": {userID}}
	if err := s.do(ctx, http.MethodGet, "/api/messages?"+q.Encode(), nil, &body); err != nil {
		return nil, err
	}
	return body.Messages, nil
}

func (s *HTTPSource) MarkRead(ctx context.Context, connectionID, userID string) (int64, error) {
	var body model.MarkReadResult
	in := model.MarkReadInput{ConnectionID: connectionID, UserID: userID}
	if err := s.do(ctx, http.MethodPatch, "/api/messages", in, &body); err != nil {
		return 0, err
	}
	return body.ModifiedCount, nil
}

func (s *HTTPSource) Send(ctx context.Context, connectionID, senderID, text string) (*model.Message, error) {
	var body struct {
		Message *model.Message `json:"message"`
	}
	in := model.SendMessageInput{ConnectionID: connectionID, SenderID: senderID, Text: text}
	if err := s.do(ctx, http.MethodPost, "/api/messages", in, &body); err != nil {
		return nil, err
	}
	return body.Message, nil
}

func (s *HTTPSource) ClientConfig(ctx context.Context) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := s.do(ctx, http.MethodGet, "/api/client-config", nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *HTTPSource) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&body)
		return &APIError{Status: resp.StatusCode, Message: body.Error}
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
