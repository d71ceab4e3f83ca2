package chatsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"chat_sync_service/internal/chat/domain"
)

// restClient is the shared HTTP plumbing behind the REST stores. It
// authenticates with the same JWT the websocket transport uses.
type restClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// ConversationREST is the ConversationStore over the chat service's
// REST surface
type ConversationREST struct {
	c *restClient
}

// MessageREST is the MessageStore over the chat service's REST surface
type MessageREST struct {
	c *restClient
}

// NewRESTStores create both stores over one shared client. baseURL is
// the http:// root of the chat service, without a trailing slash.
func NewRESTStores(baseURL, token string, client *http.Client) (*ConversationREST, *MessageREST) {
	if client == nil {
		client = http.DefaultClient
	}
	c := &restClient{baseURL: baseURL, token: token, client: client}
	return &ConversationREST{c: c}, &MessageREST{c: c}
}

// List GET /conversations
func (s *ConversationREST) List(ctx context.Context) ([]domain.Conversation, error) {
	var convs []domain.Conversation
	if err := s.c.do(ctx, http.MethodGet, "/conversations", nil, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// StartDirect POST /conversations/direct
func (s *ConversationREST) StartDirect(ctx context.Context, otherUserID string) (*domain.Conversation, error) {
	body := map[string]string{"other_user_id": otherUserID}
	var conv domain.Conversation
	if err := s.c.do(ctx, http.MethodPost, "/conversations/direct", body, &conv); err != nil {
		return nil, err
	}
	return &conv, nil
}

// TogglePin POST /conversations/:id/pin
func (s *ConversationREST) TogglePin(ctx context.Context, conversationID string) error {
	return s.c.do(ctx, http.MethodPost, "/conversations/"+conversationID+"/pin", nil, nil)
}

// ToggleArchive POST /conversations/:id/archive
func (s *ConversationREST) ToggleArchive(ctx context.Context, conversationID string) error {
	return s.c.do(ctx, http.MethodPost, "/conversations/"+conversationID+"/archive", nil, nil)
}

// List GET /conversations/:id/messages
func (s *MessageREST) List(ctx context.Context, conversationID string) ([]domain.Message, error) {
	var msgs []domain.Message
	if err := s.c.do(ctx, http.MethodGet, "/conversations/"+conversationID+"/messages", nil, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkRead POST /conversations/:id/read
func (s *MessageREST) MarkRead(ctx context.Context, conversationID string) error {
	return s.c.do(ctx, http.MethodPost, "/conversations/"+conversationID+"/read", nil, nil)
}

func (c *restClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?auth="+c.token, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, data)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
