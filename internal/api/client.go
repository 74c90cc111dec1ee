// Package api implements the entity resolution capability against the
// upstream private HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/valyala/fasthttp"

	"github.com/itxrex07/x/internal/models"
	"github.com/itxrex07/x/internal/store"
)

// ErrNotFound marks an entity the upstream API does not know.
var ErrNotFound = errors.New("entity not found")

// Client resolves users, chats and the pending inbox, consulting the shared
// cache before the network. It deliberately sets no request timeout: a
// stalled fetch delays only the event it would produce.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	token   string
	store   *store.Store
}

// NewClient builds a resolver client for the API base URL.
func NewClient(baseURL, token string, st *store.Store) *Client {
	return &Client{
		http:    &fasthttp.Client{Name: "x-client"},
		baseURL: baseURL,
		token:   token,
		store:   st,
	}
}

// FetchUser resolves a user by id, caching the result.
func (c *Client) FetchUser(ctx context.Context, id int64) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out struct {
		User *models.User `json:"user"`
	}
	if err := c.getJSON(fmt.Sprintf("/users/%d/info", id), &out); err != nil {
		return nil, err
	}
	if out.User == nil || out.User.PK == 0 {
		return nil, ErrNotFound
	}
	return c.store.UpsertUser(out.User), nil
}

// FetchChat resolves a thread by id. Without force a cache hit is returned
// as is; with force the upstream payload is merged into the cached chat.
func (c *Client) FetchChat(ctx context.Context, threadID string, force bool) (*models.Chat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !force {
		if chat, ok := c.store.Chat(threadID); ok {
			return chat, nil
		}
	}
	var out struct {
		Thread *models.ThreadPayload `json:"thread"`
	}
	if err := c.getJSON("/direct_v2/threads/"+threadID, &out); err != nil {
		return nil, err
	}
	if out.Thread == nil {
		return nil, ErrNotFound
	}
	for _, u := range out.Thread.Users {
		c.store.UpsertUser(u)
	}
	chat := c.store.GetOrCreateChat(threadID)
	chat.ApplyPayload(out.Thread)
	return chat, nil
}

// ListPendingChats refreshes the pending inbox and returns its threads as
// chats flagged pending.
func (c *Client) ListPendingChats(ctx context.Context) ([]*models.Chat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var out struct {
		Inbox struct {
			Threads []*models.ThreadPayload `json:"threads"`
		} `json:"inbox"`
	}
	if err := c.getJSON("/direct_v2/pending_inbox", &out); err != nil {
		return nil, err
	}
	chats := make([]*models.Chat, 0, len(out.Inbox.Threads))
	for _, t := range out.Inbox.Threads {
		if t == nil || t.ThreadID == "" {
			continue
		}
		for _, u := range t.Users {
			c.store.UpsertUser(u)
		}
		chat := c.store.GetOrCreateChat(t.ThreadID)
		chat.ApplyPayload(t)
		c.store.MarkPending(chat)
		chats = append(chats, chat)
	}
	return chats, nil
}

func (c *Client) getJSON(path string, out any) error {
	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if err := c.http.Do(req, resp); err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	switch resp.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("get %s: unexpected status %d", path, resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
