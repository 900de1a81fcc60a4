// Package gateway is the client-side contract with the event store: listing
// events by date window and the passcode-gated create/update/delete calls.
// It is authoritative for nothing; the server re-checks everything.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// TokenSource supplies the bearer credential of the active session, or ""
// when nobody is logged in.
type TokenSource interface {
	Token() string
}

// User is one roster entry as served by the user directory endpoint.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Event mirrors the server's event response.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	StartAt     time.Time `json:"start_at"`
	EndAt       time.Time `json:"end_at"`
	AllDay      bool      `json:"all_day"`
	Note        string    `json:"note"`
	OwnerUserID string    `json:"owner_user_id"`
	OwnerName   string    `json:"owner_name"`
	Color       string    `json:"color"`
}

// Draft is the client-supplied part of a new event. The owner is never part
// of it: the server assigns ownership from the session.
type Draft struct {
	Title   string
	StartAt time.Time
	EndAt   time.Time
	AllDay  bool
	Note    string
}

// LoginResult is the session material returned by a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Client talks to the calendar server over HTTP/JSON.
type Client struct {
	base   string
	hc     *http.Client
	tokens TokenSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client (tests, custom timeouts).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// New builds a client for the server at baseURL. tokens may be nil for a
// read-only client; mutations then fail fast without touching the network.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		base:   strings.TrimRight(baseURL, "/"),
		hc:     &http.Client{Timeout: 15 * time.Second},
		tokens: tokens,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Users fetches the read-only roster.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Login exchanges credentials for a session token. It does not retain the
// token; session state belongs to the session manager.
func (c *Client) Login(ctx context.Context, userID, passcode string) (LoginResult, error) {
	body := map[string]string{"user_id": userID, "passcode": passcode}
	var res LoginResult
	if err := c.do(ctx, http.MethodPost, "/api/login", nil, body, &res); err != nil {
		return LoginResult{}, err
	}
	return res, nil
}

// List returns events overlapping the half-open window [start, end). A zero
// bound is omitted. Reads are public and need no session.
func (c *Client) List(ctx context.Context, start, end time.Time) ([]Event, error) {
	q := url.Values{}
	if !start.IsZero() {
		q.Set("start", start.Format(time.RFC3339))
	}
	if !end.IsZero() {
		q.Set("end", end.Format(time.RFC3339))
	}
	var events []Event
	if err := c.do(ctx, http.MethodGet, "/api/events", q, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// Create stores a new event owned by the session user.
func (c *Client) Create(ctx context.Context, d Draft, passcode string) (Event, error) {
	if err := c.requireSession(); err != nil {
		return Event{}, err
	}
	body := map[string]interface{}{
		"title":    d.Title,
		"start_at": d.StartAt,
		"end_at":   d.EndAt,
		"all_day":  d.AllDay,
		"note":     d.Note,
		"passcode": passcode,
	}
	var ev Event
	if err := c.do(ctx, http.MethodPost, "/api/events", nil, body, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Update changes the title and note of an owned event.
func (c *Client) Update(ctx context.Context, eventID, title, note, passcode string) (Event, error) {
	if err := c.requireSession(); err != nil {
		return Event{}, err
	}
	body := map[string]string{"title": title, "note": note, "passcode": passcode}
	var ev Event
	if err := c.do(ctx, http.MethodPut, "/api/events/"+url.PathEscape(eventID), nil, body, &ev); err != nil {
		return Event{}, err
	}
	return ev, nil
}

// Delete removes an owned event.
func (c *Client) Delete(ctx context.Context, eventID, passcode string) error {
	if err := c.requireSession(); err != nil {
		return err
	}
	q := url.Values{}
	q.Set("passcode", passcode)
	return c.do(ctx, http.MethodDelete, "/api/events/"+url.PathEscape(eventID), q, nil, nil)
}

func (c *Client) requireSession() error {
	if c.tokens == nil || c.tokens.Token() == "" {
		return &Error{Kind: KindAuth, Message: "you are not logged in"}
	}
	return nil
}

type errorBody struct {
	Detail string `json:"detail"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindTransport, Message: "could not encode request"}
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return &Error{Kind: KindTransport, Message: "could not build request"}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Message: "could not reach the calendar server"}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var eb errorBody
		_ = json.NewDecoder(resp.Body).Decode(&eb)
		kind := kindForStatus(resp.StatusCode)
		message := eb.Detail
		if message == "" {
			message = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return &Error{Kind: kind, Message: message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindTransport, Message: "could not decode server response"}
		}
	}
	return nil
}
