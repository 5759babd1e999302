// Package client is a Go client for the booking API.  A Session keeps the
// signed-in user's profile and the room list it last fetched, and filters
// that list locally with roomfilter.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/iliyamo/hotel-booking/internal/model"
	"github.com/iliyamo/hotel-booking/internal/roomfilter"
)

// Profile is the caller's role and recent destinations as returned by
// GET /api/user.
type Profile struct {
	Role                 model.Role `json:"role"`
	RecentSearchedCities []string   `json:"recentSearchedCities"`
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.Code)
	}
	return fmt.Sprintf("http %d: %s", e.Code, e.Message)
}

// retryable reports whether a later attempt may succeed.
func (e *StatusError) retryable() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Session holds per-user client state.  It is safe for concurrent use.
type Session struct {
	baseURL     string
	token       string
	http        *http.Client
	maxTries    uint
	maxInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	profile *Profile
	rooms   []model.RoomListing
}

// Option configures a Session.
type Option func(*Session)

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(s *Session) { s.token = token }
}

// WithHTTPClient replaces the default client, which has a 10s timeout.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Session) { s.http = c }
}

// WithRetry bounds the retries of idempotent reads: at most maxTries
// attempts, waiting at most maxInterval between two of them.
func WithRetry(maxTries uint, maxInterval time.Duration) Option {
	return func(s *Session) {
		s.maxTries = maxTries
		s.maxInterval = maxInterval
	}
}

// NewSession creates a session against baseURL.  Requests stop when parent
// is cancelled or Close is called.
func NewSession(parent context.Context, baseURL string, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(parent)
	s := &Session{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        &http.Client{Timeout: 10 * time.Second},
		maxTries:    5,
		maxInterval: 5 * time.Second,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close cancels in-flight requests and retries and drops cached state.
func (s *Session) Close() {
	s.cancel()
	s.mu.Lock()
	s.profile = nil
	s.rooms = nil
	s.mu.Unlock()
}

// FetchProfile loads the caller's profile, retrying transient failures
// with exponential backoff.  401 and other client errors are not retried.
func (s *Session) FetchProfile(ctx context.Context) (Profile, error) {
	p, err := retry(ctx, s, func(ctx context.Context) (Profile, error) {
		var p Profile
		err := s.do(ctx, http.MethodGet, "/api/user", nil, &p)
		return p, err
	})
	if err != nil {
		return Profile{}, fmt.Errorf("fetch profile: %w", err)
	}
	if p.RecentSearchedCities == nil {
		p.RecentSearchedCities = []string{}
	}
	s.mu.Lock()
	s.profile = &p
	s.mu.Unlock()
	return p, nil
}

// FetchRooms loads the public room list into the session cache.
func (s *Session) FetchRooms(ctx context.Context) ([]model.RoomListing, error) {
	rooms, err := retry(ctx, s, func(ctx context.Context) ([]model.RoomListing, error) {
		var body struct {
			Rooms []model.RoomListing `json:"rooms"`
		}
		err := s.do(ctx, http.MethodGet, "/api/rooms", nil, &body)
		return body.Rooms, err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch rooms: %w", err)
	}
	if rooms == nil {
		rooms = []model.RoomListing{}
	}
	s.mu.Lock()
	s.rooms = rooms
	s.mu.Unlock()
	return s.Rooms(), nil
}

// RecordSearch stores city as the caller's latest destination and updates
// the cached profile.  It is not retried.
func (s *Session) RecordSearch(ctx context.Context, city string) ([]string, error) {
	ctx, stop := s.bind(ctx)
	defer stop()

	var body struct {
		Cities []string `json:"recentSearchedCities"`
	}
	req := map[string]string{"recentSearchedCities": city}
	if err := s.do(ctx, http.MethodPost, "/api/user/store-recent-search", req, &body); err != nil {
		return nil, fmt.Errorf("record search: %w", err)
	}
	s.mu.Lock()
	if s.profile != nil {
		s.profile.RecentSearchedCities = body.Cities
	}
	s.mu.Unlock()
	return body.Cities, nil
}

// Rooms returns a copy of the cached room list.
func (s *Session) Rooms() []model.RoomListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.RoomListing(nil), s.rooms...)
}

// Profile returns the cached profile and whether one was fetched.
func (s *Session) Profile() (Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return Profile{}, false
	}
	p := *s.profile
	p.RecentSearchedCities = append([]string{}, p.RecentSearchedCities...)
	return p, true
}

// IsOwner reports whether the cached profile belongs to a hotel owner.
func (s *Session) IsOwner() bool {
	p, ok := s.Profile()
	return ok && p.Role == model.RoleHotelOwner
}

// View filters and sorts the cached rooms.  The cache is not modified.
func (s *Session) View(opts roomfilter.Options) []model.RoomListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return roomfilter.Apply(s.rooms, opts)
}

// bind derives a context that is also cancelled by Close.
func (s *Session) bind(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func retry[T any](ctx context.Context, s *Session, op func(context.Context) (T, error)) (T, error) {
	ctx, stop := s.bind(ctx)
	defer stop()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = min(100*time.Millisecond, s.maxInterval)
	b.MaxInterval = s.maxInterval

	return backoff.Retry(ctx, func() (T, error) {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		var se *StatusError
		if errors.As(err, &se) && !se.retryable() {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(s.maxTries))
}

func (s *Session) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&e)
		return &StatusError{Code: resp.StatusCode, Message: e.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
