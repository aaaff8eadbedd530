package client

import (
	"context"
	"sync"
	"time"

	"go-school/internal/checkin"
)

// DefaultMaxAge bounds how long a fetched state is served without asking the server again.
const DefaultMaxAge = 30 * time.Second

type statusFetcher interface {
	Status(ctx context.Context) (checkin.CheckInStateResponse, error)
}

// StatusCache holds the last known check-in state. Server responses always overwrite it.
type StatusCache struct {
	fetcher statusFetcher
	maxAge  time.Duration
	now     func() time.Time

	mu        sync.Mutex
	state     *checkin.CheckInStateResponse
	fetchedAt time.Time
}

func NewStatusCache(fetcher statusFetcher, maxAge time.Duration) *StatusCache {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &StatusCache{fetcher: fetcher, maxAge: maxAge, now: time.Now}
}

// Get returns the cached state while it is fresh and for the current day, otherwise refetches.
func (c *StatusCache) Get(ctx context.Context) (checkin.CheckInStateResponse, error) {
	c.mu.Lock()
	if c.state != nil && c.now().Sub(c.fetchedAt) < c.maxAge && sameDay(c.fetchedAt, c.now()) {
		st := *c.state
		c.mu.Unlock()
		return st, nil
	}
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// Refresh always asks the server.
func (c *StatusCache) Refresh(ctx context.Context) (checkin.CheckInStateResponse, error) {
	st, err := c.fetcher.Status(ctx)
	if err != nil {
		return checkin.CheckInStateResponse{}, err
	}
	c.Set(st)
	return st, nil
}

func (c *StatusCache) Set(st checkin.CheckInStateResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = &st
	c.fetchedAt = c.now()
}

func (c *StatusCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
