package deckbuilder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Provider resolves card records from an external catalog.
type Provider interface {
	// ResolveByName returns the card with the exact name, optionally from a set.
	// It returns ErrCardNotFound when no such card exists.
	ResolveByName(ctx context.Context, name, setCode string) (*CardRecord, error)

	// Search runs a catalog query and returns matching cards.
	Search(ctx context.Context, query string) ([]CardRecord, error)
}

// CollectionSource lists the cards a player owns.
type CollectionSource interface {
	ListOwned(ctx context.Context) ([]OwnedCard, error)
}

// throttledProvider spaces every call to the wrapped provider by a fixed delay.
type throttledProvider struct {
	next    Provider
	limiter *rate.Limiter
}

// NewThrottledProvider wraps p so that consecutive lookups are at least delay apart.
// A zero delay returns p unchanged.
func NewThrottledProvider(p Provider, delay time.Duration) Provider {
	if delay <= 0 {
		return p
	}
	return &throttledProvider{
		next:    p,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
	}
}

func (t *throttledProvider) ResolveByName(ctx context.Context, name, setCode string) (*CardRecord, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	return t.next.ResolveByName(ctx, name, setCode)
}

func (t *throttledProvider) Search(ctx context.Context, query string) ([]CardRecord, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}
	return t.next.Search(ctx, query)
}

// requestCache memoizes name lookups for the lifetime of one generation request.
type requestCache struct {
	provider Provider
	byName   map[string]*CardRecord
	missing  map[string]error
}

func newRequestCache(p Provider) *requestCache {
	return &requestCache{
		provider: p,
		byName:   make(map[string]*CardRecord),
		missing:  make(map[string]error),
	}
}

func (c *requestCache) ResolveByName(ctx context.Context, name, setCode string) (*CardRecord, error) {
	key := strings.ToLower(name) + "|" + strings.ToLower(setCode)
	if card, ok := c.byName[key]; ok {
		return card, nil
	}
	if err, ok := c.missing[key]; ok {
		return nil, err
	}

	card, err := c.provider.ResolveByName(ctx, name, setCode)
	if err == nil && card == nil {
		err = ErrCardNotFound
	}
	if err != nil {
		// Transport failures are not memoized so a later call may succeed.
		if errors.Is(err, ErrCardNotFound) {
			c.missing[key] = err
		}
		return nil, err
	}
	c.byName[key] = card
	return card, nil
}

func (c *requestCache) Search(ctx context.Context, query string) ([]CardRecord, error) {
	return c.provider.Search(ctx, query)
}
