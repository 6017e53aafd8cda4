package extract

import (
	"context"
	"log/slog"

	"github.com/panbanda/codesim/internal/cache"
	"github.com/panbanda/codesim/pkg/units"
)

// UnitStore persists extracted unit sets.
type UnitStore interface {
	Load(key, hash string) ([]string, bool)
	Store(key, hash string, units []string) error
}

// Cached wraps a provider with a content-addressed unit store. The key
// covers the provider, language, salt and content hash, so every distinct
// source gets its own entry and edited files miss.
type Cached struct {
	next   Provider
	store  UnitStore
	salt   string
	logger *slog.Logger
}

// NewCached wraps next. The salt distinguishes provider configurations that
// share a name, such as two different external parser commands.
func NewCached(next Provider, store UnitStore, salt string, logger *slog.Logger) *Cached {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cached{next: next, store: store, salt: salt, logger: logger}
}

// Name implements Provider.
func (c *Cached) Name() string { return c.next.Name() }

// Kind implements Provider.
func (c *Cached) Kind() units.Kind { return c.next.Kind() }

// Extract implements Provider. Errors are never cached.
func (c *Cached) Extract(ctx context.Context, in Input) (units.Set, error) {
	hash := cache.HashBytes(in.Source)
	key := c.next.Name() + "\x00" + in.Language.String() + "\x00" + c.salt + "\x00" + hash

	if cached, ok := c.store.Load(key, hash); ok {
		c.logger.Debug("unit cache hit", "provider", c.next.Name(), "file", in.Path)
		return units.NewSet(cached...), nil
	}

	set, err := c.next.Extract(ctx, in)
	if err != nil {
		return nil, err
	}
	if err := c.store.Store(key, hash, set.Sorted()); err != nil {
		c.logger.Warn("unit cache write failed", "file", in.Path, "err", err)
	}
	return set, nil
}
