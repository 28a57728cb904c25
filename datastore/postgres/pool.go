/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"sync"

	_ "github.com/lib/pq"
	"golang.org/x/sync/singleflight"

	"github.com/suparena/docstore/errors"
)

// OpenFunc creates a live connection pool for a config. Tests substitute
// their own implementation to avoid dialing a real database.
type OpenFunc func(ctx context.Context, cfg *ConnConfig) (*sql.DB, error)

// PoolCache deduplicates connection pools by config fingerprint. At most
// one pool exists per fingerprint at any time; pools are created lazily on
// first request and closed only by Close or SetExecutionContext.
//
// The cache is an explicit, constructible instance rather than ambient
// package state, so tests can run isolated caches side by side.
type PoolCache struct {
	mu      sync.Mutex
	pools   map[string]*poolEntry
	group   singleflight.Group
	baseCtx context.Context
	open    OpenFunc
}

// poolEntry pairs a pool with the redacted form of its fingerprint, so
// teardown failures can name the pool without exposing credentials.
type poolEntry struct {
	db     *sql.DB
	target string
}

// NewPoolCache creates an empty pool cache backed by the lib/pq driver.
func NewPoolCache() *PoolCache {
	return &PoolCache{
		pools:   make(map[string]*poolEntry),
		baseCtx: context.Background(),
		open:    openPool,
	}
}

// WithOpenFunc replaces the pool constructor. Intended for tests.
func (c *PoolCache) WithOpenFunc(open OpenFunc) *PoolCache {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = open
	return c
}

// Connect returns the pool for the config's fingerprint, creating it on
// first use. Concurrent calls for the same fingerprint are collapsed into
// a single pool creation, so no duplicate pools are ever cached.
func (c *PoolCache) Connect(ctx context.Context, cfg *ConnConfig) (*sql.DB, error) {
	fingerprint := cfg.Fingerprint()

	c.mu.Lock()
	if entry, ok := c.pools[fingerprint]; ok {
		c.mu.Unlock()
		return entry.db, nil
	}
	open := c.open
	c.mu.Unlock()

	v, err, _ := c.group.Do(fingerprint, func() (interface{}, error) {
		// A concurrent caller may have won a previous flight.
		c.mu.Lock()
		if entry, ok := c.pools[fingerprint]; ok {
			c.mu.Unlock()
			return entry.db, nil
		}
		c.mu.Unlock()

		db, err := open(ctx, cfg)
		if err != nil {
			return nil, errors.NewConnectionError(cfg.RedactedFingerprint(), err)
		}

		c.mu.Lock()
		c.pools[fingerprint] = &poolEntry{db: db, target: cfg.RedactedFingerprint()}
		c.mu.Unlock()
		return db, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*sql.DB), nil
}

// Close closes every cached pool and clears the cache. Every entity store
// holding a pool from this cache must re-bootstrap and re-acquire afterwards.
func (c *PoolCache) Close() error {
	c.mu.Lock()
	pools := c.pools
	c.pools = make(map[string]*poolEntry)
	c.mu.Unlock()

	var errs []error
	for _, entry := range pools {
		if err := entry.db.Close(); err != nil {
			errs = append(errs, errors.NewConnectionError(entry.target, err))
		}
	}
	return stderrors.Join(errs...)
}

// SetExecutionContext rebinds the cache to a new base context and closes
// every cached pool. Pools are bound to the execution context they were
// created under and must never be reused across contexts.
func (c *PoolCache) SetExecutionContext(ctx context.Context) error {
	c.mu.Lock()
	c.baseCtx = ctx
	c.mu.Unlock()
	return c.Close()
}

// ExecutionContext returns the base context pools are currently bound to.
func (c *PoolCache) ExecutionContext() context.Context {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseCtx
}

// openPool opens and validates a database/sql pool over lib/pq.
func openPool(ctx context.Context, cfg *ConnConfig) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
