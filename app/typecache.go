package app

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/relstore/relstore/adapters/metrics"
	"github.com/relstore/relstore/domain/schema"
	"github.com/relstore/relstore/ports"
)

// TypeCache lazily fetches schema definitions by type identifier and
// memoizes them for the process lifetime. Concurrent first access for the
// same type shares a single fetch; no caller ever sees a partially
// constructed schema. Failed fetches are not cached, so the next access
// retries.
type TypeCache struct {
	source  ports.SchemaSource
	metrics *metrics.Collector

	mu      sync.RWMutex
	schemas map[string]*schema.Schema
	group   singleflight.Group
}

// NewTypeCache creates a cache backed by source. The metrics collector may
// be nil.
func NewTypeCache(source ports.SchemaSource, m *metrics.Collector) *TypeCache {
	return &TypeCache{
		source:  source,
		metrics: m,
		schemas: make(map[string]*schema.Schema),
	}
}

// Get returns the schema for typeID, fetching it on first use.
func (c *TypeCache) Get(ctx context.Context, typeID string) (*schema.Schema, error) {
	c.mu.RLock()
	s, ok := c.schemas[typeID]
	c.mu.RUnlock()
	if ok {
		if c.metrics != nil {
			c.metrics.SchemaCacheHits.Inc()
		}
		return s, nil
	}
	if c.metrics != nil {
		c.metrics.SchemaCacheMisses.Inc()
	}

	v, err, _ := c.group.Do(typeID, func() (any, error) {
		// A concurrent caller may have resolved this type while we waited
		// for the flight slot.
		c.mu.RLock()
		s, ok := c.schemas[typeID]
		c.mu.RUnlock()
		if ok {
			return s, nil
		}

		raw, err := c.source.Fetch(ctx, typeID)
		if err != nil {
			if c.metrics != nil {
				c.metrics.SchemaFetches.WithLabelValues("error").Inc()
			}
			return nil, &SchemaFetchError{TypeID: typeID, Err: err}
		}

		parsed, err := schema.Parse(raw)
		if err != nil {
			if c.metrics != nil {
				c.metrics.SchemaFetches.WithLabelValues("malformed").Inc()
			}
			return nil, &SchemaFormatError{TypeID: typeID, Err: err}
		}
		if c.metrics != nil {
			c.metrics.SchemaFetches.WithLabelValues("ok").Inc()
		}

		c.mu.Lock()
		c.schemas[typeID] = parsed
		c.mu.Unlock()
		return parsed, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*schema.Schema), nil
}
