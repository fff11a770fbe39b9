package di

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ReferencePolicy bounds a cache of [WeakSingleton] or [SoftSingleton] instances.
//
// Instances are released when the cache is full (least recently used first), when they have not
// been stored for longer than TTL, or when the Graph is asked to release them.
type ReferencePolicy struct {
	// Size is the maximum number of instances. Zero means unbounded.
	Size int
	// TTL is how long an instance is kept. Zero means no expiration.
	TTL time.Duration
}

var (
	defaultWeakPolicy = ReferencePolicy{Size: 64}
	defaultSoftPolicy = ReferencePolicy{Size: 256}
)

// referenceCache holds the instances of reference scoped services. The cache of a root Graph is
// shared by its subgraphs unless they are configured with their own policy.
type referenceCache struct {
	lru *expirable.LRU[*referenceService, any]
}

func newReferenceCache(p ReferencePolicy) *referenceCache {
	return &referenceCache{
		lru: expirable.NewLRU[*referenceService, any](p.Size, nil, p.TTL),
	}
}

func (c *referenceCache) get(s *referenceService) (any, bool) {
	return c.lru.Get(s)
}

func (c *referenceCache) put(s *referenceService, val any) {
	c.lru.Add(s, val)
}

func (c *referenceCache) remove(s *referenceService) {
	c.lru.Remove(s)
}

func (c *referenceCache) purge() {
	c.lru.Purge()
}

func (c *referenceCache) len() int {
	return c.lru.Len()
}
