// Package dnscache provides a thread-safe, TTL-based cache for DNS MX lookups
// with deduplication of concurrent lookups for the same domain.
package dnscache

import (
	"context"
	"net"
	"strings"
	"sync"
	"time"
)

// Resolver is the part of *net.Resolver the cache depends on.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Cache is a thread-safe DNS MX lookup cache.
// Successful lookups live for ttl, failed ones for errTTL.
type Cache struct {
	mu            sync.Mutex
	entries       map[string]*entry
	ttl           time.Duration
	errTTL        time.Duration
	lookupTimeout time.Duration
	resolver      Resolver
}

type entry struct {
	records []*net.MX
	err     error
	expires time.Time
	done    chan struct{} // closed when lookup is complete
}

// New creates a cache backed by the system resolver.
func New(lookupTimeout, ttl time.Duration) *Cache {
	return NewWithResolver(lookupTimeout, ttl, net.DefaultResolver)
}

// NewWithResolver creates a cache with a custom resolver.
func NewWithResolver(lookupTimeout, ttl time.Duration, r Resolver) *Cache {
	return &Cache{
		entries:       make(map[string]*entry),
		ttl:           ttl,
		errTTL:        ttl / 5,
		lookupTimeout: lookupTimeout,
		resolver:      r,
	}
}

// LookupMX returns MX records for the domain, using the cache when possible.
// A waiter that gives up because ctx is done gets ctx.Err(); the lookup
// itself keeps running for the other waiters.
func (c *Cache) LookupMX(ctx context.Context, domain string) ([]*net.MX, error) {
	domain = strings.ToLower(strings.TrimSuffix(domain, "."))

	c.mu.Lock()
	if e, ok := c.entries[domain]; ok {
		select {
		case <-e.done:
			if time.Now().Before(e.expires) {
				c.mu.Unlock()
				return copyMX(e.records), e.err
			}
		default:
			c.mu.Unlock()
			return wait(ctx, e)
		}
	}

	e := &entry{done: make(chan struct{})}
	c.entries[domain] = e
	c.mu.Unlock()

	go c.fill(domain, e)
	return wait(ctx, e)
}

// Len returns the number of entries in the cache.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) fill(domain string, e *entry) {
	ctx, cancel := context.WithTimeout(context.Background(), c.lookupTimeout)
	defer cancel()

	e.records, e.err = c.resolver.LookupMX(ctx, domain)
	ttl := c.ttl
	if e.err != nil {
		ttl = c.errTTL
	}
	e.expires = time.Now().Add(ttl)
	close(e.done)
}

func wait(ctx context.Context, e *entry) ([]*net.MX, error) {
	select {
	case <-e.done:
		return copyMX(e.records), e.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// copyMX returns a deep copy so callers can sort and trim freely.
func copyMX(records []*net.MX) []*net.MX {
	if records == nil {
		return nil
	}
	out := make([]*net.MX, len(records))
	for i, r := range records {
		cp := *r
		out[i] = &cp
	}
	return out
}
