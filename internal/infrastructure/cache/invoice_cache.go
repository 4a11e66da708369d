package cache

import (
	"context"
	"sync"
	"time"

	"github.com/precifica/backend/internal/domain"
)

// entry holds one cached invoice with its priced rows and expiration.
type entry struct {
	invoice    *domain.Invoice
	priced     []domain.PricedProduct
	expiration time.Time
}

// InvoiceCache is a thread-safe in-memory TTL cache for recently imported
// invoices, consulted before storage on read paths.
type InvoiceCache struct {
	data  map[string]entry
	mutex sync.RWMutex
}

// NewInvoiceCache creates a new invoice cache and starts its expiry sweep.
func NewInvoiceCache() *InvoiceCache {
	c := &InvoiceCache{
		data: make(map[string]entry),
	}

	go c.cleanupExpired()

	return c
}

// Get returns the cached invoice and priced rows for a key, or
// domain.ErrCacheMiss when absent or expired.
func (c *InvoiceCache) Get(ctx context.Context, key string) (*domain.Invoice, []domain.PricedProduct, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	e, exists := c.data[key]
	if !exists || time.Now().After(e.expiration) {
		return nil, nil, domain.ErrCacheMiss
	}

	return e.invoice, e.priced, nil
}

// Set stores an invoice with its priced rows under the given TTL.
func (c *InvoiceCache) Set(ctx context.Context, key string, invoice *domain.Invoice, priced []domain.PricedProduct, ttl time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = entry{
		invoice:    invoice,
		priced:     priced,
		expiration: time.Now().Add(ttl),
	}
	return nil
}

// Delete removes an invoice from the cache.
func (c *InvoiceCache) Delete(ctx context.Context, key string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
	return nil
}

// cleanupExpired removes expired entries every 10 minutes.
func (c *InvoiceCache) cleanupExpired() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		c.mutex.Lock()
		for key, e := range c.data {
			if now.After(e.expiration) {
				delete(c.data, key)
			}
		}
		c.mutex.Unlock()
	}
}
