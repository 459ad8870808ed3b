// Package cache contiene cachés pequeñas en proceso con invalidación explícita.
package cache

import (
	"sync"
	"time"
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// TTL es un mapa cuyas entradas vencen ttl después de guardarse.
// Las entradas vencidas se descartan de forma perezosa en Get y en Sweep.
type TTL[K comparable, V any] struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	items map[K]entry[V]
}

// NewTTL construye una caché. Con now nil se usa time.Now.
func NewTTL[K comparable, V any](ttl time.Duration, now func() time.Time) *TTL[K, V] {
	if now == nil {
		now = time.Now
	}
	return &TTL[K, V]{ttl: ttl, now: now, items: make(map[K]entry[V])}
}

// Get devuelve el valor de key si existe y está vigente.
func (c *TTL[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		c.mu.Lock()
		if cur, still := c.items[key]; still && cur.expiresAt.Equal(e.expiresAt) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set guarda value bajo key. Un ttl no positivo desactiva la caché.
func (c *TTL[K, V]) Set(key K, value V) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
}

// Invalidate descarta key.
func (c *TTL[K, V]) Invalidate(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

// Purge descarta todas las entradas.
func (c *TTL[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.items)
}

// Sweep elimina las entradas vencidas y devuelve cuántas descartó.
func (c *TTL[K, V]) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	n := 0
	for k, e := range c.items {
		if !now.Before(e.expiresAt) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

// Len cuenta las entradas guardadas, incluidas las vencidas hasta el próximo Sweep.
func (c *TTL[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
