package http

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/printshop-api/internal/application/dto"
	"golang.org/x/time/rate"
)

// UserRateLimiter mantiene un token bucket por usuario autenticado.
type UserRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rateLimiterEntry
	rate     rate.Limit
	burst    int
	entryTTL time.Duration
	now      func() time.Time
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewUserRateLimiter permite rps peticiones por segundo con ráfagas de burst por usuario.
func NewUserRateLimiter(rps float64, burst int) *UserRateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &UserRateLimiter{
		limiters: make(map[string]*rateLimiterEntry),
		rate:     rate.Limit(rps),
		burst:    burst,
		entryTTL: 10 * time.Minute,
		now:      time.Now,
	}
}

func (rl *UserRateLimiter) getLimiter(userID string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	entry, ok := rl.limiters[userID]
	if !ok {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[userID] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Cleanup descarta los limitadores inactivos por más del TTL de entrada y devuelve cuántos eliminó.
func (rl *UserRateLimiter) Cleanup() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	cutoff := rl.now().Add(-rl.entryTTL)
	n := 0
	for id, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, id)
			n++
		}
	}
	return n
}

// Middleware rechaza con 429 las peticiones que exceden el cupo del usuario. Usar después de AuthMiddleware.
func (rl *UserRateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := GetUserID(c)
		if userID == "" {
			return c.Next()
		}
		limiter := rl.getLimiter(userID)
		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.burst))
		if !limiter.AllowN(rl.now(), 1) {
			c.Set("X-RateLimit-Remaining", "0")
			c.Set("Retry-After", "1")
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{Code: "RATE_LIMITED", Message: "too many requests, please try again later"})
		}
		c.Set("X-RateLimit-Remaining", strconv.Itoa(int(limiter.TokensAt(rl.now()))))
		return c.Next()
	}
}
