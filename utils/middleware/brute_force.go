package middleware

import (
	"fmt"
	"time"

	"github.com/derstakip/api/utils/cache"
	"github.com/derstakip/api/utils/response"
	"github.com/gofiber/fiber/v2"
)

// BruteForceProtection handles brute force protection using Redis
type BruteForceProtection struct {
	redisCache *cache.RedisCache
}

// NewBruteForceProtection creates a new brute force protection instance
func NewBruteForceProtection(redisCache *cache.RedisCache) *BruteForceProtection {
	return &BruteForceProtection{
		redisCache: redisCache,
	}
}

// CheckAttempt middleware rejects requests from locked-out IPs
func (b *BruteForceProtection) CheckAttempt() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		lockKey := fmt.Sprintf("brute_force:lock:%s", ip)

		// If Redis is down, allow the request. Don't block legitimate
		// users due to cache issues.
		locked, err := b.redisCache.Exists(c.Context(), lockKey)
		if err != nil {
			return c.Next()
		}

		if locked {
			// Get TTL for retry time
			ttl, _ := b.redisCache.TTL(c.Context(), lockKey)
			retryAfter := int(ttl.Seconds())
			if retryAfter < 0 {
				retryAfter = 60
			}

			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return response.TooManyRequests(c, fmt.Sprintf("Too many failed attempts. Try again in %d seconds", retryAfter))
		}

		return c.Next()
	}
}

// RecordFailedAttempt records a failed login attempt and applies progressive lockouts
func (b *BruteForceProtection) RecordFailedAttempt(c *fiber.Ctx, ip string) error {
	ctx := c.Context()
	attemptKey := fmt.Sprintf("brute_force:attempts:%s", ip)
	lockKey := fmt.Sprintf("brute_force:lock:%s", ip)

	attempts, err := b.redisCache.Increment(ctx, attemptKey)
	if err != nil {
		// If Redis is down, just return without blocking
		return nil
	}

	// 15 minute attempt window
	if attempts == 1 {
		b.redisCache.Expire(ctx, attemptKey, 15*time.Minute)
	}

	// Progressive lockouts
	var lockDuration time.Duration
	switch {
	case attempts >= 25:
		lockDuration = 24 * time.Hour
	case attempts >= 10:
		lockDuration = 1 * time.Hour
	case attempts >= 5:
		lockDuration = 2 * time.Minute
	default:
		return nil
	}

	return b.redisCache.Set(ctx, lockKey, "locked", lockDuration)
}

// RecordSuccessfulAttempt clears failed attempts on successful login
func (b *BruteForceProtection) RecordSuccessfulAttempt(c *fiber.Ctx, ip string) error {
	ctx := c.Context()
	attemptKey := fmt.Sprintf("brute_force:attempts:%s", ip)
	lockKey := fmt.Sprintf("brute_force:lock:%s", ip)

	b.redisCache.Delete(ctx, attemptKey)
	b.redisCache.Delete(ctx, lockKey)

	return nil
}
