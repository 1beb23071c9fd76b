package ratelimit

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tuncerburak97/iskele/internal/config"
)

// globalKey is the single shared window for the global limit, covering
// every client and route.
const globalKey = "global"

// Service implements the Limiter interface
type Service struct {
	config *config.RateLimitConfig
	store  Store
}

// NewService creates a new rate limiter service
func NewService(cfg *config.RateLimitConfig, store Store) *Service {
	return &Service{
		config: cfg,
		store:  store,
	}
}

// Allow implements the Limiter interface. Per-IP limits are checked before
// the global limit; whitelisted addresses bypass both.
func (s *Service) Allow(c *fiber.Ctx) (*Result, error) {
	if !s.config.Enabled {
		return &Result{Limited: false}, nil
	}

	if s.config.PerIP.Enabled {
		if s.isWhitelisted(c.IP()) {
			return &Result{Limited: false}, nil
		}

		key := s.buildKey(c)
		result, err := s.checkLimit(c.Context(), key.withSuffix("ip"), s.config.PerIP.Requests, s.config.PerIP.Window, s.config.PerIP.Burst)
		if err != nil || result.Limited {
			return result, err
		}
	}

	return s.checkLimit(c.Context(), globalKey, s.config.Global.Requests, s.config.Global.Window, s.config.Global.Burst)
}

// Reset implements the Limiter interface
func (s *Service) Reset(key *Key) error {
	return s.store.Reset(context.Background(), key.String())
}

// Close implements the Limiter interface
func (s *Service) Close() error {
	return s.store.Close()
}

func (s *Service) buildKey(c *fiber.Ctx) *Key {
	return &Key{
		IP:     c.IP(),
		Path:   c.Path(),
		Method: c.Method(),
	}
}

func (s *Service) isWhitelisted(ip string) bool {
	parsed := net.ParseIP(ip)
	for _, entry := range s.config.PerIP.WhiteList {
		if _, ipNet, err := net.ParseCIDR(entry); err == nil {
			if ipNet.Contains(parsed) {
				return true
			}
			continue
		}
		if ip == entry {
			return true
		}
	}
	return false
}

func (s *Service) checkLimit(ctx context.Context, key string, limit int, window time.Duration, burst int) (*Result, error) {
	count, resetTime, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	// If this is a new window
	if time.Now().After(resetTime) {
		resetTime = time.Now().Add(window)
		count = 0
	}

	if count >= limit+burst {
		retryAfter := time.Until(resetTime)
		return &Result{
			Limited:    true,
			Remaining:  0,
			ResetTime:  resetTime,
			RetryAfter: retryAfter,
			LimitHeaders: map[string]string{
				HeaderRateLimit:     strconv.Itoa(limit),
				HeaderRateRemaining: "0",
				HeaderRateReset:     strconv.FormatInt(resetTime.Unix(), 10),
				HeaderRetryAfter:    strconv.FormatInt(int64(retryAfter.Seconds()), 10),
			},
		}, nil
	}

	newCount, err := s.store.Increment(ctx, key, resetTime)
	if err != nil {
		return nil, err
	}

	remaining := limit + burst - newCount
	if remaining < 0 {
		remaining = 0
	}

	return &Result{
		Limited:    false,
		Remaining:  remaining,
		ResetTime:  resetTime,
		RetryAfter: 0,
		LimitHeaders: map[string]string{
			HeaderRateLimit:     strconv.Itoa(limit),
			HeaderRateRemaining: strconv.Itoa(remaining),
			HeaderRateReset:     strconv.FormatInt(resetTime.Unix(), 10),
		},
	}, nil
}
