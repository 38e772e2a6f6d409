package users

import (
	"context"
	"sync"
	"time"

	ierrors "github.com/jrsteele09/go-oauth2-core/internal/errors"
	"github.com/jrsteele09/go-oauth2-core/oauth2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

type RateLimitConfig interface {
	GetAuthAttemptsPerSecond() float64
	GetAuthAttemptsBurst() int
	GetRateLimiterIdleTimeout() time.Duration
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

var _ Authenticator = (*RateLimitedAuthenticator)(nil)

// RateLimitedAuthenticator applies a token bucket per username in front of
// another authenticator. Idle buckets are removed in the background until
// Stop is called.
type RateLimitedAuthenticator struct {
	next        Authenticator
	limit       rate.Limit
	burst       int
	idleTimeout time.Duration
	nowTime     func() time.Time

	mu       sync.Mutex
	limiters map[oauth2.Username]*limiterEntry

	stopCleanup chan struct{}
	stopOnce    sync.Once
	done        chan struct{}
}

func NewRateLimitedAuthenticator(next Authenticator, cfg RateLimitConfig) *RateLimitedAuthenticator {
	a := &RateLimitedAuthenticator{
		next:        next,
		limit:       rate.Limit(cfg.GetAuthAttemptsPerSecond()),
		burst:       cfg.GetAuthAttemptsBurst(),
		idleTimeout: cfg.GetRateLimiterIdleTimeout(),
		nowTime:     time.Now,
		limiters:    make(map[oauth2.Username]*limiterEntry),
		stopCleanup: make(chan struct{}),
		done:        make(chan struct{}),
	}
	go a.cleanupLoop()
	return a
}

func (a *RateLimitedAuthenticator) Authenticate(ctx context.Context, username oauth2.Username, password string) (*Principal, error) {
	if !a.allow(username) {
		log.Warn().Str("username", username.String()).Msg("authentication rate limit exceeded")
		return nil, errors.Wrapf(ierrors.ErrTooManyAttempts, "[RateLimitedAuthenticator.Authenticate] %s", username)
	}
	return a.next.Authenticate(ctx, username, password)
}

func (a *RateLimitedAuthenticator) allow(username oauth2.Username) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.nowTime()
	entry, ok := a.limiters[username]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(a.limit, a.burst)}
		a.limiters[username] = entry
	}
	entry.lastAccess = now
	return entry.limiter.AllowN(now, 1)
}

func (a *RateLimitedAuthenticator) cleanupLoop() {
	defer close(a.done)

	interval := a.idleTimeout / 2
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.Cleanup()
		case <-a.stopCleanup:
			return
		}
	}
}

// Cleanup removes buckets idle for longer than the idle timeout.
func (a *RateLimitedAuthenticator) Cleanup() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.nowTime()
	removed := 0
	for username, entry := range a.limiters {
		if now.Sub(entry.lastAccess) > a.idleTimeout {
			delete(a.limiters, username)
			removed++
		}
	}
	if removed > 0 {
		log.Debug().Int("removed", removed).Int("remaining", len(a.limiters)).Msg("rate limiter cleanup")
	}
	return removed
}

// Len reports the number of tracked usernames.
func (a *RateLimitedAuthenticator) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.limiters)
}

// Stop ends the cleanup goroutine and waits for it to exit.
func (a *RateLimitedAuthenticator) Stop() {
	a.stopOnce.Do(func() {
		close(a.stopCleanup)
	})
	<-a.done
}

// SetNowTime replaces the clock; tests use it to move buckets through time.
func (a *RateLimitedAuthenticator) SetNowTime(now func() time.Time) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.nowTime = now
}
