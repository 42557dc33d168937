package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// RateLimiterConfig holds configuration for rate limiting
type RateLimiterConfig struct {
	MaxRequests     int           // Maximum number of requests allowed
	WindowSize      time.Duration // Time window for rate limiting
	CleanupInterval time.Duration // How often to clean up expired entries
}

// DefaultConfig returns a default configuration
func DefaultConfig() *RateLimiterConfig {
	return &RateLimiterConfig{
		MaxRequests:     10,
		WindowSize:      time.Second,
		CleanupInterval: 5 * time.Minute,
	}
}

// RateLimiter implements sliding window rate limiting per key
type RateLimiter struct {
	config      *RateLimiterConfig
	requests    map[string][]time.Time
	mu          sync.Mutex
	stopCleanup chan struct{}
	stopOnce    sync.Once
}

// NewRateLimiter creates a new rate limiter with the given configuration
func NewRateLimiter(config *RateLimiterConfig) *RateLimiter {
	if config == nil {
		config = DefaultConfig()
	}

	rl := &RateLimiter{
		config:      config,
		requests:    make(map[string][]time.Time),
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupExpiredEntries()

	return rl
}

// Allow records a request for key and reports whether it fits in the window
func (rl *RateLimiter) Allow(key string) bool {
	if rl.config.MaxRequests <= 0 {
		return true
	}
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	valid := pruneBefore(rl.requests[key], now.Add(-rl.config.WindowSize))
	if len(valid) >= rl.config.MaxRequests {
		rl.requests[key] = valid
		return false
	}
	rl.requests[key] = append(valid, now)
	return true
}

// Count returns the number of requests for key in the current window
func (rl *RateLimiter) Count(key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(pruneBefore(rl.requests[key], time.Now().Add(-rl.config.WindowSize)))
}

// Reset removes all entries for a given key
func (rl *RateLimiter) Reset(key string) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	delete(rl.requests, key)
}

func pruneBefore(requests []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(requests) && !requests[i].After(cutoff) {
		i++
	}
	return requests[i:]
}

// cleanupExpiredEntries periodically removes expired entries to prevent memory leaks
func (rl *RateLimiter) cleanupExpiredEntries() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *RateLimiter) cleanup() {
	cutoff := time.Now().Add(-rl.config.WindowSize)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, requests := range rl.requests {
		valid := pruneBefore(requests, cutoff)
		if len(valid) == 0 {
			delete(rl.requests, key)
		} else {
			rl.requests[key] = valid
		}
	}
}

// Stop stops the cleanup goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

// MintRateLimiter limits mint submissions per client IP, per caller and in total
type MintRateLimiter struct {
	ipLimiter     *RateLimiter
	callerLimiter *RateLimiter
	globalLimiter *RateLimiter
}

// MintRateLimiterConfig holds one window per limited dimension
type MintRateLimiterConfig struct {
	IPConfig     *RateLimiterConfig
	CallerConfig *RateLimiterConfig
	GlobalConfig *RateLimiterConfig
}

// DefaultMintConfig returns a default mint rate limiting configuration
func DefaultMintConfig() *MintRateLimiterConfig {
	return &MintRateLimiterConfig{
		IPConfig: &RateLimiterConfig{
			MaxRequests:     50,
			WindowSize:      time.Second,
			CleanupInterval: 5 * time.Minute,
		},
		CallerConfig: &RateLimiterConfig{
			MaxRequests:     30,
			WindowSize:      time.Second,
			CleanupInterval: 5 * time.Minute,
		},
		GlobalConfig: &RateLimiterConfig{
			MaxRequests:     1000,
			WindowSize:      time.Second,
			CleanupInterval: 5 * time.Minute,
		},
	}
}

func NewMintRateLimiter(config *MintRateLimiterConfig) *MintRateLimiter {
	if config == nil {
		config = DefaultMintConfig()
	}
	return &MintRateLimiter{
		ipLimiter:     NewRateLimiter(config.IPConfig),
		callerLimiter: NewRateLimiter(config.CallerConfig),
		globalLimiter: NewRateLimiter(config.GlobalConfig),
	}
}

// Check returns a RateLimitError naming the first exceeded limit, or nil
func (l *MintRateLimiter) Check(ip, caller string) error {
	if !l.ipLimiter.Allow(ip) {
		return NewRateLimitError("ip", ip, "too many requests from this address")
	}
	if !l.callerLimiter.Allow(caller) {
		return NewRateLimitError("caller", caller, "too many mint calls from this caller")
	}
	if !l.globalLimiter.Allow("global") {
		return NewRateLimitError("global", "global", "node is at its mint capacity")
	}
	return nil
}

// Stop stops all rate limiters
func (l *MintRateLimiter) Stop() {
	l.ipLimiter.Stop()
	l.callerLimiter.Stop()
	l.globalLimiter.Stop()
}

// RateLimitError represents a rate limit error
type RateLimitError struct {
	Type    string
	Key     string
	Message string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for %s '%s': %s", e.Type, e.Key, e.Message)
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(rateType, key, message string) *RateLimitError {
	return &RateLimitError{
		Type:    rateType,
		Key:     key,
		Message: message,
	}
}
