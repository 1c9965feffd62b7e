// Copyright (c) 2025 Archmagece
// SPDX-License-Identifier: MIT

// Package ratelimit implements the per-provider rate-limit gate and the git
// transient-error classifier specified together as C7: token-aware backoff
// for provider HTTP calls, and stderr-based retry eligibility for git
// subprocess invocations.
package ratelimit

import (
	"context"
	"math/rand"
	"net/http"
	"strconv"
	"sync"
	"time"

	mgiterrors "github.com/mgit-io/mgit/internal/errors"
)

// Config tunes a Gate's waiting and backoff behavior.
type Config struct {
	MaxWait       time.Duration // fail fast beyond this instead of blocking
	BackoffBase   time.Duration
	BackoffMax    time.Duration
	BackoffFactor float64
}

// DefaultConfig matches spec.md §4.C7's defaults.
func DefaultConfig() Config {
	return Config{
		MaxWait:       300 * time.Second,
		BackoffBase:   1 * time.Second,
		BackoffMax:    60 * time.Second,
		BackoffFactor: 2.0,
	}
}

// Gate is a per-provider-instance rate-limit tracker. It caches the last
// observed limit/remaining/reset from response headers and, before the
// next call, either waits out a near-exhausted budget or fails fast when
// the wait would exceed MaxWait.
type Gate struct {
	providerConfigName string
	cfg                Config

	mu        sync.Mutex
	limit     int
	remaining int
	reset     time.Time
	retry     int
}

// NewGate creates a Gate for the named provider config, using
// DefaultConfig.
func NewGate(providerConfigName string) *Gate {
	return NewGateWithConfig(providerConfigName, DefaultConfig())
}

// NewGateWithConfig creates a Gate with an explicit Config.
func NewGateWithConfig(providerConfigName string, cfg Config) *Gate {
	return &Gate{providerConfigName: providerConfigName, cfg: cfg, remaining: -1}
}

// BeforeCall blocks until it is safe to make another API call, or returns a
// RateLimitError if the wait would exceed cfg.MaxWait.
func (g *Gate) BeforeCall(ctx context.Context) error {
	g.mu.Lock()
	remaining, reset := g.remaining, g.reset
	g.mu.Unlock()

	if remaining > 1 || reset.IsZero() {
		return nil
	}

	wait := time.Until(reset) + time.Second
	if wait <= 0 {
		return nil
	}
	if wait > g.cfg.MaxWait {
		return mgiterrors.NewRateLimitError(g.providerConfigName, wait)
	}

	select {
	case <-time.After(wait):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ObserveHeaders caches the rate-limit window from an HTTP response,
// accepting either the canonical X-RateLimit-* or legacy X-Rate-Limit-*
// header names.
func (g *Gate) ObserveHeaders(h http.Header) {
	limit := firstHeader(h, "X-RateLimit-Limit", "X-Rate-Limit-Limit")
	remaining := firstHeader(h, "X-RateLimit-Remaining", "X-Rate-Limit-Remaining")
	reset := firstHeader(h, "X-RateLimit-Reset", "X-Rate-Limit-Reset")

	if limit == "" && remaining == "" && reset == "" {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if v, err := strconv.Atoi(limit); err == nil {
		g.limit = v
	}
	if v, err := strconv.Atoi(remaining); err == nil {
		g.remaining = v
	}
	if v, err := strconv.ParseInt(reset, 10, 64); err == nil {
		g.reset = time.Unix(v, 0)
	}
}

func firstHeader(h http.Header, names ...string) string {
	for _, name := range names {
		if v := h.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// NextBackoff returns the exponential backoff for the given retry attempt
// (0-based), capped at BackoffMax and scaled by a random jitter factor in
// [0.1, 1.0). The caller supplies the attempt number; the Gate does not
// count attempts itself.
func (g *Gate) NextBackoff(attempt int) time.Duration {
	base := float64(g.cfg.BackoffBase)
	delay := base * pow(g.cfg.BackoffFactor, attempt)
	if d := time.Duration(delay); d < g.cfg.BackoffMax {
		jitter := 0.1 + rand.Float64()*0.9
		return time.Duration(float64(d) * jitter)
	}
	jitter := 0.1 + rand.Float64()*0.9
	return time.Duration(float64(g.cfg.BackoffMax) * jitter)
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}
