package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type RateLimitConfig struct {
	Enabled        bool          `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
	Capacity       int           `envconfig:"RATE_LIMIT_CAPACITY" default:"60"`
	RefillTokens   int           `envconfig:"RATE_LIMIT_REFILL_TOKENS" default:"1"`
	RefillInterval time.Duration `envconfig:"RATE_LIMIT_REFILL_INTERVAL" default:"1s"`
	TTL            time.Duration `envconfig:"RATE_LIMIT_TTL" default:"10m"`
	KeyStrategy    string        `envconfig:"RATE_LIMIT_KEY_STRATEGY" default:"ip_user_route"`
	Prefix         string        `envconfig:"RATE_LIMIT_PREFIX" default:"rl"`
	Debug          bool          `envconfig:"RATE_LIMIT_DEBUG" default:"false"`
}

func LoadRateLimitConfig() RateLimitConfig {
	var c RateLimitConfig
	if err := envconfig.Process("", &c); err != nil {
		c = RateLimitConfig{Enabled: true, Capacity: 60, RefillTokens: 1, RefillInterval: time.Second,
			TTL: 10 * time.Minute, KeyStrategy: "ip_user_route", Prefix: "rl"}
	}
	return c.normalized()
}

// normalized clamps values so the limiter script never divides by zero and
// buckets outlive at least a few refill intervals.
func (c RateLimitConfig) normalized() RateLimitConfig {
	if c.Capacity < 1 {
		c.Capacity = 1
	}
	if c.RefillTokens < 1 {
		c.RefillTokens = 1
	}
	if c.RefillInterval <= 0 {
		c.RefillInterval = time.Second
	}
	if minTTL := 5 * c.RefillInterval; c.TTL < minTTL {
		c.TTL = minTTL
	}
	return c
}
