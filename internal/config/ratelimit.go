package config

import "time"

// RateLimitConfig tunes the Redis token-bucket limiter that guards the
// open auth endpoints. KeyStrategy selects what identifies a caller:
// "ip", "ip_route" or "ip_user_route".
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
	Debug          bool
}

// LoadRateLimitConfig reads RATE_LIMIT_* variables, clamping nonsense
// values to workable ones rather than failing startup.
func LoadRateLimitConfig() RateLimitConfig {
	cfg := RateLimitConfig{
		Enabled:        envBoolDefault("RATE_LIMIT_ENABLED", true),
		Capacity:       envIntDefault("RATE_LIMIT_CAPACITY", 60),
		RefillTokens:   envIntDefault("RATE_LIMIT_REFILL_TOKENS", 1),
		RefillInterval: envDurDefault("RATE_LIMIT_REFILL_INTERVAL", time.Second),
		TTL:            envDurDefault("RATE_LIMIT_TTL", 10*time.Minute),
		KeyStrategy:    envStrDefault("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		Prefix:         envStrDefault("RATE_LIMIT_PREFIX", "rl"),
		Debug:          envBoolDefault("RATE_LIMIT_DEBUG", false),
	}
	if cfg.Capacity < 1 {
		cfg.Capacity = 1
	}
	if cfg.RefillTokens < 1 {
		cfg.RefillTokens = 1
	}
	if cfg.RefillInterval <= 0 {
		cfg.RefillInterval = time.Second
	}
	// Bucket state must outlive several refill cycles or idle callers
	// would reset to a full bucket too quickly.
	if min := 5 * cfg.RefillInterval; cfg.TTL < min {
		cfg.TTL = min
	}
	return cfg
}
