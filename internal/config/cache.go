package config

import (
	"strings"
	"time"
)

// CacheConfig tunes the Redis response cache used on the store listing.
// The default key strategy includes the authenticated user because the
// listing embeds the viewer's own rating per store.
type CacheConfig struct {
	Enabled      bool
	Methods      map[string]bool
	TTL          time.Duration
	KeyStrategy  string
	Prefix       string
	MaxBodyBytes int
}

// LoadCacheConfig reads CACHE_* variables with defaults.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBoolDefault("CACHE_ENABLED", true),
		Methods:      parseMethods(envStrDefault("CACHE_METHODS", "GET")),
		TTL:          envDurDefault("CACHE_TTL", 30*time.Second),
		KeyStrategy:  envStrDefault("CACHE_KEY_STRATEGY", "route_query_user"),
		Prefix:       envStrDefault("CACHE_PREFIX", "cache"),
		MaxBodyBytes: envIntDefault("CACHE_MAX_BODY_BYTES", 1<<20),
	}
}

func parseMethods(s string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
