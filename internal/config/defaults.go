package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultPoolSize         = 4
	DefaultServerAddr       = ":8765"
	DefaultHandshakeTimeout = 10 * time.Second
	DefaultWriteTimeout     = 5 * time.Second
	DefaultDrainInterval    = 100 * time.Millisecond
	DefaultSweepInterval    = 10 * time.Minute
	DefaultFeedTimeout      = 30 * time.Second
	DefaultStreamCooldown   = 60 * time.Second
	DefaultStreamTimeout    = 30 * time.Second
	DefaultEnrichTimeout    = 60 * time.Second
	DefaultEnrichAttempts   = 5
	DefaultEnrichRatePerMin = 60
	DefaultEnrichMaxChars   = 12000
	DefaultMatcherTimeout   = 10 * time.Second
	DefaultJoinTimeout      = 15 * time.Second
	DefaultHealthPort       = 8080
)

func (c *Config) applyDefaults() {
	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.PoolSize == 0 {
		c.Database.PoolSize = DefaultPoolSize
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.HandshakeTimeout == 0 {
		c.Server.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.DrainInterval == 0 {
		c.Server.DrainInterval = DefaultDrainInterval
	}

	// Feed sweep defaults
	if c.Feeds.SweepInterval == 0 {
		c.Feeds.SweepInterval = DefaultSweepInterval
	}
	if c.Feeds.RequestTimeout == 0 {
		c.Feeds.RequestTimeout = DefaultFeedTimeout
	}

	// Stream defaults
	if c.Stream.Cooldown == 0 {
		c.Stream.Cooldown = DefaultStreamCooldown
	}
	if c.Stream.RequestTimeout == 0 {
		c.Stream.RequestTimeout = DefaultStreamTimeout
	}

	// Enrichment defaults
	if c.Enrichment.Timeout == 0 {
		c.Enrichment.Timeout = DefaultEnrichTimeout
	}
	if c.Enrichment.MaxAttempts == 0 {
		c.Enrichment.MaxAttempts = DefaultEnrichAttempts
	}
	if c.Enrichment.RatePerMin == 0 {
		c.Enrichment.RatePerMin = DefaultEnrichRatePerMin
	}
	if c.Enrichment.MaxChars == 0 {
		c.Enrichment.MaxChars = DefaultEnrichMaxChars
	}

	// Matcher defaults
	if c.Matcher.Timeout == 0 {
		c.Matcher.Timeout = DefaultMatcherTimeout
	}

	// Shutdown defaults
	if c.Shutdown.JoinTimeout == 0 {
		c.Shutdown.JoinTimeout = DefaultJoinTimeout
	}

	// Health defaults
	if c.Health.Port == 0 {
		c.Health.Port = DefaultHealthPort
	}
}
