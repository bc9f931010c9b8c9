package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	if c.Server.SharedSecret == "" {
		return errors.New("server.shared_secret is required")
	}

	if len(c.Feeds.URLs) == 0 && c.Stream.URL == "" {
		return errors.New("at least one of feeds.urls or stream.url is required")
	}

	if c.Enrichment.Endpoint == "" {
		return errors.New("enrichment.endpoint is required")
	}
	if c.Enrichment.Model == "" {
		return errors.New("enrichment.model is required")
	}
	if c.Enrichment.MaxAttempts < 1 {
		return errors.New("enrichment.max_attempts must be >= 1")
	}

	if c.Health.Port < 1 || c.Health.Port > 65535 {
		return fmt.Errorf("health.port must be between 1 and 65535, got %d", c.Health.Port)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.PoolSize < 1 {
		return fmt.Errorf("%s.pool_size must be >= 1", prefix)
	}
	return nil
}
