package config

import "time"

// Config is the root configuration for an ingester instance.
type Config struct {
	Instance   InstanceConfig   `yaml:"instance"`
	Database   DBConfig         `yaml:"database"`
	Server     ServerConfig     `yaml:"server"`
	Feeds      FeedsConfig      `yaml:"feeds"`
	Stream     StreamConfig     `yaml:"stream"`
	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Matcher    MatcherConfig    `yaml:"matcher"`
	Shutdown   ShutdownConfig   `yaml:"shutdown"`
	Health     HealthConfig     `yaml:"health"`
}

// InstanceConfig identifies this ingester.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// DBConfig holds the PostgreSQL connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	PoolSize int    `yaml:"pool_size"`
}

// ServerConfig holds the broadcast websocket server settings.
type ServerConfig struct {
	Addr             string        `yaml:"addr"`
	SharedSecret     string        `yaml:"shared_secret"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	DrainInterval    time.Duration `yaml:"drain_interval"`
}

// FeedsConfig holds the periodic sweep source settings.
type FeedsConfig struct {
	URLs           []string      `yaml:"urls"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// StreamConfig holds the continuous poll source settings.
type StreamConfig struct {
	URL            string        `yaml:"url"`
	AuthToken      string        `yaml:"auth_token"`
	Cooldown       time.Duration `yaml:"cooldown"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// EnrichmentConfig holds the chat-completion enrichment service settings.
type EnrichmentConfig struct {
	Endpoint    string        `yaml:"endpoint"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"max_attempts"`
	RatePerMin  int           `yaml:"rate_per_min"`
	MaxChars    int           `yaml:"max_chars"`
}

// MatcherConfig holds the identity-matcher lookup service settings.
type MatcherConfig struct {
	PrimaryURL   string        `yaml:"primary_url"`
	SecondaryURL string        `yaml:"secondary_url"`
	APIKey       string        `yaml:"api_key"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ShutdownConfig holds graceful shutdown settings.
type ShutdownConfig struct {
	JoinTimeout time.Duration `yaml:"join_timeout"`
}

// HealthConfig holds the health endpoint settings.
type HealthConfig struct {
	Port int `yaml:"port"`
}
