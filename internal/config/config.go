package config

import "time"

// TrackerConfig is the root configuration for a tracker instance.
type TrackerConfig struct {
	API      APIConfig      `yaml:"api"`
	Poller   PollerConfig   `yaml:"poller"`
	Store    StoreConfig    `yaml:"store"`
	Detail   DetailConfig   `yaml:"detail"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Writer   WriterConfig   `yaml:"writer"`
	Log      LogConfig      `yaml:"log"`
}

// APIConfig holds CoinGecko API settings.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"` // Optional demo key (x-cg-demo-api-key header)
	Timeout    time.Duration `yaml:"timeout"`
	RetryDelay time.Duration `yaml:"retry_delay"` // Wait before repeating a rate-limited request
}

// PollerConfig holds refresh loop settings.
type PollerConfig struct {
	Interval time.Duration `yaml:"interval"`
	Timeout  time.Duration `yaml:"timeout"`
}

// StoreConfig selects which coins are held.
type StoreConfig struct {
	Page         int  `yaml:"page"`
	PerPage      int  `yaml:"per_page"`
	Sparkline    bool `yaml:"sparkline"`
	DisplayLimit int  `yaml:"display_limit"` // 0 = show everything held
}

// DetailConfig holds coin page settings.
type DetailConfig struct {
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"` // Websocket origins; empty = same host only
}

// DatabaseConfig holds the optional TimescaleDB connection for price snapshots.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
	Migrate  bool   `yaml:"migrate"` // Apply embedded migrations on startup
}

// WriterConfig holds snapshot writer settings.
type WriterConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
}
