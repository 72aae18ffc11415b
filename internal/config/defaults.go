package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL         = "https://api.coingecko.com/api/v3"
	DefaultAPITimeout      = 10 * time.Second
	DefaultRetryDelay      = 1 * time.Second
	DefaultPollInterval    = 60 * time.Second
	DefaultPollTimeout     = 15 * time.Second
	DefaultPage            = 1
	DefaultPerPage         = 100
	DefaultCacheTTL        = 60 * time.Second
	DefaultServerAddr      = ":8080"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultDBPort          = 5432
	DefaultDBSSLMode       = "prefer"
	DefaultMaxConns        = 4
	DefaultMinConns        = 1
	DefaultBatchSize       = 500
	DefaultFlushInterval   = 5 * time.Second
	DefaultBufferSize      = 5000
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "text"
)

func (c *TrackerConfig) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.RetryDelay == 0 {
		c.API.RetryDelay = DefaultRetryDelay
	}

	// Poller defaults
	if c.Poller.Interval == 0 {
		c.Poller.Interval = DefaultPollInterval
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}

	// Store defaults
	if c.Store.Page == 0 {
		c.Store.Page = DefaultPage
	}
	if c.Store.PerPage == 0 {
		c.Store.PerPage = DefaultPerPage
	}

	// Detail defaults
	if c.Detail.CacheTTL == 0 {
		c.Detail.CacheTTL = DefaultCacheTTL
	}

	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Database defaults
	if c.Database.Port == 0 {
		c.Database.Port = DefaultDBPort
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = DefaultDBSSLMode
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = DefaultMaxConns
	}
	if c.Database.MinConns == 0 {
		c.Database.MinConns = DefaultMinConns
	}

	// Writer defaults
	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = DefaultBatchSize
	}
	if c.Writer.FlushInterval == 0 {
		c.Writer.FlushInterval = DefaultFlushInterval
	}
	if c.Writer.BufferSize == 0 {
		c.Writer.BufferSize = DefaultBufferSize
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
