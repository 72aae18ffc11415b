package database

import (
	"fmt"
	"net/url"

	"github.com/rickgao/coin-tracker/internal/config"
)

// BuildConnString builds a PostgreSQL connection URL from config.
// User and password are escaped so special characters survive.
func BuildConnString(cfg config.DatabaseConfig) string {
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = config.DefaultDBSSLMode
	}

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": []string{sslMode}}.Encode(),
	}
	return u.String()
}
