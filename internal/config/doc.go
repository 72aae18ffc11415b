// Package config handles YAML configuration loading with environment variable substitution.
//
// Configuration files support ${VAR} syntax for environment variable interpolation.
// Every section is optional; an empty file yields a working tracker that polls
// the public CoinGecko API without persistence.
package config
