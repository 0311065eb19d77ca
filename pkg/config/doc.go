// Package config loads application configuration from environment
// variables into tagged Go structs.
//
// It wraps github.com/joho/godotenv and github.com/caarlos0/env/v11 so that
// every package can declare its own config struct and load it independently:
//
//	type Config struct {
//	    Addr string `env:"HTTP_ADDR" envDefault:":8080"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Each configuration type is parsed at most once per process; subsequent
// Load calls for the same type return the cached copy.
package config
