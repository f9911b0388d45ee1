// Package config loads the service configuration from VOCA_* environment
// variables, an optional config.yaml and an optional .env file, applies
// defaults and validates the result once at startup.
package config
