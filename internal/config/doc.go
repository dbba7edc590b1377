// Package config handles configuration loading for the loco client.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults; a missing config file
// falls back entirely to defaults so the CLI works against LOCO_API_URL alone.
//
// # Configuration File
//
// Default locations (in order):
//
//  1. Path from LOCO_CONFIG environment variable
//  2. $XDG_CONFIG_HOME/loco/client.yaml
//  3. ~/.config/loco/client.yaml
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	api:
//	  base_url: "${LOCO_API_URL}"
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	api:
//	  timeout: "30s"
//	polling:
//	  interval: "1s"
//	  max_attempts: 20
//	notifications:
//	  debounce: "1s"
//
// # Logging
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
package config
