// Package config handles configuration loading for vault-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	server:
//	  key_file: "${VAULT_GATEWAY_KEY}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	auth:
//	  session_ttl: "1h"
//	  purge_interval: "10m"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  addr: "0.0.0.0:8443"                 # TLS listener
//	  cert_file: "/etc/vault-gateway/cert.pem"
//	  key_file: "/etc/vault-gateway/key.pem"
//	  docroot: "/srv/vault-gateway/www"    # optional static files
//
// Database:
//
//	database:
//	  path: "/var/lib/vault-gateway/vault.db"
//
// Authentication:
//
//	auth:
//	  session_ttl: "1h"        # session lifetime, default 1h
//	  purge_interval: "10m"    # expired session sweep, default 10m
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Validation
//
// Load() validates:
//
//   - Server address presence
//   - Database path presence
//   - Duration format validity and sign
//
// TLS material is deliberately not validated here so that offline
// subcommands can run from the same config file.
//
// # Usage
//
//	cfg, err := config.Load("/etc/vault-gateway/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
