// Package config defines configuration structures for the maptiles CLI.
//
// Configuration can be provided via:
//   - Command-line flags
//   - Environment variables (MAPTILES_ prefix)
//   - YAML configuration file
//
// # Structure
//
//	type Config struct {
//	    URL      string
//	    Country  string
//	    CacheDir string
//	    MinZoom  int
//	    MaxZoom  int
//	    Workers  int
//	    TTL      time.Duration
//	    Progress bool
//	    Retry    RetryConfig
//	}
//
//	type RetryConfig struct {
//	    Attempts   int
//	    Backoff    time.Duration
//	    MaxBackoff time.Duration
//	}
package config
