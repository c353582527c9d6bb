// Package config handles configuration loading, parsing, and validation
// from environment variables and an optional config file. Environment
// variables use the RECEIPT_ prefix, e.g. RECEIPT_DATABASE_URL.
package config
