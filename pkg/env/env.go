// Package env reads raw environment variables for the few settings that
// must be available before the envconfig-backed configuration is loaded,
// such as the log output format used by the bootstrap logger.
package env

import "os"

// Get returns the value of the given environment variable, or fallback
// when it is unset or empty.
func Get(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
