package config

import (
	"log"
	"os"
	"strconv"
	"strings"
)

// Get returns the value of an environment variable, or the fallback when
// unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// GetInt returns an integer environment variable, or the fallback when
// unset or unparseable. A bad value is logged, not fatal.
func GetInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: %s=%q is not an integer, using %d", key, v, fallback)
		return fallback
	}
	return n
}
