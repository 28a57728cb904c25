/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package postgres

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
)

// ConnConfig holds the connection settings for one PostgreSQL database.
// Two configs are equivalent iff their Fingerprint values are byte-identical.
// A config is built once per entity type and treated as immutable afterwards.
type ConnConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`

	// MaxOpenConns bounds the pool size. Zero leaves the driver default.
	MaxOpenConns int `yaml:"maxOpenConns"`
	// MaxIdleConns bounds the idle connections kept by the pool.
	MaxIdleConns int `yaml:"maxIdleConns"`
}

// settings returns the non-empty connection parameters as key/value pairs.
// Pool sizing is process-local and deliberately excluded: two configs that
// differ only in pool sizing still address the same database.
func (c *ConnConfig) settings() map[string]string {
	m := make(map[string]string, 6)
	if c.Host != "" {
		m["host"] = c.Host
	}
	if c.Port != 0 {
		m["port"] = strconv.Itoa(c.Port)
	}
	if c.User != "" {
		m["user"] = c.User
	}
	if c.Password != "" {
		m["password"] = c.Password
	}
	if c.Database != "" {
		m["dbname"] = c.Database
	}
	if c.SSLMode != "" {
		m["sslmode"] = c.SSLMode
	}
	return m
}

// Fingerprint returns the canonical serialized form of the config:
// keys sorted, stable key=value encoding. It is the pool cache key.
func (c *ConnConfig) Fingerprint() string {
	m := c.settings()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+m[k])
	}
	return strings.Join(pairs, " ")
}

// RedactedFingerprint returns the fingerprint with the password masked.
// Error messages and logs must use this form, never Fingerprint: the full
// fingerprint carries the plaintext password.
func (c *ConnConfig) RedactedFingerprint() string {
	m := c.settings()
	if _, ok := m["password"]; ok {
		m["password"] = "***"
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+m[k])
	}
	return strings.Join(pairs, " ")
}

// DSN returns the lib/pq connection string for the config. Values are
// quoted so credentials containing spaces survive parsing.
func (c *ConnConfig) DSN() string {
	m := c.settings()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s='%s'", k, quoteDSNValue(m[k])))
	}
	return strings.Join(pairs, " ")
}

func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}

// FromEnv builds a ConnConfig from the conventional PG* environment
// variables. Call godotenv.Load beforehand to pick up a .env file.
func FromEnv() *ConnConfig {
	cfg := &ConnConfig{
		Host:     os.Getenv("PGHOST"),
		User:     os.Getenv("PGUSER"),
		Password: os.Getenv("PGPASSWORD"),
		Database: os.Getenv("PGDATABASE"),
		SSLMode:  os.Getenv("PGSSLMODE"),
	}
	if p := os.Getenv("PGPORT"); p != "" {
		if port, err := strconv.Atoi(p); err == nil {
			cfg.Port = port
		}
	}
	return cfg
}
