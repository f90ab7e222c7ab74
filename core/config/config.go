/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package config loads the server configuration from environment variables
// with defaults, and validates it on startup.
package config

import (
	"net"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server      ServerConfig
	Grid        GridConfig
	Preferences PreferencesConfig
	Logging     LoggingConfig
	Data        DataConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: all interfaces)
	Host string `env:"SERVER_HOST"`

	// Port is the port to listen on (default: 8097)
	Port int `env:"SERVER_PORT" default:"8097"`

	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// GridConfig holds the engine defaults shared by every view.
type GridConfig struct {
	// DefaultPageSize applies when a request names no page size (default: 10)
	DefaultPageSize int `env:"GRID_DEFAULT_PAGE_SIZE" default:"10"`

	// GroupSeparator joins the column parts of a group label (default: ",")
	GroupSeparator string `env:"GRID_GROUP_SEPARATOR" default:","`

	// GroupScope is "page" or "dataset" (default: page)
	GroupScope string `env:"GRID_GROUP_SCOPE" default:"page"`

	CaseSensitiveSort bool `env:"GRID_CASE_SENSITIVE_SORT" default:"false"`

	// PrimaryKeyOnly decides sort order on the first usable key only
	PrimaryKeyOnly bool `env:"GRID_PRIMARY_KEY_ONLY_SORT" default:"false"`

	// Language is the BCP 47 tag of the label catalog (default: en)
	Language string `env:"GRID_LANGUAGE" default:"en"`
}

// PreferencesConfig selects where view preferences are persisted.
type PreferencesConfig struct {
	// Backend is memory, file or postgres (default: memory)
	Backend string `env:"PREFS_BACKEND" default:"memory"`

	// FilePath is the JSON document used by the file backend
	FilePath string `env:"PREFS_FILE" default:"grid-preferences.json"`

	// DatabaseURL is the PostgreSQL connection string of the postgres backend
	DatabaseURL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns int `env:"DB_MAX_CONNS" default:"4"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`

	// SeqURL enables shipping logs to a Seq server
	SeqURL string `env:"LOG_SEQ_URL"`
}

// DataConfig lists extra data sources loaded next to the demo views.
type DataConfig struct {
	// CSVFiles are comma-separated CSV paths, one view per file
	CSVFiles []string `env:"DATA_CSV_FILES"`

	// JSONFiles are comma-separated JSON array paths, one view per file
	JSONFiles []string `env:"DATA_JSON_FILES"`

	// CSVDelimiter is the field separator of CSVFiles (default: ",")
	CSVDelimiter string `env:"DATA_CSV_DELIMITER" default:","`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
