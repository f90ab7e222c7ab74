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

package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8097 || cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Grid.DefaultPageSize != 10 || cfg.Grid.GroupSeparator != "," || cfg.Grid.GroupScope != "page" {
		t.Errorf("Grid = %+v", cfg.Grid)
	}
	if cfg.Preferences.Backend != "memory" || cfg.Logging.Level != "info" {
		t.Errorf("Preferences=%+v Logging=%+v", cfg.Preferences, cfg.Logging)
	}
	if cfg.Data.CSVFiles != nil {
		t.Errorf("CSVFiles = %v, want nil", cfg.Data.CSVFiles)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_SHUTDOWN_TIMEOUT", "2s")
	t.Setenv("GRID_DEFAULT_PAGE_SIZE", "25")
	t.Setenv("GRID_GROUP_SCOPE", "dataset")
	t.Setenv("GRID_CASE_SENSITIVE_SORT", "true")
	t.Setenv("PREFS_BACKEND", "postgres")
	t.Setenv("DB_URL", "postgres://grid@localhost/grid")
	t.Setenv("DATA_CSV_FILES", " a.csv, ,b.csv ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 9000 || cfg.Server.ShutdownTimeout != 2*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Grid.DefaultPageSize != 25 || cfg.Grid.GroupScope != "dataset" || !cfg.Grid.CaseSensitiveSort {
		t.Errorf("Grid = %+v", cfg.Grid)
	}
	if cfg.Preferences.DatabaseURL != "postgres://grid@localhost/grid" {
		t.Errorf("DatabaseURL from envAlt = %q", cfg.Preferences.DatabaseURL)
	}
	if len(cfg.Data.CSVFiles) != 2 || cfg.Data.CSVFiles[1] != "b.csv" {
		t.Errorf("CSVFiles = %v, want [a.csv b.csv]", cfg.Data.CSVFiles)
	}
	if strings.Contains(cfg.String(), "grid@localhost") {
		t.Errorf("String() leaks the database URL: %s", cfg.String())
	}
	if cfg.Server.Addr() != ":9000" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name, key, value, want string
	}{
		{"bad integer", "SERVER_PORT", "eighty", "invalid integer"},
		{"bad duration", "SERVER_READ_TIMEOUT", "soon", "invalid duration"},
		{"bad bool", "GRID_PRIMARY_KEY_ONLY_SORT", "maybe", "invalid boolean"},
		{"port range", "SERVER_PORT", "70000", "SERVER_PORT"},
		{"scope", "GRID_GROUP_SCOPE", "table", "GRID_GROUP_SCOPE"},
		{"backend", "PREFS_BACKEND", "redis", "PREFS_BACKEND"},
		{"postgres without url", "PREFS_BACKEND", "postgres", "DATABASE_URL"},
		{"level", "LOG_LEVEL", "loud", "LOG_LEVEL"},
		{"delimiter", "DATA_CSV_DELIMITER", ";;", "DATA_CSV_DELIMITER"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			if err == nil {
				t.Fatalf("Load with %s=%q succeeded", tt.key, tt.value)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
