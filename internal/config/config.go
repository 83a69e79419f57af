// Copyright (C) 2026 BioGuard contributors.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package config loads the Java-.properties-style key/value file that
// configures a BioGuard server process.
package config

import (
	"bufio"
	"os"
	"strings"

	"github.com/donpedromz/bioguard/internal/errs"
)

// Recognized configuration keys.
const (
	KeyServerPort                  = "server.port"
	KeyKeystorePath                = "ssl.keystore.path"
	KeyKeystorePassword            = "ssl.keystore.password"
	KeyPatientsCSVPath             = "storage.csv.patients.path"
	KeyDiseasesDirectory           = "storage.diseases.directory"
	KeyDiagnosticsDirectory        = "storage.diagnostics.directory"
	KeyHighInfectiousnessDirectory = "storage.reports.high_infectiousness.directory"
)

// Config is the parsed key/value set. Values are trimmed strings; callers
// fetch them through Require, which fails fast when a key a store needs
// is missing or blank.
type Config struct {
	values map[string]string
}

// Load parses path as a .properties file: "key=value" or "key: value"
// lines, "#" and "!" comment lines, blank lines ignored. There is no
// hot-reload; the file is read once at startup.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errs.Wrap(errs.Persistence, "config: open "+path, err)
	}
	defer file.Close()

	values := make(map[string]string)
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "!") {
			continue
		}
		key, value, ok := splitKeyValue(trimmed)
		if !ok {
			continue
		}
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.Persistence, "config: read "+path, err)
	}
	return &Config{values: values}, nil
}

func splitKeyValue(line string) (key, value string, ok bool) {
	if idx := strings.IndexAny(line, "=:"); idx >= 0 {
		return strings.TrimSpace(line[:idx]), strings.TrimSpace(line[idx+1:]), true
	}
	return "", "", false
}

// Require returns the trimmed value for key, or a Persistence-kind error
// naming the missing/blank key if it is absent.
func (c *Config) Require(key string) (string, error) {
	value, ok := c.values[key]
	if !ok || strings.TrimSpace(value) == "" {
		return "", errs.Persistencef("missing or blank required configuration key %q", key)
	}
	return value, nil
}

// Get returns the value for key and whether it was present, without the
// fail-fast behavior of Require.
func (c *Config) Get(key string) (string, bool) {
	value, ok := c.values[key]
	return value, ok
}
