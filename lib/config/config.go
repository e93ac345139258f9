// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for secretmint.
//
// Non-secret coordinates (App ID, installation ID, repository, secret
// name, endpoint) come from a YAML file passed via --config, with
// SECRETMINT_* environment variables overriding individual fields.
// There are no fallbacks or automatic discovery — configuration is
// deterministic and auditable.
//
// The private key itself is never part of the config file. It is read
// from the file named by private_key_path (or SECRETMINT_PRIVATE_KEY_PATH)
// into a protected buffer at the start of a run.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for a rotation run. All fields are
// plain coordinates — no secret material.
type Config struct {
	// AppID is the GitHub App's numeric ID, used as the assertion
	// issuer.
	AppID int64 `yaml:"app_id"`

	// InstallationID is the App installation whose token is minted.
	InstallationID int64 `yaml:"installation_id"`

	// PrivateKeyPath names the file holding the App's PEM-encoded RSA
	// private key.
	PrivateKeyPath string `yaml:"private_key_path"`

	// Owner and Repo are the repository coordinates of the target
	// secret.
	Owner string `yaml:"owner"`
	Repo  string `yaml:"repo"`

	// SecretName is the Actions secret to upsert.
	SecretName string `yaml:"secret_name"`

	// BaseURL overrides the API endpoint for GitHub Enterprise Server.
	// Empty means https://api.github.com.
	BaseURL string `yaml:"base_url"`

	// HTTPTimeout bounds each of the three API calls. Must stay well
	// under the nine-minute assertion validity window.
	HTTPTimeout time.Duration `yaml:"http_timeout"`

	// LogFormat selects the slog handler: "text" (default) or "json".
	LogFormat string `yaml:"log_format"`
}

// secretNamePattern is GitHub's secret naming rule: alphanumeric and
// underscores, not starting with a digit.
var secretNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Load reads configuration from the YAML file at path (skipped when
// path is empty) and then applies SECRETMINT_* environment overrides.
// The result is not yet validated — callers apply flag overrides and
// then call Validate.
func Load(path string) (*Config, error) {
	config := &Config{
		HTTPTimeout: 30 * time.Second,
		LogFormat:   "text",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnv overrides fields from SECRETMINT_* environment variables.
func (c *Config) applyEnv() error {
	if value := os.Getenv("SECRETMINT_APP_ID"); value != "" {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("config: SECRETMINT_APP_ID: %w", err)
		}
		c.AppID = id
	}
	if value := os.Getenv("SECRETMINT_INSTALLATION_ID"); value != "" {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("config: SECRETMINT_INSTALLATION_ID: %w", err)
		}
		c.InstallationID = id
	}
	if value := os.Getenv("SECRETMINT_PRIVATE_KEY_PATH"); value != "" {
		c.PrivateKeyPath = value
	}
	if value := os.Getenv("SECRETMINT_OWNER"); value != "" {
		c.Owner = value
	}
	if value := os.Getenv("SECRETMINT_REPO"); value != "" {
		c.Repo = value
	}
	if value := os.Getenv("SECRETMINT_SECRET_NAME"); value != "" {
		c.SecretName = value
	}
	if value := os.Getenv("SECRETMINT_BASE_URL"); value != "" {
		c.BaseURL = value
	}
	if value := os.Getenv("SECRETMINT_HTTP_TIMEOUT"); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("config: SECRETMINT_HTTP_TIMEOUT: %w", err)
		}
		c.HTTPTimeout = timeout
	}
	if value := os.Getenv("SECRETMINT_LOG_FORMAT"); value != "" {
		c.LogFormat = value
	}
	return nil
}

// Validate checks that the configuration is complete and coherent.
// It runs before any network call or key read.
func (c *Config) Validate() error {
	if c.AppID <= 0 {
		return fmt.Errorf("config: app_id is required")
	}
	if c.InstallationID <= 0 {
		return fmt.Errorf("config: installation_id is required")
	}
	if c.PrivateKeyPath == "" {
		return fmt.Errorf("config: private_key_path is required")
	}
	if c.Owner == "" || c.Repo == "" {
		return fmt.Errorf("config: owner and repo are required")
	}
	if c.SecretName == "" {
		return fmt.Errorf("config: secret_name is required")
	}
	if !secretNamePattern.MatchString(c.SecretName) {
		return fmt.Errorf("config: secret_name %q must match %s", c.SecretName, secretNamePattern)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("config: http_timeout must be positive")
	}
	// A call that outlives the assertion wastes the signing cycle.
	if c.HTTPTimeout >= 5*time.Minute {
		return fmt.Errorf("config: http_timeout %s too large (must stay under the assertion validity window)", c.HTTPTimeout)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("config: log_format must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	return nil
}

// Issuer returns the App ID in the string form the assertion's iss
// claim requires.
func (c *Config) Issuer() string {
	return strconv.FormatInt(c.AppID, 10)
}
