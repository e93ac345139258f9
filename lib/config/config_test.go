// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		AppID:          12345,
		InstallationID: 67890,
		PrivateKeyPath: "/run/secrets/app.pem",
		Owner:          "octo",
		Repo:           "hello",
		SecretName:     "DEPLOY_TOKEN",
		HTTPTimeout:    30 * time.Second,
		LogFormat:      "text",
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secretmint.yaml")
	content := `
app_id: 12345
installation_id: 67890
private_key_path: /run/secrets/app.pem
owner: octo
repo: hello
secret_name: DEPLOY_TOKEN
http_timeout: 20s
log_format: json
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	config, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if config.AppID != 12345 {
		t.Errorf("AppID = %d", config.AppID)
	}
	if config.InstallationID != 67890 {
		t.Errorf("InstallationID = %d", config.InstallationID)
	}
	if config.HTTPTimeout != 20*time.Second {
		t.Errorf("HTTPTimeout = %s", config.HTTPTimeout)
	}
	if config.LogFormat != "json" {
		t.Errorf("LogFormat = %q", config.LogFormat)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	config, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if config.HTTPTimeout != 30*time.Second {
		t.Errorf("default HTTPTimeout = %s, want 30s", config.HTTPTimeout)
	}
	if config.LogFormat != "text" {
		t.Errorf("default LogFormat = %q, want text", config.LogFormat)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SECRETMINT_APP_ID", "99")
	t.Setenv("SECRETMINT_SECRET_NAME", "OTHER_NAME")
	t.Setenv("SECRETMINT_HTTP_TIMEOUT", "45s")

	config, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if config.AppID != 99 {
		t.Errorf("AppID = %d, want 99", config.AppID)
	}
	if config.SecretName != "OTHER_NAME" {
		t.Errorf("SecretName = %q", config.SecretName)
	}
	if config.HTTPTimeout != 45*time.Second {
		t.Errorf("HTTPTimeout = %s", config.HTTPTimeout)
	}
}

func TestLoad_BadEnvValue(t *testing.T) {
	t.Setenv("SECRETMINT_APP_ID", "not-a-number")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric SECRETMINT_APP_ID")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing app id", func(c *Config) { c.AppID = 0 }},
		{"missing installation id", func(c *Config) { c.InstallationID = 0 }},
		{"missing key path", func(c *Config) { c.PrivateKeyPath = "" }},
		{"missing owner", func(c *Config) { c.Owner = "" }},
		{"missing repo", func(c *Config) { c.Repo = "" }},
		{"missing secret name", func(c *Config) { c.SecretName = "" }},
		{"secret name starts with digit", func(c *Config) { c.SecretName = "1BAD" }},
		{"secret name with dash", func(c *Config) { c.SecretName = "BAD-NAME" }},
		{"zero timeout", func(c *Config) { c.HTTPTimeout = 0 }},
		{"timeout exceeds assertion window", func(c *Config) { c.HTTPTimeout = 10 * time.Minute }},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := validConfig()
			test.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestIssuer(t *testing.T) {
	config := validConfig()
	if got := config.Issuer(); got != "12345" {
		t.Errorf("Issuer() = %q, want %q", got, "12345")
	}
}
