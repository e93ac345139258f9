// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// secretmint mints a GitHub App installation access token and
// re-publishes it as an encrypted Actions repository secret. It runs
// one rotation per invocation and exits: zero only after a confirmed
// publish, non-zero on any failure. Recurrence comes from an external
// scheduler (cron, systemd timer, or a scheduled workflow) — the run
// itself is stateless and safely repeatable, so overlapping
// invocations degrade to last-writer-wins on the stored secret.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/secretmint/lib/clock"
	"github.com/bureau-foundation/secretmint/lib/config"
	"github.com/bureau-foundation/secretmint/lib/github"
	"github.com/bureau-foundation/secretmint/lib/process"
	"github.com/bureau-foundation/secretmint/lib/rotate"
	"github.com/bureau-foundation/secretmint/lib/secret"
	"github.com/bureau-foundation/secretmint/lib/version"
)

func main() {
	if err := run(); err != nil {
		process.Fatal(err)
	}
}

func run() error {
	flags := pflag.NewFlagSet("secretmint", pflag.ContinueOnError)
	var (
		configPath     string
		appID          int64
		installationID int64
		privateKeyPath string
		owner          string
		repo           string
		secretName     string
		baseURL        string
		httpTimeout    time.Duration
		logFormat      string
		dryRun         bool
		showVersion    bool
	)

	flags.StringVar(&configPath, "config", "", "path to YAML config file")
	flags.Int64Var(&appID, "app-id", 0, "GitHub App ID (assertion issuer)")
	flags.Int64Var(&installationID, "installation-id", 0, "App installation ID")
	flags.StringVar(&privateKeyPath, "private-key", "", "path to the App's PEM-encoded RSA private key")
	flags.StringVar(&owner, "owner", "", "repository owner")
	flags.StringVar(&repo, "repo", "", "repository name")
	flags.StringVar(&secretName, "secret-name", "", "Actions secret to upsert")
	flags.StringVar(&baseURL, "base-url", "", "API base URL (for GitHub Enterprise Server)")
	flags.DurationVar(&httpTimeout, "timeout", 0, "per-call HTTP timeout")
	flags.StringVar(&logFormat, "log-format", "", "log format: text or json")
	flags.BoolVar(&dryRun, "dry-run", false, "run the pipeline but skip the final publish")
	flags.BoolVar(&showVersion, "version", false, "print version information and exit")

	if err := flags.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}

	if showVersion {
		version.Print("secretmint")
		return nil
	}

	// Config file and environment first, explicit flags last.
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if flags.Changed("app-id") {
		cfg.AppID = appID
	}
	if flags.Changed("installation-id") {
		cfg.InstallationID = installationID
	}
	if flags.Changed("private-key") {
		cfg.PrivateKeyPath = privateKeyPath
	}
	if flags.Changed("owner") {
		cfg.Owner = owner
	}
	if flags.Changed("repo") {
		cfg.Repo = repo
	}
	if flags.Changed("secret-name") {
		cfg.SecretName = secretName
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = baseURL
	}
	if flags.Changed("timeout") {
		cfg.HTTPTimeout = httpTimeout
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = logFormat
	}

	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := newLogger(cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := github.NewClient(github.Config{
		BaseURL: cfg.BaseURL,
		HTTPClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	// Read the private key into a protected buffer. The rotator owns
	// the buffer from here and releases it as soon as the assertion
	// is signed.
	privateKeyPEM, err := secret.ReadFromPath(cfg.PrivateKeyPath)
	if err != nil {
		return fmt.Errorf("reading private key: %w", err)
	}

	rotator := rotate.New(client, clock.Real(), logger)
	return rotator.Run(ctx, rotate.Options{
		Issuer:         cfg.Issuer(),
		InstallationID: cfg.InstallationID,
		Owner:          cfg.Owner,
		Repo:           cfg.Repo,
		SecretName:     cfg.SecretName,
		PrivateKeyPEM:  privateKeyPEM,
		DryRun:         dryRun,
	})
}

// newLogger builds the process logger. Logs go to stderr; stdout is
// reserved for --version output.
func newLogger(format string) *slog.Logger {
	if format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}
