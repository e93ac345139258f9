// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package rotate orchestrates the credential rotation pipeline: build
// a signed assertion from the App's private key, exchange it for a
// short-lived installation token, fetch the repository's secret
// encryption key, seal the token under it, and upsert the sealed value
// as an Actions secret.
//
// The four steps run strictly in sequence; each consumes its
// predecessor's output and nothing is retained between runs. A run is
// safely repeatable: the only durable effect is the store-side secret
// upsert, which is atomic and last-writer-wins, so overlapping runs
// need no mutual exclusion.
package rotate

import (
	"context"
	"errors"
	"log/slog"

	"github.com/bureau-foundation/secretmint/lib/assertion"
	"github.com/bureau-foundation/secretmint/lib/clock"
	"github.com/bureau-foundation/secretmint/lib/github"
	"github.com/bureau-foundation/secretmint/lib/sealbox"
	"github.com/bureau-foundation/secretmint/lib/secret"
)

// Options configures a rotation run. All values are scoped to the run;
// the pipeline holds no state across runs.
type Options struct {
	// Issuer is the App ID in string form, used as the assertion's
	// iss claim.
	Issuer string

	// InstallationID selects the App installation the minted token is
	// scoped to.
	InstallationID int64

	// Owner, Repo, and SecretName locate the target secret.
	Owner      string
	Repo       string
	SecretName string

	// PrivateKeyPEM holds the App's PEM-encoded RSA private key. The
	// pipeline parses it at the start of the run and closes the
	// buffer as soon as the assertion is signed. Ownership transfers
	// to Run.
	PrivateKeyPEM *secret.Buffer

	// DryRun performs every step except the final publish.
	DryRun bool
}

// Rotator executes rotation runs against one store client.
type Rotator struct {
	client *github.Client
	clock  clock.Clock
	logger *slog.Logger
}

// New creates a Rotator. A nil clock defaults to clock.Real(); a nil
// logger defaults to slog.Default().
func New(client *github.Client, clk clock.Clock, logger *slog.Logger) *Rotator {
	if clk == nil {
		clk = clock.Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Rotator{
		client: client,
		clock:  clk,
		logger: logger,
	}
}

// Run executes one rotation. On success the target secret holds the
// freshly minted installation token, sealed under the repository's
// current public key. On failure the previous secret value is
// untouched: every error before the final upsert is a safe abort, and
// the upsert itself is atomic on the store side.
//
// The returned error is always a *Error carrying the failing stage's
// Kind.
func (r *Rotator) Run(ctx context.Context, options Options) error {
	started := r.clock.Now()

	// Step 1: build the signed assertion. The private key is parsed
	// from the protected buffer and the buffer is released as soon as
	// signing is done — nothing later in the run needs it.
	if options.PrivateKeyPEM == nil {
		return fail(KindConfiguration, errors.New("no private key provided"))
	}
	privateKey, err := assertion.ParseRSAPrivateKey(options.PrivateKeyPEM.Bytes())
	if err != nil {
		options.PrivateKeyPEM.Close()
		return fail(KindConfiguration, err)
	}
	signedAssertion, err := assertion.Build(options.Issuer, privateKey, r.clock.Now())
	options.PrivateKeyPEM.Close()
	if err != nil {
		return fail(KindSigning, err)
	}
	r.logger.Info("assertion signed", "issuer", options.Issuer)

	// Step 2: exchange the assertion for an installation token. The
	// assertion is used exactly once; any failure here abandons it.
	token, err := r.client.ExchangeInstallationToken(ctx, signedAssertion, options.InstallationID)
	if err != nil {
		return fail(KindUpstream, err)
	}
	r.logger.Info("installation token minted", "installation_id", options.InstallationID)

	// Step 3: fetch the repository's current public key. Key format
	// problems (absent field, bad base64, wrong length) surface here,
	// before any sealing is attempted; they classify as encryption
	// errors because they make the sealing scheme inapplicable.
	publicKey, err := r.client.GetActionsPublicKey(ctx, token, options.Owner, options.Repo)
	if err != nil {
		var apiError *github.APIError
		if errors.As(err, &apiError) {
			return fail(KindUpstream, err)
		}
		return fail(KindEncryption, err)
	}
	r.logger.Info("public key fetched",
		"key_id", publicKey.KeyID,
		"fingerprint", sealbox.Fingerprint(publicKey.Key),
	)

	// Step 4: seal the token and publish. Sealing failure must abort
	// before the network call — a partially-encrypted or empty payload
	// must never reach the store.
	sealedValue, err := sealbox.Seal([]byte(token), publicKey.Key)
	if err != nil {
		return fail(KindEncryption, err)
	}

	if options.DryRun {
		r.logger.Info("dry run: skipping publish",
			"secret", options.SecretName,
			"repository", options.Owner+"/"+options.Repo,
		)
		return nil
	}

	if err := r.client.PutActionsSecret(ctx, token, options.Owner, options.Repo, options.SecretName, sealedValue, publicKey.KeyID); err != nil {
		return fail(KindUpstream, err)
	}

	r.logger.Info("secret rotated",
		"secret", options.SecretName,
		"repository", options.Owner+"/"+options.Repo,
		"key_id", publicKey.KeyID,
		"duration", r.clock.Now().Sub(started),
	)
	return nil
}

// KindOf extracts the failure classification from an error returned by
// Run. Returns 0 for nil or foreign errors.
func KindOf(err error) Kind {
	var runError *Error
	if errors.As(err, &runError) {
		return runError.Kind
	}
	return 0
}
