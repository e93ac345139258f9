// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bureau-foundation/secretmint/lib/sealbox"
)

// PublicKey is a repository's Actions secret encryption key. Key has
// already been base64-decoded and length-validated — holders of a
// PublicKey value can pass Key straight to sealbox.Seal.
type PublicKey struct {
	// KeyID identifies the key to the store. Secrets sealed under this
	// key must be uploaded with the same identifier so the store knows
	// which private key decrypts them.
	KeyID string

	// Key is the raw 32-byte Curve25519 public key.
	Key []byte
}

// ExchangeInstallationToken redeems a signed App assertion for a
// short-lived installation access token. The assertion is single-use
// from the pipeline's perspective: callers must not retry the exchange
// with the same assertion.
//
// An empty token in a successful response is an error — downstream
// calls would fail opaquely, or worse, the pipeline would seal and
// publish an empty string.
func (client *Client) ExchangeInstallationToken(ctx context.Context, jwt string, installationID int64) (string, error) {
	path := "/app/installations/" + strconv.FormatInt(installationID, 10) + "/access_tokens"

	body, err := client.do(ctx, http.MethodPost, path, jwt, nil, http.StatusCreated)
	if err != nil {
		return "", fmt.Errorf("github: token exchange: %w", err)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("github: decoding token exchange response: %w", err)
	}
	if result.Token == "" {
		return "", fmt.Errorf("github: token exchange returned empty token")
	}

	return result.Token, nil
}

// GetActionsPublicKey fetches the repository's current secret
// encryption key. The key is validated here — base64-decoded and
// checked for the exact sealed-box key length — so a malformed key
// fails the run before any encryption is attempted. The key is never
// cached: the store may rotate it between runs.
func (client *Client) GetActionsPublicKey(ctx context.Context, token, owner, repo string) (*PublicKey, error) {
	path := fmt.Sprintf("/repos/%s/%s/actions/secrets/public-key", url.PathEscape(owner), url.PathEscape(repo))

	body, err := client.do(ctx, http.MethodGet, path, token, nil, http.StatusOK)
	if err != nil {
		return nil, fmt.Errorf("github: fetching public key for %s/%s: %w", owner, repo, err)
	}

	var result struct {
		KeyID string `json:"key_id"`
		Key   string `json:"key"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("github: decoding public key response: %w", err)
	}
	if result.Key == "" {
		return nil, fmt.Errorf("github: public key response has no key field")
	}
	if result.KeyID == "" {
		return nil, fmt.Errorf("github: public key response has no key_id field")
	}

	key, err := sealbox.DecodeKey(result.Key)
	if err != nil {
		return nil, fmt.Errorf("github: public key for %s/%s: %w", owner, repo, err)
	}

	return &PublicKey{KeyID: result.KeyID, Key: key}, nil
}

// PutActionsSecret upserts a repository Actions secret. The value must
// already be sealed under the repository's public key and base64
// encoded; keyID names the key it was sealed under. GitHub returns 201
// when the secret is created and 204 when an existing secret is
// updated — both are success. The upsert is atomic on the store side:
// a failed call leaves the previous secret value in place.
func (client *Client) PutActionsSecret(ctx context.Context, token, owner, repo, name, encryptedValue, keyID string) error {
	path := fmt.Sprintf("/repos/%s/%s/actions/secrets/%s",
		url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(name))

	requestBody := struct {
		EncryptedValue string `json:"encrypted_value"`
		KeyID          string `json:"key_id"`
	}{
		EncryptedValue: encryptedValue,
		KeyID:          keyID,
	}

	_, err := client.do(ctx, http.MethodPut, path, token, requestBody,
		http.StatusCreated, http.StatusNoContent)
	if err != nil {
		return fmt.Errorf("github: upserting secret %s in %s/%s: %w", name, owner, repo, err)
	}
	return nil
}
