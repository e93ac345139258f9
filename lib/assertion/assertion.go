// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package assertion builds the signed, time-bounded identity assertion
// that secretmint exchanges for an installation access token.
//
// The assertion is a compact RS256 JWT: header and claims are JSON,
// base64url-encoded without padding, and the signature is
// RSASSA-PKCS1-v1_5 over SHA-256 of "header.payload". Building one is
// a pure function of (issuer, private key, now) — there is no state,
// and the assertion is never persisted or logged.
//
// Implementation uses stdlib crypto. A JWT library buys nothing for a
// fixed-header, three-claim token signed with a single algorithm.
package assertion

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"time"
)

// Validity is the assertion lifetime: exp - iat. Nine minutes stays
// under the store's 10-minute ceiling with margin for clock skew on
// the store side.
const Validity = 9 * time.Minute

// ParseRSAPrivateKey parses a PEM-encoded RSA private key. PKCS#1
// ("RSA PRIVATE KEY") is the documented format for App keys, but some
// key-generation tools produce PKCS#8 ("PRIVATE KEY"), so both are
// accepted. Non-RSA keys are rejected.
func ParseRSAPrivateKey(pemBytes []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, fmt.Errorf("assertion: no PEM block found in private key")
	}

	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		keyInterface, pkcs8Err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if pkcs8Err != nil {
			return nil, fmt.Errorf("assertion: parsing private key: %w (also tried PKCS8: %v)", err, pkcs8Err)
		}
		rsaKey, ok := keyInterface.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("assertion: private key is not RSA")
		}
		privateKey = rsaKey
	}

	return privateKey, nil
}

// Build constructs and signs an assertion for the given issuer at the
// given instant. Claims are iat = now, exp = now + Validity, iss =
// issuer.
func Build(issuer string, privateKey *rsa.PrivateKey, now time.Time) (string, error) {
	// Header: always RS256.
	header := base64URLEncode([]byte(`{"alg":"RS256","typ":"JWT"}`))

	claims := struct {
		IssuedAt  int64  `json:"iat"`
		ExpiresAt int64  `json:"exp"`
		Issuer    string `json:"iss"`
	}{
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(Validity).Unix(),
		Issuer:    issuer,
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("assertion: marshaling claims: %w", err)
	}
	payload := base64URLEncode(claimsJSON)

	// Sign: RSASSA-PKCS1-v1_5 with SHA-256 over the UTF-8 bytes of
	// "header.payload".
	signingInput := header + "." + payload
	hash := sha256.Sum256([]byte(signingInput))
	signature, err := rsa.SignPKCS1v15(rand.Reader, privateKey, crypto.SHA256, hash[:])
	if err != nil {
		return "", fmt.Errorf("assertion: signing: %w", err)
	}

	return signingInput + "." + base64URLEncode(signature), nil
}

// base64URLEncode encodes data as base64url without padding, per RFC 7515.
func base64URLEncode(data []byte) string {
	return base64.RawURLEncoding.EncodeToString(data)
}
