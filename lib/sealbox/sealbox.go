// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealbox provides anonymous public-key encryption for GitHub
// Actions secret values. It wraps golang.org/x/crypto/nacl/box to
// provide the specific operations secretmint needs: decode and
// validate a repository's 32-byte Curve25519 public key, seal a secret
// value to it, and (for verification) open a sealed value with the
// matching private key.
//
// The construction is libsodium's sealed box: the sender generates an
// ephemeral keypair per call and discards it, so the ciphertext is
// self-contained and only the holder of the recipient's private key
// can decrypt. Two seals of the same plaintext never produce the same
// ciphertext.
//
// Ciphertext is base64-encoded for the secret-upsert JSON body. The
// base64 encoding is handled internally — callers pass plaintext
// []byte in and get base64 strings out (and vice versa for Open).
package sealbox

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/nacl/box"
)

// KeySize is the exact length of a Curve25519 public key. The sealing
// scheme is undefined for any other length — a key that decodes to a
// different size is rejected outright, never truncated or padded.
const KeySize = 32

// DecodeKey decodes a base64-encoded repository public key and
// validates its length. This is the single validation point for
// fetched keys: callers get either a usable 32-byte key or an error.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("sealbox: decoding public key: %w", err)
	}
	if len(key) != KeySize {
		return nil, fmt.Errorf("sealbox: public key is %d bytes, want %d", len(key), KeySize)
	}
	return key, nil
}

// Seal encrypts plaintext to the recipient public key using an
// ephemeral sender keypair, and returns the ciphertext as a standard
// base64-encoded string suitable for the encrypted_value field of the
// secret-upsert request.
func Seal(plaintext []byte, publicKey []byte) (string, error) {
	if len(publicKey) != KeySize {
		return "", fmt.Errorf("sealbox: public key is %d bytes, want %d", len(publicKey), KeySize)
	}

	var recipient [KeySize]byte
	copy(recipient[:], publicKey)

	ciphertext, err := box.SealAnonymous(nil, plaintext, &recipient, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("sealbox: sealing: %w", err)
	}

	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Open decrypts a base64-encoded sealed box with the recipient's
// keypair. The store holds the private key in production — Open exists
// for round-trip verification in tests and tooling.
func Open(ciphertext string, publicKey, privateKey []byte) ([]byte, error) {
	if len(publicKey) != KeySize || len(privateKey) != KeySize {
		return nil, fmt.Errorf("sealbox: keypair must be %d-byte keys", KeySize)
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return nil, fmt.Errorf("sealbox: decoding ciphertext: %w", err)
	}

	var pub, priv [KeySize]byte
	copy(pub[:], publicKey)
	copy(priv[:], privateKey)

	plaintext, ok := box.OpenAnonymous(nil, raw, &pub, &priv)
	if !ok {
		return nil, fmt.Errorf("sealbox: opening sealed box failed")
	}
	return plaintext, nil
}

// GenerateKeypair generates a Curve25519 keypair. Used by tests and
// tooling that stand in for the store; secretmint itself never holds a
// persistent keypair.
func GenerateKeypair() (publicKey, privateKey []byte, err error) {
	pub, priv, err := box.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("sealbox: generating keypair: %w", err)
	}
	return pub[:], priv[:], nil
}

// Fingerprint returns a short BLAKE3-based fingerprint of a public
// key, for logging. Operators can compare fingerprints across runs to
// observe store-side key rotation without the log carrying the key
// itself.
func Fingerprint(key []byte) string {
	sum := blake3.Sum256(key)
	return hex.EncodeToString(sum[:8])
}
