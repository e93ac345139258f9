// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// newTestClient wraps an httptest TLS server in a Client. The server's
// URL is https, satisfying the HTTPS requirement.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewTLSServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client, server
}

func TestNewClient_RejectsHTTP(t *testing.T) {
	if _, err := NewClient(Config{BaseURL: "http://api.github.com"}); err == nil {
		t.Fatal("expected error for non-HTTPS base URL")
	}
}

func TestExchangeInstallationToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", request.Method)
		}
		if request.URL.Path != "/app/installations/67890/access_tokens" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		if got := request.Header.Get("Authorization"); got != "Bearer test.jwt.value" {
			t.Errorf("Authorization = %q, want assertion bearer", got)
		}
		if got := request.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		writer.WriteHeader(http.StatusCreated)
		json.NewEncoder(writer).Encode(map[string]string{"token": "ghs_abc123"})
	}))

	token, err := client.ExchangeInstallationToken(context.Background(), "test.jwt.value", 67890)
	if err != nil {
		t.Fatalf("ExchangeInstallationToken: %v", err)
	}
	if token != "ghs_abc123" {
		t.Errorf("token = %q, want %q", token, "ghs_abc123")
	}
}

func TestExchangeInstallationToken_EmptyToken(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusCreated)
		json.NewEncoder(writer).Encode(map[string]string{"token": ""})
	}))

	if _, err := client.ExchangeInstallationToken(context.Background(), "jwt", 1); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestExchangeInstallationToken_Unauthorized(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(writer).Encode(map[string]string{"message": "A JSON web token could not be decoded"})
	}))

	_, err := client.ExchangeInstallationToken(context.Background(), "jwt", 1)
	if err == nil {
		t.Fatal("expected error for 401")
	}
	if !IsUnauthorized(err) {
		t.Errorf("IsUnauthorized = false for %v", err)
	}
	var apiError *APIError
	if !errors.As(err, &apiError) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiError.Message != "A JSON web token could not be decoded" {
		t.Errorf("message = %q", apiError.Message)
	}
}

func TestGetActionsPublicKey(t *testing.T) {
	rawKey := make([]byte, 32)
	for i := range rawKey {
		rawKey[i] = byte(i)
	}

	client, _ := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path != "/repos/octo/hello/actions/secrets/public-key" {
			t.Errorf("unexpected path: %s", request.URL.Path)
		}
		if got := request.Header.Get("Authorization"); got != "Bearer ghs_abc123" {
			t.Errorf("Authorization = %q, want token bearer", got)
		}
		json.NewEncoder(writer).Encode(map[string]string{
			"key_id": "568250167242549743",
			"key":    base64.StdEncoding.EncodeToString(rawKey),
		})
	}))

	publicKey, err := client.GetActionsPublicKey(context.Background(), "ghs_abc123", "octo", "hello")
	if err != nil {
		t.Fatalf("GetActionsPublicKey: %v", err)
	}
	if publicKey.KeyID != "568250167242549743" {
		t.Errorf("key_id = %q", publicKey.KeyID)
	}
	if len(publicKey.Key) != 32 {
		t.Errorf("key length = %d, want 32", len(publicKey.Key))
	}
}

func TestGetActionsPublicKey_WrongLength(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(writer).Encode(map[string]string{
			"key_id": "1",
			"key":    base64.StdEncoding.EncodeToString(make([]byte, 16)),
		})
	}))

	_, err := client.GetActionsPublicKey(context.Background(), "tok", "o", "r")
	if err == nil {
		t.Fatal("expected error for 16-byte key")
	}
	if !strings.Contains(err.Error(), "16 bytes") {
		t.Errorf("error should name the bad length: %v", err)
	}
}

func TestGetActionsPublicKey_MissingKey(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		json.NewEncoder(writer).Encode(map[string]string{"key_id": "1"})
	}))

	if _, err := client.GetActionsPublicKey(context.Background(), "tok", "o", "r"); err == nil {
		t.Fatal("expected error for missing key field")
	}
}

func TestPutActionsSecret(t *testing.T) {
	for _, status := range []int{http.StatusCreated, http.StatusNoContent} {
		var received struct {
			EncryptedValue string `json:"encrypted_value"`
			KeyID          string `json:"key_id"`
		}
		client, _ := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			if request.Method != http.MethodPut {
				t.Errorf("method = %s, want PUT", request.Method)
			}
			if request.URL.Path != "/repos/octo/hello/actions/secrets/DEPLOY_TOKEN" {
				t.Errorf("unexpected path: %s", request.URL.Path)
			}
			if err := json.NewDecoder(request.Body).Decode(&received); err != nil {
				t.Errorf("decoding request body: %v", err)
			}
			writer.WriteHeader(status)
		}))

		err := client.PutActionsSecret(context.Background(), "ghs_abc123", "octo", "hello", "DEPLOY_TOKEN", "c2VhbGVk", "key1")
		if err != nil {
			t.Fatalf("PutActionsSecret (status %d): %v", status, err)
		}
		if received.EncryptedValue != "c2VhbGVk" {
			t.Errorf("encrypted_value = %q", received.EncryptedValue)
		}
		if received.KeyID != "key1" {
			t.Errorf("key_id = %q", received.KeyID)
		}
	}
}

func TestPutActionsSecret_Forbidden(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusForbidden)
		json.NewEncoder(writer).Encode(map[string]string{"message": "Resource not accessible by integration"})
	}))

	err := client.PutActionsSecret(context.Background(), "tok", "o", "r", "S", "v", "k")
	if err == nil {
		t.Fatal("expected error for 403")
	}
	var apiError *APIError
	if !errors.As(err, &apiError) || apiError.StatusCode != 403 {
		t.Errorf("expected 403 APIError, got %v", err)
	}
}

func TestAPIError_NonJSONBody(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		writer.WriteHeader(http.StatusBadGateway)
		writer.Write([]byte("upstream exploded"))
	}))

	_, err := client.ExchangeInstallationToken(context.Background(), "jwt", 1)
	var apiError *APIError
	if !errors.As(err, &apiError) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiError.Message != "upstream exploded" {
		t.Errorf("message = %q, want raw body", apiError.Message)
	}
}
