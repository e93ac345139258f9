// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package github is a minimal client for the three GitHub REST API
// calls the rotation pipeline makes: exchanging a signed App assertion
// for an installation access token, fetching a repository's Actions
// secret public key, and upserting an Actions secret.
//
// Each call takes its bearer credential explicitly — the pipeline uses
// the assertion exactly once for the exchange and the resulting token
// for the two repository calls. There is no token caching or rotation:
// every run mints fresh credentials and discards them.
//
// All requests are made over HTTPS. The client refuses non-HTTPS base
// URLs. Non-2xx responses are returned as *APIError with GitHub's
// structured error body parsed into it.
package github
