// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides the binary entrypoint error handler for
// secretmint. Raw stderr output is legitimate only before the
// structured logger exists or after an unrecoverable error in main();
// both cases go through this package.
package process

import (
	"fmt"
	"os"
)

// Fatal writes "error: err" to stderr and exits with code 1. Use it in
// main() for errors returned by run(). Callers must ensure the error
// text carries no key material, assertions, or tokens — Fatal prints
// it verbatim.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
