// Package cmd implements the command-line interface for the fsKV filesystem
// key-value store. It provides a hierarchical command structure for working
// with a store directory directly, no server is involved.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (insert, lookup, remove, size, info, check, perf)
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// Every flag can also be set through the environment with the FSKV_ prefix
// (e.g. FSKV_ROOT, FSKV_LOG_LEVEL), .env and .env.local files are loaded on start.
//
// See fskv -help for a list of all commands.
package cmd
