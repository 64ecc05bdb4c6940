// Package keys provides issuer key helpers for producing signed credentials.
//
// API stability:
//
// Stable:
//   - Deterministic seed derivation and the per-scheme Signer constructors.
//
// Experimental:
//   - Filesystem-backed key storage (KeyStore). It is a local-first utility for
//     the CLI and is not part of the validation contract.
package keys
