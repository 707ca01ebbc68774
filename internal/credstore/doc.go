// Package credstore provides persistent storage abstractions for client credentials.
//
// The stored payload is an opaque string: the serialized credential state managed by
// the api package (session cookies, optional API token, optional saved login).
// Three storage backends with different security and deployment tradeoffs are supported:
//   - File: Local filesystem storage with atomic writes and secure permissions
//   - Env: Read-only environment variable access (requires external secret management)
//   - Keyring: OS-native credential storage (macOS Keychain, Windows Credential Manager, etc.)
//
// Session authentication requires writable storage (file or keyring) so the session
// cookie survives between CLI invocations, while API-token authentication can use any
// backend including read-only env storage.
package credstore
