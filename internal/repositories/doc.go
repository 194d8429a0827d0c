// Package repositories implements SQLite persistence for local client state.
//
// Key Implementations:
//   - [SessionRepository] : the single stored OIDC session, used as the auth token store
//   - [CardCacheRepository] : the last fetched copy of the user's cards for offline listing and export
//
// Schemas live in the embedded migrations of the shared package; open databases with shared.OpenDatabase.
package repositories
