// Package repositories implements SQLite persistence for client-side state.
//
// Key Implementations:
//   - [IdentityRepository] : The identity cookie, keyed by cookie name, stored with its expiry
//   - [ChapterRepository] : The chapter list from the last upload, replaced wholesale
//
// Only the chapter list is cached. Translations are never persisted locally; they always come from the server's /status endpoint.
package repositories
