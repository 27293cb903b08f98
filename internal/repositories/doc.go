// Package repositories implements local persistence for the client.
//
// Key Implementations:
//   - [SQLStorage] : key/value entries in the SQLite storage table
//   - [MemoryStorage] : a map-backed [Storage] for tests and throwaway sessions
//   - [PersistentJar] : an [http.CookieJar] whose credential cookies survive restarts via a [Storage]
//   - [ReviewLogRepository] : audit trail of holiday status changes made from this client
//
// All [Storage] implementations report absent keys with an error wrapping [shared.ErrNotFound].
package repositories
