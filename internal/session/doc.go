// Package session holds the client's authentication flag and decides access to protected views.
//
// A single [Store] is created per process and injected into every consumer. It is hydrated from
// durable storage with [Store.Load], persists changes, and notifies subscribers when the flag changes.
//
// A [Guard] is created for each protected view. It starts in [Loading], waits for the store's
// first authoritative read, then settles on [Allowed] or [Denied]. A denied guard redirects to the
// login view exactly once.
package session
