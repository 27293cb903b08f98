// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// Views follow [routes.Route]: the public home menu and account forms (sign in, register,
// activate, password recovery) and the protected worker and administrator areas
// (holidays, holiday requests, users, settings).
//
// Every protected view mounts its own [session.Guard]. Navigation, session and guard
// notifications arrive on arbitrary goroutines and are funneled through a [Bridge] channel
// that the (view) [Model] drains with a re-armed command, the same way review progress
// from the [tasks.ReviewEngine] is streamed while bulk-accepting requests. Results carry the
// generation of the view that requested them, so responses for a view that has been left
// are ignored.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
