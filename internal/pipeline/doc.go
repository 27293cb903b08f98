// Package pipeline executes authenticated calls against the holiday-manager API.
//
// Each call is described by an immutable [Descriptor] and run by [Pipeline.Execute], which:
//
//  1. serializes the body once and sends the request with the client's cookie jar
//  2. on a 403 response, asks the server to refresh the credential cookies
//  3. replays the original request exactly once when the refresh succeeds
//  4. otherwise invokes the descriptor's auth-failure callback and fails with [CauseAuth]
//
// Responses are normalized into a raw JSON payload or a [*Failure] carrying a [Cause].
// Concurrent callers that hit an expired credential share a single refresh request.
package pipeline
