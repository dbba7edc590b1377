// Package notify delivers server-initiated events to the client without
// polling.
//
// # Lifecycle
//
// The channel follows the session store: when the session becomes
// authenticated it waits out a short debounce and opens the SSE stream at
// /notifications/stream with the auth cookies; when the session goes
// anonymous (or the channel is closed) the connection is torn down. At most
// one connection exists at a time, bound to the session epoch it was opened
// under; a new epoch always closes the prior connection first.
//
// # Dispatch
//
// Events arrive as {type, data} JSON on SSE data lines. Handlers register
// per type; unknown types are logged and dropped, malformed payloads are
// logged and dropped without disturbing the stream, and redelivered events
// are deduplicated within a short window.
//
// # Reconnect
//
// There is deliberately no automatic reconnect: a transport error is
// recorded and observable, and the caller decides whether to Connect again.
package notify
