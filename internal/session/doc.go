// Package session holds the client's authentication state.
//
// # Overview
//
// Exactly one Store exists per client process. It is the single source of
// truth for "am I logged in": the gateway consults it on refresh outcomes,
// the notification channel opens and closes connections as it transitions,
// and the CLI reads it for display.
//
// # Ownership
//
// The Store is the sole writer of identity. Other components request
// mutation through SetIdentity and Clear; they never hold identity state of
// their own. Read returns an independent snapshot, so callers can inspect a
// session without racing later mutations.
//
// # Epochs
//
// Each authenticated/anonymous transition advances an epoch counter.
// Long-lived resources (the notification connection) record the epoch they
// were created under and are torn down when it goes stale.
package session
