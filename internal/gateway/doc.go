// Package gateway is the only sanctioned way to issue authenticated calls to
// the platform.
//
// # Overview
//
// Every outbound request flows through Client.Do, which makes it resilient to
// session expiry without duplicating refresh calls or retry-looping:
//
//   - A 401 from a non-auth endpoint triggers one refresh of the session
//     cookies, then replays the original request exactly once.
//   - Concurrent 401s share a single in-flight refresh (singleflight); each
//     caller replays its own original request after the shared refresh
//     resolves.
//   - Auth endpoints (login, register, logout, refresh) are exempt: their
//     401s propagate untouched, and a refresh-endpoint 401 force-clears the
//     session.
//
// # Failure semantics
//
// Refresh failure is terminal for the session. There is no retry budget for
// the refresh itself: the session store is cleared and the refresh error (not
// the original request's 401) is surfaced, wrapped in ErrRefreshFailed.
//
// # Typed operations
//
// Login, Register, Logout, Me, SubmitSolution, GetSubmission and the rest are
// thin typed wrappers over Do. Login, Register, and Me write the returned user
// into the session store; nothing else mutates identity.
package gateway
