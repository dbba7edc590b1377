// Package poller observes asynchronously-judged submissions by bounded
// polling through the gateway.
//
// A poll loop ticks at a fixed interval; every tick consumes one attempt
// whether the status fetch succeeds, fails transiently, or observes a
// non-terminal status. The loop stops on the first terminal verdict, when
// the attempt budget runs out (OnTimeout, distinct from a failing verdict),
// or on cancellation. The timeout is attempt-based rather than wall-clock so
// slow individual responses do not eat the budget unfairly.
//
// The Manager guarantees at most one active loop per submission id.
package poller
