// Package session holds the dashboard's per-session state container.
//
// State changes are expressed as Actions applied by the pure Reduce function; stores only persist
// the reducer's output. MemoryStore keeps state in-process with TTL eviction; the Redis adapter
// implements the same domain.SessionRepository for multi-instance deployments.
package session
