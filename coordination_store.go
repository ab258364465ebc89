package kafka

import "time"

// CoordinationStore is the abstract contract spec.md §6 specifies for the
// "external strongly-consistent key/value service" that backs consumer
// group membership: sessions, distributed locks, and a plain KV surface
// with a long-poll watch. SPEC_FULL §6 ships ConsulCoordinationStore as
// the concrete implementation and MemoryCoordinationStore as an
// in-process fake for tests that don't have a live Consul agent.
type CoordinationStore interface {
	// SessionCreate opens a new ephemeral session with the given TTL;
	// every lock acquired under it is released when the session expires.
	SessionCreate(ttl time.Duration) (sessionID string, err error)
	// SessionRenew extends a session's TTL; ok is false once the session
	// has already expired server-side (spec.md §7's "session expiry").
	SessionRenew(sessionID string) (ok bool, err error)
	// SessionDestroy releases a session and everything held under it.
	SessionDestroy(sessionID string) error

	// LockAcquire attempts to acquire the session-gated lock at path,
	// returning acquired == false (not an error) when another session
	// already holds it.
	LockAcquire(path, sessionID string) (acquired bool, err error)
	// LockRelease releases path if sessionID currently holds it.
	LockRelease(path, sessionID string) error

	// KVPut writes value at path. When sessionID is non-empty the entry
	// is tied to that session's lifetime (used for the ephemeral
	// membership nodes spec.md §4.4 describes).
	KVPut(path string, value []byte, sessionID string) error
	KVGet(path string) (value []byte, found bool, index uint64, err error)
	KVDelete(path string) error
	// KVList returns every key that starts with prefix (nested keys
	// included) along with its value, used to enumerate group membership
	// and assignments.
	KVList(prefix string) (map[string][]byte, uint64, error)

	// Watch long-polls path (or, for a prefix watch, anything under it)
	// for a change since fromIndex, returning the new index once
	// something changed or the poll's internal timeout elapses. A
	// returned index equal to fromIndex means "nothing changed, keep
	// waiting" and the caller should call Watch again.
	Watch(path string, fromIndex uint64) (newIndex uint64, err error)
}

// groupPath builds the coordination-store key layout spec.md §4.4 names:
// <prefix>/<group>/leader, <prefix>/<group>/members/<id>,
// <prefix>/<group>/assignments/<id>.
func groupPath(prefix, group, suffix string) string {
	return prefix + "/" + group + "/" + suffix
}
