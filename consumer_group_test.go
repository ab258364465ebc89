package kafka

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestRoundRobinAssignDeterministic covers spec.md §8 scenario S7: the
// same member set and partition set always produce the same assignment,
// regardless of the order members or partitions were supplied in.
func TestRoundRobinAssignDeterministic(t *testing.T) {
	all := []assignedPartition{
		{topic: "orders", partition: 0},
		{topic: "orders", partition: 1},
		{topic: "orders", partition: 2},
		{topic: "orders", partition: 3},
	}

	a := roundRobinAssign([]string{"m1", "m2"}, all)
	b := roundRobinAssign([]string{"m2", "m1"}, all)

	require.Equal(t, a, b, "member order in the input must not affect the computed assignment")
	require.Equal(t, []assignedPartition{{"orders", 0}, {"orders", 2}}, a["m1"])
	require.Equal(t, []assignedPartition{{"orders", 1}, {"orders", 3}}, a["m2"])
}

func TestRoundRobinAssignCoversEveryPartitionExactlyOnce(t *testing.T) {
	all := []assignedPartition{
		{topic: "orders", partition: 0},
		{topic: "orders", partition: 1},
		{topic: "orders", partition: 2},
		{topic: "payments", partition: 0},
		{topic: "payments", partition: 1},
	}
	members := []string{"m3", "m1", "m2"}

	out := roundRobinAssign(members, all)

	seen := make(map[assignedPartition]int)
	for _, parts := range out {
		for _, p := range parts {
			seen[p]++
		}
	}
	require.Len(t, seen, len(all), "every partition must be assigned")
	for p, count := range seen {
		require.Equalf(t, 1, count, "partition %+v assigned more than once", p)
	}
}

func TestRoundRobinAssignNoMembersYieldsNoAssignment(t *testing.T) {
	out := roundRobinAssign(nil, []assignedPartition{{topic: "orders", partition: 0}})
	require.Empty(t, out)
}

func TestRoundRobinAssignEmptyMemberEntryPresent(t *testing.T) {
	out := roundRobinAssign([]string{"only"}, nil)
	require.Contains(t, out, "only")
	require.Empty(t, out["only"])
}

func TestAssignmentEncodeDecodeRoundTrip(t *testing.T) {
	parts := []assignedPartition{
		{topic: "orders", partition: 0},
		{topic: "orders", partition: 2},
		{topic: "payments", partition: 1},
	}
	raw := encodeAssignment(parts)
	got := decodeAssignment(raw)
	require.Equal(t, parts, got)
}

func TestAssignmentDecodeEmpty(t *testing.T) {
	require.Empty(t, decodeAssignment(nil))
	require.Empty(t, decodeAssignment([]byte("")))
}

// TestMemoryCoordinationStoreSessionExpiryReleasesLocks covers spec.md
// §3's "session... whose expiry releases all locks held under it", the
// invariant ConsumerGroup's Electing state depends on.
func TestMemoryCoordinationStoreSessionExpiryReleasesLocks(t *testing.T) {
	store := NewMemoryCoordinationStore()

	sess, err := store.SessionCreate(0)
	require.NoError(t, err)

	acquired, err := store.LockAcquire("groups/g/leader", sess)
	require.NoError(t, err)
	require.True(t, acquired)

	other, err := store.SessionCreate(0)
	require.NoError(t, err)
	acquired, err = store.LockAcquire("groups/g/leader", other)
	require.NoError(t, err)
	require.False(t, acquired, "a live session already holds the lock")

	store.ExpireSession(sess)

	acquired, err = store.LockAcquire("groups/g/leader", other)
	require.NoError(t, err)
	require.True(t, acquired, "lock must be released once the holding session expires")
}

func TestMemoryCoordinationStoreKVListPrefix(t *testing.T) {
	store := NewMemoryCoordinationStore()
	require.NoError(t, store.KVPut("groups/g/members/a", []byte("1"), ""))
	require.NoError(t, store.KVPut("groups/g/members/b", []byte("2"), ""))
	require.NoError(t, store.KVPut("groups/other/members/c", []byte("3"), ""))

	out, _, err := store.KVList("groups/g/members/")
	require.NoError(t, err)
	require.Len(t, out, 2)
	require.Contains(t, out, "groups/g/members/a")
	require.Contains(t, out, "groups/g/members/b")
}
