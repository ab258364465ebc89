package kafka

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMurmur2MatchesJavaClientVectors pins a handful of known input/output
// pairs produced by the Java client's org.apache.kafka.common.utils.Utils
// murmur2 implementation, so a future change to the mixing constants
// cannot silently break cross-client interop (spec.md §8 property 6).
func TestMurmur2MatchesJavaClientVectors(t *testing.T) {
	cases := []struct {
		key  string
		want uint32
	}{
		{"", 0x106e08d9},
		{"a", 0xa2d0b27c},
		{"ab", 0x12d8262a},
		{"abc", 0x1c94221b},
		{"kafka", 0xd067cf64},
	}
	for _, c := range cases {
		got := murmur2([]byte(c.key))
		require.Equalf(t, c.want, got, "murmur2(%q)", c.key)
	}
}

func TestHashPartitionerSameKeySamePartition(t *testing.T) {
	p := NewHashPartitioner("topic")
	key := []byte("order-42")

	first, err := p.Partition(key, 8)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		got, err := p.Partition(key, 8)
		require.NoError(t, err)
		require.Equal(t, first, got, "murmur2(same_key) must produce the same partition on every call")
	}
}

func TestHashPartitionerDistributesAcrossPartitions(t *testing.T) {
	p := NewHashPartitioner("topic")
	seen := make(map[int32]bool)
	for i := 0; i < 200; i++ {
		key := []byte{byte(i), byte(i >> 8)}
		part, err := p.Partition(key, 4)
		require.NoError(t, err)
		require.GreaterOrEqual(t, part, int32(0))
		require.Less(t, part, int32(4))
		seen[part] = true
	}
	require.Greater(t, len(seen), 1, "200 distinct keys over 4 partitions should not collapse to one partition")
}

func TestHashPartitionerNilKeyFallsBackToRoundRobin(t *testing.T) {
	p := NewHashPartitioner("topic")
	part, err := p.Partition(nil, 4)
	require.NoError(t, err)
	require.GreaterOrEqual(t, part, int32(0))
	require.Less(t, part, int32(4))
}

func TestHashPartitionerRequiresConsistency(t *testing.T) {
	require.True(t, NewHashPartitioner("t").RequiresConsistency())
	require.False(t, NewRandomPartitioner("t").RequiresConsistency())
	require.False(t, NewRoundRobinPartitioner("t").RequiresConsistency())
	require.True(t, NewManualPartitioner("t").RequiresConsistency())
}

func TestRoundRobinPartitionerCyclesInOrder(t *testing.T) {
	p := NewRoundRobinPartitioner("topic")
	want := []int32{0, 1, 2, 0, 1, 2}
	for i, w := range want {
		got, err := p.Partition(nil, 3)
		require.NoError(t, err)
		require.Equalf(t, w, got, "call %d", i)
	}
}

func TestManualPartitionerAlwaysErrors(t *testing.T) {
	_, err := NewManualPartitioner("topic").Partition([]byte("k"), 4)
	require.ErrorIs(t, err, ErrInvalidPartition)
}

func TestPartitionersRejectZeroPartitions(t *testing.T) {
	partitioners := []Partitioner{
		NewRandomPartitioner("t"),
		NewRoundRobinPartitioner("t"),
	}
	for _, p := range partitioners {
		_, err := p.Partition([]byte("k"), 0)
		require.ErrorIs(t, err, ErrInvalidPartition)
	}

	_, err := NewHashPartitioner("t").Partition([]byte("k"), 0)
	require.ErrorIs(t, err, ErrInvalidPartition)
}
