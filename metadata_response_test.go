package kafka

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildMetadataResponse() *MetadataResponse {
	return &MetadataResponse{
		Brokers: []*MetadataBroker{
			{NodeID: 0, Host: "broker0", Port: 9092},
			{NodeID: 1, Host: "broker1", Port: 9092},
		},
		Topics: []*TopicMetadata{
			{
				Name: "orders",
				Partitions: []*PartitionMetadata{
					{ID: 0, Leader: 1, Replicas: []int32{0, 1}, Isr: []int32{0, 1}},
					{ID: 1, Leader: 0, Replicas: []int32{0, 1}, Isr: []int32{0, 1}},
					{ID: 2, Leader: -1, Replicas: []int32{0, 1}, Isr: []int32{0}},
				},
			},
		},
	}
}

// TestMetadataResponseLeaderBroker covers spec.md §8 scenario S6: given a
// Metadata response, LeaderBroker resolves the broker endpoint currently
// hosting a partition's leader, and returns nil when there isn't one.
func TestMetadataResponseLeaderBroker(t *testing.T) {
	resp := buildMetadataResponse()

	leader := resp.LeaderBroker("orders", 0)
	require.NotNil(t, leader)
	require.Equal(t, int32(1), leader.NodeID)
	require.Equal(t, "broker1", leader.Host)

	leader = resp.LeaderBroker("orders", 1)
	require.NotNil(t, leader)
	require.Equal(t, int32(0), leader.NodeID)

	require.Nil(t, resp.LeaderBroker("orders", 2), "partition with Leader == -1 has no resolvable broker")
	require.Nil(t, resp.LeaderBroker("orders", 99), "unknown partition")
	require.Nil(t, resp.LeaderBroker("missing-topic", 0), "unknown topic")
}

func TestMetadataResponseEncodeDecodeRoundTrip(t *testing.T) {
	in := buildMetadataResponse()

	raw, err := encode(in)
	require.NoError(t, err)

	out := new(MetadataResponse)
	pd := &realDecoder{raw: raw}
	require.NoError(t, out.decode(pd, 0))

	require.Equal(t, in.Brokers, out.Brokers)
	require.Len(t, out.Topics, 1)
	require.Equal(t, "orders", out.Topics[0].Name)
	require.Equal(t, in.Topics[0].Partitions, out.Topics[0].Partitions)

	leader := out.LeaderBroker("orders", 0)
	require.NotNil(t, leader)
	require.Equal(t, "broker1", leader.Host)
}
