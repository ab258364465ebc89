package kafka

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeResponseFrame encodes a response payload (correlation id + body)
// exactly the way a real broker would, so the test server below can answer
// Broker.Request with wire bytes indistinguishable from a live connection.
type fakeResponseFrame struct {
	correlationID int32
	body          protocolBody
}

func (f *fakeResponseFrame) encode(pe packetEncoder) error {
	pe.putInt32(f.correlationID)
	return f.body.encode(pe)
}

// serveOnce accepts a single connection, decodes the request frame only
// far enough to read its correlation id, then replies with resp carrying
// that same id.
func serveOnce(t *testing.T, ln net.Listener, resp protocolBody) {
	t.Helper()
	conn, err := ln.Accept()
	require.NoError(t, err)
	defer conn.Close()

	var lenBuf [4]byte
	_, err = readFull(conn, lenBuf[:])
	require.NoError(t, err)
	size := int32(lenBuf[0])<<24 | int32(lenBuf[1])<<16 | int32(lenBuf[2])<<8 | int32(lenBuf[3])

	payload := make([]byte, size)
	_, err = readFull(conn, payload)
	require.NoError(t, err)

	pd := &realDecoder{raw: payload}
	pd.getInt16() // api key
	pd.getInt16() // api version
	correlationID, err := pd.getInt32()
	require.NoError(t, err)

	raw, err := encode(&fakeResponseFrame{correlationID: correlationID, body: resp})
	require.NoError(t, err)

	frame := make([]byte, 4+len(raw))
	framePrefixInt32(frame, int32(len(raw)))
	copy(frame[4:], raw)
	_, err = conn.Write(frame)
	require.NoError(t, err)
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// TestBrokerRequestDecodesIntoResponseType covers the bug class where
// Broker.send allocated a request-shaped body for an incoming response: a
// real MetadataResponse frame must come back out of Broker.Request as a
// *MetadataResponse, not get rejected by the caller's type assertion.
func TestBrokerRequestDecodesIntoResponseType(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	want := &MetadataResponse{
		Brokers: []*MetadataBroker{{NodeID: 1, Host: "broker1", Port: 9092}},
		Topics: []*TopicMetadata{{
			Name: "orders",
			Partitions: []*PartitionMetadata{
				{ID: 0, Leader: 1, Replicas: []int32{1}, Isr: []int32{1}},
			},
		}},
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		serveOnce(t, ln, want)
	}()

	conf := NewConfig()
	conf.Net.DialTimeout = time.Second
	conf.Net.RequestTimeout = 2 * time.Second
	broker := NewBroker(ln.Addr().String(), conf)
	defer broker.Close()

	resp, err := broker.Request(&MetadataRequest{Topics: []string{"orders"}})
	require.NoError(t, err)

	got, ok := resp.(*MetadataResponse)
	require.True(t, ok, "response must decode into *MetadataResponse, not the request type send() used to allocate")
	require.Equal(t, "orders", got.Topics[0].Name)
	require.Equal(t, int32(1), got.Topics[0].Partitions[0].Leader)

	<-done
}
