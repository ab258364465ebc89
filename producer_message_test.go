package kafka

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProducerMessageDefaultsPartitionUnset(t *testing.T) {
	msg := NewProducerMessage("orders", []byte("k"), []byte("v"))
	require.Equal(t, int32(-1), msg.Partition, "unset partition must be distinguishable from the valid partition 0")
}

func TestProducerErrorUnwrap(t *testing.T) {
	cause := errors.New("boom")
	pe := &ProducerError{Msg: NewProducerMessage("orders", nil, nil), Err: cause}
	require.ErrorIs(t, pe, cause)
	require.Contains(t, pe.Error(), "boom")
}

func TestProducerErrorsAggregatesMultipleCauses(t *testing.T) {
	errs := ProducerErrors{
		{Msg: NewProducerMessage("a", nil, nil), Err: errors.New("first")},
		{Msg: NewProducerMessage("b", nil, nil), Err: errors.New("second")},
	}
	msg := errs.Error()
	require.Contains(t, msg, "first")
	require.Contains(t, msg, "second")
	require.Contains(t, msg, "2 errors occurred")
}
