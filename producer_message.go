package kafka

import "time"

// ProducerMessage is the caller-facing unit produced through SyncProducer
// or AsyncProducer, spec.md §6's producer.produce(key?, value, partition?).
type ProducerMessage struct {
	Topic string
	// Key is optional; when set it drives the default hash partitioner
	// (spec.md §4.3, murmur2(key) mod num_partitions).
	Key []byte
	// Value is the message payload.
	Value []byte
	// Partition pins the destination partition; leave at -1 to let the
	// topic's Partitioner choose.
	Partition int32

	// Offset is filled in once the message is acknowledged. Timestamp is
	// not set by the producer.
	Offset    int64
	Timestamp time.Time

	// retries counts failed attempts against Config.Producer.Retry.Max
	// (spec.md §4.3's "up to max_retries times").
	retries int
}

// NewProducerMessage builds a ProducerMessage with Partition defaulted to
// -1 (choose via the topic's Partitioner), matching spec.md §6's
// producer.produce(key?, value, partition?) where partition is optional.
func NewProducerMessage(topic string, key, value []byte) *ProducerMessage {
	return &ProducerMessage{Topic: topic, Key: key, Value: value, Partition: -1}
}

// ProducerError pairs a message that could not be produced with the
// reason, delivered on AsyncProducer.Errors(). SyncProducer.SendMessage
// returns only its Err.
type ProducerError struct {
	Msg *ProducerMessage
	Err error
}

func (pe ProducerError) Error() string {
	return "kafka: failed to produce message: " + pe.Err.Error()
}

func (pe ProducerError) Unwrap() error { return pe.Err }

// ProducerErrors is a batch of ProducerError whose Error() aggregates the
// causes via go-multierror. The producers in this package report each
// failure separately and do not return it.
type ProducerErrors []*ProducerError

func (pes ProducerErrors) Error() string {
	errs := make([]error, len(pes))
	for i, e := range pes {
		errs[i] = e
	}
	return multiError(errs...).Error()
}
