package kafka

import (
	"strconv"
	"time"
)

// ConsumerMessage is one message delivered to a handler by a partition
// worker, in offset order (spec.md §4.5).
type ConsumerMessage struct {
	Key, Value []byte
	Topic      string
	Partition  int32
	Offset     int64
	Timestamp  time.Time
}

// ConsumerError wraps a failure encountered while consuming one
// (topic,partition), per spec.md §7: "consumers never fail the caller —
// they log and rebalance." Handlers never see this type directly; it is
// what a partition worker logs before it triggers Discover.
type ConsumerError struct {
	Topic     string
	Partition int32
	Err       error
}

func (ce ConsumerError) Error() string {
	return "kafka: error while consuming " + ce.Topic + "/" + strconv.Itoa(int(ce.Partition)) + ": " + ce.Err.Error()
}

func (ce ConsumerError) Unwrap() error { return ce.Err }

// HandlerAction is a handler's verdict on one delivered message, per
// spec.md §4.5's "Handler contract": Ack advances past it, Pause backs
// off and redelivers the same message, Stop unwinds the worker.
type HandlerAction int

const (
	Ack HandlerAction = iota
	Pause
	Stop
)

// Handler is the callable invoked with one message at a time by a
// partition worker (spec.md §4.5).
type Handler func(msg *ConsumerMessage) HandlerAction
