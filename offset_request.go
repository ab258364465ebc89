package kafka

import "time"

// Special offset-request time values, per spec.md §4.1/§8 scenario S5.
const (
	OffsetNewest int64 = -1
	OffsetOldest int64 = -2
)

// OffsetTime converts a wall-clock instant into the millisecond-since-epoch
// encoding the Offset request wire format wants. Use OffsetNewest/OffsetOldest
// directly for the two sentinel values.
func OffsetTime(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

type offsetRequestPartition struct {
	Partition          int32
	Time               int64
	MaxNumberOfOffsets int32
}

func (p *offsetRequestPartition) encode(pe packetEncoder) error {
	pe.putInt32(p.Partition)
	pe.putInt64(p.Time)
	pe.putInt32(p.MaxNumberOfOffsets)
	return nil
}

func (p *offsetRequestPartition) decode(pd packetDecoder) (err error) {
	if p.Partition, err = pd.getInt32(); err != nil {
		return err
	}
	if p.Time, err = pd.getInt64(); err != nil {
		return err
	}
	if p.MaxNumberOfOffsets, err = pd.getInt32(); err != nil {
		return err
	}
	return nil
}

type offsetRequestTopic struct {
	Topic      string
	Partitions []*offsetRequestPartition
}

func (t *offsetRequestTopic) encode(pe packetEncoder) error {
	if err := pe.putString(t.Topic); err != nil {
		return err
	}
	if err := pe.putArrayLength(len(t.Partitions)); err != nil {
		return err
	}
	for _, p := range t.Partitions {
		if err := p.encode(pe); err != nil {
			return err
		}
	}
	return nil
}

func (t *offsetRequestTopic) decode(pd packetDecoder) (err error) {
	if t.Topic, err = pd.getString(); err != nil {
		return err
	}
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	t.Partitions = make([]*offsetRequestPartition, n)
	for i := 0; i < n; i++ {
		t.Partitions[i] = new(offsetRequestPartition)
		if err := t.Partitions[i].decode(pd); err != nil {
			return err
		}
	}
	return nil
}

// OffsetRequest asks a broker for valid log offsets, either the two
// sentinel ones (newest/oldest) or a time-bounded search.
type OffsetRequest struct {
	topics map[string]*offsetRequestTopic
}

// AddBlock requests up to maxOffsets offsets at or before timeMillis for
// topic/partition (timeMillis may be OffsetNewest, OffsetOldest, or a value
// from OffsetTime).
func (r *OffsetRequest) AddBlock(topic string, partition int32, timeMillis int64, maxOffsets int32) {
	if r.topics == nil {
		r.topics = make(map[string]*offsetRequestTopic)
	}
	t, ok := r.topics[topic]
	if !ok {
		t = &offsetRequestTopic{Topic: topic}
		r.topics[topic] = t
	}
	t.Partitions = append(t.Partitions, &offsetRequestPartition{
		Partition:          partition,
		Time:               timeMillis,
		MaxNumberOfOffsets: maxOffsets,
	})
}

func (r *OffsetRequest) encode(pe packetEncoder) error {
	pe.putInt32(-1) // replica_id

	if err := pe.putArrayLength(len(r.topics)); err != nil {
		return err
	}
	for _, t := range r.topics {
		if err := t.encode(pe); err != nil {
			return err
		}
	}
	return nil
}

func (r *OffsetRequest) decode(pd packetDecoder, version int16) (err error) {
	if _, err = pd.getInt32(); err != nil {
		return err
	}

	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.topics = make(map[string]*offsetRequestTopic, n)
	for i := 0; i < n; i++ {
		t := new(offsetRequestTopic)
		if err := t.decode(pd); err != nil {
			return err
		}
		r.topics[t.Topic] = t
	}
	return nil
}

func (r *OffsetRequest) key() int16     { return int16(apiKeyOffset) }
func (r *OffsetRequest) version() int16 { return 0 }
