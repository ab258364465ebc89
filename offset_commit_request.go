package kafka

type offsetCommitRequestPartition struct {
	Partition int32
	Offset    int64
	Metadata  string
}

func (p *offsetCommitRequestPartition) encode(pe packetEncoder) error {
	pe.putInt32(p.Partition)
	pe.putInt64(p.Offset)
	return pe.putString(p.Metadata)
}

func (p *offsetCommitRequestPartition) decode(pd packetDecoder) (err error) {
	if p.Partition, err = pd.getInt32(); err != nil {
		return err
	}
	if p.Offset, err = pd.getInt64(); err != nil {
		return err
	}
	if p.Metadata, err = pd.getString(); err != nil {
		return err
	}
	return nil
}

type offsetCommitRequestTopic struct {
	Topic      string
	Partitions []*offsetCommitRequestPartition
}

func (t *offsetCommitRequestTopic) encode(pe packetEncoder) error {
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

func (t *offsetCommitRequestTopic) decode(pd packetDecoder) (err error) {
	if t.Topic, err = pd.getString(); err != nil {
		return err
	}
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	t.Partitions = make([]*offsetCommitRequestPartition, n)
	for i := 0; i < n; i++ {
		t.Partitions[i] = new(offsetCommitRequestPartition)
		if err := t.Partitions[i].decode(pd); err != nil {
			return err
		}
	}
	return nil
}

// OffsetCommitRequest is the v0 OffsetCommit request: commits are persisted
// directly to Kafka's __consumer_offsets topic, annotated with a
// caller-supplied metadata string (spec.md §4.4's commit annotation).
type OffsetCommitRequest struct {
	ConsumerGroup string
	topics        map[string]*offsetCommitRequestTopic
}

// AddBlock stages a commit for topic/partition at offset, with the given
// annotation.
func (r *OffsetCommitRequest) AddBlock(topic string, partition int32, offset int64, metadata string) {
	if r.topics == nil {
		r.topics = make(map[string]*offsetCommitRequestTopic)
	}
	t, ok := r.topics[topic]
	if !ok {
		t = &offsetCommitRequestTopic{Topic: topic}
		r.topics[topic] = t
	}
	t.Partitions = append(t.Partitions, &offsetCommitRequestPartition{
		Partition: partition,
		Offset:    offset,
		Metadata:  metadata,
	})
}

func (r *OffsetCommitRequest) encode(pe packetEncoder) error {
	if err := pe.putString(r.ConsumerGroup); err != nil {
		return err
	}

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

func (r *OffsetCommitRequest) decode(pd packetDecoder, version int16) (err error) {
	if r.ConsumerGroup, err = pd.getString(); err != nil {
		return err
	}

	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.topics = make(map[string]*offsetCommitRequestTopic, n)
	for i := 0; i < n; i++ {
		t := new(offsetCommitRequestTopic)
		if err := t.decode(pd); err != nil {
			return err
		}
		r.topics[t.Topic] = t
	}
	return nil
}

func (r *OffsetCommitRequest) key() int16     { return int16(apiKeyOffsetCommit) }
func (r *OffsetCommitRequest) version() int16 { return 0 }
