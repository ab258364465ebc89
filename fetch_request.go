package kafka

type fetchRequestPartition struct {
	Partition   int32
	FetchOffset int64
	MaxBytes    int32
}

func (p *fetchRequestPartition) encode(pe packetEncoder) error {
	pe.putInt32(p.Partition)
	pe.putInt64(p.FetchOffset)
	pe.putInt32(p.MaxBytes)
	return nil
}

func (p *fetchRequestPartition) decode(pd packetDecoder) (err error) {
	if p.Partition, err = pd.getInt32(); err != nil {
		return err
	}
	if p.FetchOffset, err = pd.getInt64(); err != nil {
		return err
	}
	if p.MaxBytes, err = pd.getInt32(); err != nil {
		return err
	}
	return nil
}

type fetchRequestTopic struct {
	Topic      string
	Partitions []*fetchRequestPartition
}

func (t *fetchRequestTopic) encode(pe packetEncoder) error {
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

func (t *fetchRequestTopic) decode(pd packetDecoder) (err error) {
	if t.Topic, err = pd.getString(); err != nil {
		return err
	}
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	t.Partitions = make([]*fetchRequestPartition, n)
	for i := 0; i < n; i++ {
		t.Partitions[i] = new(fetchRequestPartition)
		if err := t.Partitions[i].decode(pd); err != nil {
			return err
		}
	}
	return nil
}

// FetchRequest asks a broker for new messages on one or more
// topic-partitions, long-polling server-side up to MaxWaitTime if fewer
// than MinBytes are immediately available (spec.md §4.5 step 1).
type FetchRequest struct {
	MaxWaitTime int32 // milliseconds
	MinBytes    int32
	topics      map[string]*fetchRequestTopic
}

// AddBlock requests partition starting at fetchOffset, capped at maxBytes.
func (r *FetchRequest) AddBlock(topic string, partition int32, fetchOffset int64, maxBytes int32) {
	if r.topics == nil {
		r.topics = make(map[string]*fetchRequestTopic)
	}
	t, ok := r.topics[topic]
	if !ok {
		t = &fetchRequestTopic{Topic: topic}
		r.topics[topic] = t
	}
	t.Partitions = append(t.Partitions, &fetchRequestPartition{
		Partition:   partition,
		FetchOffset: fetchOffset,
		MaxBytes:    maxBytes,
	})
}

func (r *FetchRequest) encode(pe packetEncoder) error {
	pe.putInt32(-1) // replica_id, always -1 for a non-broker client
	pe.putInt32(r.MaxWaitTime)
	pe.putInt32(r.MinBytes)

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

func (r *FetchRequest) decode(pd packetDecoder, version int16) (err error) {
	if _, err = pd.getInt32(); err != nil { // replica_id
		return err
	}
	if r.MaxWaitTime, err = pd.getInt32(); err != nil {
		return err
	}
	if r.MinBytes, err = pd.getInt32(); err != nil {
		return err
	}

	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.topics = make(map[string]*fetchRequestTopic, n)
	for i := 0; i < n; i++ {
		t := new(fetchRequestTopic)
		if err := t.decode(pd); err != nil {
			return err
		}
		r.topics[t.Topic] = t
	}
	return nil
}

func (r *FetchRequest) key() int16     { return int16(apiKeyFetch) }
func (r *FetchRequest) version() int16 { return 0 }
