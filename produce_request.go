package kafka

// RequiredAcks controls how many replica acknowledgements a broker waits for
// before replying to a Produce request, per spec.md §4.3.
type RequiredAcks int16

const (
	// NoResponse means the broker does not send a response at all, and
	// ProduceRequest.hasResponse() returns false.
	NoResponse RequiredAcks = 0
	// WaitForLocal waits only for the local commit to succeed before
	// responding.
	WaitForLocal RequiredAcks = 1
	// WaitForAll waits for all in-sync replicas to commit before
	// responding.
	WaitForAll RequiredAcks = -1
)

type produceRequestPartition struct {
	Partition int32
	Set       *MessageSet
}

func (p *produceRequestPartition) encode(pe packetEncoder) error {
	pe.putInt32(p.Partition)
	pe.push(&lengthField{})
	if err := p.Set.encode(pe); err != nil {
		return err
	}
	return pe.pop()
}

func (p *produceRequestPartition) decode(pd packetDecoder) (err error) {
	if p.Partition, err = pd.getInt32(); err != nil {
		return err
	}
	if err = pd.push(&lengthField{}); err != nil {
		return err
	}
	p.Set = &MessageSet{}
	if err := p.Set.decode(pd, 0); err != nil {
		return err
	}
	return pd.pop()
}

type produceRequestTopic struct {
	Topic      string
	Partitions []*produceRequestPartition
}

func (t *produceRequestTopic) encode(pe packetEncoder) error {
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

func (t *produceRequestTopic) decode(pd packetDecoder) (err error) {
	if t.Topic, err = pd.getString(); err != nil {
		return err
	}
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	t.Partitions = make([]*produceRequestPartition, n)
	for i := 0; i < n; i++ {
		t.Partitions[i] = new(produceRequestPartition)
		if err := t.Partitions[i].decode(pd); err != nil {
			return err
		}
	}
	return nil
}

// ProduceRequest carries one or more MessageSets, grouped by
// topic/partition, to a single broker (always the leader of every
// partition named in it), per spec.md §4.1.
type ProduceRequest struct {
	RequiredAcks RequiredAcks
	Timeout      int32 // milliseconds
	topics       map[string]*produceRequestTopic
}

func (r *ProduceRequest) ensureTopic(topic string) *produceRequestTopic {
	if r.topics == nil {
		r.topics = make(map[string]*produceRequestTopic)
	}
	t, ok := r.topics[topic]
	if !ok {
		t = &produceRequestTopic{Topic: topic}
		r.topics[topic] = t
	}
	return t
}

// AddSet attaches a ready MessageSet for topic/partition to this request.
func (r *ProduceRequest) AddSet(topic string, partition int32, set *MessageSet) {
	t := r.ensureTopic(topic)
	t.Partitions = append(t.Partitions, &produceRequestPartition{Partition: partition, Set: set})
}

func (r *ProduceRequest) encode(pe packetEncoder) error {
	pe.putInt16(int16(r.RequiredAcks))
	pe.putInt32(r.Timeout)

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

func (r *ProduceRequest) decode(pd packetDecoder, version int16) (err error) {
	acks, err := pd.getInt16()
	if err != nil {
		return err
	}
	r.RequiredAcks = RequiredAcks(acks)

	if r.Timeout, err = pd.getInt32(); err != nil {
		return err
	}

	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.topics = make(map[string]*produceRequestTopic, n)
	for i := 0; i < n; i++ {
		t := new(produceRequestTopic)
		if err := t.decode(pd); err != nil {
			return err
		}
		r.topics[t.Topic] = t
	}
	return nil
}

func (r *ProduceRequest) key() int16       { return int16(apiKeyProduce) }
func (r *ProduceRequest) version() int16   { return 0 }
func (r *ProduceRequest) hasResponse() bool {
	return r.RequiredAcks != NoResponse
}
