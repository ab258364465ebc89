package kafka

// PartitionMetadata is one partition's view as reported by a Metadata
// response, per spec.md §3's Partition type.
type PartitionMetadata struct {
	Err      KError
	ID       int32
	Leader   int32 // node_id of the leader broker, or -1 if unavailable
	Replicas []int32
	Isr      []int32
}

func (p *PartitionMetadata) encode(pe packetEncoder) error {
	pe.putInt16(int16(p.Err))
	pe.putInt32(p.ID)
	pe.putInt32(p.Leader)

	if err := pe.putInt32Array(p.Replicas); err != nil {
		return err
	}
	return pe.putInt32Array(p.Isr)
}

func (p *PartitionMetadata) decode(pd packetDecoder, version int16) (err error) {
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	p.Err = KError(tmp)

	if p.ID, err = pd.getInt32(); err != nil {
		return err
	}
	if p.Leader, err = pd.getInt32(); err != nil {
		return err
	}
	if p.Replicas, err = pd.getInt32Array(); err != nil {
		return err
	}
	if p.Isr, err = pd.getInt32Array(); err != nil {
		return err
	}
	return nil
}

// TopicMetadata is one topic's view as reported by a Metadata response.
type TopicMetadata struct {
	Err        KError
	Name       string
	Partitions []*PartitionMetadata
}

func (t *TopicMetadata) encode(pe packetEncoder) error {
	pe.putInt16(int16(t.Err))
	if err := pe.putString(t.Name); err != nil {
		return err
	}

	if err := pe.putArrayLength(len(t.Partitions)); err != nil {
		return err
	}
	for _, pm := range t.Partitions {
		if err := pm.encode(pe); err != nil {
			return err
		}
	}
	return nil
}

func (t *TopicMetadata) decode(pd packetDecoder, version int16) (err error) {
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	t.Err = KError(tmp)

	if t.Name, err = pd.getString(); err != nil {
		return err
	}

	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	t.Partitions = make([]*PartitionMetadata, n)
	for i := 0; i < n; i++ {
		t.Partitions[i] = new(PartitionMetadata)
		if err := t.Partitions[i].decode(pd, version); err != nil {
			return err
		}
	}
	return nil
}

// MetadataBroker is one broker entry reported by a Metadata response, per
// spec.md §3's Broker type.
type MetadataBroker struct {
	NodeID int32
	Host   string
	Port   int32
}

func (b *MetadataBroker) encode(pe packetEncoder) error {
	pe.putInt32(b.NodeID)
	if err := pe.putString(b.Host); err != nil {
		return err
	}
	pe.putInt32(b.Port)
	return nil
}

func (b *MetadataBroker) decode(pd packetDecoder) (err error) {
	if b.NodeID, err = pd.getInt32(); err != nil {
		return err
	}
	if b.Host, err = pd.getString(); err != nil {
		return err
	}
	if b.Port, err = pd.getInt32(); err != nil {
		return err
	}
	return nil
}

// MetadataResponse is the cluster and topic view returned for a
// MetadataRequest.
type MetadataResponse struct {
	Brokers []*MetadataBroker
	Topics  []*TopicMetadata
}

func (r *MetadataResponse) encode(pe packetEncoder) error {
	if err := pe.putArrayLength(len(r.Brokers)); err != nil {
		return err
	}
	for _, b := range r.Brokers {
		if err := b.encode(pe); err != nil {
			return err
		}
	}

	if err := pe.putArrayLength(len(r.Topics)); err != nil {
		return err
	}
	for _, t := range r.Topics {
		if err := t.encode(pe); err != nil {
			return err
		}
	}
	return nil
}

func (r *MetadataResponse) decode(pd packetDecoder, version int16) (err error) {
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.Brokers = make([]*MetadataBroker, n)
	for i := 0; i < n; i++ {
		r.Brokers[i] = new(MetadataBroker)
		if err := r.Brokers[i].decode(pd); err != nil {
			return err
		}
	}

	n, err = pd.getArrayLength()
	if err != nil {
		return err
	}
	r.Topics = make([]*TopicMetadata, n)
	for i := 0; i < n; i++ {
		r.Topics[i] = new(TopicMetadata)
		if err := r.Topics[i].decode(pd, version); err != nil {
			return err
		}
	}
	return nil
}

func (r *MetadataResponse) key() int16     { return int16(apiKeyMetadata) }
func (r *MetadataResponse) version() int16 { return 0 }

// LeaderBroker returns the MetadataBroker matching a partition's reported
// leader node_id, or nil if the topic, partition, or leader is not present
// in this response (spec.md §8 scenario S6).
func (r *MetadataResponse) LeaderBroker(topic string, partition int32) *MetadataBroker {
	for _, t := range r.Topics {
		if t.Name != topic {
			continue
		}
		for _, p := range t.Partitions {
			if p.ID != partition || p.Leader < 0 {
				continue
			}
			for _, b := range r.Brokers {
				if b.NodeID == p.Leader {
					return b
				}
			}
			return nil
		}
	}
	return nil
}
