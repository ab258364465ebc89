package kafka

// OffsetFetchRequest asks the group's coordinator for the last committed
// offset of each named partition.
type OffsetFetchRequest struct {
	ConsumerGroup string
	topics        map[string][]int32
}

// AddPartition stages topic/partition for the fetch.
func (r *OffsetFetchRequest) AddPartition(topic string, partition int32) {
	if r.topics == nil {
		r.topics = make(map[string][]int32)
	}
	r.topics[topic] = append(r.topics[topic], partition)
}

func (r *OffsetFetchRequest) encode(pe packetEncoder) error {
	if err := pe.putString(r.ConsumerGroup); err != nil {
		return err
	}

	if err := pe.putArrayLength(len(r.topics)); err != nil {
		return err
	}
	for topic, partitions := range r.topics {
		if err := pe.putString(topic); err != nil {
			return err
		}
		if err := pe.putInt32Array(partitions); err != nil {
			return err
		}
	}
	return nil
}

func (r *OffsetFetchRequest) decode(pd packetDecoder, version int16) (err error) {
	if r.ConsumerGroup, err = pd.getString(); err != nil {
		return err
	}

	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.topics = make(map[string][]int32, n)
	for i := 0; i < n; i++ {
		topic, err := pd.getString()
		if err != nil {
			return err
		}
		partitions, err := pd.getInt32Array()
		if err != nil {
			return err
		}
		r.topics[topic] = partitions
	}
	return nil
}

func (r *OffsetFetchRequest) key() int16     { return int16(apiKeyOffsetFetch) }
func (r *OffsetFetchRequest) version() int16 { return 0 }
