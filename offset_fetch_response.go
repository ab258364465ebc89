package kafka

// OffsetFetchResponsePartition is one partition's last committed offset. An
// Offset of -1 paired with ErrUnknownTopicOrPartition means "no commit yet"
// (spec.md §4.1).
type OffsetFetchResponsePartition struct {
	Partition int32
	Offset    int64
	Metadata  string
	Err       KError
}

func (p *OffsetFetchResponsePartition) encode(pe packetEncoder) error {
	pe.putInt32(p.Partition)
	pe.putInt64(p.Offset)
	if err := pe.putString(p.Metadata); err != nil {
		return err
	}
	pe.putInt16(int16(p.Err))
	return nil
}

func (p *OffsetFetchResponsePartition) decode(pd packetDecoder) (err error) {
	if p.Partition, err = pd.getInt32(); err != nil {
		return err
	}
	if p.Offset, err = pd.getInt64(); err != nil {
		return err
	}
	if p.Metadata, err = pd.getString(); err != nil {
		return err
	}
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	p.Err = KError(tmp)
	return nil
}

// OffsetFetchResponse reports the last committed offset for each requested
// topic/partition.
type OffsetFetchResponse struct {
	Blocks map[string]map[int32]*OffsetFetchResponsePartition
}

func (r *OffsetFetchResponse) encode(pe packetEncoder) error {
	if err := pe.putArrayLength(len(r.Blocks)); err != nil {
		return err
	}
	for topic, partitions := range r.Blocks {
		if err := pe.putString(topic); err != nil {
			return err
		}
		if err := pe.putArrayLength(len(partitions)); err != nil {
			return err
		}
		for _, p := range partitions {
			if err := p.encode(pe); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *OffsetFetchResponse) decode(pd packetDecoder, version int16) (err error) {
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.Blocks = make(map[string]map[int32]*OffsetFetchResponsePartition, n)
	for i := 0; i < n; i++ {
		topic, err := pd.getString()
		if err != nil {
			return err
		}
		m, err := pd.getArrayLength()
		if err != nil {
			return err
		}
		partitions := make(map[int32]*OffsetFetchResponsePartition, m)
		for j := 0; j < m; j++ {
			p := new(OffsetFetchResponsePartition)
			if err := p.decode(pd); err != nil {
				return err
			}
			partitions[p.Partition] = p
		}
		r.Blocks[topic] = partitions
	}
	return nil
}

func (r *OffsetFetchResponse) key() int16     { return int16(apiKeyOffsetFetch) }
func (r *OffsetFetchResponse) version() int16 { return 0 }

// GetBlock returns the per-partition result, or nil if absent.
func (r *OffsetFetchResponse) GetBlock(topic string, partition int32) *OffsetFetchResponsePartition {
	if r.Blocks == nil {
		return nil
	}
	partitions, ok := r.Blocks[topic]
	if !ok {
		return nil
	}
	return partitions[partition]
}
