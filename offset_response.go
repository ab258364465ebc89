package kafka

// OffsetResponsePartition is one partition's matching offsets.
type OffsetResponsePartition struct {
	Partition int32
	Err       KError
	Offsets   []int64
}

func (p *OffsetResponsePartition) encode(pe packetEncoder) error {
	pe.putInt32(p.Partition)
	pe.putInt16(int16(p.Err))
	return pe.putInt64Array(p.Offsets)
}

func (p *OffsetResponsePartition) decode(pd packetDecoder) (err error) {
	if p.Partition, err = pd.getInt32(); err != nil {
		return err
	}
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	p.Err = KError(tmp)
	if p.Offsets, err = pd.getInt64Array(); err != nil {
		return err
	}
	return nil
}

// OffsetResponse reports log offsets for each requested topic/partition.
type OffsetResponse struct {
	Blocks map[string]map[int32]*OffsetResponsePartition
}

func (r *OffsetResponse) encode(pe packetEncoder) error {
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

func (r *OffsetResponse) decode(pd packetDecoder, version int16) (err error) {
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.Blocks = make(map[string]map[int32]*OffsetResponsePartition, n)
	for i := 0; i < n; i++ {
		topic, err := pd.getString()
		if err != nil {
			return err
		}
		m, err := pd.getArrayLength()
		if err != nil {
			return err
		}
		partitions := make(map[int32]*OffsetResponsePartition, m)
		for j := 0; j < m; j++ {
			p := new(OffsetResponsePartition)
			if err := p.decode(pd); err != nil {
				return err
			}
			partitions[p.Partition] = p
		}
		r.Blocks[topic] = partitions
	}
	return nil
}

func (r *OffsetResponse) key() int16     { return int16(apiKeyOffset) }
func (r *OffsetResponse) version() int16 { return 0 }

// GetBlock returns the per-partition result, or nil if absent.
func (r *OffsetResponse) GetBlock(topic string, partition int32) *OffsetResponsePartition {
	if r.Blocks == nil {
		return nil
	}
	partitions, ok := r.Blocks[topic]
	if !ok {
		return nil
	}
	return partitions[partition]
}
