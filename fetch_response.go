package kafka

// FetchResponsePartition is one partition's fetched data.
type FetchResponsePartition struct {
	Partition    int32
	Err          KError
	HighWaterMark int64
	MessageSet   *MessageSet
}

func (p *FetchResponsePartition) encode(pe packetEncoder) error {
	pe.putInt32(p.Partition)
	pe.putInt16(int16(p.Err))
	pe.putInt64(p.HighWaterMark)

	pe.push(&lengthField{})
	if err := p.MessageSet.encode(pe); err != nil {
		return err
	}
	return pe.pop()
}

func (p *FetchResponsePartition) decode(pd packetDecoder) (err error) {
	if p.Partition, err = pd.getInt32(); err != nil {
		return err
	}
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	p.Err = KError(tmp)
	if p.HighWaterMark, err = pd.getInt64(); err != nil {
		return err
	}

	// The message set is decoded from its own length-bounded subset, so a
	// partial trailing message stops at this partition's boundary and is
	// dropped without disturbing the rest of the response.
	size, err := pd.getInt32()
	if err != nil {
		return err
	}
	msgSet, err := pd.getSubset(int(size))
	if err != nil {
		return err
	}
	p.MessageSet = &MessageSet{}
	return p.MessageSet.decode(msgSet, 0)
}

// FetchResponse is the set of messages returned for a FetchRequest.
type FetchResponse struct {
	Blocks map[string]map[int32]*FetchResponsePartition
}

func (r *FetchResponse) encode(pe packetEncoder) error {
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

func (r *FetchResponse) decode(pd packetDecoder, version int16) (err error) {
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.Blocks = make(map[string]map[int32]*FetchResponsePartition, n)
	for i := 0; i < n; i++ {
		topic, err := pd.getString()
		if err != nil {
			return err
		}
		m, err := pd.getArrayLength()
		if err != nil {
			return err
		}
		partitions := make(map[int32]*FetchResponsePartition, m)
		for j := 0; j < m; j++ {
			p := new(FetchResponsePartition)
			if err := p.decode(pd); err != nil {
				return err
			}
			partitions[p.Partition] = p
		}
		r.Blocks[topic] = partitions
	}
	return nil
}

func (r *FetchResponse) key() int16     { return int16(apiKeyFetch) }
func (r *FetchResponse) version() int16 { return 0 }

// GetBlock returns the per-partition result, or nil if absent.
func (r *FetchResponse) GetBlock(topic string, partition int32) *FetchResponsePartition {
	if r.Blocks == nil {
		return nil
	}
	partitions, ok := r.Blocks[topic]
	if !ok {
		return nil
	}
	return partitions[partition]
}
