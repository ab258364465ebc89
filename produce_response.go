package kafka

// ProduceResponsePartition is one partition's produce result.
type ProduceResponsePartition struct {
	Partition int32
	Err       KError
	Offset    int64
}

func (p *ProduceResponsePartition) encode(pe packetEncoder) error {
	pe.putInt32(p.Partition)
	pe.putInt16(int16(p.Err))
	pe.putInt64(p.Offset)
	return nil
}

func (p *ProduceResponsePartition) decode(pd packetDecoder) (err error) {
	if p.Partition, err = pd.getInt32(); err != nil {
		return err
	}
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	p.Err = KError(tmp)
	if p.Offset, err = pd.getInt64(); err != nil {
		return err
	}
	return nil
}

// ProduceResponse is omitted on the wire entirely when the request was sent
// with RequiredAcks == NoResponse; Broker.Request handles that by returning
// a nil response without waiting to decode one.
type ProduceResponse struct {
	Blocks map[string]map[int32]*ProduceResponsePartition
}

func (r *ProduceResponse) encode(pe packetEncoder) error {
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

func (r *ProduceResponse) decode(pd packetDecoder, version int16) (err error) {
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.Blocks = make(map[string]map[int32]*ProduceResponsePartition, n)
	for i := 0; i < n; i++ {
		topic, err := pd.getString()
		if err != nil {
			return err
		}
		m, err := pd.getArrayLength()
		if err != nil {
			return err
		}
		partitions := make(map[int32]*ProduceResponsePartition, m)
		for j := 0; j < m; j++ {
			p := new(ProduceResponsePartition)
			if err := p.decode(pd); err != nil {
				return err
			}
			partitions[p.Partition] = p
		}
		r.Blocks[topic] = partitions
	}
	return nil
}

func (r *ProduceResponse) key() int16     { return int16(apiKeyProduce) }
func (r *ProduceResponse) version() int16 { return 0 }

// GetBlock returns the per-partition result, or nil if the response did not
// include one (a malformed/incomplete response; see ErrIncompleteResponse).
func (r *ProduceResponse) GetBlock(topic string, partition int32) *ProduceResponsePartition {
	if r.Blocks == nil {
		return nil
	}
	partitions, ok := r.Blocks[topic]
	if !ok {
		return nil
	}
	return partitions[partition]
}
