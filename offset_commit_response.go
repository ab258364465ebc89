package kafka

// OffsetCommitResponse reports, per partition, whether the commit
// succeeded.
type OffsetCommitResponse struct {
	Errors map[string]map[int32]KError
}

func (r *OffsetCommitResponse) encode(pe packetEncoder) error {
	if err := pe.putArrayLength(len(r.Errors)); err != nil {
		return err
	}
	for topic, partitions := range r.Errors {
		if err := pe.putString(topic); err != nil {
			return err
		}
		if err := pe.putArrayLength(len(partitions)); err != nil {
			return err
		}
		for partition, kerr := range partitions {
			pe.putInt32(partition)
			pe.putInt16(int16(kerr))
		}
	}
	return nil
}

func (r *OffsetCommitResponse) decode(pd packetDecoder, version int16) (err error) {
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.Errors = make(map[string]map[int32]KError, n)
	for i := 0; i < n; i++ {
		topic, err := pd.getString()
		if err != nil {
			return err
		}
		m, err := pd.getArrayLength()
		if err != nil {
			return err
		}
		partitions := make(map[int32]KError, m)
		for j := 0; j < m; j++ {
			partition, err := pd.getInt32()
			if err != nil {
				return err
			}
			tmp, err := pd.getInt16()
			if err != nil {
				return err
			}
			partitions[partition] = KError(tmp)
		}
		r.Errors[topic] = partitions
	}
	return nil
}

func (r *OffsetCommitResponse) key() int16     { return int16(apiKeyOffsetCommit) }
func (r *OffsetCommitResponse) version() int16 { return 0 }

// Err returns the error reported for topic/partition, or ErrNoError if it
// was not mentioned in the response.
func (r *OffsetCommitResponse) Err(topic string, partition int32) KError {
	partitions, ok := r.Errors[topic]
	if !ok {
		return ErrNoError
	}
	kerr, ok := partitions[partition]
	if !ok {
		return ErrNoError
	}
	return kerr
}
