package kafka

// ConsumerMetadataResponse reports the broker currently coordinating a
// consumer group's membership and offsets (spec.md §4.1, scenario S4).
type ConsumerMetadataResponse struct {
	Err             KError
	CoordinatorID   int32
	CoordinatorHost string
	CoordinatorPort int32
}

func (r *ConsumerMetadataResponse) encode(pe packetEncoder) error {
	pe.putInt16(int16(r.Err))
	pe.putInt32(r.CoordinatorID)
	if err := pe.putString(r.CoordinatorHost); err != nil {
		return err
	}
	pe.putInt32(r.CoordinatorPort)
	return nil
}

func (r *ConsumerMetadataResponse) decode(pd packetDecoder, version int16) (err error) {
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	r.Err = KError(tmp)

	if r.CoordinatorID, err = pd.getInt32(); err != nil {
		return err
	}
	if r.CoordinatorHost, err = pd.getString(); err != nil {
		return err
	}
	if r.CoordinatorPort, err = pd.getInt32(); err != nil {
		return err
	}
	return nil
}

func (r *ConsumerMetadataResponse) key() int16     { return int16(apiKeyConsumerMetadata) }
func (r *ConsumerMetadataResponse) version() int16 { return 0 }
