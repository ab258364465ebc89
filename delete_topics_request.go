package kafka

// DeleteTopicsRequest asks the controller broker to delete one or more
// topics, SPEC_FULL's admin surface extension to the base 0.8.x protocol.
type DeleteTopicsRequest struct {
	Topics  []string
	Timeout int32 // milliseconds
}

func (r *DeleteTopicsRequest) encode(pe packetEncoder) error {
	if err := pe.putStringArray(r.Topics); err != nil {
		return err
	}
	pe.putInt32(r.Timeout)
	return nil
}

func (r *DeleteTopicsRequest) decode(pd packetDecoder, version int16) (err error) {
	if r.Topics, err = pd.getStringArray(); err != nil {
		return err
	}
	r.Timeout, err = pd.getInt32()
	return err
}

func (r *DeleteTopicsRequest) key() int16     { return int16(apiKeyDeleteTopics) }
func (r *DeleteTopicsRequest) version() int16 { return 0 }
