package kafka

// DeleteTopicsResponse reports one error code per requested topic.
type DeleteTopicsResponse struct {
	TopicErrorCodes map[string]KError
}

func (r *DeleteTopicsResponse) encode(pe packetEncoder) error {
	if err := pe.putArrayLength(len(r.TopicErrorCodes)); err != nil {
		return err
	}
	for topic, kerr := range r.TopicErrorCodes {
		if err := pe.putString(topic); err != nil {
			return err
		}
		pe.putInt16(int16(kerr))
	}
	return nil
}

func (r *DeleteTopicsResponse) decode(pd packetDecoder, version int16) error {
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.TopicErrorCodes = make(map[string]KError, n)
	for i := 0; i < n; i++ {
		topic, err := pd.getString()
		if err != nil {
			return err
		}
		code, err := pd.getInt16()
		if err != nil {
			return err
		}
		r.TopicErrorCodes[topic] = KError(code)
	}
	return nil
}

func (r *DeleteTopicsResponse) key() int16     { return int16(apiKeyDeleteTopics) }
func (r *DeleteTopicsResponse) version() int16 { return 0 }
