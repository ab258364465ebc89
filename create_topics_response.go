package kafka

// CreateTopicsResponse reports one error code per requested topic.
type CreateTopicsResponse struct {
	TopicErrors map[string]KError
}

func (r *CreateTopicsResponse) encode(pe packetEncoder) error {
	if err := pe.putArrayLength(len(r.TopicErrors)); err != nil {
		return err
	}
	for topic, kerr := range r.TopicErrors {
		if err := pe.putString(topic); err != nil {
			return err
		}
		pe.putInt16(int16(kerr))
	}
	return nil
}

func (r *CreateTopicsResponse) decode(pd packetDecoder, version int16) error {
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.TopicErrors = make(map[string]KError, n)
	for i := 0; i < n; i++ {
		topic, err := pd.getString()
		if err != nil {
			return err
		}
		code, err := pd.getInt16()
		if err != nil {
			return err
		}
		r.TopicErrors[topic] = KError(code)
	}
	return nil
}

func (r *CreateTopicsResponse) key() int16     { return int16(apiKeyCreateTopics) }
func (r *CreateTopicsResponse) version() int16 { return 0 }
