package kafka

// TopicDetail describes one topic to create: its partition count,
// replication factor, and any broker-level overrides, per SPEC_FULL's
// admin surface.
type TopicDetail struct {
	NumPartitions     int32
	ReplicationFactor int16
	ConfigEntries     map[string]*string
}

func (t *TopicDetail) encode(pe packetEncoder) error {
	pe.putInt32(t.NumPartitions)
	pe.putInt16(t.ReplicationFactor)

	// replica assignment is left to the broker (empty array) since this
	// client does not expose manual replica placement.
	if err := pe.putArrayLength(0); err != nil {
		return err
	}

	if err := pe.putArrayLength(len(t.ConfigEntries)); err != nil {
		return err
	}
	for name, value := range t.ConfigEntries {
		if err := pe.putString(name); err != nil {
			return err
		}
		if err := pe.putNullableString(value); err != nil {
			return err
		}
	}
	return nil
}

func (t *TopicDetail) decode(pd packetDecoder) error {
	var err error
	if t.NumPartitions, err = pd.getInt32(); err != nil {
		return err
	}
	if t.ReplicationFactor, err = pd.getInt16(); err != nil {
		return err
	}

	nAssignments, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	for i := 0; i < nAssignments; i++ {
		if _, err := pd.getInt32(); err != nil { // partition id
			return err
		}
		nReplicas, err := pd.getArrayLength()
		if err != nil {
			return err
		}
		for j := 0; j < nReplicas; j++ {
			if _, err := pd.getInt32(); err != nil {
				return err
			}
		}
	}

	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	if n > 0 {
		t.ConfigEntries = make(map[string]*string, n)
	}
	for i := 0; i < n; i++ {
		name, err := pd.getString()
		if err != nil {
			return err
		}
		value, err := pd.getNullableString()
		if err != nil {
			return err
		}
		t.ConfigEntries[name] = value
	}
	return nil
}

// CreateTopicsRequest asks the controller broker to create one or more
// topics, SPEC_FULL's admin surface extension to the base 0.8.x protocol.
type CreateTopicsRequest struct {
	TopicDetails map[string]*TopicDetail
	Timeout      int32 // milliseconds
}

func (r *CreateTopicsRequest) encode(pe packetEncoder) error {
	if err := pe.putArrayLength(len(r.TopicDetails)); err != nil {
		return err
	}
	for topic, detail := range r.TopicDetails {
		if err := pe.putString(topic); err != nil {
			return err
		}
		if err := detail.encode(pe); err != nil {
			return err
		}
	}
	pe.putInt32(r.Timeout)
	return nil
}

func (r *CreateTopicsRequest) decode(pd packetDecoder, version int16) error {
	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.TopicDetails = make(map[string]*TopicDetail, n)
	for i := 0; i < n; i++ {
		topic, err := pd.getString()
		if err != nil {
			return err
		}
		detail := new(TopicDetail)
		if err := detail.decode(pd); err != nil {
			return err
		}
		r.TopicDetails[topic] = detail
	}
	if r.Timeout, err = pd.getInt32(); err != nil {
		return err
	}
	return nil
}

func (r *CreateTopicsRequest) key() int16     { return int16(apiKeyCreateTopics) }
func (r *CreateTopicsRequest) version() int16 { return 0 }
