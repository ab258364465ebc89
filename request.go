package kafka

// request is the envelope the codec wraps around every outgoing protocolBody:
// the header fields are produced here, never by the caller, per spec.md
// §4.1.
type request struct {
	correlationID int32
	clientID      string
	body          protocolBody
}

func (r *request) encode(pe packetEncoder) error {
	pe.putInt16(r.body.key())
	pe.putInt16(r.body.version())
	pe.putInt32(r.correlationID)
	if err := pe.putString(r.clientID); err != nil {
		return err
	}
	return r.body.encode(pe)
}

func (r *request) decode(pd packetDecoder) (err error) {
	key, err := pd.getInt16()
	if err != nil {
		return err
	}
	version, err := pd.getInt16()
	if err != nil {
		return err
	}
	r.correlationID, err = pd.getInt32()
	if err != nil {
		return err
	}
	clientID, err := pd.getNullableString()
	if err != nil {
		return err
	}
	if clientID != nil {
		r.clientID = *clientID
	}

	r.body = allocateBody(key, version)
	if r.body == nil {
		return PacketDecodingError{Info: "unknown request api key"}
	}
	return r.body.decode(pd, version)
}

// encodeRequest produces the full, length-prefixed wire frame for req: the
// 4-byte length word is emitted here so callers do not need to know the
// transport's framing convention.
func encodeRequest(correlationID int32, clientID string, body protocolBody) ([]byte, error) {
	req := &request{correlationID: correlationID, clientID: clientID, body: body}
	payload, err := encode(req)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 4+len(payload))
	framePrefixInt32(frame, int32(len(payload)))
	copy(frame[4:], payload)
	return frame, nil
}

func framePrefixInt32(buf []byte, v int32) {
	buf[0] = byte(v >> 24)
	buf[1] = byte(v >> 16)
	buf[2] = byte(v >> 8)
	buf[3] = byte(v)
}

func allocateBody(key, version int16) protocolBody {
	switch apiKey(key) {
	case apiKeyProduce:
		return &ProduceRequest{}
	case apiKeyFetch:
		return &FetchRequest{}
	case apiKeyOffset:
		return &OffsetRequest{}
	case apiKeyMetadata:
		return &MetadataRequest{}
	case apiKeyOffsetCommit:
		return &OffsetCommitRequest{}
	case apiKeyOffsetFetch:
		return &OffsetFetchRequest{}
	case apiKeyConsumerMetadata:
		return &ConsumerMetadataRequest{}
	case apiKeyJoinGroup:
		return &JoinGroupRequest{}
	case apiKeyHeartbeat:
		return &HeartbeatRequest{}
	case apiKeyLeaveGroup:
		return &LeaveGroupRequest{}
	case apiKeySyncGroup:
		return &SyncGroupRequest{}
	case apiKeyCreateTopics:
		return &CreateTopicsRequest{}
	case apiKeyDeleteTopics:
		return &DeleteTopicsRequest{}
	}
	return nil
}

// allocateResponseBody mirrors allocateBody for the response side of the
// wire: Broker.send needs a blank *response* value to decode the matching
// reply into, not another copy of the request it just sent.
func allocateResponseBody(key, version int16) protocolBody {
	switch apiKey(key) {
	case apiKeyProduce:
		return &ProduceResponse{}
	case apiKeyFetch:
		return &FetchResponse{}
	case apiKeyOffset:
		return &OffsetResponse{}
	case apiKeyMetadata:
		return &MetadataResponse{}
	case apiKeyOffsetCommit:
		return &OffsetCommitResponse{}
	case apiKeyOffsetFetch:
		return &OffsetFetchResponse{}
	case apiKeyConsumerMetadata:
		return &ConsumerMetadataResponse{}
	case apiKeyJoinGroup:
		return &JoinGroupResponse{}
	case apiKeyHeartbeat:
		return &HeartbeatResponse{}
	case apiKeyLeaveGroup:
		return &LeaveGroupResponse{}
	case apiKeySyncGroup:
		return &SyncGroupResponse{}
	case apiKeyCreateTopics:
		return &CreateTopicsResponse{}
	case apiKeyDeleteTopics:
		return &DeleteTopicsResponse{}
	}
	return nil
}
