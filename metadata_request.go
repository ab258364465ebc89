package kafka

// MetadataRequest asks a broker for cluster and topic metadata. An empty
// Topics list requests metadata for all topics known to the broker.
type MetadataRequest struct {
	Topics []string
}

func (r *MetadataRequest) encode(pe packetEncoder) error {
	return pe.putStringArray(r.Topics)
}

func (r *MetadataRequest) decode(pd packetDecoder, version int16) (err error) {
	r.Topics, err = pd.getStringArray()
	return err
}

func (r *MetadataRequest) key() int16     { return int16(apiKeyMetadata) }
func (r *MetadataRequest) version() int16 { return 0 }
