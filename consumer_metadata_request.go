package kafka

// ConsumerMetadataRequest locates the coordinator broker for a consumer
// group (spec.md §4.1, scenario S3).
type ConsumerMetadataRequest struct {
	ConsumerGroup string
}

func (r *ConsumerMetadataRequest) encode(pe packetEncoder) error {
	return pe.putString(r.ConsumerGroup)
}

func (r *ConsumerMetadataRequest) decode(pd packetDecoder, version int16) (err error) {
	r.ConsumerGroup, err = pd.getString()
	return err
}

func (r *ConsumerMetadataRequest) key() int16     { return int16(apiKeyConsumerMetadata) }
func (r *ConsumerMetadataRequest) version() int16 { return 0 }
