package kafka

import "time"

// ClusterAdmin is the trimmed administrative surface SPEC_FULL adds on
// top of the base client: CreateTopics and DeleteTopics, the two
// operations an operator needs to provision topics without an external
// tool. Broader admin operations (ACLs, partition reassignment, config
// alteration) are out of scope for this client, the way the teacher's
// much larger ClusterAdmin interface covers Kafka 0.10+ surface this
// client does not target.
type ClusterAdmin interface {
	// CreateTopic creates a single topic with the given detail. timeout
	// bounds how long the controller waits for replication to settle
	// before replying.
	CreateTopic(topic string, detail *TopicDetail, timeout time.Duration) error

	// DeleteTopic deletes a topic. It may take several seconds after
	// DeleteTopic returns for the deletion to become visible in cluster
	// metadata.
	DeleteTopic(topic string, timeout time.Duration) error

	// Close releases the admin's underlying broker connections.
	Close() error
}

type clusterAdmin struct {
	client *Client
}

// NewClusterAdmin dials the given seed brokers and returns a ClusterAdmin
// that issues CreateTopics/DeleteTopics to whichever broker
// Client.AnyBroker returns; it does not locate the cluster's controller.
func NewClusterAdmin(brokers []string, conf *Config) (ClusterAdmin, error) {
	client, err := NewClient(brokers, conf)
	if err != nil {
		return nil, err
	}
	return &clusterAdmin{client: client}, nil
}

func (ca *clusterAdmin) CreateTopic(topic string, detail *TopicDetail, timeout time.Duration) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if detail == nil {
		return ConfigurationError("detail must not be nil")
	}

	b, err := ca.client.AnyBroker()
	if err != nil {
		return err
	}

	req := &CreateTopicsRequest{
		TopicDetails: map[string]*TopicDetail{topic: detail},
		Timeout:      int32(timeout / time.Millisecond),
	}
	resp, err := b.Request(req)
	if err != nil {
		return err
	}
	ctr, ok := resp.(*CreateTopicsResponse)
	if !ok {
		return ErrIncompleteResponse
	}
	if kerr, ok := ctr.TopicErrors[topic]; ok && kerr != ErrNoError {
		return kerr
	}
	return nil
}

func (ca *clusterAdmin) DeleteTopic(topic string, timeout time.Duration) error {
	if topic == "" {
		return ErrInvalidTopic
	}

	b, err := ca.client.AnyBroker()
	if err != nil {
		return err
	}

	req := &DeleteTopicsRequest{
		Topics:  []string{topic},
		Timeout: int32(timeout / time.Millisecond),
	}
	resp, err := b.Request(req)
	if err != nil {
		return err
	}
	dtr, ok := resp.(*DeleteTopicsResponse)
	if !ok {
		return ErrIncompleteResponse
	}
	if kerr, ok := dtr.TopicErrorCodes[topic]; ok && kerr != ErrNoError {
		return kerr
	}
	return nil
}

func (ca *clusterAdmin) Close() error {
	return ca.client.Close()
}
