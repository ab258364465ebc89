package kafka

import (
	"strconv"
	"sync"
	"time"
)

// Client owns the shared, process-wide Broker registry (spec.md §5: "the
// per-(host,port) Connection pool is the only process-wide shared
// structure") and the per-topic metadata cache (spec.md §2's "Metadata
// cache" component). Producers and ConsumerGroups are built on top of one
// Client so they share brokers and refreshes.
type Client struct {
	conf *Config

	mu      sync.RWMutex
	seed    []string           // bootstrap "host:port" addresses from Config
	brokers map[int32]*Broker  // keyed by node_id once known
	byAddr  map[string]*Broker // keyed by "host:port", for brokers not yet assigned a node_id
	meta    map[string]*TopicMetadata

	closed bool
}

// NewClient records the seed list and performs a first metadata refresh
// (which dials a seed broker) to discover the cluster, matching
// spec.md §7's "Unrecoverable startup errors (e.g., no broker reachable)
// fail *_start synchronously."
func NewClient(brokers []string, conf *Config) (*Client, error) {
	if conf == nil {
		conf = NewConfig()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if len(brokers) == 0 {
		return nil, ConfigurationError("at least one seed broker is required")
	}

	c := &Client{
		conf:    conf,
		seed:    append([]string(nil), brokers...),
		brokers: make(map[int32]*Broker),
		byAddr:  make(map[string]*Broker),
		meta:    make(map[string]*TopicMetadata),
	}

	if err := c.RefreshMetadata(); err != nil {
		return nil, err
	}
	return c, nil
}

// seedBrokers returns transient Broker handles for the configured
// bootstrap addresses, used only while no broker has been registered
// from a Metadata response yet.
func (c *Client) seedBrokers() []*Broker {
	out := make([]*Broker, 0, len(c.seed))
	for _, addr := range c.seed {
		out = append(out, c.brokerForAddr(addr))
	}
	return out
}

// brokerForAddr returns the registered Broker for addr, creating one if
// none is registered yet. This is spec.md §5's "atomic registry that
// allows at most one live Connection per endpoint."
func (c *Client) brokerForAddr(addr string) *Broker {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b, ok := c.byAddr[addr]; ok {
		return b
	}
	b := NewBroker(addr, c.conf)
	c.byAddr[addr] = b
	return b
}

// registerBroker records a Broker under its learned node_id, folding it
// into the (host,port) registry so that a second broker racing to open
// the same endpoint reuses this one instead (spec.md §5).
func (c *Client) registerBroker(meta *MetadataBroker) *Broker {
	addr := brokerAddr(meta.Host, meta.Port)

	c.mu.Lock()
	defer c.mu.Unlock()

	if existing, ok := c.byAddr[addr]; ok {
		existing.SetID(meta.NodeID)
		c.brokers[meta.NodeID] = existing
		return existing
	}

	b := NewBroker(addr, c.conf)
	b.SetID(meta.NodeID)
	c.byAddr[addr] = b
	c.brokers[meta.NodeID] = b
	return b
}

func brokerAddr(host string, port int32) string {
	return host + ":" + strconv.Itoa(int(port))
}

// Broker returns the registered Broker for node_id, or nil if unknown.
func (c *Client) Broker(nodeID int32) *Broker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.brokers[nodeID]
}

// LeaderForPartition returns the Broker that is the current leader for
// (topic,partition), refreshing metadata once if it is not already known,
// per spec.md §3: "operations against it block pending refresh" when the
// leader is absent.
func (c *Client) LeaderForPartition(topic string, partition int32) (*Broker, error) {
	leader := c.cachedLeader(topic, partition)
	if leader != nil {
		return leader, nil
	}
	if err := c.RefreshMetadataFor(topic); err != nil {
		return nil, err
	}
	leader = c.cachedLeader(topic, partition)
	if leader == nil {
		return nil, ErrLeaderUnavailable
	}
	return leader, nil
}

func (c *Client) cachedLeader(topic string, partition int32) *Broker {
	c.mu.RLock()
	defer c.mu.RUnlock()

	t, ok := c.meta[topic]
	if !ok {
		return nil
	}
	for _, p := range t.Partitions {
		if p.ID != partition {
			continue
		}
		if p.Leader < 0 {
			return nil
		}
		return c.brokers[p.Leader]
	}
	return nil
}

// Partitions returns the known partition ids for topic, refreshing
// metadata if the topic is not yet cached.
func (c *Client) Partitions(topic string) ([]int32, error) {
	c.mu.RLock()
	t, ok := c.meta[topic]
	c.mu.RUnlock()

	if !ok {
		if err := c.RefreshMetadataFor(topic); err != nil {
			return nil, err
		}
		c.mu.RLock()
		t, ok = c.meta[topic]
		c.mu.RUnlock()
		if !ok {
			return nil, ErrUnknownTopicOrPartition
		}
	}

	ids := make([]int32, len(t.Partitions))
	for i, p := range t.Partitions {
		ids[i] = p.ID
	}
	return ids, nil
}

// RefreshMetadataFor refreshes the cache for a single topic.
func (c *Client) RefreshMetadataFor(topics ...string) error {
	return c.refresh(topics)
}

// RefreshMetadata refreshes the cache for every topic currently known,
// plus the cluster broker list. NewClient calls it once; no periodic
// refresh runs, and leader errors refresh through RefreshMetadataFor.
func (c *Client) RefreshMetadata() error {
	c.mu.RLock()
	topics := make([]string, 0, len(c.meta))
	for t := range c.meta {
		topics = append(topics, t)
	}
	c.mu.RUnlock()
	return c.refresh(topics)
}

// refresh issues a MetadataRequest to the first reachable broker (the
// registered ones if we have any, otherwise the seed list), and folds the
// result into the cache. Brokers are only added or updated: a broker that
// is missing from later Metadata responses stays registered.
func (c *Client) refresh(topics []string) error {
	candidates := c.refreshCandidates()
	if len(candidates) == 0 {
		return ErrOutOfBrokers
	}

	var lastErr error
	for _, b := range candidates {
		resp, err := b.Request(&MetadataRequest{Topics: topics})
		if err != nil {
			lastErr = err
			continue
		}
		meta, ok := resp.(*MetadataResponse)
		if !ok {
			lastErr = ErrIncompleteResponse
			continue
		}
		c.applyMetadata(meta)
		return nil
	}
	return lastErr
}

func (c *Client) refreshCandidates() []*Broker {
	c.mu.RLock()
	known := make([]*Broker, 0, len(c.brokers))
	for _, b := range c.brokers {
		known = append(known, b)
	}
	c.mu.RUnlock()

	if len(known) > 0 {
		return known
	}
	return c.seedBrokers()
}

func (c *Client) applyMetadata(meta *MetadataResponse) {
	for _, b := range meta.Brokers {
		c.registerBroker(b)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range meta.Topics {
		c.meta[t.Name] = t
	}
}

// AnyBroker returns the first reachable registered Broker (or seed
// Broker, when none is registered yet), used by operations
// (ConsumerMetadata discovery, admin calls) that only need "any broker",
// not a specific leader. A Broker that is already connected counts as
// reachable.
func (c *Client) AnyBroker() (*Broker, error) {
	for _, b := range c.refreshCandidates() {
		if err := b.Open(); err == nil || err == ErrAlreadyConnected {
			return b, nil
		}
	}
	return nil, ErrOutOfBrokers
}

// Close tears down every registered Broker.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosedClient
	}
	c.closed = true

	var merrs []error
	for _, b := range c.byAddr {
		if err := b.Close(); err != nil && err != ErrNotConnected {
			merrs = append(merrs, err)
		}
	}
	if len(merrs) > 0 {
		return multiError(merrs...)
	}
	return nil
}

// metadataRefreshTicker runs fn every interval until stop is closed.
// Nothing in the package starts it, so Client does not refresh metadata
// on a timer.
func metadataRefreshTicker(interval time.Duration, stop <-chan struct{}, fn func()) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			fn()
		case <-stop:
			return
		}
	}
}
