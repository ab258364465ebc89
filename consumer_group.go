package kafka

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ConsumerGroup is one member of a Kafka consumer group, coordinated
// against an external CoordinationStore rather than Kafka's own
// JoinGroup/SyncGroup protocol (spec.md §4.4, §6). Its Run loop drives
// the Discover → Electing → Rebalancing → Consuming state machine; a
// failed session renewal or a partition worker's rebalance trigger sends
// it back to Discover. Other members joining or leaving is not watched
// for, so it does not by itself end a generation.
//
// Offset commit and fetch still go over the wire to Kafka itself
// (OffsetCommitRequest/OffsetFetchRequest against the group's native
// coordinator broker, located via ConsumerMetadataRequest) — only
// membership, leader election, and assignment distribution move to the
// external store.
type ConsumerGroup struct {
	conf    *Config
	client  *Client
	store   CoordinationStore
	groupID string
	prefix  string
	memberID string
	topics  []string
	handler Handler

	coordMu     sync.Mutex
	coordinator *Broker

	mu       sync.Mutex
	sess     string
	workers  map[string]map[int32]*partitionConsumer
	assignIx uint64

	rebalance chan error
	closing   chan struct{}
	closed    bool
	super     *supervisor
}

// GroupPrefix is the root key under which every group's state lives in
// the CoordinationStore (spec.md §4.4's <prefix>/<group>/... layout).
const GroupPrefix = "gokafka/groups"

// NewConsumerGroup joins groupID and begins consuming topics, invoking
// handler for every message delivered to a partition this member is
// assigned. Run happens in background goroutines; call Close to leave.
func NewConsumerGroup(brokers []string, groupID string, topics []string, conf *Config, store CoordinationStore, handler Handler) (*ConsumerGroup, error) {
	if conf == nil {
		conf = NewConfig()
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if groupID == "" {
		return nil, ConfigurationError("groupID must not be empty")
	}
	if len(topics) == 0 {
		return nil, ConfigurationError("at least one topic is required")
	}
	if handler == nil {
		return nil, ConfigurationError("handler must not be nil")
	}

	cl, err := NewClient(brokers, conf)
	if err != nil {
		return nil, err
	}

	g := &ConsumerGroup{
		conf:      conf,
		client:    cl,
		store:     store,
		groupID:   groupID,
		prefix:    GroupPrefix,
		memberID:  conf.ClientID + "-" + strconv.FormatInt(time.Now().UnixNano(), 36),
		topics:    append([]string(nil), topics...),
		handler:   handler,
		workers:   make(map[string]map[int32]*partitionConsumer),
		rebalance: make(chan error, 1),
		closing:   make(chan struct{}),
	}

	g.super = newSupervisor("consumer-group:"+groupID, g.runSupervised)
	return g, nil
}

// runSupervised adapts run to the supervisor's stop-channel contract; a
// panic inside run (a malformed assignment, a coordination-store bug) is
// recovered and the generation restarted per spec.md §9 instead of
// silently ending membership.
func (g *ConsumerGroup) runSupervised(_ <-chan struct{}) {
	g.run()
}

// triggerRebalance is called by a partition worker (or the session
// renewal loop) when it detects it should rejoin, e.g. on ErrLockLost or
// a coordinator change. Non-blocking: a rebalance already pending absorbs
// it.
func (g *ConsumerGroup) triggerRebalance(cause error) {
	select {
	case g.rebalance <- cause:
	default:
	}
}

// Close leaves the group: stops every partition worker, releases the
// session (and so every lock held under it), and tears down the Client.
func (g *ConsumerGroup) Close() error {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return ErrGroupShutdown
	}
	g.closed = true
	g.mu.Unlock()

	close(g.closing)
	g.super.Stop()
	return g.client.Close()
}

// run is the state machine loop: each iteration is one generation, ending
// when the member is told to rebalance (membership changed, lock lost,
// coordinator moved) or Close is called.
func (g *ConsumerGroup) run() {
	for {
		select {
		case <-g.closing:
			return
		default:
		}

		if err := g.discover(); err != nil {
			Logger.Printf("kafka: consumer group %s: discover failed: %v", g.groupID, err)
			if g.sleepOrClose(g.conf.Consumer.Group.SessionTimeout / 2) {
				return
			}
			continue
		}

		g.elect()

		if err := g.rebalanceAssignment(); err != nil {
			Logger.Printf("kafka: consumer group %s: rebalance failed: %v", g.groupID, err)
			g.releaseSession()
			if g.sleepOrClose(g.conf.Consumer.Group.SessionTimeout / 2) {
				return
			}
			continue
		}

		g.consume()
		g.stopWorkers()
		g.releaseSession()

		select {
		case <-g.closing:
			return
		default:
		}
	}
}

// discover opens a fresh session and registers this member's ephemeral
// membership key, spec.md §4.4's Discover state. A Kafka-native
// ConsumerMetadata lookup is also refreshed here so offset commit/fetch
// has a coordinator to target even though membership itself does not
// depend on it.
func (g *ConsumerGroup) discover() error {
	sess, err := g.store.SessionCreate(g.conf.Consumer.Group.SessionTimeout)
	if err != nil {
		return err
	}
	g.mu.Lock()
	g.sess = sess
	g.mu.Unlock()

	memberPath := groupPath(g.prefix, g.groupID, "members/"+g.memberID)
	if err := g.store.KVPut(memberPath, []byte(strconv.FormatInt(time.Now().Unix(), 10)), sess); err != nil {
		return err
	}

	go g.renewSession(sess)

	if _, err := g.discoverCoordinator(); err != nil {
		// Offset commit/fetch degrade to no-ops until a coordinator is
		// reachable; membership still proceeds (spec.md §7: consumers
		// never fail the caller).
		Logger.Printf("kafka: consumer group %s: no offset coordinator yet: %v", g.groupID, err)
	}
	return nil
}

// renewSession keeps sess alive at TTL/2 (spec.md §5) until it is
// superseded by a later generation or the group closes.
func (g *ConsumerGroup) renewSession(sess string) {
	ticker := time.NewTicker(g.conf.Consumer.Group.SessionTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-g.closing:
			return
		case <-ticker.C:
			g.mu.Lock()
			current := g.sess
			g.mu.Unlock()
			if current != sess {
				return
			}
			ok, err := g.store.SessionRenew(sess)
			if err != nil || !ok {
				g.triggerRebalance(ErrLockLost)
				return
			}
		}
	}
}

// elect attempts to acquire the group-wide leader lock; spec.md §4.4's
// Electing state. Losing the race is not an error: the winner computes
// the assignment and every member (including the loser) just waits for
// its own assignment key to appear.
func (g *ConsumerGroup) elect() bool {
	g.mu.Lock()
	sess := g.sess
	g.mu.Unlock()

	leaderPath := groupPath(g.prefix, g.groupID, "leader")
	deadline := time.Now().Add(g.conf.Consumer.Group.LockWait)
	for {
		acquired, err := g.store.LockAcquire(leaderPath, sess)
		if err == nil && acquired {
			return true
		}
		if g.conf.Consumer.Group.LockWait > 0 && time.Now().After(deadline) {
			return false
		}
		select {
		case <-g.closing:
			return false
		case <-time.After(100 * time.Millisecond):
		}
		// If another member already wrote an assignment for us, no need
		// to keep contending for leadership this generation.
		if _, found, _, _ := g.store.KVGet(groupPath(g.prefix, g.groupID, "assignments/"+g.memberID)); found {
			return false
		}
	}
}

// rebalanceAssignment computes (if leader) and then reads this member's
// slice of a deterministic round-robin assignment over
// sort(members) × sort(partitions), spec.md §4.4's Rebalancing state and
// scenario S7.
func (g *ConsumerGroup) rebalanceAssignment() error {
	g.mu.Lock()
	sess := g.sess
	g.mu.Unlock()

	leaderPath := groupPath(g.prefix, g.groupID, "leader")
	held, _ := g.store.LockAcquire(leaderPath, sess) // re-check: idempotent if we already hold it
	if held {
		defer g.store.LockRelease(leaderPath, sess)

		members, _, err := g.store.KVList(groupPath(g.prefix, g.groupID, "members/"))
		if err != nil {
			return err
		}
		assignments := g.computeAssignment(memberIDs(members))

		for member, parts := range assignments {
			path := groupPath(g.prefix, g.groupID, "assignments/"+member)
			if err := g.store.KVPut(path, encodeAssignment(parts), ""); err != nil {
				return err
			}
		}
	}

	// Every member, leader included, waits for its own assignment to
	// show up (it may already be there from a prior round's leader).
	deadline := time.Now().Add(g.conf.Consumer.Group.SessionTimeout)
	for {
		val, found, _, err := g.store.KVGet(groupPath(g.prefix, g.groupID, "assignments/"+g.memberID))
		if err == nil && found {
			g.applyAssignment(decodeAssignment(val))
			return nil
		}
		if time.Now().After(deadline) {
			return ErrGroupShutdown
		}
		select {
		case <-g.closing:
			return ErrGroupShutdown
		case <-time.After(100 * time.Millisecond):
		}
	}
}

// assignedPartition is one (topic,partition) pair handed to a member.
type assignedPartition struct {
	topic     string
	partition int32
}

// computeAssignment deterministically round-robins every (topic,
// partition) pair across the sorted member list, spec.md §4.4: "a
// deterministic round-robin over sort(members) × sort(partitions)".
func (g *ConsumerGroup) computeAssignment(members []string) map[string][]assignedPartition {
	var all []assignedPartition
	for _, topic := range g.topics {
		parts, err := g.client.Partitions(topic)
		if err != nil {
			Logger.Printf("kafka: consumer group %s: partitions for %s: %v", g.groupID, topic, err)
			continue
		}
		sort.Slice(parts, func(i, j int) bool { return parts[i] < parts[j] })
		for _, p := range parts {
			all = append(all, assignedPartition{topic: topic, partition: p})
		}
	}
	return roundRobinAssign(members, all)
}

// roundRobinAssign deterministically round-robins all across sort(members),
// the pure assignment rule of spec.md §4.4: "a deterministic round-robin
// over sort(members) × sort(partitions)" (scenario S7). members is sorted
// in place.
func roundRobinAssign(members []string, all []assignedPartition) map[string][]assignedPartition {
	sort.Strings(members)

	out := make(map[string][]assignedPartition, len(members))
	for _, m := range members {
		out[m] = nil
	}
	if len(members) == 0 {
		return out
	}
	for i, ap := range all {
		m := members[i%len(members)]
		out[m] = append(out[m], ap)
	}
	return out
}

func memberIDs(kv map[string][]byte) []string {
	ids := make([]string, 0, len(kv))
	for path := range kv {
		if i := strings.LastIndex(path, "/"); i >= 0 {
			ids = append(ids, path[i+1:])
		} else {
			ids = append(ids, path)
		}
	}
	return ids
}

// encodeAssignment/decodeAssignment use a plain "topic:partition,..."
// wire format: the assignment body is opaque to the coordination store,
// so there is no need for a richer codec than the protocol's own.
func encodeAssignment(parts []assignedPartition) []byte {
	items := make([]string, len(parts))
	for i, p := range parts {
		items[i] = p.topic + ":" + strconv.Itoa(int(p.partition))
	}
	return []byte(strings.Join(items, ","))
}

func decodeAssignment(raw []byte) []assignedPartition {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return nil
	}
	items := strings.Split(s, ",")
	out := make([]assignedPartition, 0, len(items))
	for _, item := range items {
		i := strings.LastIndex(item, ":")
		if i < 0 {
			continue
		}
		p, err := strconv.Atoi(item[i+1:])
		if err != nil {
			continue
		}
		out = append(out, assignedPartition{topic: item[:i], partition: int32(p)})
	}
	return out
}

// applyAssignment starts a partitionConsumer for every newly assigned
// partition and stops any the member no longer owns, spec.md §4.4's
// Consuming state: "each member spawns a partition worker per assigned
// partition."
func (g *ConsumerGroup) applyAssignment(parts []assignedPartition) {
	want := make(map[string]map[int32]bool, len(parts))
	for _, p := range parts {
		if want[p.topic] == nil {
			want[p.topic] = make(map[int32]bool)
		}
		want[p.topic][p.partition] = true
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for topic, byPart := range g.workers {
		for partition, pc := range byPart {
			if !want[topic][partition] {
				pc.stop()
				delete(byPart, partition)
			}
		}
	}

	for topic, partitions := range want {
		for partition := range partitions {
			if g.workers[topic] != nil && g.workers[topic][partition] != nil {
				continue
			}
			start := g.fetchCommittedOffset(topic, partition)
			pc := newPartitionConsumer(g, topic, partition, start, g.handler)
			if g.workers[topic] == nil {
				g.workers[topic] = make(map[int32]*partitionConsumer)
			}
			g.workers[topic][partition] = pc
			pc.start()
		}
	}
}

// consume blocks until a rebalance is triggered or the group is closed;
// the actual work happens in the partitionConsumer goroutines started by
// applyAssignment.
func (g *ConsumerGroup) consume() {
	select {
	case <-g.closing:
	case <-g.rebalance:
	}
}

func (g *ConsumerGroup) stopWorkers() {
	g.mu.Lock()
	workers := g.workers
	g.workers = make(map[string]map[int32]*partitionConsumer)
	g.mu.Unlock()

	for _, byPart := range workers {
		for _, pc := range byPart {
			pc.stop()
		}
	}
}

func (g *ConsumerGroup) releaseSession() {
	g.mu.Lock()
	sess := g.sess
	g.sess = ""
	g.mu.Unlock()
	if sess != "" {
		g.store.SessionDestroy(sess)
	}
	// drain any stale rebalance signal so the next generation starts clean
	select {
	case <-g.rebalance:
	default:
	}
}

// discoverCoordinator locates (and caches) the broker that owns this
// group's native offset storage via a ConsumerMetadata request, spec.md
// §4.1 and scenario S4.
func (g *ConsumerGroup) discoverCoordinator() (*Broker, error) {
	g.coordMu.Lock()
	defer g.coordMu.Unlock()
	if g.coordinator != nil && g.coordinator.Connected() {
		return g.coordinator, nil
	}

	any, err := g.client.AnyBroker()
	if err != nil {
		return nil, err
	}
	resp, err := any.Request(&ConsumerMetadataRequest{ConsumerGroup: g.groupID})
	if err != nil {
		return nil, err
	}
	cmr, ok := resp.(*ConsumerMetadataResponse)
	if !ok {
		return nil, ErrIncompleteResponse
	}
	if cmr.Err != ErrNoError {
		return nil, cmr.Err
	}

	addr := brokerAddr(cmr.CoordinatorHost, cmr.CoordinatorPort)
	b := g.client.brokerForAddr(addr)
	b.SetID(cmr.CoordinatorID)
	g.coordinator = b
	return b, nil
}

// fetchCommittedOffset resolves the starting offset for (topic,partition):
// the last committed offset if one exists, otherwise Config.Consumer.
// Offsets.Initial (spec.md §4.5 step 1).
func (g *ConsumerGroup) fetchCommittedOffset(topic string, partition int32) int64 {
	coord, err := g.discoverCoordinator()
	if err == nil {
		req := &OffsetFetchRequest{ConsumerGroup: g.groupID}
		req.AddPartition(topic, partition)
		if resp, err := coord.Request(req); err == nil {
			if ofr, ok := resp.(*OffsetFetchResponse); ok {
				if block := ofr.GetBlock(topic, partition); block != nil && block.Err == ErrNoError && block.Offset >= 0 {
					return block.Offset
				}
			}
		}
	}
	return g.conf.Consumer.Offsets.Initial
}

// commitOffset pushes offset for (topic,partition) to the native Kafka
// coordinator, called by a partitionConsumer as it advances (spec.md
// §4.5 step 3).
func (g *ConsumerGroup) commitOffset(topic string, partition int32, offset int64) {
	coord, err := g.discoverCoordinator()
	if err != nil {
		Logger.Printf("kafka: consumer group %s: commit %s/%d skipped, no coordinator: %v", g.groupID, topic, partition, err)
		return
	}
	req := &OffsetCommitRequest{ConsumerGroup: g.groupID}
	req.AddBlock(topic, partition, offset, "")
	if _, err := coord.Request(req); err != nil {
		Logger.Printf("kafka: consumer group %s: commit %s/%d failed: %v", g.groupID, topic, partition, err)
		g.coordMu.Lock()
		g.coordinator = nil
		g.coordMu.Unlock()
	}
}

func (g *ConsumerGroup) sleepOrClose(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return false
	case <-g.closing:
		return true
	}
}
