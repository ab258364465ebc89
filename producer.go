package kafka

import (
	"sync"
	"time"
)

// producer is the topic-agnostic dispatcher core shared by SyncProducer
// and AsyncProducer (spec.md §2's "Producer" component / SPEC_FULL §4.3's
// "two producer front-ends share one dispatcher core"). It refreshes
// metadata, selects partitions, batches per leader broker, and retries on
// NotLeader-shaped errors.
type producer struct {
	conf *Config
	cl   *Client

	input     chan *ProducerMessage
	successes chan *ProducerMessage
	errors    chan *ProducerError

	mu           sync.Mutex
	partitioners map[string]Partitioner   // per-topic partitioner instance
	leaders      map[int32]*brokerBatcher // per-leader node_id batcher

	closing chan struct{}
	wg      sync.WaitGroup
}

func newProducer(cl *Client, conf *Config) *producer {
	p := &producer{
		conf:         conf,
		cl:           cl,
		input:        make(chan *ProducerMessage, conf.Producer.Flush.Messages),
		successes:    make(chan *ProducerMessage, conf.Producer.Flush.Messages),
		errors:       make(chan *ProducerError, conf.Producer.Flush.Messages),
		partitioners: make(map[string]Partitioner),
		leaders:      make(map[int32]*brokerBatcher),
		closing:      make(chan struct{}),
	}
	p.wg.Add(1)
	go p.dispatch()
	return p
}

// dispatch is the producer's single actor loop (spec.md §5). The
// partitioners and the leader→batcher map it routes through are guarded
// by p.mu, which flushAll and failAllPending also take.
func (p *producer) dispatch() {
	defer p.wg.Done()
	for {
		select {
		case msg, ok := <-p.input:
			if !ok {
				p.flushAll()
				return
			}
			p.route(msg)
		case <-p.closing:
			p.drainAndFlush()
			return
		}
	}
}

func (p *producer) drainAndFlush() {
	timeout := time.After(p.conf.Producer.ShutdownFlushTimeout)
	for {
		select {
		case msg, ok := <-p.input:
			if !ok {
				p.flushAll()
				return
			}
			p.route(msg)
		case <-timeout:
			p.failAllPending(ErrShuttingDown)
			return
		}
	}
}

// route assigns msg a partition (if it doesn't have one pinned already)
// and forwards it to that partition's leader's batcher, per spec.md
// §4.3's partitioner contract.
func (p *producer) route(msg *ProducerMessage) {
	partitions, err := p.cl.Partitions(msg.Topic)
	if err != nil {
		p.errors <- &ProducerError{Msg: msg, Err: err}
		return
	}
	if len(partitions) == 0 {
		p.errors <- &ProducerError{Msg: msg, Err: ErrUnknownTopicOrPartition}
		return
	}

	if msg.Partition < 0 {
		part, err := p.partitionerFor(msg.Topic).Partition(msg.Key, int32(len(partitions)))
		if err != nil {
			p.errors <- &ProducerError{Msg: msg, Err: err}
			return
		}
		msg.Partition = part
	}

	leader, err := p.cl.LeaderForPartition(msg.Topic, msg.Partition)
	if err != nil {
		p.errors <- &ProducerError{Msg: msg, Err: err}
		return
	}

	p.batcherFor(leader).enqueue(msg)
}

func (p *producer) partitionerFor(topic string) Partitioner {
	p.mu.Lock()
	defer p.mu.Unlock()
	part, ok := p.partitioners[topic]
	if !ok {
		part = p.conf.Producer.Partitioner(topic)
		p.partitioners[topic] = part
	}
	return part
}

// batcherFor returns the brokerBatcher for leader's node_id, creating one
// if this is the first message routed to that leader. One batcher runs
// per leader broker, covering every (topic,partition) pair assigned to
// it, per spec.md §4.3: "Each batch becomes one Produce request to that
// leader covering all (topic,partition) pairs whose leader matches."
func (p *producer) batcherFor(leader *Broker) *brokerBatcher {
	p.mu.Lock()
	defer p.mu.Unlock()
	b, ok := p.leaders[leader.ID()]
	if !ok {
		b = newBrokerBatcher(leader, p.conf, p)
		p.leaders[leader.ID()] = b
	}
	return b
}

func (p *producer) flushAll() {
	p.mu.Lock()
	batchers := make([]*brokerBatcher, 0, len(p.leaders))
	for _, b := range p.leaders {
		batchers = append(batchers, b)
	}
	p.mu.Unlock()
	for _, b := range batchers {
		b.flush()
		b.stop()
	}
	close(p.successes)
	close(p.errors)
}

func (p *producer) failAllPending(cause error) {
	p.mu.Lock()
	batchers := make([]*brokerBatcher, 0, len(p.leaders))
	for _, b := range p.leaders {
		batchers = append(batchers, b)
	}
	p.mu.Unlock()
	for _, b := range batchers {
		b.failAll(cause)
		b.stop()
	}
	close(p.successes)
	close(p.errors)
}

// requeue is how a brokerBatcher sends a failed message back through the
// dispatcher, which keeps its assigned partition and looks up that
// partition's current leader again (spec.md
// §4.3's "triggers a metadata refresh and re-dispatch of that partition's
// batch").
func (p *producer) requeue(msg *ProducerMessage) {
	select {
	case p.input <- msg:
	case <-p.closing:
		p.errors <- &ProducerError{Msg: msg, Err: ErrShuttingDown}
	}
}

func (p *producer) succeed(msg *ProducerMessage) {
	select {
	case p.successes <- msg:
	default:
		// No one is draining Successes(); drop rather than block the
		// dispatcher forever (SyncProducer always drains its own copy).
	}
}

func (p *producer) fail(msg *ProducerMessage, err error) {
	select {
	case p.errors <- &ProducerError{Msg: msg, Err: err}:
	default:
	}
}

// Close begins a graceful shutdown: pending batches are flushed (or
// failed back to the caller after Config.Producer.ShutdownFlushTimeout),
// per spec.md §5.
func (p *producer) Close() {
	close(p.closing)
	p.wg.Wait()
}

// brokerBatcher accumulates ProducerMessages destined for one leader
// broker until a linger threshold trips, then sends one ProduceRequest
// covering every (topic,partition) pair batched, per spec.md §4.3.
type brokerBatcher struct {
	broker *Broker
	conf   *Config
	parent *producer

	mu        sync.Mutex
	batch     map[string]map[int32][]*ProducerMessage
	byteSize  int
	count     int
	firstSeen time.Time
	timer     *time.Timer

	stopOnce sync.Once
	stopCh   chan struct{}
}

func newBrokerBatcher(broker *Broker, conf *Config, parent *producer) *brokerBatcher {
	b := &brokerBatcher{
		broker: broker,
		conf:   conf,
		parent: parent,
		batch:  make(map[string]map[int32][]*ProducerMessage),
		stopCh: make(chan struct{}),
	}
	return b
}

func (b *brokerBatcher) enqueue(msg *ProducerMessage) {
	b.mu.Lock()
	if b.count == 0 {
		b.firstSeen = time.Now()
		b.armTimer()
	}

	topicBatch, ok := b.batch[msg.Topic]
	if !ok {
		topicBatch = make(map[int32][]*ProducerMessage)
		b.batch[msg.Topic] = topicBatch
	}
	topicBatch[msg.Partition] = append(topicBatch[msg.Partition], msg)
	b.count++
	b.byteSize += len(msg.Key) + len(msg.Value)

	full := b.count >= b.conf.Producer.Flush.Messages || b.byteSize >= b.conf.Producer.Flush.Bytes
	b.mu.Unlock()

	if full {
		b.flush()
	}
}

func (b *brokerBatcher) armTimer() {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.conf.Producer.Flush.Frequency, b.flush)
}

// flush builds and sends one ProduceRequest for every batched message,
// per spec.md §4.3's linger thresholds (a), (b), (c).
func (b *brokerBatcher) flush() {
	b.mu.Lock()
	if b.count == 0 {
		b.mu.Unlock()
		return
	}
	batch := b.batch
	b.batch = make(map[string]map[int32][]*ProducerMessage)
	b.count = 0
	b.byteSize = 0
	if b.timer != nil {
		b.timer.Stop()
	}
	b.mu.Unlock()

	req := &ProduceRequest{
		RequiredAcks: b.conf.Producer.RequiredAcks,
		Timeout:      int32(b.conf.Producer.Timeout / time.Millisecond),
	}
	for topic, partitions := range batch {
		for partition, msgs := range partitions {
			set := &MessageSet{}
			for _, m := range msgs {
				set.addMessage(&Message{Codec: CompressionNone, Key: m.Key, Value: m.Value})
			}
			req.AddSet(topic, partition, set)
		}
	}

	resp, err := b.broker.Request(req)
	if err != nil {
		// The whole connection failed; every batched message is retried
		// (spec.md §7: "Transport errors are recovered locally by
		// reconnecting; the offending request fails back to its caller").
		b.retryOrFail(batch, err)
		return
	}

	if req.RequiredAcks == NoResponse {
		for _, partitions := range batch {
			for _, msgs := range partitions {
				for _, m := range msgs {
					b.parent.succeed(m)
				}
			}
		}
		return
	}

	produceResp, ok := resp.(*ProduceResponse)
	if !ok {
		b.retryOrFail(batch, ErrIncompleteResponse)
		return
	}

	for topic, partitions := range batch {
		for partition, msgs := range partitions {
			block := produceResp.GetBlock(topic, partition)
			if block == nil {
				b.retryBatch(topic, partition, msgs, ErrIncompleteResponse, false)
				continue
			}
			switch block.Err {
			case ErrNoError:
				for _, m := range msgs {
					m.Offset = block.Offset
					b.parent.succeed(m)
				}
			case ErrNotLeaderForPartition, ErrLeaderNotAvailable, ErrUnknownTopicOrPartition:
				b.retryBatch(topic, partition, msgs, block.Err, true)
			case ErrRequestTimedOut:
				b.retryBatch(topic, partition, msgs, block.Err, false)
			default:
				for _, m := range msgs {
					b.parent.fail(m, block.Err)
				}
			}
		}
	}
}

// retryOrFail is the connection-level fallback when the whole Produce
// request could not be sent or decoded.
func (b *brokerBatcher) retryOrFail(batch map[string]map[int32][]*ProducerMessage, cause error) {
	for topic, partitions := range batch {
		for partition, msgs := range partitions {
			b.retryBatch(topic, partition, msgs, cause, true)
		}
	}
}

// retryBatch implements spec.md §4.3's retry policy: leader-shaped errors
// trigger a metadata refresh before retransmit; RequestTimedOut retries
// without one. Either way, a message exhausting Config.Producer.Retry.Max
// is surfaced to the caller, per spec.md §3's invariant on bounded
// retransmission.
func (b *brokerBatcher) retryBatch(topic string, partition int32, msgs []*ProducerMessage, cause error, refresh bool) {
	if refresh {
		go func() {
			if err := b.parent.cl.RefreshMetadataFor(topic); err != nil {
				Logger.Printf("kafka: producer: metadata refresh for %s failed: %v", topic, err)
			}
		}()
	}

	for _, m := range msgs {
		m.retries++
		if m.retries > b.conf.Producer.Retry.Max {
			b.parent.fail(m, cause)
			continue
		}
		time.AfterFunc(b.conf.Producer.Retry.Backoff, func(msg *ProducerMessage) func() {
			return func() { b.parent.requeue(msg) }
		}(m))
	}
}

func (b *brokerBatcher) failAll(cause error) {
	b.mu.Lock()
	batch := b.batch
	b.batch = nil
	b.mu.Unlock()
	for _, partitions := range batch {
		for _, msgs := range partitions {
			for _, m := range msgs {
				b.parent.fail(m, cause)
			}
		}
	}
}

func (b *brokerBatcher) stop() {
	b.stopOnce.Do(func() {
		close(b.stopCh)
		b.mu.Lock()
		if b.timer != nil {
			b.timer.Stop()
		}
		b.mu.Unlock()
	})
}
