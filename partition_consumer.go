package kafka

import (
	"sync"
	"time"
)

// partitionConsumer is the long-poll fetch loop worker for one owned
// (topic,partition), per spec.md §4.5 and §2's "Partition consumer
// worker" component. One runs per partition a ConsumerGroup member owns;
// it is the actor of spec.md §5 that delivers messages to Handler in
// strict offset order, suspending until each is acknowledged.
type partitionConsumer struct {
	group     *ConsumerGroup
	topic     string
	partition int32
	handler   Handler

	nextOffset          int64
	lastDeliveredOffset int64
	lastCommittedOffset int64
	sinceCommit         int

	stopCh chan struct{}
	doneCh chan struct{}
	wg     sync.WaitGroup
}

func newPartitionConsumer(group *ConsumerGroup, topic string, partition int32, startOffset int64, handler Handler) *partitionConsumer {
	return &partitionConsumer{
		group:               group,
		topic:               topic,
		partition:           partition,
		handler:             handler,
		nextOffset:          startOffset,
		lastDeliveredOffset: startOffset - 1,
		lastCommittedOffset: startOffset - 1,
		stopCh:              make(chan struct{}),
		doneCh:              make(chan struct{}),
	}
}

func (pc *partitionConsumer) start() {
	pc.wg.Add(1)
	go pc.run()
}

// stop requests the worker to unwind, flushing its last offset to the
// coordinator before exiting (spec.md §5: "Partition workers flush
// pending commits before exiting").
func (pc *partitionConsumer) stop() {
	close(pc.stopCh)
	pc.wg.Wait()
}

func (pc *partitionConsumer) run() {
	defer pc.wg.Done()
	defer close(pc.doneCh)
	defer pc.flushCommit()

	conf := pc.group.conf
	commitTicker := time.NewTicker(conf.Consumer.Offsets.CommitInterval)
	defer commitTicker.Stop()

	for {
		select {
		case <-pc.stopCh:
			return
		case <-commitTicker.C:
			pc.flushCommit()
		default:
		}

		leader, err := pc.group.client.LeaderForPartition(pc.topic, pc.partition)
		if err != nil {
			pc.logErr(err)
			if pc.sleepOrStop(conf.Consumer.PauseBackoff) {
				return
			}
			continue
		}

		if pc.nextOffset < 0 {
			oreq := &OffsetRequest{}
			oreq.AddBlock(pc.topic, pc.partition, pc.nextOffset, 1)
			oresp, err := leader.Request(oreq)
			if ores, ok := oresp.(*OffsetResponse); err == nil && ok {
				if ob := ores.GetBlock(pc.topic, pc.partition); ob != nil && ob.Err == ErrNoError && len(ob.Offsets) > 0 {
					pc.nextOffset = ob.Offsets[0]
				}
			}
			if pc.nextOffset < 0 {
				if pc.sleepOrStop(conf.Consumer.PauseBackoff) {
					return
				}
				continue
			}
		}

		req := &FetchRequest{
			MaxWaitTime: int32(conf.Consumer.MaxWaitTime / time.Millisecond),
			MinBytes:    conf.Consumer.Fetch.Min,
		}
		maxBytes := conf.Consumer.Fetch.Default
		if conf.Consumer.Fetch.Max > 0 {
			maxBytes = conf.Consumer.Fetch.Max
		}
		req.AddBlock(pc.topic, pc.partition, pc.nextOffset, maxBytes)

		resp, err := leader.Request(req)
		if err != nil {
			pc.logErr(err)
			pc.group.triggerRebalance(ErrLockLost)
			return
		}
		fr, ok := resp.(*FetchResponse)
		if !ok {
			pc.logErr(ErrIncompleteResponse)
			continue
		}

		block := fr.GetBlock(pc.topic, pc.partition)
		if block == nil {
			continue
		}

		switch block.Err {
		case ErrNoError:
			// handled below
		case ErrOffsetOutOfRange:
			// spec.md §4.5 step 4: reset to earliest/latest per policy.
			pc.nextOffset = conf.Consumer.Offsets.Initial
			continue
		case ErrNotLeaderForPartition, ErrLeaderNotAvailable, ErrUnknownTopicOrPartition:
			// spec.md §4.5 step 5: metadata refresh, reopen to new leader.
			if err := pc.group.client.RefreshMetadataFor(pc.topic); err != nil {
				pc.logErr(err)
			}
			continue
		case ErrNotCoordinatorForConsumer:
			pc.group.triggerRebalance(block.Err)
			return
		default:
			pc.logErr(block.Err)
			continue
		}

		if block.MessageSet == nil || len(block.MessageSet.Messages) == 0 {
			continue
		}

		if pc.deliverBlock(block) {
			return
		}
	}
}

// deliverBlock delivers every message in block in offset order, honoring
// the handler's Ack/Pause/Stop contract (spec.md §4.5 step 2). Returns
// true if the worker should exit (handler returned Stop).
func (pc *partitionConsumer) deliverBlock(block *FetchResponsePartition) bool {
	conf := pc.group.conf
	for _, mb := range block.MessageSet.Messages {
		if mb.Offset < pc.nextOffset {
			continue // part of a compressed wrapper already advanced past
		}

		msgs := expandMessageBlock(mb, pc.topic, pc.partition)
		for _, cm := range msgs {
			if cm.Offset < pc.nextOffset {
				continue
			}

		redeliver:
			action := pc.handler(cm)
			switch action {
			case Ack:
				pc.lastDeliveredOffset = cm.Offset
				pc.nextOffset = cm.Offset + 1
				pc.sinceCommit++
				if pc.sinceCommit >= conf.Consumer.Offsets.CommitEvery {
					pc.flushCommit()
				}
			case Pause:
				if pc.sleepOrStop(conf.Consumer.PauseBackoff) {
					return true
				}
				goto redeliver
			case Stop:
				return true
			}

			select {
			case <-pc.stopCh:
				return true
			default:
			}
		}
	}
	return false
}

// expandMessageBlock flattens a possibly-compressed MessageBlock into the
// ConsumerMessages it represents; a wrapper Message decodes into a nested
// MessageSet (message.go's decodeSet), each entry becoming one delivered
// message.
func expandMessageBlock(mb *MessageBlock, topic string, partition int32) []*ConsumerMessage {
	if mb.Msg.Set != nil {
		out := make([]*ConsumerMessage, 0, len(mb.Msg.Set.Messages))
		for _, inner := range mb.Msg.Set.Messages {
			out = append(out, &ConsumerMessage{
				Key: inner.Msg.Key, Value: inner.Msg.Value,
				Topic: topic, Partition: partition, Offset: inner.Offset,
			})
		}
		return out
	}
	return []*ConsumerMessage{{
		Key: mb.Msg.Key, Value: mb.Msg.Value,
		Topic: topic, Partition: partition, Offset: mb.Offset,
	}}
}

// flushCommit pushes last_delivered_offset + 1 to the coordinator for
// commit, per spec.md §4.5 step 3. A no-op when nothing new has been
// delivered since the last flush.
func (pc *partitionConsumer) flushCommit() {
	if pc.lastDeliveredOffset == pc.lastCommittedOffset {
		return
	}
	pc.sinceCommit = 0
	pc.lastCommittedOffset = pc.lastDeliveredOffset
	pc.group.commitOffset(pc.topic, pc.partition, pc.lastDeliveredOffset+1)
}

func (pc *partitionConsumer) logErr(err error) {
	Logger.Printf("kafka: consumer %s/%d: %v", pc.topic, pc.partition, err)
}

// sleepOrStop waits d, or returns early (true) if stop() was called.
func (pc *partitionConsumer) sleepOrStop(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return false
	case <-pc.stopCh:
		return true
	}
}
