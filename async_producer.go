package kafka

// AsyncProducer is the non-blocking front-end over the shared dispatcher
// core: spec.md §4.3's async_produce(...) -> Result<(), Error>, "returns
// when the message is enqueued, not when it is durable."
type AsyncProducer struct {
	p *producer
}

// NewAsyncProducer constructs an AsyncProducer against the given seed
// brokers.
func NewAsyncProducer(brokers []string, conf *Config) (*AsyncProducer, error) {
	if conf == nil {
		conf = NewConfig()
	}
	cl, err := NewClient(brokers, conf)
	if err != nil {
		return nil, err
	}
	return &AsyncProducer{p: newProducer(cl, conf)}, nil
}

// Input is where callers send messages to be produced; sending never
// blocks the broker pipeline, only the channel's own buffering.
func (ap *AsyncProducer) Input() chan<- *ProducerMessage { return ap.p.input }

// Successes delivers messages once their batch has been acknowledged.
// Reading it is optional; unread successes are dropped rather than
// backing up the dispatcher (spec.md §5 never requires a producer to wait
// on a slow caller).
func (ap *AsyncProducer) Successes() <-chan *ProducerMessage { return ap.p.successes }

// Errors delivers messages that exhausted retries or hit a non-retryable
// broker error.
func (ap *AsyncProducer) Errors() <-chan *ProducerError { return ap.p.errors }

// AsyncClose begins a graceful shutdown without blocking the caller;
// Successes()/Errors() continue to deliver until drained.
func (ap *AsyncProducer) AsyncClose() {
	go ap.p.Close()
}

// Close blocks until shutdown completes, per spec.md §5's
// shutdown_flush_timeout.
func (ap *AsyncProducer) Close() error {
	ap.p.Close()
	return ap.p.cl.Close()
}
