package kafka

import (
	"io"
	"log"
)

// StdLogger is the interface used by this package for logging, so that clients
// can intercept all logging calls with their own implementation.
type StdLogger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}

// Logger is the instance of a StdLogger interface that this library writes
// connection management events to. By default it is set to discard all log
// messages via ioutil.Discard, but you can set it to redirect wherever you
// want.
var Logger StdLogger = log.New(io.Discard, "[gokafka] ", log.LstdFlags)

// PanicHandler is not called by this package. A panic in a ConsumerGroup's
// run loop is recovered and logged by its supervisor; panics in other
// internal goroutines are not recovered.
var PanicHandler func(interface{})
