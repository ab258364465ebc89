package kafka

import (
	"bytes"
	"fmt"
	"io"

	xerial "github.com/eapache/go-xerial-snappy"
	"github.com/klauspost/compress/gzip"
)

// CompressionCodec identifies the compression envelope a Message's value is
// wrapped in, per spec.md §3. Only NoCompression is ever produced by this
// client's encoder; Gzip and Snappy are recognized on decode so that this
// client can consume topics written to by other producers, matching the
// "compression beyond gzip/snappy envelope recognition" non-goal (which
// excludes producing more codecs, not recognizing these two).
type CompressionCodec int8

const (
	CompressionNone   CompressionCodec = 0
	CompressionGZIP   CompressionCodec = 1
	CompressionSnappy CompressionCodec = 2

	compressionCodecMask int8 = 0x07
)

const messageMagicVersion int8 = 0

// Message is a single Kafka message, the payload-bearing unit produced and
// consumed by this client. It is serialized into a MessageBlock entry of a
// MessageSet (message.go / message_set.go).
type Message struct {
	Codec      CompressionCodec
	Key        []byte
	Value      []byte
	Set        *MessageSet // non-nil when this Message is itself a compressed wrapper
}

func (m *Message) encode(pe packetEncoder) error {
	pe.push(&crc32Field{})

	pe.putInt8(messageMagicVersion)
	pe.putInt8(int8(m.Codec) & compressionCodecMask)

	if err := pe.putBytes(m.Key); err != nil {
		return err
	}

	var body []byte
	if m.Set != nil {
		var err error
		body, err = encode(m.Set)
		if err != nil {
			return err
		}
	} else {
		body = m.Value
	}

	if m.Codec != CompressionNone && body != nil {
		return PacketEncodingError{Info: "producing compressed messages is not supported; set Codec=CompressionNone"}
	}

	if err := pe.putBytes(body); err != nil {
		return err
	}

	return pe.pop()
}

func (m *Message) decode(pd packetDecoder, version int16) (err error) {
	if err = pd.push(&crc32Field{}); err != nil {
		return err
	}

	magic, err := pd.getInt8()
	if err != nil {
		return err
	}
	if magic != messageMagicVersion {
		return PacketDecodingError{Info: fmt.Sprintf("unsupported message magic byte %d", magic)}
	}

	attribute, err := pd.getInt8()
	if err != nil {
		return err
	}
	m.Codec = CompressionCodec(attribute & compressionCodecMask)

	m.Key, err = pd.getBytes()
	if err != nil {
		return err
	}

	m.Value, err = pd.getBytes()
	if err != nil {
		return err
	}

	switch m.Codec {
	case CompressionNone:
		// value as-is
	case CompressionGZIP:
		if m.Value == nil {
			break
		}
		reader, err := gzip.NewReader(bytes.NewReader(m.Value))
		if err != nil {
			return err
		}
		if m.Value, err = io.ReadAll(reader); err != nil {
			return err
		}
		if err := m.decodeSet(); err != nil {
			return err
		}
	case CompressionSnappy:
		if m.Value == nil {
			break
		}
		if m.Value, err = xerial.Decode(m.Value); err != nil {
			return err
		}
		if err := m.decodeSet(); err != nil {
			return err
		}
	default:
		return PacketDecodingError{Info: fmt.Sprintf("invalid compression specified: %d", m.Codec)}
	}

	return pd.pop()
}

// decodeSet decodes the decompressed Value of a wrapper message as a nested
// MessageSet, per Kafka's "compressed messages are returned in full
// batches" behavior noted in spec.md §4.2.
func (m *Message) decodeSet() (err error) {
	pd := &realDecoder{raw: m.Value}
	m.Set = &MessageSet{}
	return m.Set.decode(pd, 0)
}
