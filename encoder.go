package kafka

import "encoding/binary"

// encoderWithHeader is anything encode can turn into bytes. encode adds no
// header and no length prefix of its own: a request's header comes from
// request.encode, and encodeRequest adds the leading length word.
type encoderWithHeader interface {
	encode(pe packetEncoder) error
}

// encode turns anything implementing the encoder interface into raw bytes,
// allocating the right size buffer first (via a dry-run prepEncoder pass)
// and then actually encoding (via a realEncoder pass).
func encode(e encoderWithHeader) ([]byte, error) {
	if e == nil {
		return nil, nil
	}

	var prepEnc prepEncoder
	if err := e.encode(&prepEnc); err != nil {
		return nil, err
	}

	if prepEnc.length < 0 || prepEnc.length > maxRequestSize {
		return nil, PacketEncodingError{Info: "invalid request size"}
	}

	realEnc := newRealEncoder(prepEnc.length)
	if err := e.encode(realEnc); err != nil {
		return nil, err
	}

	return realEnc.raw, nil
}

// maxRequestSize is a sanity cap on any single encoded frame (100MiB); it
// exists only to turn a corrupt length calculation into an error instead of
// an enormous allocation.
const maxRequestSize = 100 * 1024 * 1024

// packetEncoder is the interface providing helpers for writing with Kafka's
// encoding rules. Types implementing Encoder only need to worry about
// calling methods like putString, not about how a string is actually
// represented in bytes. At the same time, this interface allows wrapping
// encoders for handling additional structures, like CRCs or nested byte
// length prefixes.
type packetEncoder interface {
	putInt8(in int8)
	putInt16(in int16)
	putInt32(in int32)
	putInt64(in int64)
	putBool(in bool)

	// putArrayLength encodes a Kafka i32 array-count prefix.
	putArrayLength(in int) error

	// putBytes encodes a nilable byte array (i32 length prefix, -1 == nil).
	putBytes(in []byte) error
	// putRawBytes encodes a byte array with no length prefix at all.
	putRawBytes(in []byte) error
	// putString encodes a string with an i16 length prefix; it never
	// writes the -1 nil marker (putNullableString does, for a nil pointer).
	putString(in string) error
	putNullableString(in *string) error
	putStringArray(in []string) error
	putInt32Array(in []int32) error
	putInt64Array(in []int64) error

	offset() int

	// push adds a "stack frame" intercepting writes until pop is called,
	// used for writing length or CRC fields whose value can only be known
	// once everything after them has been written.
	push(in pushEncoder)
	pop() error
}

// pushEncoder is the interface for encoder fields that need to calculate
// their size/value after the rest of the body is encoded, and then go back
// and write it in, like CRCs or nested length prefixes.
type pushEncoder interface {
	// saveOffset records the byte offset at which the placeholder was
	// reserved, for use in pop().
	saveOffset(in int)

	// reserveLength returns the number of bytes of space to reserve for
	// the output of this encoder (usually 4 or 8).
	reserveLength() int

	// run fills in the value, given the context of the finished buffer.
	run(curOffset int, buf []byte) error
}

// prepEncoder implements packetEncoder as a counting pass: no bytes are
// written, only the eventual length is tallied, so the real buffer can be
// allocated up front.
type prepEncoder struct {
	length int
	stack  []pushEncoder
}

func (pe *prepEncoder) putInt8(in int8)   { pe.length++ }
func (pe *prepEncoder) putInt16(in int16) { pe.length += 2 }
func (pe *prepEncoder) putInt32(in int32) { pe.length += 4 }
func (pe *prepEncoder) putInt64(in int64) { pe.length += 8 }
func (pe *prepEncoder) putBool(in bool)   { pe.length++ }

func (pe *prepEncoder) putArrayLength(in int) error {
	if in > 2147483647 {
		return PacketEncodingError{Info: "array too long"}
	}
	pe.length += 4
	return nil
}

func (pe *prepEncoder) putBytes(in []byte) error {
	pe.length += 4
	if in == nil {
		return nil
	}
	return pe.putRawBytes(in)
}

func (pe *prepEncoder) putRawBytes(in []byte) error {
	if len(in) > 2147483647 {
		return PacketEncodingError{Info: "byte slice too long"}
	}
	pe.length += len(in)
	return nil
}

func (pe *prepEncoder) putString(in string) error {
	pe.length += 2
	if len(in) > 32767 {
		return PacketEncodingError{Info: "string too long"}
	}
	pe.length += len(in)
	return nil
}

func (pe *prepEncoder) putNullableString(in *string) error {
	if in == nil {
		pe.length += 2
		return nil
	}
	return pe.putString(*in)
}

func (pe *prepEncoder) putStringArray(in []string) error {
	if err := pe.putArrayLength(len(in)); err != nil {
		return err
	}
	for _, str := range in {
		if err := pe.putString(str); err != nil {
			return err
		}
	}
	return nil
}

func (pe *prepEncoder) putInt32Array(in []int32) error {
	if err := pe.putArrayLength(len(in)); err != nil {
		return err
	}
	pe.length += 4 * len(in)
	return nil
}

func (pe *prepEncoder) putInt64Array(in []int64) error {
	if err := pe.putArrayLength(len(in)); err != nil {
		return err
	}
	pe.length += 8 * len(in)
	return nil
}

func (pe *prepEncoder) offset() int { return pe.length }

func (pe *prepEncoder) push(in pushEncoder) {
	in.saveOffset(pe.length)
	pe.length += in.reserveLength()
	pe.stack = append(pe.stack, in)
}

func (pe *prepEncoder) pop() error {
	pe.stack = pe.stack[:len(pe.stack)-1]
	return nil
}

// realEncoder implements packetEncoder by writing straight into a
// pre-allocated byte slice.
type realEncoder struct {
	raw   []byte
	off   int
	stack []pushEncoder
}

func newRealEncoder(length int) *realEncoder {
	return &realEncoder{raw: make([]byte, length)}
}

func (re *realEncoder) putInt8(in int8) {
	re.raw[re.off] = byte(in)
	re.off++
}

func (re *realEncoder) putInt16(in int16) {
	binary.BigEndian.PutUint16(re.raw[re.off:], uint16(in))
	re.off += 2
}

func (re *realEncoder) putInt32(in int32) {
	binary.BigEndian.PutUint32(re.raw[re.off:], uint32(in))
	re.off += 4
}

func (re *realEncoder) putInt64(in int64) {
	binary.BigEndian.PutUint64(re.raw[re.off:], uint64(in))
	re.off += 8
}

func (re *realEncoder) putBool(in bool) {
	if in {
		re.putInt8(1)
		return
	}
	re.putInt8(0)
}

func (re *realEncoder) putArrayLength(in int) error {
	re.putInt32(int32(in))
	return nil
}

func (re *realEncoder) putBytes(in []byte) error {
	if in == nil {
		re.putInt32(-1)
		return nil
	}
	re.putInt32(int32(len(in)))
	return re.putRawBytes(in)
}

func (re *realEncoder) putRawBytes(in []byte) error {
	copy(re.raw[re.off:], in)
	re.off += len(in)
	return nil
}

func (re *realEncoder) putString(in string) error {
	re.putInt16(int16(len(in)))
	copy(re.raw[re.off:], in)
	re.off += len(in)
	return nil
}

func (re *realEncoder) putNullableString(in *string) error {
	if in == nil {
		re.putInt16(-1)
		return nil
	}
	return re.putString(*in)
}

func (re *realEncoder) putStringArray(in []string) error {
	if err := re.putArrayLength(len(in)); err != nil {
		return err
	}
	for _, str := range in {
		if err := re.putString(str); err != nil {
			return err
		}
	}
	return nil
}

func (re *realEncoder) putInt32Array(in []int32) error {
	if err := re.putArrayLength(len(in)); err != nil {
		return err
	}
	for _, val := range in {
		re.putInt32(val)
	}
	return nil
}

func (re *realEncoder) putInt64Array(in []int64) error {
	if err := re.putArrayLength(len(in)); err != nil {
		return err
	}
	for _, val := range in {
		re.putInt64(val)
	}
	return nil
}

func (re *realEncoder) offset() int { return re.off }

func (re *realEncoder) push(in pushEncoder) {
	in.saveOffset(re.off)
	re.off += in.reserveLength()
	re.stack = append(re.stack, in)
}

func (re *realEncoder) pop() error {
	in := re.stack[len(re.stack)-1]
	re.stack = re.stack[:len(re.stack)-1]
	return in.run(re.off, re.raw)
}
