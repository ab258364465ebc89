package kafka

import "encoding/binary"

// versionedDecoder is implemented by request/response bodies whose wire
// shape depends on the api version the request was made with.
type versionedDecoder interface {
	decode(pd packetDecoder, version int16) error
}

// versionedDecode parses a raw response body (everything after the correlation id,
// i.e. just the envelope's ResponseBody) into a versionedDecoder.
func versionedDecode(buf []byte, in versionedDecoder, version int16) error {
	if buf == nil {
		return nil
	}
	helper := realDecoder{raw: buf}
	if err := in.decode(&helper, version); err != nil {
		return err
	}
	if helper.off != len(buf) {
		return PacketDecodingError{Info: "invalid length"}
	}
	return nil
}

// packetDecoder is the interface providing helpers for reading with Kafka's
// encoding rules. Types implementing Decoder only need to worry about
// calling methods like getString, not about how a string is actually
// represented in bytes.
type packetDecoder interface {
	getInt8() (int8, error)
	getInt16() (int16, error)
	getInt32() (int32, error)
	getInt64() (int64, error)
	getBool() (bool, error)

	getArrayLength() (int, error)

	getBytes() ([]byte, error)
	getRawBytes(length int) ([]byte, error)
	getString() (string, error)
	getNullableString() (*string, error)
	getInt32Array() ([]int32, error)
	getInt64Array() ([]int64, error)
	getStringArray() ([]string, error)

	remaining() int
	getSubset(length int) (packetDecoder, error)

	push(in pushDecoder) error
	pop() error
}

// pushDecoder is the interface for decoder fields that need to be read
// before the contents of the field can itself be decoded, like CRCs and
// length prefixes that must be validated after the fact.
type pushDecoder interface {
	saveOffset(in int)
	reserveLength() int
	check(curOffset int, buf []byte) error
}

// realDecoder implements packetDecoder against an in-memory byte slice.
type realDecoder struct {
	raw   []byte
	off   int
	stack []pushDecoder
}

func (rd *realDecoder) remaining() int {
	return len(rd.raw) - rd.off
}

func (rd *realDecoder) getInt8() (int8, error) {
	if rd.remaining() < 1 {
		rd.off = len(rd.raw)
		return -1, ErrInsufficientData
	}
	tmp := int8(rd.raw[rd.off])
	rd.off++
	return tmp, nil
}

func (rd *realDecoder) getInt16() (int16, error) {
	if rd.remaining() < 2 {
		rd.off = len(rd.raw)
		return -1, ErrInsufficientData
	}
	tmp := int16(binary.BigEndian.Uint16(rd.raw[rd.off:]))
	rd.off += 2
	return tmp, nil
}

func (rd *realDecoder) getInt32() (int32, error) {
	if rd.remaining() < 4 {
		rd.off = len(rd.raw)
		return -1, ErrInsufficientData
	}
	tmp := int32(binary.BigEndian.Uint32(rd.raw[rd.off:]))
	rd.off += 4
	return tmp, nil
}

func (rd *realDecoder) getInt64() (int64, error) {
	if rd.remaining() < 8 {
		rd.off = len(rd.raw)
		return -1, ErrInsufficientData
	}
	tmp := int64(binary.BigEndian.Uint64(rd.raw[rd.off:]))
	rd.off += 8
	return tmp, nil
}

func (rd *realDecoder) getBool() (bool, error) {
	b, err := rd.getInt8()
	if err != nil {
		return false, err
	}
	return b != 0, nil
}

func (rd *realDecoder) getArrayLength() (int, error) {
	if rd.remaining() < 4 {
		rd.off = len(rd.raw)
		return -1, ErrInsufficientData
	}
	tmp := int(int32(binary.BigEndian.Uint32(rd.raw[rd.off:])))
	rd.off += 4
	if tmp > rd.remaining() {
		rd.off = len(rd.raw)
		return -1, ErrInsufficientData
	} else if tmp < 0 {
		return 0, nil
	}
	return tmp, nil
}

func (rd *realDecoder) getBytes() ([]byte, error) {
	tmp, err := rd.getInt32()
	if err != nil {
		return nil, err
	}
	if tmp == -1 {
		return nil, nil
	}
	return rd.getRawBytes(int(tmp))
}

func (rd *realDecoder) getRawBytes(length int) ([]byte, error) {
	if length < 0 {
		return nil, PacketDecodingError{Info: "invalid negative length"}
	} else if length > rd.remaining() {
		rd.off = len(rd.raw)
		return nil, ErrInsufficientData
	}

	start := rd.off
	rd.off += length
	return rd.raw[start:rd.off], nil
}

func (rd *realDecoder) getString() (string, error) {
	tmp, err := rd.getInt16()
	if err != nil {
		return "", err
	}
	n := int(tmp)

	switch {
	case n < -1:
		return "", PacketDecodingError{Info: "invalid negative length"}
	case n == -1:
		return "", nil
	case n == 0:
		return "", nil
	case n > rd.remaining():
		rd.off = len(rd.raw)
		return "", ErrInsufficientData
	default:
		tmpStr := string(rd.raw[rd.off : rd.off+n])
		rd.off += n
		return tmpStr, nil
	}
}

func (rd *realDecoder) getNullableString() (*string, error) {
	tmp, err := rd.getInt16()
	if err != nil {
		return nil, err
	}
	n := int(tmp)
	if n < 0 {
		return nil, nil
	}
	if n > rd.remaining() {
		rd.off = len(rd.raw)
		return nil, ErrInsufficientData
	}
	s := string(rd.raw[rd.off : rd.off+n])
	rd.off += n
	return &s, nil
}

func (rd *realDecoder) getInt32Array() ([]int32, error) {
	n, err := rd.getArrayLength()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if n < 0 || 4*n > rd.remaining() {
		rd.off = len(rd.raw)
		return nil, ErrInsufficientData
	}
	ret := make([]int32, n)
	for i := range ret {
		ret[i] = int32(binary.BigEndian.Uint32(rd.raw[rd.off:]))
		rd.off += 4
	}
	return ret, nil
}

func (rd *realDecoder) getInt64Array() ([]int64, error) {
	n, err := rd.getArrayLength()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	if n < 0 || 8*n > rd.remaining() {
		rd.off = len(rd.raw)
		return nil, ErrInsufficientData
	}
	ret := make([]int64, n)
	for i := range ret {
		ret[i] = int64(binary.BigEndian.Uint64(rd.raw[rd.off:]))
		rd.off += 8
	}
	return ret, nil
}

func (rd *realDecoder) getStringArray() ([]string, error) {
	n, err := rd.getArrayLength()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	ret := make([]string, n)
	for i := range ret {
		if ret[i], err = rd.getString(); err != nil {
			return nil, err
		}
	}
	return ret, nil
}

func (rd *realDecoder) getSubset(length int) (packetDecoder, error) {
	buf, err := rd.getRawBytes(length)
	if err != nil {
		return nil, err
	}
	return &realDecoder{raw: buf}, nil
}

func (rd *realDecoder) push(in pushDecoder) error {
	in.saveOffset(rd.off)

	reserve := in.reserveLength()
	if rd.remaining() < reserve {
		rd.off = len(rd.raw)
		return ErrInsufficientData
	}

	rd.stack = append(rd.stack, in)
	rd.off += reserve
	return nil
}

func (rd *realDecoder) pop() error {
	in := rd.stack[len(rd.stack)-1]
	rd.stack = rd.stack[:len(rd.stack)-1]
	return in.check(rd.off, rd.raw)
}
