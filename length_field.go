package kafka

import "encoding/binary"

// lengthField implements pushEncoder and pushDecoder for a 4-byte
// big-endian length prefix whose value is the size, in bytes, of everything
// written after it until pop() is called. Used for the message_set_size
// field of Produce/Fetch requests and responses.
type lengthField struct {
	startOffset int
}

func (l *lengthField) saveOffset(in int) {
	l.startOffset = in
}

func (l *lengthField) reserveLength() int {
	return 4
}

func (l *lengthField) run(curOffset int, buf []byte) error {
	binary.BigEndian.PutUint32(buf[l.startOffset:], uint32(curOffset-l.startOffset-4))
	return nil
}

func (l *lengthField) check(curOffset int, buf []byte) error {
	if uint32(curOffset-l.startOffset-4) != binary.BigEndian.Uint32(buf[l.startOffset:]) {
		return PacketDecodingError{Info: "length field invalid"}
	}
	return nil
}
