package kafka

// MessageBlock is one entry of a MessageSet: an absolute offset, paired with
// the Message it identifies. Offsets are assigned by the broker on produce;
// on encode (producing) the client sends a placeholder of 0.
type MessageBlock struct {
	Offset int64
	Msg    *Message
}

func (m *MessageBlock) encode(pe packetEncoder) error {
	pe.putInt64(m.Offset)
	pe.push(&lengthField{})
	if err := m.Msg.encode(pe); err != nil {
		return err
	}
	return pe.pop()
}

func (m *MessageBlock) decode(pd packetDecoder) (err error) {
	if m.Offset, err = pd.getInt64(); err != nil {
		return err
	}

	if err = pd.push(&lengthField{}); err != nil {
		return err
	}

	m.Msg = new(Message)
	if err = m.Msg.decode(pd, 0); err != nil {
		return err
	}

	return pd.pop()
}

// MessageSet is a sequence of MessageBlocks, the payload of a Produce
// request partition or a Fetch response partition, per spec.md §3 and
// §4.1. Per the Fetch contract, a partial trailing message (the broker may
// return a few extra bytes at the end of a batch) is silently truncated on
// decode rather than treated as an error.
type MessageSet struct {
	PartialTrailingMessage bool
	OverflowMessage        bool

	Messages []*MessageBlock
}

func (ms *MessageSet) encode(pe packetEncoder) error {
	for i := range ms.Messages {
		err := ms.Messages[i].encode(pe)
		if err != nil {
			return err
		}
	}
	return nil
}

func (ms *MessageSet) decode(pd packetDecoder, version int16) (err error) {
	ms.Messages = nil

	for pd.remaining() > 0 {
		msb := new(MessageBlock)
		err = msb.decode(pd)
		switch err {
		case nil:
			ms.Messages = append(ms.Messages, msb)
		case ErrInsufficientData:
			// As an optimization, Kafka may return a partial trailing
			// message at the end of a MessageSet; this is expected, not
			// an error, and simply truncates the set.
			ms.PartialTrailingMessage = true
			return nil
		default:
			return err
		}
	}

	return nil
}

// addMessage appends a ready-to-send Message at the given placeholder
// offset (always 0 for producer-side sets; the broker assigns the real
// offset and returns it in the ProduceResponse).
func (ms *MessageSet) addMessage(msg *Message) {
	ms.Messages = append(ms.Messages, &MessageBlock{Offset: 0, Msg: msg})
}
