package kafka

// responseHeader is the part of a response frame present for every api:
// just the correlation id that ties it back to the request that produced
// it, per spec.md §3's Response envelope.
type responseHeader struct {
	correlationID int32
}

func (r *responseHeader) decode(pd packetDecoder) (err error) {
	r.correlationID, err = pd.getInt32()
	return err
}

// decodeResponse reads a response frame's correlation id and then decodes
// the remaining bytes into body, whose concrete type was already known to
// the caller from the in-flight request it matches (the wire format itself
// carries no api key on responses).
func decodeResponse(raw []byte, body protocolBody) (correlationID int32, err error) {
	pd := &realDecoder{raw: raw}

	var hdr responseHeader
	if err := hdr.decode(pd); err != nil {
		return 0, err
	}

	if err := body.decode(pd, body.version()); err != nil {
		return hdr.correlationID, err
	}

	return hdr.correlationID, nil
}
