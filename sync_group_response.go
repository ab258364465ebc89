package kafka

// SyncGroupResponse delivers this member's slice of the leader-computed
// assignment.
type SyncGroupResponse struct {
	Err        KError
	Assignment []byte
}

func (r *SyncGroupResponse) encode(pe packetEncoder) error {
	pe.putInt16(int16(r.Err))
	return pe.putBytes(r.Assignment)
}

func (r *SyncGroupResponse) decode(pd packetDecoder, version int16) (err error) {
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	r.Err = KError(tmp)
	r.Assignment, err = pd.getBytes()
	return err
}

func (r *SyncGroupResponse) key() int16     { return int16(apiKeySyncGroup) }
func (r *SyncGroupResponse) version() int16 { return 0 }
