package kafka

// JoinGroupMember is one member's advertised metadata, visible only to the
// elected leader of the generation.
type JoinGroupMember struct {
	MemberID string
	Metadata []byte
}

// JoinGroupResponse reports the outcome of a JoinGroup round: a new
// generation number, the agreed protocol, who the leader is, and (leader
// only) every member's metadata for it to compute an assignment from.
type JoinGroupResponse struct {
	Err           KError
	GenerationID  int32
	GroupProtocol string
	LeaderID      string
	MemberID      string
	Members       []JoinGroupMember
}

func (r *JoinGroupResponse) encode(pe packetEncoder) error {
	pe.putInt16(int16(r.Err))
	pe.putInt32(r.GenerationID)
	if err := pe.putString(r.GroupProtocol); err != nil {
		return err
	}
	if err := pe.putString(r.LeaderID); err != nil {
		return err
	}
	if err := pe.putString(r.MemberID); err != nil {
		return err
	}

	if err := pe.putArrayLength(len(r.Members)); err != nil {
		return err
	}
	for _, m := range r.Members {
		if err := pe.putString(m.MemberID); err != nil {
			return err
		}
		if err := pe.putBytes(m.Metadata); err != nil {
			return err
		}
	}
	return nil
}

func (r *JoinGroupResponse) decode(pd packetDecoder, version int16) (err error) {
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	r.Err = KError(tmp)

	if r.GenerationID, err = pd.getInt32(); err != nil {
		return err
	}
	if r.GroupProtocol, err = pd.getString(); err != nil {
		return err
	}
	if r.LeaderID, err = pd.getString(); err != nil {
		return err
	}
	if r.MemberID, err = pd.getString(); err != nil {
		return err
	}

	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.Members = make([]JoinGroupMember, n)
	for i := 0; i < n; i++ {
		if r.Members[i].MemberID, err = pd.getString(); err != nil {
			return err
		}
		if r.Members[i].Metadata, err = pd.getBytes(); err != nil {
			return err
		}
	}
	return nil
}

func (r *JoinGroupResponse) key() int16     { return int16(apiKeyJoinGroup) }
func (r *JoinGroupResponse) version() int16 { return 0 }

// IsLeader reports whether this member was elected leader of the
// generation (LeaderID == MemberID).
func (r *JoinGroupResponse) IsLeader() bool {
	return r.LeaderID == r.MemberID
}
