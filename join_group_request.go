package kafka

// GroupProtocol is one assignment-strategy a member advertises to the
// group coordinator in a JoinGroup request.
type GroupProtocol struct {
	Name     string
	Metadata []byte
}

// JoinGroupRequest is Kafka's native group-membership entry point
// (spec.md §9's "optional alternative coordinator plugin"). The reference
// ConsumerGroup coordinator in this module drives membership through an
// external CoordinationStore instead; JoinGroup/SyncGroup/Heartbeat/
// LeaveGroup are codec types only, for a caller that speaks Kafka's own
// group protocol directly against a Broker. No coordinator in this
// package sends them.
type JoinGroupRequest struct {
	GroupID        string
	SessionTimeout int32 // milliseconds
	MemberID       string
	ProtocolType   string
	GroupProtocols []GroupProtocol
}

func (r *JoinGroupRequest) encode(pe packetEncoder) error {
	if err := pe.putString(r.GroupID); err != nil {
		return err
	}
	pe.putInt32(r.SessionTimeout)
	if err := pe.putString(r.MemberID); err != nil {
		return err
	}
	if err := pe.putString(r.ProtocolType); err != nil {
		return err
	}

	if err := pe.putArrayLength(len(r.GroupProtocols)); err != nil {
		return err
	}
	for _, gp := range r.GroupProtocols {
		if err := pe.putString(gp.Name); err != nil {
			return err
		}
		if err := pe.putBytes(gp.Metadata); err != nil {
			return err
		}
	}
	return nil
}

func (r *JoinGroupRequest) decode(pd packetDecoder, version int16) (err error) {
	if r.GroupID, err = pd.getString(); err != nil {
		return err
	}
	if r.SessionTimeout, err = pd.getInt32(); err != nil {
		return err
	}
	if r.MemberID, err = pd.getString(); err != nil {
		return err
	}
	if r.ProtocolType, err = pd.getString(); err != nil {
		return err
	}

	n, err := pd.getArrayLength()
	if err != nil {
		return err
	}
	r.GroupProtocols = make([]GroupProtocol, n)
	for i := 0; i < n; i++ {
		if r.GroupProtocols[i].Name, err = pd.getString(); err != nil {
			return err
		}
		if r.GroupProtocols[i].Metadata, err = pd.getBytes(); err != nil {
			return err
		}
	}
	return nil
}

func (r *JoinGroupRequest) key() int16     { return int16(apiKeyJoinGroup) }
func (r *JoinGroupRequest) version() int16 { return 0 }
