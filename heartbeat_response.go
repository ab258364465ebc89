package kafka

// HeartbeatResponse reports ErrRebalanceInProgress when the group has moved
// on to a new generation since the member's last JoinGroup.
type HeartbeatResponse struct {
	Err KError
}

func (r *HeartbeatResponse) encode(pe packetEncoder) error {
	pe.putInt16(int16(r.Err))
	return nil
}

func (r *HeartbeatResponse) decode(pd packetDecoder, version int16) (err error) {
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	r.Err = KError(tmp)
	return nil
}

func (r *HeartbeatResponse) key() int16     { return int16(apiKeyHeartbeat) }
func (r *HeartbeatResponse) version() int16 { return 0 }

// LeaveGroupRequest tells the coordinator this member is leaving
// voluntarily, so the next rebalance does not need to wait out its
// session timeout.
type LeaveGroupRequest struct {
	GroupID  string
	MemberID string
}

func (r *LeaveGroupRequest) encode(pe packetEncoder) error {
	if err := pe.putString(r.GroupID); err != nil {
		return err
	}
	return pe.putString(r.MemberID)
}

func (r *LeaveGroupRequest) decode(pd packetDecoder, version int16) (err error) {
	if r.GroupID, err = pd.getString(); err != nil {
		return err
	}
	if r.MemberID, err = pd.getString(); err != nil {
		return err
	}
	return nil
}

func (r *LeaveGroupRequest) key() int16     { return int16(apiKeyLeaveGroup) }
func (r *LeaveGroupRequest) version() int16 { return 0 }

// LeaveGroupResponse acknowledges a LeaveGroupRequest.
type LeaveGroupResponse struct {
	Err KError
}

func (r *LeaveGroupResponse) encode(pe packetEncoder) error {
	pe.putInt16(int16(r.Err))
	return nil
}

func (r *LeaveGroupResponse) decode(pd packetDecoder, version int16) (err error) {
	tmp, err := pd.getInt16()
	if err != nil {
		return err
	}
	r.Err = KError(tmp)
	return nil
}

func (r *LeaveGroupResponse) key() int16     { return int16(apiKeyLeaveGroup) }
func (r *LeaveGroupResponse) version() int16 { return 0 }
