package kafka

import (
	"time"

	consul "github.com/hashicorp/consul/api"
)

// ConsulCoordinationStore implements CoordinationStore against HashiCorp
// Consul (github.com/hashicorp/consul/api): sessions map to Consul
// sessions, locks to Consul's session-gated KV Acquire/Release, and Watch
// to Consul's blocking queries (QueryOptions.WaitIndex), per SPEC_FULL §1.
type ConsulCoordinationStore struct {
	client *consul.Client
	// WatchTimeout bounds a single blocking query; if it elapses with no
	// change, Watch returns the unchanged index and the caller calls it
	// again.
	WatchTimeout time.Duration
}

// NewConsulCoordinationStore dials Consul at addr (empty string uses the
// library's default, typically http://127.0.0.1:8500).
func NewConsulCoordinationStore(addr string) (*ConsulCoordinationStore, error) {
	cfg := consul.DefaultConfig()
	if addr != "" {
		cfg.Address = addr
	}
	client, err := consul.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ConsulCoordinationStore{client: client, WatchTimeout: 30 * time.Second}, nil
}

func (s *ConsulCoordinationStore) SessionCreate(ttl time.Duration) (string, error) {
	entry := &consul.SessionEntry{
		TTL:      ttl.Truncate(time.Second).String(),
		Behavior: consul.SessionBehaviorRelease,
	}
	id, _, err := s.client.Session().Create(entry, nil)
	if err != nil {
		return "", CoordinationError(err.Error())
	}
	return id, nil
}

func (s *ConsulCoordinationStore) SessionRenew(sessionID string) (bool, error) {
	entry, _, err := s.client.Session().Renew(sessionID, nil)
	if err != nil {
		return false, CoordinationError(err.Error())
	}
	return entry != nil, nil
}

func (s *ConsulCoordinationStore) SessionDestroy(sessionID string) error {
	_, err := s.client.Session().Destroy(sessionID, nil)
	if err != nil {
		return CoordinationError(err.Error())
	}
	return nil
}

func (s *ConsulCoordinationStore) LockAcquire(path, sessionID string) (bool, error) {
	pair := &consul.KVPair{Key: path, Value: []byte(sessionID), Session: sessionID}
	ok, _, err := s.client.KV().Acquire(pair, nil)
	if err != nil {
		return false, CoordinationError(err.Error())
	}
	return ok, nil
}

func (s *ConsulCoordinationStore) LockRelease(path, sessionID string) error {
	pair := &consul.KVPair{Key: path, Session: sessionID}
	_, _, err := s.client.KV().Release(pair, nil)
	if err != nil {
		return CoordinationError(err.Error())
	}
	return nil
}

func (s *ConsulCoordinationStore) KVPut(path string, value []byte, sessionID string) error {
	pair := &consul.KVPair{Key: path, Value: value, Session: sessionID}
	_, err := s.client.KV().Put(pair, nil)
	if err != nil {
		return CoordinationError(err.Error())
	}
	return nil
}

func (s *ConsulCoordinationStore) KVGet(path string) ([]byte, bool, uint64, error) {
	pair, meta, err := s.client.KV().Get(path, nil)
	if err != nil {
		return nil, false, 0, CoordinationError(err.Error())
	}
	if pair == nil {
		return nil, false, meta.LastIndex, nil
	}
	return pair.Value, true, meta.LastIndex, nil
}

func (s *ConsulCoordinationStore) KVDelete(path string) error {
	_, err := s.client.KV().Delete(path, nil)
	if err != nil {
		return CoordinationError(err.Error())
	}
	return nil
}

func (s *ConsulCoordinationStore) KVList(prefix string) (map[string][]byte, uint64, error) {
	pairs, meta, err := s.client.KV().List(prefix, nil)
	if err != nil {
		return nil, 0, CoordinationError(err.Error())
	}
	out := make(map[string][]byte, len(pairs))
	for _, p := range pairs {
		out[p.Key] = p.Value
	}
	return out, meta.LastIndex, nil
}

func (s *ConsulCoordinationStore) Watch(path string, fromIndex uint64) (uint64, error) {
	opts := &consul.QueryOptions{WaitIndex: fromIndex, WaitTime: s.WatchTimeout}
	_, meta, err := s.client.KV().List(path, opts)
	if err != nil {
		return fromIndex, CoordinationError(err.Error())
	}
	return meta.LastIndex, nil
}
