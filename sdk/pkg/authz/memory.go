package authz

import (
	"sync"
)

// MemoryStore is a PolicyStore backed by a plain map. It is used by tests
// and by single-binary deployments that seed their policies at startup
// and do not need durability.
type MemoryStore struct {
	mu    sync.Mutex
	rules map[string]PolicyRule
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rules: make(map[string]PolicyRule)}
}

func (s *MemoryStore) LoadPolicy() ([]PolicyRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]PolicyRule, 0, len(s.rules))
	for _, r := range s.rules {
		out = append(out, r)
	}
	return out, nil
}

func (s *MemoryStore) LoadFilteredPolicy(filter Filter) ([]PolicyRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []PolicyRule
	for _, r := range s.rules {
		if matchPrefixFilter(r, "p", filter.P) || matchPrefixFilter(r, "g", filter.G) {
			out = append(out, r)
		}
	}
	return out, nil
}

// matchPrefixFilter applies one half of a Filter: the ptype must carry the
// given prefix and every non-empty filter field must match exactly.
func matchPrefixFilter(r PolicyRule, prefix string, fields []string) bool {
	if fields == nil {
		return false
	}
	if len(r.PType) < len(prefix) || r.PType[:len(prefix)] != prefix {
		return false
	}
	return matchFields(r, 0, fields)
}

func (s *MemoryStore) SavePolicy(rules []PolicyRule) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]PolicyRule, len(rules))
	for _, r := range rules {
		next[r.Key()] = r
	}
	s.rules = next
	return nil
}

func (s *MemoryStore) AddPolicy(ptype string, rule []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := NewRule(ptype, rule...)
	s.rules[r.Key()] = r
	return nil
}

func (s *MemoryStore) AddPolicies(ptype string, rules [][]string) error {
	for _, rule := range rules {
		if err := s.AddPolicy(ptype, rule); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) RemovePolicy(ptype string, rule []string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := NewRule(ptype, rule...)
	if _, ok := s.rules[r.Key()]; !ok {
		return false, nil
	}
	delete(s.rules, r.Key())
	return true, nil
}

func (s *MemoryStore) RemovePolicies(ptype string, rules [][]string) error {
	for _, rule := range rules {
		if _, err := s.RemovePolicy(ptype, rule); err != nil {
			return err
		}
	}
	return nil
}

func (s *MemoryStore) RemoveFilteredPolicy(ptype string, fieldIndex int, fieldValues ...string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := false
	for key, r := range s.rules {
		if r.PType == ptype && matchFields(r, fieldIndex, fieldValues) {
			delete(s.rules, key)
			removed = true
		}
	}
	return removed, nil
}

func (s *MemoryStore) ClearPolicy() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.rules = make(map[string]PolicyRule)
	return nil
}
