package testutil

import (
	"fmt"
	"sync"
)

// SequenceIDs hands out "tx-1", "tx-2", ... so tests can assert on ids.
type SequenceIDs struct {
	Prefix string
	mu     sync.Mutex
	next   int
}

// NewID implements service.IDGenerator.
func (s *SequenceIDs) NewID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	prefix := s.Prefix
	if prefix == "" {
		prefix = "tx"
	}
	return fmt.Sprintf("%s-%d", prefix, s.next)
}
