package history

import (
	"slices"
	"sync"
	"time"

	"github.com/pscheid92/postpulse/internal/domain"
)

// Store holds the observations of a single run. It is safe for concurrent use; readers always get a copy.
type Store struct {
	mu           sync.RWMutex
	observations []domain.Observation
}

func NewStore(observations ...domain.Observation) *Store {
	return &Store{observations: slices.Clone(observations)}
}

func (s *Store) Add(observations ...domain.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observations = append(s.observations, observations...)
}

// Observations returns a copy of all held observations in insertion order.
func (s *Store) Observations() []domain.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.observations)
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.observations)
}

// Window returns the observations with from <= timestamp <= to. Zero timestamps never match.
func (s *Store) Window(from, to time.Time) []domain.Observation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Observation
	for _, o := range s.observations {
		if o.Timestamp.IsZero() || o.Timestamp.Before(from) || o.Timestamp.After(to) {
			continue
		}
		out = append(out, o)
	}
	return out
}
