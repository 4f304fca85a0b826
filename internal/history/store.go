// Package history keeps the process-lifetime list of completed scans.
//
// A Store is created empty at startup and handed to the API server; nothing
// in the scan engine reads it.
package history

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/khanhnv2901/seca-scan/internal/domain/scan"
)

// Record is one history entry. The embedded result fields are flattened in
// JSON so entries look like scan responses with an id and timestamp.
type Record struct {
	ID        string    `json:"id"`
	ScannedAt time.Time `json:"scanned_at"`
	scan.Result
}

// Store is an in-memory, append-only scan history safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	records     []Record
	subscribers map[chan Record]struct{}
	maxEntries  int // 0 keeps everything
	now         func() time.Time
}

// NewStore creates an empty store. maxEntries <= 0 disables trimming.
func NewStore(maxEntries int) *Store {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &Store{
		records:     make([]Record, 0),
		subscribers: make(map[chan Record]struct{}),
		maxEntries:  maxEntries,
		now:         time.Now,
	}
}

// Append stores result and notifies subscribers. When the store is bounded
// the oldest records are dropped first.
func (s *Store) Append(result scan.Result) Record {
	rec := Record{
		ID:        uuid.NewString(),
		ScannedAt: s.now().UTC(),
		Result:    result,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, rec)
	if s.maxEntries > 0 && len(s.records) > s.maxEntries {
		drop := len(s.records) - s.maxEntries
		s.records = append(s.records[:0:0], s.records[drop:]...)
	}
	s.broadcast(rec)
	return rec
}

// List returns a copy of all records in insertion order.
func (s *Store) List() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// Len reports how many records are held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Subscribe registers for new records. The returned func unsubscribes and
// closes the channel; it is safe to call more than once.
func (s *Store) Subscribe() (chan Record, func()) {
	ch := make(chan Record, 10)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()
	return ch, func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
}

// broadcast never blocks; a subscriber with a full buffer misses the record.
func (s *Store) broadcast(rec Record) {
	for ch := range s.subscribers {
		select {
		case ch <- rec:
		default:
		}
	}
}
