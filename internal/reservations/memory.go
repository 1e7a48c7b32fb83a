package reservations

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStore is an in-process Store for tests and local runs. The mutex
// gives the same one-winner guarantee the DynamoDB conditional write does.
type MemoryStore struct {
	mu   sync.Mutex
	days map[string]*DayRecord
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{days: make(map[string]*DayRecord)}
}

func (s *MemoryStore) DayRecord(_ context.Context, date string) (*DayRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.days[date]
	if !ok {
		return &DayRecord{Date: date, Slots: map[string]string{}}, nil
	}

	out := &DayRecord{Date: rec.Date, Slots: make(map[string]string, len(rec.Slots)), Expiry: rec.Expiry}
	for k, v := range rec.Slots {
		out.Slots[k] = v
	}
	return out, nil
}

func (s *MemoryStore) BookSlot(_ context.Context, date, slot, owner string, expiry int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.days[date]
	if !ok {
		rec = &DayRecord{Date: date, Slots: map[string]string{}}
		s.days[date] = rec
	}
	if _, taken := rec.Slots[slot]; taken {
		return fmt.Errorf("%w: %s", ErrSlotAlreadyBooked, slot)
	}
	rec.Slots[slot] = owner
	if expiry > rec.Expiry {
		rec.Expiry = expiry
	}
	return nil
}
