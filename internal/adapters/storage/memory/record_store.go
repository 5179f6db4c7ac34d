package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/soulscript/persona-api/internal/domain"
)

// RecordStore is a simple in-memory implementation of domain.RecordStore.
// It is NOT persistent and is only suitable for development / tests.
type RecordStore struct {
	mu      sync.RWMutex
	chat    map[domain.UserID][]domain.Record
	journal map[domain.UserID][]domain.Record
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		chat:    make(map[domain.UserID][]domain.Record),
		journal: make(map[domain.UserID][]domain.Record),
	}
}

// SeedChat registers a user's chat history.
func (s *RecordStore) SeedChat(userID domain.UserID, records []domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat[userID] = append([]domain.Record(nil), records...)
}

// SeedJournal registers a user's journal entries in any order.
func (s *RecordStore) SeedJournal(userID domain.UserID, records []domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journal[userID] = append([]domain.Record(nil), records...)
}

func (s *RecordStore) FetchChatRecords(ctx context.Context, userID domain.UserID) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.chat[userID]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}
	return append([]domain.Record(nil), records...), nil
}

// FetchJournalRecords returns up to limit entries, newest first, matching the
// order the Firestore query produces.
func (s *RecordStore) FetchJournalRecords(ctx context.Context, userID domain.UserID, limit int) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := append([]domain.Record(nil), s.journal[userID]...)
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}
