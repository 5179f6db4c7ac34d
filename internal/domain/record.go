package domain

import (
	"context"
	"time"
)

// Record is one chat or journal item fetched for a user. Records are
// immutable once fetched; the pipeline only reads them.
type Record struct {
	ID        RecordID  `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
}

// RecordStore fetches a user's conversational history.
type RecordStore interface {
	// FetchChatRecords returns the user's stored chat history.
	// Returns ErrNotFound when the user document does not exist.
	FetchChatRecords(ctx context.Context, userID UserID) ([]Record, error)

	// FetchJournalRecords returns up to limit journal entries for the user,
	// ordered by timestamp descending. limit <= 0 applies the store default.
	FetchJournalRecords(ctx context.Context, userID UserID, limit int) ([]Record, error)
}
