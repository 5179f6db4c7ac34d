package firestore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/soulscript/persona-api/internal/domain"
)

// Store implements domain.RecordStore and domain.PersonaStore on Firestore.
//
// Layout:
//
//	users/{userID}                  → user document with a userHistory array
//	users/{userID}/journalEntries   → journal entries ordered by "date"
//	personas/{userID}               → aggregated persona profile
type Store struct {
	client *firestore.Client
}

// NewStore creates a Firestore store for the given project.
func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

func (s *Store) Close() error { return s.client.Close() }

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) userDoc(id domain.UserID) *firestore.DocumentRef {
	return s.client.Collection("users").Doc(string(id))
}

func (s *Store) journalCol(id domain.UserID) *firestore.CollectionRef {
	return s.userDoc(id).Collection("journalEntries")
}

func (s *Store) personaDoc(id domain.UserID) *firestore.DocumentRef {
	return s.client.Collection("personas").Doc(string(id))
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type userDoc struct {
	UserHistory []map[string]any `firestore:"userHistory"`
}

type journalDoc struct {
	Title   string    `firestore:"title"`
	Date    time.Time `firestore:"date"`
	Content string    `firestore:"content"`
}

type personaDoc struct {
	UserID      string                         `firestore:"user_id"`
	Info        map[string][]infoFieldDoc      `firestore:"info"`
	Graph       map[string][]scoredEntryDoc    `firestore:"graph"`
	LastUpdated time.Time                      `firestore:"last_updated"`
	Degraded    bool                           `firestore:"degraded"`
	RawInfo     string                         `firestore:"raw_info,omitempty"`
	RawGraph    string                         `firestore:"raw_graph,omitempty"`
}

type infoFieldDoc struct {
	Label string `firestore:"label"`
	Value string `firestore:"value"`
}

type scoredEntryDoc struct {
	Name     string `firestore:"name"`
	Score    int    `firestore:"score"`
	Category string `firestore:"category"`
}

// ─────────────────────────────────────────
// RecordStore implementation
// ─────────────────────────────────────────

// FetchChatRecords returns the userHistory array as records, in stored order.
func (s *Store) FetchChatRecords(ctx context.Context, userID domain.UserID) ([]domain.Record, error) {
	snap, err := s.userDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore FetchChatRecords: %w", err)
	}

	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore FetchChatRecords decode: %w", err)
	}

	out := make([]domain.Record, 0, len(doc.UserHistory))
	for i, item := range doc.UserHistory {
		out = append(out, chatItemToRecord(i, item))
	}
	return out, nil
}

// chatItemToRecord maps one loosely-shaped userHistory element to a Record.
// Unknown shapes are preserved whole as JSON so no data is dropped.
func chatItemToRecord(i int, item map[string]any) domain.Record {
	rec := domain.Record{ID: domain.RecordID(fmt.Sprintf("chat-%d", i))}

	if v, ok := item["timestamp"].(time.Time); ok {
		rec.Timestamp = v
	}
	if v, ok := item["question"].(string); ok {
		rec.Title = v
	}
	if v, ok := item["answer"].(string); ok {
		rec.Content = v
	} else if v, ok := item["text"].(string); ok {
		rec.Content = v
	}

	if rec.Title == "" && rec.Content == "" {
		if b, err := json.Marshal(item); err == nil {
			rec.Content = string(b)
		}
	}
	return rec
}

// FetchJournalRecords returns up to limit journal entries, newest first.
func (s *Store) FetchJournalRecords(ctx context.Context, userID domain.UserID, limit int) ([]domain.Record, error) {
	q := s.journalCol(userID).OrderBy("date", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []domain.Record
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore FetchJournalRecords: %w", err)
		}

		var doc journalDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode journalDoc: %w", err)
		}

		out = append(out, domain.Record{
			ID:        domain.RecordID(snap.Ref.ID),
			Timestamp: doc.Date,
			Title:     doc.Title,
			Content:   doc.Content,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// PersonaStore implementation
// ─────────────────────────────────────────

func (s *Store) GetPersona(ctx context.Context, userID domain.UserID) (*domain.PersonaProfile, error) {
	snap, err := s.personaDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("persona %s: %w", userID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("firestore GetPersona: %w", err)
	}

	var doc personaDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetPersona decode: %w", err)
	}

	profile := &domain.PersonaProfile{
		UserID:      userID,
		Info:        make(map[string][]domain.InfoField, len(doc.Info)),
		Graph:       make(map[string][]domain.ScoredEntry, len(doc.Graph)),
		LastUpdated: doc.LastUpdated,
		Degraded:    doc.Degraded,
		RawInfo:     doc.RawInfo,
		RawGraph:    doc.RawGraph,
	}
	for section, fields := range doc.Info {
		for _, f := range fields {
			profile.Info[section] = append(profile.Info[section], domain.InfoField{Label: f.Label, Value: f.Value})
		}
	}
	for category, entries := range doc.Graph {
		for _, e := range entries {
			profile.Graph[category] = append(profile.Graph[category], domain.ScoredEntry{
				Name:     e.Name,
				Score:    e.Score,
				Category: e.Category,
			})
		}
	}
	return profile, nil
}

// SavePersona overwrites the profile document. Last write wins; both writers
// derive the profile from the same record history.
func (s *Store) SavePersona(ctx context.Context, profile *domain.PersonaProfile) error {
	doc := personaDoc{
		UserID:      string(profile.UserID),
		Info:        make(map[string][]infoFieldDoc, len(profile.Info)),
		Graph:       make(map[string][]scoredEntryDoc, len(profile.Graph)),
		LastUpdated: profile.LastUpdated,
		Degraded:    profile.Degraded,
		RawInfo:     profile.RawInfo,
		RawGraph:    profile.RawGraph,
	}
	for section, fields := range profile.Info {
		for _, f := range fields {
			doc.Info[section] = append(doc.Info[section], infoFieldDoc{Label: f.Label, Value: f.Value})
		}
	}
	for category, entries := range profile.Graph {
		for _, e := range entries {
			doc.Graph[category] = append(doc.Graph[category], scoredEntryDoc{
				Name:     e.Name,
				Score:    e.Score,
				Category: e.Category,
			})
		}
	}

	if _, err := s.personaDoc(profile.UserID).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore SavePersona: %w", err)
	}
	return nil
}
