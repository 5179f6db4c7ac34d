package domain

import (
	"context"
	"sort"
	"time"
)

// InfoField is a single labeled fact inside a persona info section.
type InfoField struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// ScoredEntry is one scored item of the persona relationship graph,
// e.g. {"Anxiety", 7, "symptoms"}. Score is an integer from 0 to 10.
type ScoredEntry struct {
	Name     string `json:"name"`
	Score    int    `json:"score"`
	Category string `json:"category"`
}

// PersonaProfile is the aggregated structured profile derived from a user's
// chat and journal history. It is the only pipeline entity that outlives a
// request; it is persisted externally and keyed by user.
type PersonaProfile struct {
	UserID UserID

	// Info maps a section label (e.g. "behavioralPatterns") to its fields.
	Info map[string][]InfoField

	// Graph maps a category (e.g. "symptoms") to its scored entries.
	Graph map[string][]ScoredEntry

	LastUpdated time.Time

	// Degraded marks profiles built from at least one unparseable stage
	// output. RawInfo / RawGraph keep the model text for that stage.
	Degraded bool
	RawInfo  string
	RawGraph string
}

// Age reports how old the profile is at the given instant.
func (p *PersonaProfile) Age(now time.Time) time.Duration {
	return now.Sub(p.LastUpdated)
}

// RankedEntries flattens the graph into one list ranked by score descending,
// the order reports display metrics in.
func (p *PersonaProfile) RankedEntries() []ScoredEntry {
	var out []ScoredEntry
	for category, entries := range p.Graph {
		for _, e := range entries {
			if e.Category == "" {
				e.Category = category
			}
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// PersonaStore persists persona profiles.
type PersonaStore interface {
	// GetPersona returns the stored profile, or ErrNotFound.
	GetPersona(ctx context.Context, userID UserID) (*PersonaProfile, error)

	// SavePersona creates or overwrites the profile for its user.
	SavePersona(ctx context.Context, profile *PersonaProfile) error
}
