// Package persona aggregates pipeline stage outputs into the persisted
// persona profile and decides when a stored profile is too old to use.
package persona

import (
	"context"
	"errors"
	"time"

	"github.com/soulscript/persona-api/internal/app/pipeline"
	"github.com/soulscript/persona-api/internal/domain"
	"github.com/soulscript/persona-api/internal/observability"
)

// Service owns persona lifetime: build, staleness check, persistence.
type Service struct {
	pipeline *pipeline.Orchestrator
	store    domain.PersonaStore
	ttl      time.Duration
	now      func() time.Time
}

// NewService creates the aggregator. ttl is the freshness threshold: a
// profile older than this triggers re-extraction before use.
func NewService(p *pipeline.Orchestrator, store domain.PersonaStore, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Service{
		pipeline: p,
		store:    store,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the stored profile or domain.ErrNotFound.
func (s *Service) Get(ctx context.Context, userID domain.UserID) (*domain.PersonaProfile, error) {
	return s.store.GetPersona(ctx, userID)
}

// IsUpdateNeeded reports whether the user has no stored profile or the
// stored one has outlived the freshness threshold.
func (s *Service) IsUpdateNeeded(ctx context.Context, userID domain.UserID) (bool, error) {
	profile, err := s.store.GetPersona(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	return profile.Age(s.now()) > s.ttl, nil
}

// Refresh runs the full persona pipeline, stamps the result, and persists
// it, overwriting any previous profile.
func (s *Service) Refresh(ctx context.Context, userID domain.UserID) (*domain.PersonaProfile, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)
	log.Info("refreshing persona")

	candidate, err := s.pipeline.BuildPersona(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile := &domain.PersonaProfile{
		UserID:      userID,
		Info:        candidate.Info,
		Graph:       candidate.Graph,
		LastUpdated: s.now(),
		Degraded:    candidate.Degraded,
		RawInfo:     candidate.RawInfo,
		RawGraph:    candidate.RawGraph,
	}

	if err := s.store.SavePersona(ctx, profile); err != nil {
		log.Error("failed to persist persona", "error", err)
		return nil, err
	}

	log.Info("persona refreshed", "degraded", profile.Degraded)
	return profile, nil
}

// Ensure returns a fresh profile, reusing the stored one when it is younger
// than the freshness threshold and rebuilding it otherwise.
func (s *Service) Ensure(ctx context.Context, userID domain.UserID) (*domain.PersonaProfile, error) {
	stale, err := s.IsUpdateNeeded(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !stale {
		return s.store.GetPersona(ctx, userID)
	}
	return s.Refresh(ctx, userID)
}
