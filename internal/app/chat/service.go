// Package chat generates persona-aware companion replies. Every reply is
// grounded in a fresh persona profile so the model stays consistent with
// what the user has already shared.
package chat

import (
	"context"
	"strings"

	"github.com/soulscript/persona-api/internal/app/persona"
	"github.com/soulscript/persona-api/internal/app/prompt"
	"github.com/soulscript/persona-api/internal/domain"
	"github.com/soulscript/persona-api/internal/observability"
)

type Service struct {
	personas *persona.Service
	llm      domain.LLMClient
}

func NewService(personas *persona.Service, llm domain.LLMClient) *Service {
	return &Service{personas: personas, llm: llm}
}

// chatInput is the serialized payload the chat stage receives.
type chatInput struct {
	Persona     personaView `json:"persona"`
	UserMessage string      `json:"user_message"`
}

type personaView struct {
	Info  map[string][]domain.InfoField   `json:"info,omitempty"`
	Graph map[string][]domain.ScoredEntry `json:"graph,omitempty"`
}

// Reply ensures the user's persona is current, then answers the message in
// the companion persona. The persona refresh is mandatory: replying from a
// stale profile would contradict things the user has since shared.
func (s *Service) Reply(ctx context.Context, userID domain.UserID, message string) (string, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	profile, err := s.personas.Ensure(ctx, userID)
	if err != nil {
		return "", err
	}

	input := chatInput{
		Persona: personaView{
			Info:  profile.Info,
			Graph: profile.Graph,
		},
		UserMessage: message,
	}

	p, err := prompt.Build(prompt.StageChat, input)
	if err != nil {
		return "", err
	}

	reply, err := s.llm.Generate(ctx, p.System, p.User)
	if err != nil {
		return "", err
	}

	log.Info("chat reply generated", "persona_degraded", profile.Degraded)
	return strings.TrimSpace(reply), nil
}
