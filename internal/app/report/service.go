// Package report sequences a pipeline run into a rendered PDF and its
// email delivery, cleaning up the rendered file afterwards.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/soulscript/persona-api/internal/app/persona"
	"github.com/soulscript/persona-api/internal/app/pipeline"
	"github.com/soulscript/persona-api/internal/domain"
	"github.com/soulscript/persona-api/internal/observability"
)

type Service struct {
	personas *persona.Service
	pipeline *pipeline.Orchestrator
	renderer domain.ReportRenderer
	mailer   domain.Mailer

	senderName string
	tmpDir     string
	now        func() time.Time
}

func NewService(
	personas *persona.Service,
	p *pipeline.Orchestrator,
	renderer domain.ReportRenderer,
	mailer domain.Mailer,
	senderName string,
) *Service {
	return &Service{
		personas:   personas,
		pipeline:   p,
		renderer:   renderer,
		mailer:     mailer,
		senderName: senderName,
		tmpDir:     os.TempDir(),
		now:        time.Now,
	}
}

// SendPersonaReport builds (or reuses, when fresh) the user's persona,
// renders the assessment report, and emails it. The persisted profile is
// returned so the HTTP layer can echo it in the response.
func (s *Service) SendPersonaReport(ctx context.Context, userID domain.UserID, email string) (*domain.PersonaProfile, error) {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	profile, err := s.personas.Ensure(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	path := s.reportPath("persona", userID, now)

	doc := domain.AssessmentDocument{
		Title:       "Therapy Assessment Report",
		GeneratedAt: now,
		Info:        profile.Info,
		Graph:       profile.Graph,
	}
	if err := s.renderer.RenderAssessment(doc, path); err != nil {
		return nil, fmt.Errorf("rendering persona report: %w", err)
	}
	defer s.remove(path, log)

	err = s.mailer.Send(ctx, domain.MailMessage{
		SenderName: s.senderName,
		To:         email,
		Subject:    "Your Therapy Assessment Report",
		Body:       "Attached is your report. Please review the PDF for detailed insights.",
		Attachment: path,
	})
	if err != nil {
		return nil, err
	}

	log.Info("persona report sent", "to", email)
	return profile, nil
}

// SendJournalReport analyzes the user's numDays most recent journal entries
// and emails the rendered report.
func (s *Service) SendJournalReport(ctx context.Context, userID domain.UserID, email string, numDays int) error {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	results, err := s.pipeline.AnalyzeJournal(ctx, userID, numDays)
	if err != nil {
		return err
	}

	summary, err := s.pipeline.Summarize(ctx, results)
	if err != nil {
		return err
	}

	now := s.now()
	path := s.reportPath("mindlog", userID, now)

	doc := domain.JournalDocument{
		Title:            "Psychological Journal Analysis Report",
		GeneratedAt:      now,
		ExecutiveSummary: summary,
		Entries:          results,
	}
	if err := s.renderer.RenderJournal(doc, path); err != nil {
		return fmt.Errorf("rendering journal report: %w", err)
	}
	defer s.remove(path, log)

	err = s.mailer.Send(ctx, domain.MailMessage{
		SenderName: s.senderName,
		To:         email,
		Subject:    "Your MindLog Report",
		Body:       "Attached is your report. Please review the PDF for detailed insights.",
		Attachment: path,
	})
	if err != nil {
		return err
	}

	log.Info("journal report sent", "to", email, "entries", len(results))
	return nil
}

// SendChatSummary extracts structured information from the chat history only
// and emails the rendered assessment.
func (s *Service) SendChatSummary(ctx context.Context, userID domain.UserID, email string) error {
	log := observability.LoggerFromContext(ctx).With("user_id", userID)

	info, raw, err := s.pipeline.ExtractChatProfile(ctx, userID)
	if err != nil {
		return err
	}
	if info == nil {
		// degraded extraction still produces a report carrying the raw text
		info = map[string][]domain.InfoField{
			"unparsedModelOutput": {{Label: "Response", Value: raw}},
		}
	}

	now := s.now()
	path := s.reportPath("chat_summary", userID, now)

	doc := domain.AssessmentDocument{
		Title:       "Psychological Assessment Report",
		GeneratedAt: now,
		Info:        info,
	}
	if err := s.renderer.RenderAssessment(doc, path); err != nil {
		return fmt.Errorf("rendering chat summary: %w", err)
	}
	defer s.remove(path, log)

	err = s.mailer.Send(ctx, domain.MailMessage{
		SenderName: s.senderName,
		To:         email,
		Subject:    "Your Chat Summary Report",
		Body:       "Attached is your report. Please review the PDF for detailed insights.",
		Attachment: path,
	})
	if err != nil {
		return err
	}

	log.Info("chat summary sent", "to", email)
	return nil
}

// reportPath builds a unique file name so concurrent requests never collide.
func (s *Service) reportPath(kind string, userID domain.UserID, now time.Time) string {
	name := fmt.Sprintf("%s_%s_%s_%s.pdf",
		kind,
		userID,
		now.Format("20060102_150405"),
		uuid.NewString()[:8],
	)
	return filepath.Join(s.tmpDir, name)
}

func (s *Service) remove(path string, log *slog.Logger) {
	if err := os.Remove(path); err != nil {
		log.Warn("failed to remove report file", "path", path, "error", err)
	}
}
