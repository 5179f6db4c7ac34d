package domain

import (
	"context"
	"time"
)

// LLMClient defines how the application talks to a generative text model.
// One call, one prompt, no streaming.
type LLMClient interface {
	Generate(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// MailMessage is one outgoing email. Attachment is a file path and may be
// empty.
type MailMessage struct {
	SenderName string
	To         string
	Subject    string
	Body       string
	Attachment string
}

// Mailer delivers a rendered report to the user.
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}

// AssessmentDocument is the renderer input for persona-style reports:
// labeled info sections plus an optional scored-metric graph.
type AssessmentDocument struct {
	Title       string
	GeneratedAt time.Time
	Info        map[string][]InfoField
	Graph       map[string][]ScoredEntry
}

// JournalDocument is the renderer input for per-entry journal reports.
type JournalDocument struct {
	Title            string
	GeneratedAt      time.Time
	ExecutiveSummary string
	Entries          []AnalysisResult
}

// ReportRenderer turns a document model into a file on disk. Rendering
// internals (layout, styling) are the adapter's business.
type ReportRenderer interface {
	RenderAssessment(doc AssessmentDocument, path string) error
	RenderJournal(doc JournalDocument, path string) error
}
