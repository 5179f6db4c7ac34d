package httpadapter_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "github.com/soulscript/persona-api/internal/adapters/http"
	"github.com/soulscript/persona-api/internal/adapters/llm"
	"github.com/soulscript/persona-api/internal/adapters/storage/memory"
	"github.com/soulscript/persona-api/internal/app/chat"
	"github.com/soulscript/persona-api/internal/app/persona"
	"github.com/soulscript/persona-api/internal/app/pipeline"
	"github.com/soulscript/persona-api/internal/app/report"
	"github.com/soulscript/persona-api/internal/domain"
)

// fakeRenderer records documents instead of producing PDFs.
type fakeRenderer struct {
	assessments []domain.AssessmentDocument
	journals    []domain.JournalDocument
}

func (r *fakeRenderer) RenderAssessment(doc domain.AssessmentDocument, path string) error {
	r.assessments = append(r.assessments, doc)
	return nil
}

func (r *fakeRenderer) RenderJournal(doc domain.JournalDocument, path string) error {
	r.journals = append(r.journals, doc)
	return nil
}

// fakeMailer records outgoing messages.
type fakeMailer struct {
	sent []domain.MailMessage
}

func (m *fakeMailer) Send(ctx context.Context, msg domain.MailMessage) error {
	m.sent = append(m.sent, msg)
	return nil
}

type fixture struct {
	handler  http.Handler
	renderer *fakeRenderer
	mailer   *fakeMailer
}

func newTestServer(t *testing.T, llmClient domain.LLMClient) *fixture {
	t.Helper()

	records := memory.NewRecordStore()
	records.SeedChat("test-user", []domain.Record{
		{ID: "c1", Timestamp: time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC), Title: "How are you?", Content: "Okay."},
	})
	records.SeedJournal("test-user", []domain.Record{
		{ID: "j1", Timestamp: time.Date(2024, 1, 1, 20, 0, 0, 0, time.UTC), Title: "Monday", Content: "Long day."},
		{ID: "j2", Timestamp: time.Date(2024, 1, 3, 20, 0, 0, 0, time.UTC), Title: "Wednesday", Content: "Better."},
	})

	renderer := &fakeRenderer{}
	mailer := &fakeMailer{}

	orchestrator := pipeline.New(records, llmClient, 5)
	personaSvc := persona.NewService(orchestrator, memory.NewPersonaStore(), 24*time.Hour)
	reportSvc := report.NewService(personaSvc, orchestrator, renderer, mailer, "SoulScript System")
	chatSvc := chat.NewService(personaSvc, llmClient)

	return &fixture{
		handler:  httpadapter.NewServer(reportSvc, chatSvc),
		renderer: renderer,
		mailer:   mailer,
	}
}

func defaultLLM() *llm.MockLLM {
	mock := llm.NewMockLLM()
	mock.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "data extraction system"):
			return `{"personalInformation": [{"label": "Name", "value": "Alex"}]}`, nil
		case strings.Contains(prompt, "clinical scoring system"):
			return `{"symptoms": [{"name": "Anxiety", "score": 6}]}`, nil
		case strings.Contains(prompt, "quantify the emotional content"):
			return `{"Joy": 0.4}`, nil
		case strings.Contains(system, "SoulScript"):
			return "That sounds like real progress.", nil
		default:
			return "- generic insight", nil
		}
	}
	return mock
}

func doJSON(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	f := newTestServer(t, defaultLLM())

	w := doJSON(t, f.handler, http.MethodGet, "/healthz", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestGetReport(t *testing.T) {
	f := newTestServer(t, defaultLLM())

	w := doJSON(t, f.handler, http.MethodPost, "/getReport",
		`{"authId":"test-user","email":"user@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Info   map[string][]domain.InfoField `json:"info"`
		Status string                        `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Status != "Email Sent" {
		t.Fatalf("unexpected status %q", resp.Status)
	}
	if resp.Info["personalInformation"][0].Value != "Alex" {
		t.Fatalf("unexpected info: %+v", resp.Info)
	}

	if len(f.renderer.assessments) != 1 {
		t.Fatalf("expected 1 rendered assessment, got %d", len(f.renderer.assessments))
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(f.mailer.sent))
	}
	msg := f.mailer.sent[0]
	if msg.To != "user@example.com" || msg.Attachment == "" {
		t.Fatalf("unexpected mail message: %+v", msg)
	}
}

func TestGetReportValidation(t *testing.T) {
	f := newTestServer(t, defaultLLM())

	cases := []struct {
		name string
		body string
	}{
		{"missing email", `{"authId":"test-user"}`},
		{"missing authId", `{"email":"user@example.com"}`},
		{"invalid json", `{`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(t, f.handler, http.MethodPost, "/getReport", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestGetReportUnknownUser(t *testing.T) {
	f := newTestServer(t, defaultLLM())

	w := doJSON(t, f.handler, http.MethodPost, "/getReport",
		`{"authId":"nobody","email":"user@example.com"}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d, body=%s", w.Code, w.Body.String())
	}
	if len(f.mailer.sent) != 0 {
		t.Fatal("no mail should be sent for an unknown user")
	}
}

func TestGetReportTransportFailure(t *testing.T) {
	mock := llm.NewMockLLM()
	mock.GenerateFunc = func(ctx context.Context, system, prompt string) (string, error) {
		return "", &domain.TransportError{Op: "gemini generate", Err: errors.New("unreachable")}
	}
	f := newTestServer(t, mock)

	w := doJSON(t, f.handler, http.MethodPost, "/getReport",
		`{"authId":"test-user","email":"user@example.com"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if len(f.renderer.assessments) != 0 || len(f.mailer.sent) != 0 {
		t.Fatal("nothing should be rendered or mailed after a model failure")
	}
}

func TestGetMindLogReport(t *testing.T) {
	f := newTestServer(t, defaultLLM())

	w := doJSON(t, f.handler, http.MethodPost, "/getMindLogReport",
		`{"authId":"test-user","email":"user@example.com","numDays":5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	if len(f.renderer.journals) != 1 {
		t.Fatalf("expected 1 rendered journal, got %d", len(f.renderer.journals))
	}
	doc := f.renderer.journals[0]
	if len(doc.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(doc.Entries))
	}
	if doc.Entries[0].RecordID != "j2" || doc.Entries[1].RecordID != "j1" {
		t.Fatalf("expected newest-first entries, got %v then %v", doc.Entries[0].RecordID, doc.Entries[1].RecordID)
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(f.mailer.sent))
	}
}

func TestGetChatSummary(t *testing.T) {
	f := newTestServer(t, defaultLLM())

	w := doJSON(t, f.handler, http.MethodPost, "/getChatSummary",
		`{"authId":"test-user","email":"user@example.com"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if len(f.renderer.assessments) != 1 {
		t.Fatalf("expected 1 rendered assessment, got %d", len(f.renderer.assessments))
	}
	if len(f.renderer.assessments[0].Graph) != 0 {
		t.Fatal("chat summary should not carry a metrics graph")
	}
	if len(f.mailer.sent) != 1 {
		t.Fatalf("expected 1 mail, got %d", len(f.mailer.sent))
	}
}

func TestChat(t *testing.T) {
	f := newTestServer(t, defaultLLM())

	w := doJSON(t, f.handler, http.MethodPost, "/chat",
		`{"authId":"test-user","userMessage":"I slept better this week"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response body: %v", err)
	}
	if resp.Response != "That sounds like real progress." {
		t.Fatalf("unexpected reply %q", resp.Response)
	}
}

func TestChatValidation(t *testing.T) {
	f := newTestServer(t, defaultLLM())

	w := doJSON(t, f.handler, http.MethodPost, "/chat", `{"authId":"test-user","userMessage":"  "}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	f := newTestServer(t, defaultLLM())

	w := doJSON(t, f.handler, http.MethodGet, "/getReport", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}
