package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	httpadapter "github.com/soulscript/persona-api/internal/adapters/http"
	"github.com/soulscript/persona-api/internal/adapters/llm"
	"github.com/soulscript/persona-api/internal/adapters/mail"
	pdfreport "github.com/soulscript/persona-api/internal/adapters/report"
	firestorestore "github.com/soulscript/persona-api/internal/adapters/storage/firestore"
	memstore "github.com/soulscript/persona-api/internal/adapters/storage/memory"
	"github.com/soulscript/persona-api/internal/app/chat"
	"github.com/soulscript/persona-api/internal/app/persona"
	"github.com/soulscript/persona-api/internal/app/pipeline"
	"github.com/soulscript/persona-api/internal/app/report"
	"github.com/soulscript/persona-api/internal/config"
	"github.com/soulscript/persona-api/internal/domain"
	"github.com/soulscript/persona-api/internal/observability"
)

func main() {
	// .env is optional; real deployments set env vars directly
	_ = godotenv.Load()

	cfg := config.Load()
	ctx := context.Background()

	// LLM: mock for local dev, Gemini otherwise
	var llmClient domain.LLMClient
	if cfg.UseMockLLM {
		log.Println("[LLM] Using MOCK LLM client")
		llmClient = llm.NewMockLLM()
	} else {
		log.Printf("[LLM] Using Gemini client (model=%s)", cfg.ModelName)
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.ModelName, cfg.LLMTimeout)
		if err != nil {
			log.Fatalf("error initializing Gemini client: %v", err)
		}
		llmClient = llm.WithRetry(gemini, cfg.LLMMaxRetries)
	}

	// Storage: Firestore or Memory
	var (
		recordStore  domain.RecordStore
		personaStore domain.PersonaStore
	)
	switch cfg.StorageBackend {
	case "firestore":
		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}

		// 1 store, implements 2 interfaces
		recordStore = fsStore
		personaStore = fsStore

	default:
		log.Println("[STORE] Using in-memory storage")
		records := memstore.NewRecordStore()
		seedDemoData(records)
		recordStore = records
		personaStore = memstore.NewPersonaStore()
	}

	// Mail: real SMTP only when credentials are present
	var mailer domain.Mailer
	if cfg.SMTPUser != "" && cfg.SMTPPassword != "" {
		log.Printf("[MAIL] Using SMTP mailer (%s:%d)", cfg.SMTPHost, cfg.SMTPPort)
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
	} else {
		log.Println("[MAIL] No SMTP credentials, logging mail instead of sending")
		mailer = mail.NewLogMailer(observability.WithComponent("mail"))
	}

	// Services
	orchestrator := pipeline.New(recordStore, llmClient, cfg.JournalLimit)
	personaSvc := persona.NewService(orchestrator, personaStore, cfg.PersonaTTL)
	reportSvc := report.NewService(personaSvc, orchestrator, pdfreport.NewPDFRenderer(), mailer, cfg.SenderName)
	chatSvc := chat.NewService(personaSvc, llmClient)

	// HTTP server
	handler := httpadapter.NewServer(reportSvc, chatSvc)

	addr := ":" + cfg.Port
	log.Println("SoulScript persona API listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}

// seedDemoData loads one sample user so local runs have something to analyze.
func seedDemoData(store *memstore.RecordStore) {
	const userID = domain.UserID("demo-user")
	now := time.Now()

	store.SeedChat(userID, []domain.Record{
		{
			ID:        "chat-1",
			Timestamp: now.Add(-72 * time.Hour),
			Title:     "How have you been sleeping lately?",
			Content:   "Not great. I keep waking up around 3am thinking about work deadlines.",
		},
		{
			ID:        "chat-2",
			Timestamp: now.Add(-48 * time.Hour),
			Title:     "What helps you relax after a stressful day?",
			Content:   "Walking my dog helps. Talking to my sister too, she always listens.",
		},
	})

	store.SeedJournal(userID, []domain.Record{
		{
			ID:        "journal-1",
			Timestamp: now.Add(-24 * time.Hour),
			Title:     "Rough Monday",
			Content:   "Presentation got moved up a week and I spent the whole day anxious about it. Skipped lunch again.",
		},
		{
			ID:        "journal-2",
			Timestamp: now.Add(-2 * time.Hour),
			Title:     "Better today",
			Content:   "Practiced the presentation with a coworker and it went fine. Slept almost seven hours.",
		},
	})
}
