package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port string

	GeminiAPIKey string
	ModelName    string
	GCPProjectID string

	StorageBackend string // "memory" or "firestore"
	UseMockLLM     bool   // true = use mock even on GCP

	// PersonaTTL is the freshness threshold: a stored profile older than
	// this is regenerated before use.
	PersonaTTL time.Duration

	LLMTimeout    time.Duration
	LLMMaxRetries int

	// JournalLimit is the default number of journal entries fetched per run.
	JournalLimit int

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	SenderName   string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("config: ignoring invalid %s=%q", key, v)
		return def
	}
	return n
}

// Load reads all env vars and builds the config
func Load() *Config {
	modeStr := getEnv("SOULSCRIPT_MODE", "local")
	var mode Mode
	switch modeStr {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	cfg := &Config{
		Mode: mode,

		Port: getEnv("SOULSCRIPT_PORT", "8080"),

		GeminiAPIKey: getEnv("SOULSCRIPT_GEMINI_API_KEY", ""),
		ModelName:    getEnv("SOULSCRIPT_MODEL_NAME", "gemini-2.0-flash"),
		GCPProjectID: getEnv("SOULSCRIPT_GCP_PROJECT", ""),

		StorageBackend: getEnv("SOULSCRIPT_STORAGE_BACKEND", "memory"),
		UseMockLLM:     getBoolEnv("SOULSCRIPT_USE_MOCK_LLM", mode == ModeLocal),

		PersonaTTL: time.Duration(getIntEnv("SOULSCRIPT_PERSONA_TTL_HOURS", 24)) * time.Hour,

		LLMTimeout:    time.Duration(getIntEnv("SOULSCRIPT_LLM_TIMEOUT_SECONDS", 60)) * time.Second,
		LLMMaxRetries: getIntEnv("SOULSCRIPT_LLM_MAX_RETRIES", 3),

		JournalLimit: getIntEnv("SOULSCRIPT_JOURNAL_LIMIT", 5),

		SMTPHost:     getEnv("SOULSCRIPT_SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:     getIntEnv("SOULSCRIPT_SMTP_PORT", 587),
		SMTPUser:     getEnv("SOULSCRIPT_SMTP_USER", ""),
		SMTPPassword: getEnv("SOULSCRIPT_SMTP_PASSWORD", ""),
		SenderName:   getEnv("SOULSCRIPT_SENDER_NAME", "SoulScript System"),
	}

	// Minimal validation in GCP mode
	if cfg.Mode == ModeGCP && cfg.GCPProjectID == "" {
		log.Fatal("SOULSCRIPT_GCP_PROJECT must be set in gcp mode")
	}
	if cfg.Mode == ModeGCP && !cfg.UseMockLLM && cfg.GeminiAPIKey == "" {
		log.Fatal("SOULSCRIPT_GEMINI_API_KEY must be set when the real model is used")
	}

	return cfg
}
