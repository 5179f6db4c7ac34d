package httpadapter

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/soulscript/persona-api/internal/app/chat"
	"github.com/soulscript/persona-api/internal/app/report"
	"github.com/soulscript/persona-api/internal/domain"
	"github.com/soulscript/persona-api/internal/observability"
)

type Server struct {
	reports *report.Service
	chats   *chat.Service
}

func NewServer(reports *report.Service, chats *chat.Service) http.Handler {
	s := &Server{reports: reports, chats: chats}
	mux := http.NewServeMux()

	mux.HandleFunc("/getReport", post(s.handleGetReport))
	mux.HandleFunc("/getMindLogReport", post(s.handleGetMindLogReport))
	mux.HandleFunc("/getChatSummary", post(s.handleGetChatSummary))
	mux.HandleFunc("/chat", post(s.handleChat))
	mux.HandleFunc("/healthz", s.handleHealth)

	return chainMiddlewares(mux, withLogging, withCORS, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type reportRequest struct {
	AuthID string `json:"authId"`
	Email  string `json:"email"`
}

type mindLogRequest struct {
	AuthID  string `json:"authId"`
	Email   string `json:"email"`
	NumDays int    `json:"numDays"`
}

type chatRequest struct {
	AuthID      string `json:"authId"`
	UserMessage string `json:"userMessage"`
}

type reportResponse struct {
	Info   map[string][]domain.InfoField   `json:"info"`
	Graph  map[string][]domain.ScoredEntry `json:"graph"`
	Status string                          `json:"status"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.AuthID == "" {
		badRequest(w, "authId is required")
		return
	}
	if req.Email == "" {
		badRequest(w, "email is required")
		return
	}

	profile, err := s.reports.SendPersonaReport(r.Context(), domain.UserID(req.AuthID), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, reportResponse{
		Info:   profile.Info,
		Graph:  profile.Graph,
		Status: "Email Sent",
	})
}

func (s *Server) handleGetMindLogReport(w http.ResponseWriter, r *http.Request) {
	var req mindLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.AuthID == "" {
		badRequest(w, "authId is required")
		return
	}
	if req.Email == "" {
		badRequest(w, "email is required")
		return
	}

	err := s.reports.SendJournalReport(r.Context(), domain.UserID(req.AuthID), req.Email, req.NumDays)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "Email Sent"})
}

func (s *Server) handleGetChatSummary(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.AuthID == "" {
		badRequest(w, "authId is required")
		return
	}
	if req.Email == "" {
		badRequest(w, "email is required")
		return
	}

	err := s.reports.SendChatSummary(r.Context(), domain.UserID(req.AuthID), req.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, statusResponse{Status: "Email Sent"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if req.AuthID == "" {
		badRequest(w, "authId is required")
		return
	}
	if strings.TrimSpace(req.UserMessage) == "" {
		badRequest(w, "userMessage is required")
		return
	}

	reply, err := s.chats.Reply(r.Context(), domain.UserID(req.AuthID), req.UserMessage)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{Response: reply})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

// post restricts a handler to the POST method.
func post(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		h(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP statuses. Missing users and empty
// journals surface as 404; everything else stays an opaque 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	log := observability.LoggerFromContext(r.Context())

	if errors.Is(err, domain.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{
			"error": "no records found for this user",
		})
		return
	}

	log.Error("request failed", "path", r.URL.Path, "error", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}
