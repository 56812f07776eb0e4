// Package server exposes persona chat, tool-augmented chat, ingestion and
// search over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/harunnryd/mimir/internal/agent"
	mimirErrors "github.com/harunnryd/mimir/internal/errors"
	"github.com/harunnryd/mimir/internal/ingest"
	"github.com/harunnryd/mimir/internal/logger"
	"github.com/harunnryd/mimir/internal/model/contract"

	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

type ChatService interface {
	Send(ctx context.Context, userMessage, templateID, model string, temperature float32) (string, error)
}

type AgentService interface {
	Run(ctx context.Context, userMessage, model string) *agent.Conversation
}

type Ingestor interface {
	IngestVideo(ctx context.Context, youtubeURL string) (string, error)
	IngestWebsite(ctx context.Context, websiteURL string) (string, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]ingest.Hit, error)
}

type Narrator interface {
	Narrate(ctx context.Context, chatID, text string) (string, bool)
}

// HealthFunc reports per-component health; a non-nil error marks a component unhealthy.
type HealthFunc func(ctx context.Context) map[string]error

// Deps are the services the handlers call. Nil services answer 501.
type Deps struct {
	Chat     ChatService
	Agent    AgentService
	Ingestor Ingestor
	Search   Searcher
	Narrator Narrator
	Health   HealthFunc

	DefaultModel       string
	DefaultTemperature float32
}

type Server struct {
	deps   Deps
	mapper *mimirErrors.DefaultErrorMapper
	mux    *http.ServeMux
}

func New(deps Deps) *Server {
	s := &Server{
		deps:   deps,
		mapper: mimirErrors.NewDefaultErrorMapper(),
		mux:    http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /api/chat", s.handleChat)
	s.mux.HandleFunc("POST /api/mimir", s.handleMimir)
	s.mux.HandleFunc("POST /api/ingest", s.handleIngest)
	s.mux.HandleFunc("POST /api/search", s.handleSearch)
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the routed handler wrapped with request tracing.
func (s *Server) Handler() http.Handler {
	return withTrace(s.mux)
}

func withTrace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID := r.Header.Get("X-Trace-Id")
		if traceID == "" {
			traceID = logger.NewTraceID()
		}
		w.Header().Set("X-Trace-Id", traceID)

		ctx := logger.WithTraceID(r.Context(), traceID)
		slog.Debug("HTTP request", "method", r.Method, "path", r.URL.Path, "trace_id", traceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type chatRequest struct {
	Message        string   `json:"message"`
	PromptTemplate string   `json:"prompt_template"`
	Model          string   `json:"model"`
	Temperature    *float32 `json:"temperature"`
	ChatID         string   `json:"chat_id"`
	Audio          bool     `json:"audio"`
}

type chatResponse struct {
	Message      string `json:"message"`
	ChatID       string `json:"chat_id,omitempty"`
	AudioFileURL string `json:"audio_file_url,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if s.deps.Chat == nil {
		s.writeError(w, r, mimirErrors.NotConfigured("chat"))
		return
	}

	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	model := orDefault(req.Model, s.deps.DefaultModel)
	temperature := s.deps.DefaultTemperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}

	if req.ChatID == "" {
		req.ChatID = uuid.NewString()
	}
	ctx := logger.WithChatID(r.Context(), req.ChatID)

	reply, err := s.deps.Chat.Send(ctx, req.Message, req.PromptTemplate, model, temperature)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := chatResponse{Message: reply, ChatID: req.ChatID}
	if req.Audio && s.deps.Narrator != nil {
		if link, ok := s.deps.Narrator.Narrate(ctx, req.ChatID, reply); ok {
			resp.AudioFileURL = link
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type mimirRequest struct {
	Message string `json:"message"`
	Model   string `json:"model"`
}

type mimirResponse struct {
	Message     string             `json:"message"`
	ToolContext string             `json:"tool_context,omitempty"`
	Messages    []contract.Message `json:"messages"`
	Error       string             `json:"error,omitempty"`
}

func (s *Server) handleMimir(w http.ResponseWriter, r *http.Request) {
	if s.deps.Agent == nil {
		s.writeError(w, r, mimirErrors.NotConfigured("tool-augmented chat"))
		return
	}

	var req mimirRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, r, mimirErrors.InvalidInput("message is empty"))
		return
	}

	conv := s.deps.Agent.Run(r.Context(), req.Message, orDefault(req.Model, s.deps.DefaultModel))
	reply := conv.Reply()

	resp := mimirResponse{
		Message:  reply.Content,
		Messages: conv.Messages,
	}
	if reply.HasToolContext {
		resp.ToolContext = reply.ToolContext
	}
	if conv.Err != nil {
		resp.Error = conv.Err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

type ingestRequest struct {
	URL  string `json:"url"`
	Kind string `json:"kind"`
}

type ingestResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ingestor == nil {
		s.writeError(w, r, mimirErrors.NotConfigured("ingestion"))
		return
	}

	var req ingestRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	kind := strings.ToLower(strings.TrimSpace(req.Kind))
	if kind == "" {
		kind = ingest.SourceWebsite
		if ingest.IsYouTubeURL(req.URL) {
			kind = ingest.SourceYouTube
		}
	}

	var msg string
	var err error
	switch kind {
	case ingest.SourceYouTube:
		msg, err = s.deps.Ingestor.IngestVideo(r.Context(), req.URL)
	case ingest.SourceWebsite:
		msg, err = s.deps.Ingestor.IngestWebsite(r.Context(), req.URL)
	default:
		err = mimirErrors.InvalidInput("kind must be youtube or website")
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ingestResponse{Kind: kind, Message: msg})
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type searchResponse struct {
	Results []ingest.Hit `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if s.deps.Search == nil {
		s.writeError(w, r, mimirErrors.NotConfigured("search"))
		return
	}

	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	hits, err := s.deps.Search.Search(r.Context(), req.Query, req.K)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, searchResponse{Results: hits})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"status": "ok"}
	status := http.StatusOK

	if s.deps.Health != nil {
		components := make(map[string]interface{})
		for name, err := range s.deps.Health(r.Context()) {
			entry := map[string]interface{}{"healthy": err == nil}
			if err != nil {
				entry["error"] = err.Error()
				resp["status"] = "degraded"
				status = http.StatusServiceUnavailable
			}
			components[name] = entry
		}
		resp["components"] = components
	}
	writeJSON(w, status, resp)
}

type errorResponse struct {
	Error    string `json:"error"`
	Category string `json:"category"`
	TraceID  string `json:"trace_id,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := s.mapper.HTTPStatus(err)
	traceID := logger.GetTraceID(r.Context())
	if status >= http.StatusInternalServerError {
		slog.Error("Request failed", "path", r.URL.Path, "status", status, "error", err, "trace_id", traceID)
	} else {
		slog.Warn("Request rejected", "path", r.URL.Path, "status", status, "error", err, "trace_id", traceID)
	}

	writeJSON(w, status, errorResponse{
		Error:    err.Error(),
		Category: s.mapper.Category(s.mapper.MapError(err)),
		TraceID:  traceID,
	})
}

func decodeBody(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return mimirErrors.InvalidInput("request body is empty")
		}
		return mimirErrors.InvalidInput("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Encode response failed", "error", err)
	}
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
