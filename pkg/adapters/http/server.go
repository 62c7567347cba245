// Package http exposes the control plane boundaries over REST. The core is
// transport-agnostic; this adapter only maps the call-style boundaries onto
// HTTP.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/caregate/caregate/pkg/domain"
	"github.com/caregate/caregate/pkg/registry"
)

// Service defines the control plane operations the REST layer exposes.
type Service interface {
	ListTools() []registry.ToolInfo
	ToolInfo(id string) (registry.ToolInfo, error)
	ToolsByTier(tier domain.SubscriptionTier) []registry.ToolInfo
	ValidateTool(req domain.ExecuteToolRequest) domain.ValidationResult
	ExecuteToolInChat(ctx context.Context, toolID string, params map[string]any, userID, conversationID string) registry.ChatExecution
	ShouldEscalate(c domain.Classification) bool
	Escalate(ctx context.Context, c domain.Classification, ec domain.EscalationContext) domain.EscalationResult
	RunSafetySandwich(ctx context.Context, req domain.LocalGenerationRequest) domain.GenerationOrchestrationResult
}

// Server maps the Service onto chi routes.
type Server struct {
	service Service
}

// NewHandler creates the HTTP handler. metricsHandler, when non-nil, is
// mounted at /metrics.
func NewHandler(service Service, metricsHandler http.Handler) http.Handler {
	s := &Server{service: service}

	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/tools", func(r chi.Router) {
		r.Get("/", s.handleListTools)
		r.Get("/{toolID}", s.handleToolInfo)
		r.Post("/{toolID}/validate", s.handleValidate)
		r.Post("/{toolID}/execute", s.handleExecute)
	})
	r.Post("/escalations", s.handleEscalate)
	r.Post("/generation/runs", s.handleSandwich)

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	var tools []registry.ToolInfo
	if tier := r.URL.Query().Get("tier"); tier != "" {
		tools = s.service.ToolsByTier(domain.SubscriptionTier(tier))
	} else {
		tools = s.service.ListTools()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tools": tools,
		"count": len(tools),
	})
}

func (s *Server) handleToolInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.service.ToolInfo(chi.URLParam(r, "toolID"))
	if err != nil {
		if errors.Is(err, domain.ErrToolNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type executeBody struct {
	Parameters     map[string]any `json:"parameters"`
	UserID         string         `json:"user_id"`
	ConversationID string         `json:"conversation_id"`
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var body executeBody
	if !decodeBody(w, r, &body) {
		return
	}
	res := s.service.ValidateTool(domain.ExecuteToolRequest{
		ToolID:     chi.URLParam(r, "toolID"),
		Parameters: body.Parameters,
	})
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	var body executeBody
	if !decodeBody(w, r, &body) {
		return
	}
	chat := s.service.ExecuteToolInChat(r.Context(),
		chi.URLParam(r, "toolID"), body.Parameters, body.UserID, body.ConversationID)

	status := http.StatusOK
	// An unknown tool ID is the one failure that is a caller bug.
	for _, e := range chat.Result.Errors {
		if !chat.Result.Success && containsNotFound(e) {
			status = http.StatusNotFound
			break
		}
	}
	writeJSON(w, status, map[string]any{
		"tool_id":            chat.ToolID,
		"tool_name":          chat.ToolName,
		"success":            chat.Result.Success,
		"result":             chat.Result,
		"formatted_for_chat": chat.FormattedForChat,
		"execution_time_ms":  chat.Result.ExecutionTimeMs,
	})
}

type escalateBody struct {
	Classification domain.Classification    `json:"classification"`
	Context        domain.EscalationContext `json:"context"`
}

func (s *Server) handleEscalate(w http.ResponseWriter, r *http.Request) {
	var body escalateBody
	if !decodeBody(w, r, &body) {
		return
	}
	if !s.service.ShouldEscalate(body.Classification) {
		writeJSON(w, http.StatusOK, map[string]any{"escalated": false})
		return
	}
	result := s.service.Escalate(r.Context(), body.Classification, body.Context)
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleSandwich(w http.ResponseWriter, r *http.Request) {
	var req domain.LocalGenerationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusOK, s.service.RunSafetySandwich(r.Context(), req))
}

func decodeBody(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func containsNotFound(msg string) bool {
	return strings.HasPrefix(msg, domain.ErrToolNotFound.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
