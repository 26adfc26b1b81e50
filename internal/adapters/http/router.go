package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/arcadehub/rules-chatbot/internal/core/domain"
	"github.com/arcadehub/rules-chatbot/internal/core/ports"
	"github.com/arcadehub/rules-chatbot/internal/observability/metrics"
)

const serviceName = "rules-chatbot-api"

type RouterConfig struct {
	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int
}

type Router struct {
	query    ports.QueryService
	registry ports.IngestRegistry
	queue    ports.MessageQueue
	metrics  *metrics.HTTPServerMetrics
	cfg      RouterConfig
}

func NewRouter(
	query ports.QueryService,
	registry ports.IngestRegistry,
	queue ports.MessageQueue,
	m *metrics.HTTPServerMetrics,
	cfg RouterConfig,
) *Router {
	return &Router{
		query:    query,
		registry: registry,
		queue:    queue,
		metrics:  m,
		cfg:      cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", rt.root)
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/chat", rt.chat)
	mux.HandleFunc("/v1/ingest/reindex", rt.reindex)
	mux.HandleFunc("/v1/ingest/sources", rt.listSources)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	var handler http.Handler = mux
	handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst)
	handler = corsMiddleware(handler, rt.cfg.CORSOrigin)
	handler = metricsMiddleware(handler, rt.metrics)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Platform Chatbot API"})
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) chat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "message is required"})
		return
	}

	answer, err := rt.query.Answer(r.Context(), req.Message)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}

	rt.observeAnswer(answer)
	writeJSON(w, http.StatusOK, map[string]any{
		"response": answer.Text,
		"sources":  answer.Sources,
	})
}

func (rt *Router) reindex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.queue == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "reindex queue unavailable"})
		return
	}
	if err := rt.queue.PublishReindexRequested(r.Context(), "api"); err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

func (rt *Router) listSources(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	if rt.registry == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "ingest registry unavailable"})
		return
	}
	records, err := rt.registry.ListSources(r.Context())
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []domain.SourceRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

func (rt *Router) observeAnswer(answer *domain.Answer) {
	if rt.metrics == nil {
		return
	}
	sentinel := ""
	if len(answer.Sources) == 1 {
		switch answer.Sources[0] {
		case domain.SourceConversational, domain.SourceNoResults, domain.SourceSystemError:
			sentinel = answer.Sources[0]
		}
	}
	rt.metrics.ObserveAnswer(serviceName, sentinel, len(answer.Sources))
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
