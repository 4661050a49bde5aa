package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"tradebridge/internal/domain"
	"tradebridge/internal/engine"
	"tradebridge/internal/gateway"
	"tradebridge/internal/journal"
)

// webhookSource tags journal entries written by the webhook endpoint.
const webhookSource = "tradingview"

// Executor processes a batch of order intents against the broker.
type Executor interface {
	ExecuteBatch(ctx context.Context, intents []domain.OrderIntent) (*domain.BatchResult, error)
}

// Server serves the webhook and query HTTP API.
type Server struct {
	exec     Executor
	broker   string
	recorder journal.Recorder
	reader   journal.Reader
	log      *slog.Logger
}

// NewServer creates a new HTTP API server. reader may be nil, in which case
// the batch history endpoint reports an empty list.
func NewServer(exec Executor, broker string, recorder journal.Recorder, reader journal.Reader, log *slog.Logger) *Server {
	if recorder == nil {
		recorder = journal.Nop{}
	}
	return &Server{
		exec:     exec,
		broker:   broker,
		recorder: recorder,
		reader:   reader,
		log:      log,
	}
}

// RegisterRoutes registers all API routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /webhook/tradingview", s.handleWebhook)
	mux.HandleFunc("GET /api/batches", s.handleBatches)
	mux.HandleFunc("GET /healthz", s.handleHealth)
}

// Handler returns an http.Handler with logging and CORS middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return s.logMiddleware(corsMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	receivedAt := time.Now().UTC()

	var req WebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	batch, err := s.exec.ExecuteBatch(r.Context(), req.Orders)
	if err != nil {
		var connErr *gateway.ConnectionError
		switch {
		case errors.Is(err, engine.ErrEmptyBatch):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, new(*engine.ConflictError)):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.As(err, &connErr):
			s.log.Error("broker connection failed", "provider", connErr.Provider, "error", connErr.Err)
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			s.log.Error("batch execution failed", "error", err)
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if err := s.recorder.RecordBatch(r.Context(), webhookSource, receivedAt, batch); err != nil {
		// Journaling must not fail the trade response.
		s.log.Warn("recording batch", "error", err)
	}

	status := http.StatusOK
	if !batch.Succeeded() {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, WebhookResponse{
		Status:           batch.StatusLabel(),
		TotalOrders:      batch.Total,
		SuccessfulOrders: batch.Successful,
		FailedOrders:     batch.Failed,
		Results:          batch.Results,
	})
}

func (s *Server) handleBatches(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	if s.reader == nil {
		writeJSON(w, http.StatusOK, []journal.BatchRecord{})
		return
	}

	batches, err := s.reader.RecentBatches(r.Context(), limit)
	if err != nil {
		s.log.Error("reading batch history", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to read batch history")
		return
	}
	if batches == nil {
		batches = []journal.BatchRecord{}
	}
	writeJSON(w, http.StatusOK, batches)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Broker: s.broker})
}
