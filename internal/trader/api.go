package trader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// APIServer exposes the bot's run state over HTTP.
type APIServer struct {
	server     *http.Server
	controller *Controller
	logger     *zap.Logger
}

// NewAPIServer creates a new APIServer for the given controller.
func NewAPIServer(controller *Controller, port int, logger *zap.Logger) *APIServer {
	s := &APIServer{
		controller: controller,
		logger:     logger.Named("api-server"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/status", s.statusHandler)
	mux.HandleFunc("/health", s.healthHandler)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	return s
}

// Start runs the HTTP server in a new goroutine.
func (s *APIServer) Start() {
	s.logger.Info("Starting API server", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != http.ErrServerClosed {
			s.logger.Error("API server failed", zap.Error(err))
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *APIServer) Stop(ctx context.Context) error {
	s.logger.Info("Stopping API server...")
	return s.server.Shutdown(ctx)
}

func (s *APIServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	state := s.controller.Snapshot()
	runStatus, startTime := s.controller.Status()

	status := struct {
		Status            string  `json:"status"`
		Pot               float64 `json:"pot"`
		TotalProfit       float64 `json:"total_profit"`
		TradesCompleted   int     `json:"trades_completed"`
		ConsecutiveLosses int     `json:"consecutive_losses"`
		StartTime         string  `json:"start_time"`
		Uptime            string  `json:"uptime"`
	}{
		Status:            runStatus,
		Pot:               state.Pot,
		TotalProfit:       state.TotalProfit,
		TradesCompleted:   state.TradesCompleted,
		ConsecutiveLosses: state.ConsecutiveLosses,
		StartTime:         startTime.Format(time.RFC3339),
		Uptime:            time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		s.logger.Error("Failed to write status response", zap.Error(err))
		http.Error(w, "Failed to encode status", http.StatusInternalServerError)
	}
}

func (s *APIServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}
