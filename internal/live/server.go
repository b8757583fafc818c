package live

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/trend-trader/internal/metrics"
)

// CycleRunner runs one trading cycle. Satisfied by *Trader.
type CycleRunner interface {
	RunCycle(ctx context.Context) *CycleReport
}

// Server exposes the HTTP trigger for trading cycles plus health and
// metrics endpoints. Cycles are invoked by an external scheduler hitting
// the root endpoint with a shared token.
type Server struct {
	runner      CycleRunner
	invokeToken string
	port        int
	metricsPath string
	server      *http.Server
	logger      *logrus.Logger
	mu          sync.Mutex
	running     bool
	ready       bool
}

// ServerConfig holds the configuration for the trigger server.
type ServerConfig struct {
	Port        int
	InvokeToken string
	MetricsPath string
	Logger      *logrus.Logger
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// NewServer creates a new trigger server.
func NewServer(runner CycleRunner, cfg ServerConfig) *Server {
	port := cfg.Port
	if port == 0 {
		port = 8080
	}
	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	return &Server{
		runner:      runner,
		invokeToken: cfg.InvokeToken,
		port:        port,
		metricsPath: metricsPath,
		logger:      cfg.Logger,
	}
}

// SetReady marks the server as ready to accept trigger requests.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// Start starts the trigger server in the background.
func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleInvoke)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.Handle(s.metricsPath, metrics.Handler())

	s.server = &http.Server{
		Addr:         ":" + strconv.Itoa(s.port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.WithField("port", s.port).Info("Trigger server starting")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("Trigger server error")
		}
	}()

	go func() {
		<-ctx.Done()
		s.Shutdown()
	}()

	return nil
}

// Shutdown gracefully shuts down the trigger server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}

	s.logger.Info("Trigger server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// handleInvoke runs one trading cycle. Requests must carry the shared
// invoke token; concurrent invocations are rejected so cycles never
// overlap.
func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, statusResponse{Status: "error", Message: "method not allowed"})
		return
	}
	if s.invokeToken == "" || r.Header.Get("X-Invoke-Token") != s.invokeToken {
		s.logger.Warn("Rejected trigger request with invalid token")
		writeJSON(w, http.StatusUnauthorized, statusResponse{Status: "error", Message: "invalid invoke token"})
		return
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, statusResponse{Status: "error", Message: "cycle already in progress"})
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	report := s.runner.RunCycle(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(report)
}

// handleHealth handles the liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// handleReady handles the readiness probe.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ready := s.ready
	s.mu.Unlock()

	if !ready {
		writeJSON(w, http.StatusServiceUnavailable, statusResponse{Status: "not_ready"})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

func writeJSON(w http.ResponseWriter, code int, body statusResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
