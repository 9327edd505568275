package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.sazak.io/tictoc/cmd/tictoc/storage"
)

// Config represents the display configuration served to web clients
type Config struct {
	DefaultUnit       string `json:"default_unit"`
	RefreshIntervalMs int    `json:"refresh_interval_ms"`
	MaxLapsPerRequest int    `json:"max_laps_per_request"`
}

// Stats represents the live state of the current timing run
type Stats struct {
	Laps       int64   `json:"laps"`       // Laps completed so far
	LastLapSec float64 `json:"last_lap_s"` // Duration of the most recent lap
	TotalSec   float64 `json:"total_s"`    // Accumulated elapsed time
	MeanSec    float64 `json:"mean_s"`     // Mean lap duration
	Running    bool    `json:"running"`    // Whether a run is in progress
}

// Server is the HTTP API server
type Server struct {
	manager    *storage.Manager
	config     *Config
	configMu   sync.RWMutex
	hub        *Hub
	httpServer *http.Server
	stats      *Stats
	statsMu    sync.RWMutex
}

// NewServer creates a new API server
func NewServer(manager *storage.Manager, port int) *Server {
	server := &Server{
		manager: manager,
		stats:   &Stats{},
		config: &Config{
			DefaultUnit:       "ms",
			RefreshIntervalMs: 1000,
			MaxLapsPerRequest: 10_000,
		},
		hub: NewHub(),
	}

	r := mux.NewRouter()

	// API endpoints
	r.HandleFunc("/api/sessions", server.listSessions).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}", server.getSession).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}/laps", server.getLaps).Methods(http.MethodGet)
	r.HandleFunc("/api/sessions/{id}/total", server.getTotal).Methods(http.MethodGet)
	r.HandleFunc("/api/config", server.handleConfig).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/api/stats", server.handleStats).Methods(http.MethodGet)

	// Prometheus endpoint
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// WebSocket endpoint
	r.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWs(server.hub, w, r)
	})

	// CORS middleware
	handler := corsMiddleware(r)

	server.httpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	return server
}

// Start starts the API server
func (s *Server) Start() error {
	// Start the WebSocket hub
	go s.hub.Run()

	log.Printf("API server listening on %s", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the API server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// BroadcastLap pushes a completed lap to all connected WebSocket clients and
// bumps the per-lap metrics.
func (s *Server) BroadcastLap(lap *storage.Lap) {
	lapsTotal.Inc()
	lastLapSeconds.Set(lap.Duration.Seconds())

	data, err := json.Marshal(map[string]interface{}{
		"type": "lap",
		"lap":  lap,
	})
	if err != nil {
		log.Printf("Failed to marshal lap: %v", err)
		return
	}

	s.hub.Broadcast(data)
}

// UpdateStats replaces the live run stats
func (s *Server) UpdateStats(stats *Stats) {
	elapsedSeconds.Set(stats.TotalSec)

	s.statsMu.Lock()
	s.stats = stats
	s.statsMu.Unlock()
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.manager.ListSessions(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, sessions)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.manager.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	writeJSON(w, session)
}

func (s *Server) getLaps(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	store, err := s.manager.OpenSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer store.Close()

	filter := lapFilterFromQuery(r)

	s.configMu.RLock()
	maxLaps := s.config.MaxLapsPerRequest
	s.configMu.RUnlock()
	if maxLaps > 0 && (filter.Limit <= 0 || filter.Limit > maxLaps) {
		filter.Limit = maxLaps
	}

	laps, err := store.ReadLaps(r.Context(), filter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, laps)
}

func (s *Server) getTotal(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	store, err := s.manager.OpenSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	defer store.Close()

	total, err := store.TotalDuration(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]interface{}{
		"total":   total,
		"seconds": total.Seconds(),
		"millis":  total.Milliseconds(),
		"micros":  total.Microseconds(),
		"nanos":   total.Nanoseconds(),
	})
}

func lapFilterFromQuery(r *http.Request) *storage.LapFilter {
	filter := &storage.LapFilter{}

	if v := r.URL.Query().Get("min_index"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			filter.MinIndex = &n
		}
	}

	if v := r.URL.Query().Get("max_index"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			filter.MaxIndex = &n
		}
	}

	if v := r.URL.Query().Get("min_duration_ns"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.MinDurationNs = &n
		}
	}

	if v := r.URL.Query().Get("max_duration_ns"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			filter.MaxDurationNs = &n
		}
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}

	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	return filter
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.configMu.RLock()
		config := s.config
		s.configMu.RUnlock()

		writeJSON(w, config)

	case http.MethodPost:
		var config Config
		if err := json.NewDecoder(r.Body).Decode(&config); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.configMu.Lock()
		s.config = &config
		s.configMu.Unlock()

		writeJSON(w, config)
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.statsMu.RLock()
	stats := s.stats
	s.statsMu.RUnlock()

	writeJSON(w, stats)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
