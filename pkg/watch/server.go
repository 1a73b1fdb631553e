package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// staleConnectionTimeout is how long the feed may stay disconnected before
// the health check fails.
const staleConnectionTimeout = 5 * time.Minute

// Stats tracks counters for the health endpoint.
type Stats struct {
	mu              sync.RWMutex
	prsSeen         map[string]bool
	prsAssigned     map[string]bool
	lastEventAt     time.Time
	lastConnectedAt time.Time
	disconnectedAt  time.Time
	events          int64
	connected       bool
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	LastEventAt     time.Time
	LastConnectedAt time.Time
	DisconnectedAt  time.Time
	Events          int64
	PRsSeen         int
	PRsAssigned     int
	Connected       bool
}

// NewStats creates an empty collector.
func NewStats() *Stats {
	return &Stats{
		prsSeen:     make(map[string]bool),
		prsAssigned: make(map[string]bool),
	}
}

// RecordEvent records an accepted event.
func (s *Stats) RecordEvent() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events++
	s.lastEventAt = time.Now()
}

// RecordPRSeen records a PR that was fetched.
func (s *Stats) RecordPRSeen(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prsSeen[ref] = true
}

// RecordPRAssigned records a PR that received reviewers.
func (s *Stats) RecordPRAssigned(ref string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prsAssigned[ref] = true
}

// SetConnected records the feed connection state.
func (s *Stats) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if connected {
		s.lastConnectedAt = time.Now()
	} else if s.connected {
		s.disconnectedAt = time.Now()
	}
	s.connected = connected
}

// Snapshot returns the current statistics.
func (s *Stats) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Events:          s.events,
		PRsSeen:         len(s.prsSeen),
		PRsAssigned:     len(s.prsAssigned),
		LastEventAt:     s.lastEventAt,
		LastConnectedAt: s.lastConnectedAt,
		DisconnectedAt:  s.disconnectedAt,
		Connected:       s.connected,
	}
}

// healthy reports whether the feed is connected or only briefly disconnected.
// A watcher that has never connected is still starting up.
func (s Snapshot) healthy(now time.Time) bool {
	if s.Connected || s.LastConnectedAt.IsZero() {
		return true
	}
	return now.Sub(s.DisconnectedAt) <= staleConnectionTimeout
}

// Handler serves /healthz for stats.
func Handler(stats *Stats) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		snap := stats.Snapshot()

		status := "ok"
		statusCode := http.StatusOK
		if !snap.healthy(time.Now()) {
			status = "stale"
			statusCode = http.StatusServiceUnavailable
		}

		lastEvent := "never"
		if !snap.LastEventAt.IsZero() {
			lastEvent = snap.LastEventAt.Format(time.RFC3339)
		}

		response := fmt.Sprintf("%s - %d events, %d PRs seen, %d PRs assigned (connected: %t, last event: %s)\n",
			status, snap.Events, snap.PRsSeen, snap.PRsAssigned, snap.Connected, lastEvent)

		w.WriteHeader(statusCode)
		if _, err := w.Write([]byte(response)); err != nil {
			slog.Warn("Failed to write health response", "component", "server", "error", err)
		}
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Random Reviewer\nHealth endpoint: /healthz\n")); err != nil {
			slog.Warn("Failed to write response", "component", "server", "error", err)
		}
	})

	return mux
}

// Serve runs the health server on port until ctx is cancelled.
func Serve(ctx context.Context, port string, stats *Stats) error {
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      Handler(stats),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Failed to shut down health server", "component", "server", "error", err)
		}
	}()

	slog.Info("Starting health server", "component", "server", "port", port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("health server failed: %w", err)
	}
	return nil
}
