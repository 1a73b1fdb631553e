// Package watch assigns reviewers in response to live pull request events
// delivered by the sprinkler WebSocket service.
//
//nolint:govet // fieldalignment after grouping related fields
package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/sprinkler/pkg/client"

	"github.com/codeGROOVE-dev/random-reviewer/pkg/assign"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/cache"
	"github.com/codeGROOVE-dev/random-reviewer/pkg/types"
)

const (
	eventChannelSize     = 100              // Buffer size for event channel
	eventDedupWindow     = 5 * time.Second  // Time window for deduplicating events
	eventMapMaxSize      = 1000             // Maximum entries in event dedup map
	eventMapCleanupAge   = 1 * time.Hour    // Age threshold for cleaning up old entries
	maxRetries           = 3                // Max attempts per PR event
	maxRetryDelay        = 10 * time.Second // Max delay between attempts
	maxReconnectAttempts = 100              // Outer restarts of the sprinkler client
	reconnectBackoff     = 30 * time.Second // Initial backoff between restarts
	maxReconnectBackoff  = 5 * time.Minute
	documentCacheTTL     = 5 * time.Minute // How long a repository's reviewer document is reused
)

// Source reads pull requests and repository files.
type Source interface {
	PullRequest(ctx context.Context, owner, repo string, prNumber int) (*types.PullRequest, error)
	FileContents(ctx context.Context, owner, repo, path string) ([]byte, error)
}

// Config controls a Watcher.
type Config struct {
	TokenProvider func(ctx context.Context) (string, error) // Resolved on every connect
	Org           string
	ConfigPath    string // Reviewer document path inside each repository
	Count         int
}

// Watcher subscribes to pull request events for one organization and
// assigns reviewers to each new pull request.
type Watcher struct {
	mu                sync.Mutex
	lastEventMap      map[string]time.Time // Track last event per URL to dedupe
	now               func() time.Time
	source            Source
	runner            *assign.Runner
	stats             *Stats
	documents         *cache.Cache[[]byte] // Raw reviewer documents by repository
	client            *client.Client
	eventChan         chan string // PR URLs that need processing
	cfg               Config
	reconnectAttempts int
	isConnected       bool
}

// New creates a Watcher.
func New(cfg Config, source Source, runner *assign.Runner) *Watcher {
	return &Watcher{
		cfg:          cfg,
		source:       source,
		runner:       runner,
		stats:        NewStats(),
		documents:    cache.New[[]byte](documentCacheTTL),
		now:          time.Now,
		eventChan:    make(chan string, eventChannelSize),
		lastEventMap: make(map[string]time.Time),
	}
}

// Stats returns the watcher's counters.
func (w *Watcher) Stats() *Stats {
	return w.stats
}

// Run connects to the event feed and processes events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.cfg.Org == "" {
		return errors.New("no organization to watch")
	}

	slog.Info("Starting event monitor for org", "component", "watch", "org", w.cfg.Org)
	go w.processEvents(ctx)
	go w.documents.RunCleanup(ctx, documentCacheTTL)

	w.manageConnection(ctx)

	w.mu.Lock()
	wsClient := w.client
	w.mu.Unlock()
	if wsClient != nil {
		wsClient.Stop()
	}

	slog.Info("Event monitor stopped", "component", "watch", "org", w.cfg.Org)
	if errors.Is(ctx.Err(), context.Canceled) {
		return nil
	}
	return ctx.Err()
}

// manageConnection restarts the sprinkler client whenever it gives up.
// The client reconnects internally; this loop only handles fatal exits.
func (w *Watcher) manageConnection(ctx context.Context) {
	for ctx.Err() == nil {
		backoff := 5 * time.Second
		if err := w.connect(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}

			w.mu.Lock()
			w.reconnectAttempts++
			attempts := w.reconnectAttempts
			w.mu.Unlock()

			if attempts >= maxReconnectAttempts {
				slog.Error("Max reconnection attempts reached, giving up", "component", "watch", "org", w.cfg.Org, "attempts", attempts)
				return
			}

			backoff = min(reconnectBackoff*time.Duration(attempts), maxReconnectBackoff)
			slog.Warn("WebSocket client gave up, will restart after backoff",
				"component", "watch",
				"org", w.cfg.Org,
				"attempt", attempts,
				"backoff", backoff,
				"error", err)
		} else {
			w.mu.Lock()
			w.reconnectAttempts = 0
			w.mu.Unlock()
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

// connect runs one sprinkler client until it stops.
func (w *Watcher) connect(ctx context.Context) error {
	if w.cfg.TokenProvider == nil {
		return errors.New("no token provider configured")
	}
	token, err := w.cfg.TokenProvider(ctx)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}

	config := client.Config{
		ServerURL:      "wss://" + client.DefaultServerAddress + "/ws",
		Organization:   w.cfg.Org,
		Token:          token,
		Logger:         slog.Default().With("component", "sprinkler"),
		EventTypes:     []string{"pull_request"},
		UserEventsOnly: false,
		Verbose:        false,
		NoReconnect:    false,
		OnConnect: func() {
			w.mu.Lock()
			w.isConnected = true
			w.mu.Unlock()
			w.stats.SetConnected(true)
			slog.Info("WebSocket connected", "component", "watch", "org", w.cfg.Org)
		},
		OnDisconnect: func(err error) {
			w.mu.Lock()
			wasConnected := w.isConnected
			w.isConnected = false
			w.mu.Unlock()
			w.stats.SetConnected(false)
			if err != nil && !errors.Is(err, context.Canceled) && wasConnected {
				slog.Warn("WebSocket disconnected", "component", "watch", "org", w.cfg.Org, "error", err)
			}
		},
		OnEvent: func(event client.Event) {
			w.handleEvent(event)
		},
	}

	wsClient, err := client.New(config)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	w.mu.Lock()
	w.client = wsClient
	w.mu.Unlock()

	startTime := time.Now()
	if err := wsClient.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("WebSocket client stopped with error",
			"component", "watch",
			"org", w.cfg.Org,
			"uptime", time.Since(startTime).Round(time.Second),
			"error", err)
		return err
	}

	slog.Info("WebSocket client stopped", "component", "watch", "org", w.cfg.Org, "uptime", time.Since(startTime).Round(time.Second))
	return ctx.Err()
}

// handleEvent filters, deduplicates and queues an incoming event.
// It reports whether the event was queued.
func (w *Watcher) handleEvent(event client.Event) bool {
	if event.Type != "pull_request" {
		return false
	}

	if event.URL == "" {
		slog.Warn("Received PR event with empty URL", "component", "watch")
		return false
	}

	ref, err := parsePRURL(event.URL)
	if err != nil {
		slog.Warn("Failed to parse PR URL", "component", "watch", "url", event.URL, "error", err)
		return false
	}

	if !strings.EqualFold(ref.owner, w.cfg.Org) {
		slog.Debug("Ignoring event for different org", "component", "watch", "event_org", ref.owner, "org", w.cfg.Org)
		return false
	}

	w.mu.Lock()
	now := w.now()
	if lastSeen, ok := w.lastEventMap[event.URL]; ok && now.Sub(lastSeen) < eventDedupWindow {
		w.mu.Unlock()
		return false
	}
	w.lastEventMap[event.URL] = now

	if len(w.lastEventMap) > eventMapMaxSize {
		cutoff := now.Add(-eventMapCleanupAge)
		for url, ts := range w.lastEventMap {
			if ts.Before(cutoff) {
				delete(w.lastEventMap, url)
			}
		}
	}
	w.mu.Unlock()

	w.stats.RecordEvent()
	slog.Info("PR event received", "component", "watch", "url", event.URL)

	select {
	case w.eventChan <- event.URL:
		return true
	default:
		slog.Warn("Event channel full, dropping event", "component", "watch", "url", event.URL)
		return false
	}
}

// processEvents handles queued events one at a time.
func (w *Watcher) processEvents(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Event processor panic", "component", "watch", "panic", r)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case prURL := <-w.eventChan:
			w.processEvent(ctx, prURL)
		}
	}
}

// prRef holds a parsed PR reference.
type prRef struct {
	owner  string
	repo   string
	number int
}

// parsePRURL extracts owner, repo, and PR number from URL.
// URL format: https://github.com/owner/repo/pull/123
func parsePRURL(url string) (*prRef, error) {
	const minParts = 7
	parts := strings.Split(url, "/")
	if len(parts) < minParts || parts[2] != "github.com" || parts[5] != "pull" {
		return nil, fmt.Errorf("invalid GitHub PR URL format: %s", url)
	}

	owner := parts[3]
	repo := parts[4]
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid GitHub PR URL format: %s", url)
	}

	var number int
	if _, err := fmt.Sscanf(parts[6], "%d", &number); err != nil || number <= 0 {
		return nil, fmt.Errorf("invalid PR number in URL: %s", url)
	}

	return &prRef{owner: owner, repo: repo, number: number}, nil
}
