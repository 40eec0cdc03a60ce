// Package web provides an HTTP server for browsing and validating bills.
//
// The server loads every bill file below a directory and exposes them through
// a small JSON API. When watching is enabled it reloads on file changes and
// notifies connected clients over Server-Sent Events.
//
// SECURITY WARNING: This server has no authentication and should only be
// bound to localhost (127.0.0.1). Do not expose it to untrusted networks.
// Only files discovered below the bills directory can be requested.
package web

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/robinvdvleuten/billtext/loader"
	"github.com/robinvdvleuten/billtext/logger"
	"github.com/robinvdvleuten/billtext/telemetry"
)

type Server struct {
	Port         int
	Host         string
	Version      string
	CommitSHA    string
	WatchEnabled bool

	loader *loader.Loader
	dir    string
	log    zerolog.Logger

	mu    sync.RWMutex
	files map[string]*loader.File // keyed by slash-separated path relative to dir
	names []string

	// SSE clients for broadcasting reload events
	sseClients map[chan string]struct{}
	sseMu      sync.Mutex
}

func New(port int, dir string, ldr *loader.Loader) *Server {
	return NewWithVersion(port, dir, ldr, "", "")
}

func NewWithVersion(port int, dir string, ldr *loader.Loader, version, commitSHA string) *Server {
	return &Server{
		Port:       port,
		Host:       "127.0.0.1",
		Version:    version,
		CommitSHA:  commitSHA,
		loader:     ldr,
		dir:        dir,
		log:        zerolog.Nop(),
		files:      make(map[string]*loader.File),
		sseClients: make(map[chan string]struct{}),
	}
}

// Start loads the bills directory and serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.log = logger.FromContext(ctx)

	timer := telemetry.FromContext(ctx).Start(fmt.Sprintf("web.start %s:%d", s.Host, s.Port))
	loadTimer := timer.Child("web.load " + filepath.Base(s.dir))
	err := s.reload(ctx)
	loadTimer.End()
	timer.End()
	if err != nil {
		return fmt.Errorf("failed to load bills: %w", err)
	}

	if s.WatchEnabled {
		if err := s.startWatcher(ctx); err != nil {
			return fmt.Errorf("failed to start file watcher: %w", err)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.Host, s.Port),
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) setupRouter() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/version", s.handleVersion)
	mux.HandleFunc("GET /api/bills", s.handleListBills)
	mux.HandleFunc("GET /api/bills/{name...}", s.handleGetBill)
	mux.HandleFunc("GET /api/reports/{name...}", s.handleGetReport)
	mux.HandleFunc("POST /api/validate", s.handleValidate)
	mux.HandleFunc("GET /api/events", s.handleSSE)

	return mux
}

// reload loads every bill file below the directory and swaps the snapshot.
// Caller must NOT hold the mutex.
func (s *Server) reload(ctx context.Context) error {
	loaded, err := s.loader.LoadDir(ctx, s.dir)
	if err != nil {
		return err
	}

	files := make(map[string]*loader.File, len(loaded))
	names := make([]string, 0, len(loaded))
	for _, f := range loaded {
		name := s.relativeName(f.Filename)
		files[name] = f
		names = append(names, name)
	}

	s.mu.Lock()
	s.files = files
	s.names = names
	s.mu.Unlock()

	s.log.Debug().Int("files", len(names)).Str("dir", s.dir).Msg("bills loaded")
	return nil
}

func (s *Server) relativeName(path string) string {
	rel, err := filepath.Rel(s.dir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (s *Server) lookup(name string) (*loader.File, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[name]
	return f, ok
}

// startWatcher watches the bills directory tree. fsnotify does not recurse,
// so every subdirectory is added on its own.
func (s *Server) startWatcher(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	s.watchTree(watcher)

	go s.runWatcher(ctx, watcher)

	return nil
}

func (s *Server) watchTree(watcher *fsnotify.Watcher) {
	_ = filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if path != s.dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			s.log.Warn().Err(err).Str("dir", path).Msg("failed to watch directory")
		}
		return nil
	})
}

// runWatcher processes file system events with debouncing.
func (s *Server) runWatcher(ctx context.Context, watcher *fsnotify.Watcher) {
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
		_ = watcher.Close()
	}()

	// Editors often write files in multiple steps
	const debounceDelay = 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			// Remove and Rename are common in atomic saves
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}

			debounceTimer = time.AfterFunc(debounceDelay, func() {
				s.handleFileChange(ctx, watcher)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Error().Err(err).Msg("file watcher error")
		}
	}
}

// handleFileChange reloads the bills and picks up new subdirectories.
func (s *Server) handleFileChange(ctx context.Context, watcher *fsnotify.Watcher) {
	if err := s.reload(ctx); err != nil {
		s.log.Error().Err(err).Msg("failed to reload bills")
		return
	}

	s.watchTree(watcher)
	s.broadcast("reload")
}

// handleSSE handles Server-Sent Events connections for real-time updates.
func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	clientChan := make(chan string, 10)

	s.sseMu.Lock()
	s.sseClients[clientChan] = struct{}{}
	s.sseMu.Unlock()

	defer func() {
		s.sseMu.Lock()
		delete(s.sseClients, clientChan)
		s.sseMu.Unlock()
	}()

	_, _ = fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-clientChan:
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}
}

// broadcast sends an event to all connected SSE clients.
func (s *Server) broadcast(event string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()

	for clientChan := range s.sseClients {
		select {
		case clientChan <- event:
		default:
			// Client buffer full, skip
		}
	}
}
