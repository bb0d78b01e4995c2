// Package listener runs the inbound chat-events HTTP server. Threaded
// chat messages of the form "PREFIX - task title" become new tracker
// tasks, routed by a roster of user and project mappings.
package listener

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pulse/internal/tracker"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 30 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second

	taskNote = "Auto-created from the chat listener"
)

// TaskCreator is the slice of the tracker client the listener needs.
type TaskCreator interface {
	CreateTask(ctx context.Context, req tracker.TaskCreateRequest) (tracker.Task, error)
}

// Server handles chat event callbacks.
type Server struct {
	addr   string
	tasks  TaskCreator
	roster *Roster
	logger *slog.Logger
	now    func() time.Time
}

// New creates a listener server.
func New(addr string, tasks TaskCreator, roster *Roster, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		addr:   addr,
		tasks:  tasks,
		roster: roster,
		logger: logger,
		now:    time.Now,
	}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info("starting listener", "addr", s.addr)
	server := &http.Server{
		Addr:              s.addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return server.ListenAndServe()
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /events", s.handleEvents)
	// Some chat platforms only deliver to the callback root.
	mux.HandleFunc("POST /{$}", s.handleEvents)

	return s.withRequestLogging(mux)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type eventCallback struct {
	Type      string `json:"type"`
	Challenge string `json:"challenge"`
	Event     struct {
		Type     string `json:"type"`
		ThreadTS string `json:"thread_ts"`
		Username string `json:"username"`
		Text     string `json:"text"`
	} `json:"event"`
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	var payload eventCallback
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}

	if payload.Type == "url_verification" {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(payload.Challenge))
		return
	}

	if payload.Event.Type != "message" || payload.Event.ThreadTS == "" {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	assignee, ok := s.roster.AssigneeFor(payload.Event.Username)
	if !ok {
		s.logger.Warn("unmapped chat user", "username", payload.Event.Username)
		writeJSON(w, http.StatusOK, map[string]string{"error": "unmapped user"})
		return
	}

	created := 0
	for _, line := range strings.Split(strings.TrimSpace(payload.Event.Text), "\n") {
		prefix, title, ok := splitTaskLine(line)
		if !ok {
			continue
		}
		projectGID, ok := s.roster.ProjectFor(prefix)
		if !ok {
			s.logger.Debug("unmapped project prefix", "prefix", prefix)
			continue
		}

		req := tracker.TaskCreateRequest{
			Name:     title,
			Assignee: assignee,
			Projects: []string{projectGID},
			DueOn:    s.now().UTC().AddDate(0, 0, 1).Format("2006-01-02"),
			Notes:    taskNote,
		}
		if _, err := s.tasks.CreateTask(r.Context(), req); err != nil {
			s.logger.Warn("task creation failed", "project", projectGID, "title", title, "error", err)
			continue
		}
		created++
	}

	writeJSON(w, http.StatusOK, map[string]any{"status": "processed", "created": created})
}

// splitTaskLine parses "PREFIX - task title" into its parts.
func splitTaskLine(line string) (prefix, title string, ok bool) {
	before, after, found := strings.Cut(line, " - ")
	if !found {
		return "", "", false
	}
	prefix = strings.TrimSpace(before)
	title = strings.TrimSpace(after)
	if prefix == "" || title == "" {
		return "", "", false
	}
	return prefix, title, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
