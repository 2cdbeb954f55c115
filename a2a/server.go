package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// TaskHandler executes one delegated task and returns the user-visible
// response text. A returned error marks the task failed; its text is sent to
// the caller, so handlers must only return safe messages.
type TaskHandler func(ctx context.Context, task Task) (string, error)

// Server exposes one domain agent over HTTP: its capability card on the
// well-known path and task delegation on /tasks, behind the auth gate.
type Server struct {
	card    AgentCard
	handler TaskHandler
	auth    AuthConfig
}

// NewServer builds an agent server for the given card and task handler.
func NewServer(card AgentCard, handler TaskHandler, auth AuthConfig) (*Server, error) {
	if card.Name == "" {
		return nil, errors.New("agent card name is required")
	}
	if handler == nil {
		return nil, errors.New("task handler is required")
	}
	return &Server{card: card, handler: handler, auth: auth}, nil
}

// Handler returns the full HTTP surface of the agent, auth gate included.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(WellKnownCardPath, s.handleCard)
	mux.HandleFunc(TasksPath, s.handleTasks)
	return RequireInternalKey(s.auth, mux)
}

// Start serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	log.Info().Str("agent", s.card.Name).Str("addr", addr).Msg("agent server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleCard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.card)
}

// handleTasks runs the task through the handler and streams lifecycle events
// as newline-delimited JSON. The task moves pending -> in-flight, then to
// exactly one terminal event marked final.
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var task Task
	if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
		http.Error(w, "malformed task envelope", http.StatusBadRequest)
		return
	}
	if task.ID == "" {
		http.Error(w, "task id is required", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/x-ndjson")
	enc := json.NewEncoder(w)
	flusher, _ := w.(http.Flusher)

	writeEvent := func(ev TaskEvent) {
		_ = enc.Encode(ev)
		if flusher != nil {
			flusher.Flush()
		}
	}

	writeEvent(TaskEvent{TaskID: task.ID, Status: TaskStatusInFlight})

	content, err := s.handler(r.Context(), task)
	if err != nil {
		log.Warn().Err(err).Str("task_id", task.ID).Str("operation", task.Operation).Msg("task failed")
		writeEvent(TaskEvent{TaskID: task.ID, Status: TaskStatusFailed, Content: err.Error(), Final: true})
		return
	}

	writeEvent(TaskEvent{TaskID: task.ID, Status: TaskStatusSucceeded, Content: content, Final: true})
}
