package a2a

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"shopmesh/contract"
	"shopmesh/retry"
)

func quickDelegatePolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		Multiplier:   2,
		MaxDelay:     5 * time.Millisecond,
		Retryable:    transientTransport,
	}
}

// agentBackend is a scriptable remote agent for client tests.
type agentBackend struct {
	card      AgentCard
	cardHits  atomic.Int64
	taskHits  atomic.Int64
	tasksFunc func(w http.ResponseWriter, r *http.Request)
}

func (b *agentBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(WellKnownCardPath, func(w http.ResponseWriter, _ *http.Request) {
		b.cardHits.Add(1)
		_ = json.NewEncoder(w).Encode(b.card)
	})
	mux.HandleFunc(TasksPath, func(w http.ResponseWriter, r *http.Request) {
		b.taskHits.Add(1)
		b.tasksFunc(w, r)
	})
	return mux
}

func succeedTasks(content string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var task Task
		_ = json.NewDecoder(r.Body).Decode(&task)
		enc := json.NewEncoder(w)
		_ = enc.Encode(TaskEvent{TaskID: task.ID, Status: TaskStatusInFlight})
		_ = enc.Encode(TaskEvent{TaskID: task.ID, Status: TaskStatusSucceeded, Content: content, Final: true})
	}
}

func newBackend(name string) *agentBackend {
	return &agentBackend{
		card: AgentCard{
			Name:       name,
			Endpoint:   "http://localhost",
			Operations: []Operation{{Name: "get_product_info"}},
		},
		tasksFunc: succeedTasks("ok"),
	}
}

func TestNewClientFetchesCardOnce(t *testing.T) {
	t.Parallel()

	backend := newBackend("product_catalog_agent")
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client, err := NewClient(context.Background(), ClientConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	for i := 0; i < 3; i++ {
		if got := client.Card().Name; got != "product_catalog_agent" {
			t.Fatalf("Card().Name = %q", got)
		}
	}
	if hits := backend.cardHits.Load(); hits != 1 {
		t.Fatalf("card fetches = %d, want 1", hits)
	}
}

func TestNewClientRejectsBadConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(context.Background(), ClientConfig{}); !errors.Is(err, contract.ErrValidation) {
		t.Fatalf("empty base url error = %v, want ErrValidation", err)
	}
	if _, err := NewClient(context.Background(), ClientConfig{BaseURL: "::not-a-url"}); !errors.Is(err, contract.ErrValidation) {
		t.Fatalf("invalid base url error = %v, want ErrValidation", err)
	}
}

func TestNewClientUnauthorizedCardIsNotRetried(t *testing.T) {
	t.Parallel()

	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewClient(context.Background(), ClientConfig{BaseURL: srv.URL}, WithRetryPolicy(quickDelegatePolicy()))
	if !errors.Is(err, contract.ErrUnauthorized) {
		t.Fatalf("NewClient() error = %v, want ErrUnauthorized", err)
	}
	if hits.Load() != 1 {
		t.Fatalf("card fetches = %d, want 1", hits.Load())
	}
}

func TestSendTaskReturnsFinalContent(t *testing.T) {
	t.Parallel()

	backend := newBackend("product_catalog_agent")
	backend.tasksFunc = succeedTasks("Product: iPhone 15 Pro")
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client, err := NewClient(context.Background(), ClientConfig{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	got, err := client.SendTask(context.Background(), NewTask("sess", "msg", "get_product_info", nil))
	if err != nil {
		t.Fatalf("SendTask() error = %v", err)
	}
	if got != "Product: iPhone 15 Pro" {
		t.Fatalf("SendTask() = %q", got)
	}
}

func TestSendTaskSendsInternalKey(t *testing.T) {
	t.Parallel()

	backend := newBackend("product_catalog_agent")
	var gotKey atomic.Value
	backend.tasksFunc = func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.Header.Get(InternalKeyHeader))
		succeedTasks("ok")(w, r)
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client, err := NewClient(context.Background(), ClientConfig{BaseURL: srv.URL, APIKey: "secret"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	if _, err := client.SendTask(context.Background(), NewTask("sess", "msg", "get_product_info", nil)); err != nil {
		t.Fatalf("SendTask() error = %v", err)
	}
	if got := gotKey.Load(); got != "secret" {
		t.Fatalf("internal key header = %v, want %q", got, "secret")
	}
}

func TestSendTaskRetriesServerErrors(t *testing.T) {
	t.Parallel()

	backend := newBackend("product_catalog_agent")
	backend.tasksFunc = func(w http.ResponseWriter, r *http.Request) {
		if backend.taskHits.Load() < 3 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		succeedTasks("recovered")(w, r)
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client, err := NewClient(context.Background(), ClientConfig{BaseURL: srv.URL}, WithRetryPolicy(quickDelegatePolicy()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	got, err := client.SendTask(context.Background(), NewTask("sess", "msg", "get_product_info", nil))
	if err != nil {
		t.Fatalf("SendTask() error = %v", err)
	}
	if got != "recovered" {
		t.Fatalf("SendTask() = %q", got)
	}
	if hits := backend.taskHits.Load(); hits != 3 {
		t.Fatalf("task posts = %d, want 3", hits)
	}
}

func TestSendTaskFailedFinalEventIsTerminal(t *testing.T) {
	t.Parallel()

	backend := newBackend("product_catalog_agent")
	backend.tasksFunc = func(w http.ResponseWriter, r *http.Request) {
		var task Task
		_ = json.NewDecoder(r.Body).Decode(&task)
		enc := json.NewEncoder(w)
		_ = enc.Encode(TaskEvent{TaskID: task.ID, Status: TaskStatusInFlight})
		_ = enc.Encode(TaskEvent{TaskID: task.ID, Status: TaskStatusFailed, Content: "unknown operation", Final: true})
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client, err := NewClient(context.Background(), ClientConfig{BaseURL: srv.URL}, WithRetryPolicy(quickDelegatePolicy()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.SendTask(context.Background(), NewTask("sess", "msg", "bogus", nil))
	if !errors.Is(err, contract.ErrValidation) {
		t.Fatalf("SendTask() error = %v, want ErrValidation", err)
	}
	if hits := backend.taskHits.Load(); hits != 1 {
		t.Fatalf("task posts = %d, want 1", hits)
	}
}

func TestSendTaskStreamWithoutFinalEventFails(t *testing.T) {
	t.Parallel()

	backend := newBackend("product_catalog_agent")
	backend.tasksFunc = func(w http.ResponseWriter, r *http.Request) {
		var task Task
		_ = json.NewDecoder(r.Body).Decode(&task)
		_ = json.NewEncoder(w).Encode(TaskEvent{TaskID: task.ID, Status: TaskStatusInFlight})
	}
	srv := httptest.NewServer(backend.handler())
	defer srv.Close()

	client, err := NewClient(context.Background(), ClientConfig{BaseURL: srv.URL}, WithRetryPolicy(quickDelegatePolicy()))
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}

	_, err = client.SendTask(context.Background(), NewTask("sess", "msg", "get_product_info", nil))
	if !errors.Is(err, contract.ErrUpstream) {
		t.Fatalf("SendTask() error = %v, want ErrUpstream", err)
	}
}
