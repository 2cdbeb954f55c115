package coordinator

import (
	"errors"
	"testing"

	"shopmesh/contract"
)

func TestSessionStoreCreateAndGet(t *testing.T) {
	t.Parallel()

	s := NewSessionStore()
	created := s.Create("user-1")
	if created.ID == "" {
		t.Fatal("Create() returned empty session id")
	}
	if created.UserID != "user-1" {
		t.Fatalf("UserID = %q", created.UserID)
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not stamped")
	}

	got, err := s.Get(created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ID != created.ID || len(got.History) != 0 {
		t.Fatalf("Get() = %+v", got)
	}
}

func TestSessionStoreUnknownSession(t *testing.T) {
	t.Parallel()

	s := NewSessionStore()
	if _, err := s.Get("missing"); !errors.Is(err, contract.ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
	if err := s.Append("missing", RoleUser, "hi"); !errors.Is(err, contract.ErrNotFound) {
		t.Fatalf("Append() error = %v, want ErrNotFound", err)
	}
}

func TestSessionStoreAppendKeepsOrder(t *testing.T) {
	t.Parallel()

	s := NewSessionStore()
	sess := s.Create("user-1")

	if err := s.Append(sess.ID, RoleUser, "first"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append(sess.ID, RoleAssistant, "second"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := s.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got.History) != 2 {
		t.Fatalf("history length = %d, want 2", len(got.History))
	}
	if got.History[0].Role != RoleUser || got.History[0].Content != "first" {
		t.Fatalf("history[0] = %+v", got.History[0])
	}
	if got.History[1].Role != RoleAssistant || got.History[1].Content != "second" {
		t.Fatalf("history[1] = %+v", got.History[1])
	}
}

func TestSessionStoreGetReturnsCopy(t *testing.T) {
	t.Parallel()

	s := NewSessionStore()
	sess := s.Create("user-1")
	if err := s.Append(sess.ID, RoleUser, "hi"); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	got, err := s.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	got.History[0].Content = "mutated"

	again, err := s.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if again.History[0].Content != "hi" {
		t.Fatalf("stored session mutated through returned copy: %+v", again.History[0])
	}
}
