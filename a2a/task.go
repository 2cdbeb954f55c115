package a2a

import "github.com/google/uuid"

// TaskStatus is the lifecycle state of one delegated task. Transitions are
// monotonic: pending -> in-flight -> succeeded | failed.
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusInFlight  TaskStatus = "in-flight"
	TaskStatusSucceeded TaskStatus = "succeeded"
	TaskStatusFailed    TaskStatus = "failed"
)

// Terminal reports whether the status admits no further transition.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusSucceeded || s == TaskStatusFailed
}

// Task is one delegated unit of work sent from the coordinator to a target
// agent. Operation and Args carry the structured call the classifier planned;
// Message keeps the originating utterance for context.
type Task struct {
	ID        string            `json:"id"`
	SessionID string            `json:"session_id,omitempty"`
	Message   string            `json:"message,omitempty"`
	Operation string            `json:"operation"`
	Args      map[string]string `json:"args,omitempty"`
	Status    TaskStatus        `json:"status,omitempty"`
}

// NewTask builds a pending task with a fresh correlation id.
func NewTask(sessionID, message, operation string, args map[string]string) Task {
	return Task{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Message:   message,
		Operation: operation,
		Args:      args,
		Status:    TaskStatusPending,
	}
}

// TaskEvent is one element of the event stream a tasks endpoint responds
// with. Only the event marked final carries the response content; callers
// discard intermediate progress events.
type TaskEvent struct {
	TaskID  string     `json:"task_id"`
	Status  TaskStatus `json:"status"`
	Content string     `json:"content,omitempty"`
	Final   bool       `json:"final"`
}
