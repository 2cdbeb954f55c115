// Package a2a implements the agent-to-agent transport: capability discovery
// via a well-known card path, task delegation over HTTP with an event-stream
// response, and the shared-secret auth gate in front of every agent service.
package a2a

// WellKnownCardPath is the unauthenticated discovery path every agent serves
// its capability card on.
const WellKnownCardPath = "/.well-known/agent-card.json"

// TasksPath is the task delegation endpoint relative to an agent's base URL.
const TasksPath = "/tasks"

// Operation is one capability advertised on an agent card.
type Operation struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// AgentCard is the capability descriptor published by a remote agent. A card
// is immutable once fetched.
type AgentCard struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Endpoint    string      `json:"endpoint"`
	Operations  []Operation `json:"operations,omitempty"`
}
