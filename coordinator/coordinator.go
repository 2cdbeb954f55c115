package coordinator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"shopmesh/a2a"
)

// ErrCoordinator marks configuration failures in this package.
var ErrCoordinator = errors.New("coordinator")

const defaultDelegateTimeout = 30 * time.Second

const helpReply = "I can help with product details, stock availability, shipping estimates, " +
	"package tracking, and payments. What would you like to know?"

// Coordinator owns the conversational loop: it classifies each utterance,
// fans the plan out to the registered agents, waits for every call, and
// synthesizes one reply.
type Coordinator struct {
	registry   *Registry
	classifier Classifier
	synth      Synthesizer
	sessions   *SessionStore
	timeout    time.Duration
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithClassifier swaps the routing strategy.
func WithClassifier(c Classifier) Option {
	return func(co *Coordinator) { co.classifier = c }
}

// WithSynthesizer swaps reply composition.
func WithSynthesizer(s Synthesizer) Option {
	return func(co *Coordinator) { co.synth = s }
}

// WithDelegateTimeout bounds each individual agent call.
func WithDelegateTimeout(d time.Duration) Option {
	return func(co *Coordinator) { co.timeout = d }
}

// New constructs a Coordinator over the registry.
func New(registry *Registry, opts ...Option) (*Coordinator, error) {
	if registry == nil {
		return nil, fmt.Errorf("%w: registry is required", ErrCoordinator)
	}
	co := &Coordinator{
		registry:   registry,
		classifier: NewKeywordClassifier(),
		synth:      JoinSynthesizer{},
		sessions:   NewSessionStore(),
		timeout:    defaultDelegateTimeout,
	}
	for _, opt := range opts {
		opt(co)
	}
	if co.timeout <= 0 {
		return nil, fmt.Errorf("%w: delegate timeout must be positive", ErrCoordinator)
	}
	return co, nil
}

// StartSession opens a conversation for userID and returns its id.
func (co *Coordinator) StartSession(userID string) string {
	return co.sessions.Create(userID).ID
}

// Session returns a snapshot of the conversation.
func (co *Coordinator) Session(id string) (*Session, error) {
	return co.sessions.Get(id)
}

// HandleMessage runs one conversational turn: record the utterance, plan,
// fan out, synthesize, record the reply.
func (co *Coordinator) HandleMessage(ctx context.Context, sessionID, text string) (string, error) {
	if _, err := co.sessions.Get(sessionID); err != nil {
		return "", err
	}
	if err := co.sessions.Append(sessionID, RoleUser, text); err != nil {
		return "", err
	}

	plan := co.classifier.Classify(text)
	log.Debug().Str("session_id", sessionID).Int("delegations", len(plan)).Msg("utterance classified")

	var reply string
	if len(plan) == 0 {
		reply = helpReply
	} else {
		parts := co.fanOut(ctx, sessionID, text, plan)
		reply = co.synth.Synthesize(ctx, text, parts)
	}

	if err := co.sessions.Append(sessionID, RoleAssistant, reply); err != nil {
		return "", err
	}
	return reply, nil
}

// fanOut dispatches every planned delegation concurrently and waits for all
// of them. A failing sibling never cancels the others; its Part carries the
// error instead.
func (co *Coordinator) fanOut(ctx context.Context, sessionID, text string, plan []Delegation) []Part {
	parts := make([]Part, len(plan))
	var wg sync.WaitGroup

	for i, d := range plan {
		wg.Add(1)
		go func(i int, d Delegation) {
			defer wg.Done()
			parts[i] = co.callDelegate(ctx, sessionID, text, d)
		}(i, d)
	}
	wg.Wait()

	return parts
}

func (co *Coordinator) callDelegate(ctx context.Context, sessionID, text string, d Delegation) Part {
	delegate, ok := co.registry.Lookup(d.Agent)
	if !ok {
		log.Error().Str("agent", d.Agent).Msg("no delegate registered for planned agent")
		return Part{Agent: d.Agent, Err: fmt.Errorf("%w: unknown agent %q", ErrCoordinator, d.Agent)}
	}

	callCtx, cancel := context.WithTimeout(ctx, co.timeout)
	defer cancel()

	task := a2a.NewTask(sessionID, text, d.Operation, d.Args)
	answer, err := delegate.SendTask(callCtx, task)
	if err != nil {
		log.Error().Err(err).
			Str("agent", d.Agent).
			Str("operation", d.Operation).
			Str("task_id", task.ID).
			Msg("delegate call failed")
		return Part{Agent: d.Agent, Err: err}
	}
	return Part{Agent: d.Agent, Text: answer}
}
