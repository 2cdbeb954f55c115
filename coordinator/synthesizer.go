package coordinator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"shopmesh/inference"
)

// Part is one delegate's contribution to the aggregate reply. Err is set
// when the call failed after retries; Text is then empty.
type Part struct {
	Agent string
	Text  string
	Err   error
}

// Synthesizer composes the final user-facing reply from delegate parts.
type Synthesizer interface {
	Synthesize(ctx context.Context, utterance string, parts []Part) string
}

// JoinSynthesizer concatenates delegate answers in plan order. A failed part
// is replaced with a short unavailability notice naming the agent, so one
// broken backend never hides its siblings' answers.
type JoinSynthesizer struct{}

func (JoinSynthesizer) Synthesize(_ context.Context, _ string, parts []Part) string {
	sections := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Err != nil {
			sections = append(sections, unavailableText(p.Agent))
			continue
		}
		sections = append(sections, p.Text)
	}
	return strings.Join(sections, "\n\n")
}

func unavailableText(agent string) string {
	friendly := strings.ReplaceAll(agent, "_", " ")
	return fmt.Sprintf("The %s is currently unreachable. Please try again later.", friendly)
}

const synthesisSystemPrompt = `You are a customer support assistant for an online store.
You are given factual answers collected from internal specialist services.
Compose a single helpful reply to the customer using only those facts.
Do not invent prices, stock levels, shipping times, or payment details.
If a section says a service is unreachable, relay that plainly.`

// InferenceSynthesizer rewrites the joined delegate answers into one fluent
// reply via the inference provider. Every factual sentence still comes from
// the delegates; the model only rephrases. Any provider failure falls back
// to the plain join so a flaky provider cannot break replies.
type InferenceSynthesizer struct {
	client   *inference.Client
	fallback JoinSynthesizer
}

// NewInferenceSynthesizer wraps client. A nil client yields the plain join.
func NewInferenceSynthesizer(client *inference.Client) Synthesizer {
	if client == nil {
		return JoinSynthesizer{}
	}
	return &InferenceSynthesizer{client: client}
}

func (s *InferenceSynthesizer) Synthesize(ctx context.Context, utterance string, parts []Part) string {
	joined := s.fallback.Synthesize(ctx, utterance, parts)

	var b strings.Builder
	fmt.Fprintf(&b, "Customer message: %s\n\nCollected facts:\n", utterance)
	for _, p := range parts {
		if p.Err != nil {
			fmt.Fprintf(&b, "- [%s] unreachable\n", p.Agent)
			continue
		}
		fmt.Fprintf(&b, "- [%s] %s\n", p.Agent, p.Text)
	}

	reply, err := s.client.Complete(ctx, synthesisSystemPrompt, b.String())
	if err != nil || strings.TrimSpace(reply) == "" {
		log.Warn().Err(err).Msg("reply synthesis failed, using joined delegate answers")
		return joined
	}
	return reply
}
