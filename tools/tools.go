// Package tools is the invocation layer of each domain agent: every
// operation runs its primary action behind the retry executor, optionally
// performs an advisory write-back, and always renders a fixed user-safe
// string. No raw error ever leaves a tool.
package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"

	"shopmesh/a2a"
	"shopmesh/contract"
)

const dbErrorText = "Database error occurred. Please try again later."

// Result is the outcome of one tool invocation. Text is always safe to show
// to a user. Advisory carries a swallowed secondary failure (the payment
// write-back) so callers and tests can observe it without the primary
// outcome being reported as failed.
type Result struct {
	Text     string
	Advisory error
}

// Tool is one domain operation an agent advertises and executes.
type Tool struct {
	Name        string
	Description string
	Run         func(ctx context.Context, args map[string]string) Result
}

// Dispatcher routes delegated tasks to registered tools and doubles as the
// agent's task handler.
type Dispatcher struct {
	tools map[string]Tool
}

// NewDispatcher registers the given tools.
func NewDispatcher(tools ...Tool) *Dispatcher {
	d := &Dispatcher{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		d.tools[t.Name] = t
	}
	return d
}

// Operations lists the registered tools as agent card operations, sorted by
// name so cards are stable.
func (d *Dispatcher) Operations() []a2a.Operation {
	ops := make([]a2a.Operation, 0, len(d.tools))
	for _, t := range d.tools {
		ops = append(ops, a2a.Operation{Name: t.Name, Description: t.Description})
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Name < ops[j].Name })
	return ops
}

// Handle implements a2a.TaskHandler. Unknown operations are the only way a
// task fails; tool execution itself always yields safe text.
func (d *Dispatcher) Handle(ctx context.Context, task a2a.Task) (string, error) {
	tool, ok := d.tools[task.Operation]
	if !ok {
		return "", fmt.Errorf("%w: unknown operation %q", contract.ErrValidation, task.Operation)
	}

	res := tool.Run(ctx, task.Args)
	if res.Advisory != nil {
		log.Warn().Err(res.Advisory).Str("operation", task.Operation).Msg("advisory write-back failed")
	}
	return res.Text, nil
}
