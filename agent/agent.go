package agent

import (
	"context"

	"github.com/whiteducksoftware/flock-go/core"
)

// Invocation carries everything an executor needs for one run: the agent's
// identity, the match group that triggered it and the output specs whose
// payloads it must produce.
type Invocation struct {
	Agent       string
	Description string
	Group       *core.MatchGroup
	Outputs     []*core.PublishSpec
}

// Executor produces the output payloads for one invocation, keyed by output
// type name. The dispatcher applies fan-out rules to the returned slices;
// executors only need to produce enough instances to satisfy their specs.
type Executor interface {
	Execute(ctx context.Context, inv *Invocation) (map[string][]any, error)
}

// Definition is a declaratively built agent. Build one through a Builder.
type Definition struct {
	name        string
	description string
	subs        []*core.Subscription
	outputs     []*core.PublishSpec
	executor    Executor
}

var _ core.Agent = (*Definition)(nil)

// Name returns the agent name.
func (d *Definition) Name() string { return d.name }

// Description returns the human-readable agent description.
func (d *Definition) Description() string { return d.description }

// Subscriptions returns the agent's consume declarations.
func (d *Definition) Subscriptions() []*core.Subscription { return d.subs }

// Outputs returns the agent's publish specs.
func (d *Definition) Outputs() []*core.PublishSpec { return d.outputs }

// Execute runs the agent's executor against a match group.
func (d *Definition) Execute(ctx context.Context, group *core.MatchGroup) (map[string][]any, error) {
	inv := &Invocation{
		Agent:       d.name,
		Description: d.description,
		Group:       group,
		Outputs:     d.outputs,
	}
	return d.executor.Execute(ctx, inv)
}
