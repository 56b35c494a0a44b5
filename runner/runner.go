// Package runner feeds access traces through the mapping simulators, one
// discipline at a time or both side by side.
package runner

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sarchlab/cachemap/hooking"
	"github.com/sarchlab/cachemap/mapping"
)

// ErrUnknownMode is returned for mode names that no simulator serves.
var ErrUnknownMode = errors.New("unknown mapping mode")

// Mode selects the mapping discipline of a run.
type Mode string

// The supported modes.
const (
	ModeDirect         Mode = "direct"
	ModeSetAssociative Mode = "associative"
	ModeCompare        Mode = "compare"
)

var modeAliases = map[string]Mode{
	"direct":          ModeDirect,
	"direto":          ModeDirect,
	"associative":     ModeSetAssociative,
	"set-associative": ModeSetAssociative,
	"associativo":     ModeSetAssociative,
	"compare":         ModeCompare,
	"comparar":        ModeCompare,
}

// ParseMode accepts the mode names case-insensitively, including the
// Portuguese menu names direto, associativo and comparar.
func ParseMode(s string) (Mode, error) {
	mode, ok := modeAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}

	return mode, nil
}

// Comparison holds the outcome of both disciplines on the same trace.
type Comparison struct {
	Direct         mapping.Result `json:"direct"`
	SetAssociative mapping.Result `json:"set_associative"`
}

// Runner owns one simulator per discipline. Simulators keep no state
// between runs, so a Runner can be reused for any number of traces.
type Runner struct {
	direct         mapping.Simulator
	setAssociative mapping.Simulator
}

// Run replays the trace under a single mode. ModeCompare is not a single
// mode; use Compare for it.
func (r *Runner) Run(
	mode Mode,
	g mapping.Geometry,
	trace []uint64,
) (mapping.Result, error) {
	sim, err := r.simulatorFor(mode)
	if err != nil {
		return mapping.Result{}, err
	}

	return sim.Run(g, trace)
}

// Compare replays the trace under both disciplines. Both geometries are
// validated before any access is processed and every configuration error is
// reported.
func (r *Runner) Compare(
	g mapping.Geometry,
	trace []uint64,
) (Comparison, error) {
	err := errors.Join(
		r.direct.Validate(g),
		r.setAssociative.Validate(g),
	)
	if err != nil {
		return Comparison{}, err
	}

	direct, err := r.direct.Run(g, trace)
	if err != nil {
		return Comparison{}, err
	}

	setAssociative, err := r.setAssociative.Run(g, trace)
	if err != nil {
		return Comparison{}, err
	}

	return Comparison{
		Direct:         direct,
		SetAssociative: setAssociative,
	}, nil
}

// Simulators returns the simulators in a fixed order, direct first.
func (r *Runner) Simulators() []mapping.Simulator {
	return []mapping.Simulator{r.direct, r.setAssociative}
}

func (r *Runner) simulatorFor(mode Mode) (mapping.Simulator, error) {
	switch mode {
	case ModeDirect:
		return r.direct, nil
	case ModeSetAssociative:
		return r.setAssociative, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
}

// Builder can build Runners.
type Builder struct {
	hooks []hooking.Hook
}

// MakeBuilder creates a new builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithHook registers a hook on every simulator of the runner.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	hooks := make([]hooking.Hook, len(b.hooks), len(b.hooks)+1)
	copy(hooks, b.hooks)
	b.hooks = append(hooks, hook)

	return b
}

// Build creates a Runner.
func (b Builder) Build() *Runner {
	r := &Runner{
		direct:         mapping.NewDirectMapSimulator(),
		setAssociative: mapping.NewSetAssociativeSimulator(),
	}

	for _, sim := range r.Simulators() {
		for _, hook := range b.hooks {
			sim.AcceptHook(hook)
		}
	}

	return r
}
