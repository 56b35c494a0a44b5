package mapping

import (
	"github.com/sarchlab/cachemap/hooking"
	"github.com/sarchlab/cachemap/mapping/internal/tagging"
)

// DirectName is the name of the DirectMapSimulator.
const DirectName = "direct"

// DirectMapSimulator maps address a to line a mod TotalLines. A miss
// overwrites the line unconditionally.
type DirectMapSimulator struct {
	hooking.HookableBase
}

// NewDirectMapSimulator creates a DirectMapSimulator without hooks.
func NewDirectMapSimulator() *DirectMapSimulator {
	return &DirectMapSimulator{}
}

// Name returns "direct".
func (s *DirectMapSimulator) Name() string {
	return DirectName
}

// Validate requires a positive number of lines.
func (s *DirectMapSimulator) Validate(g Geometry) error {
	return g.ValidateDirect()
}

// Run replays the trace on an empty direct-mapped cache.
func (s *DirectMapSimulator) Run(g Geometry, trace []uint64) (Result, error) {
	if err := s.Validate(g); err != nil {
		return Result{}, err
	}

	cache := &directCache{lines: tagging.NewLineArray(g.TotalLines)}

	return runTrace(s, g, trace, cache, cache.access), nil
}

func (s *DirectMapSimulator) invoke(pos *hooking.HookPos, item, detail any) {
	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   item,
		Detail: detail,
	})
}

type directCache struct {
	lines *tagging.LineArray
}

func (c *directCache) access(seq int, addr uint64) Event {
	line, hit := c.lines.Lookup(addr)

	event := Event{
		Seq:     seq,
		Address: addr,
		Target:  line.Index,
	}

	if hit {
		event.Outcome = Hit
		return event
	}

	event.Outcome = Miss

	previous := c.lines.Fill(addr)
	if previous.IsValid {
		event.Evicted = previous.Address
		event.HasEvicted = true
	}

	return event
}

func (c *directCache) takeState() State {
	lines := c.lines.Snapshot()
	state := State{Lines: make([]Line, len(lines))}

	for i, l := range lines {
		state.Lines[i] = Line{
			Index:   l.Index,
			Address: l.Address,
			IsEmpty: !l.IsValid,
		}
	}

	return state
}

// RunDirect runs a hook-less DirectMapSimulator.
func RunDirect(g Geometry, trace []uint64) (Result, error) {
	return NewDirectMapSimulator().Run(g, trace)
}
