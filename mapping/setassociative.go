package mapping

import (
	"github.com/sarchlab/cachemap/hooking"
	"github.com/sarchlab/cachemap/mapping/internal/tagging"
)

// SetAssociativeSimulator maps address a to set a mod NumSets. Each set holds
// up to SetSize addresses and evicts the least recently used one when a miss
// arrives at a full set.
type SetAssociativeSimulator struct {
	hooking.HookableBase

	victimFinder tagging.VictimFinder
}

// SetAssociativeName is the name of the SetAssociativeSimulator.
const SetAssociativeName = "set-associative"

// NewSetAssociativeSimulator creates a SetAssociativeSimulator with LRU
// replacement and without hooks.
func NewSetAssociativeSimulator() *SetAssociativeSimulator {
	return &SetAssociativeSimulator{
		victimFinder: tagging.NewLRUVictimFinder(),
	}
}

// Name returns "set-associative".
func (s *SetAssociativeSimulator) Name() string {
	return SetAssociativeName
}

// Validate requires positive sizes and a set size that divides the number of
// lines.
func (s *SetAssociativeSimulator) Validate(g Geometry) error {
	return g.ValidateSetAssociative()
}

// Run replays the trace on an empty set-associative cache.
func (s *SetAssociativeSimulator) Run(
	g Geometry,
	trace []uint64,
) (Result, error) {
	if err := s.Validate(g); err != nil {
		return Result{}, err
	}

	cache := &setAssociativeCache{
		tags:         tagging.NewSetArray(g.NumSets(), g.SetSize),
		victimFinder: s.victimFinder,
	}

	return runTrace(s, g, trace, cache, cache.access), nil
}

func (s *SetAssociativeSimulator) invoke(
	pos *hooking.HookPos,
	item, detail any,
) {
	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    pos,
		Item:   item,
		Detail: detail,
	})
}

type setAssociativeCache struct {
	tags         *tagging.SetArray
	victimFinder tagging.VictimFinder
}

func (c *setAssociativeCache) access(seq int, addr uint64) Event {
	_, setID := c.tags.GetSet(addr)

	event := Event{
		Seq:     seq,
		Address: addr,
		Target:  setID,
	}

	block, hit := c.tags.Lookup(addr)
	if hit {
		event.Outcome = Hit
		c.tags.Visit(block)

		return event
	}

	event.Outcome = Miss

	victim := c.victimFinder.FindVictim(c.tags, addr)
	if victim.IsValid {
		event.Evicted = victim.Address
		event.HasEvicted = true
	}

	victim.Address = addr
	victim.IsValid = true
	c.tags.Update(victim)
	c.tags.Visit(victim)

	return event
}

func (c *setAssociativeCache) takeState() State {
	return State{Sets: c.tags.Snapshot()}
}

// RunSetAssociative runs a hook-less SetAssociativeSimulator.
func RunSetAssociative(g Geometry, trace []uint64) (Result, error) {
	return NewSetAssociativeSimulator().Run(g, trace)
}
