package mapping

import (
	"github.com/sarchlab/cachemap/hooking"
)

// HookPosRunStart is triggered before the first access. The hook Item is the
// Geometry of the run.
var HookPosRunStart = &hooking.HookPos{Name: "RunStart"}

// HookPosAccess is triggered after each access. The hook Item is the Event
// and the Detail is the State right after the access.
var HookPosAccess = &hooking.HookPos{Name: "Access"}

// HookPosRunEnd is triggered after the last access. The hook Item is the
// Stats of the run.
var HookPosRunEnd = &hooking.HookPos{Name: "RunEnd"}

// A Simulator replays an access trace on a freshly created cache.
type Simulator interface {
	hooking.Hookable

	// Name identifies the mapping discipline.
	Name() string

	// Validate reports a ConfigError if the geometry cannot be simulated.
	Validate(g Geometry) error

	// Run processes the trace in order. On a ConfigError no address is
	// processed and no hook is triggered.
	Run(g Geometry, trace []uint64) (Result, error)
}

// A Line is the content of one direct-mapped cache line.
type Line struct {
	Index   int    `json:"index"`
	Address uint64 `json:"address"`
	IsEmpty bool   `json:"is_empty"`
}

// State is the content of a cache. Direct-mapped caches fill Lines.
// Set-associative caches fill Sets, each from least to most recently used.
type State struct {
	Lines []Line     `json:"lines,omitempty"`
	Sets  [][]uint64 `json:"sets,omitempty"`
}

// Result is everything a run produces.
type Result struct {
	Simulator string   `json:"simulator"`
	Geometry  Geometry `json:"geometry"`
	Events    []Event  `json:"events"`
	Stats     Stats    `json:"stats"`
	Final     State    `json:"final"`
}

type stateTaker interface {
	takeState() State
}

// runTrace is the shared fold over the trace. access handles a single
// address and returns its event.
func runTrace(
	domain hookInvoker,
	g Geometry,
	trace []uint64,
	cache stateTaker,
	access func(seq int, addr uint64) Event,
) Result {
	withHooks := domain.NumHooks() > 0

	if withHooks {
		domain.invoke(HookPosRunStart, g, nil)
	}

	events := make([]Event, 0, len(trace))
	for seq, addr := range trace {
		event := access(seq, addr)
		events = append(events, event)

		if withHooks {
			domain.invoke(HookPosAccess, event, cache.takeState())
		}
	}

	stats := StatsFromEvents(events)

	if withHooks {
		domain.invoke(HookPosRunEnd, stats, nil)
	}

	return Result{
		Simulator: domain.Name(),
		Geometry:  g,
		Events:    events,
		Stats:     stats,
		Final:     cache.takeState(),
	}
}

type hookInvoker interface {
	Name() string
	NumHooks() int
	invoke(pos *hooking.HookPos, item, detail any)
}
