// Package trace provides hooks that write the accesses of a simulation into
// text logs or databases.
package trace

import (
	"fmt"
	"log"
	"strings"

	"github.com/rs/xid"
	"github.com/sarchlab/cachemap/datarecording"
	"github.com/sarchlab/cachemap/hooking"
	"github.com/sarchlab/cachemap/mapping"
)

type runEntry struct {
	RunID      string
	Simulator  string
	TotalLines int
	SetSize    int
}

// Addresses are stored as the int64 with the same bits, since SQLite
// integers are signed. Addresses from 1<<63 up read back negative in SQL.
type eventEntry struct {
	RunID      string
	Seq        int
	Address    int64
	Target     int
	Outcome    string
	Evicted    int64
	HasEvicted bool
}

type statsEntry struct {
	RunID         string
	TotalAccesses int
	Hits          int
	Misses        int
	HitRate       float64
	HasHitRate    bool
}

// Table names used by the DBTracer.
const (
	RunTable   = "runs"
	EventTable = "events"
	StatsTable = "stats"
)

func simulatorName(ctx hooking.HookCtx) string {
	if sim, ok := ctx.Domain.(mapping.Simulator); ok {
		return sim.Name()
	}

	return "unknown"
}

// A Tracer is a hook that writes one line per access into a log.
type Tracer struct {
	logger    *log.Logger
	showState bool
}

// NewTracer creates a new Tracer. If showState is set, the cache content is
// printed after each access.
func NewTracer(logger *log.Logger, showState bool) *Tracer {
	t := new(Tracer)
	t.logger = logger
	t.showState = showState

	return t
}

// Func writes the hook context into the log.
func (t *Tracer) Func(ctx hooking.HookCtx) {
	name := simulatorName(ctx)

	switch ctx.Pos {
	case mapping.HookPosRunStart:
		g := ctx.Item.(mapping.Geometry)
		t.logger.Printf("start, %s, lines=%d, set_size=%d\n",
			name, g.TotalLines, g.SetSize)
	case mapping.HookPosAccess:
		t.logAccess(name, ctx.Item.(mapping.Event), ctx.Detail)
	case mapping.HookPosRunEnd:
		t.logger.Printf("end, %s, %s\n", name, ctx.Item.(mapping.Stats))
	}
}

func (t *Tracer) logAccess(name string, e mapping.Event, detail any) {
	evicted := "-"
	if e.HasEvicted {
		evicted = fmt.Sprintf("%d", e.Evicted)
	}

	t.logger.Printf("access, %s, %d, %d, %d, %s, %s\n",
		name, e.Seq, e.Address, e.Target, e.Outcome, evicted)

	if !t.showState {
		return
	}

	state, ok := detail.(mapping.State)
	if !ok {
		return
	}

	t.logger.Printf("state, %s, %s\n", name, FormatState(state))
}

// FormatState renders the cache content on a single line. Empty direct lines
// print as "-".
func FormatState(state mapping.State) string {
	parts := []string{}

	for _, l := range state.Lines {
		if l.IsEmpty {
			parts = append(parts, fmt.Sprintf("%d:-", l.Index))
		} else {
			parts = append(parts, fmt.Sprintf("%d:%d", l.Index, l.Address))
		}
	}

	for i, set := range state.Sets {
		residents := make([]string, 0, len(set))
		for _, addr := range set {
			residents = append(residents, fmt.Sprintf("%d", addr))
		}

		parts = append(parts,
			fmt.Sprintf("%d:[%s]", i, strings.Join(residents, " ")))
	}

	return strings.Join(parts, " ")
}

// A DBTracer is a hook that records runs, events and statistics through a
// data recorder.
type DBTracer struct {
	dataRecorder datarecording.DataRecorder
	currentRuns  map[string]string
	runIDs       []string
}

// NewDBTracer creates a DBTracer and the tables it writes into.
func NewDBTracer(dataRecorder datarecording.DataRecorder) *DBTracer {
	t := &DBTracer{
		dataRecorder: dataRecorder,
		currentRuns:  make(map[string]string),
	}

	t.dataRecorder.CreateTable(RunTable, runEntry{})
	t.dataRecorder.CreateTable(EventTable, eventEntry{})
	t.dataRecorder.CreateTable(StatsTable, statsEntry{})

	return t
}

// RunIDs returns the IDs of the runs recorded so far, in start order.
func (t *DBTracer) RunIDs() []string {
	return t.runIDs
}

// Func records the hook context.
func (t *DBTracer) Func(ctx hooking.HookCtx) {
	name := simulatorName(ctx)

	switch ctx.Pos {
	case mapping.HookPosRunStart:
		t.startRun(name, ctx.Item.(mapping.Geometry))
	case mapping.HookPosAccess:
		t.recordEvent(name, ctx.Item.(mapping.Event))
	case mapping.HookPosRunEnd:
		t.endRun(name, ctx.Item.(mapping.Stats))
	}
}

func (t *DBTracer) startRun(name string, g mapping.Geometry) {
	runID := xid.New().String()
	t.currentRuns[name] = runID
	t.runIDs = append(t.runIDs, runID)

	t.dataRecorder.InsertData(RunTable, runEntry{
		RunID:      runID,
		Simulator:  name,
		TotalLines: g.TotalLines,
		SetSize:    g.SetSize,
	})
}

func (t *DBTracer) recordEvent(name string, e mapping.Event) {
	runID, ok := t.currentRuns[name]
	if !ok {
		return
	}

	t.dataRecorder.InsertData(EventTable, eventEntry{
		RunID:      runID,
		Seq:        e.Seq,
		Address:    int64(e.Address),
		Target:     e.Target,
		Outcome:    e.Outcome.String(),
		Evicted:    int64(e.Evicted),
		HasEvicted: e.HasEvicted,
	})
}

func (t *DBTracer) endRun(name string, s mapping.Stats) {
	runID, ok := t.currentRuns[name]
	if !ok {
		return
	}

	rate, err := s.HitRate()

	t.dataRecorder.InsertData(StatsTable, statsEntry{
		RunID:         runID,
		TotalAccesses: s.TotalAccesses,
		Hits:          s.Hits,
		Misses:        s.Misses,
		HitRate:       rate,
		HasHitRate:    err == nil,
	})

	delete(t.currentRuns, name)
}
