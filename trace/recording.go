package trace

import (
	"context"
	"fmt"

	"github.com/sarchlab/cachemap/datarecording"
	"github.com/sarchlab/cachemap/mapping"
)

// A RecordedRun is a run read back from a recording made by a DBTracer.
// Final is left empty, since only the accesses are recorded.
type RecordedRun struct {
	ID string
	mapping.Result
}

// MapTables binds the tables written by a DBTracer to their row types.
func MapTables(reader datarecording.DataReader) {
	reader.MapTable(RunTable, runEntry{})
	reader.MapTable(EventTable, eventEntry{})
	reader.MapTable(StatsTable, statsEntry{})
}

// LoadRuns reads every recorded run in start order. If runID is not empty,
// only that run is returned.
func LoadRuns(
	ctx context.Context,
	reader datarecording.DataReader,
	runID string,
) ([]RecordedRun, error) {
	MapTables(reader)

	params := datarecording.QueryParams{OrderBy: "RunID ASC"}
	if runID != "" {
		params.Where = "RunID = ?"
		params.Args = []any{runID}
	}

	rows, _, err := reader.Query(ctx, RunTable, params)
	if err != nil {
		return nil, err
	}

	runs := make([]RecordedRun, 0, len(rows))
	for _, row := range rows {
		run, err := loadRun(ctx, reader, row.(*runEntry))
		if err != nil {
			return nil, err
		}

		runs = append(runs, run)
	}

	return runs, nil
}

func loadRun(
	ctx context.Context,
	reader datarecording.DataReader,
	entry *runEntry,
) (RecordedRun, error) {
	run := RecordedRun{ID: entry.RunID}
	run.Simulator = entry.Simulator
	run.Geometry = mapping.Geometry{
		TotalLines: entry.TotalLines,
		SetSize:    entry.SetSize,
	}

	byRun := datarecording.QueryParams{
		Where: "RunID = ?",
		Args:  []any{entry.RunID},
	}

	eventParams := byRun
	eventParams.OrderBy = "Seq ASC"

	rows, _, err := reader.Query(ctx, EventTable, eventParams)
	if err != nil {
		return run, err
	}

	for _, row := range rows {
		e, err := row.(*eventEntry).event()
		if err != nil {
			return run, fmt.Errorf("run %s: %w", entry.RunID, err)
		}

		run.Events = append(run.Events, e)
	}

	rows, _, err = reader.Query(ctx, StatsTable, byRun)
	if err != nil {
		return run, err
	}

	// A run interrupted before its end has no stats row.
	if len(rows) == 0 {
		run.Stats = mapping.StatsFromEvents(run.Events)
		return run, nil
	}

	s := rows[0].(*statsEntry)
	run.Stats = mapping.Stats{
		TotalAccesses: s.TotalAccesses,
		Hits:          s.Hits,
		Misses:        s.Misses,
	}

	return run, nil
}

func (e *eventEntry) event() (mapping.Event, error) {
	out := mapping.Event{
		Seq:        e.Seq,
		Address:    uint64(e.Address),
		Target:     e.Target,
		Evicted:    uint64(e.Evicted),
		HasEvicted: e.HasEvicted,
	}

	err := out.Outcome.UnmarshalText([]byte(e.Outcome))

	return out, err
}
