package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/sarchlab/cachemap/mapping"
	"github.com/sarchlab/cachemap/runner"
)

func printResult(w io.Writer, result mapping.Result) {
	sets := result.Simulator == mapping.SetAssociativeName
	targetName := "Line"
	if sets {
		targetName = "Set"
	}

	fmt.Fprintf(w, "== %s (lines=%d", result.Simulator,
		result.Geometry.TotalLines)
	if sets {
		fmt.Fprintf(w, ", set size=%d", result.Geometry.SetSize)
	}
	fmt.Fprint(w, ")\n")

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "#\tAddress\t%s\tOutcome\tEvicted\n", targetName)

	for _, e := range result.Events {
		evicted := "-"
		if e.HasEvicted {
			evicted = strconv.FormatUint(e.Evicted, 10)
		}

		fmt.Fprintf(tw, "%d\t%d\t%d\t%s\t%s\n",
			e.Seq, e.Address, e.Target, e.Outcome, evicted)
	}

	tw.Flush()

	fmt.Fprintln(w)
	if result.Final.Lines != nil || result.Final.Sets != nil {
		printState(w, result.Final)
		fmt.Fprintln(w)
	}
	printStats(w, result.Stats)
	fmt.Fprintln(w)
}

func printState(w io.Writer, state mapping.State) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	if state.Sets != nil {
		fmt.Fprint(tw, "Set\tResidents (LRU first)\n")

		for i, set := range state.Sets {
			fmt.Fprintf(tw, "%d\t%v\n", i, set)
		}
	} else {
		fmt.Fprint(tw, "Line\tAddress\n")

		for _, l := range state.Lines {
			addr := "-"
			if !l.IsEmpty {
				addr = strconv.FormatUint(l.Address, 10)
			}

			fmt.Fprintf(tw, "%d\t%s\n", l.Index, addr)
		}
	}

	tw.Flush()
}

func printStats(w io.Writer, s mapping.Stats) {
	fmt.Fprintf(w, "Total accesses: %d\n", s.TotalAccesses)
	fmt.Fprintf(w, "Hits: %d\n", s.Hits)
	fmt.Fprintf(w, "Misses: %d\n", s.Misses)
	fmt.Fprintf(w, "Hit rate: %s\n", s.FormatHitRate())
}

func printComparison(w io.Writer, cmp runner.Comparison) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprint(tw, "Mapping\tHits\tMisses\tHit rate\n")

	for _, r := range []mapping.Result{cmp.Direct, cmp.SetAssociative} {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n",
			r.Simulator, r.Stats.Hits, r.Stats.Misses,
			r.Stats.FormatHitRate())
	}

	tw.Flush()
}
