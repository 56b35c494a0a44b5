package cmd

import (
	"fmt"

	"github.com/sarchlab/cachemap/datarecording"
	"github.com/sarchlab/cachemap/trace"
	"github.com/spf13/cobra"
)

func (a *app) newReportCommand() *cobra.Command {
	var runID string

	cmd := &cobra.Command{
		Use:   "report <recording>",
		Short: "Print the runs stored in a recording",
		Long: `report reads a file written with --record and prints every ` +
			`recorded run the way the simulation commands do. The final ` +
			`cache content is not recorded and is not printed.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.report(cmd, args[0], runID)
		},
	}

	cmd.Flags().StringVar(&runID, "run", "", "print only the run with this ID")

	return cmd
}

func (a *app) report(cmd *cobra.Command, path, runID string) error {
	reader, err := datarecording.NewReader(path)
	if err != nil {
		return err
	}
	defer reader.Close()

	runs, err := trace.LoadRuns(cmd.Context(), reader, runID)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if len(runs) == 0 {
		if runID != "" {
			return fmt.Errorf("run %s not found in %s", runID, path)
		}

		return fmt.Errorf("no runs recorded in %s", path)
	}

	a.logger.WithField("path", path).WithField("runs", len(runs)).
		Debug("Loaded recording")

	w := cmd.OutOrStdout()
	for _, run := range runs {
		fmt.Fprintf(w, "Run %s\n", run.ID)
		printResult(w, run.Result)
	}

	return nil
}
