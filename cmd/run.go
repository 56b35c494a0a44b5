package cmd

import (
	"github.com/sarchlab/cachemap/config"
	"github.com/sarchlab/cachemap/runner"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func (a *app) newRunCommand(
	mode runner.Mode,
	use string,
	aliases []string,
	short string,
) *cobra.Command {
	c := &cobra.Command{
		Use:     use,
		Aliases: aliases,
		Short:   short,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd, mode)
		},
	}

	if mode != runner.ModeDirect {
		c.Flags().IntVarP(&a.opts.setSize, "set-size", "s", 0,
			"number of lines per set")
	}

	return c
}

func (a *app) newConfiguredRunCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "run",
		Short: "Run the mode named by the configuration",
		Long: `Run takes the mode from the config file or CACHEMAP_MODE. ` +
			`The mode is direct, associative or compare.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}

			mode, err := runner.ParseMode(conf.Mode)
			if err != nil {
				return err
			}

			return a.runWithConfig(cmd, mode, conf)
		},
	}

	c.Flags().IntVarP(&a.opts.setSize, "set-size", "s", 0,
		"number of lines per set")

	return c
}

func (a *app) run(cmd *cobra.Command, mode runner.Mode) error {
	c, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	return a.runWithConfig(cmd, mode, c)
}

func (a *app) runWithConfig(
	cmd *cobra.Command,
	mode runner.Mode,
	c config.Config,
) error {
	r, err := a.buildRunner(cmd, c)
	if err != nil {
		return err
	}
	defer a.cleanup()

	g := c.Geometry()

	a.logger.WithFields(logrus.Fields{
		"mode":        mode,
		"total_lines": g.TotalLines,
		"set_size":    g.SetSize,
		"accesses":    len(c.Trace),
	}).Debug("Starting simulation")

	out := cmd.OutOrStdout()

	if mode == runner.ModeCompare {
		cmp, err := r.Compare(g, c.Trace)
		if err != nil {
			return err
		}

		printResult(out, cmp.Direct)
		printResult(out, cmp.SetAssociative)
		printComparison(out, cmp)

		return nil
	}

	result, err := r.Run(mode, g, c.Trace)
	if err != nil {
		return err
	}

	printResult(out, result)

	return nil
}
