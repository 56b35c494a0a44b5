// Package cmd provides the command-line interface of cachemap.
package cmd

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/sarchlab/cachemap/config"
	"github.com/sarchlab/cachemap/datarecording"
	"github.com/sarchlab/cachemap/runner"
	"github.com/sarchlab/cachemap/trace"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

type options struct {
	configFile string
	envFile    string
	logLevel   string
	recordPath string
	traceLog   string
	showState  bool

	totalLines int
	setSize    int
	addresses  []uint
}

type app struct {
	opts   options
	logger *logrus.Logger

	recorder datarecording.DataRecorder
	cleanups []func()
}

// NewRootCommand builds the cachemap command tree.
func NewRootCommand() *cobra.Command {
	a := &app{logger: logrus.New()}

	rootCmd := &cobra.Command{
		Use:   "cachemap",
		Short: "cachemap simulates direct-mapped and set-associative caches.",
		Long: `cachemap replays a trace of memory addresses on a cache and ` +
			`reports every hit and miss. It supports direct mapping and ` +
			`set-associative mapping with LRU replacement, and can compare ` +
			`both on the same trace.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupLogger(cmd.ErrOrStderr())
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.opts.configFile, "config", "",
		"YAML file describing the run")
	flags.StringVar(&a.opts.envFile, "env-file", ".env",
		"file of CACHEMAP_* variables loaded if it exists")
	flags.StringVar(&a.opts.logLevel, "log-level", "warn",
		"diagnostic log level")
	flags.StringVar(&a.opts.recordPath, "record", "",
		"record runs into <path>.sqlite3")
	flags.StringVar(&a.opts.traceLog, "trace-log", "",
		"write one line per access to this file, - for stdout")
	flags.BoolVarP(&a.opts.showState, "verbose", "v", false,
		"include the cache content after each access in the trace log")
	flags.IntVarP(&a.opts.totalLines, "lines", "l", 0,
		"number of cache lines")
	flags.UintSliceVarP(&a.opts.addresses, "addresses", "a", nil,
		"memory addresses to access, in order")

	rootCmd.AddCommand(
		a.newRunCommand(runner.ModeDirect, "direct", []string{"direto"},
			"Simulate a direct-mapped cache"),
		a.newRunCommand(runner.ModeSetAssociative, "associative",
			[]string{"associativo"},
			"Simulate a set-associative cache with LRU replacement"),
		a.newRunCommand(runner.ModeCompare, "compare", []string{"comparar"},
			"Run both mappings on the same trace"),
		a.newConfiguredRunCommand(),
		a.newServeCommand(),
		a.newReportCommand(),
	)

	return rootCmd
}

// Execute runs the command line and exits through atexit so that recorders
// are flushed.
func Execute() {
	err := NewRootCommand().Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func (a *app) setupLogger(w io.Writer) error {
	level, err := logrus.ParseLevel(a.opts.logLevel)
	if err != nil {
		return err
	}

	a.logger.SetOutput(w)
	a.logger.SetLevel(level)
	a.logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	return nil
}

// loadConfig merges, from lowest to highest priority, the defaults, the
// config file, the environment and the command-line flags.
func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	c := config.Default()

	if a.opts.configFile != "" {
		var err error

		c, err = config.Load(a.opts.configFile)
		if err != nil {
			return c, err
		}
	}

	err := c.ApplyEnv(a.opts.envFile)
	if err != nil {
		return c, err
	}

	flags := cmd.Flags()
	if flags.Changed("lines") {
		c.TotalLines = a.opts.totalLines
	}

	if flags.Changed("set-size") {
		c.SetSize = a.opts.setSize
	}

	if flags.Changed("addresses") {
		c.Trace = make([]uint64, len(a.opts.addresses))
		for i, addr := range a.opts.addresses {
			c.Trace[i] = uint64(addr)
		}
	}

	if flags.Changed("record") {
		c.RecordPath = a.opts.recordPath
	}

	return c, nil
}

// buildRunner wires the tracers requested on the command line.
func (a *app) buildRunner(cmd *cobra.Command, c config.Config) (
	*runner.Runner,
	error,
) {
	b := runner.MakeBuilder()

	if a.opts.traceLog != "" {
		w, err := a.openTraceLog(cmd)
		if err != nil {
			return nil, err
		}

		logger := log.New(w, "", 0)
		b = b.WithHook(trace.NewTracer(logger, a.opts.showState))
	}

	if c.RecordPath != "" {
		a.recorder = datarecording.New(c.RecordPath)
		a.cleanups = append(a.cleanups, func() {
			err := a.recorder.Close()
			if err != nil {
				a.logger.WithError(err).Error("Failed to close recording")
			}
		})

		b = b.WithHook(trace.NewDBTracer(a.recorder))

		a.logger.WithField("path", c.RecordPath+".sqlite3").
			Info("Recording simulation")
	}

	return b.Build(), nil
}

func (a *app) openTraceLog(cmd *cobra.Command) (io.Writer, error) {
	if a.opts.traceLog == "-" {
		return cmd.OutOrStdout(), nil
	}

	f, err := os.Create(a.opts.traceLog)
	if err != nil {
		return nil, fmt.Errorf("creating trace log: %w", err)
	}

	a.cleanups = append(a.cleanups, func() { f.Close() })

	return f, nil
}

func (a *app) cleanup() {
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		a.cleanups[i]()
	}

	a.cleanups = nil
	a.recorder = nil
}
