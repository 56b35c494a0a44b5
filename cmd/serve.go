package cmd

import (
	"os"
	"os/signal"

	"github.com/pkg/browser"
	"github.com/sarchlab/cachemap/monitoring"
	"github.com/spf13/cobra"
)

func (a *app) newServeCommand() *cobra.Command {
	var (
		port        int
		openBrowser bool
	)

	c := &cobra.Command{
		Use:   "serve",
		Short: "Serve simulations over HTTP until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := a.loadConfig(cmd)
			if err != nil {
				return err
			}

			r, err := a.buildRunner(cmd, conf)
			if err != nil {
				return err
			}
			defer a.cleanup()

			m := monitoring.NewMonitor(r).
				WithLogger(a.logger).
				WithPortNumber(port)

			url, err := m.StartServer()
			if err != nil {
				return err
			}
			defer m.StopServer()

			cmd.Printf("Serving simulations on %s\n", url)

			if openBrowser {
				err = browser.OpenURL(url + "/api/simulators")
				if err != nil {
					a.logger.WithError(err).Warn("Cannot open browser")
				}
			}

			interrupt := make(chan os.Signal, 1)
			signal.Notify(interrupt, os.Interrupt)
			<-interrupt

			return nil
		},
	}

	c.Flags().IntVarP(&port, "port", "p", 0,
		"port to listen on, 0 picks a free port")
	c.Flags().BoolVar(&openBrowser, "open", false,
		"open the server in a web browser")

	return c
}
