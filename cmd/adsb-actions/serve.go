package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/eastham/adsb-actions/lib/actions"
	"github.com/eastham/adsb-actions/lib/engine"
	"github.com/eastham/adsb-actions/lib/logging"
	"github.com/eastham/adsb-actions/lib/monitoring"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func runServe(c *cli.Context) error {
	logging.ConfigureForCli()
	monitoring.RunWebServer(c)

	e, rs, dispatcher, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	monitoring.HandleFunc("/flights", flightsDebugHandler(e))

	e.SetSource(engine.NewFileSourceFromReader(os.Stdin))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutting down")
		e.Stop()
		cancel()
	}()

	err = e.Run(ctx)
	actions.PrintFinalReport(os.Stdout, rs)
	return err
}
