package main

import (
	"context"
	"errors"
	"os"

	"github.com/eastham/adsb-actions/lib/actions"
	"github.com/eastham/adsb-actions/lib/engine"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func runReplay(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("replay requires exactly one file argument")
	}
	path := c.Args().Get(0)

	e, rs, dispatcher, err := buildEngine(c)
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	src, err := engine.NewFileSource(path)
	if err != nil {
		return err
	}
	e.SetSource(src)

	log.Info().Str("file", path).Msg("replaying")
	if err := e.Run(context.Background()); err != nil {
		return err
	}

	actions.PrintFinalReport(os.Stdout, rs)
	return nil
}
