// Command adsb-actions runs the rule engine over a stream of ADS-B
// position reports, either replaying a recorded file or serving a live
// NDJSON feed on stdin, dispatching configured actions as rules match.
package main

import (
	"os"

	"github.com/eastham/adsb-actions/lib/logging"
	"github.com/eastham/adsb-actions/lib/monitoring"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

var version = "dev"

func main() {
	app := cli.NewApp()
	app.Version = version
	app.Name = "adsb-actions"
	app.Usage = "Match ADS-B position streams against a rule set and dispatch actions."
	app.Description = `adsb-actions tracks aircraft from a stream of position reports, evaluates a ` +
		`declarative rule set against each flight's region membership, proximity to other flights, and ` +
		`attributes, and dispatches the matching rule's configured actions (callbacks, webhooks, shell ` +
		`commands, notes).` +
		"\n\n" +
		`example: adsb-actions --config=config.yaml replay sample.ndjson`

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to the application config YAML",
			EnvVars: []string{"ADSB_CONFIG"},
		},
	}
	logging.IncludeVerbosityFlags(app)
	monitoring.IncludeMonitoringFlags(app, 9610)

	app.Commands = []*cli.Command{
		{
			Name:      "replay",
			Usage:     "process a newline-delimited JSON report file end to end, then print a final report",
			ArgsUsage: "<file.ndjson>",
			Action:    runReplay,
		},
		{
			Name:   "serve",
			Usage:  "process newline-delimited JSON reports from stdin until EOF or interrupted",
			Action: runServe,
		},
		{
			Name:   "docs",
			Usage:  "print this command's documentation as markdown",
			Hidden: true,
			Action: runDocs,
		},
	}

	app.Before = func(c *cli.Context) error {
		logging.SetLoggingLevel(c)
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("adsb-actions exited with an error")
		os.Exit(1)
	}
}

func runDocs(c *cli.Context) error {
	md, err := c.App.ToMarkdown()
	if err != nil {
		return err
	}
	_, err = os.Stdout.WriteString(md)
	return err
}
