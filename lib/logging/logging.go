// Package logging wires zerolog's global logger to urfave/cli flags, the
// same verbosity-flag convention every pw_* command in the teacher's
// toolchain shares.
package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// IncludeVerbosityFlags adds --quiet/-q and --verbose/-v to app, following
// the same names every cmd/pw_* binary exposes.
func IncludeVerbosityFlags(app *cli.App) {
	app.Flags = append(app.Flags,
		&cli.BoolFlag{
			Name:    "quiet",
			Aliases: []string{"q"},
			Usage:   "only log warnings and errors",
			EnvVars: []string{"ADSB_QUIET"},
		},
		&cli.IntFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log verbosity level: 1=debug, 2 or more=trace",
			EnvVars: []string{"ADSB_VERBOSE"},
		},
	)
}

// SetLoggingLevel reads --quiet/--verbose off c and sets zerolog's global
// level accordingly, meant to run from an app's Before hook.
func SetLoggingLevel(c *cli.Context) {
	switch {
	case c.Bool("quiet"):
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case c.Int("verbose") >= 2:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case c.Int("verbose") == 1:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// ConfigureForCli switches the global logger from the default
// JSON-per-line output to a human-readable console writer on stderr.
func ConfigureForCli() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}
