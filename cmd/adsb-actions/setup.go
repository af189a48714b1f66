package main

import (
	"fmt"

	"github.com/eastham/adsb-actions/lib/actions"
	"github.com/eastham/adsb-actions/lib/config"
	"github.com/eastham/adsb-actions/lib/engine"
	"github.com/eastham/adsb-actions/lib/flight"
	"github.com/eastham/adsb-actions/lib/monitoring"
	"github.com/eastham/adsb-actions/lib/region"
	"github.com/eastham/adsb-actions/lib/rules"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

// buildEngine wires config, region, rules, action-dispatch, and the flight
// store into a ready-to-run Engine, the common setup every command needs
// before attaching a Source, mirroring the teacher's commonSetup.
func buildEngine(c *cli.Context) (*engine.Engine, *rules.RuleSet, *actions.Dispatcher, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}

	regions, err := region.Load(cfg.RegionFiles)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading region files: %w", err)
	}

	doc, err := rules.LoadFile(cfg.RulesFile)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading rule set: %w", err)
	}

	loc, err := timeLocation(cfg.Timezone)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
	}

	ruleOpts := []rules.Option{rules.WithTimezone(loc)}
	if cfg.SpatialGrid {
		ruleOpts = append(ruleOpts, rules.WithSpatialGrid(true, cfg.SpatialGridSize))
	}
	rs, err := rules.Compile(doc, ruleOpts...)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("compiling rule set: %w", err)
	}

	transports, err := buildTransports(cfg.Webhooks)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting webhook transports: %w", err)
	}

	dispatcher := actions.New(actions.NewRegistry(), transports,
		actions.WithShellEnabled(cfg.ShellActionsEnabled),
		actions.WithLogger(log.Logger))

	store := flight.NewStore(regions.NumFiles(), len(rs.Rules), cfg.ExpirySeconds)

	e := engine.New(regions, rs, store, dispatcher, engine.WithLogger(log.Logger))
	return e, rs, dispatcher, nil
}

// buildTransports connects every configured webhook transport and
// registers each with the monitoring health-check registry, the same
// AddHealthCheck-per-component pattern pw_router applies to its NATS
// connection.
func buildTransports(webhooks map[string]string) (map[string]actions.Transport, error) {
	transports := make(map[string]actions.Transport, len(webhooks))
	for kind, target := range webhooks {
		switch kind {
		case "nats":
			t, err := actions.NewNatsTransport(target)
			if err != nil {
				return nil, fmt.Errorf("nats transport: %w", err)
			}
			transports["nats"] = t
			monitoring.AddHealthCheck(t)
		case "amqp":
			t, err := actions.NewAmqpTransport(target, "adsb-actions")
			if err != nil {
				return nil, fmt.Errorf("amqp transport: %w", err)
			}
			transports["amqp"] = t
			monitoring.AddHealthCheck(t)
		case "redis":
			t := actions.NewRedisTransport(target)
			transports["redis"] = t
			monitoring.AddHealthCheck(t)
		case "discord":
			t, err := actions.NewDiscordTransport(target)
			if err != nil {
				return nil, fmt.Errorf("discord transport: %w", err)
			}
			transports["discord"] = t
			monitoring.AddHealthCheck(t)
		default:
			return nil, fmt.Errorf("unknown webhook transport kind %q", kind)
		}
	}
	return transports, nil
}
