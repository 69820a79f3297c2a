package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/beamdec/internal/logger"
)

var (
	beamSize  int64
	maxSteps  int64
	minSteps  int64
	scoreMode string

	stopStep   int64
	seed       int64
	pointerGen bool

	logLevel  string
	logFormat string
	debug     bool
)

func searchFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "beam-size",
			Aliases:     []string{"b"},
			Usage:       "number of hypotheses kept per step",
			Value:       4,
			Destination: &beamSize,
		},
		&cli.Int64Flag{
			Name:        "max-steps",
			Usage:       "maximum decode steps",
			Value:       100,
			Destination: &maxSteps,
		},
		&cli.Int64Flag{
			Name:        "min-steps",
			Usage:       "minimum steps before a stop token counts",
			Value:       35,
			Destination: &minSteps,
		},
		&cli.StringFlag{
			Name:        "mode",
			Usage:       "scoring mode (plain, smart)",
			Value:       "plain",
			Destination: &scoreMode,
		},
	}
}

func demoModelFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "stop-step",
			Usage:       "step from which the demo model offers the stop token (-1 = never)",
			Value:       40,
			Destination: &stopStep,
		},
		&cli.Int64Flag{
			Name:        "seed",
			Usage:       "demo model seed",
			Value:       0,
			Destination: &seed,
		},
		&cli.BoolFlag{
			Name:        "pointer-gen",
			Usage:       "have the demo model report generation probabilities",
			Destination: &pointerGen,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}

// setupLogger builds a logger from the logging flags and stores it in the
// context for the rest of the command.
func setupLogger(ctx context.Context) context.Context {
	level := logger.ParseLevel(logLevel)
	if debug {
		level = slog.LevelDebug
	}
	var log logger.Logger
	switch logFormat {
	case "json":
		log = logger.JSON(os.Stderr, level)
	default:
		log = logger.Pretty(os.Stderr, level)
	}
	return logger.WithContext(ctx, log)
}
