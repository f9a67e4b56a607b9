package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/golang-cz/devslog"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

var ErrInvalidLogLevel = errors.New("invalid log level")

var validLogLevels = []string{"debug", "info", "warn", "error"}

var logLevelFlag = &cli.StringFlag{
	Name:    "log-level",
	Aliases: []string{"l"},
	Usage:   "The level of the logs",
	Value:   "info",
	Validator: func(value string) error {
		_, err := parseLevel(value)
		return err
	},
	Sources: cli.EnvVars("LOG_LEVEL"),
}

// parseLevel accepts the lowercase names of slog's four levels.
func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if !slices.Contains(validLogLevels, name) || level.UnmarshalText([]byte(name)) != nil {
		return 0, fmt.Errorf("%w: %q, allowed values are %v", ErrInvalidLogLevel, name, validLogLevels)
	}
	return level, nil
}

// newLogHandler writes colored, multi-line records to a terminal and JSON
// lines anywhere else.
func newLogHandler(f *os.File, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if isatty.IsTerminal(f.Fd()) {
		return devslog.NewHandler(f, &devslog.Options{HandlerOptions: opts})
	}
	return slog.NewJSONHandler(f, opts)
}

func initLogger(name string) error {
	level, err := parseLevel(name)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(newLogHandler(os.Stdout, level)))
	return nil
}
