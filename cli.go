package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Lines         LineCount        `help:"Output the last NUM lines, instead of the last 10; or use +NUM to skip the first NUM lines" short:"n" default:"10" env:"GOTAIL_LINES"`
	Follow        bool             `help:"Output appended data as the file grows" short:"f" env:"GOTAIL_FOLLOW"`
	Quiet         bool             `help:"Never output headers giving file names" short:"q" env:"GOTAIL_QUIET"`
	SleepInterval time.Duration    `help:"With --follow, poll for missed change notifications approximately every duration" short:"s" default:"1s" env:"GOTAIL_SLEEP_INTERVAL"`
	LogFormat     string           `help:"Log format" enum:"json,text" default:"text" env:"GOTAIL_LOG_FORMAT"`
	LogLevel      slog.Level       `help:"Log level" default:"info" env:"GOTAIL_LOG_LEVEL"`
	Version       kong.VersionFlag `help:"Print version"`
	Files         []string         `arg:"" optional:"" help:"Files to tail; with no FILES, or when FILES is -, read standard input"`
}

func (cli *CLI) Parse(args []string) error {
	parsed, err := kong.New(
		cli,
		kong.Name("gotail"),
		kong.Description("Print the last lines of each FILES to standard output"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Summary: true,
			Compact: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to parse CLI: %w", err)
	}
	_, err = parsed.Parse(args)
	if err != nil {
		return fmt.Errorf("failed to parse Args: %w", err)
	}
	return nil
}
