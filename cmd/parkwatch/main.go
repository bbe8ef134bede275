// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

// parkwatch watches live parking occupancy for one ParkNow location or
// for every location at once.
//
// Three modes of operation:
//
// Dashboard (default on a terminal): a full-screen slot grid with
// counters, connection status, a fuzzy slot filter, and restart after
// the reconnect budget runs out.
//
// Plain (--plain, or whenever stdout is not a terminal): one
// timestamped line per change, suitable for logs and pipes. Exits
// non-zero once retries are exhausted.
//
// Directory (--list): prints every known location with its live
// counts and exits.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/parknow/parkwatch/lib/cli"
	"github.com/parknow/parkwatch/lib/config"
	"github.com/parknow/parkwatch/lib/facility"
	"github.com/parknow/parkwatch/lib/scope"
	"github.com/parknow/parkwatch/lib/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()
	if err != nil {
		if !cli.Silent(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(cli.ExitCode(err))
	}
}

// options holds the parsed command line.
type options struct {
	configPath  string
	location    string
	global      bool
	list        bool
	search      string
	plain       bool
	server      string
	catalogPath string
	maxAttempts int
	retryDelay  time.Duration
	columns     int
	logLevel    string
	logOutput   string
}

func newFlagSet(opts *options) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("parkwatch", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVarP(&opts.configPath, "config", "c", "", "YAML config file (default: $"+config.EnvVar+", else built-in defaults)")
	flagSet.StringVarP(&opts.location, "location", "l", "", "location ID to watch")
	flagSet.BoolVarP(&opts.global, "global", "g", false, "watch every location (the default when --location is not given)")
	flagSet.BoolVar(&opts.list, "list", false, "print the location directory and exit")
	flagSet.StringVar(&opts.search, "search", "", "fuzzy filter for --list")
	flagSet.BoolVar(&opts.plain, "plain", false, "print one line per change instead of the dashboard")
	flagSet.StringVar(&opts.server, "server", "", "websocket base URL of the occupancy service (overrides server.websocket_url)")
	flagSet.StringVar(&opts.catalogPath, "catalog", "", "JSONC facility catalog (overrides catalog.path)")
	flagSet.IntVar(&opts.maxAttempts, "max-attempts", 0, "consecutive reconnect attempts before giving up (overrides reconnect.max_attempts)")
	flagSet.DurationVar(&opts.retryDelay, "retry-delay", 0, "delay between reconnect attempts (overrides reconnect.retry_delay)")
	flagSet.IntVar(&opts.columns, "columns", 0, "slot cells per dashboard row (overrides ui.columns)")
	flagSet.StringVar(&opts.logLevel, "log-level", "", "minimum log level: debug, info, warn, error (overrides log.level)")
	flagSet.StringVar(&opts.logOutput, "log-output", "", "also write JSON log records to this file (overrides log.output)")
	flagSet.BoolP("help", "h", false, "show help")
	return flagSet
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	var opts options
	flagSet := newFlagSet(&opts)

	// Handle --version before flag parsing so it works alongside any
	// other arguments.
	if len(args) > 0 && args[0] == "--version" {
		version.Fprint(stdout, "parkwatch")
		return nil
	}

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		toolErr := cli.Validation("%w", err)
		if suggestion := cli.SuggestFlag(args, flagSet); suggestion != "" {
			toolErr = toolErr.WithHint("Did you mean " + suggestion + "?")
		}
		return toolErr
	}

	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	if rest := flagSet.Args(); len(rest) > 0 {
		return cli.Validation("unexpected argument: %s", rest[0]).
			WithHint("Pass the location with --location " + rest[0] + ".")
	}

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, flagSet, &opts)
	if err := cfg.Validate(); err != nil {
		return cli.Validation("invalid configuration:\n%w", err)
	}

	catalog, err := loadCatalog(cfg)
	if err != nil {
		return err
	}
	directory, err := facility.NewClient(cfg.HTTPBaseURL(), nil)
	if err != nil {
		return cli.Validation("%w", err)
	}

	if opts.list {
		if flagSet.Changed("location") || flagSet.Changed("global") {
			return cli.Validation("--list cannot be combined with --location or --global")
		}
		return runList(ctx, stdout, catalog, directory, opts.search, cfg.DialTimeout())
	}
	if flagSet.Changed("search") {
		return cli.Validation("--search only applies to --list")
	}

	target, err := resolveScope(opts)
	if err != nil {
		return err
	}

	session := watchSession{
		config:    cfg,
		catalog:   catalog,
		directory: directory,
		target:    target,
	}
	if opts.plain || !isTerminal(stdout) {
		return session.runPlain(ctx, stdout)
	}
	return session.runDashboard(ctx)
}

// loadConfig reads the file named by --config, falling back to
// $PARKWATCH_CONFIG and then built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, cli.Validation("%w", err).
			WithHint("Check the file passed with --config or $" + config.EnvVar + ".")
	}
	return cfg, nil
}

// applyFlags copies explicitly set flags over the file values. Flags
// left at their zero value never clobber the file.
func applyFlags(cfg *config.Config, flagSet *pflag.FlagSet, opts *options) {
	if flagSet.Changed("server") {
		cfg.Server.WebSocketURL = opts.server
	}
	if flagSet.Changed("catalog") {
		cfg.Catalog.Path = opts.catalogPath
	}
	if flagSet.Changed("max-attempts") {
		cfg.Reconnect.MaxAttempts = opts.maxAttempts
	}
	if flagSet.Changed("retry-delay") {
		cfg.Reconnect.RetryDelay = opts.retryDelay.String()
	}
	if flagSet.Changed("columns") {
		cfg.UI.Columns = opts.columns
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = opts.logLevel
	}
	if flagSet.Changed("log-output") {
		cfg.Log.Output = opts.logOutput
	}
}

func loadCatalog(cfg *config.Config) (*facility.Catalog, error) {
	if cfg.Catalog.Path == "" {
		return facility.Builtin(), nil
	}
	catalog, err := facility.LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, cli.Validation("%w", err).
			WithHint("The catalog is a JSONC file with a top-level \"facilities\" array.")
	}
	return catalog, nil
}

// resolveScope turns --location and --global into a subscription
// scope. Neither flag means global.
func resolveScope(opts options) (scope.Scope, error) {
	location := strings.TrimSpace(opts.location)
	switch {
	case opts.global && location != "":
		return scope.Scope{}, cli.Validation("--global and --location are mutually exclusive")
	case opts.global:
		return scope.Global(), nil
	case opts.location != "" && location == "":
		return scope.Scope{}, cli.Validation("--location must not be blank")
	case location != "":
		return scope.Location(location), nil
	default:
		return scope.Global(), nil
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `parkwatch — live parking occupancy for ParkNow locations.

Subscribes to the occupancy service and shows every slot of a location
(or of all locations) as it changes. When the connection drops,
parkwatch retries a bounded number of times; in the dashboard press r
to start over once it has given up.

Usage:
  parkwatch [flags]

Examples:
  # Watch every location
  parkwatch

  # Watch one location
  parkwatch --location coex

  # Log changes as plain lines against a staging backend
  parkwatch --location jakarta --plain --server wss://staging.parknow.example

  # Find a location
  parkwatch --list --search seoul

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
