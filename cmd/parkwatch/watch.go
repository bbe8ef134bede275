// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/parknow/parkwatch/lib/cli"
	"github.com/parknow/parkwatch/lib/config"
	"github.com/parknow/parkwatch/lib/facility"
	"github.com/parknow/parkwatch/lib/occupancy"
	"github.com/parknow/parkwatch/lib/parkui"
	"github.com/parknow/parkwatch/lib/scope"
	"github.com/parknow/parkwatch/lib/slot"
)

// watchSession is everything a subscription needs once the command
// line has been resolved.
type watchSession struct {
	config    *config.Config
	catalog   *facility.Catalog
	directory *facility.Client
	target    scope.Scope
}

// isTerminal reports whether w is a terminal. Anything that is not an
// *os.File (a buffer in tests) is not.
func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}

// describe returns the catalog entry for the watched location.
func (session watchSession) describe() (facility.Facility, bool) {
	if session.target.IsGlobal() {
		return facility.Facility{}, true
	}
	return session.catalog.Describe(session.target.LocationID())
}

// title names the watched scope for plain output.
func (session watchSession) title() string {
	if session.target.IsGlobal() {
		return "All locations"
	}
	entry, cataloged := session.describe()
	if !cataloged {
		return entry.Name + " " + entry.ID
	}
	return entry.Name
}

// warnUncataloged logs a location the catalog does not describe. The
// subscription still goes ahead; the server decides whether it exists.
func (session watchSession) warnUncataloged(logger *slog.Logger) {
	if _, cataloged := session.describe(); cataloged {
		return
	}
	var ids []string
	for _, entry := range session.catalog.All() {
		ids = append(ids, entry.ID)
	}
	attrs := []any{"location", session.target.LocationID()}
	if suggestion := cli.SuggestName(session.target.LocationID(), ids); suggestion != "" {
		attrs = append(attrs, "did_you_mean", suggestion)
	}
	logger.Warn("location is not in the facility catalog", attrs...)
}

func (session watchSession) subscribe(consumer occupancy.Consumer, logger *slog.Logger) (*occupancy.Client, error) {
	policy, err := session.config.ReconnectPolicy()
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	client, err := occupancy.New(session.target, consumer, occupancy.Options{
		BaseURL:     session.config.Server.WebSocketURL,
		Reconnect:   policy,
		DialTimeout: session.config.DialTimeout(),
		Logger:      logger,
	})
	if err != nil {
		return nil, cli.Validation("subscribing to %s: %w", session.target, err)
	}
	return client, nil
}

// runPlain writes one line per change to stdout until ctx is cancelled,
// the reconnect budget is spent, or the server rejects the scope.
func (session watchSession) runPlain(ctx context.Context, stdout io.Writer) error {
	level := session.config.LogLevel()
	logger, closeLog, err := withFileLog(cli.NewCommandLogger(level).Handler(), session.config.Log.Output, level)
	if err != nil {
		return cli.Validation("cannot open log file %s: %w", session.config.Log.Output, err)
	}
	defer closeLog()

	session.warnUncataloged(logger)

	notifier := parkui.NewNotifier()
	client, err := session.subscribe(notifier, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	plain := parkui.NewPlain(termenv.NewOutput(stdout), client, notifier, session.title())
	plain.StopOnExhausted = true
	plain.StopOnScopeError = true
	err = plain.Run(ctx)
	if errors.Is(err, parkui.ErrScopeRejected) {
		return cli.NotFound("%s: %w", session.target, err).
			WithHint("Run 'parkwatch --list' to see the locations the service knows.")
	}
	if errors.Is(err, parkui.ErrExhausted) {
		state := client.Status()
		return cli.Transient("%s: gave up after %d reconnect attempts", session.target, state.MaxAttempts).
			WithHint(fmt.Sprintf("Check that the occupancy service at %s is reachable.", session.config.Server.WebSocketURL))
	}
	if err != nil {
		return cli.Internal("writing output: %w", err)
	}
	return nil
}

// runDashboard runs the interactive dashboard. Log records at Warn and
// above go to the status bar instead of stderr, which would corrupt
// the alt-screen display; --log-output captures everything at the
// configured level to a file as well.
func (session watchSession) runDashboard(ctx context.Context) error {
	tuiHandler := parkui.NewTUILogHandler(slog.LevelWarn)
	logger, closeLog, err := withFileLog(tuiHandler, session.config.Log.Output, session.config.LogLevel())
	if err != nil {
		return cli.Validation("cannot open log file %s: %w", session.config.Log.Output, err)
	}
	defer closeLog()

	// The details line already flags an uncataloged location, so this
	// only reaches the log file: the status bar is not wired up yet.
	session.warnUncataloged(logger)
	entry, cataloged := session.describe()
	placeholder := session.fetchPlaceholder(ctx, logger)

	notifier := parkui.NewNotifier()
	client, err := session.subscribe(notifier, logger)
	if err != nil {
		return err
	}
	defer client.Close()

	model := parkui.NewModel(client, notifier, parkui.Options{
		Columns:     session.config.UI.Columns,
		Facility:    entry,
		Cataloged:   cataloged,
		Placeholder: placeholder,
	})
	program := tea.NewProgram(model, tea.WithAltScreen())
	tuiHandler.SetProgram(program)

	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-ctx.Done():
			program.Quit()
		case <-finished:
		}
	}()

	if _, err := program.Run(); err != nil {
		return cli.Internal("running dashboard: %w", err)
	}
	return nil
}

// fetchPlaceholder reads a one-shot snapshot over HTTP so the grid has
// something to show before the first live frame. Failures are not
// fatal; the dashboard waits for the live feed instead.
func (session watchSession) fetchPlaceholder(ctx context.Context, logger *slog.Logger) slot.Snapshot {
	fetchContext, cancel := context.WithTimeout(ctx, session.config.DialTimeout())
	defer cancel()
	snapshot, err := session.directory.Slots(fetchContext, session.target)
	if err != nil {
		logger.Debug("initial snapshot unavailable", "error", err)
		return slot.Snapshot{}
	}
	return snapshot
}
