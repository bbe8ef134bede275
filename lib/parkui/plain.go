// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package parkui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/parknow/parkwatch/lib/reconnect"
	"github.com/parknow/parkwatch/lib/slot"
	"github.com/parknow/parkwatch/lib/tui"
)

// maxListedChanges caps how many flipped slots one plain line names.
const maxListedChanges = 5

// ErrExhausted is returned by [Plain.Run] when StopOnExhausted is set
// and the subscription gives up.
var ErrExhausted = errors.New("retries exhausted")

// ErrScopeRejected is returned by [Plain.Run] when StopOnScopeError is
// set and the server reports the scope invalid.
var ErrScopeRejected = errors.New("scope rejected by server")

// Plain writes a timestamped line whenever the visible state changes:
// the connection status, the counters, the slots that flipped since
// the previous line, and any scope error. Identical consecutive lines
// are suppressed.
type Plain struct {
	// StopOnExhausted makes Run return ErrExhausted once the source
	// reports StatusExhausted, instead of waiting for a restart that
	// nothing in a non-interactive session will issue.
	StopOnExhausted bool

	// StopOnScopeError makes Run return ErrScopeRejected once the
	// source reports a scope error. The subscription does not retry a
	// rejected scope, so nothing further would arrive.
	StopOnScopeError bool

	output   *termenv.Output
	source   Source
	notifier *Notifier
	theme    tui.Theme
	title    string
	now      func() time.Time

	last     string
	previous slot.Snapshot
	live     bool
}

// NewPlain creates a plain renderer writing to output. The output's
// color profile decides whether lines are colored; termenv.Ascii
// disables color entirely.
func NewPlain(output *termenv.Output, source Source, notifier *Notifier, title string) *Plain {
	if notifier == nil {
		notifier = NewNotifier()
	}
	return &Plain{
		output:   output,
		source:   source,
		notifier: notifier,
		theme:    tui.DefaultTheme,
		title:    title,
		now:      time.Now,
	}
}

// Run writes the current state, then a line per change until ctx is
// cancelled.
func (plain *Plain) Run(ctx context.Context) error {
	for {
		if err := plain.Flush(); err != nil {
			return err
		}
		if plain.StopOnExhausted && plain.source.Status().Status == reconnect.StatusExhausted {
			return ErrExhausted
		}
		if plain.StopOnScopeError {
			if scopeError, ok := plain.source.ScopeError(); ok {
				return fmt.Errorf("%w: %s", ErrScopeRejected, scopeError.Message)
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-plain.notifier.C():
		}
	}
}

// Flush writes a line if the state differs from the last line written
// or slots flipped since then.
func (plain *Plain) Flush() error {
	summary, changes := plain.render()
	if summary == plain.last && changes == "" {
		return nil
	}
	plain.last = summary

	line := summary
	if changes != "" {
		line += " changed: " + changes
	}
	stamp := plain.output.String(plain.now().Format("15:04:05")).Faint()
	_, err := fmt.Fprintf(plain.output, "%s %s\n", stamp, line)
	return err
}

// render returns the status summary and the flipped slots since the
// previous render.
func (plain *Plain) render() (summary, changes string) {
	state := plain.source.Status()
	label := plain.output.String(StatusLabel(state)).
		Foreground(plain.output.Color(string(plain.theme.StatusColor(state.Status))))

	var builder strings.Builder
	builder.WriteString(plain.title)
	builder.WriteString(" [")
	builder.WriteString(label.String())
	builder.WriteString("]")

	if plain.notifier.Snapshots() == 0 {
		builder.WriteString(" waiting for data")
	} else {
		snapshot := plain.source.Snapshot()
		aggregate := slot.Summarize(snapshot)
		fmt.Fprintf(&builder, " %s available, %s occupied, %d unknown (%d%% occupied)",
			plain.colored(aggregate.Available, plain.theme.SlotAvailable),
			plain.colored(aggregate.Occupied, plain.theme.SlotOccupied),
			aggregate.Unknown, aggregate.Percent())
		if plain.live {
			changes = describeChanges(plain.previous, snapshot)
		}
		plain.previous = snapshot
		plain.live = true
	}

	if scopeError, ok := plain.source.ScopeError(); ok {
		builder.WriteString(" ! ")
		builder.WriteString(plain.output.String(scopeError.Message).
			Foreground(plain.output.Color(string(plain.theme.StatusExhausted))).String())
	}
	return builder.String(), changes
}

func (plain *Plain) colored(value int, color lipgloss.Color) string {
	return plain.output.String(fmt.Sprintf("%d", value)).
		Foreground(plain.output.Color(string(color))).
		Bold().
		String()
}

// describeChanges names slots whose status differs between two
// snapshots, in next's order: "A1 occupied, B2 available".
func describeChanges(previous, next slot.Snapshot) string {
	var changed []string
	for index := 0; index < next.Len(); index++ {
		current := next.At(index)
		before, ok := previous.Lookup(current.ID)
		if ok && before.Status == current.Status {
			continue
		}
		changed = append(changed, current.ID+" "+current.Status.String())
	}
	if len(changed) > maxListedChanges {
		extra := len(changed) - maxListedChanges
		changed = append(changed[:maxListedChanges], fmt.Sprintf("+%d more", extra))
	}
	return strings.Join(changed, ", ")
}
