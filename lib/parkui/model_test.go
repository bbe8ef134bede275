// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package parkui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/parknow/parkwatch/lib/facility"
	"github.com/parknow/parkwatch/lib/occupancy"
	"github.com/parknow/parkwatch/lib/reconnect"
	"github.com/parknow/parkwatch/lib/scope"
	"github.com/parknow/parkwatch/lib/slot"
)

var coexMall = facility.Facility{
	ID:           "coex",
	Name:         "COEX Mall",
	Address:      "513 Yeongdong-daero",
	City:         "Seoul",
	TotalSlots:   20,
	PricePerHour: 3500,
	OpeningHours: "06:00-24:00",
}

// newTestModel creates a sized model for the coex location.
func newTestModel(t *testing.T, options Options) (Model, *fakeSource, *Notifier) {
	t.Helper()
	source := newFakeSource(scope.Location("coex"))
	notifier := NewNotifier()
	if options.Facility == (facility.Facility{}) {
		options.Facility = coexMall
		options.Cataloged = true
	}
	model := NewModel(source, notifier, options)
	model, _ = send(t, model, tea.WindowSizeMsg{Width: 80, Height: 24})
	return model, source, notifier
}

func TestStatusLabel(t *testing.T) {
	tests := []struct {
		state occupancy.State
		want  string
	}{
		{occupancy.State{Status: reconnect.StatusConnecting, MaxAttempts: 5}, "connecting…"},
		{occupancy.State{Status: reconnect.StatusConnected, MaxAttempts: 5}, "live"},
		{occupancy.State{Status: reconnect.StatusDisconnected, Attempt: 2, MaxAttempts: 5}, "reconnecting (2/5)"},
		{occupancy.State{Status: reconnect.StatusExhausted, Attempt: 6, MaxAttempts: 5}, "offline — retries exhausted"},
	}
	for _, test := range tests {
		if got := StatusLabel(test.state); got != test.want {
			t.Errorf("StatusLabel(%v) = %q, want %q", test.state, got, test.want)
		}
	}
}

func TestView_BeforeWindowSize(t *testing.T) {
	source := newFakeSource(scope.Location("coex"))
	model := NewModel(source, NewNotifier(), Options{})
	if model.View() != "Loading..." {
		t.Errorf("unsized view = %q", model.View())
	}
}

func TestView_InitialRender(t *testing.T) {
	model, _, _ := newTestModel(t, Options{})
	view := model.View()

	for _, want := range []string{
		"COEX Mall",
		"connecting…",
		"513 Yeongdong-daero · Seoul · 06:00-24:00 · ₩3,500/h · 20 spaces",
		"0 available",
		"0% occupied",
		"Waiting for data from server...",
		"q quit",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("initial view missing %q:\n%s", want, view)
		}
	}
}

func TestView_LiveSnapshot(t *testing.T) {
	model, source, notifier := newTestModel(t, Options{})

	source.setState(notifier, reconnect.StatusConnected, 0)
	source.publish(notifier, available("A1"), available("A2"), available("A3"), occupied("B1"), occupied("B2"))
	model, _ = send(t, model, changeMsg{})

	view := model.View()
	for _, want := range []string{"● live", "3 available", "2 occupied", "0 unknown", "40% occupied", "5 slots", "A1", "B2"} {
		if !strings.Contains(view, want) {
			t.Errorf("live view missing %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "Waiting for data") {
		t.Error("live view should not show the waiting message")
	}
}

func TestView_PlaceholderUntilLive(t *testing.T) {
	placeholder := slot.MustSnapshot(available("A1"), occupied("A2"))
	model, source, notifier := newTestModel(t, Options{Placeholder: placeholder})

	view := model.View()
	if !strings.Contains(view, "last known, not live") {
		t.Errorf("placeholder should be marked:\n%s", view)
	}
	if !strings.Contains(view, "1 available") {
		t.Errorf("placeholder counts missing:\n%s", view)
	}

	// Status changes alone do not replace the placeholder.
	source.setState(notifier, reconnect.StatusConnected, 0)
	model, _ = send(t, model, changeMsg{})
	if !strings.Contains(model.View(), "last known, not live") {
		t.Error("placeholder should survive a status change")
	}

	// An empty live frame replaces it.
	source.publish(notifier)
	model, _ = send(t, model, changeMsg{})
	view = model.View()
	if strings.Contains(view, "last known") {
		t.Errorf("live frame should replace the placeholder:\n%s", view)
	}
	if !strings.Contains(view, "No slots reported") {
		t.Errorf("empty live frame should say so:\n%s", view)
	}
}

func TestView_StatusProgression(t *testing.T) {
	model, source, notifier := newTestModel(t, Options{})

	steps := []struct {
		status  reconnect.Status
		attempt int
		want    string
	}{
		{reconnect.StatusConnected, 0, "live"},
		{reconnect.StatusDisconnected, 1, "reconnecting (1/5)"},
		{reconnect.StatusConnecting, 1, "connecting…"},
		{reconnect.StatusExhausted, 5, "offline — retries exhausted"},
	}
	for _, step := range steps {
		source.setState(notifier, step.status, step.attempt)
		model, _ = send(t, model, changeMsg{})
		if !strings.Contains(model.View(), step.want) {
			t.Errorf("after %s: view missing %q", step.status, step.want)
		}
	}

	if !strings.Contains(model.View(), "Press r to retry") {
		t.Error("exhausted empty grid should offer a retry")
	}
}

func TestView_ScopeErrorBanner(t *testing.T) {
	model, source, notifier := newTestModel(t, Options{})
	source.setState(notifier, reconnect.StatusConnected, 0)
	source.failScope(notifier, "Location not found")
	model, _ = send(t, model, changeMsg{})

	view := model.View()
	if !strings.Contains(view, "Location not found") {
		t.Errorf("banner missing:\n%s", view)
	}
	if !strings.Contains(view, "● live") {
		t.Error("a scope error does not change the status")
	}
	if model.gridHeight() != 24-chromeLines-1 {
		t.Errorf("gridHeight = %d, banner should take one row", model.gridHeight())
	}
}

func TestView_GlobalScope(t *testing.T) {
	source := newFakeSource(scope.Global())
	model := NewModel(source, NewNotifier(), Options{})
	model, _ = send(t, model, tea.WindowSizeMsg{Width: 80, Height: 24})

	view := model.View()
	if !strings.Contains(view, "All locations") || !strings.Contains(view, "dashboard feed") {
		t.Errorf("global view:\n%s", view)
	}
}

func TestView_UnknownFacility(t *testing.T) {
	catalog := facility.Builtin()
	described, cataloged := catalog.Describe("kitchen")
	model, _, _ := newTestModel(t, Options{Facility: described, Cataloged: cataloged})

	view := model.View()
	if !strings.Contains(view, "unknown facility") {
		t.Errorf("header should name the placeholder:\n%s", view)
	}
	if !strings.Contains(view, "no catalog entry for kitchen") {
		t.Errorf("details should name the requested ID:\n%s", view)
	}
}

func TestUpdate_Quit(t *testing.T) {
	model, _, _ := newTestModel(t, Options{})
	_, cmd := press(t, model, runes("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestUpdate_Restart(t *testing.T) {
	model, source, _ := newTestModel(t, Options{})

	model, _ = press(t, model, runes("r"))
	if source.restarts != 1 {
		t.Fatalf("restarts = %d, want 1", source.restarts)
	}

	source.restartErr = occupancy.ErrClosed
	model, cmd := press(t, model, runes("r"))
	if cmd == nil {
		t.Fatal("a failed restart should schedule the log fade")
	}
	if !strings.Contains(model.View(), "restart failed: occupancy client closed") {
		t.Errorf("failed restart not shown:\n%s", model.View())
	}
}

func TestUpdate_HelpOverlay(t *testing.T) {
	model, _, _ := newTestModel(t, Options{})

	model, _ = press(t, model, runes("?"))
	view := model.View()
	if !strings.Contains(view, "Press any key to close") || !strings.Contains(view, "reconnect") {
		t.Errorf("help overlay missing:\n%s", view)
	}

	// Any key closes the overlay without acting on it.
	model, cmd := press(t, model, runes("q"))
	if cmd != nil {
		t.Error("closing the overlay should not quit")
	}
	if strings.Contains(model.View(), "Press any key to close") {
		t.Error("overlay should be closed")
	}
}

func TestUpdate_Filter(t *testing.T) {
	model, source, notifier := newTestModel(t, Options{})
	source.publish(notifier, available("A1"), occupied("A2"), available("B1"), unknown("B2"))
	model, _ = send(t, model, changeMsg{})

	model, _ = press(t, model, runes("/"))
	if !model.filter.Active {
		t.Fatal("/ should activate the filter")
	}

	model, _ = press(t, model, runes("b"))
	if fmt.Sprint(model.visible) != "[2 3]" {
		t.Errorf("visible = %v, want [2 3]", model.visible)
	}
	if fmt.Sprint(model.highlights[2]) != "[0]" {
		t.Errorf("highlights[2] = %v, want [0]", model.highlights[2])
	}
	view := model.View()
	if !strings.Contains(view, "(2/4)") {
		t.Errorf("filter bar missing count:\n%s", view)
	}
	if strings.Contains(view, "A1") {
		t.Errorf("A1 should be filtered out:\n%s", view)
	}

	// q is an ordinary character while typing.
	model, cmd := press(t, model, runes("q"))
	if cmd != nil {
		t.Error("q in filter mode should not quit")
	}
	if !strings.Contains(model.View(), `No slots match "bq"`) {
		t.Errorf("expected no-match message:\n%s", model.View())
	}

	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyBackspace})
	if model.filter.Input != "b" {
		t.Errorf("Input = %q after backspace", model.filter.Input)
	}

	// Enter confirms; the query keeps applying.
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if model.filter.Active || len(model.visible) != 2 {
		t.Errorf("after enter: active=%v visible=%v", model.filter.Active, model.visible)
	}

	// New frames are filtered too.
	source.publish(notifier, available("A1"), occupied("B1"), available("B3"))
	model, _ = send(t, model, changeMsg{})
	if fmt.Sprint(model.visible) != "[1 2]" {
		t.Errorf("visible after new frame = %v, want [1 2]", model.visible)
	}

	// Esc outside filter mode clears the query.
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if model.filter.Input != "" || len(model.visible) != 3 {
		t.Errorf("after esc: input=%q visible=%v", model.filter.Input, model.visible)
	}
}

func TestUpdate_FilterEscape(t *testing.T) {
	model, _, _ := newTestModel(t, Options{})
	model, _ = press(t, model, runes("/"))
	model, _ = press(t, model, runes("x"))

	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if model.filter.Input != "" || !model.filter.Active {
		t.Errorf("first esc should clear input and stay active: %+v", model.filter)
	}
	model, _ = press(t, model, tea.KeyMsg{Type: tea.KeyEsc})
	if model.filter.Active {
		t.Error("second esc should leave filter mode")
	}
}

func TestUpdate_HeatGlow(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	model, source, notifier := newTestModel(t, Options{Now: func() time.Time { return current }})

	source.publish(notifier, available("A1"), available("A2"))
	model, _ = send(t, model, changeMsg{})
	if model.tickRunning {
		t.Error("the first live frame should not glow")
	}

	source.publish(notifier, occupied("A1"), available("A2"))
	model, cmd := send(t, model, changeMsg{})
	if cmd == nil || !model.tickRunning {
		t.Fatal("a flipped slot should start the heat tick")
	}
	if model.heatTracker.Heat("A1", current) != 1.0 {
		t.Errorf("A1 heat = %v, want 1.0", model.heatTracker.Heat("A1", current))
	}
	if model.heatTracker.Heat("A2", current) != 0 {
		t.Error("A2 did not change and should not glow")
	}

	current = current.Add(time.Second)
	model, cmd = send(t, model, heatTickMsg{})
	if cmd == nil || !model.tickRunning {
		t.Error("tick should continue while A1 is hot")
	}

	current = current.Add(5 * time.Second)
	model, cmd = send(t, model, heatTickMsg{})
	if cmd != nil || model.tickRunning {
		t.Error("tick should stop once nothing is hot")
	}
}

func TestUpdate_Scroll(t *testing.T) {
	model, source, notifier := newTestModel(t, Options{})
	model, _ = send(t, model, tea.WindowSizeMsg{Width: 80, Height: chromeLines + 3})

	slots := make([]slot.Slot, 30)
	for index := range slots {
		slots[index] = available(fmt.Sprintf("S%02d", index+1))
	}
	source.publish(notifier, slots...)
	model, _ = send(t, model, changeMsg{})

	if model.totalRows() != 6 || model.gridHeight() != 3 {
		t.Fatalf("rows=%d height=%d, want 6 and 3", model.totalRows(), model.gridHeight())
	}

	model, _ = press(t, model, runes("j"))
	if model.scrollOffset != 1 {
		t.Errorf("scrollOffset = %d after j", model.scrollOffset)
	}

	model, _ = press(t, model, runes("G"))
	if model.scrollOffset != 3 {
		t.Errorf("scrollOffset = %d after G, want 3", model.scrollOffset)
	}
	view := model.View()
	if !strings.Contains(view, "S16") || strings.Contains(view, "S01") {
		t.Errorf("expected rows 4-6:\n%s", view)
	}
	if !strings.Contains(view, "rows 4-6 of 6") {
		t.Errorf("scroll position missing:\n%s", view)
	}
	if !strings.Contains(view, "┃") {
		t.Errorf("scrollbar thumb missing:\n%s", view)
	}
	if lines := strings.Count(view, "\n") + 1; lines != chromeLines+3 {
		t.Errorf("view has %d lines, want %d", lines, chromeLines+3)
	}

	// j past the end clamps.
	model, _ = press(t, model, runes("j"))
	if model.scrollOffset != 3 {
		t.Errorf("scrollOffset = %d, should clamp at 3", model.scrollOffset)
	}

	model, _ = press(t, model, runes("g"))
	if model.scrollOffset != 0 {
		t.Errorf("scrollOffset = %d after g", model.scrollOffset)
	}

	// A shorter frame pulls the offset back into range.
	model, _ = press(t, model, runes("G"))
	source.publish(notifier, slots[:10]...)
	model, _ = send(t, model, changeMsg{})
	if model.scrollOffset != 0 {
		t.Errorf("scrollOffset = %d after shrink, want 0", model.scrollOffset)
	}
}

func TestGridGeometry(t *testing.T) {
	tests := []struct {
		name        string
		width       int
		columns     int
		ids         []string
		wantColumns int
		wantCell    int
	}{
		{"default columns", 80, 5, []string{"A1", "B22"}, 5, 6},
		{"configured columns", 120, 8, []string{"A1"}, 8, 6},
		{"narrow terminal", 20, 5, []string{"A1"}, 2, 6},
		{"long ids widen cells", 80, 5, []string{"LEVEL-B2-042"}, 5, 14},
		{"very long ids cap", 80, 5, []string{strings.Repeat("X", 40)}, 4, maxCellWidth},
		{"tiny terminal keeps one column", 4, 5, []string{"A1"}, 1, 6},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			model, source, notifier := newTestModel(t, Options{Columns: test.columns})
			model, _ = send(t, model, tea.WindowSizeMsg{Width: test.width, Height: 24})
			slots := make([]slot.Slot, len(test.ids))
			for index, id := range test.ids {
				slots[index] = available(id)
			}
			source.publish(notifier, slots...)
			model, _ = send(t, model, changeMsg{})

			columns, cell := model.gridGeometry()
			if columns != test.wantColumns || cell != test.wantCell {
				t.Errorf("gridGeometry() = (%d, %d), want (%d, %d)", columns, cell, test.wantColumns, test.wantCell)
			}
		})
	}
}

func TestUpdate_LogRecords(t *testing.T) {
	model, _, _ := newTestModel(t, Options{})

	model, cmd := send(t, model, logRecordMsg{Summary: "connection lost (scope=location:coex)", Level: slog.LevelWarn})
	if cmd == nil {
		t.Fatal("log record should schedule a fade")
	}
	if !strings.Contains(model.View(), "connection lost (scope=location:coex)") {
		t.Errorf("log record not shown:\n%s", model.View())
	}

	model, _ = send(t, model, logRecordMsg{Summary: "retries exhausted", Level: slog.LevelError})

	// The first record's fade does not clear the second record.
	model, _ = send(t, model, logRecordFadeMsg{sequence: 1})
	if !strings.Contains(model.View(), "retries exhausted") {
		t.Error("stale fade cleared a newer record")
	}

	model, _ = send(t, model, logRecordFadeMsg{sequence: 2})
	if !strings.Contains(model.View(), "q quit") {
		t.Errorf("fade should restore key hints:\n%s", model.View())
	}
}

func TestFilterModel_Apply(t *testing.T) {
	snapshot := slot.MustSnapshot(available("B-12"), available("A-01"), occupied("B-02"))

	var filter FilterModel
	indices, highlights := filter.Apply(snapshot)
	if fmt.Sprint(indices) != "[0 1 2]" || highlights != nil {
		t.Errorf("blank query: indices=%v highlights=%v", indices, highlights)
	}

	filter.Input = "b"
	indices, _ = filter.Apply(snapshot)
	if fmt.Sprint(indices) != "[0 2]" {
		t.Errorf("indices = %v, want server order [0 2]", indices)
	}

	filter.Input = "zz"
	indices, _ = filter.Apply(snapshot)
	if len(indices) != 0 {
		t.Errorf("indices = %v, want none", indices)
	}

	if filter.HandleBackspace(); filter.Input != "z" {
		t.Errorf("Input = %q after backspace", filter.Input)
	}
	filter.Clear()
	if filter.HandleBackspace() {
		t.Error("backspace on empty input should report false")
	}
}

func TestRestartError(t *testing.T) {
	model, source, _ := newTestModel(t, Options{})
	source.restartErr = errors.New("boom")
	model, _ = press(t, model, runes("r"))
	if model.logLevel != slog.LevelError {
		t.Errorf("logLevel = %v, want error", model.logLevel)
	}
}
