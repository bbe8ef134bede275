// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package parkui

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/parknow/parkwatch/lib/facility"
	"github.com/parknow/parkwatch/lib/occupancy"
	"github.com/parknow/parkwatch/lib/reconnect"
	"github.com/parknow/parkwatch/lib/slot"
	"github.com/parknow/parkwatch/lib/tui"
)

// changeMsg is sent when the Notifier signals new source state.
type changeMsg struct{}

// heatTickMsg is sent periodically to drive the change glow. While any
// slot is hot, a new tick is scheduled after each one.
type heatTickMsg struct{}

// Grid cell bounds, in columns.
const (
	minCellWidth = 6
	maxCellWidth = 16
)

// DefaultColumns is the grid width when Options.Columns is unset.
const DefaultColumns = 5

// chromeLines is the fixed line count around the grid: header,
// facility details, counters, separator, and the help bar.
const chromeLines = 5

// Options configures a Model.
type Options struct {
	// Columns is the number of slot cells per grid row. The grid
	// narrows further when the terminal is too small.
	Columns int

	// Facility describes the subscribed location. Ignored for the
	// global scope.
	Facility facility.Facility

	// Cataloged is false when Facility is the "unknown facility"
	// placeholder.
	Cataloged bool

	// Placeholder is shown, marked as not live, until the first live
	// snapshot arrives. Typically a one-shot REST fetch.
	Placeholder slot.Snapshot

	// Theme overrides tui.DefaultTheme when non-zero.
	Theme tui.Theme

	// Now overrides time.Now for the heat animation.
	Now func() time.Time
}

// Model is the top-level bubbletea model for the occupancy dashboard.
type Model struct {
	source   Source
	notifier *Notifier
	theme    tui.Theme
	keys     KeyMap
	now      func() time.Time

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	// Static description of what is being watched.
	facility  facility.Facility
	cataloged bool
	columns   int

	// Latest state read from the source. snapshot holds the
	// placeholder until live is set.
	state         occupancy.State
	snapshot      slot.Snapshot
	live          bool
	scopeError    occupancy.ScopeError
	hasScopeError bool

	// Filter state. visible indexes into snapshot in server order;
	// highlights maps an index to matched rune positions in its ID.
	filter       FilterModel
	visible      []int
	highlights   map[int][]int
	scrollOffset int

	// Change glow.
	heatTracker *tui.HeatTracker
	tickRunning bool

	// Overlays and status bar.
	showHelp    bool
	logMessage  string
	logLevel    slog.Level
	logSequence int
}

// NewModel creates a Model reading from source and woken by notifier.
// The notifier must be the consumer the source's client was created
// with.
func NewModel(source Source, notifier *Notifier, options Options) Model {
	if notifier == nil {
		notifier = NewNotifier()
	}
	theme := options.Theme
	if theme == (tui.Theme{}) {
		theme = tui.DefaultTheme
	}
	columns := options.Columns
	if columns <= 0 {
		columns = DefaultColumns
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}

	model := Model{
		source:      source,
		notifier:    notifier,
		theme:       theme,
		keys:        DefaultKeyMap,
		now:         now,
		facility:    options.Facility,
		cataloged:   options.Cataloged,
		columns:     columns,
		snapshot:    options.Placeholder,
		heatTracker: tui.NewHeatTracker(),
	}
	model.refreshFromSource()
	model.applyFilter()
	return model
}

// Init implements tea.Model. Starts listening for source changes.
func (model Model) Init() tea.Cmd {
	return listenForChange(model.notifier.C())
}

// listenForChange returns a tea.Cmd that blocks until the notifier
// signals, then delivers a changeMsg.
func listenForChange(signal <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-signal
		return changeMsg{}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		// The help overlay swallows the next key; ctrl+c still quits.
		if model.showHelp {
			if message.Type == tea.KeyCtrlC {
				return model, tea.Quit
			}
			model.showHelp = false
			return model, nil
		}
		if model.filter.Active {
			return model.handleFilterKeys(message)
		}

		switch {
		case key.Matches(message, model.keys.Quit):
			return model, tea.Quit

		case key.Matches(message, model.keys.Help):
			model.showHelp = true

		case key.Matches(message, model.keys.FilterActivate):
			model.filter.Active = true
			model.scrollOffset = 0

		case key.Matches(message, model.keys.FilterClear):
			if model.filter.Input != "" {
				model.filter.Clear()
				model.applyFilter()
			}

		case key.Matches(message, model.keys.Restart):
			return model.restart()

		case key.Matches(message, model.keys.Up):
			model.scrollBy(-1)

		case key.Matches(message, model.keys.Down):
			model.scrollBy(1)

		case key.Matches(message, model.keys.PageUp):
			model.scrollBy(-model.gridHeight())

		case key.Matches(message, model.keys.PageDown):
			model.scrollBy(model.gridHeight())

		case key.Matches(message, model.keys.Home):
			model.scrollOffset = 0

		case key.Matches(message, model.keys.End):
			model.scrollOffset = model.maxScroll()
		}

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.clampScroll()

	case changeMsg:
		return model.handleChange()

	case heatTickMsg:
		return model.handleHeatTick()

	case logRecordMsg:
		return model.showLog(message.Summary, message.Level)

	case logRecordFadeMsg:
		if message.sequence == model.logSequence {
			model.logMessage = ""
		}
	}
	return model, nil
}

// handleFilterKeys processes keystrokes while the filter input has
// focus. Regular characters (including q) go to the query, Esc clears
// or exits, Enter confirms.
func (model Model) handleFilterKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		return model, tea.Quit

	case key.Matches(message, model.keys.FilterClear):
		if model.filter.Input != "" {
			model.filter.Clear()
			model.applyFilter()
		} else {
			model.filter.Active = false
		}

	case message.Type == tea.KeyEnter:
		model.filter.Active = false

	case message.Type == tea.KeyBackspace:
		if model.filter.HandleBackspace() {
			model.applyFilter()
		}

	case message.Type == tea.KeyRunes || message.Type == tea.KeySpace:
		for _, r := range message.Runes {
			model.filter.HandleRune(r)
		}
		model.applyFilter()
	}
	model.clampScroll()
	return model, nil
}

// restart asks the source to reconnect with a fresh retry budget.
func (model Model) restart() (tea.Model, tea.Cmd) {
	if err := model.source.Restart(); err != nil {
		return model.showLog("restart failed: "+err.Error(), slog.LevelError)
	}
	return model, nil
}

// showLog puts a message in the status bar and schedules its fade.
func (model Model) showLog(summary string, level slog.Level) (tea.Model, tea.Cmd) {
	model.logSequence++
	model.logMessage = summary
	model.logLevel = level
	sequence := model.logSequence
	return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
		return logRecordFadeMsg{sequence: sequence}
	})
}

// handleChange re-reads the source, ignites heat for flipped slots,
// and re-arms the listener.
func (model Model) handleChange() (tea.Model, tea.Cmd) {
	ignited := model.refreshFromSource()
	model.clampScroll()

	commands := []tea.Cmd{listenForChange(model.notifier.C())}
	if ignited > 0 && !model.tickRunning {
		model.tickRunning = true
		commands = append(commands, scheduleHeatTick())
	}
	return model, tea.Batch(commands...)
}

// refreshFromSource copies the source's state into the model. The
// placeholder stays until the notifier has seen a snapshot frame.
// Returns the number of slots ignited.
func (model *Model) refreshFromSource() int {
	model.state = model.source.Status()
	model.scopeError, model.hasScopeError = model.source.ScopeError()
	if model.notifier.Snapshots() == 0 {
		return 0
	}

	next := model.source.Snapshot()
	ignited := 0
	if model.live {
		ignited = model.heatTracker.IgniteChanges(model.snapshot, next, model.now())
	}
	model.snapshot = next
	model.live = true
	model.applyFilter()
	return ignited
}

// handleHeatTick processes a heat animation tick. If any slots are
// still hot, schedules another tick; otherwise stops the timer.
func (model Model) handleHeatTick() (tea.Model, tea.Cmd) {
	if model.heatTracker.HasHot(model.now()) {
		return model, scheduleHeatTick()
	}
	model.tickRunning = false
	return model, nil
}

// scheduleHeatTick returns a tea.Cmd that sends a heatTickMsg after
// the animation tick interval.
func scheduleHeatTick() tea.Cmd {
	return tea.Tick(tui.HeatTickInterval, func(time.Time) tea.Msg {
		return heatTickMsg{}
	})
}

func (model *Model) applyFilter() {
	model.visible, model.highlights = model.filter.Apply(model.snapshot)
}

// gridHeight is the number of terminal rows available to the grid.
func (model Model) gridHeight() int {
	chrome := chromeLines
	if model.hasScopeError {
		chrome++
	}
	if model.filter.Active || model.filter.Input != "" {
		chrome++
	}
	return max(model.height-chrome, 1)
}

// gridGeometry returns the effective column count and cell width for
// the visible slots at the current terminal width.
func (model Model) gridGeometry() (columns, cellWidth int) {
	longest := 0
	for _, index := range model.visible {
		longest = max(longest, ansi.StringWidth(model.snapshot.At(index).ID))
	}
	cellWidth = min(max(longest+2, minCellWidth), maxCellWidth)

	// One column stays free for the scrollbar; cells are separated by
	// a single space.
	fit := max((model.width-1)/(cellWidth+1), 1)
	return max(min(model.columns, fit), 1), cellWidth
}

// totalRows is the number of grid rows for the visible slots.
func (model Model) totalRows() int {
	columns, _ := model.gridGeometry()
	return (len(model.visible) + columns - 1) / columns
}

func (model Model) maxScroll() int {
	return max(model.totalRows()-model.gridHeight(), 0)
}

func (model *Model) scrollBy(rows int) {
	model.scrollOffset += rows
	model.clampScroll()
}

func (model *Model) clampScroll() {
	model.scrollOffset = min(max(model.scrollOffset, 0), model.maxScroll())
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	sections := []string{
		model.renderHeader(),
		model.renderDetails(),
	}
	if model.hasScopeError {
		sections = append(sections, model.renderBanner())
	}
	sections = append(sections, model.renderCounters())
	if bar := model.filter.View(model.theme, model.width, len(model.visible), model.snapshot.Len()); bar != "" {
		sections = append(sections, bar)
	}
	sections = append(sections, model.renderGrid(model.gridHeight()))

	separator := lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", model.width))
	sections = append(sections, separator, model.renderHelp())

	output := strings.Join(sections, "\n")
	if model.showHelp {
		output = tui.CenterOverlay(output, model.helpLines(), model.width, model.height, model.theme)
	}
	return output
}

// StatusLabel is the human-readable connection status used by both
// front ends.
func StatusLabel(state occupancy.State) string {
	switch state.Status {
	case reconnect.StatusConnecting:
		return "connecting…"
	case reconnect.StatusConnected:
		return "live"
	case reconnect.StatusDisconnected:
		return fmt.Sprintf("reconnecting (%d/%d)", state.Attempt, state.MaxAttempts)
	case reconnect.StatusExhausted:
		return "offline — retries exhausted"
	default:
		return state.Status.String()
	}
}

// title names what is being watched.
func (model Model) title() string {
	if model.source.Scope().IsGlobal() {
		return "All locations"
	}
	return model.facility.Name
}

// renderHeader renders the title on the left and the connection
// indicator on the right.
func (model Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Foreground(model.theme.HeaderForeground).Bold(true)
	left := titleStyle.Render("ParkNow") + " · " + titleStyle.Render(model.title())

	indicatorStyle := lipgloss.NewStyle().Foreground(model.theme.StatusColor(model.state.Status))
	right := indicatorStyle.Render("● " + StatusLabel(model.state))

	gap := model.width - ansi.StringWidth(left) - ansi.StringWidth(right)
	if gap < 1 {
		left = ansi.Truncate(left, max(model.width-ansi.StringWidth(right)-1, 0), "…")
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// renderDetails renders the facility metadata line.
func (model Model) renderDetails() string {
	style := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var parts []string
	switch {
	case model.source.Scope().IsGlobal():
		parts = append(parts, "dashboard feed")
	case !model.cataloged:
		parts = append(parts, "no catalog entry for "+model.facility.ID)
	default:
		for _, part := range []string{model.facility.Address, model.facility.City, model.facility.OpeningHours, model.facility.PriceLabel()} {
			if part != "" {
				parts = append(parts, part)
			}
		}
		if model.facility.TotalSlots > 0 {
			parts = append(parts, fmt.Sprintf("%d spaces", model.facility.TotalSlots))
		}
	}
	return ansi.Truncate(style.Render(strings.Join(parts, " · ")), model.width, "…")
}

// renderBanner renders the scope error as a full-width banner.
func (model Model) renderBanner() string {
	style := lipgloss.NewStyle().
		Foreground(model.theme.BannerForeground).
		Background(model.theme.BannerBackground).
		Bold(true).
		Width(model.width)
	text := ansi.Truncate(" ✖ "+model.scopeError.Message, model.width, "…")
	return style.Render(text)
}

// renderCounters renders the available/occupied/unknown counts and
// the occupancy percentage.
func (model Model) renderCounters() string {
	aggregate := slot.Summarize(model.snapshot)

	count := func(color lipgloss.Color, label string, value int) string {
		return lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("%d", value)) +
			" " + label
	}
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	line := strings.Join([]string{
		count(model.theme.SlotAvailable, "available", aggregate.Available),
		count(model.theme.SlotOccupied, "occupied", aggregate.Occupied),
		count(model.theme.SlotUnknown, "unknown", aggregate.Unknown),
	}, "  ") + faint.Render(fmt.Sprintf("  │  %d%% occupied  │  %d slots", aggregate.Percent(), aggregate.Total()))

	if !model.live && !model.snapshot.IsEmpty() {
		line += faint.Render("  · last known, not live")
	}
	return ansi.Truncate(line, model.width, "…")
}

// renderGrid renders height rows of slot cells starting at the scroll
// offset, with a scrollbar when the grid overflows.
func (model Model) renderGrid(height int) string {
	if len(model.visible) == 0 {
		return lipgloss.Place(model.width, height, lipgloss.Center, lipgloss.Center,
			lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(model.emptyText()))
	}

	columns, cellWidth := model.gridGeometry()
	totalRows := model.totalRows()
	now := model.now()

	lines := make([]string, 0, height)
	for row := model.scrollOffset; row < totalRows && len(lines) < height; row++ {
		cells := make([]string, 0, columns)
		for column := 0; column < columns; column++ {
			position := row*columns + column
			if position >= len(model.visible) {
				break
			}
			cells = append(cells, model.renderCell(model.visible[position], cellWidth, now))
		}
		lines = append(lines, strings.Join(cells, " "))
	}
	for len(lines) < height {
		lines = append(lines, "")
	}

	block := strings.Join(lines, "\n")
	if totalRows <= height {
		return block
	}
	scrollbar := tui.RenderScrollbar(model.theme, height, totalRows, height, model.scrollOffset)
	return lipgloss.JoinHorizontal(lipgloss.Top, block, " ", scrollbar)
}

// emptyText explains an empty grid.
func (model Model) emptyText() string {
	switch {
	case model.filter.Input != "" && !model.snapshot.IsEmpty():
		return fmt.Sprintf("No slots match %q", model.filter.Input)
	case model.live:
		return "No slots reported"
	case model.state.Status == reconnect.StatusExhausted:
		return "Server unreachable. Press r to retry."
	default:
		return "Waiting for data from server..."
	}
}

// renderCell renders one slot as a centered, colored label. Slots
// that just flipped take the heat tint instead of their status color;
// filter matches are underlined.
func (model Model) renderCell(index, width int, now time.Time) string {
	current := model.snapshot.At(index)

	background := model.theme.SlotColor(current.Status)
	if model.heatTracker.Heat(current.ID, now) > 0 {
		background = model.theme.HeatColor(model.heatTracker.Kind(current.ID))
	}
	base := lipgloss.NewStyle().
		Background(background).
		Foreground(model.theme.SlotText).
		Bold(true)

	label := ansi.Truncate(current.ID, width-2, "…")
	labelRunes := []rune(label)
	highlightable := len(labelRunes)
	if label != current.ID {
		highlightable-- // never underline the ellipsis
	}

	var content strings.Builder
	positions := model.highlights[index]
	if len(positions) == 0 {
		content.WriteString(base.Render(label))
	} else {
		marked := make(map[int]bool, len(positions))
		for _, position := range positions {
			marked[position] = true
		}
		highlight := base.Underline(true)
		for position, r := range labelRunes {
			style := base
			if position < highlightable && marked[position] {
				style = highlight
			}
			content.WriteString(style.Render(string(r)))
		}
	}

	labelWidth := ansi.StringWidth(label)
	left := (width - labelWidth) / 2
	right := width - labelWidth - left
	return base.Render(strings.Repeat(" ", left)) + content.String() + base.Render(strings.Repeat(" ", right))
}

// renderHelp renders the bottom bar: the latest log record while one
// is showing, otherwise key hints and the scroll position.
func (model Model) renderHelp() string {
	if model.logMessage != "" {
		color := model.theme.StatusConnecting
		if model.logLevel >= slog.LevelError {
			color = model.theme.StatusExhausted
		}
		style := lipgloss.NewStyle().Foreground(color)
		return style.Render(ansi.Truncate(model.logMessage, model.width, "…"))
	}

	style := lipgloss.NewStyle().Foreground(model.theme.HelpText)
	hints := []string{"/ filter", "r reconnect", "? help", "q quit"}
	text := strings.Join(hints, "  ")

	if rows := model.totalRows(); rows > model.gridHeight() {
		text += fmt.Sprintf("  │  rows %d-%d of %d",
			model.scrollOffset+1, min(model.scrollOffset+model.gridHeight(), rows), rows)
	}
	return style.Render(ansi.Truncate(text, model.width, "…"))
}

// helpLines lists the key bindings for the help overlay.
func (model Model) helpLines() []string {
	lines := []string{"Keys", ""}
	for _, binding := range model.keys.helpBindings() {
		help := binding.Help()
		lines = append(lines, fmt.Sprintf("%-6s %s", help.Key, help.Desc))
	}
	lines = append(lines, "", "Press any key to close")
	return lines
}
