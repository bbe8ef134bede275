// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/parknow/parkwatch/lib/reconnect"
	"github.com/parknow/parkwatch/lib/slot"
)

// Theme is the color palette for parkwatch's terminal views. All
// colors are lipgloss ANSI 256-color codes for broad terminal
// compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Slot cells.
	SlotAvailable lipgloss.Color
	SlotOccupied  lipgloss.Color
	SlotUnknown   lipgloss.Color
	SlotText      lipgloss.Color

	// Connection indicator.
	StatusConnecting   lipgloss.Color
	StatusConnected    lipgloss.Color
	StatusDisconnected lipgloss.Color
	StatusExhausted    lipgloss.Color

	// Scope error banner.
	BannerForeground lipgloss.Color
	BannerBackground lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Change glow: background tint for slots that just flipped.
	// HeatFreed is for slots that became available, HeatTaken for
	// slots that became occupied.
	HeatFreed lipgloss.Color
	HeatTaken lipgloss.Color

	// Filter match highlighting.
	SearchHighlightBackground lipgloss.Color

	// Overlay panels.
	OverlayForeground lipgloss.Color
	OverlayBackground lipgloss.Color
}

// SlotColor returns the cell color for a slot status.
func (theme Theme) SlotColor(status slot.Status) lipgloss.Color {
	switch status {
	case slot.StatusAvailable:
		return theme.SlotAvailable
	case slot.StatusOccupied:
		return theme.SlotOccupied
	default:
		return theme.SlotUnknown
	}
}

// StatusColor returns the indicator color for a connection status.
func (theme Theme) StatusColor(status reconnect.Status) lipgloss.Color {
	switch status {
	case reconnect.StatusConnecting:
		return theme.StatusConnecting
	case reconnect.StatusConnected:
		return theme.StatusConnected
	case reconnect.StatusDisconnected:
		return theme.StatusDisconnected
	case reconnect.StatusExhausted:
		return theme.StatusExhausted
	default:
		return theme.FaintText
	}
}

// HeatColor returns the glow tint for a change kind.
func (theme Theme) HeatColor(kind HeatKind) lipgloss.Color {
	if kind == HeatTaken {
		return theme.HeatTaken
	}
	return theme.HeatFreed
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SlotAvailable: lipgloss.Color("34"),  // green
	SlotOccupied:  lipgloss.Color("160"), // red
	SlotUnknown:   lipgloss.Color("242"), // gray
	SlotText:      lipgloss.Color("255"),

	StatusConnecting:   lipgloss.Color("220"), // amber
	StatusConnected:    lipgloss.Color("114"), // green
	StatusDisconnected: lipgloss.Color("208"), // orange
	StatusExhausted:    lipgloss.Color("196"), // red

	BannerForeground: lipgloss.Color("231"),
	BannerBackground: lipgloss.Color("88"), // dark red

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	HeatFreed: lipgloss.Color("120"), // pale green
	HeatTaken: lipgloss.Color("217"), // pale red

	SearchHighlightBackground: lipgloss.Color("58"), // dark amber

	OverlayForeground: lipgloss.Color("252"),
	OverlayBackground: lipgloss.Color("237"),
}
