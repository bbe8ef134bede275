// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package facility

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/parknow/parkwatch/lib/tui"
)

//go:embed builtin.jsonc
var builtinSource []byte

// Facility is the static description of one parking facility.
type Facility struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Address      string `json:"address,omitempty"`
	City         string `json:"city,omitempty"`
	TotalSlots   int    `json:"totalSlots"`
	PricePerHour int    `json:"pricePerHour,omitempty"`
	OpeningHours string `json:"openingHours,omitempty"`
}

// PriceLabel formats the hourly price in won with thousands
// separators, e.g. "₩3,500/h". Empty when no price is known.
func (f Facility) PriceLabel() string {
	if f.PricePerHour <= 0 {
		return ""
	}
	digits := strconv.Itoa(f.PricePerHour)
	var grouped strings.Builder
	for index, digit := range digits {
		if index > 0 && (len(digits)-index)%3 == 0 {
			grouped.WriteByte(',')
		}
		grouped.WriteRune(digit)
	}
	return "₩" + grouped.String() + "/h"
}

// searchText is what Search matches against.
func (f Facility) searchText() string {
	return f.Name + " " + f.City + " " + f.ID
}

// Catalog is an immutable, ordered set of facilities keyed by ID.
type Catalog struct {
	facilities []Facility
	index      map[string]int
}

type catalogFile struct {
	Facilities []Facility `json:"facilities"`
}

// NewCatalog validates facilities and builds a catalog. IDs must be
// non-empty and unique, names non-empty, slot totals non-negative.
// Every problem is reported, not just the first.
func NewCatalog(facilities []Facility) (*Catalog, error) {
	catalog := &Catalog{
		facilities: make([]Facility, len(facilities)),
		index:      make(map[string]int, len(facilities)),
	}
	copy(catalog.facilities, facilities)

	var errs []error
	for position, entry := range catalog.facilities {
		switch {
		case entry.ID == "":
			errs = append(errs, fmt.Errorf("facility %d: id is required", position))
			continue
		case entry.Name == "":
			errs = append(errs, fmt.Errorf("facility %q: name is required", entry.ID))
		case entry.TotalSlots < 0:
			errs = append(errs, fmt.Errorf("facility %q: totalSlots must be non-negative, got %d", entry.ID, entry.TotalSlots))
		}
		if _, duplicate := catalog.index[entry.ID]; duplicate {
			errs = append(errs, fmt.Errorf("facility %q: duplicate id", entry.ID))
			continue
		}
		catalog.index[entry.ID] = position
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return catalog, nil
}

// ParseCatalog reads a JSONC catalog: an object with a "facilities"
// array. Comments and trailing commas are allowed.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	return NewCatalog(file.Facilities)
}

// LoadCatalog reads and parses the catalog at path.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	catalog, err := ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return catalog, nil
}

// Builtin returns the catalog compiled into the binary.
func Builtin() *Catalog {
	catalog, err := ParseCatalog(builtinSource)
	if err != nil {
		panic("facility: built-in catalog is invalid: " + err.Error())
	}
	return catalog
}

// Len returns the number of facilities.
func (c *Catalog) Len() int { return len(c.facilities) }

// All returns every facility in catalog order. The slice is a copy.
func (c *Catalog) All() []Facility {
	all := make([]Facility, len(c.facilities))
	copy(all, c.facilities)
	return all
}

// Lookup returns the facility with the given ID.
func (c *Catalog) Lookup(id string) (Facility, bool) {
	position, ok := c.index[id]
	if !ok {
		return Facility{}, false
	}
	return c.facilities[position], true
}

// Describe returns the facility for id, or a placeholder named
// "unknown facility" when the catalog does not have it. The placeholder
// keeps the ID so views can still show what was asked for.
func (c *Catalog) Describe(id string) (Facility, bool) {
	if entry, ok := c.Lookup(id); ok {
		return entry, true
	}
	return Facility{ID: id, Name: "unknown facility"}, false
}

// Search fuzzy-matches query against each facility's name, city, and
// ID and returns matches best first. A blank query returns everything
// in catalog order.
func (c *Catalog) Search(query string) []Facility {
	candidates := make([]string, len(c.facilities))
	for position, entry := range c.facilities {
		candidates[position] = entry.searchText()
	}
	ranks := tui.FuzzyFilter(query, candidates)
	results := make([]Facility, len(ranks))
	for position, rank := range ranks {
		results[position] = c.facilities[rank.Index]
	}
	return results
}
