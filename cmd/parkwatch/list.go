// Copyright 2026 The Parkwatch Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/parknow/parkwatch/lib/cli"
	"github.com/parknow/parkwatch/lib/facility"
)

// runList prints the location directory: the catalog merged with the
// backend's /locations listing, fuzzy-filtered by query. When the
// backend is unreachable the catalog rows are still printed, without
// counts, and the command fails as transient.
func runList(ctx context.Context, stdout io.Writer, catalog *facility.Catalog, directory *facility.Client, query string, timeout time.Duration) error {
	lookupContext, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	locations, fetchErr := directory.Locations(lookupContext)

	entries := facility.FilterEntries(facility.Directory(catalog, locations), query)
	if len(entries) == 0 {
		if fetchErr != nil {
			return cli.Transient("listing locations from %s: %w", directory.BaseURL(), fetchErr)
		}
		return cli.NotFound("no location matches %q", query).
			WithHint("Run 'parkwatch --list' without --search to see every location.")
	}

	writer := tabwriter.NewWriter(stdout, 2, 0, 3, ' ', 0)
	fmt.Fprintf(writer, "ID\tNAME\tCITY\tAVAILABLE\tOCCUPIED\tTOTAL\n")
	for _, entry := range entries {
		available, occupied := "-", "-"
		if entry.Listed {
			available = strconv.Itoa(entry.Summary.Available)
			occupied = strconv.Itoa(entry.Summary.Occupied)
		}
		total := "-"
		if slots := entry.TotalSlots(); slots > 0 {
			total = strconv.Itoa(slots)
		}
		city := entry.Facility.City
		if city == "" {
			city = "-"
		}
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.Facility.ID, entry.DisplayName(), city, available, occupied, total)
	}
	writer.Flush()

	if fetchErr != nil {
		return cli.Transient("listing locations from %s: %w", directory.BaseURL(), fetchErr).
			WithHint("Counts are missing because the occupancy service could not be reached. Check --server or server.http_url.")
	}
	return nil
}
