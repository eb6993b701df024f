// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Command spotifyfolders is the glue layer spec.md §1 scopes out of the
// core: CLI surface, rootlist extraction, and JSON rendering. Grounded on
// the cobra command shape used by the pack's other pebble-derived CLI
// tool (other_examples' patrick-ogrady-pebble tool/wal.go), generalized
// from a multi-command introspection tool's root+subcommand tree to this
// program's own extract/scan/stats commands.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/redact"
	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mikez/spotify-folders/internal/base"
	"github.com/mikez/spotify-folders/internal/blockcache"
	"github.com/mikez/spotify-folders/internal/metrics"
	"github.com/mikez/spotify-folders/rootlist"
)

// app holds the flags shared across subcommands.
type app struct {
	cacheDir    string
	user        string
	folder      string
	metricsAddr string
	cacheSize   int
	verbose     bool

	reg *metrics.Registry
}

func main() {
	a := &app{}
	root := &cobra.Command{
		Use:   "spotifyfolders",
		Short: "Extract a Spotify desktop client's playlist folder hierarchy",
	}
	root.PersistentFlags().StringVar(&a.cacheDir, "cache", "", "PersistentCache/Storage directory to read")
	root.PersistentFlags().StringVar(&a.user, "user", "", "username hint (omit to infer from a *-user directory)")
	root.PersistentFlags().IntVar(&a.cacheSize, "block-cache-size", 256, "decompressed sstable blocks to keep in the read-through cache (0 disables it)")
	root.MarkPersistentFlagRequired("cache")

	extract := &cobra.Command{
		Use:   "extract",
		Short: "Print the playlist folder hierarchy as JSON",
		RunE:  a.runExtract,
	}
	extract.Flags().StringVar(&a.folder, "folder", "", "print only the folder whose URI ends in this id")
	extract.Flags().StringVar(&a.metricsAddr, "metrics-addr", "", "if set, serve Prometheus metrics on this address while extracting")

	scan := &cobra.Command{
		Use:   "scan",
		Short: "List every file under the candidate directory, newest first, with its kind (log, table or other)",
		RunE:  a.runScan,
	}
	scan.Flags().BoolVarP(&a.verbose, "verbose", "v", false, "also print a size sparkline")

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Extract once and print per-file lookup latency percentiles",
		RunE:  a.runStats,
	}

	root.AddCommand(extract, scan, stats)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (a *app) newLocator() *rootlist.Locator {
	loc := rootlist.NewLocator()
	if a.cacheSize > 0 {
		loc.Cache = blockcache.New(a.cacheSize)
	}
	if a.reg != nil {
		loc.Metrics = a.reg
	}
	return loc
}

func (a *app) runExtract(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	var g errgroup.Group
	if a.metricsAddr != "" {
		promReg := prometheus.NewRegistry()
		a.reg = metrics.NewRegistry(promReg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(promReg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: a.metricsAddr, Handler: mux}
		g.Go(srv.ListenAndServe)
		defer srv.Close()
	}

	user, raw, err := a.newLocator().Locate(ctx, a.cacheDir, a.user)
	if err != nil {
		return errors.Wrapf(err, "extracting rootlist from %s", redact.Safe(a.cacheDir))
	}

	tree := rootlist.Decode(raw, user)
	var out interface{} = tree.Root
	if a.folder != "" {
		node := tree.Find(a.folder)
		if node == nil {
			return errors.Newf("folder %q not found", a.folder)
		}
		out = node
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}

	if a.metricsAddr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "serving metrics on %s; press ctrl-c to exit\n", a.metricsAddr)
		return g.Wait()
	}
	return nil
}

func (a *app) runScan(cmd *cobra.Command, args []string) error {
	loc := a.newLocator()
	candidates, err := loc.ListCandidates(a.cacheDir, a.user)
	if err != nil {
		return errors.Wrapf(err, "scanning %s", redact.Safe(rootlist.RootDir(a.cacheDir, a.user)))
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"kind", "size", "modified", "path"})
	sizes := make([]float64, 0, len(candidates))
	for _, c := range candidates {
		table.Append([]string{
			c.Kind,
			strconv.FormatInt(c.Size, 10),
			c.ModTime.Format(time.RFC3339),
			c.Path,
		})
		sizes = append(sizes, float64(c.Size))
	}
	table.Render()

	if a.verbose && len(sizes) > 1 {
		fmt.Fprintln(cmd.OutOrStdout())
		fmt.Fprintln(cmd.OutOrStdout(), asciigraph.Plot(sizes, asciigraph.Height(10), asciigraph.Caption("candidate file sizes, newest first")))
	}
	return nil
}

func (a *app) runStats(cmd *cobra.Command, args []string) error {
	promReg := prometheus.NewRegistry()
	a.reg = metrics.NewRegistry(promReg)

	user, raw, err := a.newLocator().Locate(context.Background(), a.cacheDir, a.user)
	if err != nil && !errors.Is(err, base.ErrNotFound) {
		return errors.Wrapf(err, "extracting rootlist from %s", redact.Safe(a.cacheDir))
	}
	if err == nil {
		_ = rootlist.Decode(raw, user)
	}

	p50, p90, p99 := a.reg.LatencySnapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "per-file lookup latency (microseconds): p50=%d p90=%d p99=%d\n", p50, p90, p99)
	return nil
}
