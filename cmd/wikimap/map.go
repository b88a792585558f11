package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/fwojciec/wikimap"
	"github.com/fwojciec/wikimap/crawl"
	wikislog "github.com/fwojciec/wikimap/slog"
)

// Run executes the map command.
func (c *MapCmd) Run(deps *Dependencies) error {
	res, err := deps.Resolver.Resolve(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikimap.ErrorMessage(err))
		return err
	}

	recs, err := selectRecords(res, c.Version, c.Latest)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikimap.ErrorMessage(err))
		return err
	}
	if len(recs) == 0 {
		fmt.Fprintln(deps.Stdout, "No available versions to map.")
		return nil
	}

	if c.Resume && len(deps.Stores) > 0 {
		saved, err := deps.Stores[0].LoadMap(deps.Ctx)
		switch {
		case wikimap.ErrorCode(err) == wikimap.ENOTFOUND:
		case err != nil:
			fmt.Fprintf(deps.Stderr, "error: %s\n", wikimap.ErrorMessage(err))
			return err
		default:
			n := deps.Mapper.Cache.Merge(saved)
			fmt.Fprintf(deps.Stdout, "Resumed with %d saved links\n", n)
		}
	}

	start := time.Now()
	results, mapErr := deps.Mapper.MapAll(deps.Ctx, recs, progress(deps))

	printResults(deps, recs, results)

	snapshot := deps.Mapper.Cache.Snapshot()
	for _, store := range deps.Stores {
		if err := store.SaveMap(deps.Ctx, snapshot); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", wikimap.ErrorMessage(err))
			return errors.Join(mapErr, err)
		}
	}

	fmt.Fprintf(deps.Stdout, "\nMapped %d links across %d versions in %s\n",
		snapshot.Len(), len(snapshot), time.Since(start).Round(time.Millisecond))

	return mapErr
}

func progress(deps *Dependencies) crawl.ProgressFunc {
	if deps.Logger == nil {
		return nil
	}
	return wikislog.ProgressLogger(deps.Logger)
}

func printResults(deps *Dependencies, recs []wikimap.VersionRecord, results map[wikimap.VersionID]*crawl.VersionResult) {
	for _, rec := range recs {
		r, ok := results[rec.ID]
		if !ok {
			fmt.Fprintf(deps.Stdout, "%s  not mapped\n", rec.ID)
			continue
		}
		fmt.Fprintf(deps.Stdout, "%s  %-12s pages=%d failed=%d links=%d removed=%d seen=~%d\n",
			r.Version, r.State, r.Pages, r.Failed, r.Links, r.Removed, r.Seen)
		if r.State == crawl.StateRateLimited {
			fmt.Fprintf(deps.Stdout, "    stopped early: wiki rate limit reached after %d requests\n", r.Stats.LimitAt)
		}
	}
}
