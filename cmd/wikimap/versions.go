package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/fwojciec/wikimap"
)

// Run executes the versions command.
func (c *VersionsCmd) Run(deps *Dependencies) error {
	res, err := deps.Resolver.Resolve(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", wikimap.ErrorMessage(err))
		return err
	}

	if c.Latest {
		latest, ok := res.Latest()
		if !ok {
			fmt.Fprintln(deps.Stderr, "error: no wiki version is available")
			return wikimap.Errorf(wikimap.ENOTFOUND, "no wiki version is available")
		}
		fmt.Fprintf(deps.Stdout, "%s  %s\n", latest, res.Available[latest])
		return nil
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if len(res.Available) == 0 {
		fmt.Fprintln(deps.Stdout, "No available versions.")
	} else {
		fmt.Fprintf(deps.Stdout, "Available versions (%d):\n", len(res.Available))
		for _, id := range res.Versions() {
			fmt.Fprintf(deps.Stdout, "  %s  %s\n", id, res.Available[id])
		}
	}

	if len(res.Unavailable) > 0 {
		ids := make([]wikimap.VersionID, 0, len(res.Unavailable))
		for id := range res.Unavailable {
			ids = append(ids, id)
		}
		wikimap.SortVersions(ids)
		fmt.Fprintf(deps.Stdout, "\nUnavailable versions (%d):\n", len(ids))
		for _, id := range ids {
			fmt.Fprintf(deps.Stdout, "  %s  %s\n", id, res.Unavailable[id])
		}
	}

	return nil
}

// selectRecords narrows the reachable records to the requested version.
// An empty version with latest unset selects every record.
func selectRecords(res *wikimap.Resolution, version string, latest bool) ([]wikimap.VersionRecord, error) {
	var want wikimap.VersionID
	switch {
	case latest:
		id, ok := res.Latest()
		if !ok {
			return nil, wikimap.Errorf(wikimap.ENOTFOUND, "no wiki version is available")
		}
		want = id
	case version != "":
		want = wikimap.NormalizeVersion(version)
		if _, ok := res.Available[want]; !ok {
			if reason, ok := res.Unavailable[want]; ok {
				return nil, wikimap.Errorf(wikimap.ENOTFOUND, "version %s is unavailable: %s", want, reason)
			}
			return nil, wikimap.Errorf(wikimap.ENOTFOUND, "version %s not found in the revision history", want)
		}
	}

	var recs []wikimap.VersionRecord
	for _, rec := range res.Records {
		if !rec.Reachable {
			continue
		}
		if want != "" && rec.ID != want {
			continue
		}
		recs = append(recs, rec)
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].ID.Number() < recs[j].ID.Number()
	})
	return recs, nil
}
