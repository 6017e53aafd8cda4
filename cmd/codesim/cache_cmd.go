package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/panbanda/codesim/internal/cache"
	"github.com/urfave/cli/v2"
)

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Inspect or clear the unit cache",
		Description: `The unit cache stores extracted units per provider and file content under
cache.dir. It is only used when cache.enabled is set.`,
		Subcommands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show cache entry count, size and age",
				Action: runCacheStats,
			},
			{
				Name:   "clear",
				Usage:  "Remove every cache entry",
				Action: runCacheClear,
			},
		},
	}
}

// openCache opens the configured cache directory even when caching is
// disabled for comparisons, so stale entries can still be inspected.
func openCache(c *cli.Context) (*cache.Cache, string, error) {
	st := getState(c)
	dir := st.cfg.Cache.Dir
	if dir == "" {
		return nil, "", cli.Exit("cache.dir is not set", 1)
	}
	store, err := cache.New(dir, st.cfg.Cache.TTL, true)
	if err != nil {
		return nil, "", cli.Exit(fmt.Sprintf("open cache %s: %v", dir, err), 1)
	}
	return store, dir, nil
}

func runCacheStats(c *cli.Context) error {
	store, dir, err := openCache(c)
	if err != nil {
		return err
	}
	stats, err := store.GetStats()
	if err != nil {
		return cli.Exit(fmt.Sprintf("read cache %s: %v", dir, err), 1)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Directory: %s\n", dir)
	fmt.Fprintf(w, "Enabled:   %s\n", yesNo(getState(c).cfg.Cache.Enabled))
	fmt.Fprintf(w, "Entries:   %d\n", stats.Entries)
	fmt.Fprintf(w, "Size:      %d bytes\n", stats.TotalSize)
	if stats.Entries > 0 {
		fmt.Fprintf(w, "Oldest:    %s\n", stats.OldestAge.Round(time.Second))
		fmt.Fprintf(w, "Newest:    %s\n", stats.NewestAge.Round(time.Second))
	}
	return nil
}

func runCacheClear(c *cli.Context) error {
	store, dir, err := openCache(c)
	if err != nil {
		return err
	}
	stats, err := store.GetStats()
	if err != nil {
		return cli.Exit(fmt.Sprintf("read cache %s: %v", dir, err), 1)
	}
	if err := store.Clear(); err != nil {
		return cli.Exit(fmt.Sprintf("clear cache %s: %v", dir, err), 1)
	}
	fmt.Fprintln(c.App.Writer, color.GreenString("Removed %d cache entries from %s", stats.Entries, dir))
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
