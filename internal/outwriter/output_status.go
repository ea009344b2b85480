package outwriter

import (
	"fmt"
	"io"
	"slices"

	"github.com/huangsam/tsfeat/internal/contract"
	"github.com/huangsam/tsfeat/schema"
)

const statusTimeFormat = "2006-01-02 15:04:05"

// PrintCacheStatus prints cache status information as text or JSON.
func PrintCacheStatus(status schema.CacheStatus, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if cfg.Output == schema.JSONOut {
			return writeJSON(w, status)
		}
		return writeCacheStatusText(w, status)
	}, "Wrote cache status")
}

// PrintRunStatus prints run tracking status information as text or JSON.
func PrintRunStatus(status schema.RunStatus, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		if cfg.Output == schema.JSONOut {
			return writeJSON(w, status)
		}
		return writeRunStatusText(w, status)
	}, "Wrote run status")
}

func writeCacheStatusText(w io.Writer, status schema.CacheStatus) error {
	lines := []string{
		fmt.Sprintf("Cache Backend: %s", status.Backend),
		fmt.Sprintf("Connected: %t", status.Connected),
	}
	if status.Connected {
		lines = append(lines, fmt.Sprintf("Total Entries: %d", status.TotalEntries))
		if status.TotalEntries > 0 {
			lines = append(lines,
				fmt.Sprintf("Last Entry: %s", status.LastEntryTime.Format(statusTimeFormat)),
				fmt.Sprintf("Oldest Entry: %s", status.OldestEntryTime.Format(statusTimeFormat)),
			)
		}
		lines = append(lines, fmt.Sprintf("Table Size: %d bytes", status.TableSizeBytes))
	}
	return writeLines(w, lines)
}

func writeRunStatusText(w io.Writer, status schema.RunStatus) error {
	lines := []string{
		fmt.Sprintf("Runs Backend: %s", status.Backend),
		fmt.Sprintf("Connected: %t", status.Connected),
	}
	if status.Connected {
		lines = append(lines, fmt.Sprintf("Total Runs: %d", status.TotalRuns))
		if status.TotalRuns > 0 {
			lines = append(lines,
				fmt.Sprintf("Last Run ID: %d", status.LastRunID),
				fmt.Sprintf("Last Run: %s", status.LastRunTime.Format(statusTimeFormat)),
				fmt.Sprintf("Oldest Run: %s", status.OldestRunTime.Format(statusTimeFormat)),
				fmt.Sprintf("Total Groups Traced: %d", status.TotalGroupsTraced),
			)
		}
		lines = append(lines, "Table Sizes:")
		tables := make([]string, 0, len(status.TableSizes))
		for name := range status.TableSizes {
			tables = append(tables, name)
		}
		slices.Sort(tables)
		for _, name := range tables {
			lines = append(lines, fmt.Sprintf("  %s: %d rows", name, status.TableSizes[name]))
		}
	}
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
