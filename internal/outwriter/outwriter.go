// Package outwriter has output and writer logic.
package outwriter

import (
	"os"
	"unicode/utf8"

	"github.com/huangsam/tsfeat/internal/contract"
	"golang.org/x/term"
)

const (
	defaultTermWidth = 80 // Conservative default for narrow terminals and CI
	maxIDWidth       = 30
	cellPadding      = 3 // Separator plus one space on each side
)

// getTermWidth returns the configured width override or the detected terminal width.
func getTermWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return defaultTermWidth
	}
	return detectedWidth
}

// paginateColumns splits feature columns into pages that fit beside the id
// column within the terminal width. Every page holds at least one column.
func paginateColumns(names []string, termWidth, idWidth, valueWidth int) [][]string {
	available := termWidth - (idWidth + cellPadding) - 1
	var pages [][]string
	var page []string
	used := 0
	for _, name := range names {
		w := max(utf8.RuneCountInString(name), valueWidth) + cellPadding
		if len(page) > 0 && used+w > available {
			pages = append(pages, page)
			page, used = nil, 0
		}
		page = append(page, name)
		used += w
	}
	if len(page) > 0 {
		pages = append(pages, page)
	}
	return pages
}
