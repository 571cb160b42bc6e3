package session

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// ChangeStats summarizes the line-level difference between two revisions
// of a paper. It exists for progress output; nothing downstream depends
// on it.
type ChangeStats struct {
	Added   int
	Removed int
}

func (c ChangeStats) String() string {
	return fmt.Sprintf("+%d/-%d lines", c.Added, c.Removed)
}

// Changes computes line-based change stats between two document texts.
func Changes(before, after string) ChangeStats {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var stats ChangeStats
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			stats.Added += lineCount(d.Text)
		case diffmatchpatch.DiffDelete:
			stats.Removed += lineCount(d.Text)
		}
	}
	return stats
}

func lineCount(chunk string) int {
	if chunk == "" {
		return 0
	}
	n := strings.Count(chunk, "\n")
	if !strings.HasSuffix(chunk, "\n") {
		n++
	}
	return n
}
