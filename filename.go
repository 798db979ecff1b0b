package fedsync

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// RunFileExt is appended to every generated recording name
const RunFileExt = ".csv"

// runStem derives the date-stamped part of a recording name. A base ending
// in a path separator is a bare directory and gets ISO year-week-weekday;
// anything else keeps its name, minus extension, plus the calendar date.
func runStem(base string, now time.Time) string {
	if base == "" || strings.HasSuffix(base, "/") || strings.HasSuffix(base, string(filepath.Separator)) {
		year, week := now.ISOWeek()
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		return fmt.Sprintf("%s%d-%d-%d", base, year, week, weekday)
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + "-" + now.Format("2006-01-02")
}

// NextRunFile returns the first "<stem>_run-<n>.csv" name, n counting from 1,
// that does not exist yet on fs.
func NextRunFile(fs afero.Fs, base string, now time.Time) (string, error) {
	stem := runStem(base, now)
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s_run-%d%s", stem, n, RunFileExt)
		exists, err := afero.Exists(fs, name)
		if err != nil {
			return "", fmt.Errorf("check %s: %w", name, err)
		}
		if !exists {
			return name, nil
		}
	}
}
