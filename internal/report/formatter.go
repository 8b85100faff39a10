// Package report formats fitting results for display.
package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"rsz/internal/model"
)

// FormatCluster formats one cluster's results for the terminal.
func FormatCluster(c *model.Cluster, fits map[string]*model.FitResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("%s  (%.5f, %+.5f)", c.Name, c.RA, c.Dec))
	if c.CenterLocated {
		b.WriteString("  [center located]")
	}
	b.WriteString("\n")

	names := make([]string, 0, len(fits))
	for name := range fits {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		res := fits[name]
		est, ok := c.Estimates[name]
		if !ok {
			b.WriteString(fmt.Sprintf("  %-16s  no redshift (color %.3f outside model range)\n",
				name, res.Fit.Intercept))
			continue
		}
		flags := c.Flags[name]
		b.WriteString(fmt.Sprintf("  %-16s  z=%.3f +%.3f -%.3f  members=%d  scatter=%.3f  flags=%d\n",
			name, est.Value, est.UpperErr, est.LowerErr,
			len(res.Members), res.Fit.Scatter, flags.Bitmask()))
	}
	if c.Interesting {
		b.WriteString("  marked interesting\n")
	}
	return b.String()
}

// FormatRunSummary formats the end-of-batch summary line.
func FormatRunSummary(clusters, fitted, sources int, elapsed time.Duration) string {
	return fmt.Sprintf("processed %d clusters (%d with redshifts) over %s sources in %s",
		clusters, fitted, humanize.Comma(int64(sources)), elapsed.Round(time.Millisecond))
}
