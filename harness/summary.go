package harness

import (
	"fmt"
	"io"

	"github.com/evilsocket/islazy/tui"
)

// PrintSummary prints a table with the elapsed time of every run and its
// speedup against the first one.
func PrintSummary(w io.Writer, results []Result) {
	if len(results) == 0 {
		return
	}

	base := results[0].Elapsed.Seconds()
	columns := []string{"backend", "elapsed", "speedup"}
	rows := make([][]string, 0, len(results))

	for _, res := range results {
		speedup := "-"
		if secs := res.Elapsed.Seconds(); secs > 0 && base > 0 {
			speedup = fmt.Sprintf("%.2fx", base/secs)
		}

		name := res.Backend
		if res.Verified && res.MaxError != 0 {
			name += " (mismatch)"
		}

		rows = append(rows, []string{
			name,
			fmt.Sprintf("%.05fs", res.Elapsed.Seconds()),
			speedup,
		})
	}

	tui.Table(w, columns, rows)
}
