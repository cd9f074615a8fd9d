package harness

import (
	"fmt"
	"io"
	"runtime"

	"github.com/evilsocket/sumbench/device"
	"github.com/evilsocket/sumbench/workload"

	"github.com/dustin/go-humanize"
	"github.com/evilsocket/islazy/tui"
)

// Info returns name/value rows describing the runtime, the compute device
// and the workload about to be benchmarked.
func Info(dev *device.Device, pair *workload.Pair) [][]string {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	rows := [][]string{
		{"version", Version},
		{"os", runtime.GOOS},
		{"arch", runtime.GOARCH},
		{"go", runtime.Version()},
		{"cpus", fmt.Sprintf("%d", runtime.NumCPU())},
		{"max_cpus", fmt.Sprintf("%d", runtime.GOMAXPROCS(0))},
		{"sys", humanize.Bytes(m.Sys)},
	}

	if dev != nil {
		rows = append(rows,
			[]string{"device", dev.String()},
			[]string{"device_mem", humanize.Bytes(dev.TotalMem)},
		)
	}

	if pair != nil {
		rows = append(rows,
			[]string{"count", humanize.Comma(int64(pair.Size()))},
			[]string{"workload", humanize.Bytes(pair.Bytes())},
		)
	}

	return rows
}

// PrintInfo prints the Info rows as a table.
func PrintInfo(w io.Writer, dev *device.Device, pair *workload.Pair) {
	tui.Table(w, []string{"name", "value"}, Info(dev, pair))
}
