package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"time"

	. "github.com/evilsocket/sumbench/common"

	"github.com/evilsocket/sumbench/backend"
	"github.com/evilsocket/sumbench/device"
	"github.com/evilsocket/sumbench/harness"
	"github.com/evilsocket/sumbench/workload"

	"github.com/dustin/go-humanize"
	"github.com/evilsocket/islazy/fs"
	"github.com/evilsocket/islazy/log"
	"github.com/evilsocket/islazy/str"
)

var (
	size       = flag.Int("size", harness.DefaultSize, "Number of elements of each input array.")
	backends   = flag.String("backends", "serial,parallel,kernel,primitive", "Comma separated list of backends to run, in order.")
	workers    = flag.Int("workers", 0, "Parallel backend workers, 0 for one per core.")
	groupSize  = flag.Int("group-size", 0, "Kernel work-group size, 0 for the device maximum.")
	samples    = flag.Int("samples", harness.DefaultSamples, "Number of results to print for each backend.")
	verify     = flag.Bool("verify", false, "Check every result against a+b.")
	summary    = flag.Bool("summary", false, "Print a summary table at the end.")
	info       = flag.Bool("info", false, "Print runtime and device information before running.")
	configFile = flag.String("config", "", "JSON configuration file, explicitly set flags override it.")
	reportFile = flag.String("report", "", "If filled, save the results to this file.")
	logFile    = flag.String("log-file", "", "If filled, sumbench will log to this file.")
	logDebug   = flag.Bool("debug", false, "Enable debug logs.")

	cpuProfile = flag.String("cpu-profile", "", "Write CPU profile to this file.")
	memProfile = flag.String("mem-profile", "", "Write memory profile to this file.")
)

func loadConfig() *harness.Config {
	cfg := harness.DefaultConfig()
	if *configFile != "" {
		if !fs.Exists(*configFile) {
			log.Fatal("configuration file %s not found", *configFile)
		}

		var err error
		if cfg, err = harness.LoadConfig(*configFile); err != nil {
			log.Fatal("%v", err)
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "size":
			cfg.Size = *size
		case "backends":
			cfg.Backends = str.Comma(*backends)
		case "workers":
			cfg.Workers = *workers
		case "group-size":
			cfg.GroupSize = *groupSize
		case "samples":
			cfg.Samples = *samples
		case "verify":
			cfg.Verify = *verify
		case "summary":
			cfg.Summary = *summary
		case "report":
			cfg.Report = *reportFile
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal("%v", err)
	}
	return cfg
}

func main() {
	flag.Parse()

	StartProfiling(cpuProfile)

	run := &Run{}
	SetupSignals(func(_ os.Signal) {
		if err := run.Teardown(); err != nil {
			log.Error("%v", err)
		}
		DoCleanup(cpuProfile, memProfile)
	})

	SetupLogging(logFile, logDebug)
	defer TeardownLogging()

	cfg := loadConfig()

	list, err := backend.NewAll(cfg.Backends, cfg.Options())
	if err != nil {
		log.Fatal("%v", err)
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.NumCPU()
	}

	started := time.Now()
	h := harness.New(list)
	h.Samples = cfg.Samples
	h.Verify = cfg.Verify

	run.Lock()
	run.Backends = list
	run.Harness = h
	run.ReportFile = cfg.Report
	run.Report = &harness.Report{
		Version: harness.Version,
		Size:    cfg.Size,
		Workers: workers,
		Started: started,
	}
	run.Unlock()

	pair := workload.RandomPair(cfg.Size)
	if !pair.Fits() {
		log.Warning("workload needs %s, more than the available memory", humanize.Bytes(pair.Bytes()))
	}
	log.Debug("generated %s of input in %s", humanize.Bytes(pair.Bytes()), time.Since(started))

	if *info {
		dev, err := device.Default()
		if err != nil {
			log.Fatal("%v", err)
		}
		harness.PrintInfo(os.Stdout, dev, pair)
	}

	fmt.Printf("\nUsing count = %d\n\n", cfg.Size)

	results, err := h.Run(pair)
	if err != nil {
		if terr := run.Teardown(); terr != nil {
			log.Error("%v", terr)
		}
		log.Fatal("%v", err)
	}

	if cfg.Summary {
		harness.PrintSummary(os.Stdout, results)
	}

	if err := run.Teardown(); err != nil {
		log.Error("%v", err)
	} else if cfg.Report != "" {
		log.Info("report saved to %s", cfg.Report)
	}

	DoCleanup(cpuProfile, memProfile)
}
