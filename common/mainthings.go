package common

import (
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"sync"
	"syscall"

	"github.com/evilsocket/sumbench/backend"
	"github.com/evilsocket/sumbench/harness"

	"github.com/evilsocket/islazy/log"
	"github.com/sirupsen/logrus"
)

// ExitStatus returns the conventional shell status for a process stopped by sig.
func ExitStatus(sig os.Signal) int {
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}

func StartProfiling(cpuProfile *string) {
	if *cpuProfile == "" {
		return
	}

	if f, err := os.Create(*cpuProfile); err != nil {
		log.Fatal("%v", err)
	} else if err := pprof.StartCPUProfile(f); err != nil {
		log.Fatal("%v", err)
	}
}

// SetupSignals runs the handlers when the benchmark gets interrupted, then
// exits with ExitStatus of the signal.
func SetupSignals(handlers ...func(os.Signal)) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)
	go func() {
		sig := <-sigChan
		log.Warning("interrupted by signal %v", sig)
		for _, handler := range handlers {
			handler(sig)
		}

		os.Exit(ExitStatus(sig))
	}()
}

// Run tracks what must be released or saved when the benchmark ends,
// either normally or because of a signal.
type Run struct {
	sync.Mutex
	Backends   []backend.Backend
	Harness    *harness.Harness
	Report     *harness.Report
	ReportFile string

	done bool
}

// Teardown closes the backends command queues and saves the report with the
// results completed so far. Only the first call does anything.
func (r *Run) Teardown() error {
	r.Lock()
	defer r.Unlock()

	if r.done {
		return nil
	}
	r.done = true

	backend.Close(r.Backends)

	if r.ReportFile == "" || r.Report == nil {
		return nil
	}

	if r.Harness != nil {
		r.Report.Results = r.Harness.Results()
	}

	log.Info("saving report with %d results to %s ...", len(r.Report.Results), r.ReportFile)
	return harness.SaveReport(r.ReportFile, r.Report)
}

func DoCleanup(cpuProfile, memProfile *string) {
	if *cpuProfile != "" {
		log.Info("saving cpu profile to %s ...", *cpuProfile)
		pprof.StopCPUProfile()
	}

	if *memProfile != "" {
		log.Info("saving memory profile to %s ...", *memProfile)
		f, err := os.Create(*memProfile)
		if err != nil {
			log.Error("could not create memory profile: %s", err)
			return
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Error("could not write memory profile: %s", err)
		}
	}
}

func SetupLogging(logFile *string, logDebug *bool) {
	log.OnFatal = log.ExitOnFatal
	if *logFile != "" {
		log.Output = *logFile

		f, err := os.OpenFile(*logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			panic(err)
		}

		logrus.SetOutput(f)
	}

	if *logDebug {
		log.Level = log.DEBUG
		logrus.SetLevel(logrus.DebugLevel)
	}

	if err := log.Open(); err != nil {
		panic(err)
	}
}

func TeardownLogging() {
	log.Close()
}
