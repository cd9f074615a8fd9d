package harness

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/evilsocket/sumbench/backend"

	"github.com/stretchr/testify/require"
)

func tmpFolder(t *testing.T) string {
	dir, err := ioutil.TempDir("", "sumbench")
	require.NoError(t, err)
	return dir
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, DefaultSize, cfg.Size)
	require.Equal(t, backend.Names, cfg.Backends)
	require.Equal(t, DefaultSamples, cfg.Samples)

	// must be a copy
	cfg.Backends[0] = "changed"
	require.Equal(t, "serial", backend.Names[0])
}

func TestLoadConfig(t *testing.T) {
	dir := tmpFolder(t)
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "cfg.json")
	err := ioutil.WriteFile(fileName, []byte(`{"size": 3, "backends": ["kernel", "serial"], "group_size": 16}`), 0644)
	require.NoError(t, err)

	cfg, err := LoadConfig(fileName)
	require.NoError(t, err)
	require.Equal(t, 3, cfg.Size)
	require.Equal(t, []string{"kernel", "serial"}, cfg.Backends)
	require.Equal(t, DefaultSamples, cfg.Samples)
	require.Equal(t, backend.Options{GroupSize: 16}, cfg.Options())
}

func TestSaveConfig(t *testing.T) {
	dir := tmpFolder(t)
	defer os.RemoveAll(dir)

	cfg := DefaultConfig()
	cfg.Verify = true
	cfg.Workers = 4

	fileName := filepath.Join(dir, "cfg.json")
	require.NoError(t, cfg.Save(fileName))
	require.FileExists(t, fileName)

	loaded, err := LoadConfig(fileName)
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)

	require.Error(t, cfg.Save(filepath.Join(dir, "not", "there.json")))
}

func TestBadConfig(t *testing.T) {
	_, err := LoadConfig("/not/found")
	require.Error(t, err)

	dir := tmpFolder(t)
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "cfg.json")
	for _, data := range []string{
		"not a json thingy",
		`{"size": -1}`,
		`{"workers": -1}`,
		`{"group_size": -1}`,
		`{"samples": -1}`,
		`{"backends": []}`,
		`{"backends": ["serial", "quantum"]}`,
	} {
		require.NoError(t, ioutil.WriteFile(fileName, []byte(data), 0644))
		_, err = LoadConfig(fileName)
		require.Error(t, err, data)
	}
}

func TestValidateUnknownBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backends = []string{"quantum"}
	require.True(t, errors.Is(cfg.Validate(), backend.ErrUnknownBackend))
}

func TestReportRoundTrip(t *testing.T) {
	dir := tmpFolder(t)
	defer os.RemoveAll(dir)

	report := &Report{
		Version: Version,
		Size:    3000000,
		Workers: 8,
		Started: time.Date(2021, 12, 23, 10, 0, 0, 123, time.UTC),
		Results: []Result{
			{Backend: "serial", Elapsed: 12345678 * time.Nanosecond, Verified: true},
			{Backend: "kernel", Elapsed: 42 * time.Microsecond, Verified: true, MaxError: 1},
		},
	}

	fileName := filepath.Join(dir, "report.dat")
	require.NoError(t, SaveReport(fileName, report))

	loaded, err := LoadReport(fileName)
	require.NoError(t, err)
	require.True(t, report.Started.Equal(loaded.Started))
	loaded.Started = report.Started
	require.Equal(t, report, loaded)
}

func TestLoadBadReport(t *testing.T) {
	_, err := LoadReport("/not/found")
	require.Error(t, err)

	dir := tmpFolder(t)
	defer os.RemoveAll(dir)

	fileName := filepath.Join(dir, "report.dat")
	require.NoError(t, ioutil.WriteFile(fileName, []byte{0xff, 0xff, 0xff}, 0644))
	_, err = LoadReport(fileName)
	require.Error(t, err)
}
