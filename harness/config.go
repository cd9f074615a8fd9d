package harness

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/evilsocket/sumbench/backend"

	log "github.com/sirupsen/logrus"
)

// DefaultSize is the number of elements of each input array.
const DefaultSize = 3000000

type Config struct {
	Size      int      `json:"size"`
	Backends  []string `json:"backends"`
	Workers   int      `json:"workers,omitempty"`
	GroupSize int      `json:"group_size,omitempty"`
	Samples   int      `json:"samples"`
	Verify    bool     `json:"verify,omitempty"`
	Summary   bool     `json:"summary,omitempty"`
	Report    string   `json:"report,omitempty"`
}

func DefaultConfig() *Config {
	names := make([]string, len(backend.Names))
	copy(names, backend.Names)

	return &Config{
		Size:     DefaultSize,
		Backends: names,
		Samples:  DefaultSamples,
	}
}

// LoadConfig reads a JSON configuration on top of the defaults.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := ioutil.ReadFile(configFile); err != nil {
		return nil, err
	} else if err = json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error while parsing %s: %v", configFile, err)
	} else if err = cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %v", configFile, err)
	}

	log.Debugf("loaded configuration from %s: %+v", configFile, *cfg)

	return cfg, nil
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	if c.Size < 0 {
		return fmt.Errorf("size can't be negative: %d", c.Size)
	} else if c.Workers < 0 {
		return fmt.Errorf("workers can't be negative: %d", c.Workers)
	} else if c.GroupSize < 0 {
		return fmt.Errorf("group size can't be negative: %d", c.GroupSize)
	} else if c.Samples < 0 {
		return fmt.Errorf("samples can't be negative: %d", c.Samples)
	} else if len(c.Backends) == 0 {
		return fmt.Errorf("no backends selected")
	}

	for _, name := range c.Backends {
		known := false
		for _, valid := range backend.Names {
			if name == valid {
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("%w: %s", backend.ErrUnknownBackend, name)
		}
	}

	return nil
}

// Save writes the configuration as JSON.
func (c *Config) Save(configFile string) error {
	if data, err := json.MarshalIndent(c, "", "  "); err != nil {
		log.Errorf("Cannot serialise configuration: %v", err)
		return err
	} else if err = ioutil.WriteFile(configFile, data, 0644); err != nil {
		log.Errorf("Cannot save configuration: %v", err)
		return err
	}
	return nil
}

// Options returns the backend options for this configuration.
func (c *Config) Options() backend.Options {
	return backend.Options{
		Workers:   c.Workers,
		GroupSize: c.GroupSize,
	}
}
