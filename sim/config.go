package sim

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/framesim/framesim/sim/trace"
)

// RunConfig holds the whole run configuration, loadable from a YAML file.
// Zero values mean "not set in YAML"; cmd fills them from flag defaults.
type RunConfig struct {
	Capacity int          `yaml:"capacity"`
	Source   SourceConfig `yaml:"source"`
	Server   ServerConfig `yaml:"server"`
	Record   RecordConfig `yaml:"record"`
	Trace    TraceConfig  `yaml:"trace"`
}

// SourceConfig selects and parameterizes the access-event source.
type SourceConfig struct {
	Kind         string        `yaml:"kind"`
	Interval     time.Duration `yaml:"interval"`
	Filter       string        `yaml:"filter"`
	Path         string        `yaml:"path"`
	Keys         int           `yaml:"keys"`
	Count        int           `yaml:"count"`
	Distribution string        `yaml:"distribution"`
	ZipfS        float64       `yaml:"zipf_s"`
	Seed         int64         `yaml:"seed"`
}

// ServerConfig holds dashboard server settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// RecordConfig holds snapshot recording settings. Empty path disables recording.
type RecordConfig struct {
	Path string `yaml:"path"`
}

// TraceConfig holds eviction-trace settings.
type TraceConfig struct {
	Level string `yaml:"level"`
}

// ValidSourceKinds is the set of recognized event source names.
var ValidSourceKinds = map[string]bool{"": true, "process": true, "replay": true, "synthetic": true}

// ValidDistributions is the set of recognized synthetic key distributions.
var ValidDistributions = map[string]bool{"": true, "uniform": true, "zipf": true}

// DefaultRunConfig returns the classic dashboard settings:
// four frames, process sampling every 200ms, port 5000.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Capacity: 4,
		Source: SourceConfig{
			Kind:         "process",
			Interval:     200 * time.Millisecond,
			Keys:         16,
			Count:        1000,
			Distribution: "zipf",
			ZipfS:        1.2,
			Seed:         42,
		},
		Server: ServerConfig{Addr: ":5000"},
		Trace:  TraceConfig{Level: "none"},
	}
}

// LoadRunConfig reads a YAML run configuration on top of DefaultRunConfig.
// Unknown fields are rejected so typos surface as errors.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading run config: %w", err)
	}
	cfg := DefaultRunConfig()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing run config: %w", err)
	}
	return &cfg, nil
}

// Validate checks names and parameter ranges.
func (c *RunConfig) Validate() error {
	if c.Capacity <= 0 {
		return invalidCapacityError(c.Capacity)
	}
	if !ValidSourceKinds[c.Source.Kind] {
		return fmt.Errorf("%w: unknown source kind %q", ErrInvalidConfiguration, c.Source.Kind)
	}
	if !ValidDistributions[c.Source.Distribution] {
		return fmt.Errorf("%w: unknown distribution %q", ErrInvalidConfiguration, c.Source.Distribution)
	}
	if !trace.IsValidTraceLevel(c.Trace.Level) {
		return fmt.Errorf("%w: unknown trace level %q", ErrInvalidConfiguration, c.Trace.Level)
	}
	if c.Source.Interval < 0 {
		return fmt.Errorf("%w: source interval must be non-negative, got %v", ErrInvalidConfiguration, c.Source.Interval)
	}
	switch c.Source.Kind {
	case "replay":
		if c.Source.Path == "" {
			return fmt.Errorf("%w: replay source needs a path", ErrInvalidConfiguration)
		}
	case "synthetic":
		if c.Source.Keys <= 0 {
			return fmt.Errorf("%w: synthetic keys must be positive, got %d", ErrInvalidConfiguration, c.Source.Keys)
		}
		if c.Source.Count < 0 {
			return fmt.Errorf("%w: synthetic count must be non-negative, got %d", ErrInvalidConfiguration, c.Source.Count)
		}
		if (c.Source.Distribution == "" || c.Source.Distribution == "zipf") && c.Source.ZipfS <= 1 {
			return fmt.Errorf("%w: zipf_s must be > 1, got %f", ErrInvalidConfiguration, c.Source.ZipfS)
		}
	}
	return nil
}
