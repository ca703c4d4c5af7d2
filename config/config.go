package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/transitopt/core/forecast"
	"github.com/kilianp07/transitopt/core/metrics"
	"github.com/kilianp07/transitopt/core/optimize"
	"github.com/kilianp07/transitopt/core/sim"
	"github.com/kilianp07/transitopt/core/synth"
)

type Config struct {
	Optimizer  optimize.Config `json:"optimizer"`
	Simulation sim.Config      `json:"simulation"`
	Forecast   forecast.Config `json:"forecast"`
	Synthetic  synth.Config    `json:"synthetic"`
	Metrics    metrics.Config  `json:"metrics"`
	Data       DataConfig      `json:"data"`
	Output     OutputConfig    `json:"output"`
}

// DataConfig points at the input tables. Empty paths fall back to the
// synthetic generator.
type DataConfig struct {
	RoutesPath      string `json:"routes_path"`
	DemandPath      string `json:"demand_path"`
	StopDemandPath  string `json:"stop_demand_path"`
	TravelTimesPath string `json:"travel_times_path"`
}

// Synthetic reports whether the run generates its own demand and
// traffic tables instead of reading them from disk.
func (c DataConfig) Synthetic() bool {
	return c.DemandPath == "" && c.StopDemandPath == ""
}

// Validate checks the path set is coherent.
func (c DataConfig) Validate() error {
	if c.RoutesPath == "" {
		return fmt.Errorf("routes_path is required")
	}
	if c.Synthetic() {
		return nil
	}
	if c.DemandPath == "" || c.StopDemandPath == "" || c.TravelTimesPath == "" {
		return fmt.Errorf("demand_path, stop_demand_path and travel_times_path must all be set for recorded data")
	}
	return nil
}

// OutputConfig controls where run artifacts are written.
type OutputConfig struct {
	Dir string `json:"dir"`
}

// SetDefaults applies sane defaults.
func (c *OutputConfig) SetDefaults() {
	if c.Dir == "" {
		c.Dir = "output"
	}
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("TOPT_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "topt_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Optimizer.SetDefaults()
	cfg.Simulation.SetDefaults()
	cfg.Forecast.SetDefaults()
	cfg.Synthetic.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Output.SetDefaults()
	if err := cfg.Optimizer.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Simulation.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Forecast.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Synthetic.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Data.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
