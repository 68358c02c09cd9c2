package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Noofbiz/pushWorld/landscape"
	"github.com/Noofbiz/pushWorld/monte"
	"github.com/Noofbiz/pushWorld/quadrant"
	"github.com/Noofbiz/pushWorld/stats"
)

// Config is the analysis configuration read from pushstats.yaml. Every key
// is optional; missing keys keep the value of Default.
type Config struct {
	Histories    Histories    `yaml:"histories"`
	OutputDir    string       `yaml:"output_dir"`
	Models       []Model      `yaml:"models"`
	Metrics      []string     `yaml:"metrics"`
	Reference    Reference    `yaml:"reference"`
	Quadrants    Quadrants    `yaml:"quadrants"`
	Landscape    Landscape    `yaml:"landscape"`
	Perturbation Perturbation `yaml:"perturbation"`
	Seed         int64        `yaml:"seed"`
}

// Histories lists the history artifacts to analyse. Relative Files are
// resolved against Dir; with no Files, Dir is scanned for artifacts.
type Histories struct {
	Dir   string   `yaml:"dir"`
	Files []string `yaml:"files"`
}

// Model is one predictive model to compare. Trials are attributed to a model
// by name prefix. ZOrder controls drawing order (higher is drawn on top).
type Model struct {
	Name   string `yaml:"name"`
	ZOrder int    `yaml:"zorder"`
}

// Reference holds the known optima the metrics are measured against.
type Reference struct {
	OptimumInput       []float64 `yaml:"optimum_input"`
	OptimumEndPosition []float64 `yaml:"optimum_end_position"`
	Baseline           *float64  `yaml:"baseline"`
}

// Quadrants selects the reported quadrants and tunes the quadrant scatter.
type Quadrants struct {
	Include []string `yaml:"include"`
	Jitter  float64  `yaml:"jitter"`
	// Orientation colour scale bounds.
	ColorMin float64 `yaml:"color_min"`
	ColorMax float64 `yaml:"color_max"`
}

// Landscape describes the mesh and goals of the landscape figure.
type Landscape struct {
	Goals  [][2]float64 `yaml:"goals"`
	XRange [2]float64   `yaml:"x_range"`
	YRange [2]float64   `yaml:"y_range"`
	Step   float64      `yaml:"step"`
	Levels int          `yaml:"levels"`
}

// Perturbation is the Gaussian mixture used to draw noisy copies of the
// final outcomes. Samples of zero disables the perturbed figures.
type Perturbation struct {
	Samples    int         `yaml:"samples"`
	Workers    int         `yaml:"workers"`
	Weights    []float64   `yaml:"weights"`
	Means      [][]float64 `yaml:"means"`
	Covariance [][]float64 `yaml:"covariance"`
}

// Default returns the configuration of the triple-goals push-world study.
func Default() *Config {
	const minCov = 1e-6
	return &Config{
		Histories: Histories{Dir: "./results/"},
		OutputDir: "./results/push_world/",
		Models: []Model{
			{Name: "GP", ZOrder: 10},
			{Name: "skl", ZOrder: 20},
			{Name: "ERBF", ZOrder: 30},
			{Name: "MMDGP-raw", ZOrder: 40},
			{Name: "uGP", ZOrder: 50},
			{Name: "MMDGP-nystrom", ZOrder: 60},
		},
		Metrics: []string{"regret"},
		Reference: Reference{
			OptimumEndPosition: []float64{3, -3},
		},
		Quadrants: Quadrants{
			Include:  []string{"Q1", "Q2", "Q3", "Q4"},
			Jitter:   0.2,
			ColorMin: 15,
			ColorMax: 30,
		},
		Landscape: Landscape{
			Goals:  [][2]float64{{3, 3}, {3, -3}, {-3, -3}},
			XRange: [2]float64{-6, 6},
			YRange: [2]float64{-6, 6},
			Step:   0.1,
			Levels: 20,
		},
		Perturbation: Perturbation{
			Samples: 50,
			Weights: []float64{0.5, 0.5},
			Means:   [][]float64{{0, 0, 0}, {-1, 1, 0}},
			Covariance: [][]float64{
				{0.1 * 0.1, -0.3 * 0.3, minCov},
				{-0.3 * 0.3, 0.1 * 0.1, minCov},
				{minCov, minCov, 1},
			},
		},
		Seed: 1,
	}
}

// Load reads path on top of Default. Keys missing from the file keep their
// default value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault behaves like Load but returns Default when path does not
// exist.
func LoadOrDefault(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := Default()
		return cfg, validate(cfg)
	}
	return Load(path)
}

func validate(cfg *Config) error {
	if len(cfg.Models) == 0 {
		return fmt.Errorf("no models defined")
	}
	seen := make(map[string]bool)
	for i, m := range cfg.Models {
		if m.Name == "" {
			return fmt.Errorf("model %d: name is required", i)
		}
		if seen[m.Name] {
			return fmt.Errorf("model %q defined twice", m.Name)
		}
		seen[m.Name] = true
	}
	for _, name := range cfg.Metrics {
		metric, err := stats.ParseMetric(name)
		if err != nil {
			return err
		}
		if _, err := cfg.MetricOptions(metric); err != nil {
			return err
		}
	}
	for _, q := range cfg.Quadrants.Include {
		if _, err := quadrant.ParseQuadrant(q); err != nil {
			return err
		}
	}
	if cfg.Quadrants.Jitter < 0 {
		return fmt.Errorf("quadrants.jitter must be >= 0")
	}
	if cfg.Landscape.Step <= 0 {
		return fmt.Errorf("landscape.step must be > 0")
	}
	if cfg.Perturbation.Samples < 0 {
		return fmt.Errorf("perturbation.samples must be >= 0")
	}
	if cfg.Perturbation.Samples > 0 {
		if err := cfg.GMM().Validate(); err != nil {
			return fmt.Errorf("perturbation: %w", err)
		}
	}
	return nil
}

// HistoryPaths returns the artifact paths, resolved against Histories.Dir.
func (c *Config) HistoryPaths() []string {
	paths := make([]string, len(c.Histories.Files))
	for i, f := range c.Histories.Files {
		if filepath.IsAbs(f) {
			paths[i] = f
			continue
		}
		paths[i] = filepath.Join(c.Histories.Dir, f)
	}
	return paths
}

// ModelNames returns the configured model names in configuration order.
func (c *Config) ModelNames() []string {
	names := make([]string, len(c.Models))
	for i, m := range c.Models {
		names[i] = m.Name
	}
	return names
}

// ParsedMetrics returns the configured metrics.
func (c *Config) ParsedMetrics() ([]stats.Metric, error) {
	out := make([]stats.Metric, 0, len(c.Metrics))
	for _, name := range c.Metrics {
		m, err := stats.ParseMetric(name)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

// MetricOptions returns the aggregation options of metric.
func (c *Config) MetricOptions(metric stats.Metric) (stats.Options, error) {
	switch metric {
	case stats.Regret:
		return stats.Options{Baseline: c.Reference.Baseline}, nil
	case stats.DistanceToOptimum:
		if len(c.Reference.OptimumInput) == 0 {
			return stats.Options{}, fmt.Errorf("%w: reference.optimum_input is required for %v", stats.ErrMissingReference, metric)
		}
		return stats.Options{Reference: c.Reference.OptimumInput}, nil
	case stats.DistanceToOptimumEndPosition:
		if len(c.Reference.OptimumEndPosition) == 0 {
			return stats.Options{}, fmt.Errorf("%w: reference.optimum_end_position is required for %v", stats.ErrMissingReference, metric)
		}
		return stats.Options{Reference: c.Reference.OptimumEndPosition}, nil
	}
	return stats.Options{}, fmt.Errorf("%w: %v", stats.ErrUnsupportedMetric, metric)
}

// QuadrantList returns the quadrants to report, all four when none are
// configured.
func (c *Config) QuadrantList() []quadrant.Quadrant {
	if len(c.Quadrants.Include) == 0 {
		return quadrant.All
	}
	out := make([]quadrant.Quadrant, 0, len(c.Quadrants.Include))
	for _, s := range c.Quadrants.Include {
		if q, err := quadrant.ParseQuadrant(s); err == nil {
			out = append(out, q)
		}
	}
	return out
}

// Mesh returns the landscape mesh.
func (c *Config) Mesh() landscape.Mesh {
	return landscape.Mesh{
		XMin:  c.Landscape.XRange[0],
		XMax:  c.Landscape.XRange[1],
		YMin:  c.Landscape.YRange[0],
		YMax:  c.Landscape.YRange[1],
		Step:  c.Landscape.Step,
		Goals: c.Landscape.Goals,
	}
}

// GMM returns the input-uncertainty mixture.
func (c *Config) GMM() monte.GMM {
	return monte.GMM{
		Weights:    c.Perturbation.Weights,
		Means:      c.Perturbation.Means,
		Covariance: c.Perturbation.Covariance,
	}
}
