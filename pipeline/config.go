package pipeline

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mkurahn/wayfind/prodstate"
)

// Config is the top-level pipeline configuration. Every tunable heuristic
// threshold lives here so deployments can adjust them without a rebuild.
type Config struct {
	Selector SelectorConfig `yaml:"selector"`
	Product  ProductConfig  `yaml:"product"`
	Journey  JourneyConfig  `yaml:"journey"`
	Synth    SynthConfig    `yaml:"synthesis"`
	Quality  QualityConfig  `yaml:"quality"`
	Probe    ProbeConfig    `yaml:"probe"`
	Store    StoreConfig    `yaml:"store"`
	Sinks    []SinkConfig   `yaml:"sinks"`
	Listen   string         `yaml:"listen"`
}

// SelectorConfig tunes selector resolution.
type SelectorConfig struct {
	TestAttributes []string `yaml:"test_attributes"`
}

// ProductConfig tunes the product-configuration accumulator.
type ProductConfig struct {
	Required       []string `yaml:"required"` // size | color | style | quantity
	SizeThreshold  float64  `yaml:"size_threshold"`
	ColorThreshold float64  `yaml:"color_threshold"`
	StyleThreshold float64  `yaml:"style_threshold"`
}

// JourneyConfig tunes segmentation break points.
type JourneyConfig struct {
	IdleGap             time.Duration `yaml:"idle_gap"`
	RegressionThreshold int           `yaml:"regression_threshold"`
	SoftCap             int           `yaml:"soft_cap"`
	HardCap             int           `yaml:"hard_cap"`
	DecisionRadius      int           `yaml:"decision_radius"`
}

// SynthConfig tunes example synthesis.
type SynthConfig struct {
	EnhancedMinContexts int `yaml:"enhanced_min_contexts"`
}

// QualityConfig tunes scoring and filtering.
type QualityConfig struct {
	JourneyThreshold    float64 `yaml:"journey_threshold"`
	IndividualThreshold float64 `yaml:"individual_threshold"`
	JourneyBoost        float64 `yaml:"journey_boost"`
	MinIndividual       int     `yaml:"min_individual"`
}

// ProbeConfig controls live selector verification against a real browser.
// Disabled by default; the snapshot counter and capture-agent counts are
// used instead.
type ProbeConfig struct {
	Enabled bool   `yaml:"enabled"`
	Remote  string `yaml:"remote"` // DevTools websocket URL, empty launches locally
}

// StoreConfig controls the dataset archive.
type StoreConfig struct {
	Path string `yaml:"path"` // SQLite file, empty disables archiving
}

// SinkConfig defines one output backend for finished datasets.
type SinkConfig struct {
	Type string `yaml:"type"` // stdout | webhook
	URL  string `yaml:"url"`  // for webhook
}

// LoadConfig reads a YAML configuration file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("pipeline: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("pipeline: parse config: %w", err)
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8087"
	}
	if len(c.Sinks) == 0 {
		c.Sinks = []SinkConfig{{Type: "stdout"}}
	}
}

// requiredKinds converts the YAML selection names to store kinds, dropping
// anything unrecognized.
func (p ProductConfig) requiredKinds() []prodstate.SelectionKind {
	var out []prodstate.SelectionKind
	for _, name := range p.Required {
		switch k := prodstate.SelectionKind(name); k {
		case prodstate.KindSize, prodstate.KindColor, prodstate.KindStyle, prodstate.KindQuantity:
			out = append(out, k)
		}
	}
	return out
}

func (p ProductConfig) thresholds() map[prodstate.SelectionKind]float64 {
	t := make(map[prodstate.SelectionKind]float64)
	if p.SizeThreshold > 0 {
		t[prodstate.KindSize] = p.SizeThreshold
	}
	if p.ColorThreshold > 0 {
		t[prodstate.KindColor] = p.ColorThreshold
	}
	if p.StyleThreshold > 0 {
		t[prodstate.KindStyle] = p.StyleThreshold
	}
	return t
}
