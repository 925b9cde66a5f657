package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config captures the runtime knobs for a training run.
type Config struct {
	InputSize     int     `yaml:"input_size"`
	HiddenSize    int     `yaml:"hidden_size"`
	OutputSize    int     `yaml:"output_size"`
	WeightInitStd float64 `yaml:"weight_init_std"`
	LearningRate  float64 `yaml:"learning_rate"`
	LRDecay       float64 `yaml:"lr_decay"`
	Iterations    int     `yaml:"iterations"`
	BatchSize     int     `yaml:"batch_size"`
	Seed          int64   `yaml:"seed"`
	LogEvery      int     `yaml:"log_every"`
	Precision     string  `yaml:"precision"`
	Activation    string  `yaml:"activation"`
	Loss          string  `yaml:"loss"`
	Parallel      *bool   `yaml:"parallel"`
	HistoryCSV    string  `yaml:"history_csv"`
	Dataset       Dataset `yaml:"dataset"`
}

// Dataset selects and locates the training data.
type Dataset struct {
	Format      string `yaml:"format"`
	TrainImages string `yaml:"train_images"`
	TrainLabels string `yaml:"train_labels"`
	TestImages  string `yaml:"test_images"`
	TestLabels  string `yaml:"test_labels"`
	LabelNames  string `yaml:"label_names"`
	Limit       int    `yaml:"limit"`
	Samples     int    `yaml:"samples"`
	OneHot      *bool  `yaml:"one_hot"`
}

// Overrides captures CLI supplied values.
type Overrides struct {
	Iterations   int
	BatchSize    int
	LearningRate float64
	Seed         int64
	LogEvery     int
	Precision    string
	HistoryCSV   string
	Limit        int
}

// Load reads and validates a Config from YAML.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ApplyOverrides updates cfg using any non-zero override.
func (c *Config) ApplyOverrides(o Overrides) {
	if o.Iterations > 0 {
		c.Iterations = o.Iterations
	}
	if o.BatchSize > 0 {
		c.BatchSize = o.BatchSize
	}
	if o.LearningRate > 0 {
		c.LearningRate = o.LearningRate
	}
	if o.Seed != 0 {
		c.Seed = o.Seed
	}
	if o.LogEvery > 0 {
		c.LogEvery = o.LogEvery
	}
	if o.Precision != "" {
		c.Precision = o.Precision
	}
	if o.HistoryCSV != "" {
		c.HistoryCSV = o.HistoryCSV
	}
	if o.Limit > 0 {
		c.Dataset.Limit = o.Limit
	}
}

// Validate verifies the config is runnable and fills defaults.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.InputSize <= 0 || c.HiddenSize <= 0 || c.OutputSize <= 0 {
		return fmt.Errorf("input_size, hidden_size and output_size must be > 0 (got %d, %d, %d)",
			c.InputSize, c.HiddenSize, c.OutputSize)
	}
	if c.WeightInitStd <= 0 {
		return fmt.Errorf("weight_init_std must be > 0 (got %g)", c.WeightInitStd)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be > 0 (got %g)", c.LearningRate)
	}
	if c.LRDecay < 0 {
		return fmt.Errorf("lr_decay must be >= 0 (got %g)", c.LRDecay)
	}
	if c.LRDecay == 0 {
		c.LRDecay = 1
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("iterations must be > 0 (got %d)", c.Iterations)
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be > 0 (got %d)", c.BatchSize)
	}
	if c.LogEvery <= 0 {
		c.LogEvery = 50
	}
	switch c.Precision {
	case "":
		c.Precision = "float64"
	case "float32", "float64":
	default:
		return fmt.Errorf("precision must be float32 or float64 (got %q)", c.Precision)
	}
	switch c.Activation {
	case "":
		c.Activation = "sigmoid"
	case "sigmoid", "relu", "leaky_relu", "tanh", "linear", "step":
	default:
		return fmt.Errorf("unknown activation %q", c.Activation)
	}
	switch c.Loss {
	case "":
		c.Loss = "cross_entropy"
	case "cross_entropy", "sum_squares":
	default:
		return fmt.Errorf("unknown loss %q", c.Loss)
	}
	return c.Dataset.validate()
}

// ParallelGradients reports whether the four parameter sweeps run
// concurrently. Sequential unless parallel is set to true.
func (c *Config) ParallelGradients() bool {
	return c.Parallel != nil && *c.Parallel
}

// OneHotTargets reports whether targets are one-hot encoded. Defaults to true.
func (d Dataset) OneHotTargets() bool {
	return d.OneHot == nil || *d.OneHot
}

func (d *Dataset) validate() error {
	switch d.Format {
	case "mnist":
		if d.TrainImages == "" || d.TrainLabels == "" {
			return errors.New("dataset: mnist needs train_images and train_labels")
		}
		if (d.TestImages == "") != (d.TestLabels == "") {
			return errors.New("dataset: test_images and test_labels must be set together")
		}
	case "cifar10":
		if d.TrainImages == "" {
			return errors.New("dataset: cifar10 needs train_images")
		}
	case "synthetic":
		if d.Samples <= 0 {
			d.Samples = 600
		}
	case "":
		return errors.New("dataset: format must be set")
	default:
		return fmt.Errorf("dataset: unknown format %q", d.Format)
	}
	if d.Limit < 0 {
		return fmt.Errorf("dataset: limit must be >= 0 (got %d)", d.Limit)
	}
	return nil
}
