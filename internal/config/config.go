// Package config loads the kernel check configuration.
package config

import (
	_ "embed"
	"fmt"

	"github.com/df07/go-spectral-kernel/pkg/scene"
	"gopkg.in/yaml.v3"
)

//go:embed default_scene.yaml
var defaultScene []byte

// Config holds every setting of the spectral-kernel command
type Config struct {
	Kernel    KernelConfig      `yaml:"kernel"`
	Scheduler SchedulerConfig   `yaml:"scheduler"`
	Logging   LoggingConfig     `yaml:"logging"`
	Check     CheckConfig       `yaml:"check"`
	Scene     scene.Description `yaml:"scene"`
}

// KernelConfig holds numerical settings shared by the kernel packages
type KernelConfig struct {
	StrictValidation    bool    `yaml:"strict_validation"`
	DeltaAlphaThreshold float64 `yaml:"delta_alpha_threshold"`
}

// SchedulerConfig sizes the task pool
type SchedulerConfig struct {
	Workers         int  `yaml:"workers"` // 0 uses every CPU
	ReservedThreads int  `yaml:"reserved_threads"`
	Capacity        int  `yaml:"capacity"`
	Linear          bool `yaml:"linear"` // Run checks on the main goroutine
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// CheckConfig controls the Monte Carlo self-checks
type CheckConfig struct {
	Samples       int       `yaml:"samples"`
	Seed          int64     `yaml:"seed"`
	Incidence     []float64 `yaml:"incidence"` // Furnace incidence angles in degrees
	Sigma         float64   `yaml:"sigma"`     // Allowed standard errors
	Tolerance     float64   `yaml:"tolerance"` // Allowed relative error on top of Sigma
	ImageMaxWidth int       `yaml:"image_max_width"`
}

// Default returns the built-in configuration with the bundled check scene
func Default() *Config {
	cfg := &Config{
		Kernel: KernelConfig{
			DeltaAlphaThreshold: scene.DefaultDeltaAlphaThreshold,
		},
		Scheduler: SchedulerConfig{
			Capacity: 1024,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Check: CheckConfig{
			Samples:       100000,
			Seed:          1,
			Incidence:     []float64{0, 45, 75},
			Sigma:         4,
			Tolerance:     0.02,
			ImageMaxWidth: 1024,
		},
	}
	if err := yaml.Unmarshal(defaultScene, &cfg.Scene); err != nil {
		panic(fmt.Sprintf("config: bundled scene: %v", err))
	}
	return cfg
}

// Validate rejects settings the checks cannot run with
func (c *Config) Validate() error {
	if c.Check.Samples <= 0 {
		return fmt.Errorf("check.samples must be positive, got %d", c.Check.Samples)
	}
	if c.Scheduler.Workers < 0 || c.Scheduler.ReservedThreads < 0 || c.Scheduler.Capacity < 0 {
		return fmt.Errorf("scheduler sizes must not be negative")
	}
	if c.Kernel.DeltaAlphaThreshold < 0 {
		return fmt.Errorf("kernel.delta_alpha_threshold must not be negative, got %g", c.Kernel.DeltaAlphaThreshold)
	}
	return nil
}
