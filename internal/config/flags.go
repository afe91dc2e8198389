package config

import "flag"

// Flags are the command line overrides
type Flags struct {
	Config  string
	Debug   bool
	Workers int
	Samples int
	Seed    int64
	Strict  bool
	Linear  bool
}

// BindFlags registers the overrides on fs
func BindFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.IntVar(&f.Workers, "workers", 0, "Number of worker goroutines (0 = all CPUs)")
	fs.IntVar(&f.Samples, "samples", 0, "Samples per check")
	fs.Int64Var(&f.Seed, "seed", 0, "Random seed")
	fs.BoolVar(&f.Strict, "strict", false, "Panic on invalid spectral values")
	fs.BoolVar(&f.Linear, "linear", false, "Run checks on a single goroutine")
	return f
}

// Apply overrides cfg with the flags that were set
func (f *Flags) Apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Workers > 0 {
		cfg.Scheduler.Workers = f.Workers
	}
	if f.Samples > 0 {
		cfg.Check.Samples = f.Samples
	}
	if f.Seed != 0 {
		cfg.Check.Seed = f.Seed
	}
	if f.Strict {
		cfg.Kernel.StrictValidation = true
	}
	if f.Linear {
		cfg.Scheduler.Linear = true
	}
}
