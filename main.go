package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/df07/go-spectral-kernel/internal/config"
	"github.com/df07/go-spectral-kernel/internal/logger"
	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/estimator"
	"github.com/df07/go-spectral-kernel/pkg/loaders"
	"github.com/df07/go-spectral-kernel/pkg/scene"
	"github.com/df07/go-spectral-kernel/pkg/spectrum"
	"github.com/df07/go-spectral-kernel/pkg/tasks"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	flags := config.BindFlags(flag.CommandLine)
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	if *help {
		fmt.Println("Spectral Kernel self-checks")
		fmt.Println("Usage: spectral-kernel [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Runs white furnace checks for every material of the check scene and")
		fmt.Println("integrates the sampling density of every non-delta emitter.")
		return
	}

	cfg, err := config.Load(flags.Config, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(2)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(2)
	}
	defer logger.Sync()
	core.SetLogger(logger.Named("kernel"))
	spectrum.SetStrictValidation(cfg.Kernel.StrictValidation)

	failed, err := run(cfg, os.Stdout)
	if err != nil {
		logger.Log.Error("checks aborted", zap.Error(err))
		logger.Sync()
		os.Exit(2)
	}
	if failed > 0 {
		logger.Sync()
		os.Exit(1)
	}
}

// run builds the check scene, runs every check and writes the report. It
// returns the number of failed checks.
func run(cfg *config.Config, w io.Writer) (int, error) {
	loader := loaders.ImageLoader{MaxWidth: cfg.Check.ImageMaxWidth}
	s, err := cfg.Scene.Build(loader.Load, cfg.Kernel.DeltaAlphaThreshold)
	if err != nil {
		return 0, fmt.Errorf("building scene: %w", err)
	}

	sched := tasks.New(tasks.Config{
		Workers:         cfg.Scheduler.Workers,
		ReservedThreads: cfg.Scheduler.ReservedThreads,
		Capacity:        cfg.Scheduler.Capacity,
	})
	defer sched.Close()

	logger.Log.Info("running checks",
		zap.Int("materials", len(s.Materials)),
		zap.Int("emitters", len(s.Emitters)),
		zap.Int("samples", cfg.Check.Samples),
		zap.Int("threads", sched.MaxThreadCount()))

	start := time.Now()
	results, err := runChecks(sched, s, cfg)
	if err != nil {
		return 0, err
	}
	return report(w, results, cfg, time.Since(start)), nil
}

func runChecks(sched *tasks.Scheduler, s *scene.Scene, cfg *config.Config) ([]estimator.Result, error) {
	ecfg := estimator.Config{
		Samples: cfg.Check.Samples,
		Seed:    cfg.Check.Seed,
		Linear:  cfg.Scheduler.Linear,
	}

	var results []estimator.Result
	for _, mtl := range s.Materials {
		for _, incidence := range cfg.Check.Incidence {
			res, err := estimator.WhiteFurnace(sched, s, mtl, incidence, ecfg)
			if err != nil {
				return nil, err
			}
			results = append(results, res)
		}
	}

	for i, em := range s.Emitters {
		res, err := estimator.EmitterPDFNormalization(sched, s, i, estimator.ProbePoint(s, em), ecfg)
		if errors.Is(err, estimator.ErrNotNormalizable) {
			logger.Log.Debug("skipping emitter", zap.Int("emitter", i), zap.String("class", string(em.Class())))
			continue
		}
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func report(w io.Writer, results []estimator.Result, cfg *config.Config, elapsed time.Duration) int {
	p := message.NewPrinter(language.English)
	failed := 0
	total := 0
	for _, r := range results {
		status := "ok"
		if r.Info {
			status = "info"
		} else if !r.Passed(cfg.Check.Sigma, cfg.Check.Tolerance) {
			status = "FAIL"
			failed++
		}
		total += r.Samples
		p.Fprintf(w, "%-36s %8.4f ± %.4f  %-4s\n", r.Name, r.Value, r.StdError, status)
	}
	p.Fprintf(w, "%d checks, %d failed, %d samples in %v\n", len(results), failed, total, elapsed.Round(time.Millisecond))
	return failed
}
