package estimator

import (
	"github.com/df07/go-spectral-kernel/pkg/core"
	"github.com/df07/go-spectral-kernel/pkg/tasks"
)

// Config controls how many samples a check takes and where they run
type Config struct {
	Samples int
	Seed    int64
	Linear  bool // Run on the calling goroutine, for deterministic debugging
}

// sampleFunc produces one sample into acc
type sampleFunc func(smp core.Sampler, acc *Accumulator)

// run spreads cfg.Samples evaluations of f across the scheduler. Every thread
// owns one accumulator and each chunk seeds its own sampler, so the estimate
// does not depend on how chunks are assigned to threads.
func run(sched *tasks.Scheduler, cfg Config, f sampleFunc) (Accumulator, error) {
	perThread := make([]Accumulator, sched.MaxThreadCount())
	task := tasks.TaskFunc(func(begin, end, threadID uint32) {
		smp := core.NewSeededSampler(cfg.Seed + int64(begin))
		acc := &perThread[threadID]
		for i := begin; i < end; i++ {
			f(smp, acc)
		}
	})

	if cfg.Linear {
		sched.ExecuteLinear(uint32(cfg.Samples), task)
	} else if err := sched.Execute(uint32(cfg.Samples), task); err != nil {
		return Accumulator{}, err
	}

	var total Accumulator
	for _, acc := range perThread {
		total.Merge(acc)
	}
	return total, nil
}
