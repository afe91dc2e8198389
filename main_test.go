package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-spectral-kernel/internal/config"
	"github.com/df07/go-spectral-kernel/pkg/estimator"
)

func TestRunDefaultConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Check.Samples = 20000
	cfg.Scheduler.Workers = 2

	var out bytes.Buffer
	failed, err := run(cfg, &out)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if failed != 0 {
		t.Errorf("Expected all checks to pass, %d failed:\n%s", failed, out.String())
	}

	// 6 materials at 3 angles plus the area and environment emitters
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 6*3+2+1 {
		t.Errorf("Expected 21 report lines, got %d:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[len(lines)-1], "20 checks, 0 failed") {
		t.Errorf("Unexpected summary %q", lines[len(lines)-1])
	}
}

func TestReportFormatsNumbers(t *testing.T) {
	cfg := config.Default()
	results := []estimator.Result{
		{Name: "good", Value: 1, StdError: 0.001, Expected: 1, Samples: 1500000},
		{Name: "bad", Value: 2, StdError: 0.001, Expected: 1, Samples: 10},
	}

	var out bytes.Buffer
	failed := report(&out, results, cfg, time.Second)
	if failed != 1 {
		t.Errorf("Expected 1 failure, got %d", failed)
	}
	if !strings.Contains(out.String(), "1,500,010 samples") {
		t.Errorf("Expected grouped sample count, got %q", out.String())
	}
	if !strings.Contains(out.String(), "FAIL") {
		t.Errorf("Expected failed check to be flagged, got %q", out.String())
	}
}
