package batch_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"logomatch/internal/batch"
	"logomatch/internal/failures"
	"logomatch/internal/logging"
	"logomatch/internal/testsupport"
)

func TestExecuteBestEffort(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	out := filepath.Join(base, "out")
	testsupport.WriteSources(t, src, "a.png", "c.png")

	plan := batch.Plan{
		OutputDir: out,
		Operations: []batch.Operation{
			{SourceID: "a.png", Name: "ALPHA", From: filepath.Join(src, "a.png"), To: filepath.Join(out, "alpha.png")},
			{SourceID: "b.png", Name: "BETA", From: filepath.Join(src, "b.png"), To: filepath.Join(out, "beta.png")},
			{SourceID: "c.png", Name: "GAMMA", From: filepath.Join(src, "c.png"), To: filepath.Join(out, "gamma.png")},
		},
	}

	var (
		mu   sync.Mutex
		seen int
	)
	exec := batch.NewExecutor(batch.Options{Workers: 3, Verify: true, Logger: logging.NewNop()})
	report, err := exec.Execute(context.Background(), plan, func(batch.Result) {
		mu.Lock()
		seen++
		mu.Unlock()
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(report.Succeeded) != 2 || len(report.Failed) != 1 {
		t.Fatalf("report: %d succeeded, %d failed", len(report.Succeeded), len(report.Failed))
	}
	if report.Failed[0].Operation.SourceID != "b.png" || !errors.Is(report.Failed[0].Err, failures.ErrOperation) {
		t.Fatalf("unexpected failure: %+v", report.Failed[0])
	}
	if seen != 3 {
		t.Fatalf("progress called %d times, want 3", seen)
	}
	for _, name := range []string{"alpha.png", "gamma.png"} {
		if _, err := os.Stat(filepath.Join(out, name)); err != nil {
			t.Fatalf("expected %s: %v", name, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "beta.png")); !os.IsNotExist(err) {
		t.Fatalf("failed copy left a file: %v", err)
	}
}

func TestExecuteRefusesNonEmptyOutput(t *testing.T) {
	out := t.TempDir()
	stray := filepath.Join(out, "old.png")
	testsupport.WriteFile(t, stray, 4)

	exec := batch.NewExecutor(batch.Options{})
	_, err := exec.Execute(context.Background(), batch.Plan{OutputDir: out}, nil)
	if !errors.Is(err, batch.ErrOutputNotEmpty) {
		t.Fatalf("expected ErrOutputNotEmpty, got %v", err)
	}
	if _, err := os.Stat(stray); err != nil {
		t.Fatalf("existing output touched: %v", err)
	}
}

func TestExecuteResetClearsBeforeCopy(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	out := filepath.Join(base, "out")
	testsupport.WriteSources(t, src, "LINCOLNHS.png")
	testsupport.WriteFile(t, filepath.Join(out, "stale.png"), 4)
	testsupport.WriteFile(t, filepath.Join(out, "nested", "deep.png"), 4)

	plan := batch.BuildPlan(map[string][]string{"LINCOLNHS.png": {"LINCOLN HIGH"}}, nil, src, out)
	exec := batch.NewExecutor(batch.Options{Reset: true})
	report, err := exec.Execute(context.Background(), plan, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if report.Cleared != 2 || len(report.Succeeded) != 1 {
		t.Fatalf("report = %+v", report)
	}
	entries, err := os.ReadDir(out)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "lincoln_high.png" {
		t.Fatalf("output entries = %v", entries)
	}
	data, _ := os.ReadFile(filepath.Join(out, "lincoln_high.png"))
	if string(data) != "logo:LINCOLNHS.png" {
		t.Fatalf("unexpected copy content %q", data)
	}
}

func TestExecuteCancelledMarksFailures(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	testsupport.WriteSources(t, src, "a.png", "b.png")
	plan := batch.BuildPlan(map[string][]string{"a.png": {"A"}, "b.png": {"B"}}, nil, src, filepath.Join(base, "out"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := batch.NewExecutor(batch.Options{Workers: 1}).Execute(ctx, plan, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(report.Failed) != 2 || len(report.Succeeded) != 0 {
		t.Fatalf("report = %+v", report)
	}
	for _, r := range report.Failed {
		if !errors.Is(r.Err, context.Canceled) {
			t.Fatalf("expected context error, got %v", r.Err)
		}
	}
}

func TestClearDirectory(t *testing.T) {
	for _, dir := range []string{"", "   ", filepath.Join(t.TempDir(), "missing")} {
		result := batch.ClearDirectory(dir, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Fatalf("expected empty result for %q", dir)
		}
	}
}
