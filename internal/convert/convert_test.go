package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"redust/internal/logging"
	"redust/internal/services"
	"redust/internal/testsupport"
)

const minimalSkeleton = `{
	"skeleton": {"spine": "4.1.20"},
	"bones": [{"name": "root"}]
}`

func TestOutputPath(t *testing.T) {
	if got := OutputPath("/m/char.json"); got != "/m/char.skel" {
		t.Fatalf("output = %q", got)
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	old := filepath.Join(dir, "old.json")
	testsupport.WriteText(t, good, minimalSkeleton)
	testsupport.WriteText(t, bad, `{"skeleton": `)
	testsupport.WriteText(t, old, `{"skeleton": {"spine": "3.8.99"}}`)

	var calls int
	report := New(logging.NewNop(), func(done, total int) {
		calls++
		if total != 3 {
			t.Errorf("total = %d", total)
		}
	}).Run(context.Background(), []string{bad, good, old})

	if calls != 3 {
		t.Fatalf("progress calls = %d", calls)
	}
	if len(report.Converted) != 1 || report.Converted[0] != OutputPath(good) {
		t.Fatalf("converted = %v", report.Converted)
	}
	if len(report.Failed) != 2 {
		t.Fatalf("failed = %v", report.Failed)
	}
	for _, item := range report.Failed {
		if !errors.Is(item, services.ErrItemFailure) {
			t.Errorf("%s: expected item failure, got %v", item.Item, item.Err)
		}
		if _, err := os.Stat(OutputPath(item.Item)); !os.IsNotExist(err) {
			t.Errorf("output left behind for %s", item.Item)
		}
	}
	if _, err := os.Stat(OutputPath(good)); err != nil {
		t.Fatalf("good output missing: %v", err)
	}
}

func TestRunRecordsSkippedContent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "wobble.json")
	testsupport.WriteText(t, src, `{
		"skeleton": {"spine": "4.1.20"},
		"bones": [{"name": "root"}],
		"animations": {"idle": {"bones": {"root": {"wobble": [{"time": 0}]}}}}
	}`)

	report := New(logging.NewNop(), nil).Run(context.Background(), []string{src})
	if len(report.Failed) != 0 {
		t.Fatalf("failed: %v", report.Failed)
	}
	if len(report.Skipped[OutputPath(src)]) == 0 {
		t.Fatalf("expected skipped content, got %v", report.Skipped)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.json")
	testsupport.WriteText(t, src, minimalSkeleton)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report := New(logging.NewNop(), nil).Run(ctx, []string{src, src})
	if len(report.Converted) != 0 || len(report.Failed) != 1 {
		t.Fatalf("report = %+v", report)
	}
}
