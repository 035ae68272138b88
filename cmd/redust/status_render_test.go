package main

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestRenderStatusLineNoColor(t *testing.T) {
	got := renderStatusLine("Catalog", statusError, "never synced", false)
	want := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, "Catalog:", "[ERROR] never synced")
	if got != want {
		t.Fatalf("renderStatusLine mismatch\n got: %q\nwant: %q", got, want)
	}
}

func TestRenderStatusLineWithColor(t *testing.T) {
	got := renderStatusLine("Catalog", statusOK, "1.2.3", true)
	if !strings.HasPrefix(got, statusStyles[statusOK].color) {
		t.Fatalf("expected green prefix, got %q", got)
	}
	if !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected reset suffix, got %q", got)
	}
}

func TestStatusSection(t *testing.T) {
	var buf bytes.Buffer
	section := newStatusSection(" Sync ", &buf)
	section.add("Catalog", statusOK, "1.2.3")
	section.addf("Bundles", statusInfo, "%d selected", 2)
	section.write(&buf)
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 || lines[0] != "== Sync ==" || lines[1] != strings.Repeat("-", len("== Sync ==")) || !strings.HasSuffix(lines[3], "[INFO] 2 selected") {
		t.Fatalf("unexpected section: %q", lines)
	}
}

func TestShouldColorizeNonFile(t *testing.T) {
	if shouldColorize(io.Discard) {
		t.Fatalf("expected non-file writer to disable color")
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable("Bundles", []string{"Name", "Size"}, [][]string{{"skel-a", formatBytes(2048)}, {"short"}}, []columnAlignment{alignLeft, alignRight})
	for _, want := range []string{"Bundles", "skel-a", "2.0 KiB", "short"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if renderTable("", nil, nil, nil) != "" {
		t.Fatal("expected empty output without headers")
	}
}

func TestFormatHelpers(t *testing.T) {
	if got := formatBytes(-1); got != "?" {
		t.Fatalf("formatBytes(-1) = %q", got)
	}
	if got := shortDigest("0123456789abcdef"); got != "0123456789ab" {
		t.Fatalf("shortDigest = %q", got)
	}
	if got := shortDigest("abc"); got != "abc" {
		t.Fatalf("shortDigest short = %q", got)
	}
}
