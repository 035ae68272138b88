package mods

import (
	"path/filepath"
	"testing"

	"redust/internal/services"
	"redust/internal/testsupport"
)

func TestLogicalName(t *testing.T) {
	cases := map[string]string{
		"char000101.skel":       "char000101.skel.bytes",
		"char000101.skel.txt":   "char000101.skel.bytes",
		"char000101.skel.bytes": "char000101.skel.bytes",
		"char000101.atlas":      "char000101.atlas.txt",
		"char000101.atlas.txt":  "char000101.atlas.txt",
		"char000101.png":        "char000101.png",
	}
	for in, want := range cases {
		if got := LogicalName(in); got != want {
			t.Errorf("LogicalName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	write := func(rel string) string {
		path := filepath.Join(root, rel)
		testsupport.WriteText(t, path, "x")
		return path
	}

	skel := write("a/char000101.skel")
	atlas := write("a/char000101.atlas")
	png := write("a/char000101.png")
	write("a/info.modfile")
	write("a/char000101.json")
	pending := write("b/char000202.json")
	write("c/char000303.json")
	write("c/char000303.skel.bytes")
	dup := write("d/CHAR000101.skel.txt")

	set, err := Scan(root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if set.Scanned != 9 {
		t.Fatalf("scanned = %d", set.Scanned)
	}

	want := map[string]string{
		"char000101.skel.bytes": skel,
		"char000101.atlas.txt":  atlas,
		"char000101.png":        png,
		"char000303.skel.bytes": filepath.Join(root, "c", "char000303.skel.bytes"),
	}
	if len(set.Files) != len(want) {
		t.Fatalf("files = %v", set.Files)
	}
	for name, path := range want {
		if set.Files[name] != path {
			t.Errorf("files[%q] = %q, want %q", name, set.Files[name], path)
		}
	}

	if got := set.Duplicates[skel]; len(got) != 1 || got[0] != dup {
		t.Fatalf("duplicates = %v", set.Duplicates)
	}
	if len(set.PendingJSON) != 1 || set.PendingJSON[0] != pending {
		t.Fatalf("pending = %v", set.PendingJSON)
	}
	names := set.Names()
	if len(names) != 4 || names[0] != "char000101.atlas.txt" {
		t.Fatalf("names = %v", names)
	}
}

func TestScanMissingRoot(t *testing.T) {
	_, err := Scan(filepath.Join(t.TempDir(), "nope"))
	if err == nil || !services.IsFatal(err) {
		t.Fatalf("expected fatal error, got %v", err)
	}
}
