// Package bundle reads and rewrites asset bundle containers.
//
// The container format itself is handled by an external helper; this
// package lists a bundle's container entries, stages replacements and asks
// the helper to write the rewritten bundle.
package bundle

import (
	"context"
	"errors"
	"io"

	"redust/internal/texture"
)

// EntryType is the Unity object type behind a container entry.
type EntryType string

// Object types the repacker can replace.
const (
	TypeTextAsset EntryType = "TextAsset"
	TypeTexture2D EntryType = "Texture2D"
	TypeOther     EntryType = "Other"
)

// Replaceable reports whether the repacker knows how to replace t.
func (t EntryType) Replaceable() bool {
	return t == TypeTextAsset || t == TypeTexture2D
}

// ParseEntryType maps a helper-reported type name; unknown names are Other.
func ParseEntryType(name string) EntryType {
	switch EntryType(name) {
	case TypeTextAsset, TypeTexture2D:
		return EntryType(name)
	default:
		return TypeOther
	}
}

// Entry is one container path inside a bundle.
type Entry struct {
	Name string
	Type EntryType
}

var (
	// ErrNoEntry is returned when a replacement names a path the bundle does not hold.
	ErrNoEntry = errors.New("bundle: no such entry")
	// ErrWrongType is returned when a replacement does not fit the entry's type.
	ErrWrongType = errors.New("bundle: entry type does not accept this replacement")
)

// Archive is an opened bundle with pending replacements.
type Archive interface {
	Path() string
	// Entries maps container path to entry.
	Entries() map[string]Entry
	ReplaceBytes(name string, data []byte) error
	ReplaceImage(name string, img *texture.Image) error
	// Save writes the bundle with all replacements applied.
	Save(ctx context.Context, w io.Writer) error
	Close() error
}

// Opener opens bundles from disk.
type Opener interface {
	Open(ctx context.Context, path string) (Archive, error)
}

func checkReplace(entries map[string]Entry, name string, want EntryType) error {
	entry, ok := entries[name]
	if !ok {
		return ErrNoEntry
	}
	if entry.Type != want {
		return ErrWrongType
	}
	return nil
}
