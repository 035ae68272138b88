package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"redust/internal/texture"
)

// MemoryEntry is one object of a memory bundle.
type MemoryEntry struct {
	Name       string    `json:"name"`
	Type       EntryType `json:"type"`
	Data       []byte    `json:"data,omitempty"`
	Width      int       `json:"width,omitempty"`
	Height     int       `json:"height,omitempty"`
	Format     string    `json:"format,omitempty"`
	FilterMode int       `json:"filter_mode,omitempty"`
}

type memoryFile struct {
	Entries []MemoryEntry `json:"entries"`
}

// MemoryOpener opens bundles stored as JSON entry lists. It stands in for
// the helper in tests and needs no external executable.
type MemoryOpener struct{}

// Open reads a memory bundle from path.
func (MemoryOpener) Open(_ context.Context, path string) (Archive, error) {
	entries, err := ReadMemoryBundle(path)
	if err != nil {
		return nil, err
	}
	return NewMemory(path, entries), nil
}

// Memory is an in-process Archive.
type Memory struct {
	path    string
	objects map[string]MemoryEntry
}

// NewMemory builds an archive from entries.
func NewMemory(path string, entries []MemoryEntry) *Memory {
	m := &Memory{path: path, objects: make(map[string]MemoryEntry, len(entries))}
	for _, e := range entries {
		m.objects[e.Name] = e
	}
	return m
}

// Path returns the path the archive was opened from.
func (m *Memory) Path() string { return m.path }

// Entries lists the archive's objects.
func (m *Memory) Entries() map[string]Entry {
	out := make(map[string]Entry, len(m.objects))
	for name, obj := range m.objects {
		out[name] = Entry{Name: name, Type: ParseEntryType(string(obj.Type))}
	}
	return out
}

// Object returns the current state of one entry.
func (m *Memory) Object(name string) (MemoryEntry, bool) {
	obj, ok := m.objects[name]
	return obj, ok
}

// ReplaceBytes sets a TextAsset's script bytes.
func (m *Memory) ReplaceBytes(name string, data []byte) error {
	if err := checkReplace(m.Entries(), name, TypeTextAsset); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	obj := m.objects[name]
	obj.Data = append([]byte(nil), data...)
	m.objects[name] = obj
	return nil
}

// ReplaceImage sets a Texture2D's pixels and dimensions.
func (m *Memory) ReplaceImage(name string, img *texture.Image) error {
	if err := checkReplace(m.Entries(), name, TypeTexture2D); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	obj := m.objects[name]
	obj.Data = append([]byte(nil), img.Pix...)
	obj.Width = img.Width
	obj.Height = img.Height
	obj.Format = img.Format
	obj.FilterMode = TextureFilterBilinear
	m.objects[name] = obj
	return nil
}

// Save writes the archive as a memory bundle, entries sorted by name.
func (m *Memory) Save(_ context.Context, w io.Writer) error {
	names := make([]string, 0, len(m.objects))
	for name := range m.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	file := memoryFile{Entries: make([]MemoryEntry, 0, len(names))}
	for _, name := range names {
		file.Entries = append(file.Entries, m.objects[name])
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(file)
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }

// WriteMemoryBundle stores entries at path in the memory bundle format.
func WriteMemoryBundle(path string, entries []MemoryEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := NewMemory(path, entries).Save(context.Background(), f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// ReadMemoryBundle loads the entries of a memory bundle.
func ReadMemoryBundle(path string) ([]MemoryEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	var file memoryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode memory bundle %s: %w", path, err)
	}
	return file.Entries, nil
}
