package catalog

import (
	"fmt"

	"redust/internal/binio"
)

// Bucket groups the entries that share one key. The bucket index doubles as
// the dependency-group id entries refer to.
type Bucket struct {
	DataOffset int32
	Entries    []int32
}

// Entry is one fixed-width record from the entry table.
type Entry struct {
	InternalID      int32
	ProviderIndex   int32
	DependencyKey   int32
	MetadataIndex   int32
	ExtraDataOffset int32
	KeyIndex        int32
	Unused          int32
}

// bundleProviderIndex is the provider slot used by remote asset bundles.
const bundleProviderIndex = 1

// IsBundle reports whether the entry describes a downloadable bundle.
func (e Entry) IsBundle() bool {
	return e.ProviderIndex == bundleProviderIndex && e.ExtraDataOffset >= 0
}

func parseBuckets(blob []byte) ([]Bucket, error) {
	c := binio.NewLE(blob)
	count, err := c.Int32()
	if err != nil {
		return nil, fmt.Errorf("%w: bucket count: %w", ErrCorrupt, err)
	}
	if count < 0 || int(count) > (c.Len()-4)/8 {
		return nil, fmt.Errorf("%w: bucket count %d exceeds data", ErrCorrupt, count)
	}
	buckets := make([]Bucket, 0, count)
	for i := int32(0); i < count; i++ {
		offset, err := c.Int32()
		if err != nil {
			return nil, fmt.Errorf("%w: bucket %d offset: %w", ErrCorrupt, i, err)
		}
		n, err := c.Int32()
		if err != nil {
			return nil, fmt.Errorf("%w: bucket %d entry count: %w", ErrCorrupt, i, err)
		}
		if n < 0 || int(n) > (c.Len()-c.Offset())/4 {
			return nil, fmt.Errorf("%w: bucket %d entry count %d exceeds data", ErrCorrupt, i, n)
		}
		entries := make([]int32, n)
		for j := range entries {
			if entries[j], err = c.Int32(); err != nil {
				return nil, fmt.Errorf("%w: bucket %d entry %d: %w", ErrCorrupt, i, j, err)
			}
		}
		buckets = append(buckets, Bucket{DataOffset: offset, Entries: entries})
	}
	return buckets, nil
}

const entryFields = 7

func parseEntries(blob []byte) ([]Entry, error) {
	c := binio.NewLE(blob)
	count, err := c.Int32()
	if err != nil {
		return nil, fmt.Errorf("%w: entry count: %w", ErrCorrupt, err)
	}
	if count < 0 || int(count) > (c.Len()-4)/(entryFields*4) {
		return nil, fmt.Errorf("%w: entry count %d exceeds data", ErrCorrupt, count)
	}
	entries := make([]Entry, 0, count)
	for i := int32(0); i < count; i++ {
		var f [entryFields]int32
		for j := range f {
			if f[j], err = c.Int32(); err != nil {
				return nil, fmt.Errorf("%w: entry %d field %d: %w", ErrCorrupt, i, j, err)
			}
		}
		entries = append(entries, Entry{
			InternalID:      f[0],
			ProviderIndex:   f[1],
			DependencyKey:   f[2],
			MetadataIndex:   f[3],
			ExtraDataOffset: f[4],
			KeyIndex:        f[5],
			Unused:          f[6],
		})
	}
	return entries, nil
}
