package catalog

import (
	"fmt"
	"log/slog"
	"path"
	"strings"

	"golang.org/x/text/cases"

	"redust/internal/logging"
)

// Catalog is a decoded, immutable content catalog.
type Catalog struct {
	Buckets     []Bucket
	Keys        []Key
	Entries     []Entry
	InternalIDs []string

	bundles map[int]BundleInfo
	byName  map[string]int
}

// ResolvedAsset pairs a requested asset name with the bundle that holds it.
type ResolvedAsset struct {
	Name       string
	EntryIndex int
	Bundle     BundleInfo
}

// Resolution is the outcome of resolving a batch of asset names.
type Resolution struct {
	Assets  []ResolvedAsset
	Missing []string
}

var folder = cases.Fold()

func foldName(name string) string {
	return folder.String(strings.TrimSpace(name))
}

// Parse decodes the four catalog blobs. Corrupt bucket or entry tables and
// unsafe bundle names are fatal; undecodable keys are recorded as absent.
func Parse(doc Document, logger *slog.Logger) (*Catalog, error) {
	logger = logging.NewComponentLogger(logger, "catalog")

	raw, err := doc.decodeBlobs()
	if err != nil {
		return nil, err
	}
	buckets, err := parseBuckets(raw.buckets)
	if err != nil {
		return nil, err
	}
	entries, err := parseEntries(raw.entries)
	if err != nil {
		return nil, err
	}

	keys := make([]Key, len(buckets))
	absent := 0
	for i, b := range buckets {
		key, err := decodeKey(raw.keys, int(b.DataOffset))
		if err != nil {
			absent++
			logger.Debug("catalog key not decodable",
				logging.Int("bucket", i),
				logging.Error(err))
			continue
		}
		keys[i] = key
	}

	c := &Catalog{
		Buckets:     buckets,
		Keys:        keys,
		Entries:     entries,
		InternalIDs: doc.InternalIDs,
		bundles:     make(map[int]BundleInfo),
		byName:      make(map[string]int),
	}

	for i, e := range entries {
		keyText, _ := c.keyText(e.KeyIndex)
		if e.IsBundle() {
			extra, err := decodeKey(raw.extra, int(e.ExtraDataOffset))
			if err != nil || extra.Kind != KeyJSONObject {
				logger.Debug("bundle entry without usable extra data",
					logging.Int("entry", i),
					logging.String("key", keyText))
				continue
			}
			info, ok := bundleFromExtra(extra.JSON)
			if !ok {
				continue
			}
			if err := info.Validate(); err != nil {
				return nil, fmt.Errorf("%w: entry %d: %w", ErrCorrupt, i, err)
			}
			info.Key = keyText
			info.EntryIndex = i
			c.bundles[i] = info
			continue
		}
		if keyText == "" {
			continue
		}
		folded := foldName(path.Base(keyText))
		if _, seen := c.byName[folded]; !seen {
			c.byName[folded] = i
		}
	}

	logger.Debug("catalog parsed",
		logging.Int("buckets", len(buckets)),
		logging.Int("entries", len(entries)),
		logging.Int("bundles", len(c.bundles)),
		logging.Int("absent_keys", absent))
	return c, nil
}

func (c *Catalog) keyText(index int32) (string, bool) {
	if index < 0 || int(index) >= len(c.Keys) {
		return "", false
	}
	return c.Keys[index].Text()
}

// Bundles returns every bundle entry in entry order, deduplicated by name and hash.
func (c *Catalog) Bundles() []BundleInfo {
	return c.BundlesMatching(Pattern{})
}

// BundlesMatching returns the bundle entries whose key satisfies p.
func (c *Catalog) BundlesMatching(p Pattern) []BundleInfo {
	seen := make(map[string]struct{})
	var out []BundleInfo
	for i := range c.Entries {
		info, ok := c.bundles[i]
		if !ok || !p.Match(info.Key) {
			continue
		}
		id := info.Name + "/" + info.Hash
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, info)
	}
	return out
}

// BundleNames returns the set of bundle names referenced by the catalog.
func (c *Catalog) BundleNames() map[string]struct{} {
	names := make(map[string]struct{}, len(c.bundles))
	for _, info := range c.bundles {
		names[info.Name] = struct{}{}
	}
	return names
}

// BundleForEntry follows one dependency hop from an asset entry to the
// first bundle entry in its dependency bucket.
func (c *Catalog) BundleForEntry(index int) (BundleInfo, bool) {
	if index < 0 || index >= len(c.Entries) {
		return BundleInfo{}, false
	}
	dep := c.Entries[index].DependencyKey
	if dep < 0 || int(dep) >= len(c.Buckets) {
		return BundleInfo{}, false
	}
	for _, member := range c.Buckets[dep].Entries {
		if info, ok := c.bundles[int(member)]; ok {
			return info, true
		}
	}
	return BundleInfo{}, false
}

// Lookup returns the index of the first asset entry whose key basename
// matches name case-insensitively.
func (c *Catalog) Lookup(name string) (int, bool) {
	idx, ok := c.byName[foldName(path.Base(name))]
	return idx, ok
}

// Resolve maps each requested asset name to its bundle. Names that are not
// in the catalog, or whose dependency chain has no bundle, land in Missing.
func (c *Catalog) Resolve(names []string) Resolution {
	var res Resolution
	for _, name := range names {
		idx, ok := c.Lookup(name)
		if !ok {
			res.Missing = append(res.Missing, name)
			continue
		}
		info, ok := c.BundleForEntry(idx)
		if !ok {
			res.Missing = append(res.Missing, name)
			continue
		}
		res.Assets = append(res.Assets, ResolvedAsset{Name: name, EntryIndex: idx, Bundle: info})
	}
	return res
}

// InternalID returns the internal id string for an entry when the document carried one.
func (c *Catalog) InternalID(index int) string {
	if index < 0 || index >= len(c.Entries) {
		return ""
	}
	id := int(c.Entries[index].InternalID)
	if id < 0 || id >= len(c.InternalIDs) {
		return ""
	}
	return c.InternalIDs[id]
}

// String summarizes the catalog for logs.
func (c *Catalog) String() string {
	return fmt.Sprintf("catalog(buckets=%d entries=%d bundles=%d)", len(c.Buckets), len(c.Entries), len(c.bundles))
}
