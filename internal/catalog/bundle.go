package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrUnsafeName marks a bundle name, hash or version that cannot be used as
// a single path element.
var ErrUnsafeName = errors.New("unsafe path element")

// BundleInfo describes a downloadable bundle referenced by a bundle entry.
type BundleInfo struct {
	Name       string
	Hash       string
	Size       int64
	Key        string
	EntryIndex int
	Extra      map[string]any
}

// CheckPathElement rejects values that would not stay a single directory
// level once joined into a cache path.
func CheckPathElement(kind, value string) error {
	switch {
	case value == "", value == ".",
		strings.Contains(value, ".."),
		strings.ContainsAny(value, "/\\\x00"):
		return fmt.Errorf("%w: %s %q", ErrUnsafeName, kind, value)
	}
	return nil
}

// Validate checks that Name and Hash can address a cache directory.
func (b BundleInfo) Validate() error {
	if err := CheckPathElement("bundle name", b.Name); err != nil {
		return err
	}
	return CheckPathElement("bundle hash", b.Hash)
}

var bundleHashSuffix = regexp.MustCompile(`_[a-f0-9]+(\.bundle)`)

// RemoteName is the file name the CDN serves the bundle under: the key with
// its content-hash suffix removed.
func (b BundleInfo) RemoteName() string {
	return bundleHashSuffix.ReplaceAllString(b.Key, "$1")
}

// Pattern selects bundle entries by the shape of their key.
type Pattern struct {
	Prefix string
	Suffix string
}

// Match reports whether key satisfies the pattern. An empty pattern matches
// everything.
func (p Pattern) Match(key string) bool {
	return strings.HasPrefix(key, p.Prefix) && strings.HasSuffix(key, p.Suffix)
}

func bundleFromExtra(obj map[string]any) (BundleInfo, bool) {
	name, _ := obj["m_BundleName"].(string)
	hash, _ := obj["m_Hash"].(string)
	if name == "" || hash == "" {
		return BundleInfo{}, false
	}
	var size int64
	switch v := obj["m_BundleSize"].(type) {
	case float64:
		size = int64(v)
	case int64:
		size = v
	}
	return BundleInfo{Name: name, Hash: hash, Size: size, Extra: obj}, true
}
