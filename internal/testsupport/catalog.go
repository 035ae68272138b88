package testsupport

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"testing"

	"golang.org/x/text/encoding/unicode"

	"redust/internal/catalog"
)

// CatalogFixture assembles catalog blobs in the on-disk layout so tests can
// exercise the decoder without a real CDN catalog.
type CatalogFixture struct {
	t       testing.TB
	keys    bytes.Buffer
	extra   bytes.Buffer
	buckets []fixtureBucket
	entries [][7]int32
	ids     []string
}

type fixtureBucket struct {
	offset  int32
	entries []int32
}

// NewCatalogFixture returns an empty fixture.
func NewCatalogFixture(t testing.TB) *CatalogFixture {
	t.Helper()
	return &CatalogFixture{t: t}
}

// AddKey appends an ASCII string key and a bucket pointing at it, returning
// the bucket index.
func (f *CatalogFixture) AddKey(s string) int {
	offset := int32(f.keys.Len())
	f.keys.WriteByte(byte(catalog.KeyASCIIString))
	writeInt32(&f.keys, int32(len(s)))
	f.keys.WriteString(s)
	return f.addBucket(offset)
}

// AddUnicodeKey appends a UTF-16 string key and its bucket.
func (f *CatalogFixture) AddUnicodeKey(s string) int {
	offset := int32(f.keys.Len())
	encoded := f.utf16(s)
	f.keys.WriteByte(byte(catalog.KeyUnicodeString))
	writeInt32(&f.keys, int32(len(encoded)))
	f.keys.Write(encoded)
	return f.addBucket(offset)
}

// AddRawKey appends arbitrary key bytes and a bucket pointing at them.
func (f *CatalogFixture) AddRawKey(raw []byte) int {
	offset := int32(f.keys.Len())
	f.keys.Write(raw)
	return f.addBucket(offset)
}

// AddBucketAt appends a bucket with an explicit data offset.
func (f *CatalogFixture) AddBucketAt(offset int32) int {
	return f.addBucket(offset)
}

func (f *CatalogFixture) addBucket(offset int32) int {
	f.buckets = append(f.buckets, fixtureBucket{offset: offset})
	return len(f.buckets) - 1
}

// AddBundleEntry writes the extra-data record for a bundle and an entry that
// points at it. The entry index is returned.
func (f *CatalogFixture) AddBundleEntry(keyIndex int, name, hash string, size int64) int {
	payload, err := json.Marshal(map[string]any{
		"m_Hash":       hash,
		"m_Crc":        0,
		"m_BundleName": name,
		"m_BundleSize": size,
	})
	if err != nil {
		f.t.Fatalf("marshal extra data: %v", err)
	}
	offset := int32(f.extra.Len())
	asm := "Unity.ResourceManager"
	typ := "UnityEngine.ResourceManagement.ResourceProviders.AssetBundleRequestOptions"
	encoded := f.utf16(string(payload))
	f.extra.WriteByte(byte(catalog.KeyJSONObject))
	f.extra.WriteByte(byte(len(asm)))
	f.extra.WriteString(asm)
	f.extra.WriteByte(byte(len(typ)))
	f.extra.WriteString(typ)
	writeInt32(&f.extra, int32(len(encoded)))
	f.extra.Write(encoded)
	return f.addEntry([7]int32{0, 1, -1, -1, offset, int32(keyIndex), 0})
}

// AddAssetEntry adds a non-bundle entry keyed by keyIndex whose dependencies
// live in dependencyBucket.
func (f *CatalogFixture) AddAssetEntry(keyIndex, dependencyBucket int) int {
	return f.addEntry([7]int32{0, 0, int32(dependencyBucket), -1, -1, int32(keyIndex), 0})
}

func (f *CatalogFixture) addEntry(fields [7]int32) int {
	f.entries = append(f.entries, fields)
	return len(f.entries) - 1
}

// SetInternalID appends id to the internal id list and points entry at it.
func (f *CatalogFixture) SetInternalID(entry int, id string) {
	f.ids = append(f.ids, id)
	f.entries[entry][0] = int32(len(f.ids) - 1)
}

// Link adds entry to the member list of bucket.
func (f *CatalogFixture) Link(bucket, entry int) {
	f.buckets[bucket].entries = append(f.buckets[bucket].entries, int32(entry))
}

// Document encodes the fixture as a catalog document.
func (f *CatalogFixture) Document() catalog.Document {
	var buckets bytes.Buffer
	writeInt32(&buckets, int32(len(f.buckets)))
	for _, b := range f.buckets {
		writeInt32(&buckets, b.offset)
		writeInt32(&buckets, int32(len(b.entries)))
		for _, e := range b.entries {
			writeInt32(&buckets, e)
		}
	}
	var entries bytes.Buffer
	writeInt32(&entries, int32(len(f.entries)))
	for _, e := range f.entries {
		for _, v := range e {
			writeInt32(&entries, v)
		}
	}
	enc := base64.StdEncoding
	return catalog.Document{
		BucketData:  enc.EncodeToString(buckets.Bytes()),
		KeyData:     enc.EncodeToString(f.keys.Bytes()),
		ExtraData:   enc.EncodeToString(f.extra.Bytes()),
		EntryData:   enc.EncodeToString(entries.Bytes()),
		InternalIDs: f.ids,
	}
}

// JSON encodes the fixture as catalog JSON.
func (f *CatalogFixture) JSON() []byte {
	data, err := json.Marshal(f.Document())
	if err != nil {
		f.t.Fatalf("marshal catalog: %v", err)
	}
	return data
}

func (f *CatalogFixture) utf16(s string) []byte {
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder().Bytes([]byte(s))
	if err != nil {
		f.t.Fatalf("encode utf16: %v", err)
	}
	return out
}

func writeInt32(buf *bytes.Buffer, v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	buf.Write(b[:])
}
