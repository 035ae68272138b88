package catalog_test

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"redust/internal/catalog"
	"redust/internal/logging"
	"redust/internal/testsupport"
)

func TestParseSingleBundleEntry(t *testing.T) {
	f := testsupport.NewCatalogFixture(t)
	key := f.AddKey("common-skeleton-data-x.bundle")
	f.AddBundleEntry(key, "abc", "def", 10)

	cat, err := catalog.Parse(f.Document(), logging.NewNop())
	require.NoError(t, err)
	require.Len(t, cat.Buckets, 1)
	require.Empty(t, cat.Buckets[0].Entries)

	bundles := cat.BundlesMatching(catalog.Pattern{Prefix: "common-skeleton-data", Suffix: "bundle"})
	require.Len(t, bundles, 1)
	require.Equal(t, "abc", bundles[0].Name)
	require.Equal(t, "def", bundles[0].Hash)
	require.EqualValues(t, 10, bundles[0].Size)
	require.Equal(t, "common-skeleton-data-x.bundle", bundles[0].Key)
}

func TestParseRejectsBundleNamesLeavingCache(t *testing.T) {
	for _, tc := range []struct{ name, hash string }{
		{"../../escaped", "h"},
		{"skel", "../../h"},
		{"nested/skel", "h"},
	} {
		f := testsupport.NewCatalogFixture(t)
		key := f.AddKey("common-skeleton-data-x.bundle")
		f.AddBundleEntry(key, tc.name, tc.hash, 1)

		_, err := catalog.Parse(f.Document(), logging.NewNop())
		require.Error(t, err, "%s/%s", tc.name, tc.hash)
		require.True(t, errors.Is(err, catalog.ErrCorrupt))
		require.True(t, errors.Is(err, catalog.ErrUnsafeName))
	}
}

func TestCheckPathElement(t *testing.T) {
	require.NoError(t, catalog.CheckPathElement("version", "9.9.1"))
	require.NoError(t, catalog.CheckPathElement("hash", "0a1b2c"))
	for _, bad := range []string{"", ".", "..", "a..b", "a/b", `a\b`} {
		require.ErrorIs(t, catalog.CheckPathElement("version", bad), catalog.ErrUnsafeName, bad)
	}
}

func TestResolveThroughDependencyBucket(t *testing.T) {
	f := testsupport.NewCatalogFixture(t)
	heroKey := f.AddKey("Assets/Characters/Hero.png")
	bundleKey := f.AddKey("char_assets_all_0a1b2c.bundle")
	depBucket := f.AddKey("dependency-group")

	bundleEntry := f.AddBundleEntry(bundleKey, "bundleA", "h1", 42)
	f.AddAssetEntry(heroKey, depBucket)
	f.Link(depBucket, bundleEntry)

	cat, err := catalog.Parse(f.Document(), nil)
	require.NoError(t, err)

	res := cat.Resolve([]string{"hero.png", "villain.png"})
	require.Len(t, res.Assets, 1)
	require.Equal(t, "bundleA", res.Assets[0].Bundle.Name)
	require.Equal(t, "hero.png", res.Assets[0].Name)
	require.Equal(t, []string{"villain.png"}, res.Missing)
	require.Equal(t, "char_assets_all.bundle", res.Assets[0].Bundle.RemoteName())
}

func TestResolvePicksFirstMatchingEntry(t *testing.T) {
	f := testsupport.NewCatalogFixture(t)
	first := f.AddKey("a/HERO.PNG")
	second := f.AddKey("b/hero.png")
	bk1 := f.AddKey("one.bundle")
	bk2 := f.AddKey("two.bundle")
	dep1 := f.AddKey("dep1")
	dep2 := f.AddKey("dep2")

	b1 := f.AddBundleEntry(bk1, "one", "h", 1)
	b2 := f.AddBundleEntry(bk2, "two", "h", 2)
	f.AddAssetEntry(first, dep1)
	f.AddAssetEntry(second, dep2)
	f.Link(dep1, b1)
	f.Link(dep2, b2)

	cat, err := catalog.Parse(f.Document(), nil)
	require.NoError(t, err)
	res := cat.Resolve([]string{"hero.png"})
	require.Len(t, res.Assets, 1)
	require.Equal(t, "one", res.Assets[0].Bundle.Name)
}

func TestResolveSkipsAssetWithoutBundle(t *testing.T) {
	f := testsupport.NewCatalogFixture(t)
	key := f.AddKey("orphan.png")
	dep := f.AddKey("empty-dep")
	f.AddAssetEntry(key, dep)
	f.AddAssetEntry(key, 99)

	cat, err := catalog.Parse(f.Document(), nil)
	require.NoError(t, err)
	res := cat.Resolve([]string{"orphan.png"})
	require.Empty(t, res.Assets)
	require.Equal(t, []string{"orphan.png"}, res.Missing)
}

func TestParseIsDeterministic(t *testing.T) {
	f := testsupport.NewCatalogFixture(t)
	for _, name := range []string{"a.png", "b.png", "c.png"} {
		key := f.AddKey(name)
		bk := f.AddKey(name + ".bundle")
		b := f.AddBundleEntry(bk, "bundle-"+name, "hash-"+name, 5)
		f.AddAssetEntry(key, bk)
		f.Link(bk, b)
	}
	data := f.JSON()

	resolve := func() catalog.Resolution {
		doc, err := catalog.ParseDocument(bytes.NewReader(data))
		require.NoError(t, err)
		cat, err := catalog.Parse(doc, nil)
		require.NoError(t, err)
		return cat.Resolve([]string{"c.png", "a.png", "b.png", "zzz"})
	}
	first := resolve()
	require.Len(t, first.Assets, 3)
	require.Equal(t, first, resolve())
}

func TestUnicodeAndUnknownKeys(t *testing.T) {
	f := testsupport.NewCatalogFixture(t)
	uni := f.AddUnicodeKey("ヒーロー.png")
	raw := f.AddRawKey([]byte{0x2a})
	num := f.AddRawKey([]byte{byte(catalog.KeyInt32), 0xfe, 0xff, 0xff, 0xff})
	bad := f.AddBucketAt(10_000)

	cat, err := catalog.Parse(f.Document(), nil)
	require.NoError(t, err)

	text, ok := cat.Keys[uni].Text()
	require.True(t, ok)
	require.Equal(t, "ヒーロー.png", text)

	require.Equal(t, catalog.KeyRawByte, cat.Keys[raw].Kind)
	require.EqualValues(t, 0x2a, cat.Keys[raw].Raw)

	require.Equal(t, catalog.KeyInt32, cat.Keys[num].Kind)
	require.EqualValues(t, -2, cat.Keys[num].Int)
	require.Equal(t, "-2", cat.Keys[num].String())

	require.False(t, cat.Keys[bad].Present)
}

func TestParseRejectsCorruptTables(t *testing.T) {
	f := testsupport.NewCatalogFixture(t)
	f.AddKey("x")
	good := f.Document()

	truncated := good
	truncated.EntryData = base64.StdEncoding.EncodeToString([]byte{5, 0, 0, 0, 1, 2})
	_, err := catalog.Parse(truncated, nil)
	require.ErrorIs(t, err, catalog.ErrCorrupt)

	badBuckets := good
	badBuckets.BucketData = base64.StdEncoding.EncodeToString([]byte{1, 0, 0, 0, 0, 0, 0, 0, 9, 0, 0, 0})
	_, err = catalog.Parse(badBuckets, nil)
	require.ErrorIs(t, err, catalog.ErrCorrupt)

	notBase64 := good
	notBase64.KeyData = "!!!"
	_, err = catalog.Parse(notBase64, nil)
	require.ErrorIs(t, err, catalog.ErrCorrupt)
}

func TestBundleNamesAndDedup(t *testing.T) {
	f := testsupport.NewCatalogFixture(t)
	k := f.AddKey("dup.bundle")
	f.AddBundleEntry(k, "same", "h", 1)
	f.AddBundleEntry(k, "same", "h", 1)
	k2 := f.AddKey("other.bundle")
	f.AddBundleEntry(k2, "other", "h2", 3)

	cat, err := catalog.Parse(f.Document(), nil)
	require.NoError(t, err)
	require.Len(t, cat.Bundles(), 2)
	require.Equal(t, map[string]struct{}{"same": {}, "other": {}}, cat.BundleNames())
}

func TestInternalID(t *testing.T) {
	f := testsupport.NewCatalogFixture(t)
	bundleKey := f.AddKey("skel_0a1b.bundle")
	assetKey := f.AddKey("Assets/Spine/hero.skel.bytes")
	bundleEntry := f.AddBundleEntry(bundleKey, "skel", "h", 1)
	f.Link(bundleKey, bundleEntry)
	asset := f.AddAssetEntry(assetKey, bundleKey)
	f.SetInternalID(bundleEntry, "https://cdn.example/skel.bundle")
	f.SetInternalID(asset, "Assets/Spine/hero.skel.bytes")

	cat, err := catalog.Parse(f.Document(), logging.NewNop())
	require.NoError(t, err)
	res := cat.Resolve([]string{"hero.skel.bytes"})
	require.Len(t, res.Assets, 1)
	require.Equal(t, "Assets/Spine/hero.skel.bytes", cat.InternalID(res.Assets[0].EntryIndex))
	require.Equal(t, "https://cdn.example/skel.bundle", cat.InternalID(bundleEntry))
	require.Empty(t, cat.InternalID(-1))
	require.Empty(t, cat.InternalID(len(cat.Entries)))
}
