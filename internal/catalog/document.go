package catalog

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrCorrupt marks catalog data that cannot be decoded.
var ErrCorrupt = errors.New("corrupt catalog")

// Document is the subset of the catalog JSON the decoder needs.
type Document struct {
	LocatorID   string   `json:"m_LocatorId"`
	InternalIDs []string `json:"m_InternalIds"`
	ProviderIDs []string `json:"m_ProviderIds"`
	BucketData  string   `json:"m_BucketDataString"`
	KeyData     string   `json:"m_KeyDataString"`
	ExtraData   string   `json:"m_ExtraDataString"`
	EntryData   string   `json:"m_EntryDataString"`
}

// ParseDocument reads a catalog JSON document.
func ParseDocument(r io.Reader) (Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode catalog json: %w", err)
	}
	return doc, nil
}

type blobs struct {
	buckets []byte
	keys    []byte
	extra   []byte
	entries []byte
}

func (d Document) decodeBlobs() (blobs, error) {
	var out blobs
	fields := []struct {
		name string
		src  string
		dst  *[]byte
	}{
		{"m_BucketDataString", d.BucketData, &out.buckets},
		{"m_KeyDataString", d.KeyData, &out.keys},
		{"m_ExtraDataString", d.ExtraData, &out.extra},
		{"m_EntryDataString", d.EntryData, &out.entries},
	}
	for _, f := range fields {
		raw, err := base64.StdEncoding.DecodeString(f.src)
		if err != nil {
			return blobs{}, fmt.Errorf("%w: %s: %w", ErrCorrupt, f.name, err)
		}
		*f.dst = raw
	}
	return out, nil
}
