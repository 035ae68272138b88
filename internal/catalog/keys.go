package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/text/encoding/unicode"

	"redust/internal/binio"
)

// KeyKind is the type tag that prefixes every serialized key.
type KeyKind uint8

const (
	KeyASCIIString KeyKind = iota
	KeyUnicodeString
	KeyUInt16
	KeyUInt32
	KeyInt32
	KeyHash128
	KeyTypeTag
	KeyJSONObject
	// KeyRawByte is used for tags the decoder does not understand; Raw holds the tag.
	KeyRawByte KeyKind = 0xff
)

func (k KeyKind) String() string {
	switch k {
	case KeyASCIIString:
		return "ascii"
	case KeyUnicodeString:
		return "unicode"
	case KeyUInt16:
		return "uint16"
	case KeyUInt32:
		return "uint32"
	case KeyInt32:
		return "int32"
	case KeyHash128:
		return "hash128"
	case KeyTypeTag:
		return "type"
	case KeyJSONObject:
		return "json"
	default:
		return "raw"
	}
}

// Key is one decoded value from the key or extra-data blob.
type Key struct {
	Present bool
	Kind    KeyKind
	Str     string
	Int     int64
	// Assembly and TypeName are set for KeyTypeTag and KeyJSONObject values.
	Assembly string
	TypeName string
	JSON     map[string]any
	Raw      byte
}

// Text returns the key as a string when it is one of the string-like kinds.
func (k Key) Text() (string, bool) {
	if !k.Present {
		return "", false
	}
	switch k.Kind {
	case KeyASCIIString, KeyUnicodeString, KeyHash128:
		return k.Str, true
	case KeyTypeTag:
		return k.TypeName, true
	default:
		return "", false
	}
}

// String renders the key for display.
func (k Key) String() string {
	if !k.Present {
		return "<absent>"
	}
	switch k.Kind {
	case KeyUInt16, KeyUInt32, KeyInt32:
		return strconv.FormatInt(k.Int, 10)
	case KeyJSONObject:
		data, err := json.Marshal(k.JSON)
		if err != nil {
			return "<json>"
		}
		return string(data)
	case KeyRawByte:
		return fmt.Sprintf("<tag %d>", k.Raw)
	default:
		s, _ := k.Text()
		return s
	}
}

var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)

// decodeKey reads one tagged value at offset. Any failure yields an absent
// key and the error for logging; callers never propagate it.
func decodeKey(blob []byte, offset int) (Key, error) {
	c := binio.NewLE(blob)
	if err := c.Seek(offset); err != nil {
		return Key{}, err
	}
	tag, err := c.Byte()
	if err != nil {
		return Key{}, err
	}
	key := Key{Present: true, Kind: KeyKind(tag)}

	switch KeyKind(tag) {
	case KeyASCIIString:
		key.Str, err = readString32(c, false)
	case KeyUnicodeString:
		key.Str, err = readString32(c, true)
	case KeyUInt16:
		var v uint16
		v, err = c.Uint16()
		key.Int = int64(v)
	case KeyUInt32:
		var v uint32
		v, err = c.Uint32()
		key.Int = int64(v)
	case KeyInt32:
		var v int32
		v, err = c.Int32()
		key.Int = int64(v)
	case KeyHash128:
		key.Str, err = readString8(c)
	case KeyTypeTag:
		if key.Assembly, err = readString8(c); err == nil {
			key.TypeName, err = readString8(c)
		}
	case KeyJSONObject:
		key.JSON, key.Assembly, key.TypeName, err = readJSONObject(c)
	default:
		key = Key{Present: true, Kind: KeyRawByte, Raw: tag}
	}
	if err != nil {
		return Key{}, fmt.Errorf("decode %s key at %d: %w", KeyKind(tag), offset, err)
	}
	return key, nil
}

func readString8(c *binio.LE) (string, error) {
	n, err := c.Byte()
	if err != nil {
		return "", err
	}
	b, err := c.Bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func readString32(c *binio.LE, utf16 bool) (string, error) {
	n, err := c.Int32()
	if err != nil {
		return "", err
	}
	b, err := c.Bytes(int(n))
	if err != nil {
		return "", err
	}
	if !utf16 {
		return string(b), nil
	}
	decoded, err := utf16Decoder.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}

func readJSONObject(c *binio.LE) (map[string]any, string, string, error) {
	assembly, err := readString8(c)
	if err != nil {
		return nil, "", "", err
	}
	typeName, err := readString8(c)
	if err != nil {
		return nil, "", "", err
	}
	payload, err := readString32(c, true)
	if err != nil {
		return nil, "", "", err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(payload), &obj); err != nil {
		return nil, "", "", err
	}
	return obj, assembly, typeName, nil
}
