package binio_test

import (
	"bytes"
	"errors"
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"redust/internal/binio"
)

func TestVarintRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	values := []uint64{0, 1, 127, 128, 255, 16383, 16384, math.MaxUint32, math.MaxUint64}
	for i := 0; i < 2000; i++ {
		values = append(values, uint64(rng.Uint32()))
	}

	var buf bytes.Buffer
	w := binio.NewWriter(&buf)
	for _, v := range values {
		w.Varint(v)
	}
	require.NoError(t, w.Err())

	r := binio.NewReader(&buf)
	for _, want := range values {
		got, err := r.Varint()
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestVarintEncodingShape(t *testing.T) {
	cases := []struct {
		value uint64
		want  []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{300, []byte{0xac, 0x02}},
		{math.MaxUint64, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0x01}},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		w := binio.NewWriter(&buf)
		w.Varint(tc.value)
		require.NoError(t, w.Err())
		require.Equal(t, tc.want, buf.Bytes(), "value %d", tc.value)
	}
}

func TestVarintOverflow(t *testing.T) {
	data := bytes.Repeat([]byte{0xff}, 11)
	_, err := binio.NewReader(bytes.NewReader(data)).Varint()
	require.ErrorIs(t, err, binio.ErrVarintOverflow)
}

func TestZigZag(t *testing.T) {
	for _, v := range []int64{0, -1, 1, -64, 63, math.MinInt32, math.MaxInt32, math.MinInt64, math.MaxInt64} {
		require.Equal(t, v, binio.UnZigZag(binio.ZigZag(v)))
	}
	require.Equal(t, uint64(1), binio.ZigZag(-1))
	require.Equal(t, uint64(2), binio.ZigZag(1))
}

func TestColorRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		rgba := [4]byte{byte(rng.Intn(256)), byte(rng.Intn(256)), byte(rng.Intn(256)), byte(rng.Intn(256))}
		rgb := [3]byte{rgba[0], rgba[1], rgba[2]}

		var buf bytes.Buffer
		w := binio.NewWriter(&buf)
		w.RGBA(binio.FormatRGBA(rgba))
		w.RGB(binio.FormatRGBA(rgba)[:6])
		require.NoError(t, w.Err())

		r := binio.NewReader(&buf)
		gotRGBA, err := r.RGBA()
		require.NoError(t, err)
		require.Equal(t, rgba, gotRGBA)
		gotRGB, err := r.RGB()
		require.NoError(t, err)
		require.Equal(t, rgb, gotRGB)
	}
}

func TestColorDefaults(t *testing.T) {
	var buf bytes.Buffer
	w := binio.NewWriter(&buf)
	w.RGBA("")
	w.RGB("")
	require.NoError(t, w.Err())
	require.Equal(t, []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}, buf.Bytes())
}

func TestColorRejectsGarbage(t *testing.T) {
	var buf bytes.Buffer
	w := binio.NewWriter(&buf)
	w.RGBA("zz00ff00")
	require.Error(t, w.Err())
	require.Zero(t, buf.Len())
}

func TestStringRoundTrip(t *testing.T) {
	empty := ""
	ascii := "root"
	utf := "héros ☆ 日本"
	inputs := []*string{nil, &empty, &ascii, &utf}

	var buf bytes.Buffer
	w := binio.NewWriter(&buf)
	for _, s := range inputs {
		w.String(s)
	}
	require.NoError(t, w.Err())

	r := binio.NewReader(&buf)
	for _, want := range inputs {
		got, err := r.String()
		require.NoError(t, err)
		if want == nil {
			require.Nil(t, got)
			continue
		}
		require.NotNil(t, got)
		require.Equal(t, *want, *got)
	}
}

func TestStringPrefix(t *testing.T) {
	var buf bytes.Buffer
	w := binio.NewWriter(&buf)
	w.String(nil)
	w.Str("")
	w.Str("ab")
	require.NoError(t, w.Err())
	require.Equal(t, []byte{0x00, 0x01, 0x03, 'a', 'b'}, buf.Bytes())
}

func TestFixedWidth(t *testing.T) {
	var buf bytes.Buffer
	w := binio.NewWriter(&buf)
	w.Float(1.0)
	w.Long(-2)
	w.Int(258)
	w.Bool(true)
	w.SByte(-1)
	require.NoError(t, w.Err())
	require.Equal(t, []byte{
		0x3f, 0x80, 0x00, 0x00,
		0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xfe,
		0x00, 0x00, 0x01, 0x02,
		0x01,
		0xff,
	}, buf.Bytes())
	require.Equal(t, 18, buf.Len())

	r := binio.NewReader(&buf)
	f, err := r.Float()
	require.NoError(t, err)
	require.Equal(t, float32(1.0), f)
	l, err := r.Long()
	require.NoError(t, err)
	require.Equal(t, int64(-2), l)
	i, err := r.Int()
	require.NoError(t, err)
	require.Equal(t, int32(258), i)
	b, err := r.Bool()
	require.NoError(t, err)
	require.True(t, b)
	sb, err := r.SByte()
	require.NoError(t, err)
	require.Equal(t, int8(-1), sb)

	_, err = r.Byte()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestShortArray(t *testing.T) {
	var buf bytes.Buffer
	w := binio.NewWriter(&buf)
	w.ShortArray([]int{0, 1, -1, 32767, -32768})
	require.NoError(t, w.Err())

	got, err := binio.NewReader(&buf).ShortArray()
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, -1, 32767, -32768}, got)
}

func TestShortArrayRangeCheck(t *testing.T) {
	var buf bytes.Buffer
	w := binio.NewWriter(&buf)
	w.ShortArray([]int{1, 40000})
	require.ErrorIs(t, w.Err(), binio.ErrShortOutOfRange)
	require.Zero(t, buf.Len())

	// Later writes are suppressed once an error is latched.
	w.Byte(1)
	require.Zero(t, buf.Len())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriterLatchesIOError(t *testing.T) {
	w := binio.NewWriter(failingWriter{})
	w.Varint(5)
	w.Float(2)
	require.EqualError(t, w.Err(), "disk full")
}

func TestLECursor(t *testing.T) {
	c := binio.NewLE([]byte{0x02, 0x00, 0x00, 0x00, 0xff, 0xff, 0xff, 0xff, 0x41})
	v, err := c.Int32()
	require.NoError(t, err)
	require.Equal(t, int32(2), v)
	v, err = c.Int32()
	require.NoError(t, err)
	require.Equal(t, int32(-1), v)
	b, err := c.Byte()
	require.NoError(t, err)
	require.Equal(t, byte('A'), b)

	_, err = c.Int32()
	require.ErrorIs(t, err, binio.ErrShortBuffer)

	require.Error(t, c.Seek(100))
}
