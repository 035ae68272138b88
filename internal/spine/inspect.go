package spine

import (
	"errors"
	"fmt"
	"io"

	"redust/internal/binio"
)

// ErrCorruptSkeleton is returned by Inspect for data the encoder could not
// have written.
var ErrCorruptSkeleton = errors.New("corrupt binary skeleton")

// maxSectionCount bounds every count read by Inspect.
const maxSectionCount = 1 << 20

// Summary is the leading part of a binary skeleton: header, string table,
// bones, slots and constraint names. Skins and animations are not read.
type Summary struct {
	Hash      int64
	Version   string
	X, Y      float32
	Width     float32
	Height    float32
	Strings   []string
	Bones     []BoneSummary
	Slots     []SlotSummary
	IK        []string
	Transform []string
	Path      []string
}

// BoneSummary names a bone and its parent position (-1 for the root).
type BoneSummary struct {
	Name      string
	Parent    int
	Transform TransformMode
}

type SlotSummary struct {
	Name       string
	Bone       int
	Color      string
	Dark       string
	Attachment string
	Blend      BlendMode
}

// Inspect decodes the sections Encode writes ahead of the default skin.
func Inspect(r io.Reader) (*Summary, error) {
	in := &inspector{r: binio.NewReader(r)}
	s := &Summary{}

	s.Hash = in.long()
	s.Version = in.str()
	s.X, s.Y, s.Width, s.Height = in.float(), in.float(), in.float(), in.float()
	if in.flag() && in.err == nil {
		in.err = fmt.Errorf("%w: nonessential data is not supported", ErrCorruptSkeleton)
	}

	for range in.count("strings") {
		s.Strings = append(s.Strings, in.str())
	}

	for i := range in.count("bones") {
		b := BoneSummary{Name: in.str(), Parent: -1}
		if i > 0 {
			b.Parent = in.count("parent")
		}
		for range 8 {
			in.float()
		}
		b.Transform = TransformMode(in.count("transform"))
		in.flag()
		s.Bones = append(s.Bones, b)
	}

	for range in.count("slots") {
		slot := SlotSummary{Name: in.str(), Bone: in.count("slot bone")}
		slot.Color = binio.FormatRGBA(in.rgba())
		slot.Dark = binio.FormatRGBA(in.rgba())
		if ref := in.count("attachment ref"); ref > 0 && ref <= len(s.Strings) {
			slot.Attachment = s.Strings[ref-1]
		}
		slot.Blend = BlendMode(in.count("blend"))
		s.Slots = append(s.Slots, slot)
	}

	for range in.count("ik") {
		s.IK = append(s.IK, in.constraintBase())
		in.float()
		in.float()
		in.sbyte()
		in.flag()
		in.flag()
		in.flag()
	}
	for range in.count("transform") {
		s.Transform = append(s.Transform, in.constraintBase())
		in.flag()
		in.flag()
		for range 12 {
			in.float()
		}
	}
	for range in.count("path") {
		s.Path = append(s.Path, in.constraintBase())
		for range 3 {
			in.count("path mode")
		}
		for range 6 {
			in.float()
		}
	}

	if in.err != nil {
		return nil, in.err
	}
	return s, nil
}

// inspector latches the first read error; later reads return zero values.
type inspector struct {
	r   *binio.Reader
	err error
}

func (in *inspector) count(what string) int {
	if in.err != nil {
		return 0
	}
	v, err := in.r.Varint()
	if err != nil {
		in.err = err
		return 0
	}
	if v > maxSectionCount {
		in.err = fmt.Errorf("%w: %s count %d", ErrCorruptSkeleton, what, v)
		return 0
	}
	return int(v)
}

func (in *inspector) long() int64 {
	if in.err != nil {
		return 0
	}
	v, err := in.r.Long()
	in.err = err
	return v
}

func (in *inspector) float() float32 {
	if in.err != nil {
		return 0
	}
	v, err := in.r.Float()
	in.err = err
	return v
}

func (in *inspector) flag() bool {
	if in.err != nil {
		return false
	}
	v, err := in.r.Bool()
	in.err = err
	return v
}

func (in *inspector) sbyte() int8 {
	if in.err != nil {
		return 0
	}
	v, err := in.r.SByte()
	in.err = err
	return v
}

func (in *inspector) rgba() [4]byte {
	if in.err != nil {
		return [4]byte{}
	}
	v, err := in.r.RGBA()
	in.err = err
	return v
}

func (in *inspector) str() string {
	if in.err != nil {
		return ""
	}
	v, err := in.r.String()
	if err != nil {
		in.err = err
		return ""
	}
	if v == nil {
		return ""
	}
	return *v
}

func (in *inspector) constraintBase() string {
	name := in.str()
	in.count("order")
	in.flag()
	for range in.count("constraint bones") {
		in.count("bone")
	}
	in.count("target")
	return name
}

// BlendName is the JSON spelling of a blend mode.
func BlendName(b BlendMode) string {
	return enumName(blendModes, b)
}

// TransformName is the JSON spelling of a bone transform mode.
func TransformName(m TransformMode) string {
	return enumName(transformModes, m)
}

func enumName[T comparable](table map[string]T, v T) string {
	for name, candidate := range table {
		if candidate == v {
			return name
		}
	}
	return fmt.Sprint(v)
}
