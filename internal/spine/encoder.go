package spine

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strings"

	"redust/internal/binio"
)

// SupportedVersion is the only skeleton format family the encoder writes.
const SupportedVersion = "4.1"

// ErrUnsupportedVersion is returned for documents outside SupportedVersion.
var ErrUnsupportedVersion = errors.New("unsupported spine version")

// CheckVersion rejects documents whose skeleton.spine is not a 4.1 version.
func CheckVersion(doc *Document) error {
	if !strings.HasPrefix(doc.Skeleton.Spine, SupportedVersion) {
		return fmt.Errorf("%w: %q (want %s.x)", ErrUnsupportedVersion, doc.Skeleton.Spine, SupportedVersion)
	}
	return nil
}

// HeaderHash derives the binary header hash from the JSON hash string: the
// first eight bytes of its SHA-256, big-endian.
func HeaderHash(source string) int64 {
	sum := sha256.Sum256([]byte(source))
	return int64(binary.BigEndian.Uint64(sum[:8]))
}

// Encode writes doc in the binary skeleton layout. The version is checked
// before anything is written.
func Encode(w io.Writer, doc *Document) error {
	if err := CheckVersion(doc); err != nil {
		return err
	}
	e := &encoder{w: binio.NewWriter(w), doc: doc, t: NewNameTables(doc)}
	e.header()
	e.strings()
	e.bones()
	e.slots()
	e.ik()
	e.transform()
	e.path()
	e.defaultSkin()
	// Other skins and events are never written.
	e.w.Varint(0)
	e.w.Varint(0)
	e.animations()
	return e.w.Err()
}

type encoder struct {
	w   *binio.Writer
	doc *Document
	t   *NameTables
}

func (e *encoder) header() {
	h := e.doc.Skeleton
	e.w.Long(HeaderHash(h.Hash))
	e.w.Str(h.Spine)
	e.w.Float(h.X)
	e.w.Float(h.Y)
	e.w.Float(h.Width)
	e.w.Float(h.Height)
	e.w.Bool(false) // nonessential
}

func (e *encoder) strings() {
	e.w.Varint(uint64(len(e.t.Strings)))
	for _, s := range e.t.Strings {
		e.w.Str(s)
	}
}

func (e *encoder) count(n int) {
	e.w.Varint(uint64(max(n, 0)))
}

func (e *encoder) ref(idx Index, name string) {
	e.w.Varint(uint64(idx.Or(name, 0)))
}

func (e *encoder) stringRef(s *string) {
	e.w.Varint(e.t.StringRef(s))
}

func (e *encoder) bones() {
	e.count(len(e.doc.Bones))
	for i, b := range e.doc.Bones {
		e.w.Str(b.Name)
		if i > 0 {
			e.ref(e.t.Bones, b.Parent)
		}
		for _, v := range []float32{b.Rotation, b.X, b.Y, b.ScaleX, b.ScaleY, b.ShearX, b.ShearY, b.Length} {
			e.w.Float(v)
		}
		e.w.Varint(uint64(b.Transform))
		e.w.Bool(b.Skin)
	}
}

func (e *encoder) slots() {
	e.count(len(e.doc.Slots))
	for _, s := range e.doc.Slots {
		e.w.Str(s.Name)
		e.ref(e.t.Bones, s.Bone)
		e.w.RGBA(s.Color)
		e.w.RGBA(s.Dark)
		e.stringRef(s.Attachment)
		e.w.Varint(uint64(s.Blend))
	}
}

func (e *encoder) constraintBase(c ConstraintBase, targets Index) {
	e.w.Str(c.Name)
	e.w.Varint(uint64(max(c.Order, 0)))
	e.w.Bool(c.Skin)
	e.count(len(c.Bones))
	for _, b := range c.Bones {
		e.ref(e.t.Bones, b)
	}
	e.ref(targets, c.Target)
}

func (e *encoder) ik() {
	e.count(len(e.doc.IK))
	for _, c := range e.doc.IK {
		e.constraintBase(c.ConstraintBase, e.t.Bones)
		e.w.Float(c.Mix)
		e.w.Float(c.Softness)
		e.w.SByte(bend(c.BendPositive))
		e.w.Bool(c.Compress)
		e.w.Bool(c.Stretch)
		e.w.Bool(c.Uniform)
	}
}

func (e *encoder) transform() {
	e.count(len(e.doc.Transform))
	for _, c := range e.doc.Transform {
		e.constraintBase(c.ConstraintBase, e.t.Bones)
		e.w.Bool(c.Local)
		e.w.Bool(c.Relative)
		for _, v := range []float32{
			c.Rotation, c.X, c.Y, c.ScaleX, c.ScaleY, c.ShearY,
			c.MixRotate, c.MixX, c.MixY, c.MixScaleX, c.MixScaleY, c.MixShearY,
		} {
			e.w.Float(v)
		}
	}
}

func (e *encoder) path() {
	e.count(len(e.doc.Path))
	for _, c := range e.doc.Path {
		e.constraintBase(c.ConstraintBase, e.t.Slots)
		e.w.Varint(uint64(c.PositionMode))
		e.w.Varint(uint64(c.SpacingMode))
		e.w.Varint(uint64(c.RotateMode))
		for _, v := range []float32{c.Rotation, c.Position, c.Spacing, c.MixRotate, c.MixX, c.MixY} {
			e.w.Float(v)
		}
	}
}

func bend(positive bool) int8 {
	if positive {
		return 1
	}
	return -1
}
