package spine

import (
	"errors"
	"fmt"
)

// ErrMalformedVertices is returned when a weighted vertex list ends inside a
// bone group.
var ErrMalformedVertices = errors.New("malformed weighted vertices")

func (e *encoder) defaultSkin() {
	skin := e.doc.DefaultSkin()
	if skin == nil {
		e.count(0)
		return
	}
	e.count(len(skin.Slots))
	for _, slot := range skin.Slots {
		e.ref(e.t.Slots, slot.Slot)
		e.count(len(slot.Attachments))
		for _, att := range slot.Attachments {
			key := att.Key
			e.stringRef(&key)
			e.attachment(att)
		}
	}
}

func (e *encoder) attachment(a Attachment) {
	e.stringRef(a.Name)
	e.w.Byte(uint8(a.Type))
	switch a.Type {
	case AttachmentRegion:
		e.stringRef(a.Path)
		for _, v := range []float32{a.Rotation, a.X, a.Y, a.ScaleX, a.ScaleY, a.Width, a.Height} {
			e.w.Float(v)
		}
		e.w.RGBA(a.Color)
		e.sequence(a.Sequence)
	case AttachmentBoundingBox:
		e.count(a.VertexCount)
		e.vertices(a.Vertices, a.VertexCount)
	case AttachmentMesh:
		e.stringRef(a.Path)
		e.w.RGBA(a.Color)
		vertexCount := len(a.UVs) / 2
		e.count(vertexCount)
		for _, uv := range a.UVs {
			e.w.Float(uv)
		}
		e.w.ShortArray(a.Triangles)
		e.vertices(a.Vertices, vertexCount)
		e.count(a.Hull)
		e.sequence(a.Sequence)
	case AttachmentLinkedMesh:
		e.stringRef(a.Path)
		e.w.RGBA(a.Color)
		e.stringRef(a.SkinName)
		e.stringRef(a.Parent)
		e.w.Bool(a.Timelines)
		e.sequence(a.Sequence)
	case AttachmentPath:
		e.w.Bool(a.Closed)
		e.w.Bool(a.ConstantSpeed)
		e.count(a.VertexCount)
		e.vertices(a.Vertices, a.VertexCount)
		for _, l := range a.Lengths {
			e.w.Float(l)
		}
	case AttachmentPoint:
		e.w.Float(a.Rotation)
		e.w.Float(a.X)
		e.w.Float(a.Y)
	case AttachmentClipping:
		e.ref(e.t.Slots, a.End)
		e.count(a.VertexCount)
		e.vertices(a.Vertices, a.VertexCount)
	case AttachmentSequence:
		// No fields; the tag is never produced by the editor.
	}
}

func (e *encoder) sequence(s *Sequence) {
	if s == nil {
		e.w.Bool(false)
		return
	}
	e.w.Bool(true)
	e.count(s.Count)
	e.count(s.Start)
	e.count(s.Digits)
	e.count(s.Setup)
}

// vertices writes a plain list when it holds exactly vertexCount x,y pairs,
// and otherwise reads it as bone-weighted groups:
// boneCount, then boneCount × (bone, x, y, weight).
func (e *encoder) vertices(v []float32, vertexCount int) {
	if len(v) == vertexCount*2 {
		e.w.Bool(false)
		for _, f := range v {
			e.w.Float(f)
		}
		return
	}
	e.w.Bool(true)
	for i := 0; i < len(v); {
		bones := int(v[i])
		i++
		if bones < 0 || i+bones*4 > len(v) {
			e.w.Fail(fmt.Errorf("%w: group at %d needs %d values", ErrMalformedVertices, i-1, bones*4))
			return
		}
		e.count(bones)
		for end := i + bones*4; i < end; i += 4 {
			e.count(int(v[i]))
			e.w.Float(v[i+1])
			e.w.Float(v[i+2])
			e.w.Float(v[i+3])
		}
	}
}
