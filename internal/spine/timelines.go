package spine

func (e *encoder) animations() {
	e.count(len(e.doc.Animations))
	for _, a := range e.doc.Animations {
		e.w.Str(a.Name)
		e.count(a.TimelineHint())
		e.slotTimelines(a.Slots)
		e.boneTimelines(a.Bones)
		e.ikTimelines(a.IK)
		e.transformTimelines(a.Transform)
		e.pathTimelines(a.Path)
		e.attachmentTimelines(a.Attachments)
		e.drawOrder(a.DrawOrder)
		e.count(0) // events
	}
}

func (e *encoder) curve(c Curve) {
	e.w.Byte(uint8(c.Kind))
	if c.Kind == CurveBezier {
		for _, p := range c.Points {
			e.w.Float(p)
		}
	}
}

func bezierCount[F any](frames []F, curveOf func(F) Curve) int {
	n := 0
	for _, f := range frames {
		n += curveOf(f).segments()
	}
	return n
}

// keyframes writes frames in the order t0 v0 | t1 v1 c0 | t2 v2 c1 ..., so
// each curve follows the frame that ends its segment.
func keyframes[F any](e *encoder, frames []F, write func(F), curveOf func(F) Curve) {
	for i, f := range frames {
		write(f)
		if i > 0 {
			e.curve(curveOf(frames[i-1]))
		}
	}
}

func (e *encoder) slotTimelines(groups []SlotTimelines) {
	e.count(len(groups))
	for _, g := range groups {
		e.ref(e.t.Slots, g.Slot)
		e.count(len(g.Timelines))
		for _, tl := range g.Timelines {
			e.w.Byte(uint8(tl.Kind))
			e.count(len(tl.Frames))
			if len(tl.Frames) == 0 {
				continue
			}
			if tl.Kind == SlotAttachment {
				for _, f := range tl.Frames {
					e.w.Float(f.Time)
					e.stringRef(f.Name)
				}
				continue
			}
			curveOf := func(f SlotFrame) Curve { return f.Curve }
			e.count(bezierCount(tl.Frames, curveOf))
			kind := tl.Kind
			keyframes(e, tl.Frames, func(f SlotFrame) {
				e.w.Float(f.Time)
				switch kind {
				case SlotRGBA:
					e.w.RGBA(f.Color)
				case SlotRGB:
					e.w.RGB(f.Color)
				case SlotRGBA2:
					e.w.RGBA(f.Light)
					e.w.RGB(f.Dark)
				case SlotRGB2:
					e.w.RGB(f.Light)
					e.w.RGB(f.Dark)
				case SlotAlpha:
					e.w.Float(f.Value)
				}
			}, curveOf)
		}
	}
}

func (e *encoder) boneTimelines(groups []BoneTimelines) {
	e.count(len(groups))
	for _, g := range groups {
		e.ref(e.t.Bones, g.Bone)
		e.count(len(g.Timelines))
		for _, tl := range g.Timelines {
			curveOf := func(f BoneFrame) Curve { return f.Curve }
			e.w.Byte(uint8(tl.Kind))
			e.count(len(tl.Frames))
			e.count(bezierCount(tl.Frames, curveOf))
			two := tl.Kind.twoValued()
			keyframes(e, tl.Frames, func(f BoneFrame) {
				e.w.Float(f.Time)
				if two {
					e.w.Float(f.X)
					e.w.Float(f.Y)
				} else {
					e.w.Float(f.Value)
				}
			}, curveOf)
		}
	}
}

// IK and transform frames are written as frame 0 values followed by, for
// each later frame, that frame's values and the previous frame's curve. The
// IK flags of each frame are written before moving to the next.
func (e *encoder) ikTimelines(timelines []IKTimeline) {
	e.count(len(timelines))
	for _, tl := range timelines {
		e.ref(e.t.IK, tl.Constraint)
		e.count(len(tl.Frames))
		e.count(bezierCount(tl.Frames, func(f IKFrame) Curve { return f.Curve }))
		if len(tl.Frames) == 0 {
			continue
		}
		values := func(f IKFrame) {
			e.w.Float(f.Time)
			e.w.Float(f.Mix)
			e.w.Float(f.Softness)
		}
		values(tl.Frames[0])
		for i, f := range tl.Frames {
			e.w.SByte(bend(f.BendPositive))
			e.w.Bool(f.Compress)
			e.w.Bool(f.Stretch)
			if i == len(tl.Frames)-1 {
				break
			}
			values(tl.Frames[i+1])
			e.curve(f.Curve)
		}
	}
}

func (e *encoder) transformTimelines(timelines []TransformTimeline) {
	e.count(len(timelines))
	for _, tl := range timelines {
		curveOf := func(f TransformFrame) Curve { return f.Curve }
		e.ref(e.t.Transform, tl.Constraint)
		e.count(len(tl.Frames))
		e.count(bezierCount(tl.Frames, curveOf))
		keyframes(e, tl.Frames, func(f TransformFrame) {
			for _, v := range []float32{f.Time, f.MixRotate, f.MixX, f.MixY, f.MixScaleX, f.MixScaleY, f.MixShearY} {
				e.w.Float(v)
			}
		}, curveOf)
	}
}

func (e *encoder) pathTimelines(groups []PathTimelines) {
	e.count(len(groups))
	for _, g := range groups {
		e.ref(e.t.Path, g.Constraint)
		e.count(len(g.Timelines))
		for _, tl := range g.Timelines {
			curveOf := func(f PathFrame) Curve { return f.Curve }
			e.w.Byte(uint8(tl.Kind))
			e.count(len(tl.Frames))
			e.count(bezierCount(tl.Frames, curveOf))
			kind := tl.Kind
			keyframes(e, tl.Frames, func(f PathFrame) {
				e.w.Float(f.Time)
				if kind == PathMix {
					e.w.Float(f.MixRotate)
					e.w.Float(f.MixX)
					e.w.Float(f.MixY)
				} else {
					e.w.Float(f.Value)
				}
			}, curveOf)
		}
	}
}

func (e *encoder) attachmentTimelines(skins []SkinAttachmentTimelines) {
	e.count(len(skins))
	for _, skin := range skins {
		e.ref(e.t.Skins, skin.Skin)
		e.count(len(skin.Slots))
		for _, slot := range skin.Slots {
			e.ref(e.t.Slots, slot.Slot)
			e.count(len(slot.Timelines))
			for _, tl := range slot.Timelines {
				name := tl.Attachment
				e.stringRef(&name)
				e.w.Byte(uint8(tl.Kind))
				switch tl.Kind {
				case AttachmentDeform:
					e.deform(tl.Deform)
				case AttachmentSequenceTimeline:
					e.sequenceFrames(tl.Sequence)
				}
			}
		}
	}
}

func (e *encoder) deform(frames []DeformFrame) {
	e.count(len(frames))
	e.count(bezierCount(frames, func(f DeformFrame) Curve { return f.Curve }))
	if len(frames) == 0 {
		return
	}
	e.w.Float(frames[0].Time)
	for i, f := range frames {
		e.count(len(f.Vertices))
		if len(f.Vertices) != 0 {
			e.count(f.Offset)
			for _, v := range f.Vertices {
				e.w.Float(v)
			}
		}
		if i == len(frames)-1 {
			break
		}
		e.w.Float(frames[i+1].Time)
		e.curve(f.Curve)
	}
}

func (e *encoder) sequenceFrames(frames []SequenceFrame) {
	e.count(len(frames))
	for _, f := range frames {
		e.w.Float(f.Time)
		e.w.Int(int32(f.Index<<4 | int(f.Mode)))
		e.w.Float(f.Delay)
	}
}

// drawOrder offsets may be negative; they are written as the 32-bit two's
// complement value.
func (e *encoder) drawOrder(frames []DrawOrderFrame) {
	e.count(len(frames))
	for _, f := range frames {
		e.w.Float(f.Time)
		e.count(len(f.Offsets))
		for _, o := range f.Offsets {
			e.ref(e.t.Slots, o.Slot)
			e.w.Varint(uint64(uint32(int32(o.Offset))))
		}
	}
}
