package spine

import (
	"fmt"

	"github.com/tidwall/gjson"
)

func (p *parser) animations(obj gjson.Result) error {
	var err error
	obj.ForEach(func(key, value gjson.Result) bool {
		var anim Animation
		anim, err = p.animation(key.String(), value)
		if err != nil {
			err = fmt.Errorf("animation %q: %w", key.String(), err)
			return false
		}
		p.doc.Animations = append(p.doc.Animations, anim)
		return true
	})
	return err
}

func (p *parser) animation(name string, r gjson.Result) (Animation, error) {
	anim := Animation{Name: name}
	var err error
	r.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "slots":
			anim.Slots = p.slotTimelines(name, value)
		case "bones":
			anim.Bones = p.boneTimelines(name, value)
		case "ik":
			anim.IK = p.ikTimelines(name, value)
		case "transform":
			anim.Transform = p.transformTimelines(name, value)
		case "path":
			anim.Path = p.pathTimelines(name, value)
		case "attachments":
			anim.Attachments = p.attachmentTimelines(name, value)
		case "deform":
			// Spine 4.0 name for the attachments group.
			anim.Attachments = append(anim.Attachments, p.attachmentTimelines(name, value)...)
		case "drawOrder":
			anim.HasDrawOrder = true
			anim.DrawOrder, err = drawOrderFrames(value)
		case "events":
			anim.Events = true
		default:
			p.skip("animation %q: unknown group %q", name, key.String())
		}
		return err == nil
	})
	return anim, err
}

func (p *parser) slotTimelines(anim string, obj gjson.Result) []SlotTimelines {
	var out []SlotTimelines
	obj.ForEach(func(slotKey, slotValue gjson.Result) bool {
		group := SlotTimelines{Slot: slotKey.String()}
		slotValue.ForEach(func(kindKey, frames gjson.Result) bool {
			kind, ok := lookupKind(slotTimelineKinds, kindKey.String())
			if !ok {
				p.skip("animation %q slot %q: unknown timeline %q", anim, group.Slot, kindKey.String())
				return true
			}
			tl := SlotTimeline{Kind: kind}
			for _, f := range frames.Array() {
				tl.Frames = append(tl.Frames, SlotFrame{
					Time:  num(f, "time", 0),
					Name:  optString(f, "name"),
					Color: f.Get("color").String(),
					Light: f.Get("light").String(),
					Dark:  f.Get("dark").String(),
					Value: num(f, "value", 0),
					Curve: curve(f),
				})
			}
			group.Timelines = append(group.Timelines, tl)
			return true
		})
		out = append(out, group)
		return true
	})
	return out
}

func (p *parser) boneTimelines(anim string, obj gjson.Result) []BoneTimelines {
	var out []BoneTimelines
	obj.ForEach(func(boneKey, boneValue gjson.Result) bool {
		group := BoneTimelines{Bone: boneKey.String()}
		boneValue.ForEach(func(kindKey, frames gjson.Result) bool {
			kind, ok := lookupKind(boneTimelineKinds, kindKey.String())
			if !ok {
				p.skip("animation %q bone %q: unknown timeline %q", anim, group.Bone, kindKey.String())
				return true
			}
			def := kind.defaultValue()
			tl := BoneTimeline{Kind: kind}
			for _, f := range frames.Array() {
				tl.Frames = append(tl.Frames, BoneFrame{
					Time:  num(f, "time", 0),
					Value: num(f, "value", def),
					X:     num(f, "x", def),
					Y:     num(f, "y", def),
					Curve: curve(f),
				})
			}
			group.Timelines = append(group.Timelines, tl)
			return true
		})
		out = append(out, group)
		return true
	})
	return out
}

func (p *parser) ikTimelines(anim string, obj gjson.Result) []IKTimeline {
	var out []IKTimeline
	obj.ForEach(func(key, frames gjson.Result) bool {
		tl := IKTimeline{Constraint: key.String()}
		for _, f := range frames.Array() {
			tl.Frames = append(tl.Frames, IKFrame{
				Time:         num(f, "time", 0),
				Mix:          num(f, "mix", 1),
				Softness:     num(f, "softness", 0),
				BendPositive: flag(f, "bendPositive", true),
				Compress:     f.Get("compress").Bool(),
				Stretch:      f.Get("stretch").Bool(),
				Curve:        curve(f),
			})
		}
		if len(tl.Frames) == 0 {
			p.skip("animation %q ik %q: no keyframes", anim, tl.Constraint)
			return true
		}
		out = append(out, tl)
		return true
	})
	return out
}

func (p *parser) transformTimelines(anim string, obj gjson.Result) []TransformTimeline {
	var out []TransformTimeline
	obj.ForEach(func(key, frames gjson.Result) bool {
		tl := TransformTimeline{Constraint: key.String()}
		for _, f := range frames.Array() {
			frame := TransformFrame{
				Time:      num(f, "time", 0),
				MixRotate: num(f, "mixRotate", 1),
				MixX:      num(f, "mixX", 1),
				MixScaleX: num(f, "mixScaleX", 1),
				MixShearY: num(f, "mixShearY", 1),
				Curve:     curve(f),
			}
			frame.MixY = num(f, "mixY", frame.MixX)
			frame.MixScaleY = num(f, "mixScaleY", frame.MixScaleX)
			tl.Frames = append(tl.Frames, frame)
		}
		if len(tl.Frames) == 0 {
			p.skip("animation %q transform %q: no keyframes", anim, tl.Constraint)
			return true
		}
		out = append(out, tl)
		return true
	})
	return out
}

func (p *parser) pathTimelines(anim string, obj gjson.Result) []PathTimelines {
	var out []PathTimelines
	obj.ForEach(func(key, value gjson.Result) bool {
		group := PathTimelines{Constraint: key.String()}
		value.ForEach(func(kindKey, frames gjson.Result) bool {
			kind, ok := lookupKind(pathTimelineKinds, kindKey.String())
			if !ok {
				p.skip("animation %q path %q: unknown timeline %q", anim, group.Constraint, kindKey.String())
				return true
			}
			tl := PathTimeline{Kind: kind}
			for _, f := range frames.Array() {
				frame := PathFrame{
					Time:      num(f, "time", 0),
					Value:     num(f, "value", 0),
					MixRotate: num(f, "mixRotate", 1),
					MixX:      num(f, "mixX", 1),
					Curve:     curve(f),
				}
				frame.MixY = num(f, "mixY", frame.MixX)
				tl.Frames = append(tl.Frames, frame)
			}
			group.Timelines = append(group.Timelines, tl)
			return true
		})
		out = append(out, group)
		return true
	})
	return out
}

func (p *parser) attachmentTimelines(anim string, obj gjson.Result) []SkinAttachmentTimelines {
	var out []SkinAttachmentTimelines
	obj.ForEach(func(skinKey, skinValue gjson.Result) bool {
		skin := SkinAttachmentTimelines{Skin: skinKey.String()}
		skinValue.ForEach(func(slotKey, slotValue gjson.Result) bool {
			slot := SlotAttachmentTimelines{Slot: slotKey.String()}
			slotValue.ForEach(func(attKey, attValue gjson.Result) bool {
				attValue.ForEach(func(kindKey, frames gjson.Result) bool {
					where := fmt.Sprintf("animation %q slot %q attachment %q", anim, slot.Slot, attKey.String())
					kind, ok := lookupKind(attachmentTimelineKinds, kindKey.String())
					if !ok {
						p.skip("%s: unknown timeline %q", where, kindKey.String())
						return true
					}
					tl := AttachmentTimeline{Attachment: attKey.String(), Kind: kind}
					for _, f := range frames.Array() {
						switch kind {
						case AttachmentDeform:
							tl.Deform = append(tl.Deform, DeformFrame{
								Time:     num(f, "time", 0),
								Offset:   int(f.Get("offset").Int()),
								Vertices: floats(f.Get("vertices")),
								Curve:    curve(f),
							})
						case AttachmentSequenceTimeline:
							tl.Sequence = append(tl.Sequence, SequenceFrame{
								Time:  num(f, "time", 0),
								Index: int(f.Get("index").Int()),
								Mode:  lookupEnum(sequenceModes, f.Get("mode").String(), SequenceHold),
								Delay: num(f, "delay", 0),
							})
						}
					}
					if kind == AttachmentDeform && len(tl.Deform) == 0 {
						p.skip("%s: deform has no keyframes", where)
						return true
					}
					slot.Timelines = append(slot.Timelines, tl)
					return true
				})
				return true
			})
			skin.Slots = append(skin.Slots, slot)
			return true
		})
		out = append(out, skin)
		return true
	})
	return out
}

func drawOrderFrames(list gjson.Result) ([]DrawOrderFrame, error) {
	var out []DrawOrderFrame
	for i, f := range list.Array() {
		frame := DrawOrderFrame{Time: num(f, "time", 0)}
		for _, o := range f.Get("offsets").Array() {
			off := o.Get("offset")
			if !off.Exists() || off.Type == gjson.Null {
				return nil, fmt.Errorf("drawOrder frame %d offset: %w", i, ErrMissingField)
			}
			frame.Offsets = append(frame.Offsets, DrawOrderOffset{
				Slot:   o.Get("slot").String(),
				Offset: int(off.Int()),
			})
		}
		out = append(out, frame)
	}
	return out, nil
}
