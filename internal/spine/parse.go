package spine

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/jsonc"
)

var (
	// ErrInvalidJSON is returned when the input is not a JSON object.
	ErrInvalidJSON = errors.New("invalid skeleton json")
	// ErrMissingField is returned when a field with no default is absent.
	ErrMissingField = errors.New("missing required field")
)

// ParseDocument parses skeleton JSON. Comments and trailing commas are
// accepted.
func ParseDocument(data []byte) (*Document, error) {
	clean := jsonc.ToJSON(data)
	if !gjson.ValidBytes(clean) {
		return nil, ErrInvalidJSON
	}
	root := gjson.ParseBytes(clean)
	if !root.IsObject() {
		return nil, fmt.Errorf("%w: top level is not an object", ErrInvalidJSON)
	}

	p := &parser{doc: &Document{}}
	p.header(root.Get("skeleton"))
	steps := []struct {
		key string
		fn  func(gjson.Result) error
	}{
		{"bones", p.bones},
		{"slots", p.slots},
		{"ik", p.ikConstraints},
		{"transform", p.transformConstraints},
		{"path", p.pathConstraints},
		{"skins", p.skins},
		{"animations", p.animations},
	}
	for _, step := range steps {
		if err := step.fn(root.Get(step.key)); err != nil {
			return nil, fmt.Errorf("parse %s: %w", step.key, err)
		}
	}
	return p.doc, nil
}

type parser struct {
	doc *Document
}

func (p *parser) skip(format string, args ...any) {
	p.doc.Skipped = append(p.doc.Skipped, fmt.Sprintf(format, args...))
}

func (p *parser) header(r gjson.Result) {
	p.doc.Skeleton = Header{
		Hash:   r.Get("hash").String(),
		Spine:  r.Get("spine").String(),
		X:      num(r, "x", 0),
		Y:      num(r, "y", 0),
		Width:  num(r, "width", 0),
		Height: num(r, "height", 0),
	}
}

func (p *parser) bones(list gjson.Result) error {
	for i, r := range list.Array() {
		name, err := required(r, "name")
		if err != nil {
			return fmt.Errorf("bone %d: %w", i, err)
		}
		p.doc.Bones = append(p.doc.Bones, Bone{
			Name:      name,
			Parent:    r.Get("parent").String(),
			Rotation:  num(r, "rotation", 0),
			X:         num(r, "x", 0),
			Y:         num(r, "y", 0),
			ScaleX:    num(r, "scaleX", 1),
			ScaleY:    num(r, "scaleY", 1),
			ShearX:    num(r, "shearX", 0),
			ShearY:    num(r, "shearY", 0),
			Length:    num(r, "length", 0),
			Transform: lookupEnum(transformModes, r.Get("transform").String(), TransformNormal),
			Skin:      r.Get("skin").Bool(),
		})
	}
	return nil
}

func (p *parser) slots(list gjson.Result) error {
	for i, r := range list.Array() {
		name, err := required(r, "name")
		if err != nil {
			return fmt.Errorf("slot %d: %w", i, err)
		}
		bone, err := required(r, "bone")
		if err != nil {
			return fmt.Errorf("slot %q: %w", name, err)
		}
		p.doc.Slots = append(p.doc.Slots, Slot{
			Name:       name,
			Bone:       bone,
			Color:      r.Get("color").String(),
			Dark:       r.Get("dark").String(),
			Attachment: optString(r, "attachment"),
			Blend:      lookupEnum(blendModes, r.Get("blend").String(), BlendNormal),
		})
	}
	return nil
}

func constraintBase(r gjson.Result) (ConstraintBase, error) {
	name, err := required(r, "name")
	if err != nil {
		return ConstraintBase{}, err
	}
	base := ConstraintBase{
		Name:   name,
		Order:  int(r.Get("order").Int()),
		Skin:   r.Get("skin").Bool(),
		Target: r.Get("target").String(),
	}
	for _, b := range r.Get("bones").Array() {
		base.Bones = append(base.Bones, b.String())
	}
	return base, nil
}

func (p *parser) ikConstraints(list gjson.Result) error {
	for i, r := range list.Array() {
		base, err := constraintBase(r)
		if err != nil {
			return fmt.Errorf("ik %d: %w", i, err)
		}
		p.doc.IK = append(p.doc.IK, IKConstraint{
			ConstraintBase: base,
			Mix:            num(r, "mix", 1),
			Softness:       num(r, "softness", 0),
			BendPositive:   flag(r, "bendPositive", true),
			Compress:       r.Get("compress").Bool(),
			Stretch:        r.Get("stretch").Bool(),
			Uniform:        r.Get("uniform").Bool(),
		})
	}
	return nil
}

func (p *parser) transformConstraints(list gjson.Result) error {
	for i, r := range list.Array() {
		base, err := constraintBase(r)
		if err != nil {
			return fmt.Errorf("transform %d: %w", i, err)
		}
		c := TransformConstraint{
			ConstraintBase: base,
			Local:          r.Get("local").Bool(),
			Relative:       r.Get("relative").Bool(),
			Rotation:       num(r, "rotation", 0),
			X:              num(r, "x", 0),
			Y:              num(r, "y", 0),
			ScaleX:         num(r, "scaleX", 0),
			ScaleY:         num(r, "scaleY", 0),
			ShearY:         num(r, "shearY", 0),
			MixRotate:      num(r, "mixRotate", 1),
			MixX:           num(r, "mixX", 1),
			MixScaleX:      num(r, "mixScaleX", 1),
			MixShearY:      num(r, "mixShearY", 1),
		}
		c.MixY = num(r, "mixY", c.MixX)
		c.MixScaleY = num(r, "mixScaleY", c.MixScaleX)
		p.doc.Transform = append(p.doc.Transform, c)
	}
	return nil
}

func (p *parser) pathConstraints(list gjson.Result) error {
	for i, r := range list.Array() {
		base, err := constraintBase(r)
		if err != nil {
			return fmt.Errorf("path %d: %w", i, err)
		}
		c := PathConstraint{
			ConstraintBase: base,
			PositionMode:   lookupEnum(positionModes, r.Get("positionMode").String(), PositionPercent),
			SpacingMode:    lookupEnum(spacingModes, r.Get("spacingMode").String(), SpacingLength),
			RotateMode:     lookupEnum(rotateModes, r.Get("rotateMode").String(), RotateTangent),
			Rotation:       num(r, "rotation", 0),
			Position:       num(r, "position", 0),
			Spacing:        num(r, "spacing", 0),
			MixRotate:      num(r, "mixRotate", 1),
			MixX:           num(r, "mixX", 1),
		}
		c.MixY = num(r, "mixY", c.MixX)
		p.doc.Path = append(p.doc.Path, c)
	}
	return nil
}

func (p *parser) skins(list gjson.Result) error {
	for i, r := range list.Array() {
		name, err := required(r, "name")
		if err != nil {
			return fmt.Errorf("skin %d: %w", i, err)
		}
		skin := Skin{Name: name}
		var parseErr error
		r.Get("attachments").ForEach(func(slotKey, slotValue gjson.Result) bool {
			slot := SkinSlot{Slot: slotKey.String()}
			slotValue.ForEach(func(key, value gjson.Result) bool {
				att, err := parseAttachment(key.String(), value)
				if err != nil {
					parseErr = fmt.Errorf("skin %q slot %q attachment %q: %w", name, slot.Slot, key.String(), err)
					return false
				}
				slot.Attachments = append(slot.Attachments, att)
				return true
			})
			skin.Slots = append(skin.Slots, slot)
			return parseErr == nil
		})
		if parseErr != nil {
			return parseErr
		}
		p.doc.Skins = append(p.doc.Skins, skin)
	}
	return nil
}

func parseAttachment(key string, r gjson.Result) (Attachment, error) {
	a := Attachment{
		Key:           key,
		Name:          optString(r, "name"),
		Type:          lookupEnum(attachmentTypes, r.Get("type").String(), AttachmentRegion),
		Path:          optString(r, "path"),
		Color:         r.Get("color").String(),
		Rotation:      num(r, "rotation", 0),
		X:             num(r, "x", 0),
		Y:             num(r, "y", 0),
		ScaleX:        num(r, "scaleX", 1),
		ScaleY:        num(r, "scaleY", 1),
		Width:         num(r, "width", 32),
		Height:        num(r, "height", 32),
		VertexCount:   int(r.Get("vertexCount").Int()),
		Vertices:      floats(r.Get("vertices")),
		UVs:           floats(r.Get("uvs")),
		Hull:          int(r.Get("hull").Int()),
		Lengths:       floats(r.Get("lengths")),
		Closed:        r.Get("closed").Bool(),
		ConstantSpeed: flag(r, "constantSpeed", true),
		SkinName:      optString(r, "skin"),
		Parent:        optString(r, "parent"),
		Timelines:     flag(r, "timelines", true),
		End:           r.Get("end").String(),
	}
	for _, t := range r.Get("triangles").Array() {
		a.Triangles = append(a.Triangles, int(t.Int()))
	}
	if a.Type == AttachmentMesh {
		a.VertexCount = len(a.UVs) / 2
	}
	if seq := r.Get("sequence"); seq.Exists() && seq.Type != gjson.Null {
		if !seq.Get("count").Exists() {
			return Attachment{}, fmt.Errorf("sequence count: %w", ErrMissingField)
		}
		a.Sequence = &Sequence{
			Count:  int(seq.Get("count").Int()),
			Start:  intOr(seq, "start", 1),
			Digits: int(seq.Get("digits").Int()),
			Setup:  int(seq.Get("setup").Int()),
		}
	}
	return a, nil
}

func num(r gjson.Result, key string, def float32) float32 {
	v := r.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return def
	}
	return float32(v.Float())
}

func intOr(r gjson.Result, key string, def int) int {
	v := r.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return def
	}
	return int(v.Int())
}

func flag(r gjson.Result, key string, def bool) bool {
	v := r.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return def
	}
	return v.Bool()
}

func optString(r gjson.Result, key string) *string {
	v := r.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	s := v.String()
	return &s
}

func required(r gjson.Result, key string) (string, error) {
	v := r.Get(key)
	if !v.Exists() || v.Type == gjson.Null {
		return "", fmt.Errorf("%s: %w", key, ErrMissingField)
	}
	return v.String(), nil
}

func floats(r gjson.Result) []float32 {
	arr := r.Array()
	if len(arr) == 0 {
		return nil
	}
	out := make([]float32, len(arr))
	for i, v := range arr {
		out[i] = float32(v.Float())
	}
	return out
}

// curve reads a frame's "curve": an array is a bezier, a string names the
// kind, anything else is linear.
func curve(r gjson.Result) Curve {
	v := r.Get("curve")
	switch {
	case v.IsArray():
		return Curve{Kind: CurveBezier, Points: floats(v)}
	case v.Type == gjson.String:
		kind := lookupEnum(curveKinds, v.String(), CurveLinear)
		if kind == CurveBezier {
			// A bezier without control points cannot be written.
			kind = CurveLinear
		}
		return Curve{Kind: kind}
	default:
		return Curve{Kind: CurveLinear}
	}
}
