package spine

import "strings"

// TransformMode controls how a bone inherits its parent's transform.
type TransformMode uint8

const (
	TransformNormal TransformMode = iota
	TransformOnlyTranslation
	TransformNoRotationOrReflection
	TransformNoScale
	TransformNoScaleOrReflection
)

var transformModes = map[string]TransformMode{
	"normal":                 TransformNormal,
	"onlytranslation":        TransformOnlyTranslation,
	"norotationorreflection": TransformNoRotationOrReflection,
	"noscale":                TransformNoScale,
	"noscaleorreflection":    TransformNoScaleOrReflection,
}

// BlendMode is a slot's blend mode.
type BlendMode uint8

const (
	BlendNormal BlendMode = iota
	BlendAdditive
	BlendMultiply
	BlendScreen
)

var blendModes = map[string]BlendMode{
	"normal":   BlendNormal,
	"additive": BlendAdditive,
	"multiply": BlendMultiply,
	"screen":   BlendScreen,
}

// PositionMode is a path constraint's position mode.
type PositionMode uint8

const (
	PositionFixed PositionMode = iota
	PositionPercent
)

var positionModes = map[string]PositionMode{
	"fixed":   PositionFixed,
	"percent": PositionPercent,
}

// SpacingMode is a path constraint's spacing mode.
type SpacingMode uint8

const (
	SpacingLength SpacingMode = iota
	SpacingFixed
	SpacingPercent
	SpacingProportional
)

var spacingModes = map[string]SpacingMode{
	"length":       SpacingLength,
	"fixed":        SpacingFixed,
	"percent":      SpacingPercent,
	"proportional": SpacingProportional,
}

// RotateMode is a path constraint's rotate mode.
type RotateMode uint8

const (
	RotateTangent RotateMode = iota
	RotateChain
	RotateChainScale
)

var rotateModes = map[string]RotateMode{
	"tangent":    RotateTangent,
	"chain":      RotateChain,
	"chainscale": RotateChainScale,
}

// AttachmentType tags the attachment variant.
type AttachmentType uint8

const (
	AttachmentRegion AttachmentType = iota
	AttachmentBoundingBox
	AttachmentMesh
	AttachmentLinkedMesh
	AttachmentPath
	AttachmentPoint
	AttachmentClipping
	AttachmentSequence
)

var attachmentTypes = map[string]AttachmentType{
	"region":      AttachmentRegion,
	"boundingbox": AttachmentBoundingBox,
	"mesh":        AttachmentMesh,
	"linkedmesh":  AttachmentLinkedMesh,
	"path":        AttachmentPath,
	"point":       AttachmentPoint,
	"clipping":    AttachmentClipping,
	"sequence":    AttachmentSequence,
}

// CurveKind is the interpolation between two keyframes.
type CurveKind uint8

const (
	CurveLinear CurveKind = iota
	CurveStepped
	CurveBezier
)

var curveKinds = map[string]CurveKind{
	"linear":  CurveLinear,
	"stepped": CurveStepped,
	"bezier":  CurveBezier,
}

// SlotTimelineKind identifies a slot timeline.
type SlotTimelineKind uint8

const (
	SlotAttachment SlotTimelineKind = iota
	SlotRGBA
	SlotRGB
	SlotRGBA2
	SlotRGB2
	SlotAlpha
)

var slotTimelineKinds = map[string]SlotTimelineKind{
	"attachment": SlotAttachment,
	"rgba":       SlotRGBA,
	"rgb":        SlotRGB,
	"rgba2":      SlotRGBA2,
	"rgb2":       SlotRGB2,
	"alpha":      SlotAlpha,
}

// BoneTimelineKind identifies a bone timeline.
type BoneTimelineKind uint8

const (
	BoneRotate BoneTimelineKind = iota
	BoneTranslate
	BoneTranslateX
	BoneTranslateY
	BoneScale
	BoneScaleX
	BoneScaleY
	BoneShear
	BoneShearX
	BoneShearY
)

var boneTimelineKinds = map[string]BoneTimelineKind{
	"rotate":     BoneRotate,
	"translate":  BoneTranslate,
	"translatex": BoneTranslateX,
	"translatey": BoneTranslateY,
	"scale":      BoneScale,
	"scalex":     BoneScaleX,
	"scaley":     BoneScaleY,
	"shear":      BoneShear,
	"shearx":     BoneShearX,
	"sheary":     BoneShearY,
}

// twoValued reports whether frames carry x and y rather than a single value.
func (k BoneTimelineKind) twoValued() bool {
	return k == BoneTranslate || k == BoneScale || k == BoneShear
}

// defaultValue is 1 for the scale family and 0 otherwise.
func (k BoneTimelineKind) defaultValue() float32 {
	switch k {
	case BoneScale, BoneScaleX, BoneScaleY:
		return 1
	default:
		return 0
	}
}

// PathTimelineKind identifies a path constraint timeline.
type PathTimelineKind uint8

const (
	PathPosition PathTimelineKind = iota
	PathSpacing
	PathMix
)

var pathTimelineKinds = map[string]PathTimelineKind{
	"position": PathPosition,
	"spacing":  PathSpacing,
	"mix":      PathMix,
}

// AttachmentTimelineKind identifies a per-attachment timeline.
type AttachmentTimelineKind uint8

const (
	AttachmentDeform AttachmentTimelineKind = iota
	AttachmentSequenceTimeline
)

var attachmentTimelineKinds = map[string]AttachmentTimelineKind{
	"deform":   AttachmentDeform,
	"sequence": AttachmentSequenceTimeline,
}

// SequenceMode is the playback mode stored in sequence timeline frames.
type SequenceMode uint8

const (
	SequenceHold SequenceMode = iota
	SequenceOnce
	SequenceLoop
	SequencePingpong
	SequenceOnceReverse
	SequenceLoopReverse
	SequencePingpongReverse
)

var sequenceModes = map[string]SequenceMode{
	"hold":            SequenceHold,
	"once":            SequenceOnce,
	"loop":            SequenceLoop,
	"pingpong":        SequencePingpong,
	"oncereverse":     SequenceOnceReverse,
	"loopreverse":     SequenceLoopReverse,
	"pingpongreverse": SequencePingpongReverse,
}

// lookupEnum resolves a case-insensitive tag, falling back when it is empty
// or unrecognized.
func lookupEnum[T any](table map[string]T, tag string, fallback T) T {
	if v, ok := table[strings.ToLower(strings.TrimSpace(tag))]; ok {
		return v
	}
	return fallback
}

// lookupKind resolves a timeline tag; unknown tags report false so the caller
// can skip the timeline.
func lookupKind[T any](table map[string]T, tag string) (T, bool) {
	v, ok := table[strings.ToLower(tag)]
	return v, ok
}
