package spine

// Document is a parsed skeleton with every default resolved. Slices keep the
// declaration order of the source JSON.
type Document struct {
	Skeleton   Header
	Bones      []Bone
	Slots      []Slot
	IK         []IKConstraint
	Transform  []TransformConstraint
	Path       []PathConstraint
	Skins      []Skin
	Animations []Animation

	// Skipped lists timelines dropped during parsing, one human-readable
	// entry each, so callers can log them.
	Skipped []string
}

// Header is the "skeleton" object.
type Header struct {
	Hash   string
	Spine  string
	X      float32
	Y      float32
	Width  float32
	Height float32
}

type Bone struct {
	Name      string
	Parent    string
	Rotation  float32
	X         float32
	Y         float32
	ScaleX    float32
	ScaleY    float32
	ShearX    float32
	ShearY    float32
	Length    float32
	Transform TransformMode
	Skin      bool
}

type Slot struct {
	Name       string
	Bone       string
	Color      string
	Dark       string
	Attachment *string
	Blend      BlendMode
}

// ConstraintBase holds the fields shared by the three constraint families.
type ConstraintBase struct {
	Name   string
	Order  int
	Skin   bool
	Bones  []string
	Target string
}

type IKConstraint struct {
	ConstraintBase
	Mix          float32
	Softness     float32
	BendPositive bool
	Compress     bool
	Stretch      bool
	Uniform      bool
}

type TransformConstraint struct {
	ConstraintBase
	Local     bool
	Relative  bool
	Rotation  float32
	X         float32
	Y         float32
	ScaleX    float32
	ScaleY    float32
	ShearY    float32
	MixRotate float32
	MixX      float32
	MixY      float32
	MixScaleX float32
	MixScaleY float32
	MixShearY float32
}

// PathConstraint targets a slot rather than a bone.
type PathConstraint struct {
	ConstraintBase
	PositionMode PositionMode
	SpacingMode  SpacingMode
	RotateMode   RotateMode
	Rotation     float32
	Position     float32
	Spacing      float32
	MixRotate    float32
	MixX         float32
	MixY         float32
}

type Skin struct {
	Name  string
	Slots []SkinSlot
}

// SkinSlot is the ordered set of attachments a skin defines for one slot.
type SkinSlot struct {
	Slot        string
	Attachments []Attachment
}

// Attachment is a tagged variant; only the fields of Type are meaningful.
type Attachment struct {
	Key  string
	Name *string
	Type AttachmentType
	Path *string

	Color    string
	Rotation float32
	X        float32
	Y        float32
	ScaleX   float32
	ScaleY   float32
	Width    float32
	Height   float32

	VertexCount int
	Vertices    []float32
	UVs         []float32
	Triangles   []int
	Hull        int
	Lengths     []float32

	Closed        bool
	ConstantSpeed bool

	// Linked mesh references.
	SkinName  *string
	Parent    *string
	Timelines bool

	// End is the clipping end slot.
	End string

	Sequence *Sequence
}

type Sequence struct {
	Count  int
	Start  int
	Digits int
	Setup  int
}

// Curve is the interpolation stored on the earlier frame of a pair.
type Curve struct {
	Kind   CurveKind
	Points []float32
}

// segments is the number of bezier segments the curve contributes.
func (c Curve) segments() int {
	if c.Kind != CurveBezier {
		return 0
	}
	return len(c.Points) / 4
}

type Animation struct {
	Name        string
	Slots       []SlotTimelines
	Bones       []BoneTimelines
	IK          []IKTimeline
	Transform   []TransformTimeline
	Path        []PathTimelines
	Attachments []SkinAttachmentTimelines
	DrawOrder   []DrawOrderFrame

	// HasDrawOrder and Events record whether the groups were declared,
	// which only affects TimelineHint.
	HasDrawOrder bool
	Events       bool
}

type SlotTimelines struct {
	Slot      string
	Timelines []SlotTimeline
}

type SlotTimeline struct {
	Kind   SlotTimelineKind
	Frames []SlotFrame
}

// SlotFrame carries the union of slot timeline values. Colors are hex and
// fall back to white when empty.
type SlotFrame struct {
	Time  float32
	Name  *string
	Color string
	Light string
	Dark  string
	Value float32
	Curve Curve
}

type BoneTimelines struct {
	Bone      string
	Timelines []BoneTimeline
}

type BoneTimeline struct {
	Kind   BoneTimelineKind
	Frames []BoneFrame
}

// BoneFrame stores X and Y for two-valued kinds and Value otherwise.
type BoneFrame struct {
	Time  float32
	Value float32
	X     float32
	Y     float32
	Curve Curve
}

type IKTimeline struct {
	Constraint string
	Frames     []IKFrame
}

type IKFrame struct {
	Time         float32
	Mix          float32
	Softness     float32
	BendPositive bool
	Compress     bool
	Stretch      bool
	Curve        Curve
}

type TransformTimeline struct {
	Constraint string
	Frames     []TransformFrame
}

type TransformFrame struct {
	Time      float32
	MixRotate float32
	MixX      float32
	MixY      float32
	MixScaleX float32
	MixScaleY float32
	MixShearY float32
	Curve     Curve
}

type PathTimelines struct {
	Constraint string
	Timelines  []PathTimeline
}

type PathTimeline struct {
	Kind   PathTimelineKind
	Frames []PathFrame
}

type PathFrame struct {
	Time      float32
	Value     float32
	MixRotate float32
	MixX      float32
	MixY      float32
	Curve     Curve
}

type SkinAttachmentTimelines struct {
	Skin  string
	Slots []SlotAttachmentTimelines
}

type SlotAttachmentTimelines struct {
	Slot      string
	Timelines []AttachmentTimeline
}

// AttachmentTimeline is one (attachment, kind) pair. Deform or Sequence is
// populated according to Kind.
type AttachmentTimeline struct {
	Attachment string
	Kind       AttachmentTimelineKind
	Deform     []DeformFrame
	Sequence   []SequenceFrame
}

type DeformFrame struct {
	Time     float32
	Offset   int
	Vertices []float32
	Curve    Curve
}

type SequenceFrame struct {
	Time  float32
	Index int
	Mode  SequenceMode
	Delay float32
}

type DrawOrderFrame struct {
	Time    float32
	Offsets []DrawOrderOffset
}

type DrawOrderOffset struct {
	Slot   string
	Offset int
}

// TimelineHint is the capacity hint written ahead of an animation body. It
// counts one per draw-order or events group, one per IK or transform
// constraint, and one per inner key of every other group.
func (a Animation) TimelineHint() int {
	n := 0
	if a.HasDrawOrder {
		n++
	}
	if a.Events {
		n++
	}
	n += len(a.IK) + len(a.Transform)
	for _, s := range a.Slots {
		n += len(s.Timelines)
	}
	for _, b := range a.Bones {
		n += len(b.Timelines)
	}
	for _, p := range a.Path {
		n += len(p.Timelines)
	}
	for _, s := range a.Attachments {
		n += len(s.Slots)
	}
	return n
}
