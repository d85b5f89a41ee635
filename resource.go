package bones

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// SkeletonResource is a named collection of armature definitions, usually
// produced by ParseSkeleton. Resources are immutable once built; the runtime
// only reads them.
type SkeletonResource struct {
	Name      string
	FrameRate int
	Armatures []*ArmatureResource
}

// Armature returns the armature definition with the given name, or nil.
func (s *SkeletonResource) Armature(name string) *ArmatureResource {
	for _, a := range s.Armatures {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// ArmatureResource describes one skeleton: its bones (parent-first), skins
// and animation clips.
type ArmatureResource struct {
	Name       string
	Bones      []*BoneResource
	Skins      []*SkinResource
	Animations []*AnimationResource
}

// Bone returns the bone definition with the given name, or nil.
func (a *ArmatureResource) Bone(name string) *BoneResource {
	for _, b := range a.Bones {
		if b.Name == name {
			return b
		}
	}
	return nil
}

// Animation returns the clip with the given name, or nil.
func (a *ArmatureResource) Animation(name string) *AnimationResource {
	for _, anim := range a.Animations {
		if anim.Name == name {
			return anim
		}
	}
	return nil
}

// Skin returns the skin with the given name. An empty name selects the
// default skin (named "" or, failing that, the first one).
func (a *ArmatureResource) Skin(name string) *SkinResource {
	for _, s := range a.Skins {
		if s.Name == name {
			return s
		}
	}
	if name == "" && len(a.Skins) > 0 {
		return a.Skins[0]
	}
	return nil
}

// SortBones reorders Bones so that every parent precedes its children.
// Returns an error for unknown parents or cycles.
func (a *ArmatureResource) SortBones() error {
	byName := make(map[string]*BoneResource, len(a.Bones))
	for _, b := range a.Bones {
		if _, dup := byName[b.Name]; dup {
			return fmt.Errorf("bones: armature %q has duplicate bone %q", a.Name, b.Name)
		}
		byName[b.Name] = b
	}
	depth := make(map[string]int, len(a.Bones))
	for _, b := range a.Bones {
		d := 0
		for p := b; p.Parent != ""; d++ {
			parent, ok := byName[p.Parent]
			if !ok {
				return fmt.Errorf("bones: bone %q has unknown parent %q", p.Name, p.Parent)
			}
			if d > len(a.Bones) {
				return fmt.Errorf("bones: bone %q is part of a parent cycle", b.Name)
			}
			p = parent
		}
		depth[b.Name] = d
	}
	sorted := make([]*BoneResource, len(a.Bones))
	copy(sorted, a.Bones)
	slices.SortStableFunc(sorted, func(x, y *BoneResource) int {
		return cmp.Compare(depth[x.Name], depth[y.Name])
	})
	a.Bones = sorted
	return nil
}

// Validate checks cross references: slot parents name existing bones and
// timeline names name existing bones.
func (a *ArmatureResource) Validate() error {
	if err := a.SortBones(); err != nil {
		return err
	}
	for _, skin := range a.Skins {
		seen := make(map[string]bool, len(skin.Slots))
		for _, s := range skin.Slots {
			if seen[s.Name] {
				return fmt.Errorf("bones: skin %q has duplicate slot %q", skin.Name, s.Name)
			}
			seen[s.Name] = true
			if a.Bone(s.Parent) == nil {
				return fmt.Errorf("bones: slot %q has unknown parent bone %q", s.Name, s.Parent)
			}
		}
	}
	names := make(map[string]bool, len(a.Animations))
	for _, anim := range a.Animations {
		if names[anim.Name] {
			return fmt.Errorf("bones: armature %q has duplicate animation %q", a.Name, anim.Name)
		}
		names[anim.Name] = true
		for _, tl := range anim.Timelines {
			if a.Bone(tl.Name) == nil {
				return fmt.Errorf("bones: animation %q has timeline for unknown bone %q", anim.Name, tl.Name)
			}
		}
	}
	return nil
}

// BoneResource is the rest pose of one bone.
type BoneResource struct {
	Name   string
	Parent string // empty for root bones
	Length float64

	// Transform is the bone's origin relative to its parent.
	Transform Transform

	InheritRotation bool
	InheritScale    bool
}

// SkinResource maps slots to their display lists.
type SkinResource struct {
	Name  string
	Slots []*SlotResource
}

// SlotResource describes one attachment point.
type SlotResource struct {
	Name      string
	Parent    string // owning bone
	ZOrder    float64
	BlendMode BlendMode
	Displays  []*DisplayResource
}

// DisplayKind tags the variant held by a DisplayResource or SlotDisplay.
type DisplayKind uint8

const (
	DisplayImage    DisplayKind = iota // an image resolved by the DisplayFactory
	DisplayArmature                    // a nested armature built from the same skeleton
)

// DisplayResource is one entry of a slot's display list.
type DisplayResource struct {
	Name      string
	Kind      DisplayKind
	Transform Transform // relative to the slot's bone
	Pivot     Vec2
}

// AnimationResource is one authored clip. Durations and frame positions are
// in milliseconds.
type AnimationResource struct {
	Name      string
	Duration  int
	FrameRate int

	// PlayTimes is the default play count: 0 loops forever.
	PlayTimes int
	// FadeInTime is the default fade-in in seconds; negative selects the
	// runtime default.
	FadeInTime float64
	// Scale stretches the clip's duration; values <= 0 mean 1.
	Scale float64
	// AutoTween makes every frame tween toward the next; TweenEasing then
	// overrides the frames' own easing unless it is NaN.
	AutoTween   bool
	TweenEasing float64

	Timelines []*TimelineResource
	// Frames is the clip-level timeline carrying events and actions.
	Frames []*FrameResource
}

// Timeline returns the timeline for bone, or nil.
func (a *AnimationResource) Timeline(bone string) *TimelineResource {
	for _, tl := range a.Timelines {
		if tl.Name == bone {
			return tl
		}
	}
	return nil
}

// DefaultFrameRate is assumed for clips that carry no frame rate.
const DefaultFrameRate = 24

// frameCount returns the clip's length in authored frames.
func (a *AnimationResource) frameCount() int {
	rate := a.FrameRate
	if rate <= 0 {
		rate = DefaultFrameRate
	}
	return int(math.Round(float64(a.Duration) * float64(rate) * 0.001))
}

// TimelineResource holds the keyframes for one bone in one clip.
type TimelineResource struct {
	Name     string // bone name
	Duration int
	// Scale and Offset remap clip progress onto this timeline.
	Scale  float64
	Offset float64

	OriginTransform Transform
	OriginPivot     Vec2

	Frames []*TransformFrameResource
}

// FrameResource is a keyframe of the clip-level timeline.
type FrameResource struct {
	Position int
	Duration int
	Event    string
	Action   string
}

// TransformFrameResource is a keyframe of a bone timeline. Transform and
// Pivot are deltas from the bone's origin.
type TransformFrameResource struct {
	FrameResource

	Transform Transform
	Pivot     Vec2
	// TweenEasing is the easing code toward the next frame; NaN holds this
	// frame until the next one is reached.
	TweenEasing float64
	// TweenRotate is the rotation winding count toward the next frame.
	TweenRotate int
	TweenScale  bool
	// Color is nil when the frame carries no color change.
	Color *ColorTransform

	DisplayIndex int
	ZOrder       float64
	Visible      bool
}

// NewTransformFrame returns a frame with the defaults used by the parser:
// identity transform, visible, display 0, tweened scale.
func NewTransformFrame(position, duration int) *TransformFrameResource {
	return &TransformFrameResource{
		FrameResource: FrameResource{Position: position, Duration: duration},
		Transform:     NewTransform(),
		TweenScale:    true,
		Visible:       true,
	}
}
