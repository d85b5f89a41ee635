package bones

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
)

// ParseSkeleton parses skeleton JSON into a SkeletonResource. Durations in
// the file are in frames and are converted to milliseconds with
// round(frames * 1000 / frameRate); skews are in degrees and are converted to
// radians. Bones are sorted parent-first and cross references are checked.
func ParseSkeleton(data []byte) (*SkeletonResource, error) {
	var js jsonSkeleton
	if err := json.Unmarshal(data, &js); err != nil {
		return nil, fmt.Errorf("bones: failed to parse skeleton JSON: %w", err)
	}
	skel := &SkeletonResource{Name: js.Name, FrameRate: js.FrameRate}
	if skel.FrameRate <= 0 {
		skel.FrameRate = DefaultFrameRate
	}
	for _, ja := range js.Armatures {
		a, err := ja.resource(skel.FrameRate)
		if err != nil {
			return nil, err
		}
		if skel.Armature(a.Name) != nil {
			return nil, fmt.Errorf("bones: skeleton %q has duplicate armature %q", skel.Name, a.Name)
		}
		skel.Armatures = append(skel.Armatures, a)
	}
	return skel, nil
}

// --- JSON structure types ---

type jsonSkeleton struct {
	Name      string         `json:"name"`
	FrameRate int            `json:"frameRate"`
	Armatures []jsonArmature `json:"armature"`
}

type jsonArmature struct {
	Name       string          `json:"name"`
	FrameRate  int             `json:"frameRate"`
	Bones      []jsonBone      `json:"bone"`
	Skins      []jsonSkin      `json:"skin"`
	Animations []jsonAnimation `json:"animation"`
}

type jsonTransform struct {
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	SkewX  float64  `json:"skX"`
	SkewY  float64  `json:"skY"`
	ScaleX *float64 `json:"scX"`
	ScaleY *float64 `json:"scY"`
	PivotX float64  `json:"pX"`
	PivotY float64  `json:"pY"`
}

func (t *jsonTransform) transform() Transform {
	if t == nil {
		return NewTransform()
	}
	out := Transform{
		X:      t.X,
		Y:      t.Y,
		SkewX:  t.SkewX * math.Pi / 180,
		SkewY:  t.SkewY * math.Pi / 180,
		ScaleX: 1,
		ScaleY: 1,
	}
	if t.ScaleX != nil {
		out.ScaleX = *t.ScaleX
	}
	if t.ScaleY != nil {
		out.ScaleY = *t.ScaleY
	}
	return out
}

func (t *jsonTransform) pivot() Vec2 {
	if t == nil {
		return Vec2{}
	}
	return Vec2{X: t.PivotX, Y: t.PivotY}
}

// jsonFlag accepts true/false as well as 1/0; absent or null keeps the
// caller's default.
type jsonFlag struct {
	set   bool
	value bool
}

func (f *jsonFlag) UnmarshalJSON(b []byte) error {
	switch string(bytes.TrimSpace(b)) {
	case "null":
		return nil
	case "true", "1":
		f.set, f.value = true, true
	case "false", "0":
		f.set, f.value = true, false
	default:
		return fmt.Errorf("bones: invalid flag %s", b)
	}
	return nil
}

func (f jsonFlag) or(def bool) bool {
	if !f.set {
		return def
	}
	return f.value
}

type jsonBone struct {
	Name            string         `json:"name"`
	Parent          string         `json:"parent"`
	Length          float64        `json:"length"`
	Transform       *jsonTransform `json:"transform"`
	InheritRotation jsonFlag       `json:"inheritRotation"`
	InheritScale    jsonFlag       `json:"inheritScale"`
}

type jsonSkin struct {
	Name  string     `json:"name"`
	Slots []jsonSlot `json:"slot"`
}

type jsonSlot struct {
	Name      string        `json:"name"`
	Parent    string        `json:"parent"`
	Z         float64       `json:"z"`
	BlendMode string        `json:"blendMode"`
	Displays  []jsonDisplay `json:"display"`
}

type jsonDisplay struct {
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Transform *jsonTransform `json:"transform"`
}

type jsonAnimation struct {
	Name        string          `json:"name"`
	Duration    int             `json:"duration"`
	PlayTimes   *int            `json:"playTimes"`
	FadeInTime  *float64        `json:"fadeInTime"`
	Scale       *float64        `json:"scale"`
	AutoTween   jsonFlag        `json:"autoTween"`
	TweenEasing json.RawMessage `json:"tweenEasing"`
	Frames      []jsonFrame     `json:"frame"`
	Timelines   []jsonTimeline  `json:"timeline"`
}

type jsonTimeline struct {
	Name   string          `json:"name"`
	Scale  *float64        `json:"scale"`
	Offset float64         `json:"offset"`
	Frames []jsonBoneFrame `json:"frame"`
	Origin *jsonTransform  `json:"origin"`
}

type jsonFrame struct {
	Duration int    `json:"duration"`
	Event    string `json:"event"`
	Action   string `json:"action"`
}

type jsonColor struct {
	AlphaMultiplier *float64 `json:"aM"`
	RedMultiplier   *float64 `json:"rM"`
	GreenMultiplier *float64 `json:"gM"`
	BlueMultiplier  *float64 `json:"bM"`
	AlphaOffset     float64  `json:"aO"`
	RedOffset       float64  `json:"rO"`
	GreenOffset     float64  `json:"gO"`
	BlueOffset      float64  `json:"bO"`
}

type jsonBoneFrame struct {
	jsonFrame
	Transform    *jsonTransform  `json:"transform"`
	TweenEasing  json.RawMessage `json:"tweenEasing"`
	TweenRotate  int             `json:"tweenRotate"`
	TweenScale   jsonFlag        `json:"tweenScale"`
	DisplayIndex *int            `json:"displayIndex"`
	Z            float64         `json:"z"`
	Hide         jsonFlag        `json:"hide"`
	Color        *jsonColor      `json:"color"`
}

// --- conversion ---

// framesToMS converts a frame count to milliseconds.
func framesToMS(frames, frameRate int) int {
	return int(math.Round(float64(frames) * 1000 / float64(frameRate)))
}

// parseEasing reads an easing code: absent is linear (0), null holds the
// frame (NaN).
func parseEasing(raw json.RawMessage, absent float64) (float64, error) {
	if raw == nil {
		return absent, nil
	}
	if string(bytes.TrimSpace(raw)) == "null" {
		return math.NaN(), nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("bones: invalid tweenEasing %s: %w", raw, err)
	}
	return v, nil
}

func (c *jsonColor) color() *ColorTransform {
	if c == nil {
		return nil
	}
	pct := func(p *float64) float64 {
		if p == nil {
			return 1
		}
		return *p / 100
	}
	return &ColorTransform{
		AlphaMultiplier: pct(c.AlphaMultiplier),
		RedMultiplier:   pct(c.RedMultiplier),
		GreenMultiplier: pct(c.GreenMultiplier),
		BlueMultiplier:  pct(c.BlueMultiplier),
		AlphaOffset:     c.AlphaOffset,
		RedOffset:       c.RedOffset,
		GreenOffset:     c.GreenOffset,
		BlueOffset:      c.BlueOffset,
	}
}

func (ja *jsonArmature) resource(skeletonRate int) (*ArmatureResource, error) {
	rate := ja.FrameRate
	if rate <= 0 {
		rate = skeletonRate
	}
	a := &ArmatureResource{Name: ja.Name}

	for _, jb := range ja.Bones {
		a.Bones = append(a.Bones, &BoneResource{
			Name:            jb.Name,
			Parent:          jb.Parent,
			Length:          jb.Length,
			Transform:       jb.Transform.transform(),
			InheritRotation: jb.InheritRotation.or(true),
			InheritScale:    jb.InheritScale.or(true),
		})
	}

	for _, js := range ja.Skins {
		skin := &SkinResource{Name: js.Name}
		for _, jsl := range js.Slots {
			mode, ok := ParseBlendMode(jsl.BlendMode)
			if !ok {
				return nil, fmt.Errorf("bones: slot %q has unknown blend mode %q", jsl.Name, jsl.BlendMode)
			}
			slot := &SlotResource{Name: jsl.Name, Parent: jsl.Parent, ZOrder: jsl.Z, BlendMode: mode}
			for _, jd := range jsl.Displays {
				d := &DisplayResource{
					Name:      jd.Name,
					Transform: jd.Transform.transform(),
					Pivot:     jd.Transform.pivot(),
				}
				switch jd.Type {
				case "", "image":
					d.Kind = DisplayImage
				case "armature":
					d.Kind = DisplayArmature
				default:
					return nil, fmt.Errorf("bones: display %q has unknown type %q", jd.Name, jd.Type)
				}
				slot.Displays = append(slot.Displays, d)
			}
			skin.Slots = append(skin.Slots, slot)
		}
		a.Skins = append(a.Skins, skin)
	}

	for _, jan := range ja.Animations {
		clip, err := jan.resource(rate)
		if err != nil {
			return nil, fmt.Errorf("bones: armature %q: %w", ja.Name, err)
		}
		a.Animations = append(a.Animations, clip)
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

func (jan *jsonAnimation) resource(rate int) (*AnimationResource, error) {
	clip := &AnimationResource{
		Name:       jan.Name,
		Duration:   framesToMS(jan.Duration, rate),
		FrameRate:  rate,
		PlayTimes:  1,
		FadeInTime: -1,
		Scale:      1,
		AutoTween:  jan.AutoTween.or(true),
	}
	if jan.PlayTimes != nil {
		clip.PlayTimes = *jan.PlayTimes
	}
	if jan.FadeInTime != nil {
		clip.FadeInTime = *jan.FadeInTime
	}
	if jan.Scale != nil && *jan.Scale > 0 {
		clip.Scale = *jan.Scale
	}
	easing, err := parseEasing(jan.TweenEasing, math.NaN())
	if err != nil {
		return nil, fmt.Errorf("animation %q: %w", jan.Name, err)
	}
	clip.TweenEasing = easing

	pos := 0
	for _, jf := range jan.Frames {
		start := framesToMS(pos, rate)
		pos += jf.Duration
		clip.Frames = append(clip.Frames, &FrameResource{
			Position: start,
			Duration: framesToMS(pos, rate) - start,
			Event:    jf.Event,
			Action:   jf.Action,
		})
	}

	for _, jt := range jan.Timelines {
		tl := &TimelineResource{
			Name:            jt.Name,
			Duration:        clip.Duration,
			Scale:           1,
			Offset:          jt.Offset,
			OriginTransform: jt.Origin.transform(),
			OriginPivot:     jt.Origin.pivot(),
		}
		if jt.Scale != nil && *jt.Scale > 0 {
			tl.Scale = *jt.Scale
		}
		pos := 0
		for _, jf := range jt.Frames {
			start := framesToMS(pos, rate)
			pos += jf.Duration
			f := NewTransformFrame(start, framesToMS(pos, rate)-start)
			f.Event = jf.Event
			f.Action = jf.Action
			f.Transform = jf.Transform.transform()
			f.Pivot = jf.Transform.pivot()
			if f.TweenEasing, err = parseEasing(jf.TweenEasing, 0); err != nil {
				return nil, fmt.Errorf("animation %q timeline %q: %w", jan.Name, jt.Name, err)
			}
			f.TweenRotate = jf.TweenRotate
			f.TweenScale = jf.TweenScale.or(true)
			if jf.DisplayIndex != nil {
				f.DisplayIndex = *jf.DisplayIndex
			}
			f.ZOrder = jf.Z
			f.Visible = !jf.Hide.or(false)
			f.Color = jf.Color.color()
			tl.Frames = append(tl.Frames, f)
		}
		clip.Timelines = append(clip.Timelines, tl)
	}
	return clip, nil
}
