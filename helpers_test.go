package bones

import (
	"math"
	"slices"
	"testing"
)

// fakeDisplay records the state pushed into it.
type fakeDisplay struct {
	name      string
	matrix    Matrix
	color     ColorTransform
	visible   bool
	blendMode BlendMode
}

func (d *fakeDisplay) SetTransform(m Matrix)     { d.matrix = m }
func (d *fakeDisplay) SetColor(c ColorTransform) { d.color = c }
func (d *fakeDisplay) SetVisible(v bool)         { d.visible = v }
func (d *fakeDisplay) SetBlendMode(b BlendMode)  { d.blendMode = b }

// fakeContainer is an ArmatureDisplay keeping its children in a slice.
type fakeContainer struct {
	name     string
	matrix   Matrix
	visible  bool
	children []Display
}

func newFakeContainer(name string) *fakeContainer {
	return &fakeContainer{name: name, visible: true}
}

func (c *fakeContainer) SetTransform(m Matrix)   { c.matrix = m }
func (c *fakeContainer) SetColor(ColorTransform) {}
func (c *fakeContainer) SetVisible(v bool)       { c.visible = v }
func (c *fakeContainer) SetBlendMode(BlendMode)  {}

func (c *fakeContainer) AddDisplay(d Display, index int) {
	c.children = slices.DeleteFunc(c.children, func(o Display) bool { return o == d })
	index = min(max(index, 0), len(c.children))
	c.children = slices.Insert(c.children, index, d)
}

func (c *fakeContainer) RemoveDisplay(d Display) {
	c.children = slices.DeleteFunc(c.children, func(o Display) bool { return o == d })
}

func (c *fakeContainer) names() []string { return displayNames(c.children) }

func (c *fakeContainer) contains(d Display) bool { return slices.Contains(c.children, d) }

func displayNames(list []Display) []string {
	out := make([]string, 0, len(list))
	for _, d := range list {
		switch v := d.(type) {
		case *fakeDisplay:
			out = append(out, v.name)
		case *fakeContainer:
			out = append(out, v.name)
		}
	}
	return out
}

// fakeFactory builds fake displays and remembers them by name.
type fakeFactory struct {
	images     map[string]*fakeDisplay
	containers []*fakeContainer
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{images: make(map[string]*fakeDisplay)}
}

func (f *fakeFactory) NewArmatureDisplay(name string) ArmatureDisplay {
	c := newFakeContainer(name)
	f.containers = append(f.containers, c)
	return c
}

func (f *fakeFactory) NewImageDisplay(res *DisplayResource) Display {
	d := &fakeDisplay{name: res.Name, visible: true}
	f.images[res.Name] = d
	return d
}

// --- resource builders ---

// tweenTimeline returns a two-frame timeline tweening linearly from `from`
// to `to` over duration ms.
func tweenTimeline(bone string, duration int, from, to Transform) *TimelineResource {
	f0 := NewTransformFrame(0, duration)
	f0.Transform = from
	f1 := NewTransformFrame(duration, 0)
	f1.Transform = to
	return &TimelineResource{
		Name:            bone,
		Duration:        duration,
		Scale:           1,
		OriginTransform: NewTransform(),
		Frames:          []*TransformFrameResource{f0, f1},
	}
}

// poseTimeline returns a single-frame timeline holding t.
func poseTimeline(bone string, duration int, t Transform) *TimelineResource {
	f := NewTransformFrame(0, duration)
	f.Transform = t
	return &TimelineResource{
		Name:            bone,
		Duration:        duration,
		Scale:           1,
		OriginTransform: NewTransform(),
		Frames:          []*TransformFrameResource{f},
	}
}

func testClip(name string, duration, playTimes int, timelines ...*TimelineResource) *AnimationResource {
	return &AnimationResource{
		Name:        name,
		Duration:    duration,
		FrameRate:   24,
		PlayTimes:   playTimes,
		FadeInTime:  -1,
		Scale:       1,
		TweenEasing: math.NaN(),
		Timelines:   timelines,
	}
}

func tx(x float64) Transform {
	t := NewTransform()
	t.X = x
	return t
}

// testRig is a two-bone armature (root -> arm) with a slot on each bone.
type testRig struct {
	arm       *Armature
	container *fakeContainer
	root      *Bone
	child     *Bone
	body      *Slot
	hand      *Slot
	bodyImg   *fakeDisplay
	handImg   *fakeDisplay
}

func newTestRig(clips ...*AnimationResource) *testRig {
	res := &ArmatureResource{Name: "rig", Animations: clips}
	r := &testRig{container: newFakeContainer("rig")}
	r.arm = NewArmature("rig", res, r.container)

	r.root = NewBone("root")
	r.arm.AddBone(r.root, "")
	r.child = NewBone("arm")
	r.arm.AddBone(r.child, "root")

	r.bodyImg = &fakeDisplay{name: "body", visible: true}
	r.body = NewSlot("body", 0)
	r.body.SetDisplayList([]SlotDisplay{ImageDisplay(r.bodyImg)})
	r.arm.AddSlot(r.body, "root")
	r.body.ChangeDisplay(0)

	r.handImg = &fakeDisplay{name: "hand", visible: true}
	r.hand = NewSlot("hand", 1)
	r.hand.SetDisplayList([]SlotDisplay{ImageDisplay(r.handImg)})
	r.arm.AddSlot(r.hand, "arm")
	r.hand.ChangeDisplay(0)
	return r
}

// eventLog subscribes to every event type and records what it sees.
type eventLog struct {
	events []Event
}

func recordEvents(a *Armature) *eventLog {
	l := &eventLog{}
	for t := EventType(0); t < eventTypeCount; t++ {
		a.AddEventListener(t, func(e Event) { l.events = append(l.events, e) })
	}
	return l
}

func (l *eventLog) count(t EventType) int {
	n := 0
	for _, e := range l.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

func (l *eventLog) types() []EventType {
	out := make([]EventType, len(l.events))
	for i, e := range l.events {
		out[i] = e.Type
	}
	return out
}

func expectPanic(t *testing.T, what string, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for %s, got none", what)
		}
	}()
	fn()
}
