package bones

import (
	"cmp"
	"fmt"
	"slices"
)

// Armature is a skeleton instance: the bone tree, the slots in draw order and
// the Animation controller. Call AdvanceTime once per frame, directly or
// through a Clock.
type Armature struct {
	name     string
	resource *ArmatureResource
	display  ArmatureDisplay

	animation *Animation

	bones []*Bone // parent-first
	slots []*Slot // draw order

	bonesDirty         bool
	slotsZOrderChanged bool

	events      []Event
	eventsSpare []Event
	listeners   listenerRegistry

	offsetTweens []*OffsetTween

	locked           bool
	disposeRequested bool
	disposed         bool

	// UserData is free for the embedding application.
	UserData any
}

// NewArmature creates an empty armature. res supplies the animation clips and
// may be nil; display receives the slots' renderables and may be nil for a
// headless armature.
func NewArmature(name string, res *ArmatureResource, display ArmatureDisplay) *Armature {
	a := &Armature{name: name, resource: res, display: display}
	a.animation = newAnimation(a)
	return a
}

// Name returns the armature name.
func (a *Armature) Name() string { return a.name }

// Resource returns the armature definition, or nil.
func (a *Armature) Resource() *ArmatureResource { return a.resource }

// Display returns the root renderable, or nil for headless armatures.
func (a *Armature) Display() ArmatureDisplay { return a.display }

// Animation returns the animation controller.
func (a *Armature) Animation() *Animation { return a.animation }

// Bones returns every bone, parents before children. The slice must not be
// modified.
func (a *Armature) Bones() []*Bone {
	a.sortBones()
	return a.bones
}

// Slots returns every slot in draw order. The slice must not be modified.
func (a *Armature) Slots() []*Slot { return a.slots }

// IsDisposed reports whether the armature has been disposed.
func (a *Armature) IsDisposed() bool { return a.disposed }

// Bone returns the named bone, or nil.
func (a *Armature) Bone(name string) *Bone {
	for _, b := range a.bones {
		if b.name == name {
			return b
		}
	}
	return nil
}

// Slot returns the named slot, or nil.
func (a *Armature) Slot(name string) *Slot {
	for _, s := range a.slots {
		if s.name == name {
			return s
		}
	}
	return nil
}

// BoneByDisplay returns the bone whose slot currently shows d, or nil.
func (a *Armature) BoneByDisplay(d Display) *Bone {
	if d == nil {
		return nil
	}
	for _, s := range a.slots {
		if s.Display() == d {
			return s.parent
		}
	}
	return nil
}

// AddBone adds b under the named parent bone, or as a root bone when
// parentName is empty. Panics on nil, duplicate names, unknown parents and
// cycles.
func (a *Armature) AddBone(b *Bone, parentName string) {
	if b == nil {
		panic("bones: cannot add nil bone")
	}
	if globalDebug {
		debugCheckDisposed(a, "AddBone")
	}
	if other := a.Bone(b.name); other != nil && other != b {
		panic(fmt.Sprintf("bones: armature %q already has a bone named %q", a.name, b.name))
	}
	if parentName == "" {
		if b.parent != nil {
			b.parent.RemoveChild(b)
		}
		b.setArmature(a)
		return
	}
	parent := a.Bone(parentName)
	if parent == nil {
		panic(fmt.Sprintf("bones: armature %q has no parent bone %q", a.name, parentName))
	}
	parent.AddChild(b)
}

// RemoveBone detaches b and its subtree. Panics if b is not part of a.
func (a *Armature) RemoveBone(b *Bone) {
	if b == nil || b.armature != a {
		panic("bones: bone is not owned by this armature")
	}
	if b.parent != nil {
		b.parent.RemoveChild(b)
		return
	}
	b.setArmature(nil)
}

// AddSlot attaches s to the named bone. Panics on nil, duplicate names and
// unknown bones.
func (a *Armature) AddSlot(s *Slot, boneName string) {
	if s == nil {
		panic("bones: cannot add nil slot")
	}
	if other := a.Slot(s.name); other != nil && other != s {
		panic(fmt.Sprintf("bones: armature %q already has a slot named %q", a.name, s.name))
	}
	b := a.Bone(boneName)
	if b == nil {
		panic(fmt.Sprintf("bones: armature %q has no bone %q for slot %q", a.name, boneName, s.name))
	}
	b.AddSlot(s)
}

// RemoveSlot detaches s. Panics if s is not part of a.
func (a *Armature) RemoveSlot(s *Slot) {
	if s == nil || s.armature != a {
		panic("bones: slot is not owned by this armature")
	}
	s.parent.RemoveSlot(s)
}

func (a *Armature) registerBone(b *Bone) {
	a.bones = append(a.bones, b)
	a.bonesDirty = true
}

func (a *Armature) unregisterBone(b *Bone) {
	if i := slices.Index(a.bones, b); i >= 0 {
		a.bones = slices.Delete(a.bones, i, i+1)
	}
}

func (a *Armature) registerSlot(s *Slot) {
	a.slots = append(a.slots, s)
	a.slotsZOrderChanged = true
}

func (a *Armature) unregisterSlot(s *Slot) {
	if i := slices.Index(a.slots, s); i >= 0 {
		a.slots = slices.Delete(a.slots, i, i+1)
	}
}

// displayIndex returns the container index for s: the number of slots before
// it in draw order that have a renderable attached.
func (a *Armature) displayIndex(s *Slot) int {
	n := 0
	for _, other := range a.slots {
		if other == s {
			break
		}
		if other.attached != nil {
			n++
		}
	}
	return n
}

// sortBones restores parent-first order after structural changes.
func (a *Armature) sortBones() {
	if !a.bonesDirty {
		return
	}
	a.bonesDirty = false
	slices.SortStableFunc(a.bones, func(x, y *Bone) int {
		return cmp.Compare(x.depth(), y.depth())
	})
}

// sortSlots orders slots by z-order and re-attaches their renderables.
func (a *Armature) sortSlots() {
	slices.SortStableFunc(a.slots, func(x, y *Slot) int {
		return cmp.Compare(x.ZOrder(), y.ZOrder())
	})
	if a.display == nil {
		return
	}
	i := 0
	for _, s := range a.slots {
		if s.attached != nil {
			a.display.AddDisplay(s.attached, i)
			i++
		}
	}
}

// AddEventListener subscribes fn to events of type t. Listeners run at the
// end of AdvanceTime, in subscription order.
func (a *Armature) AddEventListener(t EventType, fn EventListener) {
	a.listeners.add(t, fn)
}

// RemoveEventListeners drops every listener of type t.
func (a *Armature) RemoveEventListeners(t EventType) {
	a.listeners.removeAll(t)
}

// HasEventListener reports whether any listener is subscribed to t.
func (a *Armature) HasEventListener(t EventType) bool {
	return a.listeners.has(t)
}

func (a *Armature) queueEvent(e Event) {
	if !a.listeners.has(e.Type) {
		return
	}
	e.Armature = a
	if e.State != nil {
		e.Animation = e.State.Name()
	}
	a.events = append(a.events, e)
}

// arriveAtFrame handles a clip-level keyframe.
func (a *Armature) arriveAtFrame(f *FrameResource, s *AnimationState) {
	if f.Event != "" {
		a.queueEvent(Event{Type: EventAnimationFrame, State: s, Label: f.Event})
	}
	if f.Action != "" && s.DisplayControl {
		a.animation.GotoAndPlay(f.Action)
	}
}

// AdvanceTime runs one tick: the animation controller advances by dt
// seconds, then bones are updated parent-first, then slots and nested
// armatures, then queued events are delivered. Dispose calls made during the
// tick take effect once it ends.
func (a *Armature) AdvanceTime(dt float64) {
	if a.disposed {
		if globalDebug {
			debugCheckDisposed(a, "AdvanceTime")
		}
		return
	}
	a.locked = true

	a.animation.advanceTime(dt)
	dt *= a.animation.TimeScale
	a.advanceOffsetTweens(dt)

	a.sortBones()
	force := a.animation.isFading
	for _, b := range a.bones {
		b.update(force)
	}
	for _, s := range a.slots {
		s.update()
		if child := s.ChildArmature(); child != nil && s.shown {
			child.AdvanceTime(dt)
		}
	}

	if a.slotsZOrderChanged {
		a.slotsZOrderChanged = false
		a.sortSlots()
		a.queueEvent(Event{Type: EventZOrderUpdated})
	}

	if globalDebug {
		a.debugLogTick()
	}
	a.flushEvents()
	a.animation.releaseFinished()

	a.locked = false
	if a.disposeRequested {
		a.dispose()
	}
}

// flushEvents delivers the events queued during the tick. Events queued by
// listeners are delivered on the next tick.
func (a *Armature) flushEvents() {
	if len(a.events) == 0 {
		return
	}
	evs := a.events
	a.events = a.eventsSpare[:0]
	for _, e := range evs {
		a.listeners.dispatch(e)
	}
	clear(evs)
	a.eventsSpare = evs[:0]
}

// Dispose releases the animation states, bones and slots. Called during
// AdvanceTime (typically from a listener) it is deferred to the end of the
// tick.
func (a *Armature) Dispose() {
	if a.disposed {
		return
	}
	if a.locked {
		a.disposeRequested = true
		return
	}
	a.dispose()
}

func (a *Armature) dispose() {
	a.disposeRequested = false
	a.disposed = true
	a.animation.dispose()
	for _, s := range a.slots {
		s.detachDisplay()
		s.dispose()
	}
	for _, b := range a.bones {
		b.dispose()
	}
	a.bones = nil
	a.slots = nil
	a.offsetTweens = nil
	a.events = nil
	a.eventsSpare = nil
	a.listeners.reset()
	a.display = nil
}
