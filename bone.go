package bones

import (
	"cmp"
	"slices"
)

// Bone is a node of the skeleton tree. Each tick it blends the tweens of the
// timeline states targeting it and composes the result with its parent.
type Bone struct {
	node

	bones []*Bone
	slots []*Slot

	// tween is the blended contribution of every active timeline state.
	tween      Transform
	tweenPivot Vec2

	// globalForChild differs from global only when some part of the offset
	// is withheld from children.
	globalForChild       Transform
	globalForChildMatrix Matrix

	timelineStates []*TimelineState
	needUpdate     int
	colorChanged   bool

	// ApplyOffsetTranslationToChild, ApplyOffsetRotationToChild and
	// ApplyOffsetScaleToChild select which parts of the manual offset child
	// bones and slots inherit. All default to true.
	ApplyOffsetTranslationToChild bool
	ApplyOffsetRotationToChild    bool
	ApplyOffsetScaleToChild       bool

	// DisplayController, when set, restricts display changes (display index,
	// visibility, z-order, frame events, actions) to the named animation.
	DisplayController string

	// Length is the authored bone length; informational only.
	Length float64
}

// NewBone creates a detached bone with an identity origin.
func NewBone(name string) *Bone {
	b := &Bone{
		ApplyOffsetTranslationToChild: true,
		ApplyOffsetRotationToChild:    true,
		ApplyOffsetScaleToChild:       true,
	}
	b.init(name)
	b.tween = NewTransform()
	b.globalForChild = NewTransform()
	b.globalForChildMatrix = IdentityMatrix
	b.needUpdate = 2
	return b
}

// Bones returns the direct child bones. The slice must not be modified.
func (b *Bone) Bones() []*Bone { return b.bones }

// Slots returns the slots attached to this bone. The slice must not be
// modified.
func (b *Bone) Slots() []*Slot { return b.slots }

// Tween returns the blended animation transform of the last update.
func (b *Bone) Tween() Transform { return b.tween }

// TweenPivot returns the blended pivot of the last update.
func (b *Bone) TweenPivot() Vec2 { return b.tweenPivot }

// SetOrigin replaces the rest pose relative to the parent.
func (b *Bone) SetOrigin(t Transform) {
	b.origin = t
	b.InvalidUpdate()
}

// SetOffset replaces the manual offset applied on top of origin and tween.
func (b *Bone) SetOffset(t Transform) {
	b.offset = t
	b.InvalidUpdate()
}

// SetInheritRotation toggles whether the parent's rotation applies.
func (b *Bone) SetInheritRotation(v bool) {
	b.inheritRotation = v
	b.InvalidUpdate()
}

// SetInheritScale toggles whether the parent's scale applies.
func (b *Bone) SetInheritScale(v bool) {
	b.inheritScale = v
	b.InvalidUpdate()
}

// SetVisible shows or hides every slot on this bone.
func (b *Bone) SetVisible(v bool) {
	b.visible = v
	for _, s := range b.slots {
		s.updateDisplayVisible(s.visible)
	}
}

// InvalidUpdate marks the bone dirty for the next two updates so the change
// reaches its children as well.
func (b *Bone) InvalidUpdate() {
	b.needUpdate = 2
}

// NeedsUpdate reports whether the bone will recompute its global transform
// on the next tick.
func (b *Bone) NeedsUpdate() bool { return b.needUpdate > 0 }

// Contains reports whether child is this bone or one of its descendants.
func (b *Bone) Contains(child *Bone) bool {
	if child == nil {
		return false
	}
	return isAncestor(b, child)
}

// AddChild attaches a bone as a child of b, detaching it from its previous
// parent. Panics on nil or when the link would create a cycle.
func (b *Bone) AddChild(child *Bone) {
	if child == nil {
		panic("bones: cannot add nil bone")
	}
	if isAncestor(child, b) {
		panic("bones: adding bone would create a cycle")
	}
	if child.parent == b {
		return
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	b.bones = append(b.bones, child)
	child.parent = b
	child.setArmature(b.armature)
	if b.armature != nil {
		b.armature.bonesDirty = true
	}
	child.InvalidUpdate()
}

// RemoveChild detaches a direct child bone. Panics if child is not a child of b.
func (b *Bone) RemoveChild(child *Bone) {
	i := slices.Index(b.bones, child)
	if child == nil || i < 0 {
		panic("bones: bone is not a child of this bone")
	}
	b.bones = slices.Delete(b.bones, i, i+1)
	child.parent = nil
	child.setArmature(nil)
	child.InvalidUpdate()
}

// AddSlot attaches a slot to b, detaching it from its previous bone.
func (b *Bone) AddSlot(s *Slot) {
	if s == nil {
		panic("bones: cannot add nil slot")
	}
	if s.parent == b {
		return
	}
	if s.parent != nil {
		s.parent.RemoveSlot(s)
	}
	b.slots = append(b.slots, s)
	s.parent = b
	s.setArmature(b.armature)
}

// RemoveSlot detaches a slot. Panics if s is not attached to b.
func (b *Bone) RemoveSlot(s *Slot) {
	i := slices.Index(b.slots, s)
	if s == nil || i < 0 {
		panic("bones: slot is not attached to this bone")
	}
	b.slots = slices.Delete(b.slots, i, i+1)
	s.parent = nil
	s.setArmature(nil)
}

// setArmature moves the whole subtree to a, keeping the armature's flat bone
// and slot lists in step.
func (b *Bone) setArmature(a *Armature) {
	if b.armature == a {
		return
	}
	if b.armature != nil {
		b.armature.unregisterBone(b)
	}
	b.armature = a
	if a != nil {
		a.registerBone(b)
	}
	for _, s := range b.slots {
		s.setArmature(a)
	}
	for _, c := range b.bones {
		c.setArmature(a)
	}
}

// childTransform returns the transform children compose with.
func (b *Bone) childTransform() (Transform, Matrix) {
	return b.globalForChild, b.globalForChildMatrix
}

// addTimelineState inserts ts keeping the list sorted by layer, lowest first.
func (b *Bone) addTimelineState(ts *TimelineState) {
	if slices.Contains(b.timelineStates, ts) {
		return
	}
	b.timelineStates = append(b.timelineStates, ts)
	slices.SortStableFunc(b.timelineStates, func(x, y *TimelineState) int {
		return cmp.Compare(x.state.layer, y.state.layer)
	})
}

func (b *Bone) removeTimelineState(ts *TimelineState) {
	i := slices.Index(b.timelineStates, ts)
	if i < 0 {
		return
	}
	b.timelineStates = slices.Delete(b.timelineStates, i, i+1)
	if len(b.timelineStates) == 0 {
		b.tween = NewTransform()
		b.tweenPivot = Vec2{}
	}
	b.InvalidUpdate()
}

// update recomputes the global transform when the bone, or its parent, is
// dirty. force is set while any animation state is fading, since weights
// change even when no frame does.
func (b *Bone) update(force bool) {
	b.needUpdate--
	if force || b.needUpdate > 0 || (b.parent != nil && b.parent.needUpdate > 0) {
		b.needUpdate = 1
	} else {
		return
	}

	b.blendTimelines()

	local := Transform{
		X:      b.origin.X + b.tween.X + b.offset.X,
		Y:      b.origin.Y + b.tween.Y + b.offset.Y,
		SkewX:  b.origin.SkewX + b.tween.SkewX + b.offset.SkewX,
		SkewY:  b.origin.SkewY + b.tween.SkewY + b.offset.SkewY,
		ScaleX: b.origin.ScaleX * b.tween.ScaleX * b.offset.ScaleX,
		ScaleY: b.origin.ScaleY * b.tween.ScaleY * b.offset.ScaleY,
	}
	b.global, b.globalMatrix = b.toArmatureSpace(local)

	if b.ApplyOffsetTranslationToChild && b.ApplyOffsetRotationToChild && b.ApplyOffsetScaleToChild {
		b.globalForChild, b.globalForChildMatrix = b.global, b.globalMatrix
		return
	}
	forChild := local
	if !b.ApplyOffsetTranslationToChild {
		forChild.X -= b.offset.X
		forChild.Y -= b.offset.Y
	}
	if !b.ApplyOffsetRotationToChild {
		forChild.SkewX -= b.offset.SkewX
		forChild.SkewY -= b.offset.SkewY
	}
	if !b.ApplyOffsetScaleToChild {
		forChild.ScaleX = b.origin.ScaleX * b.tween.ScaleX
		forChild.ScaleY = b.origin.ScaleY * b.tween.ScaleY
	}
	b.globalForChild, b.globalForChildMatrix = b.toArmatureSpace(forChild)
}

// blendTimelines folds the active timeline states into tween and tweenPivot.
// States are processed from the highest layer down; each layer draws from a
// shared weight budget of 1, and once the weight consumed so far reaches
// what is left of the budget the remaining lower layers are skipped.
func (b *Bone) blendTimelines() {
	n := len(b.timelineStates)
	if n == 0 {
		return
	}
	if n == 1 {
		ts := b.timelineStates[0]
		w := ts.state.weight * ts.state.fadeWeight
		ts.weight = w
		if !ts.blendEnabled {
			b.tween = NewTransform()
			b.tweenPivot = Vec2{}
			return
		}
		t := ts.transform
		b.tween = Transform{
			X:      t.X * w,
			Y:      t.Y * w,
			SkewX:  t.SkewX * w,
			SkewY:  t.SkewY * w,
			ScaleX: 1 + (t.ScaleX-1)*w,
			ScaleY: 1 + (t.ScaleY-1)*w,
		}
		b.tweenPivot = Vec2{X: ts.pivot.X * w, Y: ts.pivot.Y * w}
		return
	}

	var x, y, skX, skY, scX, scY, px, py float64
	weightLeft := 1.0
	layerTotal := 0.0
	prevLayer := b.timelineStates[n-1].state.layer
	i := n - 1
	for ; i >= 0; i-- {
		ts := b.timelineStates[i]
		layer := ts.state.layer
		if layer != prevLayer {
			if layerTotal >= weightLeft {
				break
			}
			weightLeft -= layerTotal
		}
		prevLayer = layer

		w := ts.state.weight * ts.state.fadeWeight * weightLeft
		ts.weight = w
		if w != 0 && ts.blendEnabled {
			t := ts.transform
			x += t.X * w
			y += t.Y * w
			skX += t.SkewX * w
			skY += t.SkewY * w
			scX += (t.ScaleX - 1) * w
			scY += (t.ScaleY - 1) * w
			px += ts.pivot.X * w
			py += ts.pivot.Y * w
		}
		layerTotal += w
	}
	for ; i >= 0; i-- {
		b.timelineStates[i].weight = 0
	}
	b.tween = Transform{X: x, Y: y, SkewX: skX, SkewY: skY, ScaleX: 1 + scX, ScaleY: 1 + scY}
	b.tweenPivot = Vec2{X: px, Y: py}
}

// arriveAtFrame applies the display side of a keyframe to the bone's slots
// and queues its event and action.
func (b *Bone) arriveAtFrame(frame *TransformFrameResource, state *AnimationState) {
	if !state.DisplayControl {
		return
	}
	if b.DisplayController != "" && b.DisplayController != state.Name() {
		return
	}
	if !state.ContainsBoneMask(b.name) {
		return
	}
	idx := frame.DisplayIndex
	for _, s := range b.slots {
		s.changeDisplay(idx)
		s.updateDisplayVisible(frame.Visible)
		if idx >= 0 && frame.ZOrder != s.tweenZOrder {
			s.tweenZOrder = frame.ZOrder
			if b.armature != nil {
				b.armature.slotsZOrderChanged = true
			}
		}
	}
	if frame.Event != "" && b.armature != nil {
		b.armature.queueEvent(Event{Type: EventBoneFrame, State: state, Bone: b, Label: frame.Event})
	}
	if frame.Action != "" {
		for _, s := range b.slots {
			if child := s.ChildArmature(); child != nil {
				child.Animation().GotoAndPlay(frame.Action)
			}
		}
	}
}

// updateColor pushes a color transform to every slot.
func (b *Bone) updateColor(c ColorTransform, changed bool) {
	for _, s := range b.slots {
		s.updateDisplayColor(c)
	}
	b.colorChanged = changed
}

// hideSlots clears every slot's display.
func (b *Bone) hideSlots() {
	for _, s := range b.slots {
		s.changeDisplay(-1)
	}
}

func (b *Bone) dispose() {
	b.bones = nil
	b.slots = nil
	b.timelineStates = nil
	b.node.dispose()
}
