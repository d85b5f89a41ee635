package bones

import "slices"

// Slot is an attachment point on a bone holding one entry of its display
// list at a time. It takes the bone's blended transform and pushes it to the
// current Display.
type Slot struct {
	node

	zOrder       float64
	tweenZOrder  float64
	offsetZOrder float64

	displays     []SlotDisplay
	displayIndex int
	// shown is false while the slot is hidden by a frame with display index -1.
	shown bool
	// attached is the renderable currently held by the armature's container.
	attached Display

	color      ColorTransform
	blendMode  BlendMode
	needUpdate bool
}

// NewSlot creates a detached slot with the given base z-order.
func NewSlot(name string, zOrder float64) *Slot {
	s := &Slot{zOrder: zOrder, displayIndex: -1, color: IdentityColor}
	s.init(name)
	return s
}

// ZOrder returns the effective draw order key: base + animated + offset.
func (s *Slot) ZOrder() float64 {
	return s.zOrder + s.tweenZOrder + s.offsetZOrder
}

// SetZOrderOffset sets the manual z-order adjustment and schedules a resort.
func (s *Slot) SetZOrderOffset(v float64) {
	if s.offsetZOrder == v {
		return
	}
	s.offsetZOrder = v
	if s.armature != nil {
		s.armature.slotsZOrderChanged = true
	}
}

// SetOffset replaces the manual offset applied on top of the display transform.
func (s *Slot) SetOffset(t Transform) {
	s.offset = t
	s.needUpdate = true
}

// SetInheritRotation toggles whether the bone's rotation applies.
func (s *Slot) SetInheritRotation(v bool) {
	s.inheritRotation = v
	s.needUpdate = true
}

// SetInheritScale toggles whether the bone's scale applies.
func (s *Slot) SetInheritScale(v bool) {
	s.inheritScale = v
	s.needUpdate = true
}

// DisplayIndex returns the index of the shown display, or -1.
func (s *Slot) DisplayIndex() int {
	if !s.shown {
		return -1
	}
	return s.displayIndex
}

// DisplayList returns the slot's display entries. The slice must not be
// modified.
func (s *Slot) DisplayList() []SlotDisplay { return s.displays }

// SetDisplayList replaces the display entries and re-shows the current index.
func (s *Slot) SetDisplayList(list []SlotDisplay) {
	idx := s.displayIndex
	s.detachDisplay()
	s.displays = list
	s.displayIndex = -1
	if s.shown || idx >= 0 {
		s.shown = false
		s.changeDisplay(max(idx, 0))
	}
}

// Display returns the renderable of the current entry, or nil when hidden.
func (s *Slot) Display() Display {
	if !s.shown || s.displayIndex < 0 || s.displayIndex >= len(s.displays) {
		return nil
	}
	return s.displays[s.displayIndex].renderable()
}

// ChildArmature returns the nested armature of the current entry, or nil.
func (s *Slot) ChildArmature() *Armature {
	if s.displayIndex < 0 || s.displayIndex >= len(s.displays) {
		return nil
	}
	d := s.displays[s.displayIndex]
	if d.Kind != DisplayArmature {
		return nil
	}
	return d.Armature
}

// Color returns the slot's color transform.
func (s *Slot) Color() ColorTransform { return s.color }

// SetColor replaces the slot's color transform.
func (s *Slot) SetColor(c ColorTransform) {
	s.updateDisplayColor(c)
}

// BlendMode returns the slot's blend mode.
func (s *Slot) BlendMode() BlendMode { return s.blendMode }

// SetBlendMode changes the compositing mode of the slot's display.
func (s *Slot) SetBlendMode(m BlendMode) {
	s.blendMode = m
	if d := s.Display(); d != nil {
		d.SetBlendMode(m)
	}
}

// SetVisible shows or hides the slot independently of its display index.
func (s *Slot) SetVisible(v bool) {
	s.visible = v
	s.updateDisplayVisible(v)
}

// ChangeDisplay selects the display entry at index; a negative index hides
// the slot. Indexes past the end select the last entry.
func (s *Slot) ChangeDisplay(index int) {
	s.changeDisplay(index)
}

func (s *Slot) changeDisplay(index int) {
	if index < 0 {
		if s.shown {
			s.shown = false
			s.detachDisplay()
			s.updateChildArmatureAnimation()
		}
		return
	}
	if len(s.displays) == 0 {
		return
	}
	if index >= len(s.displays) {
		index = len(s.displays) - 1
	}
	if s.displayIndex != index {
		s.shown = true
		s.displayIndex = index
		s.attachDisplay()
		s.updateChildArmatureAnimation()
		s.origin = s.displays[index].Transform
		s.needUpdate = true
		return
	}
	if !s.shown {
		s.shown = true
		if s.armature != nil {
			s.armature.slotsZOrderChanged = true
		}
		s.attachDisplay()
		s.updateChildArmatureAnimation()
	}
}

// attachDisplay swaps the container entry for the current renderable.
func (s *Slot) attachDisplay() {
	d := s.Display()
	if d == s.attached {
		return
	}
	s.detachDisplay()
	if d == nil {
		return
	}
	s.attached = d
	d.SetColor(s.color)
	d.SetBlendMode(s.blendMode)
	d.SetVisible(s.effectiveVisible(true))
	d.SetTransform(s.globalMatrix)
	if s.armature != nil && s.armature.display != nil {
		s.armature.display.AddDisplay(d, s.armature.displayIndex(s))
	}
}

func (s *Slot) detachDisplay() {
	if s.attached == nil {
		return
	}
	if s.armature != nil && s.armature.display != nil {
		s.armature.display.RemoveDisplay(s.attached)
	}
	s.attached = nil
}

// updateChildArmatureAnimation plays a shown nested armature, preferring the
// clip the parent armature is playing, and stops a hidden one.
func (s *Slot) updateChildArmatureAnimation() {
	child := s.ChildArmature()
	if child == nil {
		return
	}
	if !s.shown {
		child.Animation().Stop()
		return
	}
	if s.armature != nil {
		if last := s.armature.Animation().LastState(); last != nil && child.Animation().HasAnimation(last.Name()) {
			child.Animation().GotoAndPlay(last.Name())
			return
		}
	}
	child.Animation().Play()
}

func (s *Slot) effectiveVisible(v bool) bool {
	parentVisible := s.parent == nil || s.parent.visible
	return parentVisible && s.visible && v
}

func (s *Slot) updateDisplayVisible(v bool) {
	if d := s.Display(); d != nil {
		d.SetVisible(s.effectiveVisible(v))
	}
}

func (s *Slot) updateDisplayColor(c ColorTransform) {
	s.color = c
	if d := s.Display(); d != nil {
		d.SetColor(c)
	}
}

// setArmature moves the slot to a, keeping the armature's slot list and
// display container in step.
func (s *Slot) setArmature(a *Armature) {
	if s.armature == a {
		return
	}
	if s.armature != nil {
		s.detachDisplay()
		s.armature.unregisterSlot(s)
	}
	s.armature = a
	if a != nil {
		a.registerSlot(s)
		s.attachDisplay()
	}
}

// update recomputes the slot's transform from its bone and pushes it to the
// display. It does nothing unless the bone or the slot changed.
func (s *Slot) update() {
	b := s.parent
	if b == nil || (b.needUpdate <= 0 && !s.needUpdate) {
		return
	}
	x := s.origin.X + s.offset.X + b.tweenPivot.X
	y := s.origin.Y + s.offset.Y + b.tweenPivot.Y
	pm := b.globalMatrix
	gx, gy := pm.Apply(x, y)

	g := Transform{
		X:      gx,
		Y:      gy,
		SkewX:  s.origin.SkewX + s.offset.SkewX,
		SkewY:  s.origin.SkewY + s.offset.SkewY,
		ScaleX: s.origin.ScaleX * s.offset.ScaleX,
		ScaleY: s.origin.ScaleY * s.offset.ScaleY,
	}
	if s.inheritRotation {
		g.SkewX += b.global.SkewX
		g.SkewY += b.global.SkewY
	}
	if s.inheritScale {
		g.ScaleX *= b.global.ScaleX
		g.ScaleY *= b.global.ScaleY
	}
	s.global = g
	s.globalMatrix = g.Matrix()
	s.needUpdate = false

	if d := s.Display(); d != nil {
		d.SetTransform(s.globalMatrix)
	}
}

// nestedArmatures returns the nested armatures in the display list.
func (s *Slot) nestedArmatures() []*Armature {
	var out []*Armature
	for _, d := range s.displays {
		if d.Kind == DisplayArmature && d.Armature != nil && !slices.Contains(out, d.Armature) {
			out = append(out, d.Armature)
		}
	}
	return out
}

func (s *Slot) dispose() {
	for _, a := range s.nestedArmatures() {
		a.Dispose()
	}
	s.displays = nil
	s.attached = nil
	s.node.dispose()
}
