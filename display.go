package bones

// Display is the renderable attached to a slot. The renderer binding owns it;
// the runtime only pushes state into it.
type Display interface {
	// SetTransform receives the slot's matrix in armature space.
	SetTransform(m Matrix)
	SetColor(c ColorTransform)
	SetVisible(visible bool)
	SetBlendMode(b BlendMode)
}

// DisplayContainer holds an armature's displays in draw order.
type DisplayContainer interface {
	// AddDisplay inserts d at index, moving it if already present.
	// An index past the end appends.
	AddDisplay(d Display, index int)
	RemoveDisplay(d Display)
}

// ArmatureDisplay is the root renderable of an armature: a container for its
// slots' displays that can itself be placed in a parent armature's slot.
type ArmatureDisplay interface {
	Display
	DisplayContainer
}

// DisplayFactory creates renderables while an armature is built.
type DisplayFactory interface {
	// NewArmatureDisplay returns the root container for the named armature.
	NewArmatureDisplay(name string) ArmatureDisplay
	// NewImageDisplay returns the display for an image entry of a slot's
	// display list.
	NewImageDisplay(res *DisplayResource) Display
}

// SlotDisplay is one entry of a slot's display list: either an image Display
// or a nested Armature, selected by Kind.
type SlotDisplay struct {
	Kind     DisplayKind
	Image    Display
	Armature *Armature

	// Transform is the display's offset from the slot's bone.
	Transform Transform
	Pivot     Vec2
}

// ImageDisplay wraps d as an image entry.
func ImageDisplay(d Display) SlotDisplay {
	return SlotDisplay{Kind: DisplayImage, Image: d, Transform: NewTransform()}
}

// ArmatureDisplayEntry wraps a nested armature as a display entry.
func ArmatureDisplayEntry(a *Armature) SlotDisplay {
	return SlotDisplay{Kind: DisplayArmature, Armature: a, Transform: NewTransform()}
}

// renderable returns the Display to attach for this entry, or nil.
func (d SlotDisplay) renderable() Display {
	switch d.Kind {
	case DisplayArmature:
		if d.Armature != nil && d.Armature.display != nil {
			return d.Armature.display
		}
		return nil
	default:
		return d.Image
	}
}
