package bones

import (
	"fmt"
	"slices"
)

// BuildArmature instantiates the named armature of skel with its default
// skin. factory creates the renderables; a nil factory builds a headless
// armature. Returns nil when the skeleton has no such armature.
func BuildArmature(skel *SkeletonResource, name string, factory DisplayFactory) *Armature {
	return BuildArmatureWithSkin(skel, name, "", factory)
}

// BuildArmatureWithSkin is BuildArmature with an explicit skin name.
// Panics on inconsistent data (unknown parents, nested armature cycles) and
// when factory returns a nil display.
func BuildArmatureWithSkin(skel *SkeletonResource, name, skin string, factory DisplayFactory) *Armature {
	return buildArmature(skel, name, skin, factory, nil)
}

func buildArmature(skel *SkeletonResource, name, skinName string, factory DisplayFactory, building []string) *Armature {
	res := skel.Armature(name)
	if res == nil {
		debugWarnf("skeleton %q has no armature %q", skel.Name, name)
		return nil
	}
	if slices.Contains(building, name) {
		panic(fmt.Sprintf("bones: armature %q nests itself", name))
	}
	building = append(building, name)

	var display ArmatureDisplay
	if factory != nil {
		display = factory.NewArmatureDisplay(name)
		if display == nil {
			panic(fmt.Sprintf("bones: display factory returned nil for armature %q", name))
		}
	}
	a := NewArmature(name, res, display)

	for _, br := range res.Bones {
		b := NewBone(br.Name)
		b.origin = br.Transform
		b.inheritRotation = br.InheritRotation
		b.inheritScale = br.InheritScale
		b.Length = br.Length
		a.AddBone(b, br.Parent)
	}

	skin := res.Skin(skinName)
	if skin == nil {
		if skinName != "" {
			debugWarnf("armature %q has no skin %q", name, skinName)
		}
		return a
	}
	for _, sr := range skin.Slots {
		s := NewSlot(sr.Name, sr.ZOrder)
		s.blendMode = sr.BlendMode
		s.displays = make([]SlotDisplay, 0, len(sr.Displays))
		for _, dr := range sr.Displays {
			var entry SlotDisplay
			switch dr.Kind {
			case DisplayArmature:
				entry = ArmatureDisplayEntry(buildArmature(skel, dr.Name, "", factory, building))
			default:
				var img Display
				if factory != nil {
					img = factory.NewImageDisplay(dr)
					if img == nil {
						panic(fmt.Sprintf("bones: display factory returned nil for image %q", dr.Name))
					}
				}
				entry = ImageDisplay(img)
			}
			entry.Transform = dr.Transform
			entry.Pivot = dr.Pivot
			s.displays = append(s.displays, entry)
		}
		a.AddSlot(s, sr.Parent)
		s.ChangeDisplay(0)
	}
	a.sortSlots()
	a.slotsZOrderChanged = false
	return a
}
