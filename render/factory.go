// Package render draws bones armatures with Ebitengine.
//
// A Factory passed to bones.BuildArmature creates a Canvas for each armature
// and a Sprite for each image display, resolving images through an Atlas:
//
//	atlas, err := render.LoadAtlas(atlasJSON, []*ebiten.Image{page})
//	arm := bones.BuildArmature(skel, "hero", render.NewFactory(atlas))
//	canvas := arm.Display().(*render.Canvas)
//
//	func (g *Game) Draw(screen *ebiten.Image) {
//		var geo ebiten.GeoM
//		geo.Translate(320, 400)
//		canvas.Draw(screen, geo)
//	}
package render

import (
	"github.com/phanxgames/bones"
)

// Factory implements bones.DisplayFactory on top of an Atlas. Image displays
// are looked up by their resource name; missing regions draw as a magenta
// placeholder.
type Factory struct {
	Atlas *Atlas

	// Missing collects the names of image displays not found in the atlas.
	Missing []string
}

// NewFactory creates a factory resolving images through atlas. A nil atlas
// makes every image a placeholder.
func NewFactory(atlas *Atlas) *Factory {
	if atlas == nil {
		atlas = &Atlas{}
	}
	return &Factory{Atlas: atlas}
}

// NewArmatureDisplay returns a new Canvas.
func (f *Factory) NewArmatureDisplay(name string) bones.ArmatureDisplay {
	return NewCanvas(name)
}

// NewImageDisplay returns a Sprite for res.
func (f *Factory) NewImageDisplay(res *bones.DisplayResource) bones.Display {
	img, region, ok := f.Atlas.SubImage(res.Name)
	if !ok {
		f.Missing = append(f.Missing, res.Name)
	}
	return NewSprite(res.Name, img, region, res.Pivot)
}

var _ bones.DisplayFactory = (*Factory)(nil)
var _ bones.ArmatureDisplay = (*Canvas)(nil)
var _ bones.Display = (*Sprite)(nil)
