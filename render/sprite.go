package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/colorm"

	"github.com/phanxgames/bones"
)

// Sprite is a bones.Display drawing one atlas region.
type Sprite struct {
	Name   string
	Image  *ebiten.Image
	Region TextureRegion
	// Pivot is the point of the image placed at the slot's origin.
	Pivot bones.Vec2

	matrix  bones.Matrix
	color   bones.ColorTransform
	visible bool
	blend   bones.BlendMode
}

// NewSprite creates a visible sprite for img.
func NewSprite(name string, img *ebiten.Image, r TextureRegion, pivot bones.Vec2) *Sprite {
	return &Sprite{
		Name:    name,
		Image:   img,
		Region:  r,
		Pivot:   pivot,
		matrix:  bones.IdentityMatrix,
		color:   bones.IdentityColor,
		visible: true,
	}
}

func (s *Sprite) SetTransform(m bones.Matrix)     { s.matrix = m }
func (s *Sprite) SetColor(c bones.ColorTransform) { s.color = c }
func (s *Sprite) SetVisible(v bool)               { s.visible = v }
func (s *Sprite) SetBlendMode(b bones.BlendMode)  { s.blend = b }

// Matrix returns the last transform pushed by the slot.
func (s *Sprite) Matrix() bones.Matrix { return s.matrix }

// Color returns the last color pushed by the slot.
func (s *Sprite) Color() bones.ColorTransform { return s.color }

// Visible reports whether the sprite draws.
func (s *Sprite) Visible() bool { return s.visible }

// BlendMode returns the last blend mode pushed by the slot.
func (s *Sprite) BlendMode() bones.BlendMode { return s.blend }

// localGeoM places the region image relative to the slot origin: undo atlas
// rotation, apply the trim offset, then shift by the pivot.
func (s *Sprite) localGeoM() ebiten.GeoM {
	var g ebiten.GeoM
	r := &s.Region
	if r.Rotated {
		g.Rotate(-math.Pi / 2)
		g.Translate(0, float64(r.Width))
	}
	if r.OffsetX != 0 || r.OffsetY != 0 {
		g.Translate(float64(r.OffsetX), float64(r.OffsetY))
	}
	g.Translate(-s.Pivot.X, -s.Pivot.Y)
	return g
}

// drawGeoM returns the full transform for drawing under parent.
func (s *Sprite) drawGeoM(parent ebiten.GeoM) ebiten.GeoM {
	g := s.localGeoM()
	g.Concat(GeoM(s.matrix))
	g.Concat(parent)
	return g
}

func (s *Sprite) draw(dst *ebiten.Image, parent ebiten.GeoM, tint bones.ColorTransform) {
	if !s.visible || s.Image == nil {
		return
	}
	c := concatColor(tint, s.color)
	if c.AlphaMultiplier <= 0 && c.AlphaOffset <= 0 {
		return
	}
	geo := s.drawGeoM(parent)
	blend := EbitenBlend(s.blend)

	if c.HasOffset() {
		op := &colorm.DrawImageOptions{GeoM: geo, Blend: blend}
		colorm.DrawImage(dst, s.Image, ColorM(c), op)
		return
	}
	op := &ebiten.DrawImageOptions{GeoM: geo, Blend: blend}
	a := float32(c.AlphaMultiplier)
	op.ColorScale.Scale(float32(c.RedMultiplier)*a, float32(c.GreenMultiplier)*a, float32(c.BlueMultiplier)*a, a)
	dst.DrawImage(s.Image, op)
}
