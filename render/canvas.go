package render

import (
	"slices"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/bones"
)

// drawer is implemented by the displays this package knows how to draw.
type drawer interface {
	draw(dst *ebiten.Image, parent ebiten.GeoM, tint bones.ColorTransform)
}

// Canvas is the root display of an armature: it keeps the slot displays in
// draw order and is itself a bones.Display, so a nested armature's canvas
// draws inside its parent's slot.
type Canvas struct {
	Name string

	children []bones.Display
	matrix   bones.Matrix
	color    bones.ColorTransform
	visible  bool
}

// NewCanvas creates an empty visible canvas.
func NewCanvas(name string) *Canvas {
	return &Canvas{
		Name:    name,
		matrix:  bones.IdentityMatrix,
		color:   bones.IdentityColor,
		visible: true,
	}
}

func (c *Canvas) SetTransform(m bones.Matrix)      { c.matrix = m }
func (c *Canvas) SetColor(ct bones.ColorTransform) { c.color = ct }
func (c *Canvas) SetVisible(v bool)                { c.visible = v }

// SetBlendMode is a no-op: children draw with their own blend modes.
func (c *Canvas) SetBlendMode(bones.BlendMode) {}

// AddDisplay inserts d at index, moving it if already present.
func (c *Canvas) AddDisplay(d bones.Display, index int) {
	if d == nil {
		return
	}
	if i := slices.Index(c.children, d); i >= 0 {
		c.children = slices.Delete(c.children, i, i+1)
	}
	index = min(max(index, 0), len(c.children))
	c.children = slices.Insert(c.children, index, d)
}

// RemoveDisplay removes d if present.
func (c *Canvas) RemoveDisplay(d bones.Display) {
	if i := slices.Index(c.children, d); i >= 0 {
		c.children = slices.Delete(c.children, i, i+1)
	}
}

// Children returns the displays in draw order. The slice must not be
// modified.
func (c *Canvas) Children() []bones.Display { return c.children }

// Visible reports whether the canvas draws.
func (c *Canvas) Visible() bool { return c.visible }

// Draw renders the canvas and every nested display onto dst. geo places the
// armature's origin on dst.
func (c *Canvas) Draw(dst *ebiten.Image, geo ebiten.GeoM) {
	c.draw(dst, geo, bones.IdentityColor)
}

func (c *Canvas) draw(dst *ebiten.Image, parent ebiten.GeoM, tint bones.ColorTransform) {
	if !c.visible {
		return
	}
	geo := GeoM(c.matrix)
	geo.Concat(parent)
	tint = concatColor(tint, c.color)
	for _, d := range c.children {
		if dr, ok := d.(drawer); ok {
			dr.draw(dst, geo, tint)
		}
	}
}
