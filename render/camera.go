package render

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/bones"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera maps armature space to the screen: position, zoom and rotation
// around the center of a viewport.
type Camera struct {
	// X and Y are the armature-space point shown at the viewport center.
	X, Y float64
	// Zoom is the scale factor (1 = no zoom).
	Zoom float64
	// Rotation is the camera rotation in radians (clockwise).
	Rotation float64
	// Width and Height are the viewport size in screen pixels.
	Width, Height float64

	followTarget  *bones.Bone
	followOffsetX float64
	followOffsetY float64
	followLerp    float64

	scrollTween *scrollAnim
}

// NewCamera creates a camera for a viewport of the given size.
func NewCamera(width, height float64) *Camera {
	return &Camera{Zoom: 1, Width: width, Height: height}
}

// Follow makes the camera track a bone's armature-space position plus an
// offset. A lerp of 1 snaps immediately; lower values smooth the motion.
func (c *Camera) Follow(b *bones.Bone, offsetX, offsetY, lerp float64) {
	c.followTarget = b
	c.followOffsetX = offsetX
	c.followOffsetY = offsetY
	c.followLerp = lerp
}

// Unfollow stops tracking the current bone.
func (c *Camera) Unfollow() {
	c.followTarget = nil
}

// ScrollTo animates the camera to (x, y) over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.Linear
	}
	c.scrollTween = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, easeFn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, easeFn),
	}
}

// Update advances following and scrolling by dt seconds.
func (c *Camera) Update(dt float32) {
	if c.followTarget != nil {
		if c.followTarget.Armature() == nil {
			c.followTarget = nil
		} else {
			g := c.followTarget.Global()
			c.X += (g.X + c.followOffsetX - c.X) * c.followLerp
			c.Y += (g.Y + c.followOffsetY - c.Y) * c.followLerp
		}
	}

	if c.scrollTween != nil {
		if !c.scrollTween.doneX {
			val, done := c.scrollTween.tweenX.Update(dt)
			c.X = float64(val)
			c.scrollTween.doneX = done
		}
		if !c.scrollTween.doneY {
			val, done := c.scrollTween.tweenY.Update(dt)
			c.Y = float64(val)
			c.scrollTween.doneY = done
		}
		if c.scrollTween.doneX && c.scrollTween.doneY {
			c.scrollTween = nil
		}
	}
}

// ZoomAt changes the zoom by factor while keeping the armature-space point
// under screen position (sx, sy) fixed.
func (c *Camera) ZoomAt(factor, sx, sy float64) {
	if factor <= 0 {
		return
	}
	wx, wy := c.ScreenToWorld(sx, sy)
	c.Zoom *= factor
	nx, ny := c.ScreenToWorld(sx, sy)
	c.X += wx - nx
	c.Y += wy - ny
}

// Matrix returns the view matrix:
// Translate(center) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y).
func (c *Camera) Matrix() bones.Matrix {
	cos := math.Cos(-c.Rotation)
	sin := math.Sin(-c.Rotation)
	z := c.Zoom
	cx, cy := c.Width/2, c.Height/2
	return bones.Matrix{
		z * cos,
		z * sin,
		-z * sin,
		z * cos,
		cx + z*(-cos*c.X+sin*c.Y),
		cy + z*(-sin*c.X-cos*c.Y),
	}
}

// GeoM returns the view matrix for Canvas.Draw.
func (c *Camera) GeoM() ebiten.GeoM { return GeoM(c.Matrix()) }

// WorldToScreen converts armature coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return c.Matrix().Apply(wx, wy)
}

// ScreenToWorld converts screen coordinates to armature coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return c.Matrix().Invert().Apply(sx, sy)
}
