package bones

import "math"

// Matrix is a 2D affine matrix stored as [a, b, c, d, tx, ty].
//
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
type Matrix [6]float64

// IdentityMatrix is the identity affine matrix.
var IdentityMatrix = Matrix{1, 0, 0, 1, 0, 0}

// Multiply returns m * child, i.e. child expressed in m's parent space.
func (m Matrix) Multiply(child Matrix) Matrix {
	return Matrix{
		m[0]*child[0] + m[2]*child[1],
		m[1]*child[0] + m[3]*child[1],
		m[0]*child[2] + m[2]*child[3],
		m[1]*child[2] + m[3]*child[3],
		m[0]*child[4] + m[2]*child[5] + m[4],
		m[1]*child[4] + m[3]*child[5] + m[5],
	}
}

// Invert computes the inverse of m.
// Returns the identity matrix if m is singular (determinant ≈ 0).
func (m Matrix) Invert() Matrix {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return IdentityMatrix
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return Matrix{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// Apply transforms the point (x, y) by m.
func (m Matrix) Apply(x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// Transform is a decomposed 2D transform. Rotation is expressed through the
// two skew angles (radians); a pure rotation has SkewX == SkewY.
type Transform struct {
	X, Y           float64
	SkewX, SkewY   float64
	ScaleX, ScaleY float64
}

// NewTransform returns the identity transform.
func NewTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}

// Rotation returns the transform's rotation in radians.
func (t Transform) Rotation() float64 {
	return t.SkewY
}

// SetRotation sets both skews to r, producing an unskewed rotation.
func (t *Transform) SetRotation(r float64) {
	t.SkewX = r
	t.SkewY = r
}

// Matrix composes t into an affine matrix.
//
// Composition order:
//
//	Scale -> Skew/Rotate -> Translate(X, Y)
func (t Transform) Matrix() Matrix {
	sinY, cosY := math.Sincos(t.SkewY)
	sinX, cosX := math.Sincos(t.SkewX)
	return Matrix{
		t.ScaleX * cosY,
		t.ScaleX * sinY,
		-t.ScaleY * sinX,
		t.ScaleY * cosX,
		t.X,
		t.Y,
	}
}

// Normalize wraps both skews into (-π, π].
func (t *Transform) Normalize() {
	t.SkewX = NormalizeRadian(t.SkewX)
	t.SkewY = NormalizeRadian(t.SkewY)
}

// DecomposeMatrix extracts a Transform from m. The sign of each scale axis
// cannot be recovered from the matrix alone, so the caller passes the signs
// it expects (normally those of the transform that produced m).
func DecomposeMatrix(m Matrix, scaleXPositive, scaleYPositive bool) Transform {
	sx := math.Hypot(m[0], m[1])
	if !scaleXPositive {
		sx = -sx
	}
	sy := math.Hypot(m[2], m[3])
	if !scaleYPositive {
		sy = -sy
	}
	t := Transform{X: m[4], Y: m[5], ScaleX: sx, ScaleY: sy}
	if sx != 0 {
		t.SkewY = math.Atan2(m[1]/sx, m[0]/sx)
	}
	if sy != 0 {
		t.SkewX = math.Atan2(-m[2]/sy, m[3]/sy)
	}
	return t
}

// NormalizeRadian wraps r into the half-open interval (-π, π].
func NormalizeRadian(r float64) float64 {
	r = math.Mod(r+math.Pi, 2*math.Pi)
	if r <= 0 {
		r += 2 * math.Pi
	}
	return r - math.Pi
}

// Vec2 is a 2D vector used for pivots and offsets.
type Vec2 struct {
	X, Y float64
}
