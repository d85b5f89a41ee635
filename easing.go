package bones

import (
	"math"

	"github.com/tanema/gween/ease"
)

// EaseValue maps linear frame progress t in [0, 1] through a keyframe easing
// code e:
//
//	e == 0 or NaN   linear
//	e in (1, 2]     sine in-out, weighted by e-1
//	e in (0, 1]     quadratic out, weighted by e
//	e in [-1, 0)    quadratic in, weighted by |e|
//
// The weighted branches return t + (eased - t) * weight. Codes outside
// [-1, 2] are clamped. The curves are gween's, evaluated in float32, so
// interior values carry float32 rounding; the endpoints are exact.
func EaseValue(t, e float64) float64 {
	if e == 0 || math.IsNaN(e) || t <= 0 || t >= 1 {
		return t
	}
	e = min(max(e, -1), 2)
	var curve ease.TweenFunc
	switch {
	case e > 1:
		curve = ease.InOutSine
		e -= 1
	case e > 0:
		curve = ease.OutQuad
	default:
		curve = ease.InQuad
		e = -e
	}
	eased := float64(curve(float32(t), 0, 1, 1))
	return t + (eased-t)*e
}
