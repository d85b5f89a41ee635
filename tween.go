package bones

import (
	"slices"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// OffsetTween animates the manual offset of a bone toward a target
// transform. It is advanced by its armature inside AdvanceTime and removed
// once done. If the bone leaves the armature the tween stops.
type OffsetTween struct {
	bone   *Bone
	tweens [6]*gween.Tween
	Done   bool
}

// Stop ends the tween, leaving the offset where it is.
func (t *OffsetTween) Stop() { t.Done = true }

// TweenOffset starts tweening the named bone's offset to `to` over duration
// seconds using fn. Returns nil when the bone does not exist.
func (a *Armature) TweenOffset(boneName string, to Transform, duration float32, fn ease.TweenFunc) *OffsetTween {
	b := a.Bone(boneName)
	if b == nil {
		debugWarnf("TweenOffset: armature %q has no bone %q", a.name, boneName)
		return nil
	}
	if fn == nil {
		fn = ease.Linear
	}
	from := b.offset
	t := &OffsetTween{bone: b}
	t.tweens[0] = gween.New(float32(from.X), float32(to.X), duration, fn)
	t.tweens[1] = gween.New(float32(from.Y), float32(to.Y), duration, fn)
	t.tweens[2] = gween.New(float32(from.SkewX), float32(to.SkewX), duration, fn)
	t.tweens[3] = gween.New(float32(from.SkewY), float32(to.SkewY), duration, fn)
	t.tweens[4] = gween.New(float32(from.ScaleX), float32(to.ScaleX), duration, fn)
	t.tweens[5] = gween.New(float32(from.ScaleY), float32(to.ScaleY), duration, fn)
	a.offsetTweens = append(a.offsetTweens, t)
	return t
}

// update advances every tween by dt seconds and writes the offset.
func (t *OffsetTween) update(a *Armature, dt float32) {
	if t.Done {
		return
	}
	if t.bone.armature != a {
		t.Done = true
		return
	}
	var v [6]float64
	done := true
	for i, tw := range t.tweens {
		val, finished := tw.Update(dt)
		v[i] = float64(val)
		if !finished {
			done = false
		}
	}
	t.bone.SetOffset(Transform{X: v[0], Y: v[1], SkewX: v[2], SkewY: v[3], ScaleX: v[4], ScaleY: v[5]})
	t.Done = done
}

func (a *Armature) advanceOffsetTweens(dt float64) {
	if len(a.offsetTweens) == 0 {
		return
	}
	for _, t := range a.offsetTweens {
		t.update(a, float32(dt))
	}
	a.offsetTweens = slices.DeleteFunc(a.offsetTweens, func(t *OffsetTween) bool { return t.Done })
}
