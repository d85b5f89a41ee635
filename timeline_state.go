package bones

import "math"

// frameCursor tracks the keyframe containing the playhead of a timeline.
type frameCursor struct {
	index    int
	position int
	duration int
}

func (c *frameCursor) reset() {
	*c = frameCursor{index: -1}
}

// seek moves the cursor forward (with wraparound) until it contains
// currentTime. For every frame stepped over, arrive is called with the
// frame's index; the frame the cursor lands on is returned, or -1 when the
// cursor did not move. complete pins the cursor on the last frame instead of
// wrapping.
func (c *frameCursor) seek(currentTime, lastTime float64, complete bool, n int, at func(int) *FrameResource, arrive func(int)) int {
	landed := -1
	for range n {
		switch {
		case c.index < 0:
			c.index = 0
		case currentTime < float64(c.position) ||
			currentTime >= float64(c.position+c.duration) ||
			currentTime < lastTime:
			c.index++
			lastTime = currentTime
			if c.index >= n {
				if complete {
					c.index--
					return landed
				}
				c.index = 0
			}
		default:
			return landed
		}
		if landed >= 0 {
			arrive(landed)
		}
		f := at(c.index)
		c.position = f.Position
		c.duration = f.Duration
		landed = c.index
	}
	return landed
}

// timeline update modes
const (
	updateNone     = 0  // no frames, or the single frame was applied
	updateOnce     = 1  // one frame, not applied yet
	updateMultiple = -1 // full keyframe scan every tick
)

// TimelineState evaluates one bone's timeline for one AnimationState. It is
// pooled; AnimationState borrows and returns it.
type TimelineState struct {
	poolEntry

	bone     *Bone
	state    *AnimationState
	timeline *TimelineResource

	// weight is the effective blend weight of the last bone update.
	weight       float64
	blendEnabled bool
	isComplete   bool

	transform Transform
	pivot     Vec2

	totalTime   int
	currentTime float64
	lastTime    float64
	cursor      frameCursor
	updateMode  int

	tweenEasing    float64
	tweenTransform bool
	tweenScale     bool
	tweenColor     bool

	durationTransform Transform
	durationPivot     Vec2
	durationColor     ColorTransform

	originTransform Transform
	originPivot     Vec2
}

// Name returns the name of the bone this state drives.
func (ts *TimelineState) Name() string {
	if ts.timeline == nil {
		return ""
	}
	return ts.timeline.Name
}

// Bone returns the driven bone.
func (ts *TimelineState) Bone() *Bone { return ts.bone }

// Weight returns the blend weight applied in the last bone update.
func (ts *TimelineState) Weight() float64 { return ts.weight }

// Transform returns the raw (unweighted) tween of the last update.
func (ts *TimelineState) Transform() Transform { return ts.transform }

// Pivot returns the raw pivot of the last update.
func (ts *TimelineState) Pivot() Vec2 { return ts.pivot }

func (ts *TimelineState) fadeIn(bone *Bone, state *AnimationState, tl *TimelineResource) {
	ts.bone = bone
	ts.state = state
	ts.timeline = tl
	ts.originTransform = tl.OriginTransform
	ts.originPivot = tl.OriginPivot

	ts.totalTime = tl.Duration
	if ts.totalTime <= 0 {
		ts.totalTime = state.totalTime
	}
	ts.isComplete = false
	ts.blendEnabled = false
	ts.tweenTransform = false
	ts.tweenScale = false
	ts.tweenColor = false
	ts.tweenEasing = math.NaN()
	ts.weight = 1
	ts.currentTime = -1
	ts.lastTime = -1
	ts.cursor.reset()

	ts.transform = NewTransform()
	ts.pivot = Vec2{}
	ts.durationTransform = NewTransform()
	ts.durationPivot = Vec2{}
	ts.durationColor = ColorTransform{}

	switch {
	case len(tl.Frames) == 0:
		ts.updateMode = updateNone
	case len(tl.Frames) == 1 || ts.totalTime <= 0:
		ts.updateMode = updateOnce
	default:
		ts.updateMode = updateMultiple
	}
	bone.addTimelineState(ts)
}

// fadeOut freezes the current tween as the baseline of a fade-out.
func (ts *TimelineState) fadeOut() {
	ts.transform.SkewX = NormalizeRadian(ts.transform.SkewX)
	ts.transform.SkewY = NormalizeRadian(ts.transform.SkewY)
}

// update evaluates the timeline at progress, the owning state's time as a
// fraction of the clip duration (may exceed 1 across loops).
func (ts *TimelineState) update(progress float64) {
	switch ts.updateMode {
	case updateMultiple:
		ts.updateMultipleFrame(progress)
	case updateOnce:
		ts.updateMode = updateNone
		ts.updateSingleFrame()
	}
}

func (ts *TimelineState) frame(i int) *FrameResource {
	return &ts.timeline.Frames[i].FrameResource
}

func (ts *TimelineState) updateMultipleFrame(progress float64) {
	scale := ts.timeline.Scale
	if scale <= 0 {
		scale = 1
	}
	progress = progress/scale + ts.timeline.Offset
	total := float64(ts.totalTime)
	currentTime := total * progress

	playTimes := ts.state.playTimes
	currentPlayTimes := 0
	if playTimes == 0 {
		ts.isComplete = false
		currentPlayTimes = max(int(math.Ceil(math.Abs(currentTime)/total)), 1)
		currentTime = wrapTime(currentTime, total)
	} else {
		totalTimes := float64(playTimes) * total
		switch {
		case currentTime >= totalTimes:
			currentTime = totalTimes
			ts.isComplete = true
		case currentTime <= -totalTimes:
			currentTime = -totalTimes
			ts.isComplete = true
		default:
			ts.isComplete = false
		}
		if currentTime < 0 {
			currentTime += totalTimes
		}
		currentPlayTimes = max(int(math.Ceil(currentTime/total)), 1)
		if ts.isComplete {
			currentTime = total
		} else {
			currentTime = wrapTime(currentTime, total)
		}
	}

	if ts.currentTime == currentTime {
		return
	}
	ts.lastTime = ts.currentTime
	ts.currentTime = currentTime

	frames := ts.timeline.Frames
	landed := ts.cursor.seek(currentTime, ts.lastTime, ts.isComplete, len(frames), ts.frame, func(i int) {
		ts.bone.arriveAtFrame(frames[i], ts.state)
	})
	if landed >= 0 {
		cur := frames[landed]
		ts.bone.arriveAtFrame(cur, ts.state)
		ts.blendEnabled = cur.DisplayIndex >= 0
		if ts.blendEnabled {
			ts.updateToNextFrame(currentPlayTimes)
		} else {
			ts.tweenEasing = math.NaN()
			ts.tweenTransform = false
			ts.tweenScale = false
			ts.tweenColor = false
			ts.bone.InvalidUpdate()
		}
	}
	if ts.blendEnabled {
		ts.updateTween()
	}
}

// wrapTime folds t into [0, total).
func wrapTime(t, total float64) float64 {
	t = math.Mod(t, total)
	if t < 0 {
		t += total
	}
	return t
}

// updateToNextFrame recomputes the tween deltas toward the frame after the
// current one.
func (ts *TimelineState) updateToNextFrame(currentPlayTimes int) {
	frames := ts.timeline.Frames
	next := ts.cursor.index + 1
	if next >= len(frames) {
		next = 0
	}
	cur := frames[ts.cursor.index]
	nf := frames[next]
	st := ts.state

	tweenEnabled := false
	switch {
	case next == 0 && (!st.LastFrameAutoTween || (st.playTimes != 0 && currentPlayTimes >= st.playTimes)):
		ts.tweenEasing = math.NaN()
	case nf.DisplayIndex < 0 || !st.tweenEnabled():
		ts.tweenEasing = math.NaN()
	case st.AutoTween:
		ts.tweenEasing = st.clip.TweenEasing
		if math.IsNaN(ts.tweenEasing) {
			ts.tweenEasing = cur.TweenEasing
		}
		tweenEnabled = !math.IsNaN(ts.tweenEasing)
	default:
		ts.tweenEasing = cur.TweenEasing
		tweenEnabled = !math.IsNaN(ts.tweenEasing)
	}

	if tweenEnabled {
		d := Transform{
			X:      nf.Transform.X - cur.Transform.X,
			Y:      nf.Transform.Y - cur.Transform.Y,
			SkewX:  nf.Transform.SkewX - cur.Transform.SkewX,
			SkewY:  nf.Transform.SkewY - cur.Transform.SkewY,
			ScaleX: nf.Transform.ScaleX - cur.Transform.ScaleX,
			ScaleY: nf.Transform.ScaleY - cur.Transform.ScaleY,
		}
		if cur.TweenRotate != 0 {
			turn := 2 * math.Pi * float64(cur.TweenRotate)
			d.SkewX += turn
			d.SkewY += turn
		} else {
			d.SkewX = NormalizeRadian(d.SkewX)
			d.SkewY = NormalizeRadian(d.SkewY)
		}
		ts.durationTransform = d
		ts.durationPivot = Vec2{X: nf.Pivot.X - cur.Pivot.X, Y: nf.Pivot.Y - cur.Pivot.Y}

		if d.X != 0 || d.Y != 0 || d.SkewX != 0 || d.SkewY != 0 || d.ScaleX != 0 || d.ScaleY != 0 ||
			ts.durationPivot.X != 0 || ts.durationPivot.Y != 0 {
			ts.tweenTransform = true
			ts.tweenScale = cur.TweenScale
		} else {
			ts.tweenTransform = false
			ts.tweenScale = false
		}

		ts.tweenColor = ts.updateColorDuration(cur.Color, nf.Color)
	} else {
		ts.tweenTransform = false
		ts.tweenScale = false
		ts.tweenColor = false
	}

	if !ts.tweenTransform {
		ts.transform, ts.pivot = ts.applyFrame(cur.Transform, cur.Pivot)
		ts.bone.InvalidUpdate()
	} else if !ts.tweenScale {
		t, _ := ts.applyFrame(cur.Transform, cur.Pivot)
		ts.transform.ScaleX, ts.transform.ScaleY = t.ScaleX, t.ScaleY
	}

	if !ts.tweenColor && st.DisplayControl {
		if cur.Color != nil {
			ts.bone.updateColor(*cur.Color, true)
		} else if ts.bone.colorChanged {
			ts.bone.updateColor(IdentityColor, false)
		}
	}
}

// updateColorDuration sets the color delta between two frames and reports
// whether it is non-zero. A missing color is treated as identity.
func (ts *TimelineState) updateColorDuration(from, to *ColorTransform) bool {
	if from == nil && to == nil {
		return false
	}
	a, b := IdentityColor, IdentityColor
	if from != nil {
		a = *from
	}
	if to != nil {
		b = *to
	}
	ts.durationColor = ColorTransform{
		AlphaMultiplier: b.AlphaMultiplier - a.AlphaMultiplier,
		RedMultiplier:   b.RedMultiplier - a.RedMultiplier,
		GreenMultiplier: b.GreenMultiplier - a.GreenMultiplier,
		BlueMultiplier:  b.BlueMultiplier - a.BlueMultiplier,
		AlphaOffset:     b.AlphaOffset - a.AlphaOffset,
		RedOffset:       b.RedOffset - a.RedOffset,
		GreenOffset:     b.GreenOffset - a.GreenOffset,
		BlueOffset:      b.BlueOffset - a.BlueOffset,
	}
	return ts.durationColor != ColorTransform{}
}

// applyFrame combines a frame's values with the timeline origin, unless the
// owning state blends additively.
func (ts *TimelineState) applyFrame(t Transform, p Vec2) (Transform, Vec2) {
	if ts.state.AdditiveBlending {
		return t, p
	}
	o := ts.originTransform
	return Transform{
		X:      o.X + t.X,
		Y:      o.Y + t.Y,
		SkewX:  o.SkewX + t.SkewX,
		SkewY:  o.SkewY + t.SkewY,
		ScaleX: o.ScaleX * t.ScaleX,
		ScaleY: o.ScaleY * t.ScaleY,
	}, Vec2{X: ts.originPivot.X + p.X, Y: ts.originPivot.Y + p.Y}
}

func (ts *TimelineState) updateTween() {
	cur := ts.timeline.Frames[ts.cursor.index]
	progress := 0.0
	if ts.cursor.duration > 0 {
		progress = (ts.currentTime - float64(ts.cursor.position)) / float64(ts.cursor.duration)
	}
	if ts.tweenEasing != 0 && !math.IsNaN(ts.tweenEasing) {
		progress = EaseValue(progress, ts.tweenEasing)
	}

	if ts.tweenTransform {
		d := ts.durationTransform
		t := cur.Transform
		raw := Transform{
			X:      t.X + d.X*progress,
			Y:      t.Y + d.Y*progress,
			SkewX:  t.SkewX + d.SkewX*progress,
			SkewY:  t.SkewY + d.SkewY*progress,
			ScaleX: t.ScaleX,
			ScaleY: t.ScaleY,
		}
		if ts.tweenScale {
			raw.ScaleX += d.ScaleX * progress
			raw.ScaleY += d.ScaleY * progress
		}
		pivot := Vec2{
			X: cur.Pivot.X + ts.durationPivot.X*progress,
			Y: cur.Pivot.Y + ts.durationPivot.Y*progress,
		}
		ts.transform, ts.pivot = ts.applyFrame(raw, pivot)
		ts.bone.InvalidUpdate()
	}

	if ts.tweenColor && ts.state.DisplayControl {
		base := IdentityColor
		if cur.Color != nil {
			base = *cur.Color
		}
		d := ts.durationColor
		ts.bone.updateColor(ColorTransform{
			AlphaMultiplier: base.AlphaMultiplier + d.AlphaMultiplier*progress,
			RedMultiplier:   base.RedMultiplier + d.RedMultiplier*progress,
			GreenMultiplier: base.GreenMultiplier + d.GreenMultiplier*progress,
			BlueMultiplier:  base.BlueMultiplier + d.BlueMultiplier*progress,
			AlphaOffset:     base.AlphaOffset + d.AlphaOffset*progress,
			RedOffset:       base.RedOffset + d.RedOffset*progress,
			GreenOffset:     base.GreenOffset + d.GreenOffset*progress,
			BlueOffset:      base.BlueOffset + d.BlueOffset*progress,
		}, true)
	}
}

func (ts *TimelineState) updateSingleFrame() {
	cur := ts.timeline.Frames[0]
	ts.bone.arriveAtFrame(cur, ts.state)
	ts.isComplete = true
	ts.tweenEasing = math.NaN()
	ts.tweenTransform = false
	ts.tweenScale = false
	ts.tweenColor = false
	ts.blendEnabled = cur.DisplayIndex >= 0
	if !ts.blendEnabled {
		return
	}
	ts.transform, ts.pivot = ts.applyFrame(cur.Transform, cur.Pivot)
	ts.bone.InvalidUpdate()
	if ts.state.DisplayControl {
		if cur.Color != nil {
			ts.bone.updateColor(*cur.Color, true)
		} else if ts.bone.colorChanged {
			ts.bone.updateColor(IdentityColor, false)
		}
	}
}

func (ts *TimelineState) clear() {
	if ts.bone != nil {
		ts.bone.removeTimelineState(ts)
	}
	*ts = TimelineState{poolEntry: ts.poolEntry}
}
