package bones

import (
	"math"
	"slices"
)

// DefaultFadeInTime is used when neither the caller nor the clip specifies a
// fade-in time.
const DefaultFadeInTime = 0.3

// PlayOptions holds the arguments of GotoAndPlay and GotoAndStop. Times are
// in seconds; negative values select the defaults described on each field.
type PlayOptions struct {
	// FadeInTime is the fade-in duration. Negative uses the clip's value,
	// or DefaultFadeInTime when the clip has none.
	FadeInTime float64
	// Duration stretches the clip to play in this many seconds. Negative
	// uses the clip's own scale.
	Duration float64
	// PlayTimes is the play count; NaN uses the clip's value. 0 loops
	// forever and -N plays N times then fades out.
	PlayTimes float64
	Layer     int
	Group     string
	// FadeOutMode selects which running states fade out.
	FadeOutMode FadeOutMode
	// PauseFadeOut freezes the playheads of states fading out.
	PauseFadeOut bool
	// PauseFadeIn freezes the new state's playhead until its fade-in ends.
	PauseFadeIn bool
	// NormalizedTime, when non-negative, makes GotoAndStop seek to this
	// fraction of the clip instead of an absolute time.
	NormalizedTime float64
}

// DefaultPlayOptions returns the defaults used by GotoAndPlay.
func DefaultPlayOptions() PlayOptions {
	return PlayOptions{
		FadeInTime:     -1,
		Duration:       -1,
		PlayTimes:      math.NaN(),
		FadeOutMode:    FadeOutSameLayerAndGroup,
		PauseFadeOut:   true,
		PauseFadeIn:    true,
		NormalizedTime: -1,
	}
}

// PlayOption customizes a GotoAndPlay or GotoAndStop call.
type PlayOption func(*PlayOptions)

// WithFadeIn sets the fade-in time in seconds.
func WithFadeIn(seconds float64) PlayOption {
	return func(o *PlayOptions) { o.FadeInTime = seconds }
}

// WithDuration plays the clip stretched to the given number of seconds.
func WithDuration(seconds float64) PlayOption {
	return func(o *PlayOptions) { o.Duration = seconds }
}

// WithPlayTimes sets the play count.
func WithPlayTimes(n int) PlayOption {
	return func(o *PlayOptions) { o.PlayTimes = float64(n) }
}

// WithLayer sets the blend layer; higher layers take priority.
func WithLayer(layer int) PlayOption {
	return func(o *PlayOptions) { o.Layer = layer }
}

// WithGroup sets the fade-out group.
func WithGroup(group string) PlayOption {
	return func(o *PlayOptions) { o.Group = group }
}

// WithFadeOutMode selects which running states fade out.
func WithFadeOutMode(m FadeOutMode) PlayOption {
	return func(o *PlayOptions) { o.FadeOutMode = m }
}

// WithPauseFadeOut sets whether states fading out keep advancing.
func WithPauseFadeOut(pause bool) PlayOption {
	return func(o *PlayOptions) { o.PauseFadeOut = pause }
}

// WithPauseFadeIn sets whether the new state waits for its fade-in to end
// before advancing.
func WithPauseFadeIn(pause bool) PlayOption {
	return func(o *PlayOptions) { o.PauseFadeIn = pause }
}

// WithNormalizedTime makes GotoAndStop seek to a fraction of the clip.
func WithNormalizedTime(t float64) PlayOption {
	return func(o *PlayOptions) { o.NormalizedTime = t }
}

// Animation controls the animation states of one armature.
type Animation struct {
	armature *Armature

	states    []*AnimationState // most recently started first
	scratch   []*AnimationState
	finished  []*AnimationState // removed this tick, pooled after events flush
	lastState *AnimationState
	isPlaying bool
	isFading  bool

	// TimeScale multiplies the time passed to every state and to nested
	// armatures.
	TimeScale float64
	// TweenEnabled allows keyframes to tween; when false every state holds
	// each keyframe until the next one.
	TweenEnabled bool
}

func newAnimation(a *Armature) *Animation {
	return &Animation{armature: a, isPlaying: true, TimeScale: 1, TweenEnabled: true}
}

// AnimationNames returns the clip names of the armature's resource.
func (an *Animation) AnimationNames() []string {
	res := an.armature.resource
	if res == nil {
		return nil
	}
	names := make([]string, len(res.Animations))
	for i, clip := range res.Animations {
		names[i] = clip.Name
	}
	return names
}

// HasAnimation reports whether the armature has a clip with the given name.
func (an *Animation) HasAnimation(name string) bool {
	return an.clip(name) != nil
}

func (an *Animation) clip(name string) *AnimationResource {
	if an.armature.resource == nil {
		return nil
	}
	return an.armature.resource.Animation(name)
}

// GotoAndPlay fades in a new state for the named clip, fading out running
// states according to the fade-out mode. Returns nil for unknown clips.
func (an *Animation) GotoAndPlay(name string, opts ...PlayOption) *AnimationState {
	o := DefaultPlayOptions()
	for _, fn := range opts {
		fn(&o)
	}
	return an.gotoAndPlay(name, o)
}

func (an *Animation) gotoAndPlay(name string, o PlayOptions) *AnimationState {
	clip := an.clip(name)
	if clip == nil {
		debugWarnf("armature %q has no animation %q", an.armature.name, name)
		return nil
	}
	an.isPlaying = true
	an.isFading = true

	fadeIn := o.FadeInTime
	if fadeIn < 0 || math.IsNaN(fadeIn) {
		fadeIn = clip.FadeInTime
		if fadeIn < 0 || math.IsNaN(fadeIn) {
			fadeIn = DefaultFadeInTime
		}
	}

	durationScale := clip.Scale
	if o.Duration >= 0 && clip.Duration > 0 {
		durationScale = o.Duration * 1000 / float64(clip.Duration)
	} else if durationScale <= 0 {
		durationScale = 1
	}

	playTimes := clip.PlayTimes
	if !math.IsNaN(o.PlayTimes) {
		playTimes = int(o.PlayTimes)
	}

	for _, s := range an.states {
		if fadeOutMatches(o.FadeOutMode, s, o.Layer, o.Group) {
			s.FadeOut(fadeIn, o.PauseFadeOut)
		}
	}

	s := animationStatePool.get()
	s.layer = o.Layer
	s.group = o.Group
	s.fadeIn(an.armature, clip, fadeIn, 1/durationScale, playTimes, o.PauseFadeIn)
	an.lastState = s
	an.states = slices.Insert(an.states, 0, s)

	for _, slot := range an.armature.slots {
		if child := slot.ChildArmature(); child != nil && child.Animation().HasAnimation(name) {
			child.Animation().GotoAndPlay(name, WithFadeIn(fadeIn))
		}
	}
	return s
}

func fadeOutMatches(mode FadeOutMode, s *AnimationState, layer int, group string) bool {
	switch mode {
	case FadeOutNone:
		return false
	case FadeOutSameLayer:
		return s.layer == layer
	case FadeOutSameGroup:
		return s.group == group
	case FadeOutAll:
		return true
	default:
		return s.layer == layer && s.group == group
	}
}

// GotoAndStop seeks the named clip to time seconds (or the normalized time
// option) and pauses it. An existing state on the same layer is reused;
// otherwise one is started with no fade-in, fading out every other state.
func (an *Animation) GotoAndStop(name string, time float64, opts ...PlayOption) *AnimationState {
	o := DefaultPlayOptions()
	o.FadeInTime = 0
	o.FadeOutMode = FadeOutAll
	for _, fn := range opts {
		fn(&o)
	}
	s := an.State(name, o.Layer)
	if s == nil {
		s = an.gotoAndPlay(name, o)
		if s == nil {
			return nil
		}
	}
	if o.NormalizedTime >= 0 {
		s.SetCurrentTime(s.TotalTime() * o.NormalizedTime)
	} else {
		s.SetCurrentTime(time)
	}
	s.Stop()
	return s
}

// Play resumes the last started state, or starts the first clip if nothing
// has played yet.
func (an *Animation) Play() {
	if an.lastState == nil {
		if names := an.AnimationNames(); len(names) > 0 {
			an.GotoAndPlay(names[0])
		}
		return
	}
	an.isPlaying = true
	an.lastState.Play()
}

// Stop pauses every state without discarding them.
func (an *Animation) Stop() {
	an.isPlaying = false
}

// State returns the running state of the named clip on layer, or nil.
func (an *Animation) State(name string, layer int) *AnimationState {
	for _, s := range an.states {
		if s.Name() == name && s.layer == layer {
			return s
		}
	}
	return nil
}

// HasState reports whether a state of the named clip is running on layer.
func (an *Animation) HasState(name string, layer int) bool {
	return an.State(name, layer) != nil
}

// States returns the running states, most recently started first. The slice
// must not be modified.
func (an *Animation) States() []*AnimationState { return an.states }

// LastState returns the most recently started state, or nil.
func (an *Animation) LastState() *AnimationState { return an.lastState }

// IsPlaying reports whether playback is running and not complete.
func (an *Animation) IsPlaying() bool {
	return an.isPlaying && !an.IsComplete()
}

// IsComplete reports whether the last started state and every other running
// state have completed.
func (an *Animation) IsComplete() bool {
	if an.lastState == nil {
		return true
	}
	if !an.lastState.IsComplete() {
		return false
	}
	for _, s := range an.states {
		if !s.IsComplete() {
			return false
		}
	}
	return true
}

// IsFading reports whether any state was fading during the last advance.
func (an *Animation) IsFading() bool { return an.isFading }

func (an *Animation) advanceTime(dt float64) {
	if !an.isPlaying {
		return
	}
	dt *= an.TimeScale
	fading := false
	snapshot := append(an.scratch[:0], an.states...)
	for i := len(snapshot) - 1; i >= 0; i-- {
		s := snapshot[i]
		if s.armature == nil {
			continue
		}
		if s.advanceTime(dt) {
			an.removeState(s)
		} else if s.fadeState != FadeComplete {
			fading = true
		}
	}
	an.isFading = fading
	clear(snapshot)
	an.scratch = snapshot[:0]
}

func (an *Animation) removeState(s *AnimationState) {
	i := slices.Index(an.states, s)
	if i < 0 {
		return
	}
	an.states = slices.Delete(an.states, i, i+1)
	if an.lastState == s {
		an.lastState = nil
		if len(an.states) > 0 {
			an.lastState = an.states[0]
		}
	}
	s.releaseTimelineStates()
	an.finished = append(an.finished, s)
}

// releaseFinished returns the states removed during the tick to the pool.
// It runs after their events have been delivered.
func (an *Animation) releaseFinished() {
	for _, s := range an.finished {
		animationStatePool.put(s)
	}
	clear(an.finished)
	an.finished = an.finished[:0]
}

func (an *Animation) dispose() {
	an.releaseFinished()
	for _, s := range an.states {
		animationStatePool.put(s)
	}
	an.states = nil
	an.finished = nil
	an.scratch = nil
	an.lastState = nil
	an.isPlaying = false
}
