package bones

import (
	"math"
	"slices"
)

// FadeState is the progress of an AnimationState's current fade segment.
type FadeState int8

const (
	FadeBefore   FadeState = -1 // the fade has not started yet
	Fading       FadeState = 0  // the weight is ramping
	FadeComplete FadeState = 1  // the weight reached its target
)

func (s FadeState) String() string {
	switch s {
	case FadeBefore:
		return "before"
	case Fading:
		return "fading"
	case FadeComplete:
		return "complete"
	}
	return "unknown"
}

// AnimationState is one playback of a clip: its own time, play count, fade
// ramp and weight. States are pooled; the Animation controller borrows one
// per GotoAndPlay and returns it once its fade-out completes. Do not keep a
// reference to a state after it has finished fading out.
type AnimationState struct {
	poolEntry

	armature *Armature
	clip     *AnimationResource

	layer int
	group string

	// DisplayControl lets the state drive display index, visibility,
	// z-order, color and frame events. Cleared when the state fades out.
	DisplayControl bool
	// AutoTween makes every keyframe tween toward the next one.
	AutoTween bool
	// LastFrameAutoTween tweens from the last frame back to the first when
	// looping.
	LastFrameAutoTween bool
	// AdditiveBlending applies frame values without the timeline origin.
	AdditiveBlending bool
	// AutoFadeOut starts a fade-out of FadeOutTime seconds on completion.
	AutoFadeOut bool
	FadeOutTime float64

	weight    float64
	timeScale float64
	playTimes int

	totalTime        int
	singlePlay       bool    // zero duration or fewer than two frames
	time             float64 // seconds
	currentTime      float64 // ms, -1 before the first evaluation
	lastTime         float64
	currentPlayTimes int
	isComplete       bool
	isPlaying        bool
	cursor           frameCursor

	pausePlayheadInFade bool
	isFadeOut           bool
	fadeWeight          float64
	fadeTotalWeight     float64
	fadeState           FadeState
	fadeCurrentTime     float64
	fadeBeginTime       float64
	fadeTotalTime       float64

	boneMasks      []string
	timelineStates []*TimelineState
}

// fadeIn resets the state to play clip on armature. fadeTotalTime is in
// seconds; timeScale is the inverse of the duration scale.
func (s *AnimationState) fadeIn(a *Armature, clip *AnimationResource, fadeTotalTime, timeScale float64, playTimes int, pausePlayhead bool) {
	s.armature = a
	s.clip = clip
	s.pausePlayheadInFade = pausePlayhead
	s.totalTime = clip.Duration
	s.AutoTween = clip.AutoTween && a.animation.TweenEnabled

	s.singlePlay = clip.frameCount() < 2 || math.IsInf(timeScale, 1) || s.totalTime <= 0
	s.SetTimeScale(timeScale)
	s.SetPlayTimes(playTimes)

	s.isComplete = false
	s.time = 0
	if s.singlePlay {
		// Start on the last frame so the first tick completes the play.
		s.time = float64(s.totalTime) * 0.001
	}
	s.currentPlayTimes = 0
	s.lastTime = -1
	s.currentTime = -1
	s.cursor.reset()

	s.isFadeOut = false
	s.fadeWeight = 0
	s.fadeTotalWeight = 1
	s.fadeState = FadeBefore
	s.fadeCurrentTime = 0
	s.fadeBeginTime = 0
	s.fadeTotalTime = fadeTotalTime * s.timeScale

	s.isPlaying = true
	s.DisplayControl = true
	s.LastFrameAutoTween = true
	s.AdditiveBlending = false
	s.weight = 1
	s.FadeOutTime = fadeTotalTime

	s.updateTimelineStates()
}

// FadeOut starts fading the state out over fadeTotalTime seconds. A state
// already fading out with more time left than requested keeps its fade.
// pausePlayhead freezes the playhead while fading.
func (s *AnimationState) FadeOut(fadeTotalTime float64, pausePlayhead bool) {
	if s.armature == nil {
		return
	}
	if math.IsNaN(fadeTotalTime) || fadeTotalTime < 0 {
		fadeTotalTime = 0
	}
	if s.isFadeOut {
		if s.RemainingFadeTime() > fadeTotalTime {
			return
		}
	} else {
		for _, ts := range s.timelineStates {
			ts.fadeOut()
		}
	}
	s.pausePlayheadInFade = pausePlayhead
	s.isFadeOut = true
	s.fadeTotalWeight = s.fadeWeight
	s.fadeState = FadeBefore
	s.fadeBeginTime = s.fadeCurrentTime
	s.fadeTotalTime = fadeTotalTime * s.timeScale
	s.DisplayControl = false
}

// RemainingFadeTime returns the unscaled seconds left in the current fade.
// A state paused with a zero time scale reports 0.
func (s *AnimationState) RemainingFadeTime() float64 {
	left := s.fadeTotalTime - (s.fadeCurrentTime - s.fadeBeginTime)
	if left <= 0 || s.timeScale == 0 {
		return 0
	}
	return left / s.timeScale
}

// advanceTime moves the state by dt seconds and reports whether it finished
// fading out.
func (s *AnimationState) advanceTime(dt float64) bool {
	dt *= s.timeScale
	s.advanceFadeTime(dt)
	if s.fadeWeight != 0 {
		s.advancePlayhead(dt)
	}
	return s.isFadeOut && s.fadeState == FadeComplete
}

func (s *AnimationState) advanceFadeTime(dt float64) {
	state := s.fadeState
	s.fadeCurrentTime += math.Abs(dt)
	switch {
	case s.fadeCurrentTime >= s.fadeBeginTime+s.fadeTotalTime:
		if s.fadeWeight == 1 || s.fadeWeight == 0 {
			state = FadeComplete
			s.pausePlayheadInFade = false
		}
		if s.isFadeOut {
			s.fadeWeight = 0
		} else {
			s.fadeWeight = 1
		}
	case s.fadeCurrentTime >= s.fadeBeginTime:
		state = Fading
		w := (s.fadeCurrentTime - s.fadeBeginTime) / s.fadeTotalTime * s.fadeTotalWeight
		if s.isFadeOut {
			w = s.fadeTotalWeight - w
		}
		s.fadeWeight = min(max(w, 0), 1)
	default:
		state = FadeBefore
		if s.isFadeOut {
			s.fadeWeight = s.fadeTotalWeight
		} else {
			s.fadeWeight = 0
		}
	}

	if s.fadeState == state {
		return
	}
	started := s.fadeState == FadeBefore
	s.fadeState = state
	if started {
		if s.isFadeOut {
			s.queueEvent(EventFadeOut)
		} else {
			s.hideBones()
			s.queueEvent(EventFadeIn)
		}
	}
	if state == FadeComplete {
		if s.isFadeOut {
			s.queueEvent(EventFadeOutComplete)
		} else {
			s.queueEvent(EventFadeInComplete)
		}
	}
}

func (s *AnimationState) advancePlayhead(dt float64) {
	if s.isPlaying && !s.pausePlayheadInFade {
		s.time += dt
	}

	total := float64(s.totalTime)
	currentTime := s.time * 1000
	complete := false
	playTimes := 1
	switch {
	case total <= 0:
		currentTime = 0
		complete = s.playTimes != 0
	case s.playTimes == 0:
		playTimes = max(int(math.Ceil(math.Abs(currentTime)/total)), 1)
		currentTime = wrapTime(currentTime, total)
	default:
		totalTimes := float64(s.playTimes) * total
		switch {
		case currentTime >= totalTimes:
			currentTime = totalTimes
			complete = true
		case currentTime <= -totalTimes:
			currentTime = -totalTimes
			complete = true
		}
		if currentTime < 0 {
			currentTime += totalTimes
		}
		playTimes = max(int(math.Ceil(currentTime/total)), 1)
		if complete {
			currentTime = total
		} else {
			currentTime = wrapTime(currentTime, total)
		}
	}

	var start, loopComplete, completed bool
	if s.currentTime != currentTime {
		if s.currentPlayTimes != playTimes {
			if s.currentPlayTimes > 0 && playTimes > 1 {
				loopComplete = true
			}
			s.currentPlayTimes = playTimes
		}
		if s.currentTime < 0 {
			start = true
		}
		if complete && !s.isComplete {
			completed = true
		}
		s.isComplete = complete
		s.lastTime = s.currentTime
		s.currentTime = currentTime
		s.updateMainTimeline(complete)
	}

	progress := 0.0
	if total > 0 {
		progress = s.time * 1000 / total
	}
	for _, ts := range s.timelineStates {
		ts.update(progress)
	}

	if start {
		s.queueEvent(EventStart)
	}
	if loopComplete {
		s.queueEvent(EventLoopComplete)
	}
	if completed {
		s.queueEvent(EventComplete)
		if s.AutoFadeOut {
			s.FadeOut(s.FadeOutTime, true)
		}
	}
}

// updateMainTimeline walks the clip-level frames carrying events and actions.
func (s *AnimationState) updateMainTimeline(complete bool) {
	frames := s.clip.Frames
	if len(frames) == 0 {
		return
	}
	at := func(i int) *FrameResource { return frames[i] }
	landed := s.cursor.seek(s.currentTime, s.lastTime, complete, len(frames), at, func(i int) {
		s.armature.arriveAtFrame(frames[i], s)
	})
	if landed >= 0 {
		s.armature.arriveAtFrame(frames[landed], s)
	}
}

func (s *AnimationState) queueEvent(t EventType) {
	s.armature.queueEvent(Event{Type: t, State: s})
}

// hideBones clears the slots of the bones this clip does not animate,
// restricted to the bone mask when one is set.
func (s *AnimationState) hideBones() {
	if !s.DisplayControl {
		return
	}
	for _, b := range s.armature.bones {
		if s.clip.Timeline(b.name) == nil && s.ContainsBoneMask(b.name) {
			b.hideSlots()
		}
	}
}

// updateTimelineStates reconciles the owned timeline states with the clip
// and the bone mask.
func (s *AnimationState) updateTimelineStates() {
	if len(s.boneMasks) > 0 {
		s.timelineStates = slices.DeleteFunc(s.timelineStates, func(ts *TimelineState) bool {
			if s.ContainsBoneMask(ts.Name()) {
				return false
			}
			timelineStatePool.put(ts)
			return true
		})
	}
	for _, tl := range s.clip.Timelines {
		if !s.ContainsBoneMask(tl.Name) {
			continue
		}
		if slices.ContainsFunc(s.timelineStates, func(ts *TimelineState) bool { return ts.timeline == tl }) {
			continue
		}
		bone := s.armature.Bone(tl.Name)
		if bone == nil {
			continue
		}
		ts := timelineStatePool.get()
		ts.fadeIn(bone, s, tl)
		s.timelineStates = append(s.timelineStates, ts)
	}
}

// ContainsBoneMask reports whether the state affects the named bone. An
// empty mask affects every bone.
func (s *AnimationState) ContainsBoneMask(name string) bool {
	return len(s.boneMasks) == 0 || slices.Contains(s.boneMasks, name)
}

// AddBoneMask restricts the state to the named bone (and, when recursive,
// its descendants) in addition to any bones already masked. Unknown bones
// are ignored.
func (s *AnimationState) AddBoneMask(name string, recursive bool) {
	bone := s.armature.Bone(name)
	if bone == nil {
		debugWarnf("bone mask: no bone %q in armature %q", name, s.armature.name)
		return
	}
	if !slices.Contains(s.boneMasks, name) {
		s.boneMasks = append(s.boneMasks, name)
	}
	if recursive {
		for _, b := range s.armature.bones {
			if b != bone && bone.Contains(b) && !slices.Contains(s.boneMasks, b.name) {
				s.boneMasks = append(s.boneMasks, b.name)
			}
		}
	}
	s.updateTimelineStates()
}

// RemoveBoneMask removes the named bone (and, when recursive, its
// descendants) from the mask.
func (s *AnimationState) RemoveBoneMask(name string, recursive bool) {
	s.boneMasks = slices.DeleteFunc(s.boneMasks, func(n string) bool { return n == name })
	if recursive {
		if bone := s.armature.Bone(name); bone != nil {
			s.boneMasks = slices.DeleteFunc(s.boneMasks, func(n string) bool {
				b := s.armature.Bone(n)
				return b != nil && bone.Contains(b)
			})
		}
	}
	s.updateTimelineStates()
}

// RemoveAllBoneMasks makes the state affect every bone again.
func (s *AnimationState) RemoveAllBoneMasks() {
	s.boneMasks = s.boneMasks[:0]
	s.updateTimelineStates()
}

// BoneMasks returns the masked bone names. The slice must not be modified.
func (s *AnimationState) BoneMasks() []string { return s.boneMasks }

// Name returns the clip name.
func (s *AnimationState) Name() string {
	if s.clip == nil {
		return ""
	}
	return s.clip.Name
}

// Clip returns the clip resource being played.
func (s *AnimationState) Clip() *AnimationResource { return s.clip }

// Layer returns the blend layer; higher layers take priority.
func (s *AnimationState) Layer() int { return s.layer }

// Group returns the fade-out group.
func (s *AnimationState) Group() string { return s.group }

// Weight returns the user weight.
func (s *AnimationState) Weight() float64 { return s.weight }

// SetWeight sets the user weight; NaN and negative values become 0.
func (s *AnimationState) SetWeight(w float64) {
	if math.IsNaN(w) || w < 0 {
		w = 0
	}
	s.weight = w
}

// TimeScale returns the state's speed multiplier.
func (s *AnimationState) TimeScale() float64 { return s.timeScale }

// SetTimeScale sets the speed multiplier; NaN, negative and infinite values
// become 1.
func (s *AnimationState) SetTimeScale(v float64) {
	if math.IsNaN(v) || v < 0 || math.IsInf(v, 0) {
		v = 1
	}
	s.timeScale = v
}

// PlayTimes returns the play count: 0 loops forever.
func (s *AnimationState) PlayTimes() int { return s.playTimes }

// SetPlayTimes sets the play count. 0 loops forever, N plays N times and
// -N plays N times then fades out automatically. Clips with fewer than two
// frames, and plays requested with zero duration, play once.
func (s *AnimationState) SetPlayTimes(v int) {
	switch {
	case s.singlePlay:
		if v < 0 {
			s.playTimes = -1
		} else {
			s.playTimes = 1
		}
	case v < 0:
		s.playTimes = -v
	default:
		s.playTimes = v
	}
	s.AutoFadeOut = v < 0
}

// releaseTimelineStates detaches the state from its bones.
func (s *AnimationState) releaseTimelineStates() {
	for _, ts := range s.timelineStates {
		timelineStatePool.put(ts)
	}
	clear(s.timelineStates)
	s.timelineStates = s.timelineStates[:0]
}

// CurrentTime returns the playhead within the current loop, in seconds.
func (s *AnimationState) CurrentTime() float64 {
	return max(s.currentTime, 0) * 0.001
}

// SetCurrentTime moves the playhead to t seconds from the start of the first
// play; NaN and negative values become 0.
func (s *AnimationState) SetCurrentTime(t float64) {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	s.time = t
}

// TotalTime returns the clip duration in seconds.
func (s *AnimationState) TotalTime() float64 { return float64(s.totalTime) * 0.001 }

// CurrentPlayTimes returns the 1-based index of the play in progress.
func (s *AnimationState) CurrentPlayTimes() int { return s.currentPlayTimes }

// IsComplete reports whether the final play has finished.
func (s *AnimationState) IsComplete() bool { return s.isComplete }

// IsPlaying reports whether the playhead is moving and not complete.
func (s *AnimationState) IsPlaying() bool { return s.isPlaying && !s.isComplete }

// Play resumes the playhead.
func (s *AnimationState) Play() { s.isPlaying = true }

// Stop pauses the playhead; the state keeps contributing its current pose.
func (s *AnimationState) Stop() { s.isPlaying = false }

// FadeWeight returns the current fade ramp value in [0, 1].
func (s *AnimationState) FadeWeight() float64 { return s.fadeWeight }

// FadeState returns the progress of the current fade segment.
func (s *AnimationState) FadeState() FadeState { return s.fadeState }

// IsFadeOut reports whether the state is fading out.
func (s *AnimationState) IsFadeOut() bool { return s.isFadeOut }

// TimelineStates returns the per-bone evaluators. The slice must not be
// modified.
func (s *AnimationState) TimelineStates() []*TimelineState { return s.timelineStates }

func (s *AnimationState) tweenEnabled() bool {
	return s.armature == nil || s.armature.animation.TweenEnabled
}

func (s *AnimationState) clear() {
	s.releaseTimelineStates()
	*s = AnimationState{
		poolEntry:      s.poolEntry,
		timelineStates: s.timelineStates[:0],
		boneMasks:      s.boneMasks[:0],
	}
}
