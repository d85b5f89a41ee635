package bones

import (
	"math"
	"testing"
)

func TestFadeStateString(t *testing.T) {
	for s, want := range map[FadeState]string{FadeBefore: "before", Fading: "fading", FadeComplete: "complete", 7: "unknown"} {
		if got := s.String(); got != want {
			t.Errorf("FadeState(%d).String() = %q, want %q", s, got, want)
		}
	}
}

func TestStateFadeInScenario(t *testing.T) {
	r := newTestRig(testClip("wave", 1000, 1, tweenTimeline("root", 1000, tx(0), tx(100))))
	log := recordEvents(r.arm)
	s := r.arm.Animation().GotoAndPlay("wave", WithFadeIn(0.2), WithPauseFadeIn(false))

	r.arm.AdvanceTime(0.1)
	assertNearTol(t, "fade weight", s.FadeWeight(), 0.5, 1e-9)
	if s.IsComplete() {
		t.Fatal("complete after 100 ms")
	}
	if s.FadeState() != Fading {
		t.Errorf("fade state = %v, want fading", s.FadeState())
	}

	r.arm.AdvanceTime(0.4)
	r.arm.AdvanceTime(0.5)
	if !s.IsComplete() {
		t.Fatal("not complete after 1000 ms")
	}
	if n := log.count(EventComplete); n != 1 {
		t.Errorf("complete events = %d, want 1", n)
	}

	for range 10 {
		r.arm.AdvanceTime(0.25)
	}
	if n := log.count(EventComplete); n != 1 {
		t.Errorf("complete events after extra ticks = %d, want 1", n)
	}
	if n := log.count(EventStart); n != 1 {
		t.Errorf("start events = %d, want 1", n)
	}
	assertNear(t, "root.X at end", r.root.Global().X, 100)
}

func TestStateLoopForeverNeverCompletes(t *testing.T) {
	r := newTestRig(testClip("idle", 1000, 0, tweenTimeline("root", 1000, tx(0), tx(100))))
	log := recordEvents(r.arm)
	s := r.arm.Animation().GotoAndPlay("idle", WithFadeIn(0))

	elapsed := 0.0
	for i := range 400 {
		r.arm.AdvanceTime(0.25)
		elapsed += 0.25
		if s.IsComplete() {
			t.Fatalf("complete after %v s", elapsed)
		}
		want := math.Mod(elapsed, 1)
		if math.Abs(s.CurrentTime()-want) > 1e-9 {
			t.Fatalf("tick %d: CurrentTime = %v, want %v", i, s.CurrentTime(), want)
		}
	}
	if log.count(EventComplete) != 0 {
		t.Error("COMPLETE fired for an endless loop")
	}
	if got := log.count(EventLoopComplete); got != 99 {
		t.Errorf("loop complete events = %d, want 99", got)
	}
}

func TestStatePlayTimesCompletesOnce(t *testing.T) {
	r := newTestRig(testClip("swing", 1000, 3, tweenTimeline("root", 1000, tx(0), tx(100))))
	log := recordEvents(r.arm)
	s := r.arm.Animation().GotoAndPlay("swing", WithFadeIn(0))

	for range 11 {
		r.arm.AdvanceTime(0.25)
	}
	if s.IsComplete() {
		t.Fatal("complete before 3 plays")
	}
	if s.CurrentPlayTimes() != 3 {
		t.Errorf("CurrentPlayTimes = %d, want 3", s.CurrentPlayTimes())
	}
	r.arm.AdvanceTime(0.25)
	if !s.IsComplete() {
		t.Fatal("not complete after 3 plays")
	}
	for range 8 {
		r.arm.AdvanceTime(0.25)
	}
	if n := log.count(EventComplete); n != 1 {
		t.Errorf("complete events = %d, want 1", n)
	}
	if n := log.count(EventLoopComplete); n != 2 {
		t.Errorf("loop complete events = %d, want 2", n)
	}
	assertNear(t, "CurrentTime", s.CurrentTime(), 1)
}

func TestStateFadeWeightMonotonic(t *testing.T) {
	r := newTestRig(testClip("walk", 1000, 0, tweenTimeline("root", 1000, tx(0), tx(100))))
	an := r.arm.Animation()
	s := an.GotoAndPlay("walk", WithFadeIn(1))

	if s.FadeWeight() != 0 {
		t.Fatalf("initial fade weight = %v, want 0", s.FadeWeight())
	}
	prev := 0.0
	for range 25 {
		r.arm.AdvanceTime(0.05)
		w := s.FadeWeight()
		if w < prev {
			t.Fatalf("fade-in weight decreased: %v -> %v", prev, w)
		}
		prev = w
	}
	if prev != 1 {
		t.Fatalf("fade-in ended at %v, want 1", prev)
	}
	if s.FadeState() != FadeComplete {
		t.Errorf("fade state = %v, want complete", s.FadeState())
	}

	s.FadeOut(1, false)
	if !s.IsFadeOut() || s.FadeState() != FadeBefore {
		t.Fatal("FadeOut did not start a fade-out segment")
	}
	for an.HasState("walk", 0) {
		w := s.FadeWeight()
		if w > prev {
			t.Fatalf("fade-out weight increased: %v -> %v", prev, w)
		}
		prev = w
		r.arm.AdvanceTime(0.05)
	}
	if prev > 0.05+1e-9 {
		t.Errorf("last observed fade-out weight = %v, want near 0", prev)
	}
}

func TestStateFadeOutKeepsLongerFade(t *testing.T) {
	r := newTestRig(testClip("walk", 1000, 0, tweenTimeline("root", 1000, tx(0), tx(100))))
	s := r.arm.Animation().GotoAndPlay("walk", WithFadeIn(0))
	r.arm.AdvanceTime(0.1)

	s.FadeOut(0.5, false)
	assertNear(t, "remaining", s.RemainingFadeTime(), 0.5)
	s.FadeOut(0.3, false)
	assertNear(t, "remaining after shorter fadeOut", s.RemainingFadeTime(), 0.5)

	r.arm.AdvanceTime(0.125)
	assertNear(t, "remaining after tick", s.RemainingFadeTime(), 0.375)
	s.FadeOut(0.3, false)
	assertNear(t, "remaining after second shorter fadeOut", s.RemainingFadeTime(), 0.375)

	// a longer request restarts the fade from the current weight
	s.FadeOut(1, false)
	assertNear(t, "remaining after longer fadeOut", s.RemainingFadeTime(), 1)
}

func TestStateRemainingFadeTimeZeroScale(t *testing.T) {
	r := newTestRig(testClip("walk", 1000, 0))
	s := r.arm.Animation().GotoAndPlay("walk", WithFadeIn(0.5))
	s.SetTimeScale(0)
	if got := s.RemainingFadeTime(); got != 0 {
		t.Errorf("RemainingFadeTime = %v, want 0 at time scale 0", got)
	}
	r.arm.AdvanceTime(0.1)
	if math.IsNaN(s.RemainingFadeTime()) {
		t.Error("RemainingFadeTime is NaN after a tick at time scale 0")
	}
}

func TestStateAutoFadeOut(t *testing.T) {
	r := newTestRig(testClip("jump", 1000, 1, tweenTimeline("root", 1000, tx(0), tx(100))))
	log := recordEvents(r.arm)
	an := r.arm.Animation()
	s := an.GotoAndPlay("jump", WithFadeIn(0), WithPlayTimes(-1))
	if s.PlayTimes() != 1 || !s.AutoFadeOut {
		t.Fatalf("PlayTimes = %d AutoFadeOut = %v, want 1 true", s.PlayTimes(), s.AutoFadeOut)
	}

	r.arm.AdvanceTime(1)
	if !s.IsFadeOut() {
		t.Fatal("state did not fade out on completion")
	}
	r.arm.AdvanceTime(0.1)
	if an.HasState("jump", 0) {
		t.Error("state still registered after its fade-out")
	}
	if an.LastState() != nil {
		t.Error("LastState should be cleared")
	}
	for _, want := range []EventType{EventComplete, EventFadeOut, EventFadeOutComplete} {
		if log.count(want) != 1 {
			t.Errorf("%v events = %d, want 1", want, log.count(want))
		}
	}
}

func TestStateEventOrder(t *testing.T) {
	r := newTestRig(testClip("walk", 1000, 0, tweenTimeline("root", 1000, tx(0), tx(100))))
	r.arm.AdvanceTime(0)
	log := recordEvents(r.arm)
	r.arm.Animation().GotoAndPlay("walk", WithFadeIn(0))
	if len(log.events) != 0 {
		t.Fatal("events delivered before the tick")
	}
	r.arm.AdvanceTime(0)

	want := []EventType{EventFadeIn, EventFadeInComplete, EventStart}
	got := log.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
	if log.events[2].Animation != "walk" || log.events[2].Armature != r.arm {
		t.Errorf("start event = %+v", log.events[2])
	}
}

func TestStatePauseFadeInHoldsPlayhead(t *testing.T) {
	r := newTestRig(testClip("walk", 1000, 0, tweenTimeline("root", 1000, tx(0), tx(100))))
	s := r.arm.Animation().GotoAndPlay("walk", WithFadeIn(0.5))
	r.arm.AdvanceTime(0.25)
	assertNear(t, "time during fade", s.CurrentTime(), 0)

	r.arm.AdvanceTime(0.25)
	r.arm.AdvanceTime(0.25)
	if s.CurrentTime() <= 0 {
		t.Error("playhead did not resume after the fade-in")
	}
}

func TestStateTimeScale(t *testing.T) {
	r := newTestRig(testClip("walk", 1000, 0, tweenTimeline("root", 1000, tx(0), tx(100))))
	s := r.arm.Animation().GotoAndPlay("walk", WithFadeIn(0))
	s.SetTimeScale(2)
	r.arm.AdvanceTime(0.25)
	assertNear(t, "CurrentTime", s.CurrentTime(), 0.5)
	assertNear(t, "root.X", r.root.Global().X, 50)

	for _, bad := range []float64{math.NaN(), -1, math.Inf(1)} {
		s.SetTimeScale(bad)
		if s.TimeScale() != 1 {
			t.Errorf("SetTimeScale(%v) = %v, want 1", bad, s.TimeScale())
		}
	}
}

func TestStateDurationOption(t *testing.T) {
	r := newTestRig(testClip("walk", 1000, 0, tweenTimeline("root", 1000, tx(0), tx(100))))
	s := r.arm.Animation().GotoAndPlay("walk", WithFadeIn(0), WithDuration(2))
	assertNear(t, "TimeScale", s.TimeScale(), 0.5)
	r.arm.AdvanceTime(1)
	assertNear(t, "root.X", r.root.Global().X, 50)
}

func TestStateZeroDurationJumpsToEnd(t *testing.T) {
	r := newTestRig(testClip("walk", 1000, 0, tweenTimeline("root", 1000, tx(0), tx(100))))
	log := recordEvents(r.arm)
	s := r.arm.Animation().GotoAndPlay("walk", WithFadeIn(0), WithDuration(0))
	if s.PlayTimes() != 1 {
		t.Errorf("PlayTimes = %d, want 1", s.PlayTimes())
	}

	r.arm.AdvanceTime(0.016)
	if !s.IsComplete() {
		t.Fatal("zero-duration play should complete on the first tick")
	}
	assertNear(t, "CurrentTime", s.CurrentTime(), 1)
	assertNear(t, "root.X", r.root.Global().X, 100)
	if log.count(EventStart) != 1 || log.count(EventComplete) != 1 {
		t.Errorf("events = %v, want one start and one complete", log.types())
	}
}

func TestStateShortClipJumpsToEnd(t *testing.T) {
	r := newTestRig(testClip("blip", 10, 0, tweenTimeline("root", 10, tx(0), tx(40))))
	s := r.arm.Animation().GotoAndPlay("blip", WithFadeIn(0))
	r.arm.AdvanceTime(0.001)
	if !s.IsComplete() {
		t.Fatal("single-frame clip should complete on the first tick")
	}
	assertNear(t, "root.X", r.root.Global().X, 40)
}

func TestStateWeightClamp(t *testing.T) {
	r := newTestRig(testClip("walk", 1000, 0))
	s := r.arm.Animation().GotoAndPlay("walk")
	s.SetWeight(math.NaN())
	if s.Weight() != 0 {
		t.Errorf("Weight = %v, want 0", s.Weight())
	}
	s.SetWeight(-3)
	if s.Weight() != 0 {
		t.Errorf("Weight = %v, want 0", s.Weight())
	}
}

func TestStateSinglePlayForShortClips(t *testing.T) {
	r := newTestRig(testClip("blip", 10, 0))
	s := r.arm.Animation().GotoAndPlay("blip", WithPlayTimes(5))
	if s.PlayTimes() != 1 {
		t.Errorf("PlayTimes = %d, want 1 for a single-frame clip", s.PlayTimes())
	}
}

func TestStateBoneMask(t *testing.T) {
	r := newTestRig(testClip("both", 1000, 0,
		poseTimeline("root", 1000, tx(10)),
		poseTimeline("arm", 1000, tx(20))))
	s := r.arm.Animation().GotoAndPlay("both", WithFadeIn(0))
	if len(s.TimelineStates()) != 2 {
		t.Fatalf("timeline states = %d, want 2", len(s.TimelineStates()))
	}

	s.AddBoneMask("arm", false)
	if !s.ContainsBoneMask("arm") || s.ContainsBoneMask("root") {
		t.Error("mask membership wrong")
	}
	if len(s.TimelineStates()) != 1 || s.TimelineStates()[0].Name() != "arm" {
		t.Fatalf("masked timeline states = %d", len(s.TimelineStates()))
	}
	r.arm.AdvanceTime(0.1)
	assertNear(t, "root tween", r.root.Tween().X, 0)
	assertNear(t, "arm tween", r.child.Tween().X, 20)

	s.RemoveAllBoneMasks()
	if len(s.TimelineStates()) != 2 {
		t.Errorf("timeline states after clearing mask = %d, want 2", len(s.TimelineStates()))
	}

	s.AddBoneMask("root", true)
	if len(s.BoneMasks()) != 2 {
		t.Errorf("recursive mask = %v, want root and arm", s.BoneMasks())
	}
	s.RemoveBoneMask("root", true)
	if len(s.BoneMasks()) != 0 {
		t.Errorf("mask after recursive remove = %v", s.BoneMasks())
	}

	s.AddBoneMask("missing", false)
	if len(s.BoneMasks()) != 0 {
		t.Error("unknown bone added to the mask")
	}
}

func TestStateGotoAndStopSeeks(t *testing.T) {
	r := newTestRig(testClip("walk", 1000, 0, tweenTimeline("root", 1000, tx(0), tx(100))))
	s := r.arm.Animation().GotoAndStop("walk", 0.25)
	r.arm.AdvanceTime(0.5)
	assertNear(t, "CurrentTime", s.CurrentTime(), 0.25)
	assertNear(t, "root.X", r.root.Global().X, 25)
	if s.IsPlaying() {
		t.Error("stopped state reports playing")
	}
}

func TestStateAdditiveBlending(t *testing.T) {
	tl := poseTimeline("root", 1000, tx(5))
	tl.OriginTransform = tx(100)
	r := newTestRig(testClip("nudge", 1000, 0, tl))

	s := r.arm.Animation().GotoAndPlay("nudge", WithFadeIn(0))
	r.arm.AdvanceTime(0.1)
	assertNear(t, "with origin", r.root.Tween().X, 105)

	s = r.arm.Animation().GotoAndPlay("nudge", WithFadeIn(0))
	s.AdditiveBlending = true
	r.arm.AdvanceTime(0.1)
	r.arm.AdvanceTime(0.1)
	assertNear(t, "additive", r.root.Tween().X, 5)
}
