package bones

import (
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
)

func loadHero(t *testing.T) *SkeletonResource {
	t.Helper()
	data, err := os.ReadFile("testdata/hero.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	skel, err := ParseSkeleton(data)
	if err != nil {
		t.Fatalf("ParseSkeleton: %v", err)
	}
	return skel
}

func TestParseSkeletonArmatures(t *testing.T) {
	skel := loadHero(t)
	if skel.Name != "hero" || skel.FrameRate != 24 {
		t.Errorf("skeleton = %q @ %d", skel.Name, skel.FrameRate)
	}
	if len(skel.Armatures) != 2 || skel.Armature("pet") == nil || skel.Armature("nope") != nil {
		t.Fatal("armature lookup")
	}
}

func TestParseBonesParentFirst(t *testing.T) {
	a := loadHero(t).Armature("hero")
	var order []string
	for _, b := range a.Bones {
		order = append(order, b.Name)
	}
	if strings.Join(order, ",") != "root,body,arm" {
		t.Errorf("bone order = %v, want root,body,arm", order)
	}

	arm := a.Bone("arm")
	assertNear(t, "arm.SkewX", arm.Transform.SkewX, math.Pi/2)
	assertNear(t, "arm.X", arm.Transform.X, 10)
	assertNear(t, "arm.ScaleX", arm.Transform.ScaleX, 1)
	if arm.InheritScale || !arm.InheritRotation {
		t.Errorf("arm inherit flags = rotation %v scale %v", arm.InheritRotation, arm.InheritScale)
	}
	if arm.Length != 30 {
		t.Errorf("arm.Length = %v", arm.Length)
	}
}

func TestParseSlotsAndDisplays(t *testing.T) {
	skin := loadHero(t).Armature("hero").Skin("")
	if skin == nil || len(skin.Slots) != 3 {
		t.Fatal("default skin missing")
	}
	weapon := skin.Slots[1]
	if weapon.Parent != "arm" || weapon.BlendMode != BlendAdd || weapon.ZOrder != 1 {
		t.Errorf("weapon slot = %+v", weapon)
	}
	sword := weapon.Displays[0]
	assertNear(t, "sword.X", sword.Transform.X, 5)
	if sword.Pivot != (Vec2{X: 2, Y: 3}) || sword.Kind != DisplayImage {
		t.Errorf("sword display = %+v", sword)
	}
	if skin.Slots[2].Displays[0].Kind != DisplayArmature {
		t.Error("pet display should be an armature")
	}
}

func TestParseAnimationTiming(t *testing.T) {
	a := loadHero(t).Armature("hero")
	walk := a.Animation("walk")
	if walk.Duration != 1000 || walk.PlayTimes != 0 || walk.FrameRate != 24 {
		t.Errorf("walk = duration %d playTimes %d", walk.Duration, walk.PlayTimes)
	}
	assertNear(t, "walk.FadeInTime", walk.FadeInTime, 0.2)
	if len(walk.Frames) != 2 || walk.Frames[1].Position != 500 || walk.Frames[1].Event != "step" {
		t.Errorf("walk frames = %+v", walk.Frames)
	}

	attack := a.Animation("attack")
	if attack.Duration != 417 {
		t.Errorf("attack.Duration = %d, want round(10*1000/24)", attack.Duration)
	}
	if attack.PlayTimes != 1 || attack.FadeInTime >= 0 || attack.AutoTween || !math.IsNaN(attack.TweenEasing) {
		t.Errorf("attack defaults = %+v", attack)
	}
}

func TestParseTimelineFrames(t *testing.T) {
	tl := loadHero(t).Armature("hero").Animation("attack").Timeline("arm")
	if tl == nil || len(tl.Frames) != 3 {
		t.Fatal("arm timeline missing")
	}
	f0, f1, f2 := tl.Frames[0], tl.Frames[1], tl.Frames[2]
	if f0.Position != 0 || f1.Position != 208 || f2.Position != 417 {
		t.Errorf("positions = %d %d %d", f0.Position, f1.Position, f2.Position)
	}
	if f0.TweenEasing != 0 || f0.TweenRotate != 1 {
		t.Errorf("frame 0 easing %v rotate %d", f0.TweenEasing, f0.TweenRotate)
	}
	if !math.IsNaN(f1.TweenEasing) {
		t.Error("null tweenEasing should hold the frame")
	}
	if f1.Color == nil || f1.Color.AlphaMultiplier != 0.5 || f1.Color.RedOffset != 40 || f1.Color.RedMultiplier != 1 {
		t.Errorf("frame 1 color = %+v", f1.Color)
	}
	if f0.Color != nil {
		t.Error("frame without color should have nil Color")
	}
	if f2.DisplayIndex != -1 || f2.Event != "sheathe" {
		t.Errorf("frame 2 = %+v", f2)
	}

	body := loadHero(t).Armature("hero").Animation("attack").Timeline("body").Frames[0]
	if body.Visible || body.ZOrder != 3 || body.TweenScale {
		t.Errorf("body frame = visible %v z %v tweenScale %v", body.Visible, body.ZOrder, body.TweenScale)
	}
}

func TestParseFrameDurationsSumToClipDuration(t *testing.T) {
	for _, rate := range []int{7, 24, 30, 60} {
		for _, split := range [][]int{{1}, {3, 4, 5}, {1, 1, 1, 1, 1, 1, 1}, {10, 0, 13}} {
			total := 0
			var frames []string
			for _, d := range split {
				total += d
				frames = append(frames, `{"duration":`+strconv.Itoa(d)+`}`)
			}
			data := `{"frameRate":` + strconv.Itoa(rate) + `,"armature":[{"name":"a","bone":[{"name":"b"}],
				"animation":[{"name":"c","duration":` + strconv.Itoa(total) + `,
				"frame":[` + strings.Join(frames, ",") + `],
				"timeline":[{"name":"b","frame":[` + strings.Join(frames, ",") + `]}]}]}]}`
			skel, err := ParseSkeleton([]byte(data))
			if err != nil {
				t.Fatalf("rate %d: %v", rate, err)
			}
			clip := skel.Armatures[0].Animations[0]
			sum := 0
			for _, f := range clip.Timelines[0].Frames {
				sum += f.Duration
			}
			if sum != clip.Duration {
				t.Errorf("rate %d split %v: timeline sum %d != duration %d", rate, split, sum, clip.Duration)
			}
			sum = 0
			for _, f := range clip.Frames {
				sum += f.Duration
			}
			if sum != clip.Duration {
				t.Errorf("rate %d split %v: frame sum %d != duration %d", rate, split, sum, clip.Duration)
			}
		}
	}
}

func TestParseDefaultFrameRate(t *testing.T) {
	skel, err := ParseSkeleton([]byte(`{"armature":[{"name":"a","animation":[{"name":"c","duration":12}]}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if skel.FrameRate != DefaultFrameRate || skel.Armatures[0].Animations[0].Duration != 500 {
		t.Errorf("default rate: %d, duration %d", skel.FrameRate, skel.Armatures[0].Animations[0].Duration)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"bad json", `{`, "failed to parse"},
		{"unknown parent", `{"armature":[{"name":"a","bone":[{"name":"b","parent":"x"}]}]}`, "unknown parent"},
		{"bone cycle", `{"armature":[{"name":"a","bone":[{"name":"b","parent":"c"},{"name":"c","parent":"b"}]}]}`, "cycle"},
		{"duplicate bone", `{"armature":[{"name":"a","bone":[{"name":"b"},{"name":"b"}]}]}`, "duplicate bone"},
		{"duplicate armature", `{"armature":[{"name":"a"},{"name":"a"}]}`, "duplicate armature"},
		{"blend mode", `{"armature":[{"name":"a","bone":[{"name":"b"}],"skin":[{"slot":[{"name":"s","parent":"b","blendMode":"glow"}]}]}]}`, "blend mode"},
		{"display type", `{"armature":[{"name":"a","bone":[{"name":"b"}],"skin":[{"slot":[{"name":"s","parent":"b","display":[{"name":"d","type":"mesh"}]}]}]}]}`, "unknown type"},
		{"slot parent", `{"armature":[{"name":"a","bone":[{"name":"b"}],"skin":[{"slot":[{"name":"s","parent":"x"}]}]}]}`, "unknown parent bone"},
		{"timeline bone", `{"armature":[{"name":"a","animation":[{"name":"c","timeline":[{"name":"x"}]}]}]}`, "unknown bone"},
		{"duplicate clip", `{"armature":[{"name":"a","animation":[{"name":"c"},{"name":"c"}]}]}`, "duplicate animation"},
		{"flag", `{"armature":[{"name":"a","bone":[{"name":"b","inheritScale":"yes"}]}]}`, "invalid flag"},
		{"easing", `{"armature":[{"name":"a","animation":[{"name":"c","tweenEasing":"fast"}]}]}`, "tweenEasing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSkeleton([]byte(tt.json))
			if err == nil {
				t.Fatal("expected an error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestResourceSkinFallback(t *testing.T) {
	a := &ArmatureResource{Skins: []*SkinResource{{Name: "red"}, {Name: "blue"}}}
	if a.Skin("") != a.Skins[0] {
		t.Error("empty skin name should select the first skin")
	}
	if a.Skin("blue") != a.Skins[1] || a.Skin("green") != nil {
		t.Error("named skin lookup")
	}
}
