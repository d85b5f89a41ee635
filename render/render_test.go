package render

import (
	"math"
	"os"
	"slices"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/bones"
)

const heroAtlasJSON = `{
  "frames": {
    "torso":      {"frame": {"x": 0,  "y": 0, "w": 32, "h": 48}, "sourceSize": {"w": 32, "h": 48}},
    "torso_hurt": {"frame": {"x": 32, "y": 0, "w": 32, "h": 48}, "sourceSize": {"w": 32, "h": 48}},
    "sword":      {"frame": {"x": 64, "y": 0, "w": 48, "h": 16}, "rotated": true,
                   "spriteSourceSize": {"x": 1, "y": 2, "w": 16, "h": 48}, "sourceSize": {"w": 18, "h": 50}}
  }
}`

const near = 1e-9

func approx(a, b float64) bool { return math.Abs(a-b) < near }

func TestLoadAtlasHash(t *testing.T) {
	atlas, err := LoadAtlas([]byte(heroAtlasJSON), []*ebiten.Image{ebiten.NewImage(128, 64)})
	if err != nil {
		t.Fatalf("LoadAtlas: %v", err)
	}
	if atlas.Len() != 3 {
		t.Errorf("Len = %d, want 3", atlas.Len())
	}
	r, ok := atlas.Region("sword")
	if !ok || !r.Rotated || r.OffsetX != 1 || r.OffsetY != 2 || r.OriginalW != 18 {
		t.Errorf("sword region = %+v", r)
	}
	img, _, ok := atlas.SubImage("sword")
	if !ok {
		t.Fatal("sword sub-image not found")
	}
	// rotated regions are stored with width and height swapped
	if b := img.Bounds(); b.Dx() != 16 || b.Dy() != 48 {
		t.Errorf("sword bounds = %v", b)
	}
}

func TestLoadAtlasArray(t *testing.T) {
	data := `{"textures": [
		{"image": "a.png", "frames": {"one": {"frame": {"x": 0, "y": 0, "w": 8, "h": 8}}}},
		{"image": "b.png", "frames": {"two": {"frame": {"x": 8, "y": 0, "w": 8, "h": 8}}}}
	]}`
	atlas, err := LoadAtlas([]byte(data), []*ebiten.Image{ebiten.NewImage(16, 16), ebiten.NewImage(16, 16)})
	if err != nil {
		t.Fatal(err)
	}
	if r, ok := atlas.Region("two"); !ok || r.Page != 1 || r.X != 8 {
		t.Errorf("two = %+v", r)
	}
}

func TestLoadAtlasErrors(t *testing.T) {
	for _, data := range []string{`{`, `{"meta": {}}`, `{"frames": []}`, `{"textures": {}}`} {
		if _, err := LoadAtlas([]byte(data), nil); err == nil {
			t.Errorf("LoadAtlas(%s) succeeded", data)
		}
	}
}

func TestAtlasPlaceholder(t *testing.T) {
	atlas, err := LoadAtlas([]byte(`{"frames": {"far": {"frame": {"x": 0, "y": 0, "w": 4, "h": 4}}}}`), nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"missing", "far"} {
		img, r, ok := atlas.SubImage(name)
		if ok || img != placeholderImage() || r.Width != 1 {
			t.Errorf("%s: expected the placeholder", name)
		}
	}
}

func TestGeoMMatchesMatrix(t *testing.T) {
	for _, m := range []bones.Matrix{
		bones.IdentityMatrix,
		{2, 0, 0, 3, 10, 20},
		{1, 0.5, 0.25, 1, -4, 7},
		bones.Transform{X: 5, Y: -3, SkewX: 0.7, SkewY: 0.4, ScaleX: 1.5, ScaleY: 0.5}.Matrix(),
	} {
		g := GeoM(m)
		for _, p := range [][2]float64{{0, 0}, {2, 4}, {-1, 3}} {
			wx, wy := m.Apply(p[0], p[1])
			gx, gy := g.Apply(p[0], p[1])
			if math.Abs(wx-gx) > 1e-9 || math.Abs(wy-gy) > 1e-9 {
				t.Errorf("matrix %v point %v: GeoM (%v,%v), want (%v,%v)", m, p, gx, gy, wx, wy)
			}
		}
	}
}

func TestColorM(t *testing.T) {
	c := bones.IdentityColor
	c.RedMultiplier = 0.5
	c.AlphaMultiplier = 0.25
	c.RedOffset = 51
	cm := ColorM(c)
	if !approx(cm.Element(0, 0), 0.5) || !approx(cm.Element(3, 3), 0.25) {
		t.Error("multipliers not on the diagonal")
	}
	if !approx(cm.Element(0, 4), 0.2) {
		t.Errorf("red offset = %v, want 0.2", cm.Element(0, 4))
	}
}

func TestConcatColor(t *testing.T) {
	parent := bones.IdentityColor
	parent.AlphaMultiplier = 0.5
	parent.RedOffset = 10
	child := bones.IdentityColor
	child.AlphaMultiplier = 0.5
	child.RedMultiplier = 0.5
	child.RedOffset = 20

	got := concatColor(parent, child)
	if !approx(got.AlphaMultiplier, 0.25) || !approx(got.RedMultiplier, 0.5) || !approx(got.RedOffset, 30) {
		t.Errorf("concat = %+v", got)
	}
	if concatColor(bones.IdentityColor, child) != child {
		t.Error("identity parent should leave the child unchanged")
	}
}

func TestEbitenBlend(t *testing.T) {
	if EbitenBlend(bones.BlendNormal) != ebiten.BlendSourceOver {
		t.Error("normal")
	}
	if EbitenBlend(bones.BlendAdd) != ebiten.BlendLighter {
		t.Error("add")
	}
	if EbitenBlend(bones.BlendErase) != ebiten.BlendDestinationOut {
		t.Error("erase")
	}
	if EbitenBlend(bones.BlendNone) != ebiten.BlendCopy {
		t.Error("none")
	}
	if EbitenBlend(bones.BlendMultiply).BlendFactorSourceRGB != ebiten.BlendFactorDestinationColor {
		t.Error("multiply")
	}
}

func TestSpriteGeoM(t *testing.T) {
	s := NewSprite("s", nil, TextureRegion{Width: 10, Height: 10}, bones.Vec2{X: 2, Y: 3})
	s.SetTransform(bones.Matrix{1, 0, 0, 1, 10, 20})
	x, y := s.drawGeoM(ebiten.GeoM{}).Apply(2, 3)
	if !approx(x, 10) || !approx(y, 20) {
		t.Errorf("pivot lands at (%v,%v), want (10,20)", x, y)
	}

	rot := NewSprite("r", nil, TextureRegion{Width: 48, Height: 16, Rotated: true}, bones.Vec2{})
	x, y = rot.localGeoM().Apply(0, 0)
	if math.Abs(x) > 1e-9 || math.Abs(y-48) > 1e-9 {
		t.Errorf("rotated origin = (%v,%v), want (0,48)", x, y)
	}
}

func TestCanvasOrder(t *testing.T) {
	c := NewCanvas("c")
	a, b, d := NewSprite("a", nil, TextureRegion{}, bones.Vec2{}), NewSprite("b", nil, TextureRegion{}, bones.Vec2{}), NewCanvas("d")
	c.AddDisplay(a, 0)
	c.AddDisplay(b, 5)
	c.AddDisplay(d, 1)
	c.AddDisplay(nil, 0)
	if got := c.Children(); !slices.Equal(got, []bones.Display{a, d, b}) {
		t.Fatalf("children = %v", got)
	}
	c.AddDisplay(b, -1)
	if c.Children()[0] != b || len(c.Children()) != 3 {
		t.Error("AddDisplay should move an existing child")
	}
	c.RemoveDisplay(d)
	c.RemoveDisplay(d)
	if len(c.Children()) != 2 {
		t.Errorf("children = %d after remove, want 2", len(c.Children()))
	}
}

func buildHero(t *testing.T) (*bones.Armature, *Factory) {
	t.Helper()
	data, err := os.ReadFile("../testdata/hero.json")
	if err != nil {
		t.Fatal(err)
	}
	skel, err := bones.ParseSkeleton(data)
	if err != nil {
		t.Fatal(err)
	}
	atlas, err := LoadAtlas([]byte(heroAtlasJSON), []*ebiten.Image{ebiten.NewImage(128, 64)})
	if err != nil {
		t.Fatal(err)
	}
	f := NewFactory(atlas)
	return bones.BuildArmature(skel, "hero", f), f
}

func TestFactoryBuildsCanvasTree(t *testing.T) {
	arm, f := buildHero(t)
	root, ok := arm.Display().(*Canvas)
	if !ok {
		t.Fatalf("root display is %T, want *Canvas", arm.Display())
	}
	if !slices.Equal(f.Missing, []string{"pet_img"}) {
		t.Errorf("Missing = %v", f.Missing)
	}
	kids := root.Children()
	if len(kids) != 3 {
		t.Fatalf("root children = %d, want 3", len(kids))
	}
	if s, ok := kids[0].(*Sprite); !ok || s.Name != "torso" {
		t.Errorf("first child = %v", kids[0])
	}
	sword, ok := kids[1].(*Sprite)
	if !ok || sword.Name != "sword" || sword.BlendMode() != bones.BlendAdd {
		t.Errorf("second child = %v", kids[1])
	}
	if sword.Pivot != (bones.Vec2{X: 2, Y: 3}) {
		t.Errorf("sword pivot = %v", sword.Pivot)
	}
	if pet, ok := kids[2].(*Canvas); !ok || pet.Name != "pet" {
		t.Errorf("third child = %v", kids[2])
	}
}

func TestFactorySpritesFollowBones(t *testing.T) {
	arm, _ := buildHero(t)
	torso := arm.Display().(*Canvas).Children()[0].(*Sprite)
	arm.Animation().GotoAndPlay("walk", bones.WithFadeIn(0))
	arm.AdvanceTime(0.25)
	if m := torso.Matrix(); math.Abs(m[5]-(-22)) > 1e-9 {
		t.Errorf("torso ty = %v, want -22", m[5])
	}
}

func TestCanvasDraw(t *testing.T) {
	arm, _ := buildHero(t)
	arm.Animation().GotoAndPlay("attack", bones.WithFadeIn(0))
	arm.AdvanceTime(0.25)
	screen := ebiten.NewImage(64, 64)
	var geo ebiten.GeoM
	geo.Translate(32, 48)
	arm.Display().(*Canvas).Draw(screen, geo)

	hidden := NewCanvas("hidden")
	hidden.SetVisible(false)
	hidden.AddDisplay(NewSprite("x", screen, TextureRegion{}, bones.Vec2{}), 0)
	hidden.Draw(screen, geo)
}
