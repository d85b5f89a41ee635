package main

import (
	"errors"
	"fmt"
	"image/color"
	_ "image/png"
	"log"
	"math"
	"os"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tanema/gween/ease"

	"github.com/phanxgames/bones"
	"github.com/phanxgames/bones/render"
)

type options struct {
	skeleton   string
	armature   string
	atlas      string
	atlasImage string
	presets    string
	preset     string
	scale      float64
}

// viewer is the ebiten.Game showing one armature.
type viewer struct {
	opts options

	skel    *bones.SkeletonResource
	arm     *bones.Armature
	canvas  *render.Canvas
	presets *bones.PlaybackConfig
	clock   *bones.Clock
	camera  *render.Camera
	shots   render.Screenshots
	missing []string

	dragging     bool
	dragX, dragY int

	clip   int
	preset int
	status string

	watch *watcher
}

func newViewer(opts options) (*viewer, error) {
	v := &viewer{
		opts:   opts,
		clock:  bones.NewClock(),
		camera: render.NewCamera(960, 720),
		shots:  render.Screenshots{Dir: "screenshots"},
	}
	v.camera.Zoom = opts.scale
	if v.camera.Zoom <= 0 {
		v.camera.Zoom = 1
	}
	if err := v.load(); err != nil {
		return nil, err
	}
	return v, nil
}

// load reads every input file and rebuilds the armature. On error the
// previous armature keeps playing.
func (v *viewer) load() error {
	data, err := os.ReadFile(v.opts.skeleton)
	if err != nil {
		return err
	}
	skel, err := bones.ParseSkeleton(data)
	if err != nil {
		return err
	}
	name := v.opts.armature
	if name == "" {
		if len(skel.Armatures) == 0 {
			return errors.New("skeleton has no armatures")
		}
		name = skel.Armatures[0].Name
	}
	if skel.Armature(name) == nil {
		return fmt.Errorf("skeleton has no armature %q", name)
	}

	atlas, err := v.loadAtlas()
	if err != nil {
		return err
	}

	var presets *bones.PlaybackConfig
	if v.opts.presets != "" {
		data, err := os.ReadFile(v.opts.presets)
		if err != nil {
			return err
		}
		if presets, err = bones.LoadPlaybackConfig(data); err != nil {
			return err
		}
	}

	factory := render.NewFactory(atlas)
	arm := bones.BuildArmature(skel, name, factory)
	if v.arm != nil {
		v.clock.Remove(v.arm)
		v.arm.Dispose()
	}
	v.skel = skel
	v.arm = arm
	v.canvas = arm.Display().(*render.Canvas)
	v.presets = presets
	v.missing = factory.Missing
	v.clock.Add(arm)
	v.start()
	return nil
}

func (v *viewer) loadAtlas() (*render.Atlas, error) {
	if v.opts.atlas == "" {
		return nil, nil
	}
	data, err := os.ReadFile(v.opts.atlas)
	if err != nil {
		return nil, err
	}
	imgPath := v.opts.atlasImage
	if imgPath == "" {
		imgPath = v.opts.atlas[:len(v.opts.atlas)-len(filepath.Ext(v.opts.atlas))] + ".png"
	}
	page, _, err := ebitenutil.NewImageFromFile(imgPath)
	if err != nil {
		return nil, err
	}
	return render.LoadAtlas(data, []*ebiten.Image{page})
}

// start plays the selected preset, or the selected clip when no presets
// are loaded.
func (v *viewer) start() {
	if v.presets != nil && len(v.presets.Presets) > 0 {
		names := v.presets.Names()
		if v.opts.preset != "" {
			for i, n := range names {
				if n == v.opts.preset {
					v.preset = i
				}
			}
			v.opts.preset = ""
		}
		v.preset %= len(names)
		if _, err := v.arm.Animation().PlayPreset(v.presets, names[v.preset]); err != nil {
			v.status = err.Error()
			return
		}
		v.status = "preset " + names[v.preset]
		return
	}
	clips := v.arm.Animation().AnimationNames()
	if len(clips) == 0 {
		v.status = "no animations"
		return
	}
	v.clip = (v.clip%len(clips) + len(clips)) % len(clips)
	v.arm.Animation().GotoAndPlay(clips[v.clip])
	v.status = "clip " + clips[v.clip]
}

func (v *viewer) pollReload() {
	if v.watch == nil {
		return
	}
	for {
		select {
		case name := <-v.watch.Events:
			if err := v.load(); err != nil {
				log.Printf("bonesview: reload %s: %v", name, err)
				v.status = "reload failed: " + err.Error()
			} else {
				log.Printf("bonesview: reloaded %s", name)
			}
		case err := <-v.watch.Errors:
			log.Printf("bonesview: watcher: %v", err)
		default:
			return
		}
	}
}

func (v *viewer) Update() error {
	v.pollReload()

	an := v.arm.Animation()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyRight), inpututil.IsKeyJustPressed(ebiten.KeySpace):
		v.clip++
		v.preset++
		v.start()
	case inpututil.IsKeyJustPressed(ebiten.KeyLeft):
		v.clip--
		v.preset += len(v.presetNames()) - 1
		v.start()
	case inpututil.IsKeyJustPressed(ebiten.KeyUp):
		an.TimeScale += 0.25
	case inpututil.IsKeyJustPressed(ebiten.KeyDown):
		an.TimeScale = max(an.TimeScale-0.25, 0)
	case inpututil.IsKeyJustPressed(ebiten.KeyS):
		v.shots.Queue(v.arm.Name() + "_" + v.status)
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		if an.IsPlaying() {
			an.Stop()
		} else {
			an.Play()
		}
	}

	v.updateCamera()
	dt := 1 / float64(ebiten.TPS())
	v.clock.AdvanceTime(dt)
	v.camera.Update(float32(dt))
	return nil
}

// updateCamera handles wheel zoom, right-button panning and F to follow the
// root bone.
func (v *viewer) updateCamera() {
	mx, my := ebiten.CursorPosition()
	if _, wy := ebiten.Wheel(); wy != 0 {
		v.camera.ZoomAt(math.Pow(1.1, wy), float64(mx), float64(my))
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		v.dragging = true
		v.camera.Unfollow()
	}
	if v.dragging {
		if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
			v.dragging = false
		} else {
			v.camera.X -= float64(mx-v.dragX) / v.camera.Zoom
			v.camera.Y -= float64(my-v.dragY) / v.camera.Zoom
		}
	}
	v.dragX, v.dragY = mx, my

	if inpututil.IsKeyJustPressed(ebiten.KeyF) {
		if bs := v.arm.Bones(); len(bs) > 0 {
			v.camera.Follow(bs[0], 0, 0, 0.1)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		v.camera.Unfollow()
		v.camera.ScrollTo(0, 0, 0.3, ease.OutQuad)
	}
}

func (v *viewer) presetNames() []string {
	if v.presets == nil {
		return nil
	}
	return v.presets.Names()
}

func (v *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{R: 26, G: 26, B: 38, A: 255})
	b := screen.Bounds()
	v.camera.Width, v.camera.Height = float64(b.Dx()), float64(b.Dy())
	v.canvas.Draw(screen, v.camera.GeoM())
	if paths, err := v.shots.Flush(screen); err != nil {
		log.Printf("bonesview: %v", err)
	} else {
		for _, p := range paths {
			log.Printf("bonesview: saved %s", p)
		}
	}

	msg := fmt.Sprintf("%s  speed x%.2f  zoom x%.2f\n%s", v.arm.Name(), v.arm.Animation().TimeScale, v.camera.Zoom, v.status)
	if len(v.missing) > 0 {
		msg += fmt.Sprintf("\nmissing regions: %v", v.missing)
	}
	ebitenutil.DebugPrint(screen, msg)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return outsideWidth, outsideHeight
}
