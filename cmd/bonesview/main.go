// Bonesview plays an armature from a skeleton file and reloads it whenever
// the skeleton, atlas or preset file changes on disk.
//
//	bonesview -skeleton hero.json -atlas hero_atlas.json -presets hero.yaml -preset wave
//
// Keys: Space/Right next clip or preset, Left previous, Up/Down time scale,
// P pause, S screenshot, F follow the root bone, Home recenter. The mouse wheel zooms and
// the right button pans.
package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/bones"
)

func main() {
	var opts options
	flag.StringVar(&opts.skeleton, "skeleton", "", "skeleton JSON file (required)")
	flag.StringVar(&opts.armature, "armature", "", "armature name (default: first)")
	flag.StringVar(&opts.atlas, "atlas", "", "TexturePacker atlas JSON file")
	flag.StringVar(&opts.atlasImage, "atlas-image", "", "atlas page image (default: atlas file with .png)")
	flag.StringVar(&opts.presets, "presets", "", "YAML playback presets file")
	flag.StringVar(&opts.preset, "preset", "", "preset to start with")
	flag.Float64Var(&opts.scale, "scale", 1, "initial zoom")
	debug := flag.Bool("debug", false, "log runtime warnings")
	flag.Parse()

	if opts.skeleton == "" {
		flag.Usage()
		log.Fatal("bonesview: -skeleton is required")
	}
	bones.SetDebugMode(*debug)

	v, err := newViewer(opts)
	if err != nil {
		log.Fatalf("bonesview: %v", err)
	}
	if v.watch, err = newWatcher(opts.skeleton, opts.atlas, opts.presets); err != nil {
		log.Printf("bonesview: hot reload disabled: %v", err)
	} else {
		defer v.watch.Close()
	}

	ebiten.SetWindowTitle("bonesview - " + v.arm.Name())
	ebiten.SetWindowSize(960, 720)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(v); err != nil {
		log.Fatal(err)
	}
}
