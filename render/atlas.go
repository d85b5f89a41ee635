package render

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/bones"
)

// TextureRegion describes a sub-rectangle within an atlas page.
type TextureRegion struct {
	Page      uint16 // atlas page index
	X, Y      uint16 // top-left corner of the rect within the page
	Width     uint16 // width of the rect (may differ from OriginalW if trimmed)
	Height    uint16 // height of the rect (may differ from OriginalH if trimmed)
	OriginalW uint16 // untrimmed sprite width as authored
	OriginalH uint16 // untrimmed sprite height as authored
	OffsetX   int16  // horizontal trim offset
	OffsetY   int16  // vertical trim offset
	Rotated   bool   // stored 90 degrees clockwise in the page
}

// Atlas holds one or more page images and a map of named regions.
type Atlas struct {
	// Pages contains the page images indexed by page number.
	Pages   []*ebiten.Image
	regions map[string]TextureRegion
}

// Region returns the named region and whether it exists.
func (a *Atlas) Region(name string) (TextureRegion, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// Len returns the number of named regions.
func (a *Atlas) Len() int { return len(a.regions) }

// SubImage returns the page sub-image for the named region. Unknown names and
// regions on missing pages resolve to a 1x1 magenta placeholder and ok=false.
func (a *Atlas) SubImage(name string) (img *ebiten.Image, r TextureRegion, ok bool) {
	r, ok = a.regions[name]
	if !ok || int(r.Page) >= len(a.Pages) || a.Pages[r.Page] == nil {
		if bones.DebugMode() {
			log.Printf("bones/render: atlas region %q not found, using magenta placeholder", name)
		}
		return placeholderImage(), placeholderRegion(), false
	}
	w, h := int(r.Width), int(r.Height)
	if r.Rotated {
		w, h = h, w
	}
	rect := image.Rect(int(r.X), int(r.Y), int(r.X)+w, int(r.Y)+h)
	return a.Pages[r.Page].SubImage(rect).(*ebiten.Image), r, true
}

var magentaImage *ebiten.Image

func placeholderImage() *ebiten.Image {
	if magentaImage == nil {
		magentaImage = ebiten.NewImage(1, 1)
		magentaImage.Fill(color.RGBA{R: 255, G: 0, B: 255, A: 255})
	}
	return magentaImage
}

func placeholderRegion() TextureRegion {
	return TextureRegion{Width: 1, Height: 1, OriginalW: 1, OriginalH: 1}
}

// LoadAtlas parses TexturePacker JSON data and associates the given page
// images. Both the hash format (single "frames" object) and the array format
// ("textures" array with per-page frame lists) are accepted.
func LoadAtlas(jsonData []byte, pages []*ebiten.Image) (*Atlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("bones/render: failed to parse atlas JSON: %w", err)
	}

	atlas := &Atlas{
		Pages:   pages,
		regions: make(map[string]TextureRegion),
	}

	switch {
	case probe.Textures != nil:
		var textures []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &textures); err != nil {
			return nil, fmt.Errorf("bones/render: failed to parse atlas textures array: %w", err)
		}
		for i, tex := range textures {
			for name, f := range tex.Frames {
				atlas.regions[name] = f.region(uint16(i))
			}
		}
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, fmt.Errorf("bones/render: failed to parse atlas frames: %w", err)
		}
		for name, f := range frames {
			atlas.regions[name] = f.region(0)
		}
	default:
		return nil, fmt.Errorf("bones/render: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return atlas, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonSize struct {
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame            jsonRect `json:"frame"`
	Rotated          bool     `json:"rotated"`
	Trimmed          bool     `json:"trimmed"`
	SpriteSourceSize jsonRect `json:"spriteSourceSize"`
	SourceSize       jsonSize `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func (f jsonFrame) region(page uint16) TextureRegion {
	return TextureRegion{
		Page:      page,
		X:         uint16(f.Frame.X),
		Y:         uint16(f.Frame.Y),
		Width:     uint16(f.Frame.W),
		Height:    uint16(f.Frame.H),
		OriginalW: uint16(f.SourceSize.W),
		OriginalH: uint16(f.SourceSize.H),
		OffsetX:   int16(f.SpriteSourceSize.X),
		OffsetY:   int16(f.SpriteSourceSize.Y),
		Rotated:   f.Rotated,
	}
}
