package bones

// ColorTransform is a color multiplier/offset octet. Multipliers are in
// [0, 1] (1 = unchanged); offsets are in [-255, 255] channel units and are
// added after multiplication.
type ColorTransform struct {
	AlphaMultiplier, RedMultiplier, GreenMultiplier, BlueMultiplier float64
	AlphaOffset, RedOffset, GreenOffset, BlueOffset                 float64
}

// IdentityColor leaves colors unchanged.
var IdentityColor = ColorTransform{
	AlphaMultiplier: 1, RedMultiplier: 1, GreenMultiplier: 1, BlueMultiplier: 1,
}

// IsIdentity reports whether c leaves colors unchanged.
func (c ColorTransform) IsIdentity() bool {
	return c == IdentityColor
}

// HasOffset reports whether any additive offset is non-zero.
func (c ColorTransform) HasOffset() bool {
	return c.AlphaOffset != 0 || c.RedOffset != 0 || c.GreenOffset != 0 || c.BlueOffset != 0
}

// BlendMode selects a compositing operation for a slot's display.
// The renderer binding maps each mode to its own blend state.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // source-over (standard alpha blending)
	BlendAdd                       // additive / lighter
	BlendMultiply                  // multiply (source * destination; only darkens)
	BlendScreen                    // screen (1 - (1-src)*(1-dst); only brightens)
	BlendErase                     // destination-out (punch transparent holes)
	BlendNone                      // opaque copy (skip blending)
)

var blendModeNames = map[string]BlendMode{
	"":         BlendNormal,
	"normal":   BlendNormal,
	"add":      BlendAdd,
	"multiply": BlendMultiply,
	"screen":   BlendScreen,
	"erase":    BlendErase,
	"none":     BlendNone,
}

// ParseBlendMode maps a blend-mode name from skeleton data to a BlendMode.
// Unknown names report false.
func ParseBlendMode(name string) (BlendMode, bool) {
	b, ok := blendModeNames[name]
	return b, ok
}

// FadeOutMode selects which active animation states a new GotoAndPlay call
// fades out.
type FadeOutMode uint8

const (
	FadeOutSameLayerAndGroup FadeOutMode = iota // same layer and same group (default)
	FadeOutNone                                 // leave every other state running
	FadeOutSameLayer                            // every state on the same layer
	FadeOutSameGroup                            // every state in the same group
	FadeOutAll                                  // every active state
)

var fadeOutModeNames = map[string]FadeOutMode{
	"":                     FadeOutSameLayerAndGroup,
	"same_layer_and_group": FadeOutSameLayerAndGroup,
	"none":                 FadeOutNone,
	"same_layer":           FadeOutSameLayer,
	"same_group":           FadeOutSameGroup,
	"all":                  FadeOutAll,
}

// ParseFadeOutMode maps a configuration name to a FadeOutMode.
func ParseFadeOutMode(name string) (FadeOutMode, bool) {
	m, ok := fadeOutModeNames[name]
	return m, ok
}
