package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/colorm"

	"github.com/phanxgames/bones"
)

// EbitenBlend returns the ebiten.Blend value for a slot blend mode.
func EbitenBlend(b bones.BlendMode) ebiten.Blend {
	switch b {
	case bones.BlendAdd:
		return ebiten.BlendLighter
	case bones.BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case bones.BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case bones.BlendErase:
		return ebiten.BlendDestinationOut
	case bones.BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// GeoM converts an armature-space matrix to an ebiten.GeoM.
func GeoM(m bones.Matrix) ebiten.GeoM {
	var g ebiten.GeoM
	g.SetElement(0, 0, m[0])
	g.SetElement(0, 1, m[2])
	g.SetElement(0, 2, m[4])
	g.SetElement(1, 0, m[1])
	g.SetElement(1, 1, m[3])
	g.SetElement(1, 2, m[5])
	return g
}

// ColorM converts a color transform to a color matrix. Offsets are in the
// 0-255 range of skeleton data.
func ColorM(c bones.ColorTransform) colorm.ColorM {
	var cm colorm.ColorM
	cm.Scale(c.RedMultiplier, c.GreenMultiplier, c.BlueMultiplier, c.AlphaMultiplier)
	if c.HasOffset() {
		cm.Translate(c.RedOffset/255, c.GreenOffset/255, c.BlueOffset/255, c.AlphaOffset/255)
	}
	return cm
}

// concatColor applies child on top of parent's multipliers and offsets.
func concatColor(parent, child bones.ColorTransform) bones.ColorTransform {
	if parent.IsIdentity() {
		return child
	}
	return bones.ColorTransform{
		AlphaMultiplier: child.AlphaMultiplier * parent.AlphaMultiplier,
		RedMultiplier:   child.RedMultiplier * parent.RedMultiplier,
		GreenMultiplier: child.GreenMultiplier * parent.GreenMultiplier,
		BlueMultiplier:  child.BlueMultiplier * parent.BlueMultiplier,
		AlphaOffset:     child.AlphaOffset*parent.AlphaMultiplier + parent.AlphaOffset,
		RedOffset:       child.RedOffset*parent.RedMultiplier + parent.RedOffset,
		GreenOffset:     child.GreenOffset*parent.GreenMultiplier + parent.GreenOffset,
		BlueOffset:      child.BlueOffset*parent.BlueMultiplier + parent.BlueOffset,
	}
}
