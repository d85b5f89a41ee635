// Package bones is a skeletal animation runtime for 2D games.
//
// An [Armature] is a skeleton instance built from an immutable
// [SkeletonResource]: a tree of [Bone] values, the [Slot] values that attach
// renderables to bones, and an [Animation] controller that blends any number
// of playing clips with time-based fades, layers and bone masks.
//
// # Quick start
//
// Parse a skeleton, build an armature and tick it every frame:
//
//	skel, err := bones.ParseSkeleton(data)
//	if err != nil {
//		return err
//	}
//	arm := bones.BuildArmature(skel, "hero", render.NewFactory(atlas))
//	arm.Animation().GotoAndPlay("walk")
//
//	clock := bones.NewClock()
//	clock.Add(arm)
//
//	// once per frame
//	clock.AdvanceTime(1.0 / 60)
//
// The package never draws. Slots push their matrix, color, visibility and
// blend mode into a [Display] supplied by a [DisplayFactory]; the render
// sub-package implements these interfaces for [Ebitengine].
//
// # Blending
//
// Each [GotoAndPlay] borrows a pooled [AnimationState]. States on the same
// layer and group fade each other out by default (see [FadeOutMode]). A bone
// driven by several states blends them from the highest layer down, each
// layer drawing from a shared weight budget of 1.
//
// # Events
//
// Listeners registered with [Armature.AddEventListener] are called once per
// tick, after bones and slots have been updated. [Armature.Dispose] called
// from a listener takes effect at the end of the tick.
//
// [Ebitengine]: https://ebitengine.org
// [GotoAndPlay]: https://pkg.go.dev/github.com/phanxgames/bones#Animation.GotoAndPlay
package bones
