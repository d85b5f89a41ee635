// Package ecs provides ECS adapters for bones armatures.
//
// [Armature] is a [Donburi] component holding a *bones.Armature. [Attach]
// stores an armature on an entity and forwards its events to the world as
// [AnimationEventType] events; [UpdateArmatures] advances every armature
// component once per frame.
//
// Usage:
//
//	entry := world.Entry(world.Create(ecs.Armature))
//	ecs.Attach(world, entry, arm)
//	ecs.AnimationEventType.Subscribe(world, onAnimationEvent)
//
//	// each frame
//	ecs.UpdateArmatures(world, 1.0/60.0)
//	ecs.AnimationEventType.ProcessEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
