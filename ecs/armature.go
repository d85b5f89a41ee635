package ecs

import (
	"github.com/phanxgames/bones"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// ArmatureData is the component value attached to an entity.
type ArmatureData struct {
	Armature *bones.Armature
	// Paused entities are skipped by UpdateArmatures.
	Paused bool
}

// Armature is the Donburi component type holding an armature.
var Armature = donburi.NewComponentType[ArmatureData]()

// AnimationEvent is a bones event published to the world. It copies the
// fields of bones.Event that stay valid after the tick, since the animation
// state behind an event is pooled.
type AnimationEvent struct {
	Entity    donburi.Entity
	Type      bones.EventType
	Armature  *bones.Armature
	Animation string
	Bone      string
	Label     string
}

// AnimationEventType is the Donburi event type for armature events.
// Subscribe to it and call ProcessEvents once per frame.
var AnimationEventType = events.NewEventType[AnimationEvent]()

// NewEventBridge returns a bones listener publishing every event it receives
// to world as an AnimationEvent for entity.
func NewEventBridge(world donburi.World, entity donburi.Entity) bones.EventListener {
	return func(e bones.Event) {
		ev := AnimationEvent{
			Entity:    entity,
			Type:      e.Type,
			Armature:  e.Armature,
			Animation: e.Animation,
			Label:     e.Label,
		}
		if e.Bone != nil {
			ev.Bone = e.Bone.Name()
		}
		AnimationEventType.Publish(world, ev)
	}
}

// Attach stores a on entry, adding the component if needed, and subscribes
// an event bridge to every event type of a.
func Attach(world donburi.World, entry *donburi.Entry, a *bones.Armature) {
	if !entry.HasComponent(Armature) {
		entry.AddComponent(Armature)
	}
	Armature.SetValue(entry, ArmatureData{Armature: a})
	bridge := NewEventBridge(world, entry.Entity())
	for _, t := range bones.EventTypes() {
		a.AddEventListener(t, bridge)
	}
}

// UpdateArmatures advances every unpaused armature component by dt seconds.
// Disposed armatures are removed from their entities.
func UpdateArmatures(world donburi.World, dt float64) {
	var disposed []*donburi.Entry
	Armature.Each(world, func(entry *donburi.Entry) {
		data := Armature.Get(entry)
		if data.Armature == nil || data.Paused {
			return
		}
		data.Armature.AdvanceTime(dt)
		if data.Armature.IsDisposed() {
			disposed = append(disposed, entry)
		}
	})
	for _, entry := range disposed {
		entry.RemoveComponent(Armature)
	}
}
