package bones

// EventType identifies an armature event.
type EventType uint8

const (
	EventStart            EventType = iota // an animation state began playing
	EventComplete                          // an animation state finished its last play
	EventLoopComplete                      // an animation state finished one loop of several
	EventFadeIn                            // an animation state started fading in
	EventFadeInComplete                    // an animation state reached full weight
	EventFadeOut                           // an animation state started fading out
	EventFadeOutComplete                   // an animation state reached zero weight
	EventAnimationFrame                    // a clip-level keyframe carrying an event label was reached
	EventBoneFrame                         // a bone keyframe carrying an event label was reached
	EventZOrderUpdated                     // the armature re-sorted its slots

	eventTypeCount
)

var eventTypeNames = [eventTypeCount]string{
	EventStart:           "start",
	EventComplete:        "complete",
	EventLoopComplete:    "loopComplete",
	EventFadeIn:          "fadeIn",
	EventFadeInComplete:  "fadeInComplete",
	EventFadeOut:         "fadeOut",
	EventFadeOutComplete: "fadeOutComplete",
	EventAnimationFrame:  "animationFrameEvent",
	EventBoneFrame:       "boneFrameEvent",
	EventZOrderUpdated:   "zOrderUpdated",
}

// String returns the subscription name of the event type.
func (t EventType) String() string {
	if t < eventTypeCount {
		return eventTypeNames[t]
	}
	return "unknown"
}

// EventTypes returns every event type in declaration order.
func EventTypes() []EventType {
	out := make([]EventType, eventTypeCount)
	for i := range out {
		out[i] = EventType(i)
	}
	return out
}

// ParseEventType maps a subscription name back to its EventType.
func ParseEventType(name string) (EventType, bool) {
	for i, n := range eventTypeNames {
		if n == name {
			return EventType(i), true
		}
	}
	return 0, false
}

// Event is delivered to listeners once per tick, after bones and slots have
// been updated.
type Event struct {
	Type     EventType
	Armature *Armature
	// State is the animation state that produced the event. It stays valid
	// while the event is delivered, but a state that finished fading out is
	// returned to the pool right after the tick's events are flushed, so
	// listeners must not retain it.
	State *AnimationState
	// Animation is the clip name of State, captured when the event was queued.
	Animation string
	// Bone is set for EventBoneFrame.
	Bone *Bone
	// Label is the frame's event label for frame events.
	Label string
}

// EventListener receives armature events.
type EventListener func(Event)

// listenerRegistry holds per-type listener lists.
type listenerRegistry struct {
	lists [eventTypeCount][]EventListener
}

func (r *listenerRegistry) add(t EventType, fn EventListener) {
	if fn == nil {
		panic("bones: nil event listener")
	}
	r.lists[t] = append(r.lists[t], fn)
}

func (r *listenerRegistry) removeAll(t EventType) {
	r.lists[t] = nil
}

func (r *listenerRegistry) has(t EventType) bool {
	return len(r.lists[t]) > 0
}

func (r *listenerRegistry) dispatch(e Event) {
	for _, fn := range r.lists[e.Type] {
		fn(e)
	}
}

func (r *listenerRegistry) reset() {
	for i := range r.lists {
		r.lists[i] = nil
	}
}
