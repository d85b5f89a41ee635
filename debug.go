package bones

import (
	"fmt"
	"log"
)

// globalDebug enables data-lookup warnings, per-tick diagnostics and panics on
// use of disposed armatures. Single-threaded like the rest of the package.
var globalDebug bool

// SetDebugMode toggles debug diagnostics for every armature.
func SetDebugMode(on bool) { globalDebug = on }

// DebugMode reports whether debug diagnostics are enabled.
func DebugMode() bool { return globalDebug }

// debugWarnf logs a lookup miss or suspicious input when debug mode is on.
func debugWarnf(format string, args ...any) {
	if !globalDebug {
		return
	}
	log.Printf("bones: warning: "+format, args...)
}

// debugCheckDisposed panics when a disposed armature is used.
func debugCheckDisposed(a *Armature, op string) {
	if a.disposed {
		panic(fmt.Sprintf("bones debug: %s on disposed armature %q", op, a.name))
	}
}

// debugLogTick prints per-tick counters.
func (a *Armature) debugLogTick() {
	updated := 0
	for _, b := range a.bones {
		if b.needUpdate > 0 {
			updated++
		}
	}
	log.Printf("bones: [%s] states: %d | fading: %v | bones updated: %d/%d | events: %d",
		a.name, len(a.animation.states), a.animation.isFading, updated, len(a.bones), len(a.events))
}
