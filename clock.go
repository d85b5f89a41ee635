package bones

import (
	"slices"
	"time"
)

// Animatable is anything a Clock can tick.
type Animatable interface {
	AdvanceTime(dt float64)
}

// Clock ticks registered animatables once per external frame. It is owned by
// the application; there is no global instance.
type Clock struct {
	items []Animatable // nil entries are removed on the next tick

	// TimeScale multiplies dt before it reaches the animatables.
	TimeScale float64

	// Now supplies the current time when AdvanceTime is given a negative dt.
	// Defaults to time.Now.
	Now  func() time.Time
	last time.Time
}

// NewClock returns a clock with a time scale of 1.
func NewClock() *Clock {
	return &Clock{TimeScale: 1, Now: time.Now}
}

// Add registers item. Adding an item twice has no effect.
func (c *Clock) Add(item Animatable) {
	if item == nil || c.Contains(item) {
		return
	}
	c.items = append(c.items, item)
}

// Remove unregisters item. The slot is cleared now and compacted on the next
// tick, so removing during AdvanceTime is safe.
func (c *Clock) Remove(item Animatable) {
	if i := slices.Index(c.items, item); i >= 0 {
		c.items[i] = nil
	}
}

// Contains reports whether item is registered.
func (c *Clock) Contains(item Animatable) bool {
	return item != nil && slices.Contains(c.items, item)
}

// Len returns the number of registered items.
func (c *Clock) Len() int {
	n := 0
	for _, it := range c.items {
		if it != nil {
			n++
		}
	}
	return n
}

// Clear unregisters every item.
func (c *Clock) Clear() {
	clear(c.items)
}

// AdvanceTime forwards dt seconds, scaled by TimeScale, to every registered
// item in registration order. A negative dt uses the time elapsed since the
// previous call instead (zero on the first call).
func (c *Clock) AdvanceTime(dt float64) {
	if dt < 0 {
		now := c.now()
		if c.last.IsZero() {
			dt = 0
		} else {
			dt = now.Sub(c.last).Seconds()
		}
		c.last = now
	} else {
		c.last = c.now()
	}
	dt *= c.TimeScale

	c.items = slices.DeleteFunc(c.items, func(it Animatable) bool { return it == nil })
	n := len(c.items)
	for i := 0; i < n; i++ {
		if it := c.items[i]; it != nil {
			it.AdvanceTime(dt)
		}
	}
}

func (c *Clock) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}
