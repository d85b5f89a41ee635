package bones

// poolEntry tracks whether an object currently sits in a free list.
type poolEntry struct {
	pooled bool
}

func (e *poolEntry) entry() *poolEntry { return e }

// pooledObject is implemented by types recycled through a pool. clear must
// drop every reference the object holds so it can be reused by another owner.
type pooledObject interface {
	clear()
	entry() *poolEntry
}

// pool is a free list of reusable objects. Returning an object always clears
// it first; returning it twice panics. Not safe for concurrent use (bones is
// single-threaded).
type pool[T pooledObject] struct {
	free    []T
	newFunc func() T
}

func newPool[T pooledObject](newFunc func() T) *pool[T] {
	return &pool[T]{newFunc: newFunc}
}

// get pops a cleared object from the free list, or allocates a new one.
func (p *pool[T]) get() T {
	n := len(p.free)
	if n == 0 {
		return p.newFunc()
	}
	obj := p.free[n-1]
	var zero T
	p.free[n-1] = zero
	p.free = p.free[:n-1]
	obj.entry().pooled = false
	return obj
}

// put clears obj and pushes it onto the free list.
func (p *pool[T]) put(obj T) {
	e := obj.entry()
	if e.pooled {
		panic("bones: object returned to pool twice")
	}
	obj.clear()
	e.pooled = true
	p.free = append(p.free, obj)
}

// size returns the number of idle objects.
func (p *pool[T]) size() int {
	return len(p.free)
}

// drain releases every idle object.
func (p *pool[T]) drain() {
	clear(p.free)
	p.free = p.free[:0]
}

var (
	animationStatePool = newPool(func() *AnimationState { return &AnimationState{} })
	timelineStatePool  = newPool(func() *TimelineState { return &TimelineState{} })
)

// ClearPools releases every idle AnimationState and TimelineState held for
// reuse. Borrowed objects are unaffected.
func ClearPools() {
	animationStatePool.drain()
	timelineStatePool.drain()
}
