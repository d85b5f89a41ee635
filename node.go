package bones

// node is the transform state shared by Bone and Slot: a name, the owning
// armature, a non-owning parent bone, and the origin/offset/global transforms.
type node struct {
	name     string
	armature *Armature
	parent   *Bone

	// origin is the rest pose relative to the parent bone.
	origin Transform
	// offset is the manual adjustment applied on top of origin and tween.
	offset Transform
	// global is the computed transform in armature space.
	global       Transform
	globalMatrix Matrix

	inheritRotation bool
	inheritScale    bool
	visible         bool

	// UserData is free for the embedding application.
	UserData any
}

func (n *node) init(name string) {
	n.name = name
	n.origin = NewTransform()
	n.offset = NewTransform()
	n.global = NewTransform()
	n.globalMatrix = IdentityMatrix
	n.inheritRotation = true
	n.inheritScale = true
	n.visible = true
}

// Name returns the node's name.
func (n *node) Name() string { return n.name }

// Armature returns the owning armature, or nil if detached.
func (n *node) Armature() *Armature { return n.armature }

// Parent returns the parent bone, or nil for root bones and detached nodes.
func (n *node) Parent() *Bone { return n.parent }

// Origin returns the rest pose relative to the parent.
func (n *node) Origin() Transform { return n.origin }

// Offset returns the manual offset transform.
func (n *node) Offset() Transform { return n.offset }

// Global returns the last computed transform in armature space.
func (n *node) Global() Transform { return n.global }

// GlobalMatrix returns the last computed matrix in armature space.
func (n *node) GlobalMatrix() Matrix { return n.globalMatrix }

// InheritRotation reports whether the parent's rotation is applied.
func (n *node) InheritRotation() bool { return n.inheritRotation }

// InheritScale reports whether the parent's scale is applied.
func (n *node) InheritScale() bool { return n.inheritScale }

// Visible reports the node's own visibility flag.
func (n *node) Visible() bool { return n.visible }

// depth returns the number of ancestors.
func (n *node) depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// isAncestor reports whether candidate is b or one of b's ancestors.
func isAncestor(candidate, b *Bone) bool {
	for p := b; p != nil; p = p.parent {
		if p == candidate {
			return true
		}
	}
	return false
}

// toArmatureSpace composes local (relative to the parent bone) with the
// parent's transform-for-children, honoring the inherit flags.
func (n *node) toArmatureSpace(local Transform) (Transform, Matrix) {
	if n.parent == nil {
		return local, local.Matrix()
	}
	parentGlobal, pm := n.parent.childTransform()
	if !n.inheritRotation || !n.inheritScale {
		pt := parentGlobal
		if !n.inheritScale {
			pt.ScaleX, pt.ScaleY = 1, 1
		}
		if !n.inheritRotation {
			pt.SkewX, pt.SkewY = 0, 0
		}
		pm = pt.Matrix()
	}
	m := pm.Multiply(local.Matrix())
	return DecomposeMatrix(m, local.ScaleX >= 0, local.ScaleY >= 0), m
}

func (n *node) dispose() {
	n.armature = nil
	n.parent = nil
	n.UserData = nil
}
