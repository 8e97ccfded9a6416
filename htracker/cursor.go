package htracker

import (
	"fmt"

	"github.com/notargets/hadapt/bitstream"
	"github.com/notargets/hadapt/element"
)

// State is the tagged state of a node of the forest
type State uint8

const (
	Leaf       State = iota // no split recorded
	FullSplit               // split into NumSubElems children
	Transition              // tetrahedron split along a single through-edge
)

func (s State) String() string {
	switch s {
	case Leaf:
		return "leaf"
	case FullSplit:
		return "full-split"
	case Transition:
		return "transition"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// frame is an ancestor of the current node
type frame struct {
	typ      element.GeometryType
	state    State
	selector bitstream.Selector
	index    int // index of the ancestor within its own cluster
	children int
}

// Cursor walks the forest in depth first preorder, one node per Next. It
// keeps an explicit ancestor stack sized from the tree depth, so a traversal
// allocates nothing past Reset.
//
// A cursor is bound to the encoding current at its last Reset; Adapt replaces
// the encoding, after which the cursor must be Reset before further use.
type Cursor struct {
	t     *Tree
	r     *bitstream.Reader
	stack []frame
	depth int // -1 before the first node

	typ      element.GeometryType
	index    int
	state    State
	selector bitstream.Selector

	origType  element.GeometryType
	origIndex int

	leaves int // leaves visited so far, including the current node
}

// NewCursor returns an independent cursor positioned before the first node
func (t *Tree) NewCursor() *Cursor {
	c := &Cursor{t: t}
	c.Reset()
	return c
}

// Reset moves the cursor before the first node of the current encoding
func (c *Cursor) Reset() {
	c.r = bitstream.NewReader(c.t.bits)
	if cap(c.stack) < c.t.maxDepth {
		c.stack = make([]frame, c.t.maxDepth)
	}
	c.stack = c.stack[:cap(c.stack)]
	c.depth = -1
	c.index = 0
	c.state = Leaf
	c.selector = bitstream.Undefined
	c.origType = 0
	c.origIndex = -1
	c.leaves = 0
}

// Next advances exactly one node in preorder. It returns the through-edge of
// a transition split node, else -1; Selector gives the raw code of any
// tetrahedron split. Calling Next after the last node panics with
// ErrCursorExhausted.
func (c *Cursor) Next() int {
	switch {
	case c.depth >= 0 && c.state != Leaf:
		c.push()
		c.depth++
		c.index = 0
		c.typ = c.childType(0)
	case c.depth > 0:
		for c.depth > 0 && c.index == c.stack[c.depth-1].children-1 {
			c.depth--
			c.index = c.stack[c.depth].index
		}
		if c.depth > 0 {
			c.index++
			c.typ = c.childType(c.index)
			break
		}
		c.nextOriginal()
	default:
		c.nextOriginal()
	}
	return c.readRecord()
}

func (c *Cursor) push() {
	f := frame{
		typ:      c.typ,
		state:    c.state,
		selector: c.selector,
		index:    c.index,
		children: c.NumChildren(),
	}
	if c.depth < len(c.stack) {
		c.stack[c.depth] = f
	} else {
		c.stack = append(c.stack, f)
	}
}

// nextOriginal moves to the root of the next original element
func (c *Cursor) nextOriginal() {
	c.depth = 0
	c.index = 0
	c.origIndex++
	for c.origIndex >= c.t.numOriginal[c.origType] {
		c.origIndex = 0
		c.origType++
		if c.origType >= element.NumTypes {
			panic(fmt.Errorf("%w: %d leaves visited", ErrCursorExhausted, c.leaves))
		}
	}
	c.typ = c.origType
}

func (c *Cursor) readRecord() int {
	if c.r.Remaining() == 0 {
		panic(fmt.Errorf("%w: encoding ends at bit %d", ErrCursorExhausted, c.r.Pos()))
	}
	c.selector = bitstream.Undefined
	if !c.r.ReadBit() {
		c.state = Leaf
		c.leaves++
		return -1
	}
	c.state = FullSplit
	if c.typ != element.Tet {
		return -1
	}
	c.selector = c.r.ReadSelector()
	if c.selector == bitstream.Undefined {
		return -1
	}
	c.state = Transition
	return int(c.selector)
}

// childType is the type of child index of the node on top of the stack
func (c *Cursor) childType(index int) element.GeometryType {
	p := c.stack[c.depth-1]
	if p.state == Transition {
		return element.Tet
	}
	return element.ChildType(p.typ, index)
}

// IsAtLeaf reports whether the current node is a leaf
func (c *Cursor) IsAtLeaf() bool { return c.state == Leaf }

// CountSplits returns the depth of the current node
func (c *Cursor) CountSplits() int { return c.depth }

// Type returns the element type of the current node
func (c *Cursor) Type() element.GeometryType { return c.typ }

// ParentType returns the type of the parent node, or -1 for an original element
func (c *Cursor) ParentType() int {
	if c.depth <= 0 {
		return -1
	}
	return int(c.stack[c.depth-1].typ)
}

// IndexInCluster returns the position of the current node among its
// siblings, or -1 for an original element
func (c *Cursor) IndexInCluster() int {
	if c.depth <= 0 {
		return -1
	}
	return c.index
}

func (c *Cursor) State() State { return c.state }

// Selector returns the through-edge selector of a tetrahedron split node
func (c *Cursor) Selector() bitstream.Selector { return c.selector }

// OriginalType returns the type of the original element the current node
// descends from
func (c *Cursor) OriginalType() element.GeometryType { return c.origType }

// OriginalIndex returns the index, within its type, of the original element
// the current node descends from
func (c *Cursor) OriginalIndex() int { return c.origIndex }

// LeafIndex returns the leaf number of the current node, valid at a leaf
func (c *Cursor) LeafIndex() int { return c.leaves - 1 }

// NumChildren returns the number of children of the current split node
func (c *Cursor) NumChildren() int {
	switch c.state {
	case Leaf:
		return 0
	case Transition:
		return element.NumTransitionChildren
	}
	return c.typ.NumSubElems()
}

// ChildrenAreLeaves reports whether every child of the current split node is
// a leaf. It looks ahead in the encoding without moving the cursor.
func (c *Cursor) ChildrenAreLeaves() bool {
	if c.state == Leaf {
		return false
	}
	return c.r.ZerosAhead(c.NumChildren())
}

// parent returns the frame of the parent of the current node
func (c *Cursor) parent() frame { return c.stack[c.depth-1] }
