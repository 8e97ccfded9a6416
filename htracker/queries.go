package htracker

import "github.com/notargets/hadapt/element"

// walkLeaves resets the default cursor and calls fn at every leaf, in leaf
// number order
func (t *Tree) walkLeaves(fn func(c *Cursor)) {
	c := t.cursor
	c.Reset()
	for leaves := 0; leaves < t.numLeaves; {
		c.Next()
		if c.IsAtLeaf() {
			fn(c)
			leaves++
		}
	}
}

// LeafDepths returns the depth of every leaf
func (t *Tree) LeafDepths() []int {
	out := make([]int, 0, t.numLeaves)
	t.walkLeaves(func(c *Cursor) { out = append(out, c.CountSplits()) })
	return out
}

// LeafTypes returns the element type of every leaf
func (t *Tree) LeafTypes() []element.GeometryType {
	out := make([]element.GeometryType, 0, t.numLeaves)
	t.walkLeaves(func(c *Cursor) { out = append(out, c.Type()) })
	return out
}

// OriginalElementNumbers returns, for every leaf, the index within its type of
// the original element it descends from
func (t *Tree) OriginalElementNumbers() []int {
	out := make([]int, 0, t.numLeaves)
	t.walkLeaves(func(c *Cursor) { out = append(out, c.OriginalIndex()) })
	return out
}

// TransitionLeaves reports, for every leaf, whether its parent is a
// transition split
func (t *Tree) TransitionLeaves() []bool {
	out := make([]bool, 0, t.numLeaves)
	t.walkLeaves(func(c *Cursor) {
		out = append(out, c.CountSplits() > 0 && c.parent().state == Transition)
	})
	return out
}

// CountSons returns one block of NumTypes leaf counts per original element,
// in forest order: entry [NumTypes*e + gt] is the number of leaves of type gt
// descending from the e-th original element.
func (t *Tree) CountSons() []int {
	total := 0
	for _, n := range t.numOriginal {
		total += n
	}
	out := make([]int, total*element.NumTypes)
	var offset [element.NumTypes]int
	for gt := 1; gt < element.NumTypes; gt++ {
		offset[gt] = offset[gt-1] + t.numOriginal[gt-1]
	}
	t.walkLeaves(func(c *Cursor) {
		e := offset[c.OriginalType()] + c.OriginalIndex()
		out[e*element.NumTypes+int(c.Type())]++
	})
	return out
}

// CountInTypes returns the number of leaves of each type
func (t *Tree) CountInTypes() (counts [element.NumTypes]int) {
	t.walkLeaves(func(c *Cursor) { counts[c.Type()]++ })
	return
}
