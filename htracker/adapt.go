package htracker

import (
	"fmt"

	"github.com/notargets/hadapt/bitstream"
	"github.com/notargets/hadapt/element"
	"github.com/sirupsen/logrus"
)

// Operations requested per leaf
const (
	Group = -1
	Keep  = 0
	Split = 1
)

// SplitRule decides how a tetrahedron leaf requested for refinement is split:
// Undefined for a full split, Edge0..Edge2 for a transition split along that
// through-edge. The cursor sits on the leaf. Other types always split fully.
type SplitRule interface {
	Select(c *Cursor) bitstream.Selector
}

// SplitRuleFunc adapts a function to a SplitRule
type SplitRuleFunc func(c *Cursor) bitstream.Selector

func (f SplitRuleFunc) Select(c *Cursor) bitstream.Selector { return f(c) }

// FullSplitRule splits every tetrahedron into 8
var FullSplitRule SplitRule = SplitRuleFunc(func(*Cursor) bitstream.Selector {
	return bitstream.Undefined
})

// TransitionRule splits every tetrahedron that is not itself a transition
// child along the through-edge edge. Transition children are split fully so
// transitions never nest.
func TransitionRule(edge bitstream.Selector) SplitRule {
	return SplitRuleFunc(func(c *Cursor) bitstream.Selector {
		if c.CountSplits() > 0 && c.parent().state == Transition {
			return bitstream.Undefined
		}
		return edge
	})
}

func (t *Tree) checkOperations(ops []int) {
	if len(ops) != t.numLeaves {
		panic(fmt.Errorf("%w: got %d, tree has %d leaves", ErrOperationCount, len(ops), t.numLeaves))
	}
	for i, op := range ops {
		if op < Group || op > Split {
			panic(fmt.Errorf("%w: leaf %d requests %d", ErrInvalidOperation, i, op))
		}
	}
}

// Fix downgrades, in place, every group request that cannot be honored to
// Keep. A cluster is grouped only when all its children are leaves and every
// one of them requests Group. Original elements are never grouped.
func (t *Tree) Fix(ops []int) {
	t.checkOperations(ops)
	// groupable[d] holds the verdict for the cluster currently open at depth d
	groupable := make([]bool, t.maxDepth+1)
	c := t.NewCursor()
	for leaf := 0; leaf < t.numLeaves; {
		c.Next()
		d := c.CountSplits()
		if c.IsAtLeaf() {
			if ops[leaf] == Group && (d == 0 || !groupable[d]) {
				ops[leaf] = Keep
			}
			leaf++
			continue
		}
		ok := c.ChildrenAreLeaves()
		for i := leaf; ok && i < leaf+c.NumChildren(); i++ {
			ok = ops[i] == Group
		}
		groupable[d+1] = ok
	}
}

// Adapt applies one batch of per leaf operations, given in leaf order: Group
// (-1), Keep (0) or Split (1). Requests are first normalized by Fix. When an
// adjacency is available, extra full splits are then forced until no two
// adjacent leaves differ in depth by more than one.
//
// A vector whose length is not CountLeaves, or holding any other value,
// panics. The cursors of the tree are invalidated.
func (t *Tree) Adapt(ops []int, opts ...Option) {
	t.checkOperations(ops)
	cfg := adaptOptions{rule: t.rule, adjacency: t.adjacency}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.rule == nil {
		cfg.rule = FullSplitRule
	}

	fixed := make([]int, len(ops))
	copy(fixed, ops)
	t.Fix(fixed)

	before := t.numLeaves
	changed, depths := t.rebuild(fixed, cfg.rule)
	t.log.WithFields(logrus.Fields{
		"leaves":   t.numLeaves,
		"previous": before,
		"changed":  len(changed),
		"maxdepth": t.maxDepth,
	}).Debug("adapt")

	if cfg.adjacency == nil {
		if len(changed) > 0 {
			t.balanced = false
		}
		return
	}
	t.balance(cfg.adjacency, changed, depths)
}

// rebuild streams the current encoding through a cursor into a new one,
// splitting leaves requesting Split and collapsing clusters whose leaves all
// request Group. ops must be fixed. It returns, in ascending order, the new
// leaf numbers of every leaf that did not exist before, and the depth of
// every new leaf.
func (t *Tree) rebuild(ops []int, rule SplitRule) (changed, depths []int) {
	grow := 0
	for _, op := range ops {
		if op == Split {
			grow += 10 + bitstream.SelectorBits
		}
	}
	out := bitstream.NewStream(t.bits.Len() + grow)
	depths = make([]int, 0, t.numLeaves+grow/2)
	newLeaves, maxDepth := 0, 0

	c := t.NewCursor()
	for leaf := 0; leaf < t.numLeaves; {
		c.Next()
		d := c.CountSplits()
		if !c.IsAtLeaf() {
			n := c.NumChildren()
			if c.ChildrenAreLeaves() && ops[leaf] == Group {
				for i := 0; i < n; i++ {
					c.Next()
				}
				leaf += n
				out.AppendBit(false)
				changed = append(changed, newLeaves)
				depths = append(depths, d)
				newLeaves++
				maxDepth = max(maxDepth, d)
				continue
			}
			writeSplit(out, c.Type(), c.Selector())
			continue
		}

		op := ops[leaf]
		leaf++
		if op != Split {
			out.AppendBit(false)
			depths = append(depths, d)
			newLeaves++
			maxDepth = max(maxDepth, d)
			continue
		}
		sel := bitstream.Undefined
		if c.Type() == element.Tet {
			sel = rule.Select(c)
		}
		writeSplit(out, c.Type(), sel)
		n := c.Type().NumSubElems()
		if sel != bitstream.Undefined {
			n = element.NumTransitionChildren
		}
		for i := 0; i < n; i++ {
			out.AppendBit(false)
			changed = append(changed, newLeaves)
			depths = append(depths, d+1)
			newLeaves++
		}
		maxDepth = max(maxDepth, d+1)
	}

	t.bits = out
	t.numLeaves = newLeaves
	t.maxDepth = maxDepth
	t.cursor.Reset()
	return changed, depths
}

func writeSplit(out *bitstream.Stream, gt element.GeometryType, sel bitstream.Selector) {
	out.AppendBit(true)
	if gt == element.Tet {
		out.AppendSelector(sel)
	}
}
