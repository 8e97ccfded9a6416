package htracker

import (
	"fmt"
	"strings"

	"github.com/notargets/hadapt/bitstream"
	"github.com/notargets/hadapt/element"
	"github.com/sirupsen/logrus"
)

// Tree records how every original element of a mesh has been recursively
// split and grouped. The forest is never materialized: it lives in a bit
// stream of preorder node records, trees concatenated by ascending element
// type then by original element index.
//
// A leaf record is a single 0 bit. A split record is a 1 bit, followed for
// tetrahedra by a 2 bit selector: Undefined for a full split, Edge0..Edge2 for
// a transition split along that through-edge.
type Tree struct {
	bits           *bitstream.Stream
	curvatureOrder int
	numOriginal    [element.NumTypes]int
	numLeaves      int
	maxDepth       int
	// balanced is set once the whole forest has been checked against an
	// adjacency and cleared by an adaptation done without one
	balanced  bool
	rule      SplitRule
	adjacency AdjacencySource
	cursor    *Cursor
	log       logrus.FieldLogger
}

// NewTree builds the unrefined forest of numElemsPerType original elements.
// curvatureOrder is the polynomial order of the original element geometry,
// 1 for straight sided elements.
func NewTree(curvatureOrder int, numElemsPerType [element.NumTypes]int, opts ...Option) (*Tree, error) {
	if curvatureOrder < 1 {
		return nil, fmt.Errorf("%w: %d", ErrCurvatureOrder, curvatureOrder)
	}
	total := 0
	for i, n := range numElemsPerType {
		if n < 0 {
			return nil, fmt.Errorf("%w: %d %s elements", ErrElementCount, n, element.GeometryType(i))
		}
		if n > 0 && element.NumNodes(element.GeometryType(i), curvatureOrder) == 0 {
			return nil, fmt.Errorf("%w: order %d is not available for %s",
				ErrCurvatureOrder, curvatureOrder, element.GeometryType(i))
		}
		total += n
	}
	t := &Tree{
		bits:           bitstream.NewStream(total),
		curvatureOrder: curvatureOrder,
		numOriginal:    numElemsPerType,
		numLeaves:      total,
		rule:           FullSplitRule,
		log:            logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(t)
	}
	for i := 0; i < total; i++ {
		t.bits.AppendBit(false)
	}
	t.cursor = t.NewCursor()
	return t, nil
}

// CurvatureOrder returns the geometry order given at construction
func (t *Tree) CurvatureOrder() int { return t.curvatureOrder }

// NumOriginal returns the number of original elements of type gt
func (t *Tree) NumOriginal(gt element.GeometryType) int { return t.numOriginal[gt] }

// CountLeaves returns the number of leaves of the forest
func (t *Tree) CountLeaves() int { return t.numLeaves }

// MaxDepth returns the largest leaf depth
func (t *Tree) MaxDepth() int { return t.maxDepth }

// CountBits returns the length of the encoding in bits
func (t *Tree) CountBits() int { return t.bits.Len() }

// Bits returns the encoding. It is replaced, not modified, by Adapt.
func (t *Tree) Bits() *bitstream.Stream { return t.bits }

// ToStorage drops the unused capacity of the encoding
func (t *Tree) ToStorage() { t.bits.Compact() }

// SetAdjacency sets the adjacency used to keep the forest 2:1 balanced. A nil
// source disables balancing.
func (t *Tree) SetAdjacency(src AdjacencySource) { t.adjacency = src }

// The default cursor of the tree.

func (t *Tree) ResetCursor()                       { t.cursor.Reset() }
func (t *Tree) Next() int                          { return t.cursor.Next() }
func (t *Tree) IsAtLeaf() bool                     { return t.cursor.IsAtLeaf() }
func (t *Tree) CountSplits() int                   { return t.cursor.CountSplits() }
func (t *Tree) Type() element.GeometryType         { return t.cursor.Type() }
func (t *Tree) ParentType() int                    { return t.cursor.ParentType() }
func (t *Tree) IndexInCluster() int                { return t.cursor.IndexInCluster() }
func (t *Tree) State() State                       { return t.cursor.State() }
func (t *Tree) OriginalType() element.GeometryType { return t.cursor.OriginalType() }
func (t *Tree) OriginalIndex() int                 { return t.cursor.OriginalIndex() }

// String is a human readable dump of the forest, one line per node
func (t *Tree) String() string {
	var sb strings.Builder

	sb.WriteString("=== HTracker Summary ===\n")
	sb.WriteString(fmt.Sprintf("  Curvature order: %d\n", t.curvatureOrder))
	sb.WriteString(fmt.Sprintf("  Leaves: %d\n", t.numLeaves))
	sb.WriteString(fmt.Sprintf("  Max depth: %d\n", t.maxDepth))
	sb.WriteString(fmt.Sprintf("  Encoded bits: %d\n", t.bits.Len()))

	counts := t.CountInTypes()
	sb.WriteString("\n--- Elements per type (original / leaves) ---\n")
	for _, gt := range element.Types() {
		if t.numOriginal[gt] == 0 && counts[gt] == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("  %-12s %6d / %d\n", gt.String(), t.numOriginal[gt], counts[gt]))
	}

	sb.WriteString("\n--- Forest ---\n")
	c := t.NewCursor()
	for leaves := 0; leaves < t.numLeaves; {
		c.Next()
		indent := strings.Repeat("  ", c.CountSplits()+1)
		if c.CountSplits() == 0 {
			sb.WriteString(fmt.Sprintf("%s%s %d", indent, c.Type(), c.OriginalIndex()))
		} else {
			sb.WriteString(fmt.Sprintf("%s[%d] %s", indent, c.IndexInCluster(), c.Type()))
		}
		switch c.State() {
		case Leaf:
			sb.WriteString(fmt.Sprintf(" leaf %d\n", c.LeafIndex()))
			leaves++
		case FullSplit:
			sb.WriteString(" split\n")
		case Transition:
			sb.WriteString(fmt.Sprintf(" transition %s\n", c.Selector()))
		}
	}
	return sb.String()
}
