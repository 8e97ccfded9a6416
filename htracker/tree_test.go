package htracker

import (
	"errors"
	"testing"

	"github.com/notargets/hadapt/bitstream"
	"github.com/notargets/hadapt/element"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counts(pairs map[element.GeometryType]int) (n [element.NumTypes]int) {
	for gt, c := range pairs {
		n[gt] = c
	}
	return
}

func newTestTree(t *testing.T, order int, n map[element.GeometryType]int, opts ...Option) *Tree {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.DebugLevel)
	tr, err := NewTree(order, counts(n), append([]Option{WithLogger(log)}, opts...)...)
	require.NoError(t, err)
	return tr
}

func assertPanicsWith(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		assert.True(t, errors.Is(err, target), "got %v", err)
	}()
	fn()
}

func TestNewTree(t *testing.T) {
	tr := newTestTree(t, 1, map[element.GeometryType]int{element.Tri: 1})
	assert.Equal(t, 1, tr.CountLeaves())
	assert.Equal(t, 0, tr.MaxDepth())
	assert.Equal(t, 1, tr.CountBits())

	_, err := NewTree(0, counts(map[element.GeometryType]int{element.Tri: 1}))
	assert.ErrorIs(t, err, ErrCurvatureOrder)
	_, err = NewTree(1, counts(map[element.GeometryType]int{element.Quad: -1}))
	assert.ErrorIs(t, err, ErrElementCount)
	_, err = NewTree(2, counts(map[element.GeometryType]int{element.Pyramid: 1}))
	assert.ErrorIs(t, err, ErrCurvatureOrder)
	_, err = NewTree(2, counts(map[element.GeometryType]int{element.Tet: 3}))
	assert.NoError(t, err)
}

func TestTriangleSplitAndGroup(t *testing.T) {
	tr := newTestTree(t, 1, map[element.GeometryType]int{element.Tri: 1})

	tr.Adapt([]int{Split})
	assert.Equal(t, 4, tr.CountLeaves())
	assert.Equal(t, 1, tr.MaxDepth())
	assert.Equal(t, 5, tr.CountBits())
	assert.Equal(t, []int{1, 1, 1, 1}, tr.LeafDepths())
	for _, gt := range tr.LeafTypes() {
		assert.Equal(t, element.Tri, gt)
	}

	tr.Adapt([]int{Group, Group, Group, Group})
	assert.Equal(t, 1, tr.CountLeaves())
	assert.Equal(t, 0, tr.MaxDepth())
	assert.Equal(t, 1, tr.CountBits())
	assert.Equal(t, []int{0}, tr.LeafDepths())
}

func TestFixPartialGroup(t *testing.T) {
	tr := newTestTree(t, 1, map[element.GeometryType]int{element.Tri: 1})
	tr.Adapt([]int{Split})

	ops := []int{Group, Group, Group, Keep}
	tr.Fix(ops)
	assert.Equal(t, []int{Keep, Keep, Keep, Keep}, ops)

	tr.Adapt([]int{Group, Group, Group, Keep})
	assert.Equal(t, 4, tr.CountLeaves())
	assert.Equal(t, 1, tr.MaxDepth())

	t.Run("depth zero", func(t *testing.T) {
		root := newTestTree(t, 1, map[element.GeometryType]int{element.Line: 2})
		ops := []int{Group, Group}
		root.Fix(ops)
		assert.Equal(t, []int{Keep, Keep}, ops)
	})
}

func TestFixNestedCluster(t *testing.T) {
	tr := newTestTree(t, 1, map[element.GeometryType]int{element.Tri: 1})
	tr.Adapt([]int{Split})
	tr.Adapt([]int{Split, Keep, Keep, Keep})
	require.Equal(t, 7, tr.CountLeaves())
	require.Equal(t, []int{2, 2, 2, 2, 1, 1, 1}, tr.LeafDepths())

	ops := []int{Group, Group, Group, Group, Group, Group, Group}
	tr.Fix(ops)
	// The outer cluster holds a split child, only the inner one may group
	assert.Equal(t, []int{Group, Group, Group, Group, Keep, Keep, Keep}, ops)

	tr.Adapt([]int{Group, Group, Group, Group, Group, Group, Group})
	assert.Equal(t, 4, tr.CountLeaves())
	assert.Equal(t, 1, tr.MaxDepth())
}

func TestAdaptContractViolations(t *testing.T) {
	tr := newTestTree(t, 1, map[element.GeometryType]int{element.Quad: 2})
	assertPanicsWith(t, ErrOperationCount, func() { tr.Adapt([]int{Split}) })
	assertPanicsWith(t, ErrInvalidOperation, func() { tr.Adapt([]int{Split, 2}) })
	assertPanicsWith(t, ErrOperationCount, func() { tr.Fix(nil) })
	// A rejected call leaves the tree untouched
	assert.Equal(t, 2, tr.CountLeaves())
	assert.Equal(t, 2, tr.CountBits())
}

func TestCursorTraversal(t *testing.T) {
	tr := newTestTree(t, 1, map[element.GeometryType]int{element.Line: 1, element.Tri: 1})
	tr.Adapt([]int{Keep, Split})

	type node struct {
		depth, parent, index int
		gt                   element.GeometryType
		leaf                 bool
	}
	want := []node{
		{0, -1, -1, element.Line, true},
		{0, -1, -1, element.Tri, false},
		{1, int(element.Tri), 0, element.Tri, true},
		{1, int(element.Tri), 1, element.Tri, true},
		{1, int(element.Tri), 2, element.Tri, true},
		{1, int(element.Tri), 3, element.Tri, true},
	}
	tr.ResetCursor()
	for i, w := range want {
		assert.Equal(t, -1, tr.Next())
		got := node{tr.CountSplits(), tr.ParentType(), tr.IndexInCluster(), tr.Type(), tr.IsAtLeaf()}
		assert.Equal(t, w, got, "node %d", i)
	}
	assertPanicsWith(t, ErrCursorExhausted, func() { tr.Next() })

	// Restartable
	tr.ResetCursor()
	tr.Next()
	assert.Equal(t, element.Line, tr.Type())
	assert.Equal(t, 0, tr.OriginalIndex())
}

func TestNextReportsOnlyTransitions(t *testing.T) {
	tr := newTestTree(t, 1, map[element.GeometryType]int{element.Tri: 1, element.Tet: 2})
	tr.Adapt([]int{Split, Split, Keep})
	ops := make([]int, tr.CountLeaves())
	ops[len(ops)-1] = Split
	tr.Adapt(ops, WithSplitRule(TransitionRule(bitstream.Edge2)))

	tr.ResetCursor()
	transitions := 0
	for leaves := 0; leaves < tr.CountLeaves(); {
		sel := tr.Next()
		if sel >= 0 {
			transitions++
			assert.Equal(t, Transition, tr.State())
			assert.Equal(t, int(bitstream.Edge2), sel)
		} else if tr.State() == Transition {
			t.Errorf("transition node reported %d", sel)
		}
		if tr.IsAtLeaf() {
			leaves++
		}
	}
	assert.Equal(t, 1, transitions)
	assert.Equal(t, 4+8+4, tr.CountLeaves())
}

func TestCursorExhaustedOnEmptyForest(t *testing.T) {
	tr := newTestTree(t, 1, nil)
	assert.Equal(t, 0, tr.CountLeaves())
	assertPanicsWith(t, ErrCursorExhausted, func() { tr.Next() })
}

func TestIndependentCursors(t *testing.T) {
	tr := newTestTree(t, 1, map[element.GeometryType]int{element.Hex: 2})
	tr.Adapt([]int{Split, Keep})
	a, b := tr.NewCursor(), tr.NewCursor()
	a.Next()
	a.Next()
	b.Next()
	assert.Equal(t, 1, a.CountSplits())
	assert.Equal(t, 0, b.CountSplits())
	assert.Equal(t, FullSplit, b.State())
	assert.Equal(t, 8, b.NumChildren())
	assert.True(t, b.ChildrenAreLeaves())
}

func TestTetrahedronSplits(t *testing.T) {
	t.Run("full", func(t *testing.T) {
		tr := newTestTree(t, 1, map[element.GeometryType]int{element.Tet: 1})
		tr.Adapt([]int{Split})
		assert.Equal(t, 8, tr.CountLeaves())
		assert.Equal(t, 3+8, tr.CountBits())
		tr.ResetCursor()
		assert.Equal(t, -1, tr.Next(), "full splits report no through-edge")
		assert.Equal(t, FullSplit, tr.State())
		assert.Equal(t, bitstream.Undefined, tr.cursor.Selector())
	})
	t.Run("transition", func(t *testing.T) {
		tr := newTestTree(t, 1, map[element.GeometryType]int{element.Tet: 2})
		tr.Adapt([]int{Keep, Split}, WithSplitRule(TransitionRule(bitstream.Edge1)))
		assert.Equal(t, 1+element.NumTransitionChildren, tr.CountLeaves())
		assert.Equal(t, []bool{false, true, true, true, true}, tr.TransitionLeaves())

		tr.ResetCursor()
		assert.Equal(t, -1, tr.Next())
		assert.Equal(t, int(bitstream.Edge1), tr.Next())
		assert.Equal(t, Transition, tr.State())
		assert.Equal(t, 1, tr.OriginalIndex())
		assert.Contains(t, tr.String(), "transition edge1")

		// Children of a transition split fully
		tr.Adapt([]int{Keep, Split, Keep, Keep, Keep}, WithSplitRule(TransitionRule(bitstream.Edge1)))
		assert.Equal(t, 1+3+8, tr.CountLeaves())
		assert.Equal(t, 2, tr.MaxDepth())

		// A transition cluster groups back like any other
		tr.Adapt([]int{Keep, Group, Group, Group, Group, Group, Group, Group, Group, Keep, Keep, Keep})
		tr.Adapt([]int{Keep, Group, Group, Group, Group})
		assert.Equal(t, 2, tr.CountLeaves())
		assert.Equal(t, 2, tr.CountBits())
	})
}

func TestPyramidSplit(t *testing.T) {
	tr := newTestTree(t, 1, map[element.GeometryType]int{element.Tet: 1, element.Pyramid: 1})
	tr.Adapt([]int{Keep, Split})
	assert.Equal(t, 11, tr.CountLeaves())

	n := tr.CountInTypes()
	assert.Equal(t, 5, n[element.Tet])
	assert.Equal(t, 6, n[element.Pyramid])

	sons := tr.CountSons()
	require.Len(t, sons, 2*element.NumTypes)
	assert.Equal(t, 1, sons[element.Tet])
	assert.Equal(t, 4, sons[element.NumTypes+int(element.Tet)])
	assert.Equal(t, 6, sons[element.NumTypes+int(element.Pyramid)])

	types := tr.LeafTypes()
	assert.Equal(t, element.Pyramid, types[1])
	assert.Equal(t, element.Tet, types[10])

	// A tetrahedron child of a pyramid splits like any tetrahedron
	ops := make([]int, tr.CountLeaves())
	ops[10] = Split
	tr.Adapt(ops)
	assert.Equal(t, 18, tr.CountLeaves())
	assert.Equal(t, 2, tr.MaxDepth())
}

func TestOriginalElementNumbers(t *testing.T) {
	tr := newTestTree(t, 1, map[element.GeometryType]int{element.Line: 2, element.Tri: 2, element.Quad: 1})
	tr.Adapt([]int{Keep, Split, Keep, Split, Split})
	// line 0, line 1 x2, tri 0, tri 1 x4, quad 0 x4
	assert.Equal(t, []int{0, 1, 1, 0, 1, 1, 1, 1, 0, 0, 0, 0}, tr.OriginalElementNumbers())

	sons := tr.CountSons()
	assert.Equal(t, 1, sons[0*element.NumTypes+int(element.Line)])
	assert.Equal(t, 2, sons[1*element.NumTypes+int(element.Line)])
	assert.Equal(t, 1, sons[2*element.NumTypes+int(element.Tri)])
	assert.Equal(t, 4, sons[3*element.NumTypes+int(element.Tri)])
	assert.Equal(t, 4, sons[4*element.NumTypes+int(element.Quad)])

	// Numbers of descendants survive further adaptation
	ops := make([]int, tr.CountLeaves())
	for i := range ops {
		ops[i] = Split
	}
	tr.Adapt(ops)
	leaves := tr.NewCursor()
	numbers := tr.OriginalElementNumbers()
	for leaf := 0; leaf < tr.CountLeaves(); {
		leaves.Next()
		if !leaves.IsAtLeaf() {
			continue
		}
		assert.Equal(t, leaves.OriginalIndex(), numbers[leaf])
		switch leaves.OriginalType() {
		case element.Line:
			assert.Equal(t, leaf >= 2, numbers[leaf] == 1, "leaf %d", leaf)
		case element.Tri:
			assert.Equal(t, leaf >= 6+4, numbers[leaf] == 1, "leaf %d", leaf)
		}
		leaf++
	}
}

func TestStorageAndDump(t *testing.T) {
	tr := newTestTree(t, 1, map[element.GeometryType]int{element.Tri: 1, element.Prism: 1})
	tr.Adapt([]int{Split, Split})
	bits := tr.CountBits()
	depths := tr.LeafDepths()
	tr.ToStorage()
	assert.Equal(t, bits, tr.CountBits())
	assert.Equal(t, 64, tr.Bits().Cap(), "one word")
	assert.Equal(t, depths, tr.LeafDepths())

	dump := tr.String()
	assert.Contains(t, dump, "=== HTracker Summary ===")
	assert.Contains(t, dump, "Leaves: 12")
	assert.Contains(t, dump, "Prism 0 split")
}
