package layout

import (
	"testing"

	"github.com/notargets/hadapt/element"
	"github.com/notargets/hadapt/htracker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pyramidTree(t *testing.T) *htracker.Tree {
	t.Helper()
	var n [element.NumTypes]int
	n[element.Tet] = 1
	n[element.Pyramid] = 1
	tr, err := htracker.NewTree(1, n)
	require.NoError(t, err)
	tr.Adapt([]int{htracker.Keep, htracker.Split})
	return tr
}

func TestNewLayout(t *testing.T) {
	tr := pyramidTree(t)
	l, err := NewLayout(tr, 1)
	require.NoError(t, err)
	require.NoError(t, l.Validate())

	require.Len(t, l.Groups, 2)
	tets, pyrs := l.Group(element.Tet), l.Group(element.Pyramid)
	require.NotNil(t, tets)
	require.NotNil(t, pyrs)
	assert.Nil(t, l.Group(element.Hex))

	assert.Equal(t, []int{0, 7, 8, 9, 10}, tets.LeafIDs)
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6}, pyrs.LeafIDs)
	assert.Equal(t, 0, tets.StartIndex)
	assert.Equal(t, 5, pyrs.StartIndex)
	assert.Equal(t, 4, tets.Np)
	assert.Equal(t, 5, pyrs.Np)
	assert.Equal(t, []int{0, 12, 24, 36, 48, 60}, l.Offsets[element.Tet])

	gt, i := l.Locate(8)
	assert.Equal(t, element.Tet, gt)
	assert.Equal(t, 2, i)
	_, i = l.Locate(11)
	assert.Equal(t, -1, i)

	_, err = NewLayout(tr, 2)
	assert.Error(t, err, "pyramids only carry first order nodes")
}

func TestAllocateAndBlock(t *testing.T) {
	tr := pyramidTree(t)
	l, err := NewLayout(tr, 1)
	require.NoError(t, err)

	data := l.Allocate()
	assert.Len(t, data[element.Tet], 5*4*3)
	assert.Len(t, data[element.Pyramid], 6*5*3)
	assert.Nil(t, data[element.Tri])

	b := l.Block(data, 3)
	require.Len(t, b, 15)
	b[0] = 42
	assert.Equal(t, 42.0, data[element.Pyramid][2*15])
	assert.Nil(t, l.Block(data, -1))
}

func TestReferenceNodesInOriginal(t *testing.T) {
	var n [element.NumTypes]int
	n[element.Quad] = 2
	tr, err := htracker.NewTree(2, n)
	require.NoError(t, err)
	tr.Adapt([]int{htracker.Split, htracker.Keep})

	l, err := NewLayout(tr, 2)
	require.NoError(t, err)
	rc, err := l.ReferenceNodes()
	require.NoError(t, err)

	oad, orc, err := tr.InOriginal(l.Offsets, rc)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 4 * 9 * 3, 5 * 9 * 3}, oad[element.Quad])

	// The untouched quad maps onto itself
	assert.Equal(t, rc[element.Quad][4*27:], orc[element.Quad][4*27:])
	// All nodes of the split quad stay in [-1,1]^2
	for _, v := range orc[element.Quad][:4*27] {
		assert.LessOrEqual(t, v, 1.0)
		assert.GreaterOrEqual(t, v, -1.0)
	}
}

func TestValidateDetectsCorruption(t *testing.T) {
	tr := pyramidTree(t)
	l, err := NewLayout(tr, 1)
	require.NoError(t, err)

	l.Groups[1].StartIndex = 4
	assert.ErrorContains(t, l.Validate(), "StartIndex")
	l.Groups[1].StartIndex = 5

	l.LeafLocal[7] = 3
	assert.ErrorContains(t, l.Validate(), "maps to")
	l.LeafLocal[7] = 1

	l.Offsets[element.Tet][2]++
	assert.ErrorContains(t, l.Validate(), "spans")
	l.Offsets[element.Tet][2]--

	l.NumLeaves = 12
	assert.ErrorContains(t, l.Validate(), "groups hold")
}
