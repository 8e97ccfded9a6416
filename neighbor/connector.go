package neighbor

import (
	"fmt"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/notargets/hadapt/element"
	"github.com/notargets/hadapt/htracker"
	"gonum.org/v1/gonum/floats"
)

// DefaultTolerance is the box inflation, relative to the size of the mesh,
// used when none is given
const DefaultTolerance = 1e-9

// leafBox is the bounding box of one leaf stored in the R-tree
type leafBox struct {
	leaf int
	rect rtreego.Rect
}

func (b *leafBox) Bounds() rtreego.Rect { return b.rect }

// Index holds the bounding box of every leaf of one forest in an R-tree and
// answers neighbor queries on demand. Two leaves are neighbors when their
// boxes, inflated by the tolerance, overlap. This is a superset of the
// leaves sharing a face, edge or corner.
type Index struct {
	NumLeaves int
	Tolerance float64 // absolute box inflation

	Min, Max [][3]float64 // [leaf] bounding box

	boxes []rtreego.Spatial
	rt    *rtreego.Rtree
}

// NewIndex computes the leaf boxes of tr from the node coordinates of the
// original elements, laid out as for htracker.Tree.AdaptedCoordinates. tol is
// relative to the largest extent of the mesh, DefaultTolerance when not
// positive.
func NewIndex(tr *htracker.Tree, oc [element.NumTypes][]float64, tol float64) (*Index, error) {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	ac, err := tr.AdaptedCoordinates(oc, nil)
	if err != nil {
		return nil, fmt.Errorf("leaf coordinates: %w", err)
	}

	n := tr.CountLeaves()
	ix := &Index{
		NumLeaves: n,
		Min:       make([][3]float64, n),
		Max:       make([][3]float64, n),
	}
	var axis [3][]float64
	for gt := range ac.Real {
		leaves := ac.Leaves[gt]
		if len(leaves) == 0 {
			continue
		}
		stride := len(ac.Real[gt]) / len(leaves)
		for i, leaf := range leaves {
			nodes := ac.Real[gt][i*stride : (i+1)*stride]
			for d := 0; d < 3; d++ {
				axis[d] = axis[d][:0]
				for k := d; k < len(nodes); k += 3 {
					axis[d] = append(axis[d], nodes[k])
				}
				ix.Min[leaf][d] = floats.Min(axis[d])
				ix.Max[leaf][d] = floats.Max(axis[d])
			}
		}
	}
	ix.Tolerance = tol * ix.extent()
	if ix.Tolerance == 0 {
		ix.Tolerance = tol
	}

	ix.boxes = make([]rtreego.Spatial, n)
	for leaf := 0; leaf < n; leaf++ {
		b, err := ix.box(leaf)
		if err != nil {
			return nil, err
		}
		ix.boxes[leaf] = b
	}
	ix.rt = rtreego.NewTree(3, 25, 50, ix.boxes...)
	return ix, nil
}

func (ix *Index) box(leaf int) (*leafBox, error) {
	p := make(rtreego.Point, 3)
	lengths := make([]float64, 3)
	for d := 0; d < 3; d++ {
		p[d] = ix.Min[leaf][d] - ix.Tolerance
		lengths[d] = ix.Max[leaf][d] - ix.Min[leaf][d] + 2*ix.Tolerance
	}
	r, err := rtreego.NewRect(p, lengths)
	if err != nil {
		return nil, fmt.Errorf("leaf %d bounding box: %w", leaf, err)
	}
	return &leafBox{leaf: leaf, rect: r}, nil
}

// extent returns the largest side of the box around every leaf
func (ix *Index) extent() float64 {
	if ix.NumLeaves == 0 {
		return 0
	}
	ext := 0.0
	for d := 0; d < 3; d++ {
		lo, hi := math.Inf(1), math.Inf(-1)
		for leaf := 0; leaf < ix.NumLeaves; leaf++ {
			lo = math.Min(lo, ix.Min[leaf][d])
			hi = math.Max(hi, ix.Max[leaf][d])
		}
		ext = math.Max(ext, hi-lo)
	}
	return ext
}

// Neighbors searches the R-tree for the leaves touching leaf and appends
// them to dst in ascending order
func (ix *Index) Neighbors(leaf int, dst []int) []int {
	start := len(dst)
	for _, s := range ix.rt.SearchIntersect(ix.boxes[leaf].Bounds()) {
		if other := s.(*leafBox).leaf; other != leaf {
			dst = append(dst, other)
		}
	}
	sort.Ints(dst[start:])
	return dst
}

// Connector holds the full adjacency of the leaves of one forest, every
// neighbor list computed up front
type Connector struct {
	NumLeaves int
	Tolerance float64 // absolute box inflation

	Min, Max [][3]float64 // [leaf] bounding box
	Adjacent [][]int      // [leaf] sorted neighbor leaves
}

// NewConnector builds the adjacency of every leaf of tr, see NewIndex
func NewConnector(tr *htracker.Tree, oc [element.NumTypes][]float64, tol float64) (*Connector, error) {
	ix, err := NewIndex(tr, oc, tol)
	if err != nil {
		return nil, err
	}
	c := &Connector{
		NumLeaves: ix.NumLeaves,
		Tolerance: ix.Tolerance,
		Min:       ix.Min,
		Max:       ix.Max,
		Adjacent:  make([][]int, ix.NumLeaves),
	}
	for leaf := range c.Adjacent {
		c.Adjacent[leaf] = ix.Neighbors(leaf, nil)
	}
	return c, nil
}

// Neighbors appends the neighbors of leaf to dst
func (c *Connector) Neighbors(leaf int, dst []int) []int {
	return append(dst, c.Adjacent[leaf]...)
}

// Verify checks that the adjacency is within bounds, irreflexive and
// symmetric
func (c *Connector) Verify() error {
	if len(c.Adjacent) != c.NumLeaves {
		return fmt.Errorf("neighbor table holds %d leaves, expected %d", len(c.Adjacent), c.NumLeaves)
	}
	for leaf, nbrs := range c.Adjacent {
		for _, n := range nbrs {
			if n < 0 || n >= c.NumLeaves {
				return fmt.Errorf("invalid neighbor %d of leaf %d (max %d)", n, leaf, c.NumLeaves-1)
			}
			if n == leaf {
				return fmt.Errorf("leaf %d lists itself as neighbor", leaf)
			}
			if i := sort.SearchInts(c.Adjacent[n], leaf); i == len(c.Adjacent[n]) || c.Adjacent[n][i] != leaf {
				return fmt.Errorf("asymmetric adjacency: %d lists %d but not the reverse", leaf, n)
			}
		}
	}
	return nil
}
