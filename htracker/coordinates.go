package htracker

import (
	"fmt"
	"math"

	"github.com/notargets/hadapt/element"
)

// AdaptedCoordinates holds the geometry of every leaf, grouped by leaf type.
// Within a type, leaves appear in leaf number order.
type AdaptedCoordinates struct {
	// Reference holds, per leaf, its Lagrange nodes at the curvature order
	// expressed in the reference space of the original element, as
	// consecutive (x, y, z) triplets
	Reference [element.NumTypes][]float64
	// Real holds the same nodes mapped through the original element geometry
	Real [element.NumTypes][]float64
	// LeafNums holds, per leaf, the original element index of leaves created
	// by a transition split, -1 otherwise
	LeafNums [element.NumTypes][]int
	// Leaves holds the leaf number of every leaf
	Leaves [element.NumTypes][]int
}

// walkGeometry calls fn at every leaf with the leaf corners expressed in the
// reference space of its original element. Corners are tracked down the
// current path with one slice per depth. A full tetrahedron split uses the
// shortest interior diagonal of the tetrahedron in original reference space.
func (t *Tree) walkGeometry(fn func(c *Cursor, corners []element.Coord)) {
	c := t.NewCursor()
	corners := make([][]element.Coord, t.maxDepth+1)
	diag := make([]int, t.maxDepth+1)
	for leaves := 0; leaves < t.numLeaves; {
		c.Next()
		d := c.CountSplits()
		if d == 0 {
			corners[0] = append(corners[0][:0], element.ReferenceCorners(c.Type())...)
		} else {
			p := c.parent()
			var child element.Child
			if p.state == Transition {
				child = element.TransitionSplit(int(p.selector))[c.index]
			} else {
				child = element.FullSplit(p.typ, diag[d-1])[c.index]
			}
			corners[d] = corners[d][:0]
			for _, x := range child.Corners {
				corners[d] = append(corners[d], element.Map(p.typ, corners[d-1], x))
			}
		}
		switch {
		case c.IsAtLeaf():
			fn(c, corners[d])
			leaves++
		case c.Type() == element.Tet && c.State() == FullSplit:
			diag[d] = element.ShortestDiagonal(corners[d])
		}
	}
}

// snapper rounds reference coordinates onto the grid of all points that can
// be produced by splitting down to the current depth at the curvature order.
// Grid points are i/n, computed by a single division so they are the nearest
// float64 to the exact fraction.
type snapper struct {
	n     float64
	noise [3]float64
}

func newSnapper(order, maxDepth int, noise []float64) snapper {
	s := snapper{n: float64(order) * math.Pow(2, float64(maxDepth))}
	copy(s.noise[:], noise)
	return s
}

func (s snapper) snap(x element.Coord) element.Coord {
	for d := range x {
		if s.noise[d] <= 0 {
			continue
		}
		r := math.Round(x[d]*s.n) / s.n
		if math.Abs(x[d]-r) <= s.noise[d] {
			x[d] = r
		}
	}
	return x
}

// AdaptedCoordinates computes the geometry of every leaf. oc holds, per type,
// the node coordinates of the original elements of that type: for each
// element, element.NumNodes(type, CurvatureOrder()) nodes as (x, y, z)
// triplets in element.LagrangeNodes order.
//
// noiseThreshold is the per component tolerance under which reference
// coordinates are snapped to the exact split grid; components without an
// entry are not snapped.
func (t *Tree) AdaptedCoordinates(oc [element.NumTypes][]float64, noiseThreshold []float64) (*AdaptedCoordinates, error) {
	var (
		shapes    [element.NumTypes]*element.ShapeFunctions
		leafNodes [element.NumTypes][]element.Coord
		err       error
	)
	for _, gt := range element.Types() {
		if t.numOriginal[gt] == 0 {
			continue
		}
		if shapes[gt], err = element.GetShapeFunctions(gt, t.curvatureOrder); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCurvatureOrder, err)
		}
		want := t.numOriginal[gt] * shapes[gt].NumNodes() * 3
		if len(oc[gt]) != want {
			return nil, fmt.Errorf("%w: %s needs %d values, got %d", ErrCoordinateCount, gt, want, len(oc[gt]))
		}
	}
	counts := t.CountInTypes()
	for _, gt := range element.Types() {
		if counts[gt] == 0 {
			continue
		}
		if leafNodes[gt], err = element.LagrangeNodes(gt, t.curvatureOrder); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCurvatureOrder, err)
		}
	}

	out := &AdaptedCoordinates{}
	for gt, n := range counts {
		if n == 0 {
			continue
		}
		size := n * len(leafNodes[gt]) * 3
		out.Reference[gt] = make([]float64, 0, size)
		out.Real[gt] = make([]float64, 0, size)
		out.LeafNums[gt] = make([]int, 0, n)
		out.Leaves[gt] = make([]int, 0, n)
	}

	sn := newSnapper(t.curvatureOrder, t.maxDepth, noiseThreshold)
	var pts []element.Coord
	t.walkGeometry(func(c *Cursor, corners []element.Coord) {
		lt, ot, oi := c.Type(), c.OriginalType(), c.OriginalIndex()
		pts = element.MapAll(lt, corners, leafNodes[lt], pts)
		for i, x := range pts {
			pts[i] = sn.snap(x)
			out.Reference[lt] = append(out.Reference[lt], pts[i][0], pts[i][1], pts[i][2])
		}
		block := shapes[ot].NumNodes() * 3
		out.Real[lt] = shapes[ot].Interpolate(pts, oc[ot][oi*block:(oi+1)*block], out.Real[lt])

		num := -1
		if c.CountSplits() > 0 && c.parent().state == Transition {
			num = oi
		}
		out.LeafNums[lt] = append(out.LeafNums[lt], num)
		out.Leaves[lt] = append(out.Leaves[lt], c.LeafIndex())
	})
	return out, nil
}

// InOriginal maps points given in the reference space of the leaves into the
// reference space of their original elements. Points of the i-th leaf of
// type gt are the triplets rc[gt][ad[gt][i]:ad[gt][i+1]]; ad[gt] has one entry
// per leaf of that type plus a final one equal to len(rc[gt]).
//
// The result is grouped the same way per original element: the points of
// original element e of type gt are orc[gt][oad[gt][e]:oad[gt][e+1]], in leaf
// order.
func (t *Tree) InOriginal(ad [element.NumTypes][]int, rc [element.NumTypes][]float64) (oad [element.NumTypes][]int, orc [element.NumTypes][]float64, err error) {
	counts := t.CountInTypes()
	for _, gt := range element.Types() {
		if err = checkOffsets(gt, ad[gt], counts[gt], len(rc[gt])); err != nil {
			return oad, orc, err
		}
	}
	for gt, n := range t.numOriginal {
		oad[gt] = make([]int, n+1)
		orc[gt] = make([]float64, 0, len(rc[gt]))
	}

	var next [element.NumTypes]int
	prevType, prevIndex := element.GeometryType(0), -1
	t.walkGeometry(func(c *Cursor, corners []element.Coord) {
		lt, ot, oi := c.Type(), c.OriginalType(), c.OriginalIndex()
		if ot != prevType || oi != prevIndex {
			oad[ot][oi] = len(orc[ot])
			prevType, prevIndex = ot, oi
		}
		i := next[lt]
		next[lt]++
		block := rc[lt][ad[lt][i]:ad[lt][i+1]]
		for k := 0; k+2 < len(block); k += 3 {
			x := element.Map(lt, corners, element.Coord{block[k], block[k+1], block[k+2]})
			orc[ot] = append(orc[ot], x[0], x[1], x[2])
		}
	})
	for gt, n := range t.numOriginal {
		oad[gt][n] = len(orc[gt])
	}
	return oad, orc, nil
}

func checkOffsets(gt element.GeometryType, ad []int, leaves, size int) error {
	if leaves == 0 && len(ad) == 0 {
		if size != 0 {
			return fmt.Errorf("%w: %d %s coordinates without leaves", ErrOffsetTable, size, gt)
		}
		return nil
	}
	if len(ad) != leaves+1 {
		return fmt.Errorf("%w: %s has %d leaves, got %d offsets", ErrOffsetTable, gt, leaves, len(ad))
	}
	if ad[0] != 0 || ad[leaves] != size {
		return fmt.Errorf("%w: %s offsets must span [0, %d]", ErrOffsetTable, gt, size)
	}
	for i := 0; i < leaves; i++ {
		if n := ad[i+1] - ad[i]; n < 0 || n%3 != 0 {
			return fmt.Errorf("%w: %s leaf %d holds %d values", ErrOffsetTable, gt, i, n)
		}
	}
	return nil
}
