package element

import (
	"gonum.org/v1/gonum/floats"
)

// Child is one sub-element of a split, its corners given in the reference
// space of the parent.
type Child struct {
	Type    GeometryType
	Corners []Coord
}

// NumTransitionChildren is the number of tetrahedra produced by a transition split
const NumTransitionChildren = 4

// NumDiagonals is the number of opposite edge pairs of a tetrahedron. Pair d
// defines the interior diagonal (through-edge) joining the midpoints of its
// two edges.
const NumDiagonals = 3

// tetEdgePairs lists the opposite edges of each through-edge
var tetEdgePairs = [NumDiagonals][2][2]int{
	{{0, 1}, {2, 3}},
	{{0, 2}, {1, 3}},
	{{0, 3}, {1, 2}},
}

var (
	fullSplits       [NumTypes][]Child
	tetFullSplits    [NumDiagonals][]Child
	tetTransitions   [NumDiagonals][]Child
	pyramidChildType [10]GeometryType
)

func init() {
	fullSplits[Vertex] = []Child{{Vertex, ReferenceCorners(Vertex)}}
	fullSplits[Line] = lineChildren()
	fullSplits[Tri] = triChildren()
	fullSplits[Quad] = quadChildren()
	fullSplits[Hex] = hexChildren()
	fullSplits[Prism] = prismChildren()
	fullSplits[Pyramid] = pyramidChildren()
	for d := 0; d < NumDiagonals; d++ {
		tetFullSplits[d] = tetChildren(referenceCorners[Tet], d)
		tetTransitions[d] = tetTransitionChildren(referenceCorners[Tet], d)
	}
	fullSplits[Tet] = tetFullSplits[0]
	for i, c := range fullSplits[Pyramid] {
		pyramidChildType[i] = c.Type
	}
}

// FullSplit returns the children of a full split of type t. The diagonal
// selects the interior through-edge of a tetrahedron and is ignored for
// other types. The returned slice is shared and must not be modified.
func FullSplit(t GeometryType, diagonal int) []Child {
	if t == Tet {
		return tetFullSplits[diagonal]
	}
	return fullSplits[t]
}

// TransitionSplit returns the 4 tetrahedra of a transition split along
// through-edge pair. The returned slice is shared and must not be modified.
func TransitionSplit(pair int) []Child {
	return tetTransitions[pair]
}

// ChildType returns the type of child index of a full split of type t
func ChildType(t GeometryType, index int) GeometryType {
	if t == Pyramid {
		return pyramidChildType[index]
	}
	return t
}

// ShortestDiagonal picks the tetrahedron through-edge with the smallest length
// given the tetrahedron's corner coordinates. Ties go to the lowest index.
func ShortestDiagonal(corners []Coord) int {
	best, bestLen := 0, 0.0
	for d := 0; d < NumDiagonals; d++ {
		e1, e2 := tetEdgePairs[d][0], tetEdgePairs[d][1]
		m1 := mid(corners[e1[0]], corners[e1[1]])
		m2 := mid(corners[e2[0]], corners[e2[1]])
		l := floats.Distance(m1[:], m2[:], 2)
		if d == 0 || l < bestLen-1e-12*bestLen {
			best, bestLen = d, l
		}
	}
	return best
}

func lineChildren() []Child {
	c := referenceCorners[Line]
	m := mid(c[0], c[1])
	return []Child{
		{Line, []Coord{c[0], m}},
		{Line, []Coord{m, c[1]}},
	}
}

func triChildren() []Child {
	c := referenceCorners[Tri]
	m01, m12, m20 := mid(c[0], c[1]), mid(c[1], c[2]), mid(c[2], c[0])
	return []Child{
		{Tri, []Coord{c[0], m01, m20}},
		{Tri, []Coord{m01, c[1], m12}},
		{Tri, []Coord{m20, m12, c[2]}},
		{Tri, []Coord{m01, m12, m20}},
	}
}

func quadChildren() []Child {
	c := referenceCorners[Quad]
	m01, m12, m23, m30 := mid(c[0], c[1]), mid(c[1], c[2]), mid(c[2], c[3]), mid(c[3], c[0])
	ctr := Coord{0, 0, 0}
	return []Child{
		{Quad, []Coord{c[0], m01, ctr, m30}},
		{Quad, []Coord{m01, c[1], m12, ctr}},
		{Quad, []Coord{ctr, m12, c[2], m23}},
		{Quad, []Coord{m30, ctr, m23, c[3]}},
	}
}

// hexChildren returns the 8 octants, child i touching parent corner i
func hexChildren() []Child {
	c := referenceCorners[Hex]
	children := make([]Child, 8)
	for i := range children {
		var lo Coord
		for d := 0; d < 3; d++ {
			if c[i][d] > 0 {
				lo[d] = 0
			} else {
				lo[d] = -1
			}
		}
		corners := make([]Coord, 8)
		for k := range corners {
			for d := 0; d < 3; d++ {
				corners[k][d] = lo[d] + (c[k][d]+1)/2
			}
		}
		children[i] = Child{Hex, corners}
	}
	return children
}

// prismChildren stacks the 4 triangle children in two layers, bottom first
func prismChildren() []Child {
	tris := triChildren()
	children := make([]Child, 0, 8)
	for layer := 0; layer < 2; layer++ {
		zlo, zhi := -1+float64(layer), float64(layer)
		for _, tc := range tris {
			corners := make([]Coord, 6)
			for k := 0; k < 3; k++ {
				corners[k] = Coord{tc.Corners[k][0], tc.Corners[k][1], zlo}
				corners[k+3] = Coord{tc.Corners[k][0], tc.Corners[k][1], zhi}
			}
			children = append(children, Child{Prism, corners})
		}
	}
	return children
}

// pyramidChildren splits into 4 base corner pyramids, the top pyramid, the
// inverted middle pyramid and the 4 tetrahedra around the base edge midpoints
func pyramidChildren() []Child {
	c := referenceCorners[Pyramid]
	m01, m12, m23, m30 := mid(c[0], c[1]), mid(c[1], c[2]), mid(c[2], c[3]), mid(c[3], c[0])
	ctr := Coord{0, 0, 0}
	a0, a1, a2, a3 := mid(c[0], c[4]), mid(c[1], c[4]), mid(c[2], c[4]), mid(c[3], c[4])
	children := []Child{
		{Pyramid, []Coord{c[0], m01, ctr, m30, a0}},
		{Pyramid, []Coord{m01, c[1], m12, ctr, a1}},
		{Pyramid, []Coord{ctr, m12, c[2], m23, a2}},
		{Pyramid, []Coord{m30, ctr, m23, c[3], a3}},
		{Pyramid, []Coord{a0, a1, a2, a3, c[4]}},
		// Apex down: the base is listed clockwise to keep a positive orientation
		{Pyramid, []Coord{a0, a3, a2, a1, ctr}},
		{Tet, orient([]Coord{m01, ctr, a0, a1})},
		{Tet, orient([]Coord{m12, ctr, a1, a2})},
		{Tet, orient([]Coord{m23, ctr, a2, a3})},
		{Tet, orient([]Coord{m30, ctr, a3, a0})},
	}
	return children
}

// tetChildren splits a tetrahedron into its 4 corner tetrahedra followed by the
// 4 tetrahedra of the inner octahedron around through-edge d
func tetChildren(c []Coord, d int) []Child {
	m := tetMidpoints(c)
	children := []Child{
		{Tet, orient([]Coord{c[0], m[0][1], m[0][2], m[0][3]})},
		{Tet, orient([]Coord{m[0][1], c[1], m[1][2], m[1][3]})},
		{Tet, orient([]Coord{m[0][2], m[1][2], c[2], m[2][3]})},
		{Tet, orient([]Coord{m[0][3], m[1][3], m[2][3], c[3]})},
	}
	diag := tetEdgePairs[d]
	d1, d2 := m[diag[0][0]][diag[0][1]], m[diag[1][0]][diag[1][1]]
	p, q := tetEdgePairs[(d+1)%NumDiagonals], tetEdgePairs[(d+2)%NumDiagonals]
	// Opposite octahedron vertices are midpoints of opposite edges, so this
	// visits the equator in cyclic order.
	equator := [4]Coord{
		m[p[0][0]][p[0][1]],
		m[q[0][0]][q[0][1]],
		m[p[1][0]][p[1][1]],
		m[q[1][0]][q[1][1]],
	}
	for i := 0; i < 4; i++ {
		children = append(children, Child{Tet, orient([]Coord{d1, d2, equator[i], equator[(i+1)%4]})})
	}
	return children
}

// tetTransitionChildren bisects both edges of opposite pair d, which leaves
// 4 tetrahedra sharing the through-edge
func tetTransitionChildren(c []Coord, d int) []Child {
	e1, e2 := tetEdgePairs[d][0], tetEdgePairs[d][1]
	a, b := c[e1[0]], c[e1[1]]
	p, q := c[e2[0]], c[e2[1]]
	m1, m2 := mid(a, b), mid(p, q)
	return []Child{
		{Tet, orient([]Coord{m1, b, p, m2})},
		{Tet, orient([]Coord{m1, b, m2, q})},
		{Tet, orient([]Coord{a, m1, p, m2})},
		{Tet, orient([]Coord{a, m1, m2, q})},
	}
}

// tetMidpoints returns m[i][j] = m[j][i] = midpoint of edge (i,j)
func tetMidpoints(c []Coord) (m [4][4]Coord) {
	for i := 0; i < 4; i++ {
		for j := i + 1; j < 4; j++ {
			m[i][j] = mid(c[i], c[j])
			m[j][i] = m[i][j]
		}
	}
	return
}

// orient swaps two corners of a simplex listed with negative orientation
func orient(c []Coord) []Coord {
	if SignedMeasure(c) < 0 {
		c[1], c[2] = c[2], c[1]
	}
	return c
}

// SignedMeasure returns the signed length, area or volume (times d!) of a
// simplex given by its d+1 corners
func SignedMeasure(c []Coord) float64 {
	switch len(c) {
	case 2:
		return c[1][0] - c[0][0]
	case 3:
		u, v := sub(c[1], c[0]), sub(c[2], c[0])
		return u[0]*v[1] - u[1]*v[0]
	case 4:
		u, v, w := sub(c[1], c[0]), sub(c[2], c[0]), sub(c[3], c[0])
		return u[0]*(v[1]*w[2]-v[2]*w[1]) - u[1]*(v[0]*w[2]-v[2]*w[0]) + u[2]*(v[0]*w[1]-v[1]*w[0])
	}
	return 0
}
