package element

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertiesTable(t *testing.T) {
	wantSub := []int{1, 2, 4, 4, 8, 8, 8, 10}
	wantDim := []Dimensionality{D0, D1, D2, D2, D3, D3, D3, D3}
	for i, gt := range Types() {
		assert.Equal(t, GeometryType(i), gt)
		assert.Equal(t, wantSub[i], gt.NumSubElems(), gt.String())
		assert.Equal(t, wantDim[i], gt.Dimensions(), gt.String())
		assert.Len(t, ReferenceCorners(gt), gt.NumCorners())
	}
	gt, err := ParseGeometryType("tet")
	require.NoError(t, err)
	assert.Equal(t, Tet, gt)
	_, err = ParseGeometryType("banana")
	assert.Error(t, err)
}

func TestLinearShapeKronecker(t *testing.T) {
	for _, gt := range Types() {
		corners := ReferenceCorners(gt)
		buf := make([]float64, 8)
		for i, c := range corners {
			N := LinearShape(gt, c, buf)
			for j, v := range N {
				want := 0.0
				if i == j {
					want = 1
				}
				assert.InDelta(t, want, v, 1e-14, "%s N_%d at corner %d", gt, j, i)
			}
		}
	}
}

func TestMapReproducesAffine(t *testing.T) {
	// An affine image of every reference element must be reproduced exactly
	A := [3][3]float64{{2, 0.5, 0}, {0, 1, 0.25}, {0.1, 0, 3}}
	b := Coord{1, -2, 0.5}
	affine := func(x Coord) (y Coord) {
		for i := 0; i < 3; i++ {
			y[i] = b[i]
			for j := 0; j < 3; j++ {
				y[i] += A[i][j] * x[j]
			}
		}
		return
	}
	probe := map[GeometryType]Coord{
		Line: {0.3, 0, 0}, Tri: {0.2, 0.3, 0}, Quad: {0.4, -0.7, 0},
		Tet: {0.1, 0.2, 0.3}, Hex: {0.5, -0.25, 0.75}, Prism: {0.2, 0.5, -0.4},
		Pyramid: {0.2, -0.1, 0.4},
	}
	for gt, x := range probe {
		corners := ReferenceCorners(gt)
		for i := range corners {
			corners[i] = affine(corners[i])
		}
		got := Map(gt, corners, x)
		want := affine(x)
		for d := 0; d < 3; d++ {
			assert.InDelta(t, want[d], got[d], 1e-13, "%s component %d", gt, d)
		}
	}
}

func TestShapeFunctionsKronecker(t *testing.T) {
	for _, gt := range Types() {
		for order := 1; order <= 3; order++ {
			if gt == Pyramid && order > 1 {
				_, err := GetShapeFunctions(gt, order)
				assert.ErrorIs(t, err, ErrUnsupportedOrder)
				continue
			}
			t.Run(fmt.Sprintf("%s/%d", gt, order), func(t *testing.T) {
				sf, err := GetShapeFunctions(gt, order)
				require.NoError(t, err)
				require.Equal(t, NumNodes(gt, order), sf.NumNodes())
				for i, c := range ReferenceCorners(gt) {
					assert.Equal(t, c, sf.Nodes[i], "corners first")
				}
				N := sf.Eval(sf.Nodes)
				for i := 0; i < sf.NumNodes(); i++ {
					for j := 0; j < sf.NumNodes(); j++ {
						want := 0.0
						if i == j {
							want = 1
						}
						assert.InDelta(t, want, N.At(i, j), 1e-9)
					}
				}
			})
		}
	}
	_, err := LagrangeNodes(Tri, 0)
	assert.ErrorIs(t, err, ErrOrder)
}

func TestInterpolateQuadraticTriangle(t *testing.T) {
	sf, err := GetShapeFunctions(Tri, 2)
	require.NoError(t, err)
	// Curved triangle: x = r, y = s, z = r*s
	values := make([]float64, 0, 3*sf.NumNodes())
	for _, n := range sf.Nodes {
		values = append(values, n[0], n[1], n[0]*n[1])
	}
	got := sf.Interpolate([]Coord{{0.25, 0.25, 0}, {0.6, 0.1, 0}}, values, nil)
	require.Len(t, got, 6)
	assert.InDelta(t, 0.0625, got[2], 1e-12)
	assert.InDelta(t, 0.06, got[5], 1e-12)
}

func TestSimplexSplitsConserveMeasure(t *testing.T) {
	check := func(t *testing.T, parent []Coord, children []Child, n int) {
		require.Len(t, children, n)
		total := 0.0
		for i, c := range children {
			m := SignedMeasure(c.Corners)
			assert.Greater(t, m, 0.0, "child %d orientation", i)
			total += m
		}
		assert.InDelta(t, SignedMeasure(parent), total, 1e-14)
	}
	t.Run("tri", func(t *testing.T) {
		check(t, ReferenceCorners(Tri), FullSplit(Tri, 0), 4)
	})
	for d := 0; d < NumDiagonals; d++ {
		t.Run(fmt.Sprintf("tet full %d", d), func(t *testing.T) {
			check(t, ReferenceCorners(Tet), FullSplit(Tet, d), 8)
		})
		t.Run(fmt.Sprintf("tet transition %d", d), func(t *testing.T) {
			check(t, ReferenceCorners(Tet), TransitionSplit(d), NumTransitionChildren)
		})
	}
}

func TestPyramidSplit(t *testing.T) {
	children := FullSplit(Pyramid, 0)
	require.Len(t, children, 10)
	tetVolume := 0.0
	for i, c := range children {
		assert.Equal(t, ChildType(Pyramid, i), c.Type)
		if i < 6 {
			assert.Equal(t, Pyramid, c.Type)
			continue
		}
		assert.Equal(t, Tet, c.Type)
		m := SignedMeasure(c.Corners)
		assert.Greater(t, m, 0.0)
		tetVolume += m / 6
	}
	// 6 half-scale pyramids take 6/8 of the 4/3 volume, the tets the rest
	assert.InDelta(t, 4.0/3/4, tetVolume, 1e-14)
}

func TestHexAndPrismChildrenTile(t *testing.T) {
	for _, gt := range []GeometryType{Quad, Hex, Prism} {
		children := FullSplit(gt, 0)
		require.Len(t, children, gt.NumSubElems())
		// The centroid of every child is a distinct interior point
		seen := map[Coord]bool{}
		for _, c := range children {
			var g Coord
			for _, p := range c.Corners {
				for d := 0; d < 3; d++ {
					g[d] += p[d] / float64(len(c.Corners))
				}
			}
			assert.False(t, seen[g], "%s duplicate child", gt)
			seen[g] = true
		}
	}
}

func TestShortestDiagonal(t *testing.T) {
	c := ReferenceCorners(Tet)
	assert.Equal(t, 0, ShortestDiagonal(c), "ties go to the lowest index")

	// Moving corner 3 above (1,1) brings the midpoints of edges 03 and 12 together
	c[3] = Coord{1, 1, 1}
	d := ShortestDiagonal(c)
	assert.Equal(t, 2, d)
	lengths := make([]float64, NumDiagonals)
	for i := range lengths {
		e1, e2 := tetEdgePairs[i][0], tetEdgePairs[i][1]
		m1, m2 := mid(c[e1[0]], c[e1[1]]), mid(c[e2[0]], c[e2[1]])
		v := sub(m1, m2)
		lengths[i] = math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	}
	assert.InDelta(t, 0.5, lengths[2], 1e-15)
	for i := range lengths {
		assert.LessOrEqual(t, lengths[d], lengths[i])
	}
}
