package element

import (
	"errors"
	"fmt"
	"sync"

	"github.com/notargets/hadapt/element/basis"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrOrder            = errors.New("curvature order must be at least 1")
	ErrUnsupportedOrder = errors.New("curvature order not supported for element type")
)

// NumNodes returns the number of Lagrange nodes of type t at the given order
func NumNodes(t GeometryType, order int) int {
	n := order + 1
	switch t {
	case Vertex:
		return 1
	case Line:
		return n
	case Tri:
		return n * (n + 1) / 2
	case Quad:
		return n * n
	case Tet:
		return n * (n + 1) * (n + 2) / 6
	case Hex:
		return n * n * n
	case Prism:
		return n * (n + 1) / 2 * n
	case Pyramid:
		if order == 1 {
			return 5
		}
	}
	return 0
}

// LagrangeNodes returns the equispaced nodes of type t at the given order in
// reference coordinates. Corner nodes come first in corner order, the rest
// follow in lexicographic order (x fastest).
func LagrangeNodes(t GeometryType, order int) ([]Coord, error) {
	if order < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrOrder, order)
	}
	if t == Pyramid && order != 1 {
		return nil, fmt.Errorf("%w: %s order %d", ErrUnsupportedOrder, t, order)
	}
	c := float64(order)
	grid := func(i int) float64 { return -1 + 2*float64(i)/c }
	unit := func(i int) float64 { return float64(i) / c }

	var nodes []Coord
	switch t {
	case Vertex, Pyramid:
		return ReferenceCorners(t), nil
	case Line:
		for i := 0; i <= order; i++ {
			nodes = append(nodes, Coord{grid(i), 0, 0})
		}
	case Tri:
		for j := 0; j <= order; j++ {
			for i := 0; i <= order-j; i++ {
				nodes = append(nodes, Coord{unit(i), unit(j), 0})
			}
		}
	case Quad:
		for j := 0; j <= order; j++ {
			for i := 0; i <= order; i++ {
				nodes = append(nodes, Coord{grid(i), grid(j), 0})
			}
		}
	case Tet:
		for k := 0; k <= order; k++ {
			for j := 0; j <= order-k; j++ {
				for i := 0; i <= order-j-k; i++ {
					nodes = append(nodes, Coord{unit(i), unit(j), unit(k)})
				}
			}
		}
	case Hex:
		for k := 0; k <= order; k++ {
			for j := 0; j <= order; j++ {
				for i := 0; i <= order; i++ {
					nodes = append(nodes, Coord{grid(i), grid(j), grid(k)})
				}
			}
		}
	case Prism:
		for k := 0; k <= order; k++ {
			for j := 0; j <= order; j++ {
				for i := 0; i <= order-j; i++ {
					nodes = append(nodes, Coord{unit(i), unit(j), grid(k)})
				}
			}
		}
	default:
		return nil, fmt.Errorf("unknown element type %d", int(t))
	}
	return cornersFirst(t, nodes), nil
}

// cornersFirst moves the corner nodes to the front, keeping the relative
// order of the remaining nodes
func cornersFirst(t GeometryType, nodes []Coord) []Coord {
	corners := referenceCorners[t]
	out := make([]Coord, 0, len(nodes))
	out = append(out, corners...)
	for _, n := range nodes {
		isCorner := false
		for _, c := range corners {
			if n == c {
				isCorner = true
				break
			}
		}
		if !isCorner {
			out = append(out, n)
		}
	}
	return out
}

// ShapeFunctions evaluates the Lagrange basis of one element type and order.
// N_j(x) = sum_m phi_m(x) Vinv_{mj} with V the modal Vandermonde at the nodes.
type ShapeFunctions struct {
	Type  GeometryType
	Order int
	Nodes []Coord
	Vinv  *mat.Dense // nil for first order pyramids, whose basis is rational
}

var (
	shapeMu    sync.Mutex
	shapeCache = map[[2]int]*ShapeFunctions{}
)

// GetShapeFunctions returns the (cached) Lagrange basis of type t at order
func GetShapeFunctions(t GeometryType, order int) (*ShapeFunctions, error) {
	key := [2]int{int(t), order}
	shapeMu.Lock()
	defer shapeMu.Unlock()
	if sf, ok := shapeCache[key]; ok {
		return sf, nil
	}
	nodes, err := LagrangeNodes(t, order)
	if err != nil {
		return nil, err
	}
	sf := &ShapeFunctions{Type: t, Order: order, Nodes: nodes}
	if t != Pyramid {
		V := modal(t, order, nodes)
		var Vinv mat.Dense
		if err = Vinv.Inverse(V); err != nil {
			return nil, fmt.Errorf("%s order %d Vandermonde: %w", t, order, err)
		}
		sf.Vinv = &Vinv
	}
	shapeCache[key] = sf
	return sf, nil
}

// NumNodes returns the number of nodes (and basis functions)
func (sf *ShapeFunctions) NumNodes() int { return len(sf.Nodes) }

// Eval returns the [len(xs) x NumNodes] matrix of basis values at xs
func (sf *ShapeFunctions) Eval(xs []Coord) *mat.Dense {
	if sf.Vinv == nil {
		out := mat.NewDense(len(xs), sf.NumNodes(), nil)
		row := make([]float64, sf.NumNodes())
		for i, x := range xs {
			out.SetRow(i, LinearShape(sf.Type, x, row))
		}
		return out
	}
	var out mat.Dense
	out.Mul(modal(sf.Type, sf.Order, xs), sf.Vinv)
	return &out
}

// Interpolate evaluates, at every reference point of xs, the field whose
// nodal values are the rows of values ([NumNodes x 3] row major). The result
// is written as len(xs) consecutive triplets into dst.
func (sf *ShapeFunctions) Interpolate(xs []Coord, values []float64, dst []float64) []float64 {
	if len(xs) == 0 {
		return dst
	}
	N := sf.Eval(xs)
	vals := mat.NewDense(sf.NumNodes(), 3, values)
	var out mat.Dense
	out.Mul(N, vals)
	for i := range xs {
		dst = append(dst, out.At(i, 0), out.At(i, 1), out.At(i, 2))
	}
	return dst
}

// modal builds the modal Vandermonde matrix of type t at points xs, mapping
// the unit simplex coordinates onto the bi-unit ones used by basis
func modal(t GeometryType, order int, xs []Coord) *mat.Dense {
	n := len(xs)
	r, s, u := make([]float64, n), make([]float64, n), make([]float64, n)
	for i, x := range xs {
		r[i], s[i], u[i] = x[0], x[1], x[2]
	}
	toBiUnit := func(v []float64) {
		for i := range v {
			v[i] = 2*v[i] - 1
		}
	}
	switch t {
	case Vertex:
		V := mat.NewDense(n, 1, nil)
		for i := 0; i < n; i++ {
			V.Set(i, 0, 1)
		}
		return V
	case Line:
		return basis.Vandermonde1D(order, r)
	case Tri:
		toBiUnit(r)
		toBiUnit(s)
		return basis.Vandermonde2D(order, r, s)
	case Quad:
		return basis.VandermondeQuad(order, r, s)
	case Tet:
		toBiUnit(r)
		toBiUnit(s)
		toBiUnit(u)
		return basis.Vandermonde3D(order, r, s, u)
	case Hex:
		return basis.VandermondeHex(order, r, s, u)
	case Prism:
		toBiUnit(r)
		toBiUnit(s)
		return basis.VandermondePrism(order, r, s, u)
	}
	panic(fmt.Sprintf("no modal basis for %s", t))
}
