package element

import (
	"fmt"
	"strings"
)

// Dimensionality represents the spatial dimension of an element
type Dimensionality uint8

const (
	D0 Dimensionality = iota // 0D elements (points)
	D1                       // 1D elements (lines, edges)
	D2                       // 2D elements (triangles, quadrilaterals)
	D3                       // 3D elements (tetrahedra, hexahedra, etc.)
)

// GeometryType identifies the shape of an element. The numeric values are
// load-bearing: trees are stored and traversed in ascending type order.
type GeometryType uint8

const (
	Vertex  GeometryType = iota // Point
	Line                        // Line segment
	Tri                         // Triangle
	Quad                        // Quadrilateral
	Tet                         // Tetrahedron
	Hex                         // Hexahedron
	Prism                       // Triangular prism
	Pyramid                     // Square-based pyramid
)

// NumTypes is the number of element geometries
const NumTypes = 8

// Coord is a point in reference or physical space. Unused trailing
// components are zero for lower dimensional elements.
type Coord [3]float64

// Properties contains metadata describing an element type
type Properties struct {
	Name        string         // Full descriptive name (e.g., "Tetrahedron")
	ShortName   string         // Abbreviated name (e.g., "Tet")
	Type        GeometryType   // Element shape
	Dimensions  Dimensionality // Spatial dimension
	NumCorners  int            // Number of vertices
	NumEdges    int            // Number of edges
	NumFaces    int            // Number of faces (3D) or sides (2D)
	NumSubElems int            // Number of children of a full split
}

var properties = [NumTypes]Properties{
	{"Point", "Pt", Vertex, D0, 1, 0, 0, 1},
	{"Line", "Line", Line, D1, 2, 1, 0, 2},
	{"Triangle", "Tri", Tri, D2, 3, 3, 3, 4},
	{"Quadrangle", "Quad", Quad, D2, 4, 4, 4, 4},
	{"Tetrahedron", "Tet", Tet, D3, 4, 6, 4, 8},
	{"Hexahedron", "Hex", Hex, D3, 8, 12, 6, 8},
	{"Prism", "Prism", Prism, D3, 6, 9, 5, 8},
	{"Pyramid", "Pyr", Pyramid, D3, 5, 8, 5, 10},
}

// GetProperties returns the metadata of element type t
func (t GeometryType) GetProperties() Properties {
	return properties[t]
}

// Valid reports whether t is one of the NumTypes known geometries
func (t GeometryType) Valid() bool { return t < NumTypes }

// Dimensions returns the spatial dimension of t
func (t GeometryType) Dimensions() Dimensionality { return properties[t].Dimensions }

// NumSubElems returns the number of children produced by a full split
func (t GeometryType) NumSubElems() int { return properties[t].NumSubElems }

// NumCorners returns the number of vertices of t
func (t GeometryType) NumCorners() int { return properties[t].NumCorners }

func (t GeometryType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("GeometryType(%d)", int(t))
	}
	return properties[t].Name
}

// ParseGeometryType accepts either the full or short name, case insensitive
func ParseGeometryType(name string) (GeometryType, error) {
	for _, p := range properties {
		if strings.EqualFold(name, p.Name) || strings.EqualFold(name, p.ShortName) {
			return p.Type, nil
		}
	}
	return 0, fmt.Errorf("unknown element type %q", name)
}

// Types lists all geometries in storage order
func Types() []GeometryType {
	return []GeometryType{Vertex, Line, Tri, Quad, Tet, Hex, Prism, Pyramid}
}
