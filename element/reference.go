package element

// Reference elements:
//
//	Vertex   origin
//	Line     [-1,1]
//	Tri      (0,0) (1,0) (0,1)
//	Quad     [-1,1]^2, corners counter clockwise from (-1,-1)
//	Tet      (0,0,0) (1,0,0) (0,1,0) (0,0,1)
//	Hex      [-1,1]^3, Quad corners at z=-1 then at z=1
//	Prism    Tri corners at z=-1 then at z=1
//	Pyramid  Quad corners at z=0, apex (0,0,1)
var referenceCorners = [NumTypes][]Coord{
	Vertex: {{0, 0, 0}},
	Line:   {{-1, 0, 0}, {1, 0, 0}},
	Tri:    {{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
	Quad:   {{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
	Tet:    {{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
	Hex: {
		{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
		{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
	},
	Prism: {
		{0, 0, -1}, {1, 0, -1}, {0, 1, -1},
		{0, 0, 1}, {1, 0, 1}, {0, 1, 1},
	},
	Pyramid: {{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}, {0, 0, 1}},
}

// ReferenceCorners returns a copy of the corner coordinates of the
// reference element of type t
func ReferenceCorners(t GeometryType) []Coord {
	c := make([]Coord, len(referenceCorners[t]))
	copy(c, referenceCorners[t])
	return c
}

// apexTol guards the collapsed pyramid apex where the rational basis is singular
const apexTol = 1e-14

// LinearShape evaluates the corner (first order) shape functions of type t at
// reference point x into dst, which must hold t.NumCorners() values.
func LinearShape(t GeometryType, x Coord, dst []float64) []float64 {
	dst = dst[:t.NumCorners()]
	r, s, u := x[0], x[1], x[2]
	switch t {
	case Vertex:
		dst[0] = 1
	case Line:
		dst[0] = (1 - r) / 2
		dst[1] = (1 + r) / 2
	case Tri:
		dst[0] = 1 - r - s
		dst[1] = r
		dst[2] = s
	case Quad:
		quadShape(r, s, dst)
	case Tet:
		dst[0] = 1 - r - s - u
		dst[1] = r
		dst[2] = s
		dst[3] = u
	case Hex:
		quadShape(r, s, dst[:4])
		lo, hi := (1-u)/2, (1+u)/2
		for i := 0; i < 4; i++ {
			dst[i+4] = dst[i] * hi
			dst[i] *= lo
		}
	case Prism:
		lo, hi := (1-u)/2, (1+u)/2
		tri := [3]float64{1 - r - s, r, s}
		for i := 0; i < 3; i++ {
			dst[i] = tri[i] * lo
			dst[i+3] = tri[i] * hi
		}
	case Pyramid:
		w := 1 - u
		if w < apexTol {
			dst[0], dst[1], dst[2], dst[3], dst[4] = 0, 0, 0, 0, 1
			break
		}
		c := referenceCorners[Pyramid]
		for i := 0; i < 4; i++ {
			dst[i] = (w + c[i][0]*r) * (w + c[i][1]*s) / (4 * w)
		}
		dst[4] = u
	}
	return dst
}

func quadShape(r, s float64, dst []float64) {
	dst[0] = (1 - r) * (1 - s) / 4
	dst[1] = (1 + r) * (1 - s) / 4
	dst[2] = (1 + r) * (1 + s) / 4
	dst[3] = (1 - r) * (1 + s) / 4
}

// Map sends reference point x of an element of type t, whose corners sit at
// corners, through the first order corner map.
func Map(t GeometryType, corners []Coord, x Coord) Coord {
	var buf [8]float64
	N := LinearShape(t, x, buf[:])
	var out Coord
	for k, w := range N {
		out[0] += w * corners[k][0]
		out[1] += w * corners[k][1]
		out[2] += w * corners[k][2]
	}
	return out
}

// MapAll applies Map to every point of xs, writing into dst
func MapAll(t GeometryType, corners []Coord, xs []Coord, dst []Coord) []Coord {
	dst = dst[:0]
	for _, x := range xs {
		dst = append(dst, Map(t, corners, x))
	}
	return dst
}

func mid(a, b Coord) Coord {
	return Coord{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2, (a[2] + b[2]) / 2}
}

func sub(a, b Coord) Coord {
	return Coord{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}
