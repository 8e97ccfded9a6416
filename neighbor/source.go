package neighbor

import (
	"github.com/notargets/hadapt/element"
	"github.com/notargets/hadapt/htracker"
	"github.com/sirupsen/logrus"
)

// Source rebuilds an Index from the original element coordinates every time
// the tracker asks for the adjacency of its current forest. Neighbor lists
// are only searched for the leaves the tracker queries.
type Source struct {
	Coordinates [element.NumTypes][]float64
	Tolerance   float64
	Log         logrus.FieldLogger
}

// NewSource returns a Source over the node coordinates of the original
// elements, laid out as for htracker.Tree.AdaptedCoordinates
func NewSource(oc [element.NumTypes][]float64, tol float64) *Source {
	return &Source{Coordinates: oc, Tolerance: tol, Log: logrus.StandardLogger()}
}

func (s *Source) Adjacency(tr *htracker.Tree) (htracker.Adjacency, error) {
	ix, err := NewIndex(tr, s.Coordinates, s.Tolerance)
	if err != nil {
		return nil, err
	}
	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"leaves":    ix.NumLeaves,
			"tolerance": ix.Tolerance,
		}).Debug("adjacency")
	}
	return ix, nil
}
