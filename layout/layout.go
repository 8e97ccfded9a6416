package layout

import (
	"fmt"

	"github.com/notargets/hadapt/element"
	"github.com/notargets/hadapt/htracker"
)

// TypeGroup represents the leaves of the same type. Per type nodal data is
// stored group by group, leaves in ascending leaf number.
type TypeGroup struct {
	ElementType element.GeometryType
	StartIndex  int   // Position of the group in the type ordered leaf list
	Count       int   // Number of leaves of this type
	Np          int   // Nodes per leaf for this type
	LeafIDs     []int // Global leaf numbers, ascending
}

// Layout places the leaves of a forest into per type blocks of nodal data
type Layout struct {
	Order     int
	NumLeaves int
	Groups    []TypeGroup // Non empty types, ascending

	// Leaf to block mapping
	LeafType  []element.GeometryType // [leaf] type of the leaf
	LeafLocal []int                  // [leaf] index of the leaf within its group

	// Offsets[gt] holds Count+1 offsets into a per type array of (x, y, z)
	// triplets, Np triplets per leaf
	Offsets [element.NumTypes][]int
}

// NewLayout builds the layout of the current leaves of tr with the Lagrange
// nodes of the given order on every leaf
func NewLayout(tr *htracker.Tree, order int) (*Layout, error) {
	if order < 1 {
		return nil, fmt.Errorf("invalid order %d", order)
	}
	types := tr.LeafTypes()
	l := &Layout{
		Order:     order,
		NumLeaves: len(types),
		LeafType:  types,
		LeafLocal: make([]int, len(types)),
	}

	var members [element.NumTypes][]int
	for leaf, gt := range types {
		l.LeafLocal[leaf] = len(members[gt])
		members[gt] = append(members[gt], leaf)
	}

	start := 0
	for _, gt := range element.Types() {
		if len(members[gt]) == 0 {
			continue
		}
		np := element.NumNodes(gt, order)
		if np == 0 {
			return nil, fmt.Errorf("%s leaves have no nodes at order %d", gt, order)
		}
		l.Groups = append(l.Groups, TypeGroup{
			ElementType: gt,
			StartIndex:  start,
			Count:       len(members[gt]),
			Np:          np,
			LeafIDs:     members[gt],
		})
		start += len(members[gt])

		offsets := make([]int, len(members[gt])+1)
		for i := range members[gt] {
			offsets[i+1] = offsets[i] + 3*np
		}
		l.Offsets[gt] = offsets
	}
	return l, nil
}

// Group returns the group of type gt, nil when there are no such leaves
func (l *Layout) Group(gt element.GeometryType) *TypeGroup {
	for i := range l.Groups {
		if l.Groups[i].ElementType == gt {
			return &l.Groups[i]
		}
	}
	return nil
}

// Locate returns the type of leaf and its index within its group, or -1 for
// an unknown leaf
func (l *Layout) Locate(leaf int) (element.GeometryType, int) {
	if leaf < 0 || leaf >= l.NumLeaves {
		return 0, -1
	}
	return l.LeafType[leaf], l.LeafLocal[leaf]
}

// Allocate returns zeroed per type storage for Np triplets per leaf
func (l *Layout) Allocate() (data [element.NumTypes][]float64) {
	for _, g := range l.Groups {
		data[g.ElementType] = make([]float64, l.Offsets[g.ElementType][g.Count])
	}
	return
}

// Block returns the triplets of leaf within data laid out by Allocate
func (l *Layout) Block(data [element.NumTypes][]float64, leaf int) []float64 {
	gt, i := l.Locate(leaf)
	if i < 0 {
		return nil
	}
	return data[gt][l.Offsets[gt][i]:l.Offsets[gt][i+1]]
}

// ReferenceNodes fills every leaf block with the Lagrange nodes of the leaf
// in its own reference space, ready for htracker.Tree.InOriginal
func (l *Layout) ReferenceNodes() ([element.NumTypes][]float64, error) {
	data := l.Allocate()
	for _, g := range l.Groups {
		nodes, err := element.LagrangeNodes(g.ElementType, l.Order)
		if err != nil {
			return data, err
		}
		block := data[g.ElementType]
		for i := 0; i < g.Count; i++ {
			for k, x := range nodes {
				copy(block[(i*g.Np+k)*3:], x[:])
			}
		}
	}
	return data, nil
}

// Validate checks the consistency of groups, offsets and leaf mapping
func (l *Layout) Validate() error {
	total := 0
	for gi, g := range l.Groups {
		if g.StartIndex != total {
			return fmt.Errorf("group %d (%s): StartIndex %d != %d", gi, g.ElementType, g.StartIndex, total)
		}
		if g.Count != len(g.LeafIDs) {
			return fmt.Errorf("group %d (%s): Count %d != %d leaf ids", gi, g.ElementType, g.Count, len(g.LeafIDs))
		}
		offsets := l.Offsets[g.ElementType]
		if len(offsets) != g.Count+1 || offsets[0] != 0 {
			return fmt.Errorf("group %d (%s): %d offsets for %d leaves", gi, g.ElementType, len(offsets), g.Count)
		}
		for i, leaf := range g.LeafIDs {
			if offsets[i+1]-offsets[i] != 3*g.Np {
				return fmt.Errorf("group %d (%s): leaf %d spans %d values, expected %d",
					gi, g.ElementType, leaf, offsets[i+1]-offsets[i], 3*g.Np)
			}
			if gt, local := l.Locate(leaf); gt != g.ElementType || local != i {
				return fmt.Errorf("leaf %d maps to %s/%d, group holds it as %s/%d", leaf, gt, local, g.ElementType, i)
			}
			if i > 0 && leaf <= g.LeafIDs[i-1] {
				return fmt.Errorf("group %d (%s): leaf ids not ascending at %d", gi, g.ElementType, i)
			}
		}
		total += g.Count
	}
	if total != l.NumLeaves {
		return fmt.Errorf("groups hold %d leaves, layout has %d", total, l.NumLeaves)
	}
	return nil
}
