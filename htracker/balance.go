package htracker

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Adjacency answers which leaves touch a given leaf of the current forest
type Adjacency interface {
	// Neighbors appends the leaf numbers adjacent to leaf to dst
	Neighbors(leaf int, dst []int) []int
}

// AdjacencySource builds the adjacency of the current forest of t. It is
// called again after every round of forced splits; only the leaves checked in
// that round are queried.
type AdjacencySource interface {
	Adjacency(t *Tree) (Adjacency, error)
}

// AdjacencySourceFunc adapts a function to an AdjacencySource
type AdjacencySourceFunc func(t *Tree) (Adjacency, error)

func (f AdjacencySourceFunc) Adjacency(t *Tree) (Adjacency, error) { return f(t) }

// NeighborLists is an explicit adjacency: entry i lists the neighbors of leaf i
type NeighborLists [][]int

func (nl NeighborLists) Neighbors(leaf int, dst []int) []int {
	return append(dst, nl[leaf]...)
}

// Balance restores the 2:1 balance of the whole forest against src
func (t *Tree) Balance(src AdjacencySource) {
	t.balanced = false
	t.balance(src, nil, t.LeafDepths())
}

// balance force splits leaves until no two adjacent leaves differ in depth
// by more than one. Only the leaves in work, and their neighbors, are
// examined, unless the forest was never balanced in which case every leaf is.
// depths holds the depth of every current leaf. Each round splits the shallow
// side of every imbalance found and continues with the children it created.
func (t *Tree) balance(src AdjacencySource, work, depths []int) {
	if !t.balanced {
		work = make([]int, t.numLeaves)
		for i := range work {
			work[i] = i
		}
	}
	var nbrs []int
	for round := 1; len(work) > 0; round++ {
		adj, err := src.Adjacency(t)
		if err != nil {
			panic(fmt.Errorf("%w: %w", ErrAdjacency, err))
		}
		ops := make([]int, t.numLeaves)
		forced := 0
		mark := func(leaf int) {
			if ops[leaf] != Split {
				ops[leaf] = Split
				forced++
			}
		}
		for _, w := range work {
			nbrs = adj.Neighbors(w, nbrs[:0])
			for _, n := range nbrs {
				switch {
				case depths[n]-depths[w] > 1:
					mark(w)
				case depths[w]-depths[n] > 1:
					mark(n)
				}
			}
		}
		t.log.WithFields(logrus.Fields{
			"round":   round,
			"checked": len(work),
			"forced":  forced,
		}).Debug("balance")
		if forced == 0 {
			break
		}
		work, depths = t.rebuild(ops, FullSplitRule)
	}
	t.balanced = true
}
