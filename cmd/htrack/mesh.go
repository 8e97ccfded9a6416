package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/notargets/gocfd/DG3D/mesh/readers"
	"github.com/notargets/gocfd/utils"
	"github.com/notargets/hadapt/element"
	"github.com/notargets/hadapt/htracker"
	"github.com/notargets/hadapt/neighbor"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	meshLevels int
	meshCenter []float64
	meshRadius float64
)

func init() {
	cmd := newMeshCmd()
	cmd.Flags().IntVar(&meshLevels, "levels", 1, "Number of refinement passes")
	cmd.Flags().Float64SliceVar(&meshCenter, "center", nil, "Refine only around this point (x,y,z)")
	cmd.Flags().Float64Var(&meshRadius, "radius", 0, "Refine leaves whose centroid is within radius of --center")
	rootCmd.AddCommand(cmd)
}

func newMeshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mesh <meshfile>",
		Short: "Refine the tetrahedra of a mesh file",
		Long: `The mesh command loads the tetrahedra of a mesh file (Gambit neutral or
Gmsh), refines them for the requested number of passes while keeping adjacent
leaves within one level, and prints a summary.

Example:
  htrack mesh cube.neu --levels 2
  htrack mesh cube.neu --levels 3 --center 0,0,0 --radius 0.25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if meshCenter != nil && len(meshCenter) != 3 {
				return fmt.Errorf("--center needs 3 components, got %d", len(meshCenter))
			}
			return runMesh(cmd.OutOrStdout(), args[0])
		},
	}
	return cmd
}

// loadTets reads a mesh file and returns the corner coordinates of its
// tetrahedra laid out for the tracker
func loadTets(meshfile string) (counts [element.NumTypes]int, oc [element.NumTypes][]float64, err error) {
	msh, err := readers.ReadMeshFile(meshfile)
	if err != nil {
		return counts, oc, fmt.Errorf("failed to read mesh: %w", err)
	}
	for k, ev := range msh.EtoV {
		if k < len(msh.ElementTypes) && msh.ElementTypes[k] != utils.Tet {
			continue
		}
		if len(ev) != 4 {
			continue
		}
		for _, v := range ev {
			p := msh.Vertices[v]
			oc[element.Tet] = append(oc[element.Tet], p[0], p[1], p[2])
		}
		counts[element.Tet]++
	}
	if counts[element.Tet] == 0 {
		return counts, oc, fmt.Errorf("mesh file %s does not have any tets", meshfile)
	}
	return counts, oc, nil
}

func runMesh(w io.Writer, meshfile string) error {
	counts, oc, err := loadTets(meshfile)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Meshfile: %s has %d tets...\n", meshfile, counts[element.Tet])

	tr, err := htracker.NewTree(1, counts, htracker.WithAdjacency(neighbor.NewSource(oc, 0)))
	if err != nil {
		return err
	}
	for level := 0; level < meshLevels; level++ {
		start := time.Now()
		ops, err := selectLeaves(tr, oc)
		if err != nil {
			return err
		}
		tr.Adapt(ops)
		logrus.WithFields(logrus.Fields{
			"level":   level,
			"leaves":  tr.CountLeaves(),
			"elapsed": time.Since(start),
		}).Info("refined")
		fmt.Fprintf(w, "Level %d: %d leaves, max depth %d, %d bits\n",
			level, tr.CountLeaves(), tr.MaxDepth(), tr.CountBits())
	}
	tr.ToStorage()
	printCounts(w, tr)
	return nil
}

// selectLeaves requests a split of every leaf, or of the leaves near the
// refinement center when one is given
func selectLeaves(tr *htracker.Tree, oc [element.NumTypes][]float64) ([]int, error) {
	ops := make([]int, tr.CountLeaves())
	if meshCenter == nil {
		for i := range ops {
			ops[i] = htracker.Split
		}
		return ops, nil
	}
	ac, err := tr.AdaptedCoordinates(oc, nil)
	if err != nil {
		return nil, err
	}
	for gt, leaves := range ac.Leaves {
		if len(leaves) == 0 {
			continue
		}
		stride := len(ac.Real[gt]) / len(leaves)
		for i, leaf := range leaves {
			var c [3]float64
			nodes := ac.Real[gt][i*stride : (i+1)*stride]
			for k := 0; k < len(nodes); k += 3 {
				for d := 0; d < 3; d++ {
					c[d] += nodes[k+d] * 3 / float64(len(nodes))
				}
			}
			dist := math.Sqrt(sq(c[0]-meshCenter[0]) + sq(c[1]-meshCenter[1]) + sq(c[2]-meshCenter[2]))
			if dist <= meshRadius {
				ops[leaf] = htracker.Split
			}
		}
	}
	return ops, nil
}

func sq(x float64) float64 { return x * x }
