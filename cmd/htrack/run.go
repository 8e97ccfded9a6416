package main

import (
	"fmt"
	"io"
	"math"

	"github.com/notargets/hadapt/element"
	"github.com/notargets/hadapt/htracker"
	"github.com/notargets/hadapt/layout"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"
)

// runOptions selects the extra reports of the run command
type runOptions struct {
	Dump        bool // print the forest
	Coordinates bool // print the real coordinates of every leaf
	InOriginal  bool // map leaf nodes back into their original elements
}

var runOpts runOptions

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runOpts.Dump, "dump", false, "Print the forest after the last step")
	cmd.Flags().BoolVar(&runOpts.Coordinates, "coordinates", false, "Print the real coordinates of every leaf")
	cmd.Flags().BoolVar(&runOpts.InOriginal, "inoriginal", false,
		"Check that leaf nodes mapped back into their original elements match the adapted coordinates")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Apply the adaptation steps of a scenario",
		Long: `The run command reads a YAML scenario holding the original elements and a
list of adaptation steps, applies the steps in order and reports the leaves.

Example:
  htrack run square.yaml
  htrack run square.yaml --dump --coordinates
  htrack run square.yaml --inoriginal
  htrack run square.yaml --log-level debug`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := LoadScenario(args[0])
			if err != nil {
				return err
			}
			return runScenario(cmd.OutOrStdout(), sc, runOpts)
		},
	}
	return cmd
}

func runScenario(w io.Writer, sc *Scenario, opts runOptions) error {
	tr, ac, err := sc.Run(w)
	if err != nil {
		return err
	}
	printCounts(w, tr)
	if opts.Dump {
		fmt.Fprintln(w)
		fmt.Fprint(w, tr.String())
	}
	if opts.Coordinates {
		printCoordinates(w, ac)
	}
	if opts.InOriginal {
		tol := 1e-9
		for _, n := range sc.Noise {
			tol = math.Max(tol, n)
		}
		if err := checkInOriginal(w, tr, ac, tol); err != nil {
			return err
		}
	}
	return nil
}

// checkInOriginal lays out the Lagrange nodes of every leaf in its own
// reference space, maps them into the original elements and compares the
// result with the reference coordinates of ac
func checkInOriginal(w io.Writer, tr *htracker.Tree, ac *htracker.AdaptedCoordinates, tol float64) error {
	l, err := layout.NewLayout(tr, tr.CurvatureOrder())
	if err != nil {
		return err
	}
	if err = l.Validate(); err != nil {
		return err
	}
	rc, err := l.ReferenceNodes()
	if err != nil {
		return err
	}
	_, orc, err := tr.InOriginal(l.Offsets, rc)
	if err != nil {
		return err
	}

	var pos [element.NumTypes]int
	worst := 0.0
	c := tr.NewCursor()
	for leaf := 0; leaf < tr.CountLeaves(); {
		c.Next()
		if !c.IsAtLeaf() {
			continue
		}
		gt, i := l.Locate(leaf)
		n := 3 * l.Group(gt).Np
		ot := c.OriginalType()
		ref := ac.Reference[gt][i*n : (i+1)*n]
		got := orc[ot][pos[ot] : pos[ot]+n]
		pos[ot] += n
		worst = math.Max(worst, floats.Distance(ref, got, math.Inf(1)))
		leaf++
	}
	fmt.Fprintf(w, "InOriginal: %d leaves, max deviation %.3g\n", tr.CountLeaves(), worst)
	if worst > tol {
		return fmt.Errorf("leaf nodes mapped into their original elements deviate by %g (tolerance %g)", worst, tol)
	}
	return nil
}

func printCounts(w io.Writer, tr *htracker.Tree) {
	counts := tr.CountInTypes()
	fmt.Fprintf(w, "Leaves: %d (max depth %d)\n", tr.CountLeaves(), tr.MaxDepth())
	for _, gt := range element.Types() {
		if counts[gt] > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", gt.String(), counts[gt])
		}
	}
}

func printCoordinates(w io.Writer, ac *htracker.AdaptedCoordinates) {
	for _, gt := range element.Types() {
		leaves := ac.Leaves[gt]
		if len(leaves) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n--- %s leaves ---\n", gt)
		stride := len(ac.Real[gt]) / len(leaves)
		for i, leaf := range leaves {
			fmt.Fprintf(w, "  leaf %d", leaf)
			if ac.LeafNums[gt][i] >= 0 {
				fmt.Fprintf(w, " (transition in element %d)", ac.LeafNums[gt][i])
			}
			fmt.Fprint(w, ":")
			for k := i * stride; k < (i+1)*stride; k += 3 {
				fmt.Fprintf(w, " (%.6g, %.6g, %.6g)", ac.Real[gt][k], ac.Real[gt][k+1], ac.Real[gt][k+2])
			}
			fmt.Fprintln(w)
		}
	}
}
