package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/notargets/hadapt/bitstream"
	"github.com/notargets/hadapt/element"
	"github.com/notargets/hadapt/htracker"
	"github.com/notargets/hadapt/neighbor"
	"gopkg.in/yaml.v3"
)

// Scenario is a mesh and a sequence of adaptations read from YAML
type Scenario struct {
	CurvatureOrder int            `yaml:"curvature_order"`
	Balance        bool           `yaml:"balance"`
	Tolerance      float64        `yaml:"tolerance"`
	Noise          []float64      `yaml:"noise"`
	Elements       []ScenarioElem `yaml:"elements"`
	Steps          []ScenarioStep `yaml:"steps"`
}

// ScenarioElem is one original element: its type and its nodes in Lagrange
// node order at the curvature order
type ScenarioElem struct {
	Type  string       `yaml:"type"`
	Nodes [][3]float64 `yaml:"nodes"`
}

// ScenarioStep is one adaptation. Either Ops gives one operation per leaf, or
// Split and Group list the leaves to refine and coarsen, the rest kept.
type ScenarioStep struct {
	Ops   []int  `yaml:"ops"`
	Split []int  `yaml:"split"`
	Group []int  `yaml:"group"`
	All   string `yaml:"all"`  // "split" or "group" applied to every leaf
	Rule  string `yaml:"rule"` // "full" (default) or edge0..edge2
}

// LoadScenario reads a scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a YAML scenario
func ParseScenario(data []byte) (*Scenario, error) {
	sc := &Scenario{CurvatureOrder: 1}
	if err := yaml.Unmarshal(data, sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if len(sc.Elements) == 0 {
		return nil, fmt.Errorf("scenario has no elements")
	}
	return sc, nil
}

// Coordinates groups the element nodes by type as expected by the tracker,
// along with the element count of each type
func (sc *Scenario) Coordinates() (counts [element.NumTypes]int, oc [element.NumTypes][]float64, err error) {
	for i, e := range sc.Elements {
		gt, perr := element.ParseGeometryType(e.Type)
		if perr != nil {
			return counts, oc, fmt.Errorf("element %d: %w", i, perr)
		}
		want := element.NumNodes(gt, sc.CurvatureOrder)
		if len(e.Nodes) != want {
			return counts, oc, fmt.Errorf("element %d (%s): %d nodes, order %d needs %d",
				i, gt, len(e.Nodes), sc.CurvatureOrder, want)
		}
		counts[gt]++
		for _, n := range e.Nodes {
			oc[gt] = append(oc[gt], n[0], n[1], n[2])
		}
	}
	return counts, oc, nil
}

// Operations expands the step into one operation per leaf
func (st ScenarioStep) Operations(leaves int) ([]int, error) {
	if st.Ops != nil {
		if len(st.Ops) != leaves {
			return nil, fmt.Errorf("%d operations for %d leaves", len(st.Ops), leaves)
		}
		for i, op := range st.Ops {
			if op < htracker.Group || op > htracker.Split {
				return nil, fmt.Errorf("leaf %d: invalid operation %d", i, op)
			}
		}
		return st.Ops, nil
	}
	ops := make([]int, leaves)
	switch strings.ToLower(st.All) {
	case "":
	case "split":
		for i := range ops {
			ops[i] = htracker.Split
		}
	case "group":
		for i := range ops {
			ops[i] = htracker.Group
		}
	default:
		return nil, fmt.Errorf("unknown operation %q", st.All)
	}
	set := func(list []int, op int) error {
		for _, leaf := range list {
			if leaf < 0 || leaf >= leaves {
				return fmt.Errorf("leaf %d out of range [0,%d)", leaf, leaves)
			}
			ops[leaf] = op
		}
		return nil
	}
	if err := set(st.Split, htracker.Split); err != nil {
		return nil, err
	}
	if err := set(st.Group, htracker.Group); err != nil {
		return nil, err
	}
	return ops, nil
}

// SplitRule returns the tracker rule named by the step
func (st ScenarioStep) SplitRule() (htracker.SplitRule, error) {
	switch strings.ToLower(st.Rule) {
	case "", "full":
		return htracker.FullSplitRule, nil
	case "edge0":
		return htracker.TransitionRule(bitstream.Edge0), nil
	case "edge1":
		return htracker.TransitionRule(bitstream.Edge1), nil
	case "edge2":
		return htracker.TransitionRule(bitstream.Edge2), nil
	}
	return nil, fmt.Errorf("unknown split rule %q", st.Rule)
}

// Run builds the tracker, applies every step reporting to w, and returns the
// final tree along with its leaf coordinates
func (sc *Scenario) Run(w io.Writer) (*htracker.Tree, *htracker.AdaptedCoordinates, error) {
	counts, oc, err := sc.Coordinates()
	if err != nil {
		return nil, nil, err
	}
	var opts []htracker.Option
	if sc.Balance {
		opts = append(opts, htracker.WithAdjacency(neighbor.NewSource(oc, sc.Tolerance)))
	}
	tr, err := htracker.NewTree(sc.CurvatureOrder, counts, opts...)
	if err != nil {
		return nil, nil, err
	}
	fmt.Fprintf(w, "Initial: %d leaves\n", tr.CountLeaves())

	for i, st := range sc.Steps {
		ops, err := st.Operations(tr.CountLeaves())
		if err != nil {
			return tr, nil, fmt.Errorf("step %d: %w", i, err)
		}
		rule, err := st.SplitRule()
		if err != nil {
			return tr, nil, fmt.Errorf("step %d: %w", i, err)
		}
		tr.Adapt(ops, htracker.WithSplitRule(rule))
		fmt.Fprintf(w, "Step %d: %d leaves, max depth %d, %d bits\n",
			i, tr.CountLeaves(), tr.MaxDepth(), tr.CountBits())
	}

	ac, err := tr.AdaptedCoordinates(oc, sc.Noise)
	if err != nil {
		return tr, nil, err
	}
	return tr, ac, nil
}
