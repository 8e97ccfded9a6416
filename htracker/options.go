package htracker

import "github.com/sirupsen/logrus"

// Option is a generic option type shared by NewTree and Adapt. Each target
// type asserts to its own settings record and ignores options that do not
// apply to it.
type Option func(any)

type adaptOptions struct {
	rule      SplitRule
	adjacency AdjacencySource
}

// WithLogger sets the logger used by the tree. It only applies to NewTree.
func WithLogger(log logrus.FieldLogger) Option {
	return func(opts any) {
		if t, ok := opts.(*Tree); ok && log != nil {
			t.log = log
		}
	}
}

// WithSplitRule chooses how tetrahedra requested for refinement are split.
// Given to NewTree it becomes the default of the tree, given to Adapt it only
// applies to that call.
func WithSplitRule(rule SplitRule) Option {
	return func(opts any) {
		switch o := opts.(type) {
		case *Tree:
			o.rule = rule
		case *adaptOptions:
			o.rule = rule
		}
	}
}

// WithAdjacency sets the source of leaf adjacency used to restore the 2:1
// balance after an adaptation.
func WithAdjacency(src AdjacencySource) Option {
	return func(opts any) {
		switch o := opts.(type) {
		case *Tree:
			o.adjacency = src
		case *adaptOptions:
			o.adjacency = src
		}
	}
}
