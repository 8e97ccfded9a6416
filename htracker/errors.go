package htracker

import "errors"

// Contract violations. The tracker panics with an error wrapping one of these;
// they are not recoverable by the caller.
var (
	ErrOperationCount   = errors.New("operation vector length does not match the number of leaves")
	ErrInvalidOperation = errors.New("operation must be -1 (group), 0 (keep) or 1 (split)")
	ErrCursorExhausted  = errors.New("cursor advanced past the last node of the forest")
	ErrAdjacency        = errors.New("adjacency source failed")
)

// Input validation errors returned by constructors and coordinate mapping.
var (
	ErrElementCount    = errors.New("invalid number of original elements per type")
	ErrCurvatureOrder  = errors.New("invalid curvature order")
	ErrCoordinateCount = errors.New("coordinate vector size does not match the original elements")
	ErrOffsetTable     = errors.New("invalid offset table")
)
