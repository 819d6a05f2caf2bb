package automaton

import "errors"

var (
	// ErrGridSize indicates a grid with a non-positive width or height.
	ErrGridSize = errors.New("automaton: grid width and height must be positive")

	// ErrNoLayers indicates a configuration without layers.
	ErrNoLayers = errors.New("automaton: at least one layer is required")

	// ErrModulus indicates a channel modulus below 2 or above MaxModulus.
	ErrModulus = errors.New("automaton: channel modulus out of range")

	// ErrNegativeRadius indicates a neighbourhood radius below zero.
	ErrNegativeRadius = errors.New("automaton: negative neighbourhood radius")

	// ErrRadiusTooLarge indicates a radius that reaches the grid side.
	ErrRadiusTooLarge = errors.New("automaton: neighbourhood radius must be smaller than the grid")

	// ErrOutOfBounds indicates a coordinate or layer index outside the grid.
	ErrOutOfBounds = errors.New("automaton: coordinate out of bounds")

	// ErrFeedbackLayer indicates a feedback layer index outside the stack.
	ErrFeedbackLayer = errors.New("automaton: feedback layer out of range")

	// ErrUnknownRule indicates an unrecognised rule name.
	ErrUnknownRule = errors.New("automaton: unknown rule")
)
