// Package automaton implements the layered toroidal cellular automaton that
// drives both the score and the picture.
//
// An [Automaton] is an ordered stack of layers. Every layer is a wrap-around
// grid of [Cell] values with three bounded channels (color, saturation,
// brightness) and its own update rule:
//
//   - [RuleCopy]: take the source value
//   - [RuleSum]: sum of the source neighbourhood, modulo the layer modulus
//   - [RuleFlip]: increment the layer's own value where the source is zero
//   - [RuleFashion]: adopt the most frequent source value in the neighbourhood
//
// Layer k reads the values layer k-1 produced earlier in the same step. Layer
// 0 reads the previous step of the feedback layer, which closes the loop.
//
// # Buffers
//
// Each layer holds two cell slices indexed by a parity bit. A step writes only
// back slots and flips the parity once at the end, so no layer is ever read
// while it is being written.
//
// # Thread Safety
//
// An Automaton is NOT safe for concurrent use. The processing unit owns it
// exclusively.
package automaton
