// Package graph builds the dependency graph of a line build and derives
// structure from it.
//
// An edge runs from a dependency to its dependent: if unit v depends on u,
// then u must happen before v. Conditional dependencies are traversed exactly
// like bare ones.
//
// Everything here is a pure function over an immutable snapshot of the unit
// list. Structural problems (dangling references, duplicate ids, cycles) are
// returned as model.ValidationIssue values, never as errors, and checking
// always continues over the whole build.
//
// Iteration is always in ascending id order so repeated runs on identical
// input produce identical, diff-friendly output.
package graph
