// Package pipeline composes every derivation over a build into one
// Analysis document.
//
// An Analysis is always recomputed from the authored unit and assembly
// lists. Ordinals, estimates, transfers and scores are derived views and
// are never written back unless the caller asks for it through Normalize
// or Splice, both of which return a new build.
package pipeline
