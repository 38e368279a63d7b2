// Package model provides the entity types for line builds.
//
// This package contains type definitions and their boundary codecs only. All
// other internal packages import model; model imports nothing internal. This
// keeps the entity model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Closed enums (action families, sub-location kinds, tiers) are validated
//     once at the document boundary, never re-checked per access site
//   - A dependency reference is a sum type (BareDep | ConditionalDep) with one
//     accessor, DepID, that returns the referenced unit id for either variant
//   - Derived records (DerivedTransfer, ComplexityScore, ValidationIssue) are
//     recomputed on demand and never stored as authored state
//   - All JSON and YAML tags use snake_case
package model
