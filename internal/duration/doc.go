// Package duration estimates how long a work unit takes.
//
// Estimates come from a fixed fallback chain over explicit lookup tables;
// each estimate records which step produced it and a confidence tier.
package duration
