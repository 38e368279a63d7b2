// Package timing finds the critical path of a build and summarizes its
// timing shape.
package timing
