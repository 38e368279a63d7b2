// Package continuity checks that every consumed assembly is picked up where
// its producer left it, and derives a transfer step wherever it is not.
//
// The producer index is keyed by assembly id and the last producer in list
// order wins when several units produce the same assembly.
package continuity
