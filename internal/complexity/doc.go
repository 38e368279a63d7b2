// Package complexity scores how demanding a build is to execute.
//
// Each factor is a raw statistic scaled against a cap to 0..100; the overall
// score is the weight-normalized mean of the factors. Scores are derived
// views keyed by the build fingerprint and are safe to cache.
package complexity
