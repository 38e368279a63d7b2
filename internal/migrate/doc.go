// Package migrate converts legacy line-build items into work units,
// validates the result, and routes each item to auto-accept or review.
//
// Items are independent: a batch fans out over a bounded worker pool and a
// failure on one item never affects another.
package migrate
