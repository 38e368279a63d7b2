// Package guard checks the predicates attached to conditional dependencies.
//
// Guards are metadata: they never change graph traversal. They are compiled
// only to catch malformed expressions at authoring or migration time.
package guard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/antonmedv/expr"
)

// ErrEmpty is returned for a blank guard.
var ErrEmpty = errors.New("guard is empty")

// Check compiles a guard predicate. Variables are resolved at evaluation
// time, so unknown names are allowed; the expression must be boolean.
func Check(when string) error {
	if strings.TrimSpace(when) == "" {
		return ErrEmpty
	}
	if _, err := expr.Compile(when, expr.AllowUndefinedVariables(), expr.AsBool()); err != nil {
		return fmt.Errorf("compile guard %q: %w", when, err)
	}
	return nil
}
