package spectrum

import (
	"fmt"
	"math"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/df07/go-spectral-kernel/pkg/core"
)

var strictValidation atomic.Bool

// SetStrictValidation switches between strict mode, where a degenerate value
// panics with a diagnostic, and production mode, where it collapses to zero and
// the path continues.
func SetStrictValidation(strict bool) {
	strictValidation.Store(strict)
}

// StrictValidation reports the current validation mode
func StrictValidation() bool {
	return strictValidation.Load()
}

// ValidationError is the panic value raised in strict mode
type ValidationError struct {
	Name  string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s has invalid value %s", e.Name, e.Value)
}

// Validate checks that r is finite and non-negative. Invalid values panic in
// strict mode and are replaced by zero otherwise.
func Validate(name string, r Response) Response {
	if r.Valid() {
		return r
	}
	fail(name, r.String())
	return Zero()
}

// ValidateFloat is Validate for scalar quantities such as densities
func ValidateFloat(name string, v float64) float64 {
	if !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0 {
		return v
	}
	fail(name, fmt.Sprintf("%g", v))
	return 0
}

func fail(name, value string) {
	if strictValidation.Load() {
		panic(&ValidationError{Name: name, Value: value})
	}
	core.Logger().Debug("invalid value replaced by zero", zap.String("name", name), zap.String("value", value))
}
