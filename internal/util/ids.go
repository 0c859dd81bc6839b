// Package util provides ID generation for CarePath entities.
package util

import (
	"fmt"

	"github.com/google/uuid"
)

// IDSource produces unique identifiers. The engines take an IDSource rather
// than calling uuid directly so tests can pin deterministic ids.
type IDSource func() string

// NewIDSource returns an IDSource backed by random UUIDs with the given
// prefix, e.g. "plan_" or "goal_".
func NewIDSource(prefix string) IDSource {
	return func() string {
		return prefix + uuid.NewString()
	}
}

// SequentialIDSource returns an IDSource yielding "<prefix>1", "<prefix>2",
// and so on. Intended for tests that need reproducible output.
func SequentialIDSource(prefix string) IDSource {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}
