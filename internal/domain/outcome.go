package domain

// Outcome is the result of a stage that may fall back instead of failing.
// A zero Reason means the primary path produced Value.
type Outcome[T any] struct {
	Value  T
	Reason string
}

// Ok wraps a value produced by the primary path.
func Ok[T any](v T) Outcome[T] {
	return Outcome[T]{Value: v}
}

// Degraded wraps a fallback value together with why the primary path was abandoned.
func Degraded[T any](fallback T, reason string) Outcome[T] {
	if reason == "" {
		reason = "degraded"
	}
	return Outcome[T]{Value: fallback, Reason: reason}
}

// IsDegraded reports whether the fallback path was taken.
func (o Outcome[T]) IsDegraded() bool {
	return o.Reason != ""
}
