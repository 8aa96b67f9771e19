package ports

// RandomSource draws uniformly distributed indexes.
type RandomSource interface {
	// IntN returns a value in [0, n). n is always positive.
	IntN(n int) int
}
