package ports

// Document reports page readiness.
type Document interface {
	// Loading is true while the structural content is still being parsed.
	Loading() bool
	// OnContentLoaded registers fn to run once the content is ready.
	OnContentLoaded(fn func())
}
