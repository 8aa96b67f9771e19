package ports

// LocationProvider exposes the current page location.
type LocationProvider interface {
	// Href is the full URL of the current page.
	Href() string
	// Origin is scheme://host[:port] of the current page.
	Origin() string
	// Pathname is the path component of the current page.
	Pathname() string
}

// Navigator performs a full-page navigation.
type Navigator interface {
	Navigate(target string)
}
