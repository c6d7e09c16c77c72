package driven

import "context"

// SchemaTransport carries schema requests to the search engine.
// Implementations must be safe for concurrent use.
type SchemaTransport interface {
	// Read issues a schema read for the collection. path is appended to the
	// schema endpoint (e.g. "", "/name", "/version").
	Read(ctx context.Context, collection, path string) (*SchemaResponse, error)

	// Update posts a schema command payload for the collection.
	Update(ctx context.Context, collection string, payload []byte) (*SchemaResponse, error)

	// Close releases resources.
	Close() error
}

// SchemaResponse is the raw engine response.
// A non-nil error from the transport means no response was received;
// engine-side failures are reported through StatusCode and Body.
type SchemaResponse struct {
	// StatusCode is the HTTP-style status code.
	StatusCode int

	// Body is the raw JSON response body.
	Body []byte
}

// OK reports whether the status code is 2xx.
func (r *SchemaResponse) OK() bool {
	return r != nil && r.StatusCode >= 200 && r.StatusCode < 300
}
