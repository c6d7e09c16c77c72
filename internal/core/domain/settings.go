package domain

import (
	"fmt"
	"net/url"
	"strings"
)

const unknownDescription = "Unknown"

// EngineKind identifies which schema engine the tool talks to.
type EngineKind string

// Available engines.
const (
	// EngineSolr is a remote Solr-compatible HTTP schema endpoint.
	EngineSolr EngineKind = "solr"

	// EngineEmbedded is the in-process engine, seeded from a schema document.
	EngineEmbedded EngineKind = "embedded"
)

// IsValid returns true if the engine kind is recognised.
func (k EngineKind) IsValid() bool {
	switch k {
	case EngineSolr, EngineEmbedded:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k EngineKind) String() string {
	return string(k)
}

// Description returns a human-readable description of the engine.
func (k EngineKind) Description() string {
	switch k {
	case EngineSolr:
		return "Solr (remote HTTP)"
	case EngineEmbedded:
		return "Embedded (in-process)"
	default:
		return unknownDescription
	}
}

// SolrSettings holds connection settings for a remote engine.
type SolrSettings struct {
	// URL is the base URL, e.g. http://localhost:8983/solr.
	URL string

	// Collection is the collection (or core) whose schema is managed.
	Collection string

	// Username and Password enable HTTP basic authentication.
	Username string
	Password string

	// Token enables bearer authentication. Takes precedence over basic auth.
	Token string

	// TimeoutSeconds bounds every request. Zero uses the transport default.
	TimeoutSeconds int

	// RequestsPerSecond throttles outgoing requests. Zero disables throttling.
	RequestsPerSecond float64
}

// EmbeddedSettings holds settings for the in-process engine.
type EmbeddedSettings struct {
	// Seed is an optional path to a schema document used as the initial state.
	// Empty uses the bundled example schema.
	Seed string
}

// AppSettings is the complete application configuration.
type AppSettings struct {
	Engine   EngineKind
	Solr     SolrSettings
	Embedded EmbeddedSettings
}

// DefaultAppSettings returns the settings used when nothing is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Engine: EngineSolr,
		Solr: SolrSettings{
			URL:            "http://localhost:8983/solr",
			Collection:     "collection1",
			TimeoutSeconds: 30,
		},
	}
}

// Validate checks the settings are usable for the selected engine.
func (s AppSettings) Validate() error {
	if !s.Engine.IsValid() {
		return fmt.Errorf("%w: unknown engine %q", ErrInvalidInput, s.Engine)
	}
	if strings.TrimSpace(s.Solr.Collection) == "" {
		return fmt.Errorf("%w: collection must not be empty", ErrInvalidInput)
	}
	if s.Engine == EngineSolr {
		u, err := url.Parse(s.Solr.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: invalid solr url %q", ErrInvalidInput, s.Solr.URL)
		}
	}
	if s.Solr.TimeoutSeconds < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidInput)
	}
	if s.Solr.RequestsPerSecond < 0 {
		return fmt.Errorf("%w: requests per second must not be negative", ErrInvalidInput)
	}
	return nil
}
