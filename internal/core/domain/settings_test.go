package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngineKind(t *testing.T) {
	tests := []struct {
		kind        EngineKind
		valid       bool
		description string
	}{
		{EngineSolr, true, "Solr (remote HTTP)"},
		{EngineEmbedded, true, "Embedded (in-process)"},
		{EngineKind(""), false, "Unknown"},
		{EngineKind("elastic"), false, "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.kind.IsValid())
			assert.Equal(t, tt.description, tt.kind.Description())
		})
	}
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.Equal(t, EngineSolr, s.Engine)
	assert.Equal(t, "http://localhost:8983/solr", s.Solr.URL)
	assert.Equal(t, "collection1", s.Solr.Collection)
	assert.Equal(t, 30, s.Solr.TimeoutSeconds)
	assert.NoError(t, s.Validate())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppSettings)
		valid  bool
	}{
		{"defaults", func(*AppSettings) {}, true},
		{"unknown engine", func(s *AppSettings) { s.Engine = "lucene" }, false},
		{"empty collection", func(s *AppSettings) { s.Solr.Collection = "  " }, false},
		{"url without scheme", func(s *AppSettings) { s.Solr.URL = "localhost:8983" }, false},
		{"bad url ignored for embedded", func(s *AppSettings) {
			s.Engine = EngineEmbedded
			s.Solr.URL = ""
		}, true},
		{"negative timeout", func(s *AppSettings) { s.Solr.TimeoutSeconds = -1 }, false},
		{"negative rate", func(s *AppSettings) { s.Solr.RequestsPerSecond = -0.5 }, false},
		{"https url", func(s *AppSettings) { s.Solr.URL = "https://solr.internal:8443/solr" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.mutate(&s)
			err := s.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidInput)
			}
		})
	}
}
