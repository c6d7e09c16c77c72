package services

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/core/ports/driven"
	"github.com/custodia-labs/schemasync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyEngine            = "engine"
	KeySolrURL           = "solr.url"
	KeySolrCollection    = "solr.collection"
	KeySolrUsername      = "solr.username"
	KeySolrPassword      = "solr.password"
	KeySolrToken         = "solr.token"
	KeySolrTimeout       = "solr.timeout_seconds"
	KeySolrRatePerSecond = "solr.requests_per_second"
	KeyEmbeddedSeed      = "embedded.seed"
)

// SettingKeys returns every recognised configuration key, sorted.
func SettingKeys() []string {
	keys := []string{
		KeyEngine, KeySolrURL, KeySolrCollection, KeySolrUsername, KeySolrPassword,
		KeySolrToken, KeySolrTimeout, KeySolrRatePerSecond, KeyEmbeddedSeed,
	}
	sort.Strings(keys)
	return keys
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Engine: s.getEngine(defaults.Engine),
		Solr: domain.SolrSettings{
			URL:               s.getString(KeySolrURL, defaults.Solr.URL),
			Collection:        s.getString(KeySolrCollection, defaults.Solr.Collection),
			Username:          s.configStore.GetString(KeySolrUsername),
			Password:          s.configStore.GetString(KeySolrPassword),
			Token:             s.configStore.GetString(KeySolrToken),
			TimeoutSeconds:    s.getInt(KeySolrTimeout, defaults.Solr.TimeoutSeconds),
			RequestsPerSecond: s.getFloat(KeySolrRatePerSecond, defaults.Solr.RequestsPerSecond),
		},
		Embedded: domain.EmbeddedSettings{
			Seed: s.configStore.GetString(KeyEmbeddedSeed),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := []struct {
		key   string
		value any
	}{
		{KeyEngine, settings.Engine.String()},
		{KeySolrURL, settings.Solr.URL},
		{KeySolrCollection, settings.Solr.Collection},
		{KeySolrUsername, settings.Solr.Username},
		{KeySolrTimeout, settings.Solr.TimeoutSeconds},
		{KeySolrRatePerSecond, settings.Solr.RequestsPerSecond},
		{KeyEmbeddedSeed, settings.Embedded.Seed},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	// Secrets are only written when set so an empty form does not wipe them.
	if settings.Solr.Password != "" {
		if err := s.configStore.Set(KeySolrPassword, settings.Solr.Password); err != nil {
			return fmt.Errorf("save %s: %w", KeySolrPassword, err)
		}
	}
	if settings.Solr.Token != "" {
		if err := s.configStore.Set(KeySolrToken, settings.Solr.Token); err != nil {
			return fmt.Errorf("save %s: %w", KeySolrToken, err)
		}
	}

	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Unset removes a stored setting so its default applies again.
func (s *SettingsService) Unset(key string) error {
	if !slices.Contains(SettingKeys(), key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	if err := s.configStore.Unset(key); err != nil {
		return fmt.Errorf("unset %s: %w", key, err)
	}
	if err := s.configStore.Save(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Set updates a single setting, converting value to the key's type.
func (s *SettingsService) Set(key, value string) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	value = strings.TrimSpace(value)
	switch key {
	case KeyEngine:
		settings.Engine = domain.EngineKind(value)
	case KeySolrURL:
		settings.Solr.URL = strings.TrimRight(value, "/")
	case KeySolrCollection:
		settings.Solr.Collection = value
	case KeySolrUsername:
		settings.Solr.Username = value
	case KeySolrPassword:
		settings.Solr.Password = value
	case KeySolrToken:
		settings.Solr.Token = value
	case KeySolrTimeout:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, key)
		}
		settings.Solr.TimeoutSeconds = n
	case KeySolrRatePerSecond:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("%w: %s must be a number", domain.ErrInvalidInput, key)
		}
		settings.Solr.RequestsPerSecond = f
	case KeyEmbeddedSeed:
		settings.Embedded.Seed = value
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	return s.Save(settings)
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getEngine(defaultVal domain.EngineKind) domain.EngineKind {
	val := s.configStore.GetString(KeyEngine)
	if val == "" {
		return defaultVal
	}
	kind := domain.EngineKind(val)
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}
