package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/monokaijs/feed-watcher-ui/internal/domain"
	"github.com/monokaijs/feed-watcher-ui/internal/repository"
)

const feedConfigKey = "feed_config"

// ConfigService owns the persisted FeedConfig lifecycle: read once at
// startup, overridable at runtime, resettable to the built-in default.
type ConfigService struct {
	settingsRepo  repository.SettingsRepository
	defaultConfig domain.FeedConfig
}

func NewConfigService(settingsRepo repository.SettingsRepository, defaultConfig domain.FeedConfig) *ConfigService {
	return &ConfigService{
		settingsRepo:  settingsRepo,
		defaultConfig: defaultConfig,
	}
}

// Get returns the persisted configuration, falling back to the default when
// nothing is stored or the stored record no longer derives cleanly.
func (s *ConfigService) Get() domain.FeedConfig {
	value, err := s.settingsRepo.Get(feedConfigKey)
	if err != nil {
		if !errors.Is(err, domain.ErrConfigNotFound) {
			log.Printf("config: failed to load stored config, using default: %v", err)
		}
		return s.defaultConfig
	}

	var cfg domain.FeedConfig
	if err := json.Unmarshal([]byte(value), &cfg); err != nil {
		log.Printf("config: stored config is corrupted, using default: %v", err)
		return s.defaultConfig
	}

	// Owner and repo are re-derived on every load so a stored pair can
	// never disagree with the URL it came from.
	if err := cfg.Derive(); err != nil {
		log.Printf("config: stored config is invalid, using default: %v", err)
		return s.defaultConfig
	}
	return cfg
}

// Save validates the pasted repository URL, derives owner and repo from it
// and persists the result. Invalid input is rejected before persistence.
func (s *ConfigService) Save(repositoryURL, postsPath string) (domain.FeedConfig, error) {
	cfg := domain.FeedConfig{
		RepositoryURL: repositoryURL,
		PostsPath:     postsPath,
	}
	if err := cfg.Derive(); err != nil {
		return domain.FeedConfig{}, err
	}

	blob, err := json.Marshal(cfg)
	if err != nil {
		return domain.FeedConfig{}, fmt.Errorf("failed to serialize config: %w", err)
	}
	if err := s.settingsRepo.Set(feedConfigKey, string(blob)); err != nil {
		return domain.FeedConfig{}, fmt.Errorf("failed to persist config: %w", err)
	}
	return cfg, nil
}

// Reset removes the stored override and returns the built-in default.
func (s *ConfigService) Reset() (domain.FeedConfig, error) {
	if err := s.settingsRepo.Delete(feedConfigKey); err != nil {
		return domain.FeedConfig{}, fmt.Errorf("failed to reset config: %w", err)
	}
	return s.defaultConfig, nil
}
