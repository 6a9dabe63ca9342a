package service

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/monokaijs/feed-watcher-ui/internal/database"
	"github.com/monokaijs/feed-watcher-ui/internal/domain"
	"github.com/monokaijs/feed-watcher-ui/internal/repository"
)

func newTestConfigService(t *testing.T) (*ConfigService, repository.SettingsRepository) {
	t.Helper()
	manager, err := database.NewManager(database.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { manager.Close() })

	defaultCfg := domain.FeedConfig{
		RepositoryURL: "https://github.com/monokaijs/feeds",
		PostsPath:     "posts",
	}
	if err := defaultCfg.Derive(); err != nil {
		t.Fatal(err)
	}

	settingsRepo := repository.NewSettingsRepository(manager.GetDB())
	return NewConfigService(settingsRepo, defaultCfg), settingsRepo
}

func TestConfigGetFallsBackToDefault(t *testing.T) {
	svc, _ := newTestConfigService(t)

	cfg := svc.Get()
	if cfg.Owner != "monokaijs" || cfg.Repo != "feeds" {
		t.Errorf("default config = %+v", cfg)
	}
	if cfg.PostsPath != "posts" {
		t.Errorf("postsPath = %q", cfg.PostsPath)
	}
}

func TestConfigSaveAndGet(t *testing.T) {
	svc, _ := newTestConfigService(t)

	saved, err := svc.Save("https://github.com/acme/feed-archive", "content/posts")
	if err != nil {
		t.Fatal(err)
	}
	if saved.Owner != "acme" || saved.Repo != "feed-archive" {
		t.Errorf("derived %q/%q", saved.Owner, saved.Repo)
	}

	got := svc.Get()
	if got.RepositoryURL != "https://github.com/acme/feed-archive" {
		t.Errorf("url = %q", got.RepositoryURL)
	}
	if got.Owner != "acme" || got.Repo != "feed-archive" || got.PostsPath != "content/posts" {
		t.Errorf("loaded config = %+v", got)
	}
}

func TestConfigSaveNormalizesURL(t *testing.T) {
	svc, _ := newTestConfigService(t)

	tests := []struct {
		name string
		url  string
	}{
		{"git suffix", "https://github.com/acme/feed-archive.git"},
		{"trailing slash", "https://github.com/acme/feed-archive/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := svc.Save(tt.url, "")
			if err != nil {
				t.Fatal(err)
			}
			if cfg.Owner != "acme" || cfg.Repo != "feed-archive" {
				t.Errorf("derived %q/%q from %q", cfg.Owner, cfg.Repo, tt.url)
			}
			if cfg.PostsPath != domain.DefaultPostsPath {
				t.Errorf("postsPath = %q", cfg.PostsPath)
			}
		})
	}
}

func TestConfigSaveRejectsInvalidURL(t *testing.T) {
	svc, settingsRepo := newTestConfigService(t)

	_, err := svc.Save("ftp://github.com/acme/feeds", "posts")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}

	// A rejected save must not leave a partial record behind.
	if _, err := settingsRepo.Get(feedConfigKey); !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("settings read after rejected save: %v", err)
	}
}

func TestConfigGetIgnoresCorruptedRecord(t *testing.T) {
	svc, settingsRepo := newTestConfigService(t)

	if err := settingsRepo.Set(feedConfigKey, "{not json"); err != nil {
		t.Fatal(err)
	}
	cfg := svc.Get()
	if cfg.Owner != "monokaijs" {
		t.Errorf("corrupted record not ignored, got %+v", cfg)
	}

	if err := settingsRepo.Set(feedConfigKey, `{"repository_url":"not a url"}`); err != nil {
		t.Fatal(err)
	}
	cfg = svc.Get()
	if cfg.Owner != "monokaijs" {
		t.Errorf("invalid record not ignored, got %+v", cfg)
	}
}

func TestConfigReset(t *testing.T) {
	svc, settingsRepo := newTestConfigService(t)

	if _, err := svc.Save("https://github.com/acme/feeds", "posts"); err != nil {
		t.Fatal(err)
	}
	cfg, err := svc.Reset()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Owner != "monokaijs" {
		t.Errorf("reset returned %+v", cfg)
	}
	if _, err := settingsRepo.Get(feedConfigKey); !errors.Is(err, domain.ErrConfigNotFound) {
		t.Errorf("stored override survived reset: %v", err)
	}
}
