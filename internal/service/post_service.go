package service

import (
	"context"
	"log"
	"sync"

	"github.com/monokaijs/feed-watcher-ui/internal/cache"
	"github.com/monokaijs/feed-watcher-ui/internal/domain"
	"github.com/monokaijs/feed-watcher-ui/internal/source"
)

// PostService is the unified post loader: it holds exactly one adapter for
// the lifetime of a configuration and forwards every call to it. The mode
// never changes mid-session except through UpdateConfig, which re-probes.
type PostService struct {
	mu     sync.RWMutex
	src    source.PostSource
	opts   source.Options
	config domain.FeedConfig
}

func NewPostService(cfg domain.FeedConfig, opts source.Options) *PostService {
	return &PostService{
		src:    source.New(cfg, opts),
		opts:   opts,
		config: cfg,
	}
}

func (s *PostService) current() source.PostSource {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.src
}

// UpdateConfig swaps in a new configuration, re-running the capability probe.
// The mode may flip as a result.
func (s *PostService) UpdateConfig(cfg domain.FeedConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.config = cfg
	s.src = source.New(cfg, s.opts)
	log.Printf("loader: configuration updated, mode is now %s", s.src.Mode())
}

func (s *PostService) Config() domain.FeedConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

func (s *PostService) ListPosts(ctx context.Context, page, pageSize int) (domain.PostPage, error) {
	return s.current().ListPosts(ctx, page, pageSize)
}

func (s *PostService) GetFileContent(ctx context.Context, path string) (string, error) {
	return s.current().GetFileContent(ctx, path)
}

func (s *PostService) Validate(ctx context.Context) error {
	return s.current().Validate(ctx)
}

func (s *PostService) Mode() domain.SourceMode {
	return s.current().Mode()
}

func (s *PostService) ClearCache() {
	s.current().ClearCache()
}

func (s *PostService) ClearExpired() int {
	return s.current().ClearExpired()
}

func (s *PostService) CacheInfo() []cache.EntryInfo {
	return s.current().CacheInfo()
}

// Preload warms the cache for a page in the background. Fire and forget:
// failures are logged and never surfaced, and there is no way to abort an
// in-flight preload.
func (s *PostService) Preload(page, pageSize int) {
	go func() {
		if _, err := s.ListPosts(context.Background(), page, pageSize); err != nil {
			log.Printf("loader: preload of page %d failed: %v", page, err)
		}
	}()
}
