package source

import (
	"log"
	"os"

	"github.com/monokaijs/feed-watcher-ui/internal/cache"
	"github.com/monokaijs/feed-watcher-ui/internal/domain"
)

// Probe reports whether a usable posts directory exists at dir. It is
// injected so mode selection never depends on ambient feature detection
// inside business logic.
type Probe func(dir string) bool

// DefaultProbe checks for a real directory on the local filesystem.
func DefaultProbe(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// Options carries the environment a source is built from.
type Options struct {
	APIBaseURL string
	Token      string
	LocalDir   string
	Store      cache.PersistentStore
	Probe      Probe
}

// New selects the adapter for cfg: Local only when the probe confirms the
// designated posts directory exists, Remote otherwise. Selection happens
// once per configuration; callers rebuild the source on config updates.
func New(cfg domain.FeedConfig, opts Options) PostSource {
	probe := opts.Probe
	if probe == nil {
		probe = DefaultProbe
	}
	if opts.Store == nil {
		opts.Store = cache.NewSQLiteStore(nil)
	}

	if probe(opts.LocalDir) {
		log.Printf("source: local mode, reading %s", opts.LocalDir)
		return NewLocalSource(opts.LocalDir)
	}

	log.Printf("source: remote mode, reading %s/%s/%s", cfg.Owner, cfg.Repo, cfg.PostsPath)
	return NewGitHubSource(cfg, opts.APIBaseURL, opts.Token, opts.Store)
}
