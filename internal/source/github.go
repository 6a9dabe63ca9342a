package source

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/monokaijs/feed-watcher-ui/internal/cache"
	"github.com/monokaijs/feed-watcher-ui/internal/domain"
	"github.com/monokaijs/feed-watcher-ui/pkg/ratelimit"
)

const (
	DefaultAPIBaseURL = "https://api.github.com"

	acceptHeader = "application/vnd.github.v3+json"
	userAgent    = "feed-watcher-ui/1.0"

	listingTTL   = 5 * time.Minute
	contentTTL   = 30 * time.Minute
	staleCeiling = time.Hour
	maxErrorBody = 512
)

// cacheKey builds a namespaced persistent-tier key. Listing and content
// requests share the "api" kind because they hit the same endpoint; the
// typed constructor exists so no caller concatenates ad hoc strings.
func cacheKey(kind, endpoint string) string {
	return kind + ":" + endpoint
}

// GitHubSource reads posts through the GitHub contents API with a two-tier
// cache, ETag revalidation and rate-limit discipline. The memory tier and
// the budget tracker are owned by this instance alone.
type GitHubSource struct {
	owner      string
	repo       string
	postsPath  string
	apiBaseURL string
	token      string

	httpClient *http.Client
	// Courtesy token bucket in front of the header-fed budget gate, so
	// bursts of page loads do not drain the remote budget.
	limiter *rate.Limiter
	tracker *ratelimit.Tracker
	memory  *cache.Memory
	store   cache.PersistentStore

	listingTTL time.Duration
	contentTTL time.Duration
}

func NewGitHubSource(cfg domain.FeedConfig, apiBaseURL, token string, store cache.PersistentStore) *GitHubSource {
	if apiBaseURL == "" {
		apiBaseURL = DefaultAPIBaseURL
	}
	return &GitHubSource{
		owner:      cfg.Owner,
		repo:       cfg.Repo,
		postsPath:  cfg.PostsPath,
		apiBaseURL: strings.TrimSuffix(apiBaseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(rate.Every(500*time.Millisecond), 2),
		tracker:    ratelimit.NewTracker(),
		memory:     cache.NewMemory(),
		store:      store,
		listingTTL: listingTTL,
		contentTTL: contentTTL,
	}
}

func (g *GitHubSource) Mode() domain.SourceMode { return domain.ModeRemote }

func (g *GitHubSource) endpoint(path string) string {
	return fmt.Sprintf("/repos/%s/%s/contents/%s", g.owner, g.repo, strings.Trim(path, "/"))
}

// fetch runs one contents-API request through the full cache discipline:
// memory tier, persistent tier, rate gate, conditional request, write-through.
func (g *GitHubSource) fetch(ctx context.Context, path string, ttl time.Duration) ([]byte, error) {
	endpoint := g.endpoint(path)
	url := g.apiBaseURL + endpoint
	persistentKey := cacheKey("api", endpoint)

	if entry, ok := g.memory.Get(url, ttl); ok {
		return entry.Data, nil
	}

	persisted := g.store.Get(persistentKey)
	if persisted != nil && time.Since(persisted.Timestamp) < ttl {
		g.memory.Set(url, persisted.Data, persisted.ETag)
		return persisted.Data, nil
	}

	// Revalidation token from whichever tier still holds the payload,
	// however stale.
	var cachedData []byte
	var cachedETag string
	if stale, ok := g.memory.Peek(url); ok {
		cachedData, cachedETag = stale.Data, stale.ETag
	} else if persisted != nil {
		cachedData, cachedETag = persisted.Data, persisted.ETag
	}

	if !g.tracker.Allow() {
		remaining, resetAt := g.tracker.Snapshot()
		return nil, fmt.Errorf("%w: %d requests remaining until %s",
			domain.ErrRateLimited, remaining, resetAt.Format(time.RFC3339))
	}

	if err := g.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", endpoint, err)
	}
	req.Header.Set("Accept", acceptHeader)
	req.Header.Set("User-Agent", userAgent)
	if g.token != "" {
		req.Header.Set("Authorization", "Bearer "+g.token)
	}
	if cachedETag != "" {
		req.Header.Set("If-None-Match", cachedETag)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		// Transport failure: serve whatever is cached, at any age.
		if cachedData != nil {
			log.Printf("github: network failure for %s, serving cached payload: %v", endpoint, err)
			return cachedData, nil
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotModified:
		// The cached payload is still current; refresh both tiers without
		// a payload transfer. Writing the memory tier matters when the
		// payload survived only in the persistent store.
		if cachedData != nil {
			g.memory.Set(url, cachedData, cachedETag)
			g.store.Set(persistentKey, cachedData, ttl, cachedETag)
			return cachedData, nil
		}
		return nil, fmt.Errorf("%w: 304 with no cached payload for %s", domain.ErrDecode, endpoint)

	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: reading response for %s: %v", domain.ErrNetwork, endpoint, err)
		}
		g.tracker.UpdateFromHeaders(resp.Header)
		etag := resp.Header.Get("ETag")
		g.memory.Set(url, body, etag)
		g.store.Set(persistentKey, body, ttl, etag)
		return body, nil

	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, endpoint)

	case resp.StatusCode == http.StatusForbidden:
		// A 403 never falls back to cache: it can mean revoked
		// credentials, which stale content would mask.
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			g.tracker.UpdateFromHeaders(resp.Header)
			return nil, fmt.Errorf("%w: api budget exhausted for %s", domain.ErrRateLimited, endpoint)
		}
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, endpoint)

	default:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &domain.APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(snippet))}
	}
}

// ListDirectory lists a repository directory, cached for five minutes.
func (g *GitHubSource) ListDirectory(ctx context.Context, path string) ([]domain.FileEntry, error) {
	body, err := g.fetch(ctx, path, g.listingTTL)
	if err != nil {
		return nil, err
	}

	var entries []domain.FileEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: %s is not a directory listing: %v", domain.ErrDecode, path, err)
	}
	return entries, nil
}

// GetFileContent fetches one file's text, cached for thirty minutes since
// content changes less often than listings.
func (g *GitHubSource) GetFileContent(ctx context.Context, path string) (string, error) {
	body, err := g.fetch(ctx, path, g.contentTTL)
	if err != nil {
		return "", err
	}

	var file struct {
		Content  string `json:"content"`
		Encoding string `json:"encoding"`
	}
	if err := json.Unmarshal(body, &file); err != nil {
		return "", fmt.Errorf("%w: %s is not a file object: %v", domain.ErrDecode, path, err)
	}
	if file.Encoding != "base64" {
		return file.Content, nil
	}
	return decodeBase64Content(file.Content)
}

// decodeBase64Content decodes the API's newline-wrapped base64 payload into
// UTF-8 text, falling back to unpadded decoding before giving up.
func decodeBase64Content(content string) (string, error) {
	compact := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' {
			return -1
		}
		return r
	}, content)

	raw, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(compact, "="))
		if err != nil {
			return "", fmt.Errorf("%w: invalid base64 content: %v", domain.ErrDecode, err)
		}
	}
	return string(raw), nil
}

func (g *GitHubSource) ListPosts(ctx context.Context, page, pageSize int) (domain.PostPage, error) {
	if err := ValidatePageArgs(page, pageSize); err != nil {
		return domain.PostPage{}, err
	}

	entries, err := g.ListDirectory(ctx, g.postsPath)
	if err != nil {
		return domain.PostPage{}, fmt.Errorf("failed to list posts directory: %w", err)
	}

	files := filterPostFiles(entries)
	SortPostFiles(files)
	start, end, hasMore, err := Paginate(len(files), page, pageSize)
	if err != nil {
		return domain.PostPage{}, err
	}

	return assemblePage(ctx, files[start:end], hasMore, g.GetFileContent), nil
}

// Validate checks that the configured repository and posts path are
// reachable.
func (g *GitHubSource) Validate(ctx context.Context) error {
	if _, err := g.ListDirectory(ctx, g.postsPath); err != nil {
		return fmt.Errorf("repository validation failed: %w", err)
	}
	return nil
}

func (g *GitHubSource) ClearCache() {
	g.memory.Clear()
}

// ClearExpired drops memory entries past a one-hour ceiling. Intentionally
// coarser than the per-request TTLs; it is a backstop, not the freshness
// mechanism.
func (g *GitHubSource) ClearExpired() int {
	return g.memory.ClearOlderThan(staleCeiling)
}

func (g *GitHubSource) CacheInfo() []cache.EntryInfo {
	return g.memory.Info()
}

// RateLimit exposes the tracked budget for diagnostics.
func (g *GitHubSource) RateLimit() (remaining int, resetAt time.Time) {
	return g.tracker.Snapshot()
}
