package domain

import (
	"fmt"
	"regexp"
	"strings"
)

const DefaultPostsPath = "posts"

// repoURLPattern matches .../<owner>/<repo> with an optional .git suffix and
// trailing slash, e.g. https://github.com/monokaijs/feeds.git
var repoURLPattern = regexp.MustCompile(`^https?://[^/]+/([A-Za-z0-9_.-]+)/([A-Za-z0-9_-]+?)(?:\.git)?/?$`)

// FeedConfig selects the repository and directory the feed is read from.
// Owner and Repo are always re-derived from RepositoryURL on save; they are
// never trusted from persisted state without re-derivation.
type FeedConfig struct {
	RepositoryURL string `json:"repository_url"`
	Owner         string `json:"owner"`
	Repo          string `json:"repo"`
	PostsPath     string `json:"posts_path"`
}

// Derive validates RepositoryURL, fills Owner and Repo from it and defaults
// PostsPath. It must be called on every save so the derived pair can never
// drift from the URL.
func (c *FeedConfig) Derive() error {
	url := strings.TrimSpace(c.RepositoryURL)
	if url == "" {
		return fmt.Errorf("%w: repository URL is empty", ErrValidation)
	}
	m := repoURLPattern.FindStringSubmatch(url)
	if m == nil {
		return fmt.Errorf("%w: repository URL %q does not match .../<owner>/<repo>", ErrValidation, url)
	}
	c.RepositoryURL = url
	c.Owner = m[1]
	c.Repo = m[2]
	if strings.TrimSpace(c.PostsPath) == "" {
		c.PostsPath = DefaultPostsPath
	}
	c.PostsPath = strings.Trim(c.PostsPath, "/")
	return nil
}
