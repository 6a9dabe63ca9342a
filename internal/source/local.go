package source

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/monokaijs/feed-watcher-ui/internal/cache"
	"github.com/monokaijs/feed-watcher-ui/internal/domain"
)

// LocalSource reads the post set from a directory on the local filesystem.
// No cache layer: filesystem reads are assumed cheap.
type LocalSource struct {
	root string
}

func NewLocalSource(root string) *LocalSource {
	return &LocalSource{root: filepath.Clean(root)}
}

func (l *LocalSource) Mode() domain.SourceMode { return domain.ModeLocal }

func (l *LocalSource) listEntries() ([]domain.FileEntry, error) {
	dirEntries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNoPostsDir, l.root)
		}
		return nil, fmt.Errorf("failed to read posts directory: %w", err)
	}

	logicalRoot := filepath.Base(l.root)
	entries := make([]domain.FileEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		entryType := "file"
		if de.IsDir() {
			entryType = "dir"
		}
		entries = append(entries, domain.FileEntry{
			Name: de.Name(),
			Path: path.Join(logicalRoot, de.Name()),
			Type: entryType,
		})
	}
	return entries, nil
}

func (l *LocalSource) ListPosts(ctx context.Context, page, pageSize int) (domain.PostPage, error) {
	if err := ValidatePageArgs(page, pageSize); err != nil {
		return domain.PostPage{}, err
	}

	entries, err := l.listEntries()
	if err != nil {
		return domain.PostPage{}, err
	}

	files := filterPostFiles(entries)
	SortPostFiles(files)
	start, end, hasMore, err := Paginate(len(files), page, pageSize)
	if err != nil {
		return domain.PostPage{}, err
	}

	return assemblePage(ctx, files[start:end], hasMore, l.GetFileContent), nil
}

// GetFileContent resolves a logical path against the configured root. Both
// paths already rooted at the posts directory ("posts/x.mdx") and bare names
// ("x.mdx") are accepted.
func (l *LocalSource) GetFileContent(_ context.Context, p string) (string, error) {
	name := path.Clean(strings.TrimPrefix(p, filepath.Base(l.root)+"/"))
	if name == "" || name == "." || strings.Contains(name, "..") {
		return "", fmt.Errorf("%w: invalid post path %q", domain.ErrValidation, p)
	}

	data, err := os.ReadFile(filepath.Join(l.root, filepath.FromSlash(name)))
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, p)
		}
		return "", fmt.Errorf("failed to read %s: %w", p, err)
	}
	return string(data), nil
}

func (l *LocalSource) Validate(context.Context) error {
	info, err := os.Stat(l.root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", domain.ErrNoPostsDir, l.root)
	}
	return nil
}

func (l *LocalSource) ClearCache()                  {}
func (l *LocalSource) ClearExpired() int            { return 0 }
func (l *LocalSource) CacheInfo() []cache.EntryInfo { return nil }
