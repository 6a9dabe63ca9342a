package source

import (
	"context"
	"log"
	"regexp"

	"github.com/monokaijs/feed-watcher-ui/internal/cache"
	"github.com/monokaijs/feed-watcher-ui/internal/domain"
	"github.com/monokaijs/feed-watcher-ui/internal/parser"
)

const DefaultPageSize = 10

// postFilePattern recognizes post documents: a fixed date prefix, a slug and
// a markdown-family extension. Listing entries outside this pattern never
// participate in the feed.
var postFilePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}_\d{2}-\d{2}-\d{2}_.+\.(mdx|md)$`)

// PostSource is the source-agnostic interface both adapters implement.
type PostSource interface {
	ListPosts(ctx context.Context, page, pageSize int) (domain.PostPage, error)
	GetFileContent(ctx context.Context, path string) (string, error)
	Validate(ctx context.Context) error
	Mode() domain.SourceMode

	// Cache maintenance. The local adapter has no cache layer; its
	// implementations are no-ops.
	ClearCache()
	ClearExpired() int
	CacheInfo() []cache.EntryInfo
}

// filterPostFiles keeps only file entries that follow the post naming
// convention.
func filterPostFiles(entries []domain.FileEntry) []domain.FileEntry {
	var files []domain.FileEntry
	for _, e := range entries {
		if e.Type == "file" && postFilePattern.MatchString(e.Name) {
			files = append(files, e)
		}
	}
	return files
}

// assemblePage fetches and parses the given slice of post files. A single
// file's fetch or parse failure is recorded as a skip and never aborts the
// page.
func assemblePage(ctx context.Context, files []domain.FileEntry, hasMore bool, fetch func(context.Context, string) (string, error)) domain.PostPage {
	page := domain.PostPage{HasMore: hasMore}
	for _, f := range files {
		content, err := fetch(ctx, f.Path)
		if err != nil {
			log.Printf("source: skipping %s: %v", f.Name, err)
			page.Skipped = append(page.Skipped, domain.SkippedFile{Name: f.Name, Reason: err.Error()})
			continue
		}
		post := parser.Parse(content, f.Name, f.Path)
		if post == nil {
			page.Skipped = append(page.Skipped, domain.SkippedFile{Name: f.Name, Reason: "unparsable document"})
			continue
		}
		page.Posts = append(page.Posts, *post)
	}
	return page
}
