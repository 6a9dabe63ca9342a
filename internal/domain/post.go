package domain

// AttachmentType enumerates the attachment kinds a post section may declare.
type AttachmentType string

const (
	AttachmentPhoto AttachmentType = "photo"
	AttachmentVideo AttachmentType = "video"
	AttachmentLink  AttachmentType = "link"
)

// ValidAttachmentType reports whether t is one of the recognized kinds.
func ValidAttachmentType(t AttachmentType) bool {
	switch t {
	case AttachmentPhoto, AttachmentVideo, AttachmentLink:
		return true
	}
	return false
}

// PostMetadata holds the frontmatter fields of a post document. Date is kept
// verbatim as written in the document; display formatting decides later
// whether it is parseable.
type PostMetadata struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	AuthorID  string `json:"author_id"`
	Date      string `json:"date"`
	FeedName  string `json:"feed_name"`
	FeedType  string `json:"feed_type"`
	PostID    string `json:"post_id"`
	Reactions int    `json:"reactions"`
}

// RequiredFields lists the metadata keys a document must carry to be valid.
var RequiredFields = []string{"title", "author", "date", "feedName", "postId"}

type PostAttachment struct {
	Type        AttachmentType `json:"type"`
	Description string         `json:"description,omitempty"`
	URL         string         `json:"url,omitempty"`
	Image       string         `json:"image,omitempty"`
}

// Post is an immutable parsed content item. It is reconstructed whenever its
// source document is refetched, never mutated in place.
type Post struct {
	PostMetadata
	Content        string           `json:"content"`
	Attachments    []PostAttachment `json:"attachments,omitempty"`
	TotalReactions int              `json:"total_reactions"`
	FileName       string           `json:"file_name"`
	Path           string           `json:"path"`
}

// FileEntry is one row of a directory listing, from either source.
type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size,omitempty"`
	SHA  string `json:"sha,omitempty"`
}

// SkippedFile records a post that was dropped during page assembly, so a bad
// document degrades a page instead of failing it.
type SkippedFile struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// PostPage is the result of assembling one page of the feed.
type PostPage struct {
	Posts   []Post        `json:"posts"`
	Skipped []SkippedFile `json:"skipped,omitempty"`
	HasMore bool          `json:"has_more"`
}

// SourceMode identifies which adapter backs a loader instance.
type SourceMode string

const (
	ModeLocal  SourceMode = "local"
	ModeRemote SourceMode = "remote"
)
