package parser

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/monokaijs/feed-watcher-ui/internal/domain"
)

func makeDoc(omit string, body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	fields := map[string]string{
		"title":     "Hello World",
		"author":    "Alice",
		"date":      "2024-12-15T10:30:00Z",
		"feedName":  "Tech Feed",
		"feedType":  "group",
		"postId":    "12345_1734258600",
		"reactions": "42",
	}
	for _, key := range []string{"title", "author", "date", "feedName", "feedType", "postId", "reactions"} {
		if key == omit {
			continue
		}
		fmt.Fprintf(&b, "%s: %s\n", key, fields[key])
	}
	b.WriteString("---\n")
	b.WriteString(body)
	return b.String()
}

func TestParseValidDocument(t *testing.T) {
	post := Parse(makeDoc("", "First paragraph of the post.\n\nSecond paragraph."), "2024-12-15_10-30-00_hello.mdx", "posts/2024-12-15_10-30-00_hello.mdx")
	if post == nil {
		t.Fatal("expected post, got nil")
	}
	if post.Title != "Hello World" {
		t.Errorf("title = %q", post.Title)
	}
	if post.Author != "Alice" {
		t.Errorf("author = %q", post.Author)
	}
	if post.Reactions != 42 || post.TotalReactions != 42 {
		t.Errorf("reactions = %d, total = %d", post.Reactions, post.TotalReactions)
	}
	if post.Content != "First paragraph of the post." {
		t.Errorf("preview = %q", post.Content)
	}
	if post.FileName != "2024-12-15_10-30-00_hello.mdx" {
		t.Errorf("fileName = %q", post.FileName)
	}
}

func TestParseMissingRequiredFields(t *testing.T) {
	for _, field := range domain.RequiredFields {
		t.Run(field, func(t *testing.T) {
			if post := Parse(makeDoc(field, "Some body."), "x.mdx", "posts/x.mdx"); post != nil {
				t.Errorf("expected nil for document missing %q, got %+v", field, post)
			}
		})
	}
}

func TestParseDefaults(t *testing.T) {
	doc := "---\ntitle: T\nauthor: A\ndate: whenever\nfeedName: F\npostId: 1\n---\nbody"
	post := Parse(doc, "x.mdx", "posts/x.mdx")
	if post == nil {
		t.Fatal("expected post")
	}
	if post.FeedType != "unknown" {
		t.Errorf("feedType = %q, want unknown", post.FeedType)
	}
	if post.AuthorID != "0" {
		t.Errorf("authorId = %q, want 0", post.AuthorID)
	}
	if post.Reactions != 0 {
		t.Errorf("reactions = %d, want 0", post.Reactions)
	}
	// Unparsable dates are preserved verbatim, not rejected.
	if post.Date != "whenever" {
		t.Errorf("date = %q, want verbatim value", post.Date)
	}
}

func TestParseNoFrontmatter(t *testing.T) {
	if post := Parse("just some text", "x.mdx", "x.mdx"); post != nil {
		t.Errorf("expected nil, got %+v", post)
	}
	if post := Parse("---\ntitle: unterminated\n", "x.mdx", "x.mdx"); post != nil {
		t.Errorf("expected nil for unterminated frontmatter, got %+v", post)
	}
}

func TestDecodeEntities(t *testing.T) {
	cases := []struct{ in, want string }{
		{"Tom &amp; Jerry", "Tom & Jerry"},
		{"&lt;b&gt;bold&lt;/b&gt;", "<b>bold</b>"},
		{"chi&#7871;c xe", "chiếc xe"},
		{"&unknown; stays", "&unknown; stays"},
		{"no entities here", "no entities here"},
		{"trailing &", "trailing &"},
		// Stacked encodings unwrap fully.
		{"A &amp;lt; B", "A < B"},
		{"&amp;amp;", "&"},
	}
	for _, c := range cases {
		if got := DecodeEntities(c.in); got != c.want {
			t.Errorf("DecodeEntities(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDecodeEntitiesIdempotent(t *testing.T) {
	inputs := []string{
		"Tom &amp; Jerry &lt;3",
		"chi&#7871;c l&#225; cu&#7889;i c&#249;ng",
		"already decoded: ế á à & <>",
		"&quot;quoted&quot; &unknown;",
		// Stacked encodings: the first pass emits new entities, which must
		// not survive.
		"A &amp;lt; B",
		"&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt;",
		"Fish &amp;amp; Chips",
	}
	for _, in := range inputs {
		once := DecodeEntities(in)
		twice := DecodeEntities(once)
		if once != twice {
			t.Errorf("decode not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestParseDecodesFieldsOnce(t *testing.T) {
	doc := "---\ntitle: Fish &amp;amp; Chips\nauthor: Ho&#224;ng\ndate: 2024-12-15\nfeedName: F\npostId: 1\n---\nTom &amp; Jerry."
	post := Parse(doc, "x.mdx", "posts/x.mdx")
	if post == nil {
		t.Fatal("expected post")
	}
	if post.Title != "Fish & Chips" {
		t.Errorf("title = %q", post.Title)
	}
	if post.Author != "Hoàng" {
		t.Errorf("author = %q", post.Author)
	}
	if post.Content != "Tom & Jerry." {
		t.Errorf("preview = %q", post.Content)
	}
}

func TestPreviewTruncation(t *testing.T) {
	long := strings.Repeat("ầ", 300)
	post := Parse(makeDoc("", long), "x.mdx", "x.mdx")
	if post == nil {
		t.Fatal("expected post")
	}
	if n := utf8.RuneCountInString(post.Content); n > 200 {
		t.Errorf("preview is %d code points, want <= 200", n)
	}
	if !strings.HasSuffix(post.Content, "…") {
		t.Errorf("truncated preview does not end with ellipsis: %q", post.Content)
	}

	exact := strings.Repeat("b", 200)
	post = Parse(makeDoc("", exact), "x.mdx", "x.mdx")
	if post.Content != exact {
		t.Errorf("200-rune paragraph should be an exact copy, got %d runes", utf8.RuneCountInString(post.Content))
	}
}

func TestPreviewSkipsEchoAndHashtagLines(t *testing.T) {
	body := "Posted by Alice\n#tech #news\n\nReal first paragraph."
	post := Parse(makeDoc("", body), "x.mdx", "x.mdx")
	if post == nil {
		t.Fatal("expected post")
	}
	if post.Content != "Real first paragraph." {
		t.Errorf("preview = %q", post.Content)
	}
}

func TestPreviewFallback(t *testing.T) {
	post := Parse(makeDoc("", "#only #tags\n\nPosted by nobody\n"), "x.mdx", "x.mdx")
	if post == nil {
		t.Fatal("expected post")
	}
	if post.Content != "No content available" {
		t.Errorf("preview = %q, want fallback message", post.Content)
	}
}

func TestExtractAttachments(t *testing.T) {
	body := strings.Join([]string{
		"Intro paragraph.",
		"",
		"## Attachment",
		"- Type: photo",
		"- Description: a sunset",
		"- Image: https://example.com/sunset.jpg",
		"",
		"## Attachment",
		"- Type: link",
		"- URL: https://example.com/article",
		"",
		"## Attachment",
		"- Description: no type, must be dropped",
		"",
		"Outro paragraph.",
	}, "\n")

	post := Parse(makeDoc("", body), "x.mdx", "x.mdx")
	if post == nil {
		t.Fatal("expected post")
	}
	if len(post.Attachments) != 2 {
		t.Fatalf("got %d attachments, want 2: %+v", len(post.Attachments), post.Attachments)
	}
	if post.Attachments[0].Type != domain.AttachmentPhoto || post.Attachments[0].Description != "a sunset" {
		t.Errorf("first attachment = %+v", post.Attachments[0])
	}
	if post.Attachments[1].Type != domain.AttachmentLink || post.Attachments[1].URL != "https://example.com/article" {
		t.Errorf("second attachment = %+v", post.Attachments[1])
	}
	if post.Content != "Intro paragraph." {
		t.Errorf("preview should exclude attachment sections, got %q", post.Content)
	}
}

func TestAttachmentInvalidType(t *testing.T) {
	body := "## Attachment\n- Type: carrier-pigeon\n- URL: x\n\ntext"
	post := Parse(makeDoc("", body), "x.mdx", "x.mdx")
	if post == nil {
		t.Fatal("expected post")
	}
	if len(post.Attachments) != 0 {
		t.Errorf("unrecognized type must be dropped, got %+v", post.Attachments)
	}
}
