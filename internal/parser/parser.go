package parser

import (
	"log"
	"strconv"
	"strings"

	"github.com/monokaijs/feed-watcher-ui/internal/domain"
)

const (
	frontmatterDelimiter = "---"
	attachmentHeading    = "## Attachment"
	maxPreviewRunes      = 200
	noContentFallback    = "No content available"
)

// echoPrefixes are metadata lines some exporters duplicate into the body;
// they never belong in a preview.
var echoPrefixes = []string{"Posted by", "Reactions:", "Source:"}

// Parse turns a raw post document into a Post. It fails closed: any
// structural problem returns nil after logging, it never panics and never
// returns an error.
func Parse(rawText, fileName, path string) *domain.Post {
	decoded := DecodeEntities(rawText)

	fields, body, ok := splitFrontmatter(decoded)
	if !ok {
		log.Printf("parser: %s: no frontmatter block", fileName)
		return nil
	}

	for _, required := range domain.RequiredFields {
		if strings.TrimSpace(fields[required]) == "" {
			log.Printf("parser: %s: missing required field %q", fileName, required)
			return nil
		}
	}

	// The document was decoded as a whole above; field values need no
	// second pass.
	meta := domain.PostMetadata{
		Title:    fields["title"],
		Author:   fields["author"],
		AuthorID: fields["authorId"],
		Date:     fields["date"],
		FeedName: fields["feedName"],
		FeedType: fields["feedType"],
		PostID:   fields["postId"],
	}
	if meta.FeedType == "" {
		meta.FeedType = "unknown"
	}
	if meta.AuthorID == "" {
		meta.AuthorID = "0"
	}
	if n, err := strconv.Atoi(fields["reactions"]); err == nil && n > 0 {
		meta.Reactions = n
	}

	attachments, cleanBody := extractAttachments(body)

	return &domain.Post{
		PostMetadata:   meta,
		Content:        buildPreview(cleanBody),
		Attachments:    attachments,
		TotalReactions: meta.Reactions,
		FileName:       fileName,
		Path:           path,
	}
}

// splitFrontmatter separates the leading key/value block from the body. The
// block is bounded by delimiter lines before and after.
func splitFrontmatter(text string) (map[string]string, string, bool) {
	lines := strings.Split(text, "\n")

	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.TrimSpace(line) == frontmatterDelimiter {
			start = i
		}
		break
	}
	if start < 0 {
		return nil, "", false
	}

	end := -1
	for i := start + 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			end = i
			break
		}
	}
	if end < 0 {
		return nil, "", false
	}

	fields := make(map[string]string)
	for _, line := range lines[start+1 : end] {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fields[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), "\"")
	}

	return fields, strings.Join(lines[end+1:], "\n"), true
}

// extractAttachments pulls attachment sections out of the body and returns
// the body with those sections removed. A section starts at an attachment
// heading and runs to the next heading. Sections without a recognized Type
// are dropped silently; duplicate headings each parse independently.
func extractAttachments(body string) ([]domain.PostAttachment, string) {
	var attachments []domain.PostAttachment
	var kept []string

	lines := strings.Split(body, "\n")
	i := 0
	for i < len(lines) {
		if !strings.HasPrefix(strings.TrimSpace(lines[i]), attachmentHeading) {
			kept = append(kept, lines[i])
			i++
			continue
		}

		i++
		var att domain.PostAttachment
		for i < len(lines) && !strings.HasPrefix(strings.TrimSpace(lines[i]), "#") {
			line := strings.TrimSpace(lines[i])
			i++
			if !strings.HasPrefix(line, "- ") {
				continue
			}
			key, value, found := strings.Cut(strings.TrimPrefix(line, "- "), ":")
			if !found {
				continue
			}
			value = strings.TrimSpace(value)
			switch strings.ToLower(strings.TrimSpace(key)) {
			case "type":
				att.Type = domain.AttachmentType(strings.ToLower(value))
			case "description":
				att.Description = value
			case "url":
				att.URL = value
			case "image":
				att.Image = value
			}
		}

		if domain.ValidAttachmentType(att.Type) {
			attachments = append(attachments, att)
		}
	}

	return attachments, strings.Join(kept, "\n")
}

// buildPreview derives the preview string: drop echo lines and hashtag-only
// lines, take the first non-empty paragraph, cap it at maxPreviewRunes code
// points with a trailing ellipsis when truncated.
func buildPreview(body string) string {
	var kept []string
	for _, line := range strings.Split(body, "\n") {
		if isEchoLine(line) || isHashtagLine(line) {
			continue
		}
		kept = append(kept, line)
	}

	for _, paragraph := range strings.Split(strings.Join(kept, "\n"), "\n\n") {
		text := strings.TrimSpace(paragraph)
		if text == "" {
			continue
		}
		runes := []rune(text)
		if len(runes) > maxPreviewRunes {
			return string(runes[:maxPreviewRunes-1]) + "…"
		}
		return text
	}

	return noContentFallback
}

func isEchoLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	for _, prefix := range echoPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// isHashtagLine reports whether every token on the line is a hashtag.
func isHashtagLine(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !strings.HasPrefix(f, "#") || len(f) < 2 {
			return false
		}
	}
	return true
}
