package handler

import (
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"

	"github.com/monokaijs/feed-watcher-ui/internal/domain"
	"github.com/monokaijs/feed-watcher-ui/internal/service"
	"github.com/monokaijs/feed-watcher-ui/internal/source"
	"github.com/monokaijs/feed-watcher-ui/pkg/datetime"
)

type PostHandler struct {
	postService   *service.PostService
	dateFormatter *datetime.Formatter
	postsTemplate *template.Template
}

func NewPostHandler(postService *service.PostService, dateFormatter *datetime.Formatter) *PostHandler {
	postsTemplate, err := template.ParseFiles("templates/posts.html")
	if err != nil {
		log.Fatalf("Failed to parse posts template: %v", err)
	}

	return &PostHandler{
		postService:   postService,
		dateFormatter: dateFormatter,
		postsTemplate: postsTemplate,
	}
}

type postView struct {
	domain.Post
	DisplayDate string
}

func (h *PostHandler) ViewPosts(w http.ResponseWriter, r *http.Request) {
	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil && parsed >= 1 {
			page = parsed
		}
	}

	result, err := h.postService.ListPosts(r.Context(), page, source.DefaultPageSize)
	if err != nil {
		log.Printf("Error listing posts: %v", err)
		h.renderError(w, err)
		return
	}

	posts := make([]postView, 0, len(result.Posts))
	for _, p := range result.Posts {
		posts = append(posts, postView{
			Post:        p,
			DisplayDate: h.dateFormatter.FormatForDisplay(p.Date),
		})
	}

	pageData := struct {
		Posts    []postView
		Skipped  []domain.SkippedFile
		Mode     domain.SourceMode
		Page     int
		PrevPage int
		NextPage int
		HasMore  bool
	}{
		Posts:    posts,
		Skipped:  result.Skipped,
		Mode:     h.postService.Mode(),
		Page:     page,
		PrevPage: page - 1,
		NextPage: page + 1,
		HasMore:  result.HasMore,
	}

	if err := h.postsTemplate.Execute(w, pageData); err != nil {
		log.Printf("Error executing posts template: %v", err)
	}
}

// GetContent serves one post document verbatim, through whichever adapter is
// active.
func (h *PostHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		http.Error(w, "Missing path parameter", http.StatusBadRequest)
		return
	}

	content, err := h.postService.GetFileContent(r.Context(), path)
	if err != nil {
		log.Printf("Error fetching content for %s: %v", path, err)
		h.renderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(content))
}

// renderError maps the error taxonomy to user-visible responses. Retries are
// always user-initiated; nothing here retries automatically.
func (h *PostHandler) renderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoPostsDir):
		http.Error(w, "Not found. Check the repository settings and try again.", http.StatusNotFound)
	case errors.Is(err, domain.ErrRateLimited):
		http.Error(w, "API rate limit exceeded. Wait a moment and try again.", http.StatusServiceUnavailable)
	case errors.Is(err, domain.ErrForbidden):
		http.Error(w, "Access forbidden. Check the repository settings and try again.", http.StatusForbidden)
	case errors.Is(err, domain.ErrValidation):
		http.Error(w, "Invalid request: "+err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrNetwork):
		http.Error(w, "Network error reaching the content API. Try again.", http.StatusBadGateway)
	default:
		http.Error(w, "Failed to load posts. Try again.", http.StatusInternalServerError)
	}
}
