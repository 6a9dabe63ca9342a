package handler

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/monokaijs/feed-watcher-ui/internal/cache"
	"github.com/monokaijs/feed-watcher-ui/internal/service"
)

type CacheHandler struct {
	postService *service.PostService
	store       cache.PersistentStore
}

func NewCacheHandler(postService *service.PostService, store cache.PersistentStore) *CacheHandler {
	return &CacheHandler{postService: postService, store: store}
}

// Dashboard renders entry-age and revalidation-token charts for both cache
// tiers.
func (h *CacheHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	stats := h.store.Stats()
	memInfo := h.postService.CacheInfo()

	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{
		Title:    "Persistent cache entry ages",
		Subtitle: fmt.Sprintf("%d entries, %s", stats.Count, stats.TotalSize),
	}))

	var barX []string
	var barY []opts.BarData
	for _, e := range stats.Entries {
		barX = append(barX, e.Key)
		barY = append(barY, opts.BarData{Value: e.Age.Round(time.Second).Seconds()})
	}
	bar.SetXAxis(barX).AddSeries("Age (s)", barY)

	pie := charts.NewPie()
	pie.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Revalidation tokens"}))

	withETag := 0
	for _, e := range memInfo {
		if e.HasETag {
			withETag++
		}
	}
	pie.AddSeries("Memory entries", []opts.PieData{
		{Name: "with ETag", Value: withETag},
		{Name: "without ETag", Value: len(memInfo) - withETag},
	})

	page := components.NewPage()
	page.AddCharts(bar, pie)
	if err := page.Render(w); err != nil {
		log.Printf("Error rendering cache dashboard: %v", err)
	}
}

// Stats writes a plain-text diagnostic snapshot of both tiers.
func (h *CacheHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.store.Stats()
	memInfo := h.postService.CacheInfo()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Cache Diagnostics\n")
	fmt.Fprintf(w, "=================\n\n")
	fmt.Fprintf(w, "Mode: %s\n\n", h.postService.Mode())

	fmt.Fprintf(w, "Persistent tier: %d entries, %s\n", stats.Count, stats.TotalSize)
	for _, e := range stats.Entries {
		fmt.Fprintf(w, "  %-60s age=%-10s etag=%t\n", e.Key, e.Age.Round(time.Second), e.HasETag)
	}

	fmt.Fprintf(w, "\nMemory tier: %d entries\n", len(memInfo))
	for _, e := range memInfo {
		fmt.Fprintf(w, "  %-60s age=%-10s etag=%t\n", e.Key, e.Age.Round(time.Second), e.HasETag)
	}
}

// Clear drops every memory entry and the persistent namespace, then returns
// to the stats page.
func (h *CacheHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.postService.ClearCache()
	h.store.Clear()
	log.Println("Cache cleared")
	http.Redirect(w, r, "/cache/stats", http.StatusFound)
}

// ClearExpired drops memory entries past the backstop ceiling.
func (h *CacheHandler) ClearExpired(w http.ResponseWriter, r *http.Request) {
	removed := h.postService.ClearExpired()
	log.Printf("Cleared %d expired cache entries", removed)
	http.Redirect(w, r, "/cache/stats", http.StatusFound)
}
