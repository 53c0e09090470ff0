package handlers

import (
	"log"
	"net/http"

	"article-reels/internal/feed"
)

const feedProjectLimit = 200

// GetNarrationFeed publishes generated voiceovers as a podcast feed.
func (h *Handlers) GetNarrationFeed(w http.ResponseWriter, r *http.Request) {
	projects, err := h.pipeline.ListProjects(r.Context(), feedProjectLimit, "")
	if err != nil {
		writeError(w, r, err)
		return
	}

	rss, err := feed.GenerateRSS(projects, feed.BaseURL(r, h.publicURL))
	if err != nil {
		log.Printf("Error generating RSS: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml")
	w.Write([]byte(rss))
}
