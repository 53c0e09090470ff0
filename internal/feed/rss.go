package feed

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/eduncan911/podcast"

	"article-reels/internal/models"
)

// BaseURL returns configured when set, otherwise the scheme and host the
// request came in on.
func BaseURL(r *http.Request, configured string) string {
	if configured != "" {
		return strings.TrimSuffix(configured, "/")
	}

	scheme := r.URL.Scheme
	if scheme == "" {
		scheme = "https"
		if r.Header.Get("X-Forwarded-Proto") != "" {
			scheme = r.Header.Get("X-Forwarded-Proto")
		}
	}

	return fmt.Sprintf("%s://%s", scheme, r.Host)
}

// Publishable reports whether a project's narration can be linked from a
// feed. Inline data URLs are not.
func Publishable(p *models.Project) bool {
	if !p.HasVoice() {
		return false
	}
	return strings.HasPrefix(*p.VoiceURL, "https://") || strings.HasPrefix(*p.VoiceURL, "http://")
}

// GenerateRSS renders the narration of every publishable project as a
// podcast episode.
func GenerateRSS(projects []models.Project, baseURL string) (string, error) {
	var latest time.Time
	for _, p := range projects {
		if p.UpdatedAt.After(latest) {
			latest = p.UpdatedAt
		}
	}

	feed := podcast.New(
		"Article Reels Narrations",
		baseURL+"/feed.xml",
		"Voiceovers generated from articles.",
		&latest, &latest,
	)

	for i := range projects {
		p := &projects[i]
		if !Publishable(p) {
			continue
		}
		description := fmt.Sprintf("Narration of %q.", p.Title)
		if p.ArticleURL != nil {
			description = fmt.Sprintf("Narration of %q (%s).", p.Title, *p.ArticleURL)
		}
		item := podcast.Item{
			Title:       p.Title,
			Description: description,
			PubDate:     &p.UpdatedAt,
			GUID:        p.ID,
		}
		if p.ArticleURL != nil {
			item.Link = *p.ArticleURL
		}
		item.AddEnclosure(*p.VoiceURL, podcast.MP3, 0)
		if p.Duration > 0 {
			item.AddDuration(int64(p.Duration))
		}
		if _, err := feed.AddItem(item); err != nil {
			return "", fmt.Errorf("add feed item for project %s: %w", p.ID, err)
		}
	}

	return feed.String(), nil
}
