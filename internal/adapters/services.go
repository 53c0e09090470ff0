package adapters

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"article-reels/internal/models"
)

// Article is the extractor's result.
type Article struct {
	Title   string
	Content string
}

// Extract fetches the readable text of the article at url.
func (c *Client) Extract(ctx context.Context, url string) (Article, error) {
	var resp struct {
		envelope
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	err := c.post(ctx, "extract", c.endpoints.Extract, map[string]string{"url": url}, &resp, &resp.envelope)
	if err != nil {
		return Article{}, err
	}
	return Article{Title: resp.Title, Content: resp.Content}, nil
}

// ScriptLine is one generated narration line with its visual search keywords.
type ScriptLine struct {
	Line     string `json:"line"`
	Keywords string `json:"keywords"`
}

// GenerateScript asks the language model for a short voiceover script.
func (c *Client) GenerateScript(ctx context.Context, content, title string) ([]ScriptLine, error) {
	var resp struct {
		envelope
		Segments []ScriptLine `json:"segments"`
	}
	body := map[string]string{"content": content, "title": title}
	if err := c.post(ctx, "generate-script", c.endpoints.Script, body, &resp, &resp.envelope); err != nil {
		return nil, err
	}
	return resp.Segments, nil
}

// SearchClips finds up to perPage stock clips for the keywords.
func (c *Client) SearchClips(ctx context.Context, keywords string, perPage int) ([]models.VideoClip, error) {
	if c.clipLimit != nil {
		if err := c.clipLimit.Wait(ctx); err != nil {
			return nil, fmt.Errorf("search-clips: wait for rate limit: %w", err)
		}
	}
	var resp struct {
		envelope
		Clips []models.VideoClip `json:"clips"`
		Total int                `json:"total"`
	}
	body := map[string]interface{}{"keywords": keywords, "perPage": perPage}
	if err := c.post(ctx, "search-clips", c.endpoints.ClipSearch, body, &resp, &resp.envelope); err != nil {
		return nil, err
	}
	return resp.Clips, nil
}

// Narration is synthesized speech for a script.
type Narration struct {
	Audio             []byte
	EstimatedDuration int
	VoiceType         string
}

// Synthesize renders text as speech with the given voice.
func (c *Client) Synthesize(ctx context.Context, text, voiceType string) (Narration, error) {
	var resp struct {
		envelope
		AudioBase64       string `json:"audioBase64"`
		EstimatedDuration int    `json:"estimatedDuration"`
		VoiceType         string `json:"voiceType"`
	}
	body := map[string]string{"text": text, "voiceType": voiceType}
	if err := c.post(ctx, "generate-voice", c.endpoints.Voice, body, &resp, &resp.envelope); err != nil {
		return Narration{}, err
	}

	audio, err := base64.StdEncoding.DecodeString(strings.TrimSpace(resp.AudioBase64))
	if err != nil {
		return Narration{}, fmt.Errorf("generate-voice: decode audio: %v: %w", err, ErrAdapter)
	}
	if len(audio) == 0 {
		return Narration{}, fmt.Errorf("generate-voice: empty audio: %w", ErrAdapter)
	}
	return Narration{Audio: audio, EstimatedDuration: resp.EstimatedDuration, VoiceType: resp.VoiceType}, nil
}
