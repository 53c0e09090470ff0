package models

// VideoClip is a stock video candidate returned by clip search. It is never
// persisted; selecting one copies its fields onto a segment.
type VideoClip struct {
	ID        int64   `json:"id"`
	URL       string  `json:"url"`
	Thumbnail string  `json:"thumbnail"`
	Duration  float64 `json:"duration"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	User      string  `json:"user"`
}

// Assignment converts the clip into the fields stored on a segment.
func (c VideoClip) Assignment() ClipAssignment {
	return ClipAssignment{URL: c.URL, Thumbnail: c.Thumbnail, Duration: c.Duration}
}
