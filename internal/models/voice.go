package models

import "strings"

// Voice is an entry of the narration voice catalog.
type Voice struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DefaultVoice is assigned to new projects.
const DefaultVoice = "aria"

// Voices is the fixed catalog offered to users.
var Voices = []Voice{
	{ID: "aria", Name: "Aria", Description: "Warm & conversational"},
	{ID: "roger", Name: "Roger", Description: "Professional & clear"},
	{ID: "sarah", Name: "Sarah", Description: "Energetic & youthful"},
	{ID: "laura", Name: "Laura", Description: "Soft & soothing"},
	{ID: "charlie", Name: "Charlie", Description: "Friendly & casual"},
	{ID: "george", Name: "George", Description: "Deep & authoritative"},
	{ID: "liam", Name: "Liam", Description: "British & refined"},
	{ID: "charlotte", Name: "Charlotte", Description: "Elegant & clear"},
	{ID: "brian", Name: "Brian", Description: "American narrator"},
}

// LookupVoice finds a catalog entry by id, case-insensitively.
func LookupVoice(id string) (Voice, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, v := range Voices {
		if v.ID == id {
			return v, true
		}
	}
	return Voice{}, false
}

// WordsPerMinute is the narration pace used for duration estimates.
const WordsPerMinute = 150

// EstimateDuration returns ceil(words / 150 * 60) seconds, where words is the
// number of whitespace-separated tokens in text.
func EstimateDuration(text string) int {
	words := len(strings.Fields(text))
	return (words*60 + WordsPerMinute - 1) / WordsPerMinute
}
