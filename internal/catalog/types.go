// Package catalog defines the talk metadata model and implements the
// catalog crawl and per-page metadata extraction.
package catalog

import (
	"encoding/json"
)

// Subtitle is one caption track declared by a talk, addressed by language.
type Subtitle struct {
	LanguageCode string `json:"languageCode"`
	LanguageName string `json:"languageName"`
	SourceURL    string `json:"link"`
}

// Talk is one catalog entry as persisted in the metadata snapshot. A Talk is
// immutable once built: later phases read it and write derived files, never
// the record itself.
type Talk struct {
	ID                string          `json:"id"`
	Title             string          `json:"title"`
	Description       string          `json:"description"`
	Speaker           string          `json:"speaker"`
	SpeakerProfession string          `json:"speaker_profession"`
	SpeakerBio        string          `json:"speaker_bio"`
	SpeakerPictureURL string          `json:"speaker_picture"`
	PublishDate       string          `json:"date"`
	ThumbnailURL      string          `json:"thumbnail"`
	VideoDownloadURL  string          `json:"video_link"`
	LengthMinutes     int             `json:"length"`
	Keywords          []string        `json:"keywords"`
	Subtitles         []Subtitle      `json:"subtitles"`
	Ratings           json.RawMessage `json:"ratings,omitempty"`
}

// HasKeyword reports whether the talk lists the given keyword.
func (t Talk) HasKeyword(keyword string) bool {
	for _, k := range t.Keywords {
		if k == keyword {
			return true
		}
	}
	return false
}

// Categories returns the categories the talk belongs to: the intersection of
// its keywords with the configured category set, in configured order. A talk
// may belong to zero, one, or several categories.
func (t Talk) Categories(categories []string) []string {
	var member []string
	for _, c := range categories {
		if t.HasKeyword(c) {
			member = append(member, c)
		}
	}
	return member
}
