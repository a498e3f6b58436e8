// Package webvtt converts the caption JSON served by the catalog site into
// WebVTT caption-track documents.
package webvtt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Signature is the fixed first line of every WebVTT document.
const Signature = "WEBVTT"

type captionDocument struct {
	Captions []caption `json:"captions"`
}

type caption struct {
	StartTime int    `json:"startTime"`
	Duration  int    `json:"duration"`
	Content   string `json:"content"`
}

// Convert parses a caption JSON document and renders it as WebVTT. Each cue
// covers (startTime, startTime+duration) in milliseconds:
//
//	WEBVTT
//
//	00:00:11.000 --> 00:00:15.500
//	cue text
func Convert(doc []byte) (string, error) {
	var parsed captionDocument
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return "", fmt.Errorf("decode captions: %w", err)
	}

	var b strings.Builder
	b.WriteString(Signature)
	b.WriteString("\n\n")
	for _, c := range parsed.Captions {
		b.WriteString(FormatTimecode(c.StartTime))
		b.WriteString(" --> ")
		b.WriteString(FormatTimecode(c.StartTime + c.Duration))
		b.WriteString("\n")
		b.WriteString(c.Content)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// FormatTimecode renders a millisecond offset as HH:MM:SS.mmm.
func FormatTimecode(ms int) string {
	hours := ms / 3600000
	ms %= 3600000
	minutes := ms / 60000
	ms %= 60000
	seconds := ms / 1000
	ms %= 1000
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, ms)
}
