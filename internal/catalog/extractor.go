package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Talk pages embed a script node whose body assigns a JSON object. The blob
// is recovered by stripping the assignment wrapper: everything up to the
// first comma, and everything from the last closing parenthesis on.
var (
	errNoEmbeddedData   = errors.New("no embedded data block")
	errMalformedWrapper = errors.New("malformed embedded data wrapper")
)

// Extractor turns one fetched talk page into a normalized Talk record.
type Extractor struct {
	fetcher      DocumentFetcher
	subtitleBase string
	logger       *zap.Logger
}

// NewExtractor builds an Extractor. subtitleBase is the host used to derive
// per-language caption-source URLs.
func NewExtractor(fetcher DocumentFetcher, subtitleBase string, logger *zap.Logger) *Extractor {
	return &Extractor{
		fetcher:      fetcher,
		subtitleBase: subtitleBase,
		logger:       logger,
	}
}

// embeddedTalk mirrors the fields read from the embedded JSON object.
type embeddedTalk struct {
	ID              flexString        `json:"id"`
	Speaker         string            `json:"speaker"`
	Title           string            `json:"title"`
	Duration        flexInt           `json:"duration"`
	Thumb           string            `json:"thumb"`
	NativeDownloads map[string]string `json:"nativeDownloads"`
	Languages       []struct {
		LanguageCode string `json:"languageCode"`
		LanguageName string `json:"languageName"`
	} `json:"languages"`
}

type embeddedData struct {
	Talks   []embeddedTalk  `json:"talks"`
	Ratings json.RawMessage `json:"ratings"`
}

// Extract fetches a talk page and assembles its metadata record.
//
// A nil record with a nil error means the page was skipped: no embedded data
// block, an unparsable block, or no native download URL. Skips are expected
// for a minority of pages and are not escalated; the caller simply drops the
// entry from the collection.
func (e *Extractor) Extract(ctx context.Context, pageURL string) (*Talk, error) {
	doc, err := e.fetcher.GetDocument(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", pageURL, err)
	}

	data, err := e.embeddedData(doc)
	if err != nil {
		e.logger.Warn("Skipping talk page",
			zap.String("url", pageURL),
			zap.String("reason", err.Error()),
		)
		return nil, nil
	}
	talk := data.Talks[0]

	downloadURL := talk.NativeDownloads["medium"]
	if downloadURL == "" {
		e.logger.Warn("Skipping talk page",
			zap.String("url", pageURL),
			zap.String("reason", "no medium-quality native download"),
		)
		return nil, nil
	}

	record := &Talk{
		ID:                string(talk.ID),
		Title:             ToPortable(talk.Title),
		Description:       ToPortable(firstText(doc, "p.talk-description")),
		Speaker:           ToPortable(talk.Speaker),
		SpeakerProfession: ToPortable(firstText(doc, "div.talk-speaker__description")),
		SpeakerBio:        ToPortable(firstText(doc, "div.talk-speaker__bio")),
		SpeakerPictureURL: ToPortable(doc.Find("img.thumb__image").First().AttrOr("src", "")),
		PublishDate:       ToPortable(publishDate(doc)),
		ThumbnailURL:      ToPortable(talk.Thumb),
		VideoDownloadURL:  ToPortable(downloadURL),
		LengthMinutes:     int(talk.Duration) / 60,
		Keywords:          keywords(doc),
		Subtitles:         e.subtitles(talk),
		Ratings:           data.Ratings,
	}
	return record, nil
}

// embeddedData locates the embedded script node and parses its JSON payload.
// When several script nodes match the selector, the last one wins; that
// tie-break matches the source site, which places the data object last.
func (e *Extractor) embeddedData(doc *goquery.Document) (*embeddedData, error) {
	nodes := doc.Find("div.talks-main script")
	if nodes.Length() == 0 {
		return nil, errNoEmbeddedData
	}
	payload, err := parseEmbeddedJSON(nodes.Last().Text())
	if err != nil {
		return nil, err
	}
	var data embeddedData
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("decode embedded data: %w", err)
	}
	if len(data.Talks) == 0 {
		return nil, errNoEmbeddedData
	}
	return &data, nil
}

// parseEmbeddedJSON recovers the JSON literal from a script body of the form
// `q("...", {json})`. The grammar is: strip the prefix up to and including
// the first comma, strip the suffix from the last closing parenthesis, and
// parse the remainder. Both delimiters must be present.
func parseEmbeddedJSON(script string) ([]byte, error) {
	comma := strings.Index(script, ",")
	if comma < 0 {
		return nil, errMalformedWrapper
	}
	paren := strings.LastIndex(script, ")")
	if paren < comma {
		return nil, errMalformedWrapper
	}
	payload := strings.TrimSpace(script[comma+1 : paren])
	if payload == "" {
		return nil, errMalformedWrapper
	}
	return []byte(payload), nil
}

// subtitles pairs every declared language with its deterministic caption
// URL. Entries are unique by language code; duplicates in the source list
// are dropped.
func (e *Extractor) subtitles(talk embeddedTalk) []Subtitle {
	seen := make(map[string]bool, len(talk.Languages))
	var subs []Subtitle
	for _, lang := range talk.Languages {
		if lang.LanguageCode == "" || seen[lang.LanguageCode] {
			continue
		}
		seen[lang.LanguageCode] = true
		subs = append(subs, Subtitle{
			LanguageCode: lang.LanguageCode,
			LanguageName: lang.LanguageName,
			SourceURL:    SubtitleURL(e.subtitleBase, string(talk.ID), lang.LanguageCode),
		})
	}
	return subs
}

// firstText returns the trimmed text of the first node matching the
// selector. First match wins for every DOM-selected field.
func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

// publishDate reads the second span of the talk hero metadata block, with
// its bold label stripped.
func publishDate(doc *goquery.Document) string {
	span := doc.Find("div.talk-hero__meta").First().Find("span").Eq(1)
	span.Find("strong").Remove()
	return strings.TrimSpace(span.Text())
}

// keywords splits the comma-separated keyword meta tag.
func keywords(doc *goquery.Document) []string {
	content := doc.Find(`meta[name="keywords"]`).First().AttrOr("content", "")
	if content == "" {
		return nil
	}
	parts := strings.Split(content, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
