package catalog

import (
	"fmt"
	"net/url"
	"strconv"
)

// AbsoluteURL resolves href against base. An already-absolute href is
// returned unchanged.
func AbsoluteURL(base, href string) (string, error) {
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}
	h, err := url.Parse(href)
	if err != nil {
		return "", fmt.Errorf("parse href: %w", err)
	}
	return b.ResolveReference(h).String(), nil
}

// BrowsePageURL builds the listing URL for one page of the catalog by
// setting the page query parameter on the browse URL.
func BrowsePageURL(browseURL string, page int) (string, error) {
	u, err := url.Parse(browseURL)
	if err != nil {
		return "", fmt.Errorf("parse browse url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// SubtitleURL builds the caption-source URL for one talk and language. It is
// a pure function of its inputs; no network call is involved.
func SubtitleURL(subtitleBase, talkID, languageCode string) string {
	return fmt.Sprintf("%s/talks/subtitles/id/%s/lang/%s", subtitleBase, talkID, languageCode)
}
