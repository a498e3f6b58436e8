package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/offlinetalks/talkscraper/internal/metrics"
)

// ErrNoPagination is returned when the browse listing carries no readable
// pagination control, which makes the page count undeterminable.
var ErrNoPagination = errors.New("pagination control not found")

// Crawler walks the paginated browse listing and collects one absolute
// talk-page URL per catalog entry.
type Crawler struct {
	fetcher   DocumentFetcher
	browseURL string
	maxPages  int
	maxTalks  int
	logger    *zap.Logger
}

// DocumentFetcher fetches a URL and parses it into a queryable document.
type DocumentFetcher interface {
	GetDocument(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// NewCrawler builds a Crawler. maxPages and maxTalks bound the crawl; zero
// means unbounded.
func NewCrawler(fetcher DocumentFetcher, browseURL string, maxPages, maxTalks int, logger *zap.Logger) *Crawler {
	return &Crawler{
		fetcher:   fetcher,
		browseURL: browseURL,
		maxPages:  maxPages,
		maxTalks:  maxTalks,
		logger:    logger,
	}
}

// Crawl returns the absolute URL of every talk page reachable from the
// browse listing.
//
// The page count read from the pagination control is exclusive: the crawl
// visits pages 1 through count-1. That is the crawl range contract of the
// source site, whose last pagination item points one past the final listing
// page.
//
// Any page fetch failure aborts the whole crawl. A truncated listing must
// not masquerade as a successful one, because the snapshot built from it
// would silently be incomplete.
func (c *Crawler) Crawl(ctx context.Context) ([]string, error) {
	count, err := c.pageCount(ctx)
	if err != nil {
		return nil, fmt.Errorf("determine page count: %w", err)
	}
	c.logger.Info("Determined listing page count", zap.Int("pages", count))

	last := count
	if c.maxPages > 0 && c.maxPages+1 < last {
		last = c.maxPages + 1
	}

	var talkURLs []string
	for page := 1; page < last; page++ {
		pageURL, err := BrowsePageURL(c.browseURL, page)
		if err != nil {
			return nil, err
		}
		doc, err := c.fetcher.GetDocument(ctx, pageURL)
		if err != nil {
			return nil, fmt.Errorf("crawl page %d: %w", page, err)
		}

		urls, err := c.talkLinks(doc)
		if err != nil {
			return nil, fmt.Errorf("crawl page %d: %w", page, err)
		}
		talkURLs = append(talkURLs, urls...)
		metrics.ObservePageCrawled()
		c.logger.Info("Finished scraping page",
			zap.Int("page", page),
			zap.Int("talks", len(urls)),
		)

		if c.maxTalks > 0 && len(talkURLs) >= c.maxTalks {
			talkURLs = talkURLs[:c.maxTalks]
			c.logger.Info("Reached configured talk bound", zap.Int("max_talks", c.maxTalks))
			break
		}
	}
	return talkURLs, nil
}

// pageCount reads the highest page index from the pagination control group
// at the bottom of the browse root.
func (c *Crawler) pageCount(ctx context.Context) (int, error) {
	doc, err := c.fetcher.GetDocument(ctx, c.browseURL)
	if err != nil {
		return 0, err
	}
	item := doc.Find("div.pagination a.pagination__item").Last()
	if item.Length() == 0 {
		return 0, ErrNoPagination
	}
	text := strings.TrimSpace(item.Text())
	count, err := strconv.Atoi(text)
	if err != nil {
		return 0, fmt.Errorf("parse page count %q: %w", text, err)
	}
	return count, nil
}

// talkLinks extracts one absolute talk-page URL per talk card on a listing
// page.
func (c *Crawler) talkLinks(doc *goquery.Document) ([]string, error) {
	var urls []string
	var linkErr error
	doc.Find("div.row div.media__image a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			return true
		}
		abs, err := AbsoluteURL(c.browseURL, href)
		if err != nil {
			linkErr = err
			return false
		}
		urls = append(urls, abs)
		return true
	})
	if linkErr != nil {
		return nil, linkErr
	}
	return urls, nil
}
