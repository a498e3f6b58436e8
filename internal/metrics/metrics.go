// Package metrics exposes Prometheus collectors for the scraper pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	pagesCrawledTotal   prometheus.Counter
	talksExtractedTotal prometheus.Counter
	talksSkippedTotal   prometheus.Counter
	assetsTotal         *prometheus.CounterVec
	subtitlesTotal      *prometheus.CounterVec
	encodesTotal        *prometheus.CounterVec
	pagesRenderedTotal  *prometheus.CounterVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		pagesCrawledTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_pages_crawled_total",
				Help: "Total number of listing pages crawled.",
			},
		)

		talksExtractedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_talks_extracted_total",
				Help: "Total number of talk records extracted into the snapshot.",
			},
		)

		talksSkippedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "scraper_talks_skipped_total",
				Help: "Total number of talk pages skipped for missing mandatory fields.",
			},
		)

		assetsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_assets_total",
				Help: "Total asset acquisitions, labeled by kind and outcome.",
			},
			[]string{"kind", "outcome"},
		)

		subtitlesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_subtitles_total",
				Help: "Total subtitle tracks processed, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		encodesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_encodes_total",
				Help: "Total video encode attempts, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		pagesRenderedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scraper_pages_rendered_total",
				Help: "Total static pages rendered, labeled by kind.",
			},
			[]string{"kind"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePageCrawled increments the crawled listing page counter.
func ObservePageCrawled() {
	if pagesCrawledTotal != nil {
		pagesCrawledTotal.Inc()
	}
}

// ObserveTalkExtracted increments the extracted talk counter.
func ObserveTalkExtracted() {
	if talksExtractedTotal != nil {
		talksExtractedTotal.Inc()
	}
}

// ObserveTalkSkipped increments the skipped talk counter.
func ObserveTalkSkipped() {
	if talksSkippedTotal != nil {
		talksSkippedTotal.Inc()
	}
}

// ObserveAsset records one asset acquisition outcome. Kind is one of video,
// speaker, thumbnail; outcome is downloaded or skipped.
func ObserveAsset(kind, outcome string) {
	if assetsTotal != nil {
		assetsTotal.WithLabelValues(kind, outcome).Inc()
	}
}

// ObserveSubtitle records one subtitle track outcome (written or skipped).
func ObserveSubtitle(outcome string) {
	if subtitlesTotal != nil {
		subtitlesTotal.WithLabelValues(outcome).Inc()
	}
}

// ObserveEncode records one encode attempt outcome (succeeded, failed, or
// skipped).
func ObserveEncode(outcome string) {
	if encodesTotal != nil {
		encodesTotal.WithLabelValues(outcome).Inc()
	}
}

// ObservePageRendered records one rendered page, by kind (detail or index).
func ObservePageRendered(kind string) {
	if pagesRenderedTotal != nil {
		pagesRenderedTotal.WithLabelValues(kind).Inc()
	}
}
