package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// TestObserveBeforeInit ensures the helpers are safe no-ops before Init.
func TestObserveBeforeInit(t *testing.T) {
	ObserveAsset("video", "downloaded")
	ObserveSubtitle("written")
	ObserveEncode("succeeded")
	ObservePageRendered("detail")
}

func TestInitAndObserve(t *testing.T) {
	Init()
	Init() // second call must be a no-op

	ObservePageCrawled()
	ObserveTalkExtracted()
	ObserveTalkSkipped()
	ObserveAsset("thumbnail", "skipped")
	ObserveSubtitle("written")
	ObserveEncode("failed")
	ObservePageRendered("index")

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "scraper_pages_crawled_total")
	assert.Contains(t, body, "scraper_assets_total")
}

func TestServe(t *testing.T) {
	srv := Serve("127.0.0.1:0", zap.NewNop())
	require.NotNil(t, srv)
	require.NoError(t, srv.Close())
}
