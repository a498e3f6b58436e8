package site_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/offlinetalks/talkscraper/internal/catalog"
	"github.com/offlinetalks/talkscraper/internal/site"
)

var categories = []string{"technology", "science"}

func twoTalks() []catalog.Talk {
	return []catalog.Talk{
		{
			ID:          "100",
			Title:       "Only tech",
			Speaker:     "Jane Doe",
			Description: "First talk.",
			SpeakerBio:  "Jane builds things. Full bio",
			PublishDate: "Mar 2014",
			Keywords:    []string{"talks", "technology"},
			Subtitles: []catalog.Subtitle{
				{LanguageCode: "en", LanguageName: "English"},
			},
		},
		{
			ID:          "200",
			Title:       "Science and tech",
			Speaker:     "John Roe",
			Description: "Second talk.",
			Keywords:    []string{"science", "technology"},
			Subtitles: []catalog.Subtitle{
				{LanguageCode: "fr", LanguageName: "French"},
				{LanguageCode: "en", LanguageName: "English"},
			},
		},
	}
}

func newRenderer(t *testing.T) (*site.Renderer, string, string) {
	t.Helper()
	root := t.TempDir()
	htmlDir := filepath.Join(root, "html")
	scraperDir := filepath.Join(root, "scraper")
	renderer, err := site.NewRenderer(htmlDir, scraperDir, categories, zap.NewNop())
	require.NoError(t, err)
	return renderer, htmlDir, scraperDir
}

// Every rendered detail page corresponds to a record carrying the category
// keyword, and every membership pair gets exactly one page.
func TestRenderDetailPages(t *testing.T) {
	renderer, htmlDir, _ := newRenderer(t)
	require.NoError(t, renderer.RenderDetailPages(twoTalks()))

	for _, path := range []string{
		filepath.Join("technology", "100", "index.html"),
		filepath.Join("technology", "200", "index.html"),
		filepath.Join("science", "200", "index.html"),
	} {
		_, err := os.Stat(filepath.Join(htmlDir, path))
		assert.NoError(t, err, path)
	}

	// Talk 100 is not in science.
	_, err := os.Stat(filepath.Join(htmlDir, "science", "100"))
	assert.True(t, os.IsNotExist(err))

	page, err := os.ReadFile(filepath.Join(htmlDir, "technology", "100", "index.html"))
	require.NoError(t, err)
	html := string(page)
	assert.Contains(t, html, "Only tech")
	assert.Contains(t, html, "Jane Doe")
	assert.Contains(t, html, "Mar 2014")
	assert.Contains(t, html, "subs/subs_en.vtt")
	// The bio boilerplate is stripped.
	assert.Contains(t, html, "Jane builds things.")
	assert.NotContains(t, html, "Full bio")
}

func TestRenderCategoryIndexes(t *testing.T) {
	renderer, htmlDir, _ := newRenderer(t)
	require.NoError(t, renderer.RenderCategoryIndexes(twoTalks()))

	tech, err := os.ReadFile(filepath.Join(htmlDir, "technology", "index.html"))
	require.NoError(t, err)
	html := string(tech)
	// Distinct languages across members, sorted by name: English before French.
	english := strings.Index(html, "English")
	french := strings.Index(html, "French")
	require.Positive(t, english)
	require.Positive(t, french)
	assert.Less(t, english, french)
	assert.Equal(t, 1, strings.Count(html, "English"))

	// A category with no members still gets an index page.
	empty, err := site.NewRenderer(htmlDir, "", []string{"design"}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, empty.RenderCategoryIndexes(nil))
	_, err = os.Stat(filepath.Join(htmlDir, "design", "index.html"))
	assert.NoError(t, err)
}

// The end-to-end grouping property: the technology feed references both
// talks, the science feed only the second.
func TestWriteCategoryFeeds(t *testing.T) {
	renderer, htmlDir, _ := newRenderer(t)
	require.NoError(t, renderer.WriteCategoryFeeds(twoTalks()))

	tech, err := os.ReadFile(filepath.Join(htmlDir, "technology", "JS", "data.js"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(tech), "json_data = "))
	assert.Contains(t, string(tech), `"id": "100"`)
	assert.Contains(t, string(tech), `"id": "200"`)

	science, err := os.ReadFile(filepath.Join(htmlDir, "science", "JS", "data.js"))
	require.NoError(t, err)
	assert.NotContains(t, string(science), `"id": "100"`)
	assert.Contains(t, string(science), `"id": "200"`)
	assert.Contains(t, string(science), `"languages"`)
}

func TestCopyStaticAssets(t *testing.T) {
	renderer, htmlDir, scraperDir := newRenderer(t)
	talks := twoTalks()

	// Downloaded raw assets for talk 200 only; talk 100 has none, which is
	// a silent no-op.
	rawDir := filepath.Join(scraperDir, "200")
	require.NoError(t, os.MkdirAll(filepath.Join(rawDir, "subs"), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(rawDir, "thumbnail.jpg"), []byte("thumb"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(rawDir, "speaker.jpg"), []byte("speaker"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(rawDir, "subs", "subs_en.vtt"), []byte("WEBVTT\n"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(rawDir, "subs", ".done"), nil, 0o600))

	require.NoError(t, renderer.RenderDetailPages(talks))
	require.NoError(t, renderer.CopyStaticAssets(talks))

	// Shared assets land in every category.
	for _, category := range categories {
		_, err := os.Stat(filepath.Join(htmlDir, category, "CSS", "styles.css"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(htmlDir, category, "JS", "app.js"))
		assert.NoError(t, err)
		_, err = os.Stat(filepath.Join(htmlDir, category, "JS", "db.js"))
		assert.NoError(t, err)
	}

	// Talk 200 assets mirrored into both of its detail directories.
	for _, category := range categories {
		base := filepath.Join(htmlDir, category, "200")
		data, err := os.ReadFile(filepath.Join(base, "thumbnail.jpg"))
		require.NoError(t, err)
		assert.Equal(t, "thumb", string(data))
		_, err = os.Stat(filepath.Join(base, "subs", "subs_en.vtt"))
		assert.NoError(t, err)
		// The completion sentinel stays out of the rendered tree.
		_, err = os.Stat(filepath.Join(base, "subs", ".done"))
		assert.True(t, os.IsNotExist(err))
	}

	// Talk 100 had nothing downloaded: no copies, no error.
	_, err := os.Stat(filepath.Join(htmlDir, "technology", "100", "thumbnail.jpg"))
	assert.True(t, os.IsNotExist(err))
}

func TestCopyStaticAssetsIdempotent(t *testing.T) {
	renderer, htmlDir, _ := newRenderer(t)
	talks := twoTalks()

	require.NoError(t, renderer.CopyStaticAssets(talks))
	require.NoError(t, renderer.CopyStaticAssets(talks))
	_, err := os.Stat(filepath.Join(htmlDir, "technology", "CSS", "styles.css"))
	assert.NoError(t, err)
}
