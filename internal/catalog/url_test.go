package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/offlinetalks/talkscraper/internal/catalog"
)

func TestAbsoluteURL(t *testing.T) {
	t.Run("RelativeHref", func(t *testing.T) {
		abs, err := catalog.AbsoluteURL("http://new.ted.com/talks/browse", "/talks/jane_doe_how_to_scrape")
		require.NoError(t, err)
		assert.Equal(t, "http://new.ted.com/talks/jane_doe_how_to_scrape", abs)
	})

	t.Run("AlreadyAbsolute", func(t *testing.T) {
		abs, err := catalog.AbsoluteURL("http://new.ted.com/talks/browse", "http://other.example/talk")
		require.NoError(t, err)
		assert.Equal(t, "http://other.example/talk", abs)
	})

	t.Run("BadBase", func(t *testing.T) {
		_, err := catalog.AbsoluteURL("://bad", "/talk")
		assert.Error(t, err)
	})
}

func TestBrowsePageURL(t *testing.T) {
	u, err := catalog.BrowsePageURL("http://new.ted.com/talks/browse", 7)
	require.NoError(t, err)
	assert.Equal(t, "http://new.ted.com/talks/browse?page=7", u)
}

func TestSubtitleURL(t *testing.T) {
	u := catalog.SubtitleURL("http://www.ted.com", "1907", "en")
	assert.Equal(t, "http://www.ted.com/talks/subtitles/id/1907/lang/en", u)
}

func TestCategories(t *testing.T) {
	talk := catalog.Talk{Keywords: []string{"talks", "science", "technology"}}
	categories := []string{"technology", "entertainment", "science"}

	assert.Equal(t, []string{"technology", "science"}, talk.Categories(categories))
	assert.Empty(t, catalog.Talk{Keywords: []string{"talks"}}.Categories(categories))
}
