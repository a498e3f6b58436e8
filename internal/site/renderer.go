// Package site renders the categorized static site from a loaded metadata
// snapshot: per-talk detail pages, per-category index pages, per-category
// JSON feeds, and the copied static assets.
package site

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/offlinetalks/talkscraper/internal/catalog"
	"github.com/offlinetalks/talkscraper/internal/metrics"
)

//go:embed templates
var templateFS embed.FS

// bioBoilerplate is appended to every speaker bio by the source site and is
// stripped before rendering.
const bioBoilerplate = "Full bio"

// feedPrefix is the variable assignment wrapping the per-category JSON feed
// consumed by the client-side scripts.
const feedPrefix = "json_data = "

// Language is one distinct subtitle language available in a category.
type Language struct {
	Code string
	Name string
}

// Renderer writes the static site tree for one build directory.
type Renderer struct {
	htmlDir    string
	scraperDir string
	categories []string
	detail     *template.Template
	index      *template.Template
	logger     *zap.Logger
}

// NewRenderer parses the embedded templates and returns a Renderer.
func NewRenderer(htmlDir, scraperDir string, categories []string, logger *zap.Logger) (*Renderer, error) {
	detail, err := template.ParseFS(templateFS, "templates/video.html")
	if err != nil {
		return nil, fmt.Errorf("parse detail template: %w", err)
	}
	index, err := template.ParseFS(templateFS, "templates/welcome.html")
	if err != nil {
		return nil, fmt.Errorf("parse index template: %w", err)
	}
	return &Renderer{
		htmlDir:    htmlDir,
		scraperDir: scraperDir,
		categories: categories,
		detail:     detail,
		index:      index,
		logger:     logger,
	}, nil
}

// detailContext is the data handed to the detail template.
type detailContext struct {
	Title       string
	Speaker     string
	Description string
	Languages   []catalog.Subtitle
	SpeakerBio  string
	Date        string
	Profession  string
}

// RenderDetailPages renders one detail page per (talk, category) membership
// pair. A talk in several categories gets one page under each.
func (r *Renderer) RenderDetailPages(talks []catalog.Talk) error {
	pages := 0
	for _, talk := range talks {
		for _, category := range talk.Categories(r.categories) {
			dir := filepath.Join(r.htmlDir, category, talk.ID)
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("create detail dir %s: %w", dir, err)
			}
			ctx := detailContext{
				Title:       talk.Title,
				Speaker:     talk.Speaker,
				Description: talk.Description,
				Languages:   talk.Subtitles,
				SpeakerBio:  strings.ReplaceAll(talk.SpeakerBio, bioBoilerplate, ""),
				Date:        talk.PublishDate,
				Profession:  talk.SpeakerProfession,
			}
			if err := r.renderToFile(r.detail, filepath.Join(dir, "index.html"), ctx); err != nil {
				return err
			}
			metrics.ObservePageRendered("detail")
			pages++
		}
	}
	r.logger.Info("Detail pages rendered",
		zap.Int("talks", len(talks)),
		zap.Int("pages", pages),
	)
	return nil
}

// indexContext is the data handed to the category index template.
type indexContext struct {
	Category  string
	Languages []Language
}

// RenderCategoryIndexes renders one index page per configured category,
// including categories with no member talks.
func (r *Renderer) RenderCategoryIndexes(talks []catalog.Talk) error {
	for _, category := range r.categories {
		dir := filepath.Join(r.htmlDir, category)
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create category dir %s: %w", dir, err)
		}
		ctx := indexContext{
			Category:  category,
			Languages: categoryLanguages(talks, category, r.categories),
		}
		if err := r.renderToFile(r.index, filepath.Join(dir, "index.html"), ctx); err != nil {
			return err
		}
		metrics.ObservePageRendered("index")
	}
	return nil
}

// categoryLanguages collects the distinct subtitle languages across a
// category's member talks, sorted by language name.
func categoryLanguages(talks []catalog.Talk, category string, categories []string) []Language {
	seen := make(map[Language]bool)
	for _, talk := range talks {
		if !talk.HasKeyword(category) {
			continue
		}
		for _, sub := range talk.Subtitles {
			seen[Language{Code: sub.LanguageCode, Name: sub.LanguageName}] = true
		}
	}
	languages := make([]Language, 0, len(seen))
	for lang := range seen {
		languages = append(languages, lang)
	}
	sort.Slice(languages, func(i, j int) bool { return languages[i].Name < languages[j].Name })
	return languages
}

// feedEntry is one talk in the per-category data.js feed.
type feedEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Speaker     string   `json:"speaker"`
	Languages   []string `json:"languages"`
}

// WriteCategoryFeeds emits every category's JS/data.js feed: the category's
// talks as a JSON array behind a fixed variable assignment.
func (r *Renderer) WriteCategoryFeeds(talks []catalog.Talk) error {
	for _, category := range r.categories {
		entries := make([]feedEntry, 0)
		for _, talk := range talks {
			if !talk.HasKeyword(category) {
				continue
			}
			codes := make([]string, 0, len(talk.Subtitles))
			for _, sub := range talk.Subtitles {
				codes = append(codes, sub.LanguageCode)
			}
			entries = append(entries, feedEntry{
				ID:          talk.ID,
				Title:       talk.Title,
				Description: talk.Description,
				Speaker:     talk.Speaker,
				Languages:   codes,
			})
		}

		jsDir := filepath.Join(r.htmlDir, category, "JS")
		if err := os.MkdirAll(jsDir, 0o750); err != nil {
			return fmt.Errorf("create feed dir %s: %w", jsDir, err)
		}
		payload, err := json.MarshalIndent(entries, "", "    ")
		if err != nil {
			return fmt.Errorf("marshal feed for %s: %w", category, err)
		}
		feedPath := filepath.Join(jsDir, "data.js")
		if err := os.WriteFile(feedPath, []byte(feedPrefix+string(payload)), 0o600); err != nil {
			return fmt.Errorf("write feed %s: %w", feedPath, err)
		}
	}
	return nil
}

// CopyStaticAssets mirrors the shared CSS/JS directories into every
// category directory and each talk's downloaded thumbnail, speaker image,
// and subtitle tree into its rendered detail directories. Sources that do
// not exist are silently skipped.
func (r *Renderer) CopyStaticAssets(talks []catalog.Talk) error {
	for _, category := range r.categories {
		for _, shared := range []string{"CSS", "JS"} {
			src := "templates/" + shared
			dest := filepath.Join(r.htmlDir, category, shared)
			if err := r.copyEmbeddedTree(src, dest); err != nil {
				return err
			}
		}
	}

	for _, talk := range talks {
		rawDir := filepath.Join(r.scraperDir, talk.ID)
		for _, category := range talk.Categories(r.categories) {
			detailDir := filepath.Join(r.htmlDir, category, talk.ID)
			for _, name := range []string{"thumbnail.jpg", "speaker.jpg"} {
				if err := copyFileIfExists(filepath.Join(rawDir, name), filepath.Join(detailDir, name)); err != nil {
					return err
				}
			}
			if err := copyTreeIfExists(filepath.Join(rawDir, "subs"), filepath.Join(detailDir, "subs")); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Renderer) renderToFile(tmpl *template.Template, path string, ctx any) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("create page %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read side unaffected
	if err := tmpl.Execute(f, ctx); err != nil {
		return fmt.Errorf("render %s: %w", path, err)
	}
	return nil
}

// copyEmbeddedTree materializes one embedded directory on disk.
func (r *Renderer) copyEmbeddedTree(src, dest string) error {
	return fs.WalkDir(templateFS, src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(src, path)
		if relErr != nil {
			return relErr
		}
		target := filepath.Join(dest, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o750)
		}
		data, readErr := templateFS.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		return os.WriteFile(target, data, 0o600)
	})
}

func copyFileIfExists(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", src, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o750); err != nil {
		return fmt.Errorf("create dir for %s: %w", dest, err)
	}
	if err := os.WriteFile(dest, data, 0o600); err != nil {
		return fmt.Errorf("copy to %s: %w", dest, err)
	}
	return nil
}

// copyTreeIfExists mirrors a directory, skipping dotfiles such as the
// subtitle completion sentinel.
func copyTreeIfExists(src, dest string) error {
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", src, err)
	}
	if !info.IsDir() {
		return nil
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", src, err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		from := filepath.Join(src, entry.Name())
		to := filepath.Join(dest, entry.Name())
		if entry.IsDir() {
			if err := copyTreeIfExists(from, to); err != nil {
				return err
			}
			continue
		}
		if err := copyFileIfExists(from, to); err != nil {
			return err
		}
	}
	return nil
}
