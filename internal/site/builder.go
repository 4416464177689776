package site

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stitchdocs/sitegen/internal/config"
	"github.com/stitchdocs/sitegen/internal/content"
	"github.com/stitchdocs/sitegen/internal/errs"
	"github.com/stitchdocs/sitegen/internal/locale"
	"github.com/stitchdocs/sitegen/internal/metrics"
	"github.com/stitchdocs/sitegen/internal/render"
	"github.com/stitchdocs/sitegen/internal/state"
)

// Builder runs one batch build pass: ingest, assemble, render, write.
type Builder struct {
	cfg      *config.Config
	out      string
	locales  map[string]struct{} // nil means all locales
	full     bool
	recorder metrics.Recorder
}

// Option configures a Builder.
type Option func(*Builder)

// WithLocales restricts the build to the given locales.
func WithLocales(locales []string) Option {
	return func(b *Builder) {
		if len(locales) == 0 {
			return
		}
		b.locales = make(map[string]struct{}, len(locales))
		for _, loc := range locales {
			b.locales[loc] = struct{}{}
		}
	}
}

// WithFullRebuild bypasses the incremental render cache.
func WithFullRebuild(full bool) Option {
	return func(b *Builder) { b.full = full }
}

// WithRecorder injects a metrics recorder.
func WithRecorder(rec metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = rec }
}

// NewBuilder creates a builder writing into out.
func NewBuilder(cfg *config.Config, out string, opts ...Option) *Builder {
	b := &Builder{cfg: cfg, out: out, recorder: metrics.NoopRecorder{}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes the build and returns the aggregate report.
//
// Per-document problems (malformed metadata, broken links) are collected
// into the report and the build continues; duplicate permalinks abort the
// build because routing would be ambiguous. The returned error is non-nil
// only for aborts, not for partial failure — callers decide the exit code
// from the report outcome.
func (b *Builder) Run(ctx context.Context) (*Report, error) {
	report := NewReport()

	if b.cfg.Output.Clean {
		if err := os.RemoveAll(b.out); err != nil {
			return report, errs.Wrap(errs.KindIO, b.out, "clean output directory", err)
		}
	}
	if err := os.MkdirAll(b.out, 0o755); err != nil {
		return report, errs.Wrap(errs.KindIO, b.out, "create output directory", err)
	}

	// Ingest.
	stageStart := time.Now()
	store, issues := content.Load(b.cfg.Content.Dir, b.cfg.Site.DefaultLocale)
	for _, issue := range issues {
		report.AddIssue(issue)
	}
	report.AddStage("ingest", time.Since(stageStart))
	report.Locales = store.Locales()

	// Git metadata enrichment, best effort.
	stageStart = time.Now()
	content.EnrichLastModified(store)
	report.AddStage("git_metadata", time.Since(stageStart))

	// Assemble. Duplicate permalinks are fatal.
	stageStart = time.Now()
	resolver, dups := locale.NewResolver(store)
	if len(dups) > 0 {
		for _, dup := range dups {
			report.AddIssue(dup)
		}
		report.Finish()
		b.recorder.BuildCompleted(string(report.Outcome), report.Duration())
		return report, dups[0]
	}
	assembled := Assemble(store, resolver)
	report.AddStage("assemble", time.Since(stageStart))

	cache := b.openCache()
	if cache != nil {
		defer func() { _ = cache.Close() }()
	}

	renderer := render.NewRenderer(resolver, b.cfg.Content.AssetsBase, b.cfg.Site.Title)

	// Render documents concurrently; no document depends on another's
	// rendering, so only the counters need synchronization.
	stageStart = time.Now()
	var rendered, skipped atomic.Int64
	var wg sync.WaitGroup
	sem := make(chan struct{}, runtime.GOMAXPROCS(0))

	docs := b.filterDocs(store.Documents())
	report.Documents = len(docs)

	for _, doc := range docs {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(doc *content.Document) {
			defer wg.Done()
			defer func() { <-sem }()

			if b.renderDoc(doc, renderer, cache, report, &skipped) {
				rendered.Add(1)
				b.recorder.PageRendered()
			}
		}(doc)
	}
	wg.Wait()
	report.AddStage("render", time.Since(stageStart))
	report.Rendered = int(rendered.Load())
	report.Skipped = int(skipped.Load())

	if err := ctx.Err(); err != nil {
		report.Finish()
		return report, err
	}

	// Collection index pages.
	stageStart = time.Now()
	for _, idx := range assembled.Indexes {
		if !b.includeLocale(idx.Locale) {
			continue
		}
		if err := b.writeIndex(renderer, store.DefaultLocale(), idx); err != nil {
			report.AddIssue(errs.Wrap(errs.KindIO, idx.Locale, "write index page", err))
			continue
		}
		report.IndexPages++
	}
	report.AddStage("indexes", time.Since(stageStart))

	// Static assets.
	stageStart = time.Now()
	if err := b.copyAssets(); err != nil {
		report.AddIssue(errs.Wrap(errs.KindIO, b.cfg.Content.Dir, "copy static assets", err))
	}
	report.AddStage("assets", time.Since(stageStart))

	if cache != nil {
		live := make(map[string]struct{}, len(store.Documents()))
		for _, doc := range store.Documents() {
			live[doc.Source] = struct{}{}
		}
		if err := cache.Prune(live); err != nil {
			slog.Warn("prune render cache", "error", err)
		}
	}

	report.Finish()
	b.recorder.BuildCompleted(string(report.Outcome), report.Duration())

	if err := report.Persist(b.out); err != nil {
		slog.Warn("persist build report", "error", err)
	}

	slog.Info("build finished", "build_id", report.BuildID, "summary", report.Summary())
	return report, nil
}

// renderDoc renders and writes one document, honoring the incremental cache.
// Returns true when the page was (re)rendered.
func (b *Builder) renderDoc(doc *content.Document, renderer *render.Renderer, cache *state.Cache, report *Report, skipped *atomic.Int64) bool {
	outPath := outputPath(b.out, doc.Permalink)

	if cache != nil && !b.full {
		fp := doc.Fingerprint()
		cached, ok, err := cache.Fingerprint(doc.Source)
		if err == nil && ok && cached == fp {
			if _, statErr := os.Stat(outPath); statErr == nil {
				skipped.Add(1)
				b.recorder.PageSkipped()
				return false
			}
		}
	}

	result, err := renderer.Render(doc)
	if err != nil {
		if ce, ok := err.(*errs.Error); ok {
			report.AddIssue(ce)
		} else {
			report.AddIssue(errs.Wrap(errs.KindIO, doc.Source, "render document", err))
		}
		return false
	}
	for _, warning := range result.Warnings {
		report.AddIssue(warning)
		b.recorder.BrokenLink()
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		report.AddIssue(errs.Wrap(errs.KindIO, doc.Source, "create page directory", err))
		return false
	}
	if err := os.WriteFile(outPath, result.HTML, 0o644); err != nil {
		report.AddIssue(errs.Wrap(errs.KindIO, doc.Source, "write page", err))
		return false
	}

	if cache != nil {
		if err := cache.Put(doc.Source, doc.Fingerprint()); err != nil {
			slog.Warn("update render cache", "source", doc.Source, "error", err)
		}
	}
	return true
}

func (b *Builder) openCache() *state.Cache {
	if b.cfg.Output.CacheFile == "" {
		return nil
	}
	cache, err := state.Open(b.cfg.Output.CacheFile)
	if err != nil {
		// A broken cache degrades to a full rebuild, never a failed build.
		slog.Warn("open render cache, continuing without incremental builds", "error", err)
		return nil
	}
	return cache
}

func (b *Builder) filterDocs(docs []*content.Document) []*content.Document {
	if b.locales == nil {
		return docs
	}
	out := make([]*content.Document, 0, len(docs))
	for _, doc := range docs {
		if b.includeLocale(doc.Locale) {
			out = append(out, doc)
		}
	}
	return out
}

func (b *Builder) includeLocale(loc string) bool {
	if b.locales == nil {
		return true
	}
	_, ok := b.locales[loc]
	return ok
}

var indexTitles = map[content.Kind]string{
	content.KindDoc:  "Documentation",
	content.KindPost: "Posts",
}

func (b *Builder) writeIndex(renderer *render.Renderer, defaultLocale string, idx *Index) error {
	entries := make([]render.IndexEntry, 0, len(idx.Docs))
	for _, doc := range idx.Docs {
		entry := render.IndexEntry{Title: doc.Title, Permalink: doc.Permalink, Excerpt: doc.Excerpt}
		if doc.HasDate {
			entry.Date = doc.Date
		}
		entries = append(entries, entry)
	}

	html, err := renderer.RenderIndex(indexTitles[idx.Kind], idx.Locale, entries)
	if err != nil {
		return err
	}

	outPath := outputPath(b.out, indexPermalink(idx.Locale, defaultLocale, idx.Kind))
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outPath, html, 0o644)
}

// indexPermalink places collection indexes at /docs/ and /posts/, prefixed
// with the locale code for non-default locales, matching the permalink
// convention of localized documents.
func indexPermalink(loc, defaultLocale string, kind content.Kind) string {
	segment := "docs"
	if kind == content.KindPost {
		segment = "posts"
	}
	if loc == defaultLocale {
		return "/" + segment + "/"
	}
	return "/" + loc + "/" + segment + "/"
}

// outputPath maps a permalink onto a file path in the output tree.
func outputPath(out, permalink string) string {
	p := path.Clean("/" + permalink)
	if strings.HasSuffix(permalink, "/") || path.Ext(p) == "" {
		p = path.Join(p, "index.html")
	}
	return filepath.Join(out, filepath.FromSlash(strings.TrimPrefix(p, "/")))
}

// copyAssets mirrors every non-markdown file in the content tree into the
// asset root of the output, preserving relative paths.
func (b *Builder) copyAssets() error {
	assetRoot := filepath.Join(b.out, filepath.FromSlash(strings.TrimPrefix(b.cfg.Content.AssetsBase, "/")))

	return filepath.WalkDir(b.cfg.Content.Dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != b.cfg.Content.Dir {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		rel, err := filepath.Rel(b.cfg.Content.Dir, p)
		if err != nil {
			return err
		}
		dst := filepath.Join(assetRoot, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, data, 0o644)
	})
}
