// Package catalog loads question templates and static questions per
// chapter and serves them behind a readiness gate.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/mathlingo/internal/logger"
	"github.com/abhisek/mathlingo/internal/problemgen"
)

var (
	// ErrNotReady is returned by accessors before loading has finished.
	ErrNotReady = errors.New("catalog not ready")

	// ErrNotFound is returned for unknown template or question ids.
	ErrNotFound = errors.New("not found")
)

// loadConcurrency bounds how many chapters load at once.
const loadConcurrency = 4

// Content is a set of templates and static questions.
type Content struct {
	Templates []*problemgen.Template
	Questions []*problemgen.Question
}

// Catalog is the immutable content of all chapters once Ready is closed.
type Catalog struct {
	ready chan struct{}

	// Written once before ready is closed, read-only afterwards.
	chapters     []string
	templates    map[string][]*problemgen.Template
	templateByID map[string]*problemgen.Template
	questions    map[string][]*problemgen.Question
	questionByID map[string]*problemgen.Question
	fallback     bool
	loadErrs     []error
}

func newCatalog() *Catalog {
	return &Catalog{
		ready:        make(chan struct{}),
		templates:    make(map[string][]*problemgen.Template),
		templateByID: make(map[string]*problemgen.Template),
		questions:    make(map[string][]*problemgen.Question),
		questionByID: make(map[string]*problemgen.Question),
	}
}

// New returns a catalog that is ready immediately with the given content.
func New(content Content) *Catalog {
	c := newCatalog()
	c.install(nil, content)
	close(c.ready)
	return c
}

// Load starts loading every chapter from src in the background and returns
// at once. Chapters that fail are logged and skipped. When no chapter
// yields any content the built-in fallback set is installed.
func Load(ctx context.Context, src Source, chapterIDs []string, log *logger.Logger) *Catalog {
	log = logger.OrNop(log)
	c := newCatalog()
	go func() {
		defer close(c.ready)
		c.load(ctx, src, chapterIDs, log)
	}()
	return c
}

type chapterResult struct {
	content Content
	errs    []error
}

func (c *Catalog) load(ctx context.Context, src Source, chapterIDs []string, log *logger.Logger) {
	results := make([]chapterResult, len(chapterIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(loadConcurrency)
	for i, id := range chapterIDs {
		g.Go(func() error {
			results[i] = loadChapter(gctx, src, id)
			return nil
		})
	}
	_ = g.Wait()

	var merged Content
	for i, r := range results {
		for _, err := range r.errs {
			log.Warn("catalog load problem", "chapter_id", chapterIDs[i], "error", err)
		}
		c.loadErrs = append(c.loadErrs, r.errs...)
		merged.Templates = append(merged.Templates, r.content.Templates...)
		merged.Questions = append(merged.Questions, r.content.Questions...)
	}

	if len(merged.Templates)+len(merged.Questions) == 0 {
		log.Warn("no chapter content loaded, using built-in fallback set", "chapters", len(chapterIDs))
		c.fallback = true
		c.install(nil, Fallback())
		return
	}
	dupes := c.install(chapterIDs, merged)
	for _, id := range dupes {
		log.Warn("duplicate id skipped", "id", id)
	}
	log.Info("catalog loaded",
		"chapters", len(c.chapters),
		"templates", len(c.templateByID),
		"questions", len(c.questionByID))
}

func loadChapter(ctx context.Context, src Source, chapterID string) chapterResult {
	var r chapterResult
	missing := 0

	data, format, err := src.Open(ctx, chapterID, KindTemplates)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		missing++
	case err != nil:
		r.errs = append(r.errs, &FeedError{ChapterID: chapterID, Kind: KindTemplates, Index: -1, Err: err})
	default:
		ts, itemErrs, err := DecodeTemplates(chapterID, data, format)
		if err != nil {
			r.errs = append(r.errs, err)
		}
		r.errs = append(r.errs, itemErrs...)
		r.content.Templates = ts
	}

	data, format, err = src.Open(ctx, chapterID, KindQuestions)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		missing++
	case err != nil:
		r.errs = append(r.errs, &FeedError{ChapterID: chapterID, Kind: KindQuestions, Index: -1, Err: err})
	default:
		qs, itemErrs, err := DecodeQuestions(chapterID, data, format)
		if err != nil {
			r.errs = append(r.errs, err)
		}
		r.errs = append(r.errs, itemErrs...)
		r.content.Questions = qs
	}

	if missing == 2 {
		r.errs = append(r.errs, fmt.Errorf("chapter %s: no feeds found", chapterID))
	}
	return r
}

// install indexes content. order fixes the chapter order; chapters not in
// order are appended as first seen. It returns ids that were dropped as
// duplicates.
func (c *Catalog) install(order []string, content Content) []string {
	var dupes []string
	addChapter := func(id string) {
		if !slices.Contains(c.chapters, id) {
			c.chapters = append(c.chapters, id)
		}
	}
	for _, t := range content.Templates {
		if _, ok := c.templateByID[t.ID]; ok {
			dupes = append(dupes, t.ID)
			continue
		}
		c.templateByID[t.ID] = t
		c.templates[t.ChapterID] = append(c.templates[t.ChapterID], t)
	}
	for _, q := range content.Questions {
		if _, ok := c.questionByID[q.ID]; ok {
			dupes = append(dupes, q.ID)
			continue
		}
		if _, ok := c.templateByID[q.ID]; ok {
			dupes = append(dupes, q.ID)
			continue
		}
		c.questionByID[q.ID] = q
		c.questions[q.ChapterID] = append(c.questions[q.ChapterID], q)
	}

	for _, id := range order {
		if len(c.templates[id])+len(c.questions[id]) > 0 {
			addChapter(id)
		}
	}
	for _, t := range content.Templates {
		addChapter(t.ChapterID)
	}
	for _, q := range content.Questions {
		addChapter(q.ChapterID)
	}
	return dupes
}

// Ready is closed once loading has finished.
func (c *Catalog) Ready() <-chan struct{} { return c.ready }

// Wait blocks until the catalog is ready or ctx is done.
func (c *Catalog) Wait(ctx context.Context) error {
	select {
	case <-c.ready:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for catalog: %w", ctx.Err())
	}
}

func (c *Catalog) isReady() bool {
	select {
	case <-c.ready:
		return true
	default:
		return false
	}
}

// Templates returns the templates of a chapter in feed order.
func (c *Catalog) Templates(chapterID string) ([]*problemgen.Template, error) {
	if !c.isReady() {
		return nil, ErrNotReady
	}
	return slices.Clone(c.templates[chapterID]), nil
}

// Template returns one template by id.
func (c *Catalog) Template(id string) (*problemgen.Template, error) {
	if !c.isReady() {
		return nil, ErrNotReady
	}
	t, ok := c.templateByID[id]
	if !ok {
		return nil, fmt.Errorf("template %s: %w", id, ErrNotFound)
	}
	return t, nil
}

// Questions returns copies of the static questions of a chapter.
func (c *Catalog) Questions(chapterID string) ([]*problemgen.Question, error) {
	if !c.isReady() {
		return nil, ErrNotReady
	}
	src := c.questions[chapterID]
	out := make([]*problemgen.Question, len(src))
	for i, q := range src {
		out[i] = q.Clone()
	}
	return out, nil
}

// Question returns a copy of one static question by id.
func (c *Catalog) Question(id string) (*problemgen.Question, error) {
	if !c.isReady() {
		return nil, ErrNotReady
	}
	q, ok := c.questionByID[id]
	if !ok {
		return nil, fmt.Errorf("question %s: %w", id, ErrNotFound)
	}
	return q.Clone(), nil
}

// Chapters returns the ids of chapters with content, configured chapters
// first.
func (c *Catalog) Chapters() ([]string, error) {
	if !c.isReady() {
		return nil, ErrNotReady
	}
	return slices.Clone(c.chapters), nil
}

// Size returns the number of distinct question ids in a chapter.
func (c *Catalog) Size(chapterID string) (int, error) {
	if !c.isReady() {
		return 0, ErrNotReady
	}
	return len(c.templates[chapterID]) + len(c.questions[chapterID]), nil
}

// UsingFallback reports whether the built-in set replaced the feeds.
func (c *Catalog) UsingFallback() (bool, error) {
	if !c.isReady() {
		return false, ErrNotReady
	}
	return c.fallback, nil
}

// LoadErrors returns the problems met while loading.
func (c *Catalog) LoadErrors() ([]error, error) {
	if !c.isReady() {
		return nil, ErrNotReady
	}
	return slices.Clone(c.loadErrs), nil
}
