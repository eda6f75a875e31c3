// Package chapters defines the ordered learning path and derives each
// chapter's lock state from a learner's progress.
package chapters

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"

	"github.com/abhisek/mathlingo/internal/progress"
)

var (
	// ErrUnknownChapter is returned for ids that are not on the path.
	ErrUnknownChapter = errors.New("unknown chapter")

	// ErrChapterLocked is returned when a chapter's prerequisites are not
	// completed.
	ErrChapterLocked = errors.New("chapter locked")
)

// Path is an ordered set of chapters. Immutable after construction.
type Path struct {
	ID       string
	Title    string
	chapters []Chapter
	byID     map[string]int
}

// Default returns the built-in five-chapter path.
func Default() *Path {
	p, err := NewPath("path_seconde", "Mathématiques Seconde", linear(slices.Clone(seconde)))
	if err != nil {
		panic(err)
	}
	return p
}

// FromIDs builds a linear path over ids. Known ids keep their built-in
// title and description; others get a generic title.
func FromIDs(ids []string) (*Path, error) {
	chs := make([]Chapter, 0, len(ids))
	for i, id := range ids {
		ch := Chapter{ID: id, Title: id, Order: i + 1, Icon: "📘"}
		for _, known := range seconde {
			if known.ID == id {
				ch = known
				ch.Order = i + 1
			}
		}
		chs = append(chs, ch)
	}
	return NewPath("path_custom", "Parcours", linear(chs))
}

// linear makes each chapter depend on the one before it by Order.
func linear(chs []Chapter) []Chapter {
	sort.SliceStable(chs, func(i, j int) bool { return chs[i].Order < chs[j].Order })
	for i := range chs {
		chs[i].Prerequisites = nil
		if i > 0 {
			chs[i].Prerequisites = []string{chs[i-1].ID}
		}
	}
	return chs
}

// NewPath validates chapters and builds a path ordered by Order.
func NewPath(id, title string, chs []Chapter) (*Path, error) {
	if err := validate(chs); err != nil {
		return nil, err
	}
	sorted := slices.Clone(chs)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })
	p := &Path{ID: id, Title: title, chapters: sorted, byID: make(map[string]int, len(sorted))}
	for i, c := range sorted {
		p.byID[c.ID] = i
	}
	return p, nil
}

// validate checks for duplicate ids, dangling prerequisites and cycles
// (Kahn's algorithm).
func validate(chs []Chapter) error {
	var errs []string
	if len(chs) == 0 {
		return errors.New("chapter path validation failed: no chapters")
	}

	ids := make(map[string]bool, len(chs))
	for _, c := range chs {
		if c.ID == "" {
			errs = append(errs, "chapter with empty id")
		}
		if ids[c.ID] {
			errs = append(errs, fmt.Sprintf("duplicate chapter ID: %q", c.ID))
		}
		ids[c.ID] = true
	}
	for _, c := range chs {
		for _, pre := range c.Prerequisites {
			if !ids[pre] {
				errs = append(errs, fmt.Sprintf("chapter %q references nonexistent prerequisite %q", c.ID, pre))
			}
		}
	}

	inDegree := make(map[string]int, len(chs))
	next := make(map[string][]string)
	for _, c := range chs {
		inDegree[c.ID] = len(c.Prerequisites)
		for _, pre := range c.Prerequisites {
			next[pre] = append(next[pre], c.ID)
		}
	}
	var queue []string
	for _, c := range chs {
		if inDegree[c.ID] == 0 {
			queue = append(queue, c.ID)
		}
	}
	if len(queue) == 0 {
		errs = append(errs, "no root chapter (at least one chapter must have no prerequisites)")
	}
	visited := 0
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range next[id] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if visited < len(chs) {
		var cyc []string
		for _, c := range chs {
			if inDegree[c.ID] > 0 {
				cyc = append(cyc, c.ID)
			}
		}
		errs = append(errs, fmt.Sprintf("cycle detected involving chapters: %s", strings.Join(cyc, ", ")))
	}

	if len(errs) > 0 {
		return fmt.Errorf("chapter path validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// All returns the chapters in order.
func (p *Path) All() []Chapter {
	return slices.Clone(p.chapters)
}

// IDs returns the chapter ids in order.
func (p *Path) IDs() []string {
	ids := make([]string, len(p.chapters))
	for i, c := range p.chapters {
		ids[i] = c.ID
	}
	return ids
}

// First returns the first chapter id.
func (p *Path) First() string {
	return p.chapters[0].ID
}

// Get returns a chapter by id.
func (p *Path) Get(id string) (Chapter, error) {
	i, ok := p.byID[id]
	if !ok {
		return Chapter{}, fmt.Errorf("%w: %q", ErrUnknownChapter, id)
	}
	return p.chapters[i], nil
}

// Next returns the chapter after id, if any.
func (p *Path) Next(id string) (Chapter, bool) {
	i, ok := p.byID[id]
	if !ok || i+1 >= len(p.chapters) {
		return Chapter{}, false
	}
	return p.chapters[i+1], true
}

// IsUnlocked reports whether every prerequisite of id is completed.
func (p *Path) IsUnlocked(id string, completed []string) bool {
	i, ok := p.byID[id]
	if !ok {
		return false
	}
	for _, pre := range p.chapters[i].Prerequisites {
		if !slices.Contains(completed, pre) {
			return false
		}
	}
	return true
}

// CheckAccess returns ErrUnknownChapter or ErrChapterLocked when the learner
// may not practice id.
func (p *Path) CheckAccess(id string, up *progress.UserProgress) error {
	if _, err := p.Get(id); err != nil {
		return err
	}
	if !p.IsUnlocked(id, up.CompletedChapters) {
		return fmt.Errorf("%w: %q", ErrChapterLocked, id)
	}
	return nil
}

// Status derives every chapter's state from up. size reports how many
// distinct questions a chapter holds.
func (p *Path) Status(up *progress.UserProgress, size func(chapterID string) int) []Status {
	out := make([]Status, 0, len(p.chapters))
	for _, c := range p.chapters {
		st := Status{
			Chapter:   c,
			Unlocked:  p.IsUnlocked(c.ID, up.CompletedChapters),
			Completed: up.IsChapterCompleted(c.ID),
		}
		if size != nil {
			st.TotalQuestions = size(c.ID)
		}
		if cp := up.Chapter(c.ID); cp != nil {
			st.CompletedQuestions = len(cp.CompletedQuestions)
			st.Score = cp.Score
		}
		if st.TotalQuestions > 0 {
			pct := math.Round(100 * float64(st.CompletedQuestions) / float64(st.TotalQuestions))
			st.CompletionPercentage = int(min(pct, 100))
		}
		switch {
		case st.Completed:
			st.State = StateCompleted
		case !st.Unlocked:
			st.State = StateLocked
		case st.CompletedQuestions > 0:
			st.State = StateInProgress
		default:
			st.State = StateAvailable
		}
		st.StateLabel = st.State.Label()
		out = append(out, st)
	}
	return out
}
