// Package authoring drafts new question templates with an LLM and keeps
// only the ones that pass the catalog checks and a trial instantiation.
package authoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathlingo/internal/catalog"
	"github.com/abhisek/mathlingo/internal/llm"
	"github.com/abhisek/mathlingo/internal/logger"
	"github.com/abhisek/mathlingo/internal/problemgen"
)

// MaxCount caps the templates requested in one call.
const MaxCount = 10

// Config tunes the provider request and the trial run.
type Config struct {
	MaxTokens   int
	Temperature float64

	// TrialDraws is how many instances each template must produce without
	// error before it is accepted.
	TrialDraws int
}

// DefaultConfig returns the settings used by the draft command.
func DefaultConfig() Config {
	return Config{MaxTokens: 4096, Temperature: 0.7, TrialDraws: 20}
}

// DraftInput describes what to ask for.
type DraftInput struct {
	ChapterID    string
	ChapterTitle string
	Topic        string
	Difficulty   problemgen.Difficulty
	Count        int

	// ExistingIDs are ids the catalog already uses.
	ExistingIDs []string
}

// Rejection explains why one drafted template was dropped.
type Rejection struct {
	Index      int
	TemplateID string
	Err        error
}

// Result holds accepted templates in response order and the rejects.
type Result struct {
	Templates []*problemgen.Template
	Rejected  []Rejection
}

// Drafter asks a provider for templates and vets them.
type Drafter struct {
	provider llm.Provider
	in       *problemgen.Instantiator
	cfg      Config
	log      *logger.Logger
}

// NewDrafter creates a Drafter. in runs the trial instantiations.
func NewDrafter(provider llm.Provider, in *problemgen.Instantiator, cfg Config, log *logger.Logger) *Drafter {
	if cfg.TrialDraws <= 0 {
		cfg.TrialDraws = DefaultConfig().TrialDraws
	}
	return &Drafter{provider: provider, in: in, cfg: cfg, log: logger.OrNop(log)}
}

// draftOutput mirrors DraftSchema.
type draftOutput struct {
	Templates []draftTemplate `json:"templates"`
}

type draftTemplate struct {
	ID                   string                      `json:"id"`
	Type                 string                      `json:"type"`
	Difficulty           string                      `json:"difficulty"`
	Variables            []problemgen.Variable       `json:"variables"`
	QuestionTemplate     string                      `json:"questionTemplate"`
	RealLifeTemplate     string                      `json:"realLifeTemplate"`
	CorrectAnswerFormula string                      `json:"correctAnswerFormula"`
	AnswersTemplate      []problemgen.AnswerTemplate `json:"answersTemplate"`
	ExplanationTemplate  string                      `json:"explanationTemplate"`
	HintsTemplates       []string                    `json:"hintsTemplates"`
	Tags                 []string                    `json:"tags"`
}

// feedItem converts the all-fields-required shape into a feed item,
// dropping empty optional fields.
func (d draftTemplate) feedItem(chapterID string) map[string]any {
	vars := d.Variables
	if vars == nil {
		vars = []problemgen.Variable{}
	}
	item := map[string]any{
		"id":               d.ID,
		"chapterId":        chapterID,
		"type":             d.Type,
		"difficulty":       d.Difficulty,
		"variables":        vars,
		"questionTemplate": d.QuestionTemplate,
	}
	optional := map[string]string{
		"realLifeTemplate":     d.RealLifeTemplate,
		"correctAnswerFormula": d.CorrectAnswerFormula,
		"explanationTemplate":  d.ExplanationTemplate,
	}
	for k, v := range optional {
		if v != "" {
			item[k] = v
		}
	}
	if len(d.AnswersTemplate) > 0 {
		item["answersTemplate"] = d.AnswersTemplate
	}
	if len(d.HintsTemplates) > 0 {
		item["hintsTemplates"] = d.HintsTemplates
	}
	if len(d.Tags) > 0 {
		item["tags"] = d.Tags
	}
	return item
}

// Draft requests in.Count templates and returns the ones that validate.
// Provider and decoding failures are returned as errors; per-template
// problems are reported in Result.Rejected.
func (d *Drafter) Draft(ctx context.Context, in DraftInput) (*Result, error) {
	if in.ChapterID == "" {
		return nil, errors.New("draft: chapter id is required")
	}
	if in.Count <= 0 {
		in.Count = 1
	}
	in.Count = min(in.Count, MaxCount)
	if in.Difficulty == "" {
		in.Difficulty = problemgen.DifficultyMedium
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeDraft)
	resp, err := d.provider.Generate(ctx, llm.Request{
		System:      systemPrompt,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: buildUserMessage(in)}},
		Schema:      DraftSchema,
		MaxTokens:   d.cfg.MaxTokens,
		Temperature: d.cfg.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate templates: %w", err)
	}

	var out draftOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse draft response: %w", err)
	}

	items := make([]map[string]any, len(out.Templates))
	for i, t := range out.Templates {
		items[i] = t.feedItem(in.ChapterID)
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode draft feed: %w", err)
	}
	decoded, itemErrs, err := catalog.DecodeTemplates(in.ChapterID, data, catalog.FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("decode draft feed: %w", err)
	}

	res := &Result{}
	for _, e := range itemErrs {
		r := Rejection{Index: -1, Err: e}
		var fe *catalog.FeedError
		if errors.As(e, &fe) {
			r.Index, r.TemplateID = fe.Index, fe.ItemID
		}
		res.Rejected = append(res.Rejected, r)
	}

	seen := make(map[string]bool)
	for _, id := range in.ExistingIDs {
		seen[id] = true
	}
	for _, t := range decoded {
		idx := slices.IndexFunc(out.Templates, func(dt draftTemplate) bool { return dt.ID == t.ID })
		if seen[t.ID] {
			res.Rejected = append(res.Rejected, Rejection{Index: idx, TemplateID: t.ID, Err: fmt.Errorf("id %q already in use", t.ID)})
			continue
		}
		if err := d.trial(t); err != nil {
			res.Rejected = append(res.Rejected, Rejection{Index: idx, TemplateID: t.ID, Err: err})
			continue
		}
		seen[t.ID] = true
		res.Templates = append(res.Templates, t)
	}
	slices.SortStableFunc(res.Rejected, func(a, b Rejection) int { return a.Index - b.Index })

	d.log.Info("templates drafted",
		"chapter_id", in.ChapterID,
		"requested", in.Count,
		"returned", len(out.Templates),
		"accepted", len(res.Templates),
		"rejected", len(res.Rejected))
	return res, nil
}

// trial instantiates t repeatedly; any generation failure or formula error
// rejects it.
func (d *Drafter) trial(t *problemgen.Template) error {
	for i := range d.cfg.TrialDraws {
		q, err := d.in.Instantiate(t)
		if err != nil {
			return fmt.Errorf("trial %d: %w", i+1, err)
		}
		if len(q.FormulaErrors) > 0 {
			return fmt.Errorf("trial %d: %w", i+1, errors.Join(q.FormulaErrors...))
		}
	}
	return nil
}

// EncodeYAML renders templates as a YAML feed document ready to be saved
// next to the other chapter feeds.
func EncodeYAML(templates []*problemgen.Template) ([]byte, error) {
	doc := struct {
		Version   string                 `yaml:"version"`
		Templates []*problemgen.Template `yaml:"templates"`
	}{Version: catalog.SupportedMajor + ".0.0", Templates: templates}
	return yaml.Marshal(doc)
}
