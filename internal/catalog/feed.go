package catalog

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathlingo/internal/problemgen"
)

// SupportedMajor is the feed format major version this build reads.
const SupportedMajor = "v1"

//go:embed schemas/*.json
var schemaFS embed.FS

// FeedError describes a feed, or one item of it, that could not be used.
// Index is -1 when the whole document is at fault.
type FeedError struct {
	ChapterID string
	Kind      Kind
	Index     int
	ItemID    string
	Err       error
}

func (e *FeedError) Error() string {
	where := fmt.Sprintf("%s feed %s", e.Kind, e.ChapterID)
	if e.Index >= 0 {
		where += fmt.Sprintf("[%d]", e.Index)
		if e.ItemID != "" {
			where += fmt.Sprintf(" (%s)", e.ItemID)
		}
	}
	return fmt.Sprintf("%s: %v", where, e.Err)
}

func (e *FeedError) Unwrap() error { return e.Err }

var compiledSchemas = sync.OnceValues(func() (map[Kind]*jsonschema.Schema, error) {
	c := jsonschema.NewCompiler()
	out := make(map[Kind]*jsonschema.Schema, 2)
	for kind, file := range map[Kind]string{
		KindTemplates: "schemas/template.schema.json",
		KindQuestions: "schemas/question.schema.json",
	} {
		raw, err := schemaFS.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
		url := "mem://" + file
		if err := c.AddResource(url, doc); err != nil {
			return nil, fmt.Errorf("add %s: %w", file, err)
		}
		sch, err := c.Compile(url)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", file, err)
		}
		out[kind] = sch
	}
	return out, nil
})

func schemaFor(kind Kind) (*jsonschema.Schema, error) {
	m, err := compiledSchemas()
	if err != nil {
		return nil, err
	}
	return m[kind], nil
}

// SchemaJSON returns the embedded JSON schema of a feed item.
func SchemaJSON(kind Kind) ([]byte, error) {
	return schemaFS.ReadFile("schemas/" + strings.TrimSuffix(string(kind), "s") + ".schema.json")
}

// toJSON normalizes a document to JSON bytes. YAML documents are decoded
// into generic values and re-encoded.
func toJSON(data []byte, format Format) ([]byte, error) {
	if format != FormatYAML {
		return data, nil
	}
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return out, nil
}

// feedItems extracts the item list from either a bare array or a
// {version, <kind>} envelope, checking the envelope version.
func feedItems(data []byte, format Format, kind Kind) ([]any, error) {
	js, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(js))
	if err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}

	switch v := doc.(type) {
	case []any:
		return v, nil
	case map[string]any:
		if ver, ok := v["version"]; ok {
			s, _ := ver.(string)
			if err := checkVersion(s); err != nil {
				return nil, err
			}
		}
		items, ok := v[string(kind)].([]any)
		if !ok {
			return nil, fmt.Errorf("document has no %q array", kind)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("document must be an array or an object, got %T", doc)
	}
}

func checkVersion(v string) error {
	if v != "" && !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return fmt.Errorf("invalid feed version %q", v)
	}
	if major := semver.Major(v); major != SupportedMajor {
		return fmt.Errorf("unsupported feed version %s (want %s.x)", v, SupportedMajor)
	}
	return nil
}

// DecodeTemplates parses a template feed. Items that fail schema
// validation or decoding are skipped and reported individually; a non-nil
// error means the whole document was unusable.
func DecodeTemplates(chapterID string, data []byte, format Format) ([]*problemgen.Template, []error, error) {
	sch, err := schemaFor(KindTemplates)
	if err != nil {
		return nil, nil, err
	}
	items, err := feedItems(data, format, KindTemplates)
	if err != nil {
		return nil, nil, &FeedError{ChapterID: chapterID, Kind: KindTemplates, Index: -1, Err: err}
	}

	var (
		out  []*problemgen.Template
		errs []error
	)
	for i, item := range items {
		itemErr := func(err error) {
			errs = append(errs, &FeedError{ChapterID: chapterID, Kind: KindTemplates, Index: i, ItemID: itemID(item), Err: err})
		}
		if err := sch.Validate(item); err != nil {
			itemErr(err)
			continue
		}
		var t problemgen.Template
		if err := remarshal(item, &t); err != nil {
			itemErr(err)
			continue
		}
		if t.ChapterID == "" {
			t.ChapterID = chapterID
		}
		if err := ValidateTemplate(&t); err != nil {
			itemErr(err)
			continue
		}
		out = append(out, &t)
	}
	return out, errs, nil
}

// staticQuestion accepts correctAnswer as either a string or a number.
type staticQuestion struct {
	problemgen.Question
	CorrectAnswer json.RawMessage `json:"correctAnswer,omitempty"`
}

// DecodeQuestions parses a static question feed with the same error
// reporting as DecodeTemplates.
func DecodeQuestions(chapterID string, data []byte, format Format) ([]*problemgen.Question, []error, error) {
	sch, err := schemaFor(KindQuestions)
	if err != nil {
		return nil, nil, err
	}
	items, err := feedItems(data, format, KindQuestions)
	if err != nil {
		return nil, nil, &FeedError{ChapterID: chapterID, Kind: KindQuestions, Index: -1, Err: err}
	}

	validators := []problemgen.Validator{
		&problemgen.StructuralValidator{},
		&problemgen.AnswerSetValidator{},
	}

	var (
		out  []*problemgen.Question
		errs []error
	)
	for i, item := range items {
		itemErr := func(err error) {
			errs = append(errs, &FeedError{ChapterID: chapterID, Kind: KindQuestions, Index: i, ItemID: itemID(item), Err: err})
		}
		if err := sch.Validate(item); err != nil {
			itemErr(err)
			continue
		}
		var sq staticQuestion
		if err := remarshal(item, &sq); err != nil {
			itemErr(err)
			continue
		}
		q := sq.Question
		q.CorrectAnswer = rawAnswer(sq.CorrectAnswer)
		if q.ChapterID == "" {
			q.ChapterID = chapterID
		}
		if q.Type == problemgen.TypeTrueFalse {
			q.Type = problemgen.TypeMultipleChoice
		}
		if verr := problemgen.Validate(&q, nil, validators); verr != nil {
			itemErr(verr)
			continue
		}
		out = append(out, &q)
	}
	return out, errs, nil
}

func rawAnswer(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

func remarshal(v any, into any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, into)
}

func itemID(item any) string {
	if m, ok := item.(map[string]any); ok {
		if id, ok := m["id"].(string); ok {
			return id
		}
	}
	return ""
}
