package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Format is the encoding of a feed document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Kind selects which feed of a chapter to open.
type Kind string

const (
	KindTemplates Kind = "templates"
	KindQuestions Kind = "questions"
)

// Source provides raw feed documents. A missing feed is reported as an
// error matching fs.ErrNotExist.
type Source interface {
	Open(ctx context.Context, chapterID string, kind Kind) ([]byte, Format, error)
}

// DirSource reads feeds from a directory laid out as
// <chapter>-templates.{yaml,yml,json} and <chapter>-questions.json.
// Chapter ids with underscores also match hyphenated file names
// (chapter_1 finds chapter-1-questions.json).
type DirSource struct {
	Dir string
}

// NewDirSource creates a DirSource rooted at dir.
func NewDirSource(dir string) *DirSource {
	return &DirSource{Dir: dir}
}

func (s *DirSource) Open(ctx context.Context, chapterID string, kind Kind) ([]byte, Format, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	exts := []string{"json"}
	if kind == KindTemplates {
		exts = []string{"yaml", "yml", "json"}
	}

	for _, base := range baseNames(chapterID) {
		for _, ext := range exts {
			path := filepath.Join(s.Dir, fmt.Sprintf("%s-%s.%s", base, kind, ext))
			data, err := os.ReadFile(path)
			if err == nil {
				return data, formatOf(ext), nil
			}
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, "", fmt.Errorf("read %s: %w", path, err)
			}
		}
	}
	return nil, "", fmt.Errorf("%s feed for %s: %w", kind, chapterID, fs.ErrNotExist)
}

func baseNames(chapterID string) []string {
	names := []string{chapterID}
	if alt := strings.ReplaceAll(chapterID, "_", "-"); alt != chapterID {
		names = append(names, alt)
	}
	return names
}

func formatOf(ext string) Format {
	if ext == "json" {
		return FormatJSON
	}
	return FormatYAML
}

// MapSource serves feeds from memory, keyed by "<chapter>-<kind>". Used by
// tests and by callers embedding content.
type MapSource map[string]MapFeed

// MapFeed is one in-memory document.
type MapFeed struct {
	Data   []byte
	Format Format
}

func (m MapSource) Open(ctx context.Context, chapterID string, kind Kind) ([]byte, Format, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	f, ok := m[chapterID+"-"+string(kind)]
	if !ok {
		return nil, "", fmt.Errorf("%s feed for %s: %w", kind, chapterID, fs.ErrNotExist)
	}
	return f.Data, f.Format, nil
}
