// Package importer publishes a directory of markdown lessons in bulk.
//
// A lesson may start with YAML front matter:
//
//	---
//	title: Present Perfect Tense
//	category: grammar
//	description: When to use have and has.
//	---
//
// A missing title falls back to the first level-one heading and then to the
// file name; a missing category falls back to the lesson's top directory.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/unlockenglish/tutorsite/internal/content"
	"github.com/unlockenglish/tutorsite/internal/navigation"
	"github.com/unlockenglish/tutorsite/internal/progress"
	"github.com/unlockenglish/tutorsite/internal/walker"
)

// ActorImport is recorded as the author of imported lessons.
const ActorImport = "import"

var frontMatterDelim = []byte("---")

// Publisher stores one resource.
type Publisher interface {
	Publish(ctx context.Context, actor string, in content.NewResource) (*content.Resource, error)
}

// FrontMatter is the optional YAML header of a lesson.
type FrontMatter struct {
	Title       string `yaml:"title"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

// Lesson is a parsed lesson file.
type Lesson struct {
	RelPath string
	content.NewResource
}

// Options controls Run.
type Options struct {
	Walker   walker.Config
	DryRun   bool
	Reporter progress.Reporter
}

// Skipped is a lesson that was not published.
type Skipped struct {
	RelPath string
	Reason  string
}

// Result summarizes a run.
type Result struct {
	Imported []content.Resource
	Planned  []Lesson // filled on dry runs
	Skipped  []Skipped
}

// Run walks the lesson directory and publishes every lesson through pub.
// Lessons that fail validation are skipped and reported; a backend failure
// stops the run.
func Run(ctx context.Context, pub Publisher, opts Options) (*Result, error) {
	files, err := walker.Walk(opts.Walker)
	if err != nil {
		return nil, err
	}
	rep := opts.Reporter
	if rep == nil {
		rep = progress.Discard{}
	}

	res := &Result{}
	rep.Start(len(files))
	defer rep.Finish()

	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rep.Update(i+1, f.RelPath)

		data, err := os.ReadFile(f.Path)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{RelPath: f.RelPath, Reason: err.Error()})
			continue
		}
		lesson, err := Parse(f.RelPath, f.Dir, data)
		if err != nil {
			res.Skipped = append(res.Skipped, Skipped{RelPath: f.RelPath, Reason: err.Error()})
			continue
		}

		if opts.DryRun {
			res.Planned = append(res.Planned, lesson)
			continue
		}
		r, err := pub.Publish(ctx, ActorImport, lesson.NewResource)
		var verr *content.ValidationError
		switch {
		case errors.As(err, &verr):
			res.Skipped = append(res.Skipped, Skipped{RelPath: f.RelPath, Reason: verr.Error()})
		case err != nil:
			return res, fmt.Errorf("publishing %s: %w", f.RelPath, err)
		default:
			res.Imported = append(res.Imported, *r)
		}
	}
	return res, nil
}

// Parse reads a lesson. dir is the lesson's top directory, used as the
// category when the front matter names none.
func Parse(relPath, dir string, data []byte) (Lesson, error) {
	fm, body, err := splitFrontMatter(data)
	if err != nil {
		return Lesson{}, err
	}

	l := Lesson{RelPath: relPath}
	l.Title = strings.TrimSpace(fm.Title)
	l.Category = content.Slugify(strings.TrimSpace(fm.Category))
	l.Description = strings.TrimSpace(fm.Description)
	l.Content = strings.TrimSpace(string(body))

	if l.Title == "" {
		l.Title = firstHeading(l.Content)
	}
	if l.Title == "" {
		name := strings.TrimSuffix(path.Base(relPath), path.Ext(relPath))
		l.Title = navigation.FormatTitle(content.Slugify(name))
	}
	if l.Category == "" {
		l.Category = content.Slugify(dir)
	}
	if l.Category == "" {
		return Lesson{}, errors.New("no category: add one to the front matter or move the file into a section directory")
	}
	return l, nil
}

func splitFrontMatter(data []byte) (FrontMatter, []byte, error) {
	var fm FrontMatter
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	if !bytes.HasPrefix(data, frontMatterDelim) {
		return fm, data, nil
	}
	rest := data[len(frontMatterDelim):]
	nl := bytes.IndexByte(rest, '\n')
	if nl < 0 || len(bytes.TrimSpace(rest[:nl])) != 0 {
		return fm, data, nil
	}
	rest = rest[nl+1:]

	end := bytes.Index(rest, append([]byte("\n"), frontMatterDelim...))
	var header []byte
	switch {
	case bytes.HasPrefix(rest, frontMatterDelim):
		header, rest = nil, rest[len(frontMatterDelim):]
	case end >= 0:
		header, rest = rest[:end], rest[end+1+len(frontMatterDelim):]
	default:
		return fm, nil, errors.New("front matter is not closed")
	}
	if err := yaml.Unmarshal(header, &fm); err != nil {
		return fm, nil, fmt.Errorf("front matter: %w", err)
	}
	return fm, rest, nil
}

func firstHeading(md string) string {
	for _, line := range strings.Split(md, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}
