package markdown

import (
	"bytes"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-press/pkg/interfaces"
)

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. It returns the structured frontmatter, the Markdown
// body without delimiters, and any error encountered. Sources without a
// front matter block yield empty metadata and the body unchanged.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	var meta frontMatterEnvelope

	reader := bytes.NewReader(source)
	body, err := frontmatter.Parse(reader, &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta), body, nil
}

// BuildDocument assembles an interfaces.Document from the supplied file path,
// collection, raw content, and modification time. BodyHTML is intentionally
// left empty so callers can render lazily; Stats are computed eagerly because
// they only depend on the Markdown body.
func BuildDocument(path string, collection string, source []byte, modified time.Time) (*interfaces.Document, error) {
	meta, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, err
	}

	return &interfaces.Document{
		FilePath:     path,
		Collection:   collection,
		FrontMatter:  meta,
		Body:         body,
		Stats:        ComputeStats(body),
		LastModified: modified,
	}, nil
}

type frontMatterEnvelope struct {
	Title      string         `yaml:"title"`
	Slug       string         `yaml:"slug"`
	Summary    string         `yaml:"summary"`
	Status     string         `yaml:"status"`
	Template   string         `yaml:"template"`
	Tags       []string       `yaml:"tags"`
	Category   string         `yaml:"category"`
	Series     string         `yaml:"series"`
	SeriesPart int            `yaml:"series_part"`
	Author     string         `yaml:"author"`
	Date       time.Time      `yaml:"date"`
	Updated    time.Time      `yaml:"updated"`
	Draft      bool           `yaml:"draft"`
	Custom     map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope) interfaces.FrontMatter {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}

	raw := make(map[string]any, len(env.Custom)+10)
	for key, value := range env.Custom {
		raw[key] = value
	}

	if env.Title != "" {
		raw["title"] = env.Title
	}
	if env.Slug != "" {
		raw["slug"] = env.Slug
	}
	if env.Summary != "" {
		raw["summary"] = env.Summary
	}
	if env.Status != "" {
		raw["status"] = env.Status
	}
	if env.Template != "" {
		raw["template"] = env.Template
	}
	if len(env.Tags) > 0 {
		raw["tags"] = append([]string(nil), env.Tags...)
	}
	if env.Category != "" {
		raw["category"] = env.Category
	}
	if env.Series != "" {
		raw["series"] = env.Series
	}
	if env.SeriesPart != 0 {
		raw["series_part"] = env.SeriesPart
	}
	if env.Author != "" {
		raw["author"] = env.Author
	}
	if !env.Date.IsZero() {
		raw["date"] = env.Date
	}
	if !env.Updated.IsZero() {
		raw["updated"] = env.Updated
	}
	raw["draft"] = env.Draft

	return interfaces.FrontMatter{
		Title:      env.Title,
		Slug:       env.Slug,
		Summary:    env.Summary,
		Status:     env.Status,
		Template:   env.Template,
		Tags:       append([]string(nil), env.Tags...),
		Category:   env.Category,
		Series:     env.Series,
		SeriesPart: env.SeriesPart,
		Author:     env.Author,
		Date:       env.Date,
		Updated:    env.Updated,
		Draft:      env.Draft,
		Custom:     cloneMap(env.Custom),
		Raw:        raw,
	}
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
