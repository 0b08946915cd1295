package render

import (
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-press/articles"
)

var registerBuiltinFilters sync.Once

// builtin filters available to every template:
//
//	excerpt:N  first N words of the input with an ellipsis when truncated
//	slugify    URL-safe slug of the input
//	absurl:B   input path prefixed with base URL B
func registerFilters() {
	registerBuiltinFilters.Do(func() {
		pongo2.RegisterFilter("excerpt", filterExcerpt)
		pongo2.RegisterFilter("slugify", filterSlugify)
		pongo2.RegisterFilter("absurl", filterAbsURL)
	})
}

func filterExcerpt(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	limit := param.Integer()
	if limit <= 0 {
		limit = 40
	}
	words := strings.Fields(in.String())
	if len(words) <= limit {
		return pongo2.AsValue(strings.Join(words, " ")), nil
	}
	return pongo2.AsValue(strings.Join(words[:limit], " ") + "…"), nil
}

func filterSlugify(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	normalized, err := articles.NormalizeSlug(in.String())
	if err != nil || normalized == "" {
		normalized = strings.ToLower(strings.Join(strings.Fields(in.String()), "-"))
	}
	return pongo2.AsValue(normalized), nil
}

func filterAbsURL(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	base := strings.TrimRight(strings.TrimSpace(param.String()), "/")
	path := strings.TrimSpace(in.String())
	if path == "" {
		return pongo2.AsValue(base), nil
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return pongo2.AsValue(path), nil
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return pongo2.AsValue(base + path), nil
}
