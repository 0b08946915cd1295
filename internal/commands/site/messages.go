package sitecmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const buildSiteMessageType = "press.site.build"

// BuildSiteCommand triggers a static site build. Routes and Slugs narrow the
// build to a subset of pages; DryRun renders without writing artifacts.
type BuildSiteCommand struct {
	// Routes limits the build to the named output routes when non-empty.
	Routes []string `json:"routes,omitempty"`
	// Slugs limits the build to pages derived from the named article slugs when non-empty.
	Slugs []string `json:"slugs,omitempty"`
	// DryRun renders every selected page without persisting output files.
	DryRun bool `json:"dry_run,omitempty"`
}

// Type implements command.Message.
func (BuildSiteCommand) Type() string { return buildSiteMessageType }

// Validate rejects blank route or slug filters so handlers never silently
// build nothing.
func (cmd BuildSiteCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.Routes, validation.Each(validation.By(nonBlank("press.site.build.route_blank", "route must not be blank")))),
		validation.Field(&cmd.Slugs, validation.Each(validation.By(nonBlank("press.site.build.slug_blank", "slug must not be blank")))),
	)
}

func nonBlank(code, message string) func(value any) error {
	return func(value any) error {
		text, ok := value.(string)
		if !ok || strings.TrimSpace(text) == "" {
			return validation.NewError(code, message)
		}
		return nil
	}
}
