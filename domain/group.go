package domain

import (
	"regexp"
	"strings"
)

type Group struct {
	ID          int64
	Title       string
	Slug        string
	Description string
}

var slugRegexp = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

func (g Group) String() string {
	return g.Title
}

func (g Group) Validate() error {
	switch {
	case strings.TrimSpace(g.Title) == "":
		return NewValidationError("title", "title is required")
	case len(g.Title) > 200:
		return NewValidationError("title", "title must be at most 200 characters")
	case !slugRegexp.MatchString(g.Slug):
		return NewValidationError("slug", "slug may contain only letters, digits, hyphens and underscores")
	}
	return nil
}
