// Package query builds the Google advanced-search query string for a
// collection run.
package query

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Site is the host every query is scoped to.
const Site = "tiktok.com"

const dateLayout = "2006-01-02"

var (
	// ErrNoTarget is returned when neither a term, a user nor a tag is given.
	ErrNoTarget = errors.New("either a search term, a user or a tag must be provided")
	// ErrUserAndTag is returned when both a user and a tag are given.
	ErrUserAndTag = errors.New("user and tag are mutually exclusive")
)

// Params are the user inputs a query is built from.
type Params struct {
	// Term is the free-text search term.
	Term string
	// User scopes the search to one profile. Leading @ is tolerated.
	User string
	// Tag scopes the search to one hashtag. Leading # is tolerated.
	Tag string
	// Before limits results to posts published before this date (YYYY-MM-DD).
	Before string
	// After limits results to posts published after this date (YYYY-MM-DD).
	After string
}

// Validate checks the target and date constraints. It is called before any
// network activity; a failure here is fatal to the run.
func (p Params) Validate() error {
	if p.Term == "" && p.User == "" && p.Tag == "" {
		return ErrNoTarget
	}
	if p.User != "" && p.Tag != "" {
		return ErrUserAndTag
	}

	for _, d := range []struct{ name, value string }{
		{"before", p.Before},
		{"after", p.After},
	} {
		if err := ValidateDate(d.name, d.value); err != nil {
			return err
		}
	}

	return nil
}

// ValidateDate checks that value is a strict YYYY-MM-DD date. Empty values
// pass; the caller decides whether the date is required.
func ValidateDate(name, value string) error {
	if value == "" {
		return nil
	}
	if _, err := time.Parse(dateLayout, value); err != nil {
		return fmt.Errorf("%s date %q is not in YYYY-MM-DD format", name, value)
	}
	return nil
}

// CleanUser returns the user handle without a leading @.
func (p Params) CleanUser() string {
	return strings.TrimPrefix(p.User, "@")
}

// CleanTag returns the tag without a leading #.
func (p Params) CleanTag() string {
	return strings.TrimPrefix(p.Tag, "#")
}

// Build assembles the site-scoped query string with any advanced-search
// operators appended.
func (p Params) Build() (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	var site string
	switch {
	case p.User != "":
		site = fmt.Sprintf("site:%s/@%s/*", Site, p.CleanUser())
	case p.Tag != "":
		site = fmt.Sprintf("site:%s/tag/%s/*", Site, p.CleanTag())
	default:
		site = fmt.Sprintf("site:%s/*", Site)
	}

	parts := []string{site}
	if p.Term != "" {
		parts = append(parts, p.Term)
	}
	if p.Before != "" {
		parts = append(parts, "before:"+p.Before)
	}
	if p.After != "" {
		parts = append(parts, "after:"+p.After)
	}

	return strings.Join(parts, " "), nil
}
