// Package validation holds format rules for identifiers that appear in URLs.
package validation

import (
	"errors"
	"regexp"
	"unicode/utf8"
)

// MaxGroupSlugLen matches the width of the groups.slug column.
const MaxGroupSlugLen = 100

var groupSlugRegex = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ValidateGroupSlug accepts letters, digits, hyphens and underscores.
func ValidateGroupSlug(slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}
	if utf8.RuneCountInString(slug) > MaxGroupSlugLen {
		return errors.New("slug must be at most 100 characters")
	}
	if !groupSlugRegex.MatchString(slug) {
		return errors.New("slug may contain only letters, numbers, underscores and hyphens")
	}
	return nil
}
