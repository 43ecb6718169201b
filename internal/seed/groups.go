package seed

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"yatube/internal/models"
	"yatube/internal/repository"
	"yatube/internal/validation"

	"gopkg.in/yaml.v3"
)

//go:embed groups.yml
var defaultGroups []byte

// GroupFixture is one entry of a groups YAML file.
type GroupFixture struct {
	Slug        string `yaml:"slug"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

type groupFile struct {
	Groups []GroupFixture `yaml:"groups"`
}

// DefaultGroups returns the built-in group fixture file.
func DefaultGroups() []byte {
	return defaultGroups
}

// ParseGroups decodes a groups YAML document. Every entry needs a valid
// slug and a title, and slugs must be unique within the file.
func ParseGroups(data []byte) ([]GroupFixture, error) {
	var file groupFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse groups: %w", err)
	}

	seen := make(map[string]bool, len(file.Groups))
	for i := range file.Groups {
		g := &file.Groups[i]
		g.Slug = strings.TrimSpace(g.Slug)
		g.Title = strings.TrimSpace(g.Title)
		if g.Title == "" {
			return nil, fmt.Errorf("group %d: title is required", i+1)
		}
		if err := validation.ValidateGroupSlug(g.Slug); err != nil {
			return nil, fmt.Errorf("group %d: %w", i+1, err)
		}
		if seen[g.Slug] {
			return nil, fmt.Errorf("group %d: duplicate slug %q", i+1, g.Slug)
		}
		seen[g.Slug] = true
	}
	return file.Groups, nil
}

// LoadGroups creates every group in data that does not exist yet and
// returns the stored rows in file order. Existing slugs are left untouched.
func LoadGroups(ctx context.Context, repo repository.GroupRepository, data []byte) ([]*models.Group, error) {
	fixtures, err := ParseGroups(data)
	if err != nil {
		return nil, err
	}

	groups := make([]*models.Group, 0, len(fixtures))
	for _, f := range fixtures {
		g, err := repo.Ensure(ctx, &models.Group{
			Slug:        f.Slug,
			Title:       f.Title,
			Description: f.Description,
		})
		if err != nil {
			return nil, fmt.Errorf("ensure group %q: %w", f.Slug, err)
		}
		groups = append(groups, g)
	}
	return groups, nil
}
