// Package content serves the static articles, blog posts and learning
// modules of the FarmLens site.
package content

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalogue.yaml
var catalogueYAML []byte

type Kind string

const (
	KindArticle Kind = "article"
	KindBlog    Kind = "blog"
	KindModule  Kind = "module"
)

type Item struct {
	Slug        string   `yaml:"slug" json:"slug"`
	Kind        Kind     `yaml:"kind" json:"kind"`
	Title       string   `yaml:"title" json:"title"`
	Summary     string   `yaml:"summary" json:"summary"`
	Category    string   `yaml:"category" json:"category"`
	Tags        []string `yaml:"tags" json:"tags"`
	Author      string   `yaml:"author" json:"author"`
	Published   string   `yaml:"published" json:"published"`
	ReadMinutes int      `yaml:"read_minutes" json:"readMinutes"`
}

type Query struct {
	Kind     string
	Category string
	Tag      string
	Search   string
}

type Catalogue struct {
	items []Item
}

// Load parses the embedded catalogue.
func Load() (*Catalogue, error) {
	return Parse(catalogueYAML)
}

func Parse(data []byte) (*Catalogue, error) {
	var items []Item
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse content catalogue: %w", err)
	}

	seen := make(map[string]bool, len(items))
	for _, item := range items {
		if item.Slug == "" {
			return nil, fmt.Errorf("content item %q has no slug", item.Title)
		}
		if seen[item.Slug] {
			return nil, fmt.Errorf("duplicate content slug %q", item.Slug)
		}
		seen[item.Slug] = true
	}

	// newest first
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Published > items[j].Published
	})

	return &Catalogue{items: items}, nil
}

// Filter returns the items matching every non-empty field of q. Matching is
// case-insensitive; Search looks at title, summary and tags.
func (c *Catalogue) Filter(q Query) []Item {
	search := strings.ToLower(strings.TrimSpace(q.Search))

	result := make([]Item, 0, len(c.items))
	for _, item := range c.items {
		if q.Kind != "" && !strings.EqualFold(string(item.Kind), q.Kind) {
			continue
		}
		if q.Category != "" && !strings.EqualFold(item.Category, q.Category) {
			continue
		}
		if q.Tag != "" && !hasTag(item, q.Tag) {
			continue
		}
		if search != "" && !matches(item, search) {
			continue
		}
		result = append(result, item)
	}
	return result
}

func (c *Catalogue) BySlug(slug string) (Item, bool) {
	for _, item := range c.items {
		if item.Slug == slug {
			return item, true
		}
	}
	return Item{}, false
}

func (c *Catalogue) Categories() []string {
	return c.distinct(func(item Item) []string { return []string{item.Category} })
}

func (c *Catalogue) Tags() []string {
	return c.distinct(func(item Item) []string { return item.Tags })
}

func (c *Catalogue) distinct(values func(Item) []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range c.items {
		for _, v := range values(item) {
			if v != "" && !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	sort.Strings(out)
	return out
}

func hasTag(item Item, tag string) bool {
	for _, t := range item.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func matches(item Item, search string) bool {
	if strings.Contains(strings.ToLower(item.Title), search) ||
		strings.Contains(strings.ToLower(item.Summary), search) {
		return true
	}
	for _, t := range item.Tags {
		if strings.Contains(strings.ToLower(t), search) {
			return true
		}
	}
	return false
}
