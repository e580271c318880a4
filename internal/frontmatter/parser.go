package frontmatter

import (
	"fmt"
	"regexp"
	"slices"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	TypePost      = "post"
	StatusPublish = "publish"
)

type Metadata struct {
	ID         int64     `yaml:"id"`
	Title      string    `yaml:"title"`
	Type       string    `yaml:"type"`
	Status     string    `yaml:"status"`
	Categories []int64   `yaml:"categories"`
	Created    time.Time `yaml:"created"`
}

var frontmatterRegex = regexp.MustCompile(`^---\s*\r?\n([\s\S]*?)\r?\n---\s*\r?\n([\s\S]*)$`)

func ParseFrontmatter(content []byte) (metadata *Metadata, markdown []byte, err error) {
	matches := frontmatterRegex.FindSubmatch(content)

	if len(matches) != 3 {
		return nil, content, nil
	}

	yamlContent := matches[1]
	markdownContent := matches[2]

	metadata = &Metadata{}
	if err := yaml.Unmarshal(yamlContent, metadata); err != nil {
		return nil, nil, fmt.Errorf("failed to parse YAML frontmatter: %w", err)
	}

	return metadata, markdownContent, nil
}

// IsPublished treats a missing type or status as a published post.
func (m *Metadata) IsPublished() bool {
	return (m.Type == "" || m.Type == TypePost) && (m.Status == "" || m.Status == StatusPublish)
}

func (m *Metadata) InCategory(categoryID int64) bool {
	return slices.Contains(m.Categories, categoryID)
}
