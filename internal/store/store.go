// Package store supplies the raw Markdown of published posts to the gallery.
//
// Backends live in subpackages (sqlite, b2, s3). Every backend gates its
// results to published posts and returns category listings newest first.
package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/SayaAndy/saya-today-gallery/internal/frontmatter"
)

var ErrNotFound = errors.New("post not found")

type Post struct {
	ID      int64
	Title   string
	Text    string
	Created time.Time
}

type Store interface {
	Post(ctx context.Context, id int64) (*Post, error)
	PostsByCategory(ctx context.Context, categoryID int64) ([]*Post, error)
	Close() error
}

// ObjectName is the key a post is stored under in object storage.
func ObjectName(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10) + ".md"
}

// ParsedPost pairs a post read from object storage with its front matter.
type ParsedPost struct {
	*Post
	Metadata *frontmatter.Metadata
}

// ParsePost decodes a front matter Markdown object. The post id falls back to
// the numeric base name of the object when the front matter has none.
func ParsePost(name string, content []byte) (*ParsedPost, error) {
	metadata, markdown, err := frontmatter.ParseFrontmatter(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse '%s': %w", name, err)
	}
	if metadata == nil {
		return nil, fmt.Errorf("object '%s' has no front matter", name)
	}

	id := metadata.ID
	if id == 0 {
		base := strings.TrimSuffix(path.Base(name), path.Ext(name))
		if id, err = strconv.ParseInt(base, 10, 64); err != nil {
			return nil, fmt.Errorf("object '%s' has neither an id field nor a numeric name", name)
		}
	}

	return &ParsedPost{
		Post: &Post{
			ID:      id,
			Title:   metadata.Title,
			Text:    string(markdown),
			Created: metadata.Created,
		},
		Metadata: metadata,
	}, nil
}

func SortNewestFirst(posts []*Post) {
	slices.SortStableFunc(posts, func(a, b *Post) int {
		return b.Created.Compare(a.Created)
	})
}

// SelectCategory keeps the published posts filed under categoryID, newest first.
func SelectCategory(parsed []*ParsedPost, categoryID int64) []*Post {
	posts := make([]*Post, 0, len(parsed))
	for _, p := range parsed {
		if p.Metadata.IsPublished() && p.Metadata.InCategory(categoryID) {
			posts = append(posts, p.Post)
		}
	}
	SortNewestFirst(posts)
	return posts
}

// Published returns the post, or ErrNotFound when it is not published.
func (p *ParsedPost) Published() (*Post, error) {
	if !p.Metadata.IsPublished() {
		return nil, fmt.Errorf("post %d is not published: %w", p.ID, ErrNotFound)
	}
	return p.Post, nil
}
