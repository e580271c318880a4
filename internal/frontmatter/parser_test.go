package frontmatter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatter(t *testing.T) {
	content := []byte("---\n" +
		"id: 42\n" +
		"title: Autumn walk\n" +
		"status: publish\n" +
		"categories: [3, 7]\n" +
		"created: 2025-10-01T12:00:00Z\n" +
		"---\n" +
		"![leaves](http://a/leaves.jpg)\n")

	metadata, markdown, err := ParseFrontmatter(content)
	require.NoError(t, err)
	require.NotNil(t, metadata)

	assert.Equal(t, int64(42), metadata.ID)
	assert.Equal(t, "Autumn walk", metadata.Title)
	assert.Equal(t, []int64{3, 7}, metadata.Categories)
	assert.True(t, metadata.Created.Equal(time.Date(2025, 10, 1, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "![leaves](http://a/leaves.jpg)\n", string(markdown))
	assert.True(t, metadata.IsPublished())
	assert.True(t, metadata.InCategory(7))
	assert.False(t, metadata.InCategory(4))
}

func TestParseFrontmatter_NoBlock(t *testing.T) {
	content := []byte("# plain\n\n![x](http://a/x.jpg)\n")

	metadata, markdown, err := ParseFrontmatter(content)
	require.NoError(t, err)
	assert.Nil(t, metadata)
	assert.Equal(t, content, markdown)
}

func TestParseFrontmatter_InvalidYAML(t *testing.T) {
	_, _, err := ParseFrontmatter([]byte("---\ntitle: [unclosed\n---\nbody\n"))
	require.Error(t, err)
}

func TestIsPublished(t *testing.T) {
	assert.True(t, (&Metadata{}).IsPublished())
	assert.True(t, (&Metadata{Type: TypePost, Status: StatusPublish}).IsPublished())
	assert.False(t, (&Metadata{Status: "draft"}).IsPublished())
	assert.False(t, (&Metadata{Type: "page"}).IsPublished())
}
