package utils

import (
	"html/template"
	"strings"
	"testing"
	"time"

	"boarddash/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown_Sanitizes(t *testing.T) {
	out := string(RenderMarkdown("**bold** <script>alert(1)</script>\n\n[site](https://example.com)\n\n![pic](https://example.com/a.png)"))

	assert.Contains(t, out, "<strong>bold</strong>")
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `rel="nofollow noopener noreferrer"`)
	assert.Contains(t, out, `loading="lazy"`)
}

func TestRenderCommentMarkdown_NarrowAllowList(t *testing.T) {
	src := "# Title\n\n*hi* [site](https://example.com)\n\n![pic](https://example.com/a.png)"

	out := string(RenderCommentMarkdown(src))
	assert.Contains(t, out, "Title")
	assert.NotContains(t, out, "<h1")
	assert.NotContains(t, out, "<img")
	assert.Contains(t, out, "<em>hi</em>")
	assert.Contains(t, out, `href="https://example.com"`)

	post := string(RenderMarkdown(src))
	assert.Contains(t, post, "<h1")
	assert.Contains(t, post, "<img")
}

func TestEnhanceHTMLContent_Empty(t *testing.T) {
	assert.Equal(t, template.HTML(""), EnhanceHTMLContent(""))
}

func TestContentRenderer_CachesByVersion(t *testing.T) {
	cache, err := NewRenderCache(8)
	require.NoError(t, err)
	r := NewContentRenderer(cache)

	p := &models.Post{ID: 1, Content: "first", UpdatedAt: time.Unix(100, 0)}
	assert.Contains(t, string(r.Post(p)), "first")

	// 同一版本命中缓存
	p.Content = "changed without version bump"
	assert.Contains(t, string(r.Post(p)), "first")
	assert.Equal(t, 1, cache.Len())

	p.UpdatedAt = time.Unix(200, 0)
	assert.Contains(t, string(r.Post(p)), "changed")
	assert.Equal(t, 2, cache.Len())
}

func TestRenderCache_Nil(t *testing.T) {
	var c *RenderCache
	calls := 0
	out := c.GetOrRender("k", func() template.HTML { calls++; return "x" })
	assert.Equal(t, template.HTML("x"), out)
	assert.Equal(t, 1, calls)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.False(t, strings.Contains(hash, "s3cret"))
	assert.True(t, CheckPassword(hash, "s3cret"))
	assert.False(t, CheckPassword(hash, "wrong"))
}

func TestParseID(t *testing.T) {
	id, ok := ParseID("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, ok := ParseID(bad)
		assert.False(t, ok, bad)
	}
}
