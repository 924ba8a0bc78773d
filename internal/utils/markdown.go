package utils

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"boarddash/internal/models"
)

// markdownProfile pairs a goldmark converter with the sanitizer applied to
// its output.
type markdownProfile struct {
	md        goldmark.Markdown
	sanitizer *bluemonday.Policy
}

// 帖子支持标题和图片；评论只保留基础排版和链接
var (
	postMarkdown    = newMarkdownProfile(true)
	commentMarkdown = newMarkdownProfile(false)
)

func newMarkdownProfile(rich bool) *markdownProfile {
	var parserOpts []parser.Option
	var sanitizer *bluemonday.Policy
	if rich {
		parserOpts = append(parserOpts, parser.WithAutoHeadingID())
		sanitizer = bluemonday.UGCPolicy()
		sanitizer.AllowImages()
	} else {
		sanitizer = bluemonday.NewPolicy()
		sanitizer.AllowStandardURLs()
		sanitizer.AllowAttrs("href").OnElements("a")
		sanitizer.AllowElements("p", "br", "strong", "em", "del", "code", "pre", "blockquote", "ul", "ol", "li")
	}
	// 外链新窗口打开，且不带 referrer
	sanitizer.AddTargetBlankToFullyQualifiedLinks(true)
	sanitizer.RequireNoReferrerOnLinks(true)

	return &markdownProfile{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parserOpts...),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
		sanitizer: sanitizer,
	}
}

func (m *markdownProfile) render(source string) template.HTML {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(source))
	}
	return EnhanceHTMLContent(string(m.sanitizer.SanitizeBytes(buf.Bytes())))
}

// RenderMarkdown converts a post body to sanitized HTML. Raw HTML in the
// source never survives sanitizing.
func RenderMarkdown(source string) template.HTML {
	return postMarkdown.render(source)
}

// RenderCommentMarkdown is RenderMarkdown with a narrower allow-list: no
// headings, images or tables.
func RenderCommentMarkdown(source string) template.HTML {
	return commentMarkdown.render(source)
}

// ContentRenderer renders post and comment bodies through a RenderCache.
type ContentRenderer struct {
	cache *RenderCache
}

func NewContentRenderer(cache *RenderCache) *ContentRenderer {
	return &ContentRenderer{cache: cache}
}

func (r *ContentRenderer) Post(p *models.Post) template.HTML {
	key := fmt.Sprintf("post:%d:%d", p.ID, p.UpdatedAt.UnixNano())
	return r.cache.GetOrRender(key, func() template.HTML { return RenderMarkdown(p.Content) })
}

// Comment 评论不可编辑，按 id 缓存即可
func (r *ContentRenderer) Comment(c *models.Comment) template.HTML {
	key := fmt.Sprintf("comment:%d", c.ID)
	return r.cache.GetOrRender(key, func() template.HTML { return RenderCommentMarkdown(c.Content) })
}
