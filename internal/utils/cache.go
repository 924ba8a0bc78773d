package utils

import (
	"html/template"

	lru "github.com/hashicorp/golang-lru/v2"
)

// RenderCache 缓存已渲染的 HTML，key 由调用方决定（通常包含 updated_at，内容变更后自然失效）
type RenderCache struct {
	lruCache *lru.Cache[string, template.HTML]
}

// NewRenderCache creates a cache holding at most size entries.
func NewRenderCache(size int) (*RenderCache, error) {
	l, err := lru.New[string, template.HTML](size)
	if err != nil {
		return nil, err
	}
	return &RenderCache{lruCache: l}, nil
}

// GetOrRender returns the cached value for key or stores the result of render.
func (c *RenderCache) GetOrRender(key string, render func() template.HTML) template.HTML {
	if c == nil {
		return render()
	}
	if val, ok := c.lruCache.Get(key); ok {
		return val
	}
	val := render()
	c.lruCache.Add(key, val)
	return val
}

func (c *RenderCache) Len() int {
	if c == nil {
		return 0
	}
	return c.lruCache.Len()
}
