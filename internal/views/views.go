// Package views registers the HTML templates with gin's multitemplate renderer.
package views

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-contrib/multitemplate"
)

// Template names rendered by handlers.
const (
	Login      = "auth/login.html"
	Dashboard  = "dashboard/index.html"
	UserRows   = "dashboard/user_rows.html"
	Categories = "dashboard/categories.html"
	BoardList  = "board/list.html"
	PostRows   = "board/post_rows.html"
	PostDetail = "board/detail.html"
	PostForm   = "board/form.html"
	Profile    = "profile/edit.html"
	Error      = "error.html"
)

// Pages are full documents wrapped in the base layout.
var Pages = []string{Login, Dashboard, Categories, BoardList, PostDetail, PostForm, Profile, Error}

// Fragments render on their own for htmx partial updates and are also
// included by the pages above.
var Fragments = map[string]string{
	UserRows: "fragments/user_rows.html",
	PostRows: "fragments/post_rows.html",
}

// Names lists every template a handler may render.
func Names() []string {
	names := append([]string{}, Pages...)
	for name := range Fragments {
		names = append(names, name)
	}
	return names
}

// Load parses the templates under dir: layouts and includes first, then the
// shared fragments, then the page view.
func Load(dir string) (multitemplate.Renderer, error) {
	r := multitemplate.NewRenderer()

	layouts, err := filepath.Glob(filepath.Join(dir, "layouts", "*.html"))
	if err != nil {
		return nil, err
	}
	if len(layouts) == 0 {
		return nil, fmt.Errorf("no layouts in %s", dir)
	}
	includes, err := filepath.Glob(filepath.Join(dir, "includes", "*.html"))
	if err != nil {
		return nil, err
	}
	fragments, err := filepath.Glob(filepath.Join(dir, "fragments", "*.html"))
	if err != nil {
		return nil, err
	}

	funcs := FuncMap()
	for _, name := range Pages {
		view := filepath.Join(dir, "views", name)
		if _, err := os.Stat(view); err != nil {
			return nil, fmt.Errorf("template %s: %w", name, err)
		}
		files := make([]string, 0, len(layouts)+len(includes)+len(fragments)+1)
		files = append(files, layouts...)
		files = append(files, includes...)
		files = append(files, fragments...)
		files = append(files, view)
		r.AddFromFilesFuncs(name, funcs, files...)
	}

	for name, file := range Fragments {
		r.AddFromFilesFuncs(name, funcs, filepath.Join(dir, file))
	}
	return r, nil
}

// FuncMap holds the helpers available to every template.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"add": func(a, b int) int {
			return a + b
		},
		"timeAgo": TimeAgo,
		"date": func(t interface{}) string {
			switch v := t.(type) {
			case time.Time:
				return v.Format("2006-01-02 15:04")
			case *time.Time:
				if v != nil {
					return v.Format("2006-01-02 15:04")
				}
			}
			return "-"
		},
		"toJSON": func(v interface{}) (string, error) {
			b, err := json.Marshal(v)
			return string(b), err
		},
		"query": func(s string) string {
			return url.QueryEscape(s)
		},
	}
}

// TimeAgo formats t relative to now, e.g. "5 minutes ago".
func TimeAgo(t time.Time) string {
	seconds := int(time.Since(t).Seconds())
	switch {
	case seconds < 60:
		return "just now"
	case seconds < 3600:
		return plural(seconds/60, "minute")
	case seconds < 86400:
		return plural(seconds/3600, "hour")
	case seconds < 2592000:
		return plural(seconds/86400, "day")
	case seconds < 31536000:
		return plural(seconds/2592000, "month")
	}
	return plural(seconds/31536000, "year")
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
