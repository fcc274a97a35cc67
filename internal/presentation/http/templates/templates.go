// Package templates renders the public marketing pages. Pages are
// html/template files exposed as templ components so handlers can render
// them the same way as any other component.
package templates

import (
	"context"
	"embed"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"
)

//go:embed html/*.html
var files embed.FS

var funcs = template.FuncMap{
	"date": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.UTC().Format("2 January 2006")
	},
	"stars": func(n int) string {
		if n < 0 {
			n = 0
		}
		if n > 5 {
			n = 5
		}
		return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
	},
	"trusted": func(s string) template.HTML {
		return template.HTML(s)
	},
}

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"home", "page", "blog_index", "blog_post", "message"} {
		pages[name] = template.Must(
			template.New("layout.html").Funcs(funcs).ParseFS(files, "html/layout.html", "html/"+name+".html"),
		)
	}
}

func render(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return pages[name].ExecuteTemplate(w, "layout.html", data)
	})
}

// Home renders the landing page.
func Home(data HomeData) templ.Component {
	return render("home", data)
}

// Page renders a CMS page with its sections.
func Page(data PageData) templ.Component {
	return render("page", data)
}

// BlogIndex renders one page of the public blog listing.
func BlogIndex(data BlogIndexData) templ.Component {
	return render("blog_index", data)
}

// BlogPost renders a single article.
func BlogPost(data BlogPostData) templ.Component {
	return render("blog_post", data)
}

// Message renders a short status page, used for errors and confirmations.
func Message(data MessageData) templ.Component {
	return render("message", data)
}

// RawHTML returns a templ component that writes the provided HTML without escaping.
func RawHTML(html string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		_, err := io.WriteString(w, html)
		return err
	})
}
