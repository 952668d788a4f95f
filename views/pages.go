package views

import (
	"context"
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/docket/markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"markdown": func(body string) (template.HTML, error) {
		out, err := markdown.HTML(body)
		return template.HTML(out), err
	},
	"safeURL": func(raw string) template.URL {
		return template.URL(html.UnescapeString(markdown.SafeURL(raw)))
	},
	"jsonld": func(s string) template.JS {
		return template.JS(s)
	},
	"date":       FormatDate,
	"isodate":    ISODate,
	"pathEscape": PathEscape,
	"tagClass":   TagClass,
	"joinTags":   JoinTags,
	"upper":      strings.ToUpper,
	"abs":        AbsURL,
}

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{"home", "list", "tags", "post", "contact", "notfound", "error"} {
		pages[name] = template.Must(template.New(name).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html", "templates/"+name+".html"))
	}
}

// page executes the named page inside the shared layout.
func page(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := pages[name]
		if !ok {
			return fmt.Errorf("views: unknown page %q", name)
		}
		return t.ExecuteTemplate(w, "layout", data)
	})
}

// Home renders the landing page.
func Home(p HomePage) templ.Component { return page("home", p) }

// List renders a list of posts.
func List(p ListPage) templ.Component { return page("list", p) }

// Tags renders the tag index.
func Tags(p TagsPage) templ.Component { return page("tags", p) }

// Post renders one post.
func Post(p PostPage) templ.Component { return page("post", p) }

// Contact renders the contact form.
func Contact(p ContactPage) templ.Component { return page("contact", p) }

// NotFound renders the 404 page.
func NotFound(p ErrorPage) templ.Component { return page("notfound", p) }

// ServerError renders the 500 page. It shows nothing about the cause.
func ServerError(p ErrorPage) templ.Component { return page("error", p) }
