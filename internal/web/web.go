package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/yuin/goldmark"
)

// Embed the 'templates' directory.
// The path is relative to this file (internal/web/web.go).
//
//go:embed templates
var Assets embed.FS

// Page names accepted by Renderer.Render.
const (
	PageList     = "list"
	PageView     = "view"
	PageForm     = "form"
	PageSearch   = "search"
	PageNotFound = "notfound"
	PageError    = "error"
)

var pages = []string{PageList, PageView, PageForm, PageSearch, PageNotFound, PageError}

// Field is the data handed to the "input" template for one form control.
type Field struct {
	Name  string
	Label string
	Type  string
	Value string
	Error string
}

var md = goldmark.New()

var funcMap = template.FuncMap{
	"rating":   formatRating,
	"markdown": renderMarkdown,
	"field": func(name, label, typ, value string, errs map[string]string) Field {
		return Field{Name: name, Label: label, Type: typ, Value: value, Error: errs[name]}
	},
}

// Renderer turns a named page and its data into an HTML document.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer pre-builds every page as base.html + <page>.html.
// Pages are parsed SEPARATELY so their "content" blocks don't collide.
func NewRenderer() (*Renderer, error) {
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(Assets, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(pages))}
	for _, name := range pages {
		tmpl, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("failed to clone base template: %w", err)
		}
		if tmpl, err = tmpl.ParseFS(Assets, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render executes base.html with the named page's "content" block.
func (r *Renderer) Render(w io.Writer, page string, data any) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", page, err)
	}
	return nil
}

func formatRating(v any) string {
	switch r := v.(type) {
	case *float64:
		if r != nil {
			return strconv.FormatFloat(*r, 'f', 1, 64)
		}
	case *int:
		if r != nil {
			return strconv.Itoa(*r)
		}
	}
	return "–"
}

// renderMarkdown converts text to HTML. goldmark drops raw HTML by default,
// so the output is safe to embed.
func renderMarkdown(s string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(s), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
