package view

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"strings"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// StaticFS serves the stylesheet under /static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Layout feeds the layout-base partial.
type Layout struct {
	LogoText   string
	PageTitle  string
	NavItems   []NavItem
	FooterText string
}

type NavItem struct {
	Label  string
	Href   string
	Active bool
}

// ItemLabel feeds the item-label partial: a caption over a value.
type ItemLabel struct {
	Label   string
	Content string
	Class   string
}

type page struct {
	Layout Layout
	Board  *Board
}

var funcs = template.FuncMap{
	// classes joins the non-empty class names, like the design-system
	// components do with their className prop.
	"classes": func(names ...string) string {
		out := make([]string, 0, len(names))
		for _, n := range names {
			if n = strings.TrimSpace(n); n != "" {
				out = append(out, n)
			}
		}
		return strings.Join(out, " ")
	},
	"itemLabel": func(label, content, class string) ItemLabel {
		return ItemLabel{Label: label, Content: content, Class: class}
	},
}

type Renderer struct {
	tmpl   *template.Template
	layout Layout
}

func NewRenderer(appName string) (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{
		tmpl: tmpl,
		layout: Layout{
			LogoText:   appName,
			PageTitle:  "Tasks",
			NavItems:   []NavItem{{Label: "Tasks", Href: "/", Active: true}},
			FooterText: "© 2025 All rights reserved",
		},
	}, nil
}

// Render writes the full task page.
func (r *Renderer) Render(w io.Writer, b *Board) error {
	return r.tmpl.ExecuteTemplate(w, "page", page{Layout: r.layout, Board: b})
}

// RenderList writes only the task list (cards or the empty state).
func (r *Renderer) RenderList(w io.Writer, cards []TaskCard) error {
	return r.tmpl.ExecuteTemplate(w, "task-list", cards)
}

// RenderComments writes only the comment list of the edit modal.
func (r *Renderer) RenderComments(w io.Writer, comments []CommentItem) error {
	return r.tmpl.ExecuteTemplate(w, "comments", comments)
}
