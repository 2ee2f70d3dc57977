package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

// CartsView is the name of the cart page template.
const CartsView = "carts"

// CartPage is the data rendered by the carts view.
type CartPage struct {
	CartID   string
	Lines    []CartLine
	Total    string
	Detailed bool
}

// CartLine is one row of the carts view. Title, Code, Thumbnail and Price are
// only set on detailed pages.
type CartLine struct {
	ProductID string
	Title     string
	Code      string
	Thumbnail string
	Price     string
	Quantity  int
}

// Renderer executes the embedded templates.
type Renderer struct {
	tmpl *template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Render writes the named template to w.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	if r.tmpl.Lookup(name) == nil {
		return fmt.Errorf("unknown view %q", name)
	}
	return r.tmpl.ExecuteTemplate(w, name, data)
}
