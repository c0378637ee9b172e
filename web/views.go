package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/n9te9/go-graphql-product-web/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	viewProducts = "products.html"
	viewProduct  = "product.html"
	viewLoading  = "loading.html"
	viewNotFound = "not_found.html"
)

type productsPage struct {
	Title    string
	Products []catalog.Product
}

type productPage struct {
	Title   string
	Product *catalog.Product
	Form    ReviewForm
}

type messagePage struct {
	Title string
}

type views struct {
	templates map[string]*template.Template
}

func loadViews() (*views, error) {
	v := &views{templates: make(map[string]*template.Template)}
	for _, name := range []string{viewProducts, viewProduct, viewLoading, viewNotFound} {
		t, err := template.New(name).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		v.templates[name] = t
	}
	return v, nil
}

// render buffers the page; nothing is written to w when the template fails.
func (v *views) render(w http.ResponseWriter, status int, name string, data any) error {
	t, ok := v.templates[name]
	if !ok {
		return fmt.Errorf("unknown view %s", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to execute template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w) //nolint:errcheck
	return nil
}
