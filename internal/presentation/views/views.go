// Package views renders the HTML pages from templates embedded in the
// binary.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"sort"

	"github.com/hilthontt/doctrack/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Page names.
const (
	PageIndex       = "index"
	PageSignup      = "NewUser"
	PageLogin       = "login"
	PageNewDocument = "NewDocument"
	PageDepartment  = "Department"
	PageEditDetail  = "EditDetail"
	PageViewQR      = "viewQr"
)

var pages = []string{
	PageIndex,
	PageSignup,
	PageLogin,
	PageNewDocument,
	PageDepartment,
	PageEditDetail,
	PageViewQR,
}

type Renderer struct {
	templates map[string]*template.Template
}

// New parses every page together with the shared layout. It fails fast so a
// broken template stops startup rather than the first request.
func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"fields": sortedFields,
	}

	r := &Renderer{templates: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", page, err)
		}
		r.templates[page] = t
	}
	return r, nil
}

// Render executes page into a buffer first, so a template error never
// leaves a half-written 200 behind.
func (r *Renderer) Render(w http.ResponseWriter, status int, page string, data any) error {
	t, ok := r.templates[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// Static serves the embedded stylesheet and scripts.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}

type Field struct {
	Key   string
	Value string
}

func sortedFields(doc domain.Document) []Field {
	out := make([]Field, 0, len(doc.Fields))
	for k, v := range doc.Fields {
		out = append(out, Field{Key: k, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

type IndexData struct {
	Documents []domain.Document
}

type DepartmentData struct {
	Department  domain.Department
	Title       string
	Description string
	Documents   []domain.Document
}

func NewDepartmentData(dept domain.Department, docs []domain.Document) DepartmentData {
	return DepartmentData{
		Department:  dept,
		Title:       fmt.Sprintf("Welcome to the %s Department", dept.Title()),
		Description: fmt.Sprintf("This is the page for the %s department.", dept.Title()),
		Documents:   docs,
	}
}

type EditDetailData struct {
	Document domain.Document
}

type ViewQRData struct {
	Document domain.Document
	CodeURL  string
	History  []domain.AuditEntry
}

type FormData struct {
	Departments []domain.Department
}

func NewFormData() FormData {
	return FormData{Departments: domain.Departments}
}
