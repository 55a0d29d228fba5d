package landing

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/wolfman30/nutrition-consult/internal/booking"
	"github.com/wolfman30/nutrition-consult/internal/catalog"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// pageData feeds every view. Catalog content is static; the rest comes from
// the visitor session.
type pageData struct {
	Title        string
	Session      *booking.Session
	FormReady    bool
	Services     []string
	Stats        []catalog.Stat
	Testimonials []catalog.Testimonial
	Active       int
	Plans        []catalog.Plan
	NextSteps    []string
	Reasons      []string
	Support      catalog.Contact
	Year         int
}

type views struct {
	tmpl *template.Template
}

func loadViews() (*views, error) {
	tmpl, err := template.New("landing").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
		"tel": func(phone string) template.URL { return template.URL("tel:" + phone) },
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("landing: parse templates: %w", err)
	}
	return &views{tmpl: tmpl}, nil
}

func newPageData(sess *booking.Session, merchant string, now time.Time) pageData {
	return pageData{
		Title:        merchant,
		Session:      sess,
		FormReady:    sess.Form.Ready(),
		Services:     catalog.Services(),
		Stats:        catalog.Stats(),
		Testimonials: catalog.Testimonials(),
		Active:       sess.TestimonialIndex,
		Plans:        catalog.Plans(),
		NextSteps:    catalog.NextSteps(),
		Reasons:      catalog.FailureReasons(),
		Support:      catalog.Support(),
		Year:         now.Year(),
	}
}

// templateFor picks the view for the session's current page.
func templateFor(page booking.Page) string {
	switch page {
	case booking.PageSuccess:
		return "success"
	case booking.PageFailure:
		return "failure"
	default:
		return "home"
	}
}

func (v *views) render(w http.ResponseWriter, data pageData) error {
	var buf bytes.Buffer
	if err := v.tmpl.ExecuteTemplate(&buf, templateFor(data.Session.Page), data); err != nil {
		return fmt.Errorf("landing: render %s: %w", data.Session.Page, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, err := buf.WriteTo(w)
	return err
}

func staticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
