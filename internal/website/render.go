package website

import (
	"embed"
	"html/template"
	"io"
	"time"

	"github.com/mrlokans/weddingplanner/internal/blog"
	"github.com/mrlokans/weddingplanner/internal/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

// RenderedSection is a section with its markdown body converted to HTML.
type RenderedSection struct {
	Type  entities.SectionType
	Title string
	HTML  template.HTML
}

type pageData struct {
	Site     *entities.WeddingWebsite
	Theme    Theme
	Sections []RenderedSection
	Story    template.HTML
	ShareURL string
	RSVPOpen bool
}

// Renderer produces the public HTML page of a published site.
type Renderer struct {
	tmpl    *template.Template
	catalog *Catalog
	baseURL string
	now     func() time.Time
}

func NewRenderer(catalog *Catalog, baseURL string) (*Renderer, error) {
	tmpl, err := template.New("site.html").Funcs(template.FuncMap{
		"css": func(s string) template.CSS { return template.CSS(cssSafe(s)) },
	}).ParseFS(templateFS, "templates/site.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{tmpl: tmpl, catalog: catalog, baseURL: baseURL, now: time.Now}, nil
}

// Render writes site as HTML. Unknown themes fall back to the catalog default.
func (r *Renderer) Render(w io.Writer, site *entities.WeddingWebsite) error {
	theme, ok := r.catalog.Get(site.Theme)
	if !ok {
		theme = r.catalog.Default()
	}

	visible := VisibleSections(site)
	sections := make([]RenderedSection, 0, len(visible))
	for _, s := range visible {
		if s.Type == entities.SectionRSVP && !site.RSVPEnabled {
			continue
		}
		rendered, err := blog.Render(s.Body)
		if err != nil {
			return err
		}
		sections = append(sections, RenderedSection{
			Type:  s.Type,
			Title: s.Title,
			HTML:  template.HTML(rendered), // sanitized by blog.Render
		})
	}

	story := template.HTML(site.Story) // sanitized on save
	return r.tmpl.Execute(w, pageData{
		Site:     site,
		Theme:    theme,
		Sections: sections,
		Story:    story,
		ShareURL: ShareURL(r.baseURL, site.Slug),
		RSVPOpen: RSVPOpen(site, r.now()),
	})
}

// cssSafe keeps the characters used by colour codes and font stacks.
func cssSafe(s string) string {
	out := make([]rune, 0, len(s))
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			out = append(out, c)
		case c == '#' || c == ' ' || c == ',' || c == '-' || c == '.':
			out = append(out, c)
		}
	}
	return string(out)
}
