package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"stressbox/internal/metrics"
	"stressbox/pkg/logger"
)

//go:embed web
var webFS embed.FS

// Page is one HTML route
type Page struct {
	Name     string
	Path     string
	Title    string
	Blurb    string
	Template string
	CubeSize int
	Card     bool // listed on the home page
}

// Pages lists every HTML route in home page order
var Pages = []Page{
	{Name: "index", Path: "/", Title: "Stress Relief Toys", Template: "index.html"},
	{Name: "slime", Path: "/slime", Title: "Slime", Blurb: "Poke a wobbly blob", Template: "slime.html", Card: true},
	{Name: "bounce", Path: "/bounce", Title: "Bouncing Balls", Blurb: "Rain down rubber balls", Template: "bounce.html", Card: true},
	{Name: "fountain", Path: "/fountain", Title: "Particle Fountain", Blurb: "Steer a stream of sparks", Template: "fountain.html", Card: true},
	{Name: "kaleidoscope", Path: "/kaleidoscope", Title: "Kaleidoscope", Blurb: "Draw in twelvefold symmetry", Template: "kaleidoscope.html", Card: true},
	{Name: "breathing", Path: "/breathing", Title: "Breathing Grid", Blurb: "Follow the color tide", Template: "breathing.html", Card: true},
	{Name: "cube3", Path: "/cube3", Title: "Cube 3×3", Blurb: "The classic puzzle", Template: "cube.html", CubeSize: 3, Card: true},
	{Name: "cube4", Path: "/cube4", Title: "Cube 4×4", Blurb: "Revenge", Template: "cube.html", CubeSize: 4, Card: true},
	{Name: "cube5", Path: "/cube5", Title: "Cube 5×5", Blurb: "Professor", Template: "cube.html", CubeSize: 5, Card: true},
	{Name: "ranking", Path: "/ranking", Title: "Visitor Ranking", Blurb: "Who visits most", Template: "ranking.html", Card: true},
}

type pageData struct {
	Page
	Pages []Page
}

// PageHandler serves the HTML pages, rendered once at startup
type PageHandler struct {
	rendered map[string][]byte
	logger   *logger.Logger
}

// NewPageHandler renders every page. It fails if a template is broken.
func NewPageHandler(logger *logger.Logger) (*PageHandler, error) {
	h := &PageHandler{
		rendered: make(map[string][]byte, len(Pages)),
		logger:   logger,
	}

	for _, p := range Pages {
		tmpl, err := template.ParseFS(webFS, "web/layout.html", "web/pages/"+p.Template)
		if err != nil {
			return nil, fmt.Errorf("failed to parse page %s: %w", p.Name, err)
		}

		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, "layout", pageData{Page: p, Pages: Pages}); err != nil {
			return nil, fmt.Errorf("failed to render page %s: %w", p.Name, err)
		}
		h.rendered[p.Name] = buf.Bytes()
	}

	logger.WithField("pages", len(h.rendered)).Info("Pages rendered")
	return h, nil
}

// Serve returns the handler for the named page
func (h *PageHandler) Serve(name string) http.HandlerFunc {
	body := h.rendered[name]
	return func(w http.ResponseWriter, r *http.Request) {
		metrics.PageViews.WithLabelValues(name).Inc()

		w.Header().Set("Content-Type", "text/html;charset=UTF-8")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(body); err != nil {
			h.logger.WithError(err).Debug("Failed to write page")
		}
	}
}

// RegisterRoutes registers a GET route per page
func (h *PageHandler) RegisterRoutes(r chi.Router) {
	for _, p := range Pages {
		r.Get(p.Path, h.Serve(p.Name))
	}
}
