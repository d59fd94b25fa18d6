package http

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	stdhttp "net/http"

	"narrativeradar/internal/platform/logger"
	dom "narrativeradar/internal/services/narratives/domain"
)

//go:embed templates/*.html
var templates embed.FS

type dashboardPage struct {
	tmpl *template.Template
}

func mustDashboard() *dashboardPage {
	t := template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
		"usd":   USD,
		"pct":   Pct,
		"score": func(v float64) string { return fmt.Sprintf("%.1f", v) },
		"inc":   func(i int) int { return i + 1 },
	}).ParseFS(templates, "templates/dashboard.html"))
	return &dashboardPage{tmpl: t}
}

// USD abbreviates a dollar amount: $1.23B, $45.6M, $7.8K
func USD(v float64) string {
	a := math.Abs(v)
	switch {
	case a >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case a >= 1e6:
		return fmt.Sprintf("$%.1fM", v/1e6)
	case a >= 1e3:
		return fmt.Sprintf("$%.1fK", v/1e3)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

// Pct renders a signed percentage with one decimal
func Pct(v float64) string { return fmt.Sprintf("%+.1f%%", v) }

func (h *handlers) dashboard(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	res, err := h.svc.Run(r.Context(), false)
	if err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("dashboard run failed")
		stdhttp.Error(w, "narratives unavailable", stdhttp.StatusServiceUnavailable)
		return
	}
	body, err := h.page.render(res)
	if err != nil {
		logger.C(r.Context()).Error().Err(err).Msg("dashboard render failed")
		stdhttp.Error(w, "render failed", stdhttp.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(body)
}

func (p *dashboardPage) render(res dom.Result) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.tmpl.Execute(&buf, res); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
