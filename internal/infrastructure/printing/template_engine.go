package printing

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

// TemplateEngine renders documents with the embedded html templates
type TemplateEngine struct {
	templates map[DocumentKind]*template.Template
	dateFmt   string
}

type TemplateEngineOption func(*TemplateEngine)

// WithDateFormat changes the layout used by formatDate
func WithDateFormat(layout string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.dateFmt = layout
	}
}

func NewTemplateEngine(opts ...TemplateEngineOption) (*TemplateEngine, error) {
	e := &TemplateEngine{
		templates: make(map[DocumentKind]*template.Template),
		dateFmt:   "2006-01-02",
	}
	for _, opt := range opts {
		opt(e)
	}

	funcMap := template.FuncMap{
		"formatMoney":   formatMoney,
		"formatDecimal": formatDecimal,
		"formatPercent": formatPercent,
		"formatDate":    e.formatDate,
		"title":         titleCase,
		"upper":         strings.ToUpper,
		"isPositive":    func(d decimal.Decimal) bool { return d.IsPositive() },
	}

	for _, kind := range []DocumentKind{KindInvoice, KindQuote} {
		tmpl, err := template.New("layout.html").Funcs(funcMap).
			ParseFS(templateFS, "templates/layout.html", "templates/"+string(kind)+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", kind, err)
		}
		e.templates[kind] = tmpl
	}
	return e, nil
}

// Render produces a complete HTML document for the view
func (e *TemplateEngine) Render(_ context.Context, view *DocumentView) (string, error) {
	if view == nil {
		return "", NewRenderError(ErrCodeTemplate, "document view is nil", nil)
	}
	tmpl, ok := e.templates[view.Kind]
	if !ok {
		return "", NewRenderError(ErrCodeTemplate, "unknown document kind: "+string(view.Kind), nil)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, view); err != nil {
		return "", NewRenderError(ErrCodeTemplate, "failed to execute template", err)
	}
	return buf.String(), nil
}

func (e *TemplateEngine) formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(e.dateFmt)
}

// formatMoney groups thousands and appends the ISO code.
// Example: 1234.5, "eur" -> "1,234.50 EUR"
func formatMoney(d decimal.Decimal, code string) string {
	amount := formatDecimal(d)
	unit, err := currency.ParseISO(code)
	if err != nil {
		return amount
	}
	return amount + " " + unit.String()
}

// formatDecimal formats with two decimals and thousand separators
func formatDecimal(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	intPart, decPart, _ := strings.Cut(d.StringFixed(2), ".")
	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return sign + result.String() + "." + decPart
}

// formatPercent drops trailing zeros: 20 -> "20%", 5.5 -> "5.5%"
func formatPercent(d decimal.Decimal) string {
	return d.Round(2).String() + "%"
}

// titleCase turns status codes into labels: "partially_paid" -> "Partially Paid".
// A Caser is stateful so one is created per call.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(s, "_", " "))
}
