package notification

import (
	"bytes"
	"fmt"
	"html/template"
)

const layout = `{{define "layout"}}<!DOCTYPE html>
<html><body style="font-family:Helvetica,Arial,sans-serif;color:#222;max-width:600px">
{{template "content" .}}
<p style="color:#888;font-size:12px">{{.Company}}{{if .Footer}} &middot; {{.Footer}}{{end}}</p>
</body></html>{{end}}`

const invoiceSentTmpl = `{{define "content"}}
<p>Hello {{.ClientName}},</p>
<p>Please find invoice <strong>{{.Number}}</strong> dated {{.IssueDate}} for <strong>{{.Amount}} {{.Currency}}</strong>, due on {{.DueDate}}.</p>
{{if .Link}}<p><a href="{{.Link}}">Download the PDF</a></p>{{end}}
<p>Thank you for your business.</p>
{{end}}`

const quoteSentTmpl = `{{define "content"}}
<p>Hello {{.ClientName}},</p>
<p>Here is our quote <strong>{{.Number}}</strong> for <strong>{{.Amount}} {{.Currency}}</strong>, valid until {{.DueDate}}.</p>
{{if .Link}}<p><a href="{{.Link}}">Download the PDF</a></p>{{end}}
{{end}}`

const reminderTmpl = `{{define "content"}}
<p>Hello {{.ClientName}},</p>
<p>{{.Message}}</p>
<p>Invoice {{.Number}}, outstanding balance <strong>{{.Amount}} {{.Currency}}</strong>.</p>
{{end}}`

const alertTmpl = `{{define "content"}}
<p>User <strong>{{.ClientName}}</strong> failed validation on form <strong>{{.Number}}</strong> {{.Amount}} times since {{.IssueDate}}.</p>
{{if .Message}}<p>Fields: {{.Message}}</p>{{end}}
{{end}}`

// view is the data every template receives. Fields are reused by the alert
// template to keep a single shape.
type view struct {
	Company    string
	Footer     string
	ClientName string
	Number     string
	IssueDate  string
	DueDate    string
	Amount     string
	Currency   string
	Link       string
	Message    string
}

type templates struct {
	byName map[string]*template.Template
}

func parseTemplates() (*templates, error) {
	sources := map[string]string{
		"invoice_sent":     invoiceSentTmpl,
		"quote_sent":       quoteSentTmpl,
		"payment_reminder": reminderTmpl,
		"validation_alert": alertTmpl,
	}
	t := &templates{byName: make(map[string]*template.Template, len(sources))}
	for name, src := range sources {
		tmpl, err := template.New(name).Parse(layout)
		if err != nil {
			return nil, fmt.Errorf("parse layout: %w", err)
		}
		if _, err := tmpl.Parse(src); err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		t.byName[name] = tmpl
	}
	return t, nil
}

func (t *templates) render(name string, v view) (string, error) {
	tmpl, ok := t.byName[name]
	if !ok {
		return "", fmt.Errorf("unknown template %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", v); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
