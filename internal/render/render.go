// Package render turns a priced invoice into a document.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

//go:embed templates/*
var templateFS embed.FS

type Line struct {
	ProjectTitle string
	Description  string
	Hours        decimal.Decimal
	Rate         decimal.Decimal
	Cost         decimal.Decimal
}

type Invoice struct {
	ID            uuid.UUID
	CompanyName   string
	ClientName    string
	ClientEmail   string
	FromDate      time.Time
	ToDate        time.Time
	GeneratedDate time.Time
	Lines         []Line
	Total         decimal.Decimal
}

// Document is a rendered file ready to be stored.
type Document struct {
	Body        []byte
	ContentType string
	Extension   string
}

type Renderer interface {
	Render(inv Invoice) (*Document, error)
}

type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	funcMap := template.FuncMap{
		"money": func(d decimal.Decimal) string {
			return d.StringFixed(2)
		},
		"date": func(t time.Time) string {
			return t.Format("2006-01-02")
		},
		"inc": func(i int) int {
			return i + 1
		},
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse invoice templates: %w", err)
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

func (r *HTMLRenderer) Render(inv Invoice) (*Document, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "invoice.html", inv); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", inv.ID, err)
	}
	return &Document{
		Body:        buf.Bytes(),
		ContentType: "text/html; charset=utf-8",
		Extension:   ".html",
	}, nil
}
