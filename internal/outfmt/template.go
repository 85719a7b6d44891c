package outfmt

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/goccy/go-json"
)

type templateKey struct{}

// WithTemplate adds a template string to the context
func WithTemplate(ctx context.Context, tmpl string) context.Context {
	return context.WithValue(ctx, templateKey{}, tmpl)
}

// GetTemplate retrieves the template string from context
func GetTemplate(ctx context.Context) string {
	if tmpl, ok := ctx.Value(templateKey{}).(string); ok {
		return tmpl
	}
	return ""
}

// templateFuncs are available to every --template:
//
//	json    indented JSON of a value
//	money   a price with two decimals ("" for missing values)
//	date    the date part of an RFC 3339 timestamp
//	join    items joined by a separator
//	default a fallback for empty values
var templateFuncs = template.FuncMap{
	"json": func(val any) (string, error) {
		buf := &bytes.Buffer{}
		enc := json.NewEncoder(buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(val); err != nil {
			return "", err
		}
		return buf.String(), nil
	},
	"money": templateMoney,
	"date":  templateDate,
	"join": func(sep string, items []any) string {
		parts := make([]string, 0, len(items))
		for _, item := range items {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, sep)
	},
	"default": func(fallback, val any) any {
		if val == nil || fmt.Sprint(val) == "" {
			return fallback
		}
		return val
	},
}

func templateMoney(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(v, 'f', 2, 64)
	case int:
		return strconv.FormatFloat(float64(v), 'f', 2, 64)
	case json.Number:
		if f, err := v.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', 2, 64)
		}
		return v.String()
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return strconv.FormatFloat(f, 'f', 2, 64)
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}

func templateDate(val any) string {
	s, ok := val.(string)
	if !ok || s == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02")
}

// WriteTemplate renders v with a Go text/template. Missing map keys render
// as their zero value.
func WriteTemplate(w io.Writer, v any, tmpl string) error {
	t, err := template.New("output").Funcs(templateFuncs).Option("missingkey=zero").Parse(tmpl)
	if err != nil {
		return formatTemplateError("invalid template", err)
	}
	if err := t.Execute(w, v); err != nil {
		return formatTemplateError("template execution error", err)
	}
	return nil
}

var templatePosition = regexp.MustCompile(`output:(\d+)(?::(\d+))?:`)

// formatTemplateError lifts the line (and column, when known) out of
// text/template errors.
func formatTemplateError(kind string, err error) error {
	m := templatePosition.FindStringSubmatch(err.Error())
	switch {
	case m == nil:
		return fmt.Errorf("%s: %w", kind, err)
	case m[2] == "":
		return fmt.Errorf("%s at line %s: %w", kind, m[1], err)
	default:
		return fmt.Errorf("%s at line %s, column %s: %w", kind, m[1], m[2], err)
	}
}
