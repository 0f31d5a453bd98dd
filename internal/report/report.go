// Package report renders the outcome of a form validation run.
package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/odvcencio/furrykit/form"
)

// Row describes one field.
type Row struct {
	Field   string
	Label   string
	Value   any
	Valid   bool
	Message string
}

// Report summarizes a validated form.
type Report struct {
	Form      string
	Valid     bool
	Submitted bool
	Rows      []Row
}

// FromValidator captures the current state of v. label maps field names to
// display labels and may be nil.
func FromValidator(name string, v *form.Validator, label func(string) string) Report {
	r := Report{
		Form:      name,
		Valid:     v.IsFormValid().Get(),
		Submitted: v.Submitted().Get(),
	}
	data := v.Data()
	for _, key := range data.Keys() {
		fv, _ := v.Validity(key)
		row := Row{
			Field:   key,
			Label:   key,
			Value:   data.Value(key),
			Valid:   fv.IsValid,
			Message: fv.ErrorMessage,
		}
		if label != nil {
			row.Label = label(key)
		}
		r.Rows = append(r.Rows, row)
	}
	return r
}

// Write renders r to w as "text", "markdown" or "html".
func Write(w io.Writer, r Report, format string) error {
	switch format {
	case "", "text":
		_, err := io.WriteString(w, r.Text())
		return err
	case "markdown", "md":
		_, err := io.WriteString(w, r.Markdown())
		return err
	case "html":
		return r.HTML(w)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Text renders one line per field.
func (r Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s\n", r.title(), verdict(r.Valid))
	for _, row := range r.Rows {
		if row.Valid {
			fmt.Fprintf(&b, "  ok    %s\n", row.Label)
			continue
		}
		fmt.Fprintf(&b, "  fail  %s: %s\n", row.Label, row.Message)
	}
	return b.String()
}

// Markdown renders a heading and a field table.
func (r Report) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", escape(r.title()))
	fmt.Fprintf(&b, "Status: **%s**\n\n", verdict(r.Valid))
	b.WriteString("| Field | Value | Result |\n")
	b.WriteString("| --- | --- | --- |\n")
	for _, row := range r.Rows {
		result := "ok"
		if !row.Valid {
			result = row.Message
		}
		fmt.Fprintf(&b, "| %s | %s | %s |\n", escape(row.Label), escape(valueString(row.Value)), escape(result))
	}
	return b.String()
}

// HTML renders the Markdown form of r as HTML.
func (r Report) HTML(w io.Writer) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(r.Markdown()), &buf); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r Report) title() string {
	if r.Form == "" {
		return "form"
	}
	return r.Form
}

func verdict(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}

func valueString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"|", `\|`,
	"*", `\*`,
	"_", `\_`,
	"<", "&lt;",
	"\n", " ",
)

func escape(s string) string {
	return markdownEscaper.Replace(s)
}
