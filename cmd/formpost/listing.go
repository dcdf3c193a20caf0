package main

import (
	"io"
	"text/tabwriter"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-formpost/pkg/model"
)

// fieldsTemplate renders the `fields` listing. Cells are tab separated and
// aligned by a tabwriter afterwards.
const fieldsTemplate = `{% autoescape off %}{{ form.Method }} {{ form.Action }}
NAME	TYPE	REQUIRED	DEFAULT	LABEL
{% for row in rows %}{{ row.Name }}	{{ row.Kind }}	{{ row.Required }}	{{ row.Default }}	{{ row.Label }}
{% endfor %}{% endautoescape %}`

var fieldsListing = pongo2.Must(pongo2.FromString(fieldsTemplate))

type fieldRow struct {
	Name     string
	Kind     string
	Required string
	Default  string
	Label    string
}

// writeFields renders form as an aligned table.
func writeFields(out io.Writer, form model.FormModel) error {
	rows := make([]fieldRow, 0, len(form.Fields))
	for _, field := range form.Fields {
		rows = append(rows, fieldRow{
			Name:     field.Name,
			Kind:     fieldKind(field),
			Required: yesNo(field.Required),
			Default:  defaultText(field),
			Label:    field.DisplayLabel(),
		})
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if err := fieldsListing.ExecuteWriter(pongo2.Context{"form": form, "rows": rows}, tw); err != nil {
		return err
	}
	return tw.Flush()
}
