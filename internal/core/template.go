package core

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// LineTemplate renders one line of an audit file, e.g. "{{.ID}},{{.Name}}".
// Sprig functions are available, so "{{.Name | quote}}" works too.
type LineTemplate struct {
	tmpl *template.Template
}

// ParseLineTemplate compiles content once for repeated rendering.
// missingkey=error turns typos in field names into run errors.
func ParseLineTemplate(content string) (*LineTemplate, error) {
	tmpl, err := template.New("line").Funcs(sprig.TxtFuncMap()).Option("missingkey=error").Parse(content)
	if err != nil {
		return nil, fmt.Errorf("invalid line template %q: %w", content, err)
	}
	return &LineTemplate{tmpl: tmpl}, nil
}

// Render executes the template with data.
func (l *LineTemplate) Render(data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := l.tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
