package notify

import (
	"bytes"
	"fmt"
	"html/template"
)

// DefaultMailTemplate renders a reminder email when the manifest does not
// publish its own template. Templates use html/template syntax over
// EmailParams.
const DefaultMailTemplate = `<html>
<body style="font-family: Arial, Helvetica, sans-serif; color: #222;">
  <p>Dear {{.Name}},</p>
  <p>This is a reminder about your MOC courses:</p>
  {{range .Attempts}}
  <h3>{{.Title}}</h3>
  <ul>
    {{range .Courses}}
    <li>
      <strong>{{.Name}}</strong>
      {{if .DiffStartDay}}starts today ({{.StartDate}}).{{end}}
      {{if .DiffDueDay}}{{if gt (deref .DiffDueDay) 0}}was due on {{.DueDate}}.{{else}}is due on {{.DueDate}}.{{end}}{{end}}
    </li>
    {{end}}
  </ul>
  {{end}}
  <p>Please log in to your learning platform to continue.</p>
</body>
</html>`

var templateFuncs = template.FuncMap{
	"deref": func(p *int) int {
		if p == nil {
			return 0
		}
		return *p
	},
}

// Render produces the HTML body for one email. An empty source falls back
// to the default template.
func Render(src string, params EmailParams) (string, error) {
	if src == "" {
		src = DefaultMailTemplate
	}
	t, err := template.New("reminder").Funcs(templateFuncs).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parse mail template: %w", err)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, params); err != nil {
		return "", fmt.Errorf("render mail template: %w", err)
	}
	return buf.String(), nil
}
