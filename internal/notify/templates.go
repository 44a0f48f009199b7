// internal/notify/templates.go
//
// Email bodies.  Text parts use text/template, HTML parts html/template.
// Field values reaching these templates are sanitizer output and already
// HTML-safe, so HTML views carry them as template.HTML while text views
// carry them through sanitize.Text.
package notify

import (
	htmltpl "html/template"
	"io"
	"strings"
	texttpl "text/template"

	"github.com/yanizio/perks/internal/form"
)

// field is one labelled line in an admin message.
type field struct {
	Name string
	Text string
	HTML htmltpl.HTML
}

type adminView struct {
	Label     string
	ID        string
	CreatedAt string
	Fields    []field
}

type userView struct {
	NameText string
	NameHTML htmltpl.HTML
	Body     string
}

var adminText = texttpl.Must(texttpl.New("admin.txt").Parse(
	`New {{.Label}} submission {{.ID}} at {{.CreatedAt}}
{{range .Fields}}
{{.Name}}: {{.Text}}{{end}}
`))

var adminHTML = htmltpl.Must(htmltpl.New("admin.html").Parse(
	`<h2>New {{.Label}} submission</h2>
<p><small>{{.ID}} &middot; {{.CreatedAt}}</small></p>
<table>{{range .Fields}}
<tr><th align="left" valign="top">{{.Name}}</th><td>{{.HTML}}</td></tr>{{end}}
</table>
`))

var userText = texttpl.Must(texttpl.New("user.txt").Parse(
	`Hi{{if .NameText}} {{.NameText}}{{end}},

{{.Body}}

The Perks team
`))

var userHTML = htmltpl.Must(htmltpl.New("user.html").Parse(
	`<p>Hi{{if .NameHTML}} {{.NameHTML}}{{end}},</p>
<p>{{.Body}}</p>
<p>The Perks team</p>
`))

// userCopy is the per-kind confirmation wording.
type userCopy struct {
	Subject   string
	Body      string
	NameField string // field greeted by name, if present
}

var userCopies = map[form.Kind]userCopy{
	form.KindContact: {
		Subject:   "We received your message",
		Body:      "Thanks for getting in touch. Our team reads every message and will reply soon.",
		NameField: "name",
	},
	form.KindPartner: {
		Subject:   "Thanks for your partner application",
		Body:      "We have your application and will review your offer within a few business days.",
		NameField: "contact",
	},
	form.KindLead: {
		Subject:   "You're on the list",
		Body:      "Thanks for signing up. We'll send new perks your way.",
		NameField: "name",
	},
}

type executor interface {
	Execute(w io.Writer, data any) error
}

func render(t executor, data any) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// safeHTML marks sanitizer output as trusted markup.
func safeHTML(s string) htmltpl.HTML { return htmltpl.HTML(s) }
