package notify

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// md renders markdown to HTML; raw HTML in the source is dropped.
var md = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

var welcomeTemplate = template.Must(template.New("welcome").Parse(`# Welcome to {{.AppName}}, {{.Name}}!

Your trainer has created an account for you.

- **Email:** {{.Email}}
- **Starter password:** ` + "`{{.StarterPassword}}`" + `

You will be asked to choose a new password the first time you sign in.
{{if .LoginURL}}
[Sign in]({{.LoginURL}})
{{end}}`))

// Welcome holds what the new-client email needs.
type Welcome struct {
	AppName         string
	LoginURL        string
	Name            string
	Email           string
	StarterPassword string
}

// ComposeWelcome renders the welcome email for a freshly created client.
func ComposeWelcome(w Welcome) (Message, error) {
	w.Name = escapeMarkdown(w.Name)

	var src bytes.Buffer
	if err := welcomeTemplate.Execute(&src, w); err != nil {
		return Message{}, fmt.Errorf("render welcome template: %w", err)
	}
	var html bytes.Buffer
	if err := md.Convert(src.Bytes(), &html); err != nil {
		return Message{}, fmt.Errorf("render welcome markdown: %w", err)
	}
	return Message{
		To:      []string{w.Email},
		Subject: fmt.Sprintf("Your %s account", w.AppName),
		HTML:    html.String(),
	}, nil
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
