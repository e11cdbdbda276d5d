package notifications

import (
	"bytes"
	"html/template"
	"log"
)

const layout = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #222;">
<p>Hi {{.Name}},</p>
{{template "content" .}}
<p>Thanks,<br>The Listings Team</p>
</body>
</html>`

var (
	postCreatedTmpl = mustTemplate("post_created",
		`<p>Your post <strong>{{.Title}}</strong> has been created and is waiting for review.</p>
<p>You will receive another email once an administrator approves it.</p>`)

	postApprovedTmpl = mustTemplate("post_approved",
		`<p>Good news! Your post <strong>{{.Title}}</strong> has been approved and is now visible to everyone.</p>`)

	postDeactivatedTmpl = mustTemplate("post_deactivated",
		`<p>Your post <strong>{{.Title}}</strong> has been deactivated after a review of reports filed against it.</p>
<p>It no longer appears in public listings.</p>`)

	reportCreatedTmpl = mustTemplate("report_created",
		`<p>We received your report about <strong>{{.Title}}</strong>.</p>
<p>Reason: {{.Reason}}</p>
{{if .Content}}<p>Details: {{.Content}}</p>{{end}}
<p>An administrator will review it shortly.</p>`)
)

func mustTemplate(name, content string) *template.Template {
	root := template.Must(template.New(name).Parse(layout))
	template.Must(root.New("content").Parse(content))
	return root
}

type emailData struct {
	Name    string
	Title   string
	Reason  string
	Content string
}

func render(t *template.Template, data emailData) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		log.Printf("Failed to render %s email: %v", t.Name(), err)
		return ""
	}
	return buf.String()
}

func RenderPostCreated(name, title string) string {
	return render(postCreatedTmpl, emailData{Name: name, Title: title})
}

func RenderPostApproved(name, title string) string {
	return render(postApprovedTmpl, emailData{Name: name, Title: title})
}

func RenderPostDeactivated(name, title string) string {
	return render(postDeactivatedTmpl, emailData{Name: name, Title: title})
}

func RenderReportCreated(name, postTitle, reason, content string) string {
	return render(reportCreatedTmpl, emailData{Name: name, Title: postTitle, Reason: reason, Content: content})
}
