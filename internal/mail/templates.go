package mail

import (
	"bytes"
	"html/template"
)

var (
	welcomeTmpl = template.Must(template.New("welcome").Parse(
		`<h2>Welcome to JobHunter, {{.Username}}!</h2>
<p>Your {{if eq .Role "employer"}}company{{else}}job seeker{{end}} account is ready.</p>
<p><a href="{{.URL}}">Open your dashboard</a></p>`))

	resetTmpl = template.Must(template.New("reset").Parse(
		`<h2>Reset your password</h2>
<p>We received a request to reset the password of your JobHunter account.
The link below is valid for {{.Minutes}} minutes.</p>
<p><a href="{{.URL}}">Choose a new password</a></p>
<p>If you did not ask for this, you can ignore this email.</p>`))

	applicantTmpl = template.Must(template.New("applicant").Parse(
		`<h2>New applicant for {{.JobTitle}}</h2>
<p>{{.Applicant}} applied to your job posting.</p>
<p><a href="{{.URL}}">Review applications</a></p>`))
)

func render(t *template.Template, data any) string {
	var b bytes.Buffer
	if err := t.Execute(&b, data); err != nil {
		// templates are static; an error means a programming mistake
		panic(err)
	}
	return b.String()
}

// Welcome is sent after signup.
func Welcome(to, username, role, dashboardURL string) Message {
	return Message{
		To:      to,
		Subject: "Welcome to JobHunter",
		HTML:    render(welcomeTmpl, map[string]string{"Username": username, "Role": role, "URL": dashboardURL}),
	}
}

// ResetPassword carries the reset link.
func ResetPassword(to, resetURL string, minutes int) Message {
	return Message{
		To:      to,
		Subject: "Reset your JobHunter password",
		HTML:    render(resetTmpl, map[string]any{"URL": resetURL, "Minutes": minutes}),
	}
}

// NewApplicant tells an employer that someone applied to one of its jobs.
func NewApplicant(to, jobTitle, applicant, applicationsURL string) Message {
	return Message{
		To:      to,
		Subject: "New applicant for " + jobTitle,
		HTML:    render(applicantTmpl, map[string]string{"JobTitle": jobTitle, "Applicant": applicant, "URL": applicationsURL}),
	}
}
