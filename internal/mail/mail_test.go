package mail

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemplatesEscapeUserInput(t *testing.T) {
	m := NewApplicant("boss@acme.io", "Go <Dev>", "<script>alert(1)</script>", "https://app/company/applications")
	assert.Equal(t, "boss@acme.io", m.To)
	assert.Equal(t, "New applicant for Go <Dev>", m.Subject)
	assert.Contains(t, m.HTML, "Go &lt;Dev&gt;")
	assert.NotContains(t, m.HTML, "<script>")

	w := Welcome("a@b.c", "ann", "employer", "https://app")
	assert.Contains(t, w.HTML, "company account")

	r := ResetPassword("a@b.c", "https://app/reset-password?token=abc", 30)
	assert.Contains(t, r.HTML, "https://app/reset-password?token=abc")
	assert.Contains(t, r.HTML, "30 minutes")
}

func TestBuildRaw(t *testing.T) {
	raw := string(buildRaw("JobHunter <no@reply.io>", Message{To: "a@b.c", Subject: "Grüße", HTML: "<p>x</p>"}))
	assert.True(t, strings.HasPrefix(raw, "From: JobHunter <no@reply.io>\r\nTo: a@b.c\r\n"))
	assert.Contains(t, raw, "Subject: =?utf-8?q?")
	assert.True(t, strings.HasSuffix(raw, "\r\n\r\n<p>x</p>"))
}

func TestLogSender(t *testing.T) {
	assert.NoError(t, LogSender{}.Send(context.Background(), Message{To: "a@b.c"}))
}
