package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	answer string
	err    error
	prompt string
}

func (f *fakeModel) GenerateContent(_ context.Context, msgs []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, m := range msgs {
		for _, p := range m.Parts {
			if tp, ok := p.(llms.TextContent); ok {
				f.prompt += tp.Text
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.answer}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, opts ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, opts...)
}

func TestJobDescriptionStripsFences(t *testing.T) {
	m := &fakeModel{answer: "```html\n<h3>About the role</h3>\n```"}
	out, err := NewWithModel(m).JobDescription(context.Background(), JobDetails{
		Title: "Backend Engineer", Skills: []string{"Go", "MySQL"}, SalaryFrom: 1, SalaryTo: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, "<h3>About the role</h3>", out)
	assert.Contains(t, m.prompt, "- Title: Backend Engineer")
	assert.Contains(t, m.prompt, "- Skills: Go, MySQL")
	assert.Contains(t, m.prompt, "- Salary range: 1 - 2")
}

func TestJobDescriptionErrors(t *testing.T) {
	_, err := NewWithModel(&fakeModel{answer: "  "}).JobDescription(context.Background(), JobDetails{Title: "x"})
	assert.ErrorIs(t, err, ErrEmptyResponse)

	boom := errors.New("quota")
	_, err = NewWithModel(&fakeModel{err: boom}).JobDescription(context.Background(), JobDetails{Title: "x"})
	assert.ErrorIs(t, err, boom)
}

func TestPromptSkipsEmptyFields(t *testing.T) {
	p := Prompt(JobDetails{Title: "QA", SalaryFrom: 100})
	assert.Contains(t, p, "- Title: QA")
	assert.NotContains(t, p, "Salary range")
	assert.NotContains(t, p, "Company")
}
