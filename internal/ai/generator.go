// Package ai generates job descriptions with a large language model.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"github.com/iliyamo/jobhunter/internal/config"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("ai: empty response")

// JobDetails are the facts the employer typed into the job form.
type JobDetails struct {
	Title       string   `json:"title"`
	CompanyName string   `json:"companyName"`
	Location    string   `json:"location"`
	Type        string   `json:"type"`
	WorkMode    string   `json:"workMode"`
	Experience  int      `json:"experience"`
	SalaryFrom  int      `json:"salaryFrom"`
	SalaryTo    int      `json:"salaryTo"`
	Skills      []string `json:"skills"`
	Notes       string   `json:"notes"`
}

// Generator writes job descriptions.
type Generator struct {
	model llms.Model
}

// New connects to Gemini with the configured API key and model.
func New(ctx context.Context, cfg config.AIConfig) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("ai: GEMINI_API_KEY is empty")
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(cfg.APIKey),
		googleai.WithDefaultModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("ai: create gemini client: %w", err)
	}
	return NewWithModel(llm), nil
}

// NewWithModel wraps any langchaingo model.
func NewWithModel(m llms.Model) *Generator { return &Generator{model: m} }

const descriptionPrompt = `You are an experienced technical recruiter writing a job posting.
Write an engaging job description in HTML using only <h3>, <p>, <ul>, <li> and <strong> tags.
Include the sections: About the role, Responsibilities, Requirements, Nice to have, What we offer.
Do not invent a salary, a company history or contact details. Do not wrap the answer in markdown.

### JOB DETAILS
%s`

// Prompt renders the instruction sent to the model for d.
func Prompt(d JobDetails) string {
	var b strings.Builder
	line := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			fmt.Fprintf(&b, "- %s: %s\n", k, v)
		}
	}
	line("Title", d.Title)
	line("Company", d.CompanyName)
	line("Location", d.Location)
	line("Employment type", d.Type)
	line("Work mode", d.WorkMode)
	if d.Experience > 0 {
		line("Years of experience", fmt.Sprint(d.Experience))
	}
	if d.SalaryFrom > 0 && d.SalaryTo > 0 {
		line("Salary range", fmt.Sprintf("%d - %d", d.SalaryFrom, d.SalaryTo))
	}
	line("Skills", strings.Join(d.Skills, ", "))
	line("Additional notes", d.Notes)
	return fmt.Sprintf(descriptionPrompt, b.String())
}

// JobDescription asks the model for an HTML job description.
func (g *Generator) JobDescription(ctx context.Context, d JobDetails) (string, error) {
	resp, err := llms.GenerateFromSinglePrompt(ctx, g.model, Prompt(d), llms.WithTemperature(0.7))
	if err != nil {
		return "", fmt.Errorf("ai: generate: %w", err)
	}
	out := stripFences(resp)
	if out == "" {
		return "", ErrEmptyResponse
	}
	return out, nil
}

// stripFences removes a ```html ... ``` wrapper some models add anyway.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
