package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prompts holds the generation templates and the phrases that route a query to summarization.
// Templates use text/template syntax
type Prompts struct {
	Answer          string   `yaml:"answer"`
	Summary         string   `yaml:"summary"`
	SummaryTriggers []string `yaml:"summary_triggers"`
}

const defaultAnswerPrompt = `You are a knowledgeable assistant.

Use ONLY the information from the context below.
Do NOT copy sentences verbatim.
Explain in your own words.
If the answer is not present, say you don't know.
{{if .History}}
Conversation so far:
{{range .History}}{{.}}
{{end}}{{end}}
Context:
{{.Context}}

Question:
{{.Question}}

Answer:`

const defaultSummaryPrompt = `You are an expert assistant.

Summarize the following document clearly and concisely.
Use your own words.
Do not quote verbatim.
Focus on key ideas, concepts, and structure.

Document content:
{{.Context}}

Summary:`

var defaultSummaryTriggers = []string{"summarize", "summary", "overview", "give an overview"}

// DefaultPrompts returns the built-in templates
func DefaultPrompts() *Prompts {
	triggers := make([]string, len(defaultSummaryTriggers))
	copy(triggers, defaultSummaryTriggers)

	return &Prompts{
		Answer:          defaultAnswerPrompt,
		Summary:         defaultSummaryPrompt,
		SummaryTriggers: triggers,
	}
}

// LoadPrompts reads prompt overrides from a YAML file. A missing file yields the defaults;
// fields absent from the file keep their default value
func LoadPrompts(path string) (*Prompts, error) {
	prompts := DefaultPrompts()

	if path == "" {
		return prompts, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return prompts, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	var overrides Prompts
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parse prompts YAML: %w", err)
	}

	if overrides.Answer != "" {
		prompts.Answer = overrides.Answer
	}
	if overrides.Summary != "" {
		prompts.Summary = overrides.Summary
	}
	if len(overrides.SummaryTriggers) > 0 {
		prompts.SummaryTriggers = overrides.SummaryTriggers
	}

	return prompts, nil
}
