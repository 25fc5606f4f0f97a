package rag

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/futig/mini-rag/internal/config"
)

const contextSeparator = "\n\n"

type promptSet struct {
	answer   *template.Template
	summary  *template.Template
	triggers []string
}

type promptData struct {
	Context  string
	Question string
	History  []string
}

func newPromptSet(p config.Prompts) (*promptSet, error) {
	answer, err := template.New("answer").Parse(p.Answer)
	if err != nil {
		return nil, fmt.Errorf("parse answer prompt: %w", err)
	}

	summary, err := template.New("summary").Parse(p.Summary)
	if err != nil {
		return nil, fmt.Errorf("parse summary prompt: %w", err)
	}

	triggers := make([]string, 0, len(p.SummaryTriggers))
	for _, t := range p.SummaryTriggers {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			triggers = append(triggers, t)
		}
	}

	return &promptSet{answer: answer, summary: summary, triggers: triggers}, nil
}

func (ps *promptSet) answerPrompt(question string, contexts, history []string) (string, error) {
	return render(ps.answer, promptData{
		Context:  strings.Join(contexts, contextSeparator),
		Question: question,
		History:  history,
	})
}

func (ps *promptSet) summaryPrompt(chunks []string) (string, error) {
	return render(ps.summary, promptData{Context: strings.Join(chunks, contextSeparator)})
}

func render(t *template.Template, data promptData) (string, error) {
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("execute %s prompt: %w", t.Name(), err)
	}

	return strings.TrimSpace(sb.String()), nil
}
