package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/canopus-dev/gitsleuth/internal/domain"
)

// DefaultSystemPrompt guides answer synthesis when the request carries no
// override. It is also what GET /api/system-prompt serves.
const DefaultSystemPrompt = `You are a helpful engineering assistant that answers questions about an organization's GitHub activity. You are given search results from the organization's issues, pull requests, code, and commits. Ground your answer in those results: cite issue and PR numbers, file paths, and commit SHAs where relevant, and include their URLs. If the results do not contain enough information to answer, say so plainly instead of guessing.`

const extractionSystemPrompt = `You derive GitHub search keywords from questions. Reply with a JSON array of 1 to 5 short keyword strings and nothing else. Each keyword should be 1-3 words suitable for GitHub's search syntax. No explanations, no markdown.`

// maxKeywords caps extraction output regardless of what the model returns.
const maxKeywords = 8

// maxBodyChars bounds how much of an issue or PR body enters the synthesis
// context.
const maxBodyChars = 400

// ExtractKeywords asks the provider to turn a question into search keywords.
func ExtractKeywords(ctx context.Context, p Provider, question, apiKey string) ([]string, error) {
	text, err := p.Complete(ctx, CompletionRequest{
		System:  extractionSystemPrompt,
		Prompt:  fmt.Sprintf("Question: %s", question),
		APIKey:  apiKey,
		Purpose: "keywords",
	})
	if err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}

	keywords := parseKeywords(text)
	if len(keywords) > maxKeywords {
		keywords = keywords[:maxKeywords]
	}
	return keywords, nil
}

// parseKeywords reads the model's reply as a JSON string array, tolerating
// code fences and prose around it. A reply with no parsable array falls
// back to line splitting so a chatty model still yields something usable.
func parseKeywords(text string) []string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	// Find the array even when the model wraps it in prose.
	if start := strings.Index(text, "["); start >= 0 {
		if end := strings.LastIndex(text, "]"); end > start {
			var parsed []string
			if err := json.Unmarshal([]byte(text[start:end+1]), &parsed); err == nil {
				return cleanKeywords(parsed)
			}
		}
	}

	return cleanKeywords(strings.Split(text, "\n"))
}

func cleanKeywords(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		k = strings.TrimSpace(strings.Trim(k, `-*"'`))
		if k != "" {
			out = append(out, k)
		}
	}
	return out
}

// Synthesize asks the provider for a final answer grounded in the search
// results. systemPrompt overrides DefaultSystemPrompt when non-empty.
func Synthesize(
	ctx context.Context, p Provider,
	question string, bundle domain.Bundle, systemPrompt, apiKey string,
) (string, error) {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	answer, err := p.Complete(ctx, CompletionRequest{
		System:  systemPrompt,
		Prompt:  renderSynthesisPrompt(question, bundle),
		APIKey:  apiKey,
		Purpose: "synthesis",
	})
	if err != nil {
		return "", fmt.Errorf("synthesize answer: %w", err)
	}
	return answer, nil
}

// renderSynthesisPrompt lays the bundle out as a bounded plain-text context
// block ahead of the question.
func renderSynthesisPrompt(question string, b domain.Bundle) string {
	var sb strings.Builder

	sb.WriteString("Search results from the organization's GitHub:\n")

	sb.WriteString("\n## Issues\n")
	if len(b.Issues) == 0 {
		sb.WriteString("(none found)\n")
	}
	for _, is := range b.Issues {
		fmt.Fprintf(&sb, "- [%s#%d] %s (%s, by %s)\n  %s\n  %s\n",
			is.Repository, is.Number, is.Title, is.State, is.Author,
			truncate(is.Body, maxBodyChars), is.URL)
	}

	sb.WriteString("\n## Pull requests\n")
	if len(b.PullRequests) == 0 {
		sb.WriteString("(none found)\n")
	}
	for _, pr := range b.PullRequests {
		fmt.Fprintf(&sb, "- [%s#%d] %s (%s, by %s)\n  %s\n  %s\n",
			pr.Repository, pr.Number, pr.Title, pr.State, pr.Author,
			truncate(pr.Body, maxBodyChars), pr.URL)
	}

	sb.WriteString("\n## Code files\n")
	if len(b.Code) == 0 {
		sb.WriteString("(none found)\n")
	}
	for _, cf := range b.Code {
		fmt.Fprintf(&sb, "- %s in %s\n  %s\n", cf.Path, cf.Repository, cf.URL)
	}

	sb.WriteString("\n## Commits\n")
	if len(b.Commits) == 0 {
		sb.WriteString("(none found)\n")
	}
	for _, cm := range b.Commits {
		fmt.Fprintf(&sb, "- %.12s %s (%s, by %s)\n  %s\n",
			cm.SHA, truncate(cm.Message, 120), cm.Repository, cm.Author, cm.URL)
	}

	fmt.Fprintf(&sb, "\nQuestion: %s\n", question)
	return sb.String()
}

// truncate cuts s after at most n bytes, backing up to a rune boundary so
// multi-byte characters are never split.
func truncate(s string, n int) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "…"
}
