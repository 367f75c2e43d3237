package agent

import (
	_ "embed"
	"strings"
)

//go:embed prompt.txt
var systemPromptText string

// buildSystemPrompt combines the fixed assistant instructions with the
// current memory summary. The summary section is always present, even when
// memory only holds its initial placeholder, so the prompt shape stays
// stable across turns.
func buildSystemPrompt(summary string) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(systemPromptText, "\n"))
	b.WriteString("\n\n--- MEMORY SUMMARY ---\n")
	b.WriteString(summary)
	b.WriteString("\n")
	return b.String()
}
