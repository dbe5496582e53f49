// Package prompt turns retrieved chunks, session history and an operating
// mode into the structured prompt the generation step consumes.
package prompt

import (
	"fmt"
	"path/filepath"
	"strings"

	"infraguard/internal/domain"
)

const contextSlot = "{context}"

const architectTemplate = `You are a Senior Cloud Architect reviewing infrastructure-as-code.
Answer the question based ONLY on the following context:

{context}

Rules:
- Cite the source filename (for example main.tf) for every resource or setting you mention.
- End every answer with a "Sources used:" line listing the filenames you relied on.
- When asked for a diagram, emit one fenced code block tagged mermaid using
  "graph TD" directed-graph syntax, and put every node label in double quotes
  so special characters do not break the renderer.
- If you don't know, say "I cannot find it in the provided code."`

const auditorTemplate = `You are a strict Security Auditor reviewing infrastructure-as-code.
Base every finding ONLY on the following context:

{context}

For each issue found, report exactly four sections in this order:
1. Vulnerability: what is wrong and where.
2. Severity: exactly one of CRITICAL, HIGH, MEDIUM, LOW.
3. Remediation: a concrete configuration change that fixes it.
4. References: the source filename and the relevant CIS benchmark control.

If the context contains no relevant configuration, say "I cannot find it in the provided code."`

// Mode bundles the retrieval depth and system template of one operating
// mode. The auditor retrieves deeper so cross-resource issues surface.
type Mode struct {
	Name     string
	TopK     int
	Template string
}

var (
	Architect = Mode{Name: "architect", TopK: 4, Template: architectTemplate}
	Auditor   = Mode{Name: "auditor", TopK: 8, Template: auditorTemplate}
)

// ModeByName resolves a mode name; the empty string means architect.
func ModeByName(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "architect", "":
		return Architect, nil
	case "auditor":
		return Auditor, nil
	default:
		return Mode{}, fmt.Errorf("unknown mode %q (want architect or auditor)", name)
	}
}

// FormatContext concatenates retrieved chunks in the order given, each
// prefixed with its source file's basename so the model can cite it.
// Order must match retrieval order; the first chunk gets primacy.
func FormatContext(results []domain.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "### Source: %s\n%s", filepath.Base(r.Chunk.Source), r.Chunk.Text)
	}
	return b.String()
}

// SourceNames returns the ordered, de-duplicated source basenames of the
// retrieved chunks, for display alongside the answer.
func SourceNames(results []domain.SearchResult) []string {
	seen := make(map[string]struct{}, len(results))
	var names []string
	for _, r := range results {
		name := filepath.Base(r.Chunk.Source)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// AdaptHistory converts prior session turns into role-tagged prompt
// messages. Turns with an unrecognized role are dropped rather than
// failing; chronological order is preserved. The caller must not include
// the in-flight question, which Compose adds as the final message.
func AdaptHistory(turns []domain.Turn) []domain.Message {
	messages := make([]domain.Message, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case domain.RoleUser, domain.RoleAssistant:
			messages = append(messages, domain.Message{Role: t.Role, Content: t.Content})
		}
	}
	return messages
}

// Compose builds the final prompt: the mode's system template with the
// formatted context substituted in, the adapted history as structured
// messages, and the new question as the final user message.
func Compose(mode Mode, contextText string, history []domain.Message, question string) domain.Prompt {
	messages := make([]domain.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: question})
	return domain.Prompt{
		System:   strings.ReplaceAll(mode.Template, contextSlot, contextText),
		Messages: messages,
	}
}
