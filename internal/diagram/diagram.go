// Package diagram extracts mermaid diagram blocks from generated answers
// so the display surface can render them separately.
package diagram

import "regexp"

var mermaidBlock = regexp.MustCompile("(?s)```mermaid\n(.*?)\n```")

// Extract returns the inner content of every fenced mermaid block in order
// of appearance. The answer text itself is left untouched; extraction is
// read-only and zero matches is a normal result.
func Extract(answer string) []string {
	matches := mermaidBlock.FindAllStringSubmatch(answer, -1)
	if len(matches) == 0 {
		return nil
	}
	blocks := make([]string, len(matches))
	for i, m := range matches {
		blocks[i] = m[1]
	}
	return blocks
}
