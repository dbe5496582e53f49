package diagram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSingleBlock(t *testing.T) {
	answer := "Here is the architecture diagram:\n```mermaid\ngraph TD\nA[Client] --> B[Load Balancer]\n```\nHope this helps!"
	blocks := Extract(answer)
	require.Len(t, blocks, 1)
	assert.Equal(t, "graph TD\nA[Client] --> B[Load Balancer]", blocks[0])
	assert.NotContains(t, blocks[0], "```")
}

func TestExtractMultipleBlocksInOrder(t *testing.T) {
	answer := "First:\n```mermaid\ngraph TD\nA --> B\n```\nSecond:\n```mermaid\ngraph LR\nC --> D\n```\n"
	blocks := Extract(answer)
	require.Len(t, blocks, 2)
	assert.Equal(t, "graph TD\nA --> B", blocks[0])
	assert.Equal(t, "graph LR\nC --> D", blocks[1])
}

func TestExtractNoBlocks(t *testing.T) {
	assert.Empty(t, Extract("plain text answer with no diagrams"))
	assert.Empty(t, Extract("```go\nfmt.Println(\"not mermaid\")\n```"))
	assert.Empty(t, Extract(""))
}

func TestExtractIgnoresUnclosedFence(t *testing.T) {
	assert.Empty(t, Extract("```mermaid\ngraph TD\nA --> B"))
}
