package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infraguard/internal/domain"
)

func results() []domain.SearchResult {
	return []domain.SearchResult{
		{Chunk: domain.Chunk{Text: "resource A", Source: "/tmp/main.tf"}},
		{Chunk: domain.Chunk{Text: "resource B", Source: "/tmp/variables.tf"}},
	}
}

func TestFormatContextTagsSourcesInOrder(t *testing.T) {
	got := FormatContext(results())

	mainIdx := strings.Index(got, "### Source: main.tf")
	varIdx := strings.Index(got, "### Source: variables.tf")
	require.GreaterOrEqual(t, mainIdx, 0)
	require.Greater(t, varIdx, mainIdx, "retrieval order must be preserved")

	assert.Greater(t, strings.Index(got, "resource A"), mainIdx)
	assert.Greater(t, strings.Index(got, "resource B"), varIdx)
	assert.NotContains(t, got, "/tmp/", "context uses basenames, not full paths")
}

func TestFormatContextEmpty(t *testing.T) {
	assert.Equal(t, "", FormatContext(nil))
}

func TestSourceNamesDeduplicatesInOrder(t *testing.T) {
	rs := []domain.SearchResult{
		{Chunk: domain.Chunk{Source: "/a/main.tf"}},
		{Chunk: domain.Chunk{Source: "/a/variables.tf"}},
		{Chunk: domain.Chunk{Source: "/a/main.tf"}},
	}
	assert.Equal(t, []string{"main.tf", "variables.tf"}, SourceNames(rs))
}

func TestAdaptHistoryMapsRoles(t *testing.T) {
	turns := []domain.Turn{
		{Role: domain.RoleUser, Content: "Hello"},
		{Role: domain.RoleAssistant, Content: "Hi there"},
	}
	messages := AdaptHistory(turns)
	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, "Hello", messages[0].Content)
	assert.Equal(t, domain.RoleAssistant, messages[1].Role)
	assert.Equal(t, "Hi there", messages[1].Content)
}

func TestAdaptHistoryDropsUnknownRoles(t *testing.T) {
	turns := []domain.Turn{
		{Role: "system", Content: "ignore me"},
		{Role: domain.RoleUser, Content: "keep me"},
	}
	messages := AdaptHistory(turns)
	require.Len(t, messages, 1)
	assert.Equal(t, "keep me", messages[0].Content)
}

func TestComposeEmbedsContextInSystem(t *testing.T) {
	ctxText := FormatContext(results())
	p := Compose(Architect, ctxText, nil, "What VPCs exist?")

	assert.Contains(t, p.System, "resource A")
	assert.Contains(t, p.System, "main.tf")
	assert.NotContains(t, p.System, contextSlot)
}

func TestComposeQuestionIsFinalUserMessage(t *testing.T) {
	history := []domain.Message{
		{Role: domain.RoleUser, Content: "earlier question"},
		{Role: domain.RoleAssistant, Content: "earlier answer"},
	}
	p := Compose(Auditor, "ctx", history, "any open ports?")
	require.Len(t, p.Messages, 3)
	last := p.Messages[len(p.Messages)-1]
	assert.Equal(t, domain.RoleUser, last.Role)
	assert.Equal(t, "any open ports?", last.Content)
	assert.Equal(t, history, p.Messages[:2])
}

func TestModeRetrievalDepths(t *testing.T) {
	assert.LessOrEqual(t, Architect.TopK, 5)
	assert.GreaterOrEqual(t, Auditor.TopK, 7)
	assert.Greater(t, Auditor.TopK, Architect.TopK)
}

func TestModeByName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"architect", "architect", false},
		{"", "architect", false},
		{"Auditor", "auditor", false},
		{"builder", "", true},
	}
	for _, tt := range tests {
		m, err := ModeByName(tt.name)
		if tt.wantErr {
			assert.Error(t, err, tt.name)
			continue
		}
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.want, m.Name)
	}
}

func TestArchitectTemplateMentionsDiagramConvention(t *testing.T) {
	assert.Contains(t, Architect.Template, "mermaid")
	assert.Contains(t, Architect.Template, "Sources used")
}

func TestAuditorTemplateFixedSections(t *testing.T) {
	for _, want := range []string{"Vulnerability", "Severity", "Remediation", "References", "CRITICAL", "HIGH", "MEDIUM", "LOW", "CIS"} {
		assert.Contains(t, Auditor.Template, want)
	}
}
